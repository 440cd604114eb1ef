package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// containsWord reports whether word occurs in text anchored on word
// boundaries. Both strings must already be normalised. The boundary
// check is rune-based so it holds for non-ASCII neighbours.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	from := 0
	for {
		idx := strings.Index(text[from:], word)
		if idx < 0 {
			return false
		}
		idx += from
		if boundaryBefore(text, idx) && boundaryAfter(text, idx+len(word)) {
			return true
		}
		from = idx + 1
	}
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[idx:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// containsAnyWord checks a word list with word-boundary anchoring
func containsAnyWord(text string, words []string) (string, bool) {
	for _, w := range words {
		if containsWord(text, w) {
			return w, true
		}
	}
	return "", false
}

// containsAnyPhrase checks multi-word patterns by substring; the
// pattern itself carries its boundaries
func containsAnyPhrase(text string, phrases []string) (string, bool) {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return p, true
		}
	}
	return "", false
}
