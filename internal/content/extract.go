// Package content extracts and normalises the text the scanner
// classifies: visible element text, image surroundings, and excerpts
// for incident records.
package content

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pageguard/pageguard/internal/dom"
)

// TextCap bounds extracted element text sent for classification
const TextCap = 1000

// ExcerptCap bounds the single-line excerpt on incident records
const ExcerptCap = 280

// ElementText returns the element's visible text capped to TextCap
func ElementText(n *dom.Node) string {
	return Truncate(n.VisibleText(), TextCap)
}

// ImageText builds the classification text for an image from its alt
// text, title, parent text and nearest ancestor text, in that order.
func ImageText(img *dom.Node) string {
	var parts []string
	if alt := strings.TrimSpace(img.AttrValue("alt")); alt != "" {
		parts = append(parts, alt)
	}
	if title := strings.TrimSpace(img.AttrValue("title")); title != "" {
		parts = append(parts, title)
	}
	if p := img.Parent(); p != nil {
		if t := p.OwnText(); t != "" {
			parts = append(parts, t)
		}
		// Nearest ancestor with substantial text beyond the parent.
		for cur := p.Parent(); cur != nil; cur = cur.Parent() {
			if t := cur.OwnText(); t != "" {
				parts = append(parts, t)
				break
			}
		}
	}
	return Truncate(strings.Join(parts, " "), TextCap)
}

// Truncate caps a string to n bytes without splitting a rune
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Excerpt collapses content to a single line capped to ExcerptCap,
// suitable for incident records
func Excerpt(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return unicode.IsSpace(r) })
	return Truncate(strings.Join(fields, " "), ExcerptCap)
}

// Normalize lowercases and collapses whitespace for matching
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
