package dom

import "strings"

// Selector is a parsed compound simple selector. The profile tables need
// only tag, id, class and attribute tests; combinators are not supported.
type Selector struct {
	raw     string
	parts   []simpleSelector
	invalid bool
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrTest
}

type attrTest struct {
	name  string
	value string
	exact bool // false means presence test only
}

// ParseSelector parses a comma-separated list of compound selectors.
// Invalid input yields a selector that matches nothing.
func ParseSelector(raw string) Selector {
	sel := Selector{raw: raw}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ss, ok := parseCompound(part)
		if !ok {
			sel.invalid = true
			continue
		}
		sel.parts = append(sel.parts, ss)
	}
	return sel
}

func parseCompound(s string) (simpleSelector, bool) {
	var out simpleSelector
	i := 0
	readName := func() string {
		start := i
		for i < len(s) && (isNameChar(s[i]) || s[i] == '-' || s[i] == '_') {
			i++
		}
		return s[start:i]
	}
	for i < len(s) {
		switch {
		case s[i] == '#':
			i++
			out.id = readName()
		case s[i] == '.':
			i++
			out.classes = append(out.classes, readName())
		case s[i] == '[':
			i++
			name := readName()
			if name == "" {
				return out, false
			}
			test := attrTest{name: strings.ToLower(name)}
			if i < len(s) && s[i] == '=' {
				i++
				start := i
				for i < len(s) && s[i] != ']' {
					i++
				}
				test.exact = true
				test.value = strings.Trim(s[start:i], `"'`)
			}
			if i >= len(s) || s[i] != ']' {
				return out, false
			}
			i++
			out.attrs = append(out.attrs, test)
		case s[i] == '*':
			i++
		case isNameChar(s[i]):
			out.tag = strings.ToLower(readName())
		default:
			return out, false
		}
	}
	return out, true
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Matches reports whether the node satisfies any selector in the list
func (sel Selector) Matches(n *Node) bool {
	if n == nil || n.typ != ElementNode {
		return false
	}
	for _, p := range sel.parts {
		if p.matches(n) {
			return true
		}
	}
	return false
}

func (ss simpleSelector) matches(n *Node) bool {
	if ss.tag != "" && n.tag != ss.tag {
		return false
	}
	if ss.id != "" && n.ID() != ss.id {
		return false
	}
	for _, c := range ss.classes {
		if !n.HasClass(c) {
			return false
		}
	}
	for _, a := range ss.attrs {
		v, ok := n.Attr(a.name)
		if !ok {
			return false
		}
		if a.exact && v != a.value {
			return false
		}
	}
	return true
}

// Query returns the first node under root matching the selector
func Query(root *Node, raw string) *Node {
	sel := ParseSelector(raw)
	var found *Node
	root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if sel.Matches(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every node under root matching the selector, in
// document order
func QueryAll(root *Node, raw string) []*Node {
	sel := ParseSelector(raw)
	var out []*Node
	root.Walk(func(n *Node) bool {
		if sel.Matches(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}
