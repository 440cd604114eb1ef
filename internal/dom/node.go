package dom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// NodeType distinguishes element nodes from character data
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is a live node in a Document. All mutation goes through Node
// methods so that mutation records reach registered observers; plain
// reads never emit records.
type Node struct {
	doc  *Document
	typ  NodeType
	tag  string // lower-case element tag, empty for text nodes
	text string // character data, empty for elements

	attrs    map[string]string
	style    []styleDecl
	parent   *Node
	children []*Node

	listeners []*listener
}

type styleDecl struct {
	prop      string
	value     string
	important bool
}

// Type returns the node type
func (n *Node) Type() NodeType { return n.typ }

// Tag returns the lower-case element tag, or "" for text nodes
func (n *Node) Tag() string { return n.tag }

// Text returns the character data of a text node
func (n *Node) Text() string { return n.text }

// Parent returns the parent node, or nil at the root
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child nodes in document order
func (n *Node) Children() []*Node { return n.children }

// ChildElements returns only the element children
func (n *Node) ChildElements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.typ == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// IsConnected reports whether the node is still attached to its document
func (n *Node) IsConnected() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == n.doc.root {
			return true
		}
	}
	return false
}

// Attr returns the value of an attribute and whether it is present
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[strings.ToLower(name)]
	return v, ok
}

// AttrValue returns the attribute value or "" when absent
func (n *Node) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

// HasAttr reports whether the attribute is present
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// ID returns the id attribute
func (n *Node) ID() string { return n.AttrValue("id") }

// Classes returns the class list
func (n *Node) Classes() []string {
	return strings.Fields(n.AttrValue("class"))
}

// HasClass reports whether the class list contains name
func (n *Node) HasClass(name string) bool {
	for _, c := range n.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// SetAttribute sets an attribute and emits an attribute mutation record
func (n *Node) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	old, had := n.attrs[name]
	if had && old == value {
		return
	}
	n.attrs[name] = value
	n.doc.emit(MutationRecord{
		Type:          Attributes,
		Target:        n,
		AttributeName: name,
		OldValue:      old,
	})
}

// RemoveAttribute removes an attribute if present
func (n *Node) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	old, had := n.attrs[name]
	if !had {
		return
	}
	delete(n.attrs, name)
	n.doc.emit(MutationRecord{
		Type:          Attributes,
		Target:        n,
		AttributeName: name,
		OldValue:      old,
	})
}

// AddClass adds a class to the class list
func (n *Node) AddClass(name string) {
	if n.HasClass(name) {
		return
	}
	classes := append(n.Classes(), name)
	n.SetAttribute("class", strings.Join(classes, " "))
}

// RemoveClass removes a class from the class list
func (n *Node) RemoveClass(name string) {
	if !n.HasClass(name) {
		return
	}
	var kept []string
	for _, c := range n.Classes() {
		if c != name {
			kept = append(kept, c)
		}
	}
	n.SetAttribute("class", strings.Join(kept, " "))
}

// Style returns an inline style declaration: value, important flag, presence
func (n *Node) Style(prop string) (string, bool, bool) {
	for _, d := range n.style {
		if d.prop == prop {
			return d.value, d.important, true
		}
	}
	return "", false, false
}

// SetStyle sets an inline style declaration. Important declarations take
// the highest precedence the model offers, mirroring `!important`.
func (n *Node) SetStyle(prop, value string, important bool) {
	for i, d := range n.style {
		if d.prop == prop {
			if d.value == value && d.important == important {
				return
			}
			n.style[i] = styleDecl{prop, value, important}
			n.syncStyleAttr()
			return
		}
	}
	n.style = append(n.style, styleDecl{prop, value, important})
	n.syncStyleAttr()
}

// RemoveStyle removes an inline style declaration
func (n *Node) RemoveStyle(prop string) {
	for i, d := range n.style {
		if d.prop == prop {
			n.style = append(n.style[:i], n.style[i+1:]...)
			n.syncStyleAttr()
			return
		}
	}
}

// syncStyleAttr mirrors the style declarations into the style attribute
func (n *Node) syncStyleAttr() {
	decls := make([]string, 0, len(n.style))
	sorted := make([]styleDecl, len(n.style))
	copy(sorted, n.style)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].prop < sorted[j].prop })
	for _, d := range sorted {
		s := d.prop + ": " + d.value
		if d.important {
			s += " !important"
		}
		decls = append(decls, s)
	}
	n.SetAttribute("style", strings.Join(decls, "; "))
}

// Append attaches a child node and emits a childList record
func (n *Node) Append(child *Node) {
	if child.parent != nil {
		child.parent.removeChildNoRecord(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	n.doc.emit(MutationRecord{
		Type:       ChildList,
		Target:     n,
		AddedNodes: []*Node{child},
	})
}

// Remove detaches the node from its parent and emits a childList record
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	p.removeChildNoRecord(n)
	n.doc.emit(MutationRecord{
		Type:         ChildList,
		Target:       p,
		RemovedNodes: []*Node{n},
	})
}

func (n *Node) removeChildNoRecord(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// SetText replaces the character data of a text node and emits a record
func (n *Node) SetText(text string) {
	if n.typ != TextNode || n.text == text {
		return
	}
	old := n.text
	n.text = text
	n.doc.emit(MutationRecord{
		Type:     CharacterData,
		Target:   n,
		OldValue: old,
	})
}

// Contains reports whether other is n or a descendant of n
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Closest returns the nearest ancestor (including n) satisfying pred
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.typ == ElementNode && pred(cur) {
			return cur
		}
	}
	return nil
}

// VisibleText returns the concatenated text of the subtree, skipping
// script, style, noscript and iframe content
func (n *Node) VisibleText() string {
	var buf strings.Builder
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.typ == ElementNode {
			switch cur.tag {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if cur.typ == TextNode {
			text := strings.TrimSpace(cur.text)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for _, c := range cur.children {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// OwnText returns only the direct text-node children of n, joined
func (n *Node) OwnText() string {
	var parts []string
	for _, c := range n.children {
		if c.typ == TextNode {
			if t := strings.TrimSpace(c.text); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// IsLeafText reports whether every child of n is a text node (and there
// is at least one)
func (n *Node) IsLeafText() bool {
	if n.typ != ElementNode || len(n.children) == 0 {
		return false
	}
	for _, c := range n.children {
		if c.typ != TextNode {
			return false
		}
	}
	return true
}

// Walk visits the subtree rooted at n in document order. Returning false
// from the visitor prunes the subtree below the current node.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(visit)
	}
}

// Document returns the owning document
func (n *Node) Document() *Document { return n.doc }

// OuterHTML renders the subtree as HTML. Attribute order is
// alphabetical so output is deterministic.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.renderHTML(&b)
	return b.String()
}

func (n *Node) renderHTML(b *strings.Builder) {
	if n.typ == TextNode {
		b.WriteString(html.EscapeString(n.text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.tag)
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(n.attrs[k]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if voidElements[n.tag] {
		return
	}
	for _, c := range n.children {
		c.renderHTML(b)
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "source": true, "track": true,
	"wbr": true,
}
