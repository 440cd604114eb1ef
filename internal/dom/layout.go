package dom

import "strconv"

// Rect is a node's layout rectangle in document coordinates
type Rect struct {
	X, Y          int
	Width, Height int
}

// Area returns width times height
func (r Rect) Area() int { return r.Width * r.Height }

// Layout supplies layout rectangles for nodes. The heuristic layout is
// used on fetched pages; tests inject a FixedLayout.
type Layout interface {
	Rect(n *Node) Rect
}

// HeuristicLayout estimates rectangles from markup alone: images take
// their width/height attributes, text elements take a line estimate.
// Vertical position is document order, which is enough for viewport
// checks on linear content.
type HeuristicLayout struct {
	doc *Document
}

// NewHeuristicLayout creates the default layout for a document
func NewHeuristicLayout(doc *Document) *HeuristicLayout {
	return &HeuristicLayout{doc: doc}
}

const (
	estLineHeight = 20
	estLineChars  = 80
	estBlockWidth = 600
)

// Rect estimates the layout rectangle of a node
func (l *HeuristicLayout) Rect(n *Node) Rect {
	if n == nil || n.typ != ElementNode {
		return Rect{}
	}
	y := l.documentOffset(n)
	if n.tag == "img" {
		w := atoiAttr(n, "width")
		h := atoiAttr(n, "height")
		return Rect{Y: y, Width: w, Height: h}
	}
	text := n.VisibleText()
	if text == "" {
		return Rect{Y: y, Width: estBlockWidth, Height: 0}
	}
	lines := len(text)/estLineChars + 1
	return Rect{Y: y, Width: estBlockWidth, Height: lines * estLineHeight}
}

// documentOffset approximates the vertical offset by accumulating the
// height of everything before n in document order
func (l *HeuristicLayout) documentOffset(n *Node) int {
	offset := 0
	done := false
	l.doc.root.Walk(func(cur *Node) bool {
		if done || cur == n {
			done = true
			return false
		}
		if cur.typ == TextNode {
			offset += (len(cur.text)/estLineChars + 1) * estLineHeight / 4
		}
		return true
	})
	return offset
}

func atoiAttr(n *Node, name string) int {
	v, ok := n.Attr(name)
	if !ok {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}

// FixedLayout returns preset rectangles; nodes without one get Default
type FixedLayout struct {
	Rects   map[*Node]Rect
	Default Rect
}

// Rect returns the preset rectangle for a node
func (l *FixedLayout) Rect(n *Node) Rect {
	if r, ok := l.Rects[n]; ok {
		return r
	}
	return l.Default
}
