package scanner

import (
	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/model"
)

// maxChildFanout is the child count beyond which an unfocused container
// is refused rather than blurred wholesale
const maxChildFanout = 20

// RejectFunc decides whether an element may never carry a mitigation.
// Injectable for tests; the default refuses interactive controls,
// navigation landmarks and the scanner's own UI.
type RejectFunc func(n *dom.Node) bool

// DefaultReject is the standard never-block predicate
func DefaultReject(n *dom.Node) bool {
	switch n.Tag() {
	case "button", "input", "select", "textarea", "option", "form":
		return true
	case "nav", "header", "footer", "aside":
		return true
	}
	switch n.AttrValue("role") {
	case "button", "navigation", "search", "banner", "form", "menubar", "toolbar":
		return true
	}
	if n.AttrValue("type") == "search" {
		return true
	}
	return n.HasAttr(uiMarkerAttr)
}

// targetSelector picks the smallest element that should carry a
// mitigation, or rejects the candidate
type targetSelector struct {
	registry *Registry
	reject   RejectFunc
}

// selectTarget returns the mitigation target for a flagged candidate,
// or nil when the candidate must be refused. matches reports whether a
// given text still triggers the flagging pattern; it steers the descent
// into children.
func (ts *targetSelector) selectTarget(n *dom.Node, kind model.NodeKind, matches func(string) bool) *dom.Node {
	if n == nil || ts.rejectedByAncestry(n) {
		return nil
	}

	var target *dom.Node
	if kind == model.KindImage {
		target = n
	} else {
		target = ts.smallestTextTarget(n, matches, 0)
	}
	if target == nil {
		return nil
	}

	// Anti-stacking: never mitigate inside or around an existing
	// mitigation.
	if ts.registry.Get(target) == nil &&
		(ts.registry.HasAncestorOf(target) || ts.registry.HasDescendantOf(target)) {
		return nil
	}
	return target
}

// rejectedByAncestry refuses the node and anything inside a never-block
// ancestor
func (ts *targetSelector) rejectedByAncestry(n *dom.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() == dom.ElementNode && ts.reject(cur) {
			return true
		}
	}
	return false
}

// smallestTextTarget narrows a flagged container to the leaf that
// actually carries the offending text
func (ts *targetSelector) smallestTextTarget(n *dom.Node, matches func(string) bool, depth int) *dom.Node {
	if depth > 10 {
		return n
	}

	// Oversized containers are refused: blurring half the viewport is
	// worse than deferring to a narrower candidate on a later tick.
	doc := n.Document()
	if r := doc.Rect(n); r.Height > doc.ViewportSize().Height/2 {
		return nil
	}

	// Innermost leaf holding at least half of the candidate's text.
	total := len(n.VisibleText())
	if leaf := ts.dominantLeaf(n, total); leaf != nil {
		if matches == nil || matches(leaf.VisibleText()) {
			return leaf
		}
	}

	// Otherwise descend into the children that still match the pattern.
	children := n.ChildElements()
	for _, child := range children {
		if matches != nil && matches(child.VisibleText()) && !ts.reject(child) {
			return ts.smallestTextTarget(child, matches, depth+1)
		}
	}
	if len(children) > maxChildFanout {
		return nil
	}
	return n
}

// dominantLeaf finds the innermost leaf-text element whose text is at
// least half of totalLen
func (ts *targetSelector) dominantLeaf(n *dom.Node, totalLen int) *dom.Node {
	var best *dom.Node
	n.Walk(func(cur *dom.Node) bool {
		if cur == n || cur.Type() != dom.ElementNode {
			return true
		}
		if ts.reject(cur) {
			return false
		}
		if cur.IsLeafText() && len(cur.VisibleText())*2 >= totalLen {
			best = cur // deepest such leaf wins; Walk is depth-first
		}
		return true
	})
	return best
}

// wrapperFor finds the nearest media-wrapper ancestor that must carry
// the filter alongside a flagged image
func wrapperFor(img *dom.Node, wrapperClasses []string) *dom.Node {
	if len(wrapperClasses) == 0 {
		return nil
	}
	return img.Closest(func(n *dom.Node) bool {
		if n == img {
			return false
		}
		for _, c := range wrapperClasses {
			if n.HasClass(c) {
				return true
			}
		}
		return false
	})
}
