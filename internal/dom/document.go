package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a live, mutable document tree. It is not safe for
// concurrent use; the embedding host owns it from a single goroutine.
type Document struct {
	root *Node // the <html> element
	url  string

	observers    []*MutationObserver
	intersectors []*IntersectionObserver

	layout   Layout
	viewport Viewport
}

// Viewport describes the visible region of the document
type Viewport struct {
	Width   int
	Height  int
	ScrollY int
}

// NewDocument creates an empty document with html/body structure
func NewDocument(url string) *Document {
	d := &Document{
		url:      url,
		viewport: Viewport{Width: 1280, Height: 800},
	}
	d.layout = NewHeuristicLayout(d)
	d.root = d.newElement("html")
	head := d.newElement("head")
	body := d.newElement("body")
	d.root.children = append(d.root.children, head, body)
	head.parent = d.root
	body.parent = d.root
	return d
}

// Parse builds a document from serialized HTML
func Parse(url, content string) (*Document, error) {
	parsed, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	d := &Document{
		url:      url,
		viewport: Viewport{Width: 1280, Height: 800},
	}
	d.layout = NewHeuristicLayout(d)
	d.root = d.convert(parsed)
	if d.root == nil {
		d.root = d.newElement("html")
	}
	return d, nil
}

// convert translates an x/net/html tree into document nodes
func (d *Document) convert(n *html.Node) *Node {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return d.convert(c)
			}
		}
		return nil
	case html.ElementNode:
		el := d.newElement(n.Data)
		for _, a := range n.Attr {
			el.attrs[strings.ToLower(a.Key)] = a.Val
		}
		el.style = parseStyleAttr(el.attrs["style"])
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := d.convert(c); child != nil {
				child.parent = el
				el.children = append(el.children, child)
			}
		}
		return el
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return d.newText(n.Data)
	default:
		return nil
	}
}

// parseStyleAttr reads declarations out of a style attribute value
func parseStyleAttr(raw string) []styleDecl {
	var decls []styleDecl
	for _, part := range strings.Split(raw, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(strings.ToLower(prop))
		value = strings.TrimSpace(value)
		important := false
		if cut, found := strings.CutSuffix(value, "!important"); found {
			value = strings.TrimSpace(cut)
			important = true
		}
		if prop != "" && value != "" {
			decls = append(decls, styleDecl{prop, value, important})
		}
	}
	return decls
}

func (d *Document) newElement(tag string) *Node {
	return &Node{doc: d, typ: ElementNode, tag: strings.ToLower(tag), attrs: make(map[string]string)}
}

func (d *Document) newText(text string) *Node {
	return &Node{doc: d, typ: TextNode, text: text, attrs: make(map[string]string)}
}

// CreateElement creates a detached element node
func (d *Document) CreateElement(tag string) *Node { return d.newElement(tag) }

// CreateTextNode creates a detached text node
func (d *Document) CreateTextNode(text string) *Node { return d.newText(text) }

// Root returns the document element
func (d *Document) Root() *Node { return d.root }

// Body returns the body element, creating one if the parse lacked it
func (d *Document) Body() *Node {
	for _, c := range d.root.children {
		if c.tag == "body" {
			return c
		}
	}
	body := d.newElement("body")
	body.parent = d.root
	d.root.children = append(d.root.children, body)
	return body
}

// URL returns the document location
func (d *Document) URL() string { return d.url }

// Title returns the text of the <title> element
func (d *Document) Title() string {
	if t := Query(d.root, "title"); t != nil {
		return strings.TrimSpace(t.VisibleText())
	}
	return ""
}

// AppendHTML parses an HTML fragment and appends its nodes to parent,
// emitting a single childList record covering all added nodes. This is
// how hosts inject rendered content.
func (d *Document) AppendHTML(parent *Node, fragment string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, err
	}
	var added []*Node
	for _, pn := range parsed {
		if child := d.convert(pn); child != nil {
			child.parent = parent
			parent.children = append(parent.children, child)
			added = append(added, child)
		}
	}
	if len(added) > 0 {
		d.emit(MutationRecord{Type: ChildList, Target: parent, AddedNodes: added})
	}
	return added, nil
}

// SetLayout installs a layout implementation (tests inject fixed rects)
func (d *Document) SetLayout(l Layout) { d.layout = l }

// Rect returns the layout rectangle of a node
func (d *Document) Rect(n *Node) Rect { return d.layout.Rect(n) }

// ViewportSize returns the current viewport
func (d *Document) ViewportSize() Viewport { return d.viewport }

// SetViewport resizes the viewport
func (d *Document) SetViewport(w, h int) {
	d.viewport.Width = w
	d.viewport.Height = h
	d.notifyIntersections()
}

// SetScroll moves the viewport and re-evaluates intersection observers
func (d *Document) SetScroll(y int) {
	d.viewport.ScrollY = y
	d.notifyIntersections()
}
