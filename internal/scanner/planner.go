package scanner

import (
	"github.com/pageguard/pageguard/internal/content"
	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/model"
)

// scanBands order text candidates by expected payload density. Feed
// items and headlines first, paragraph-level content next, generic
// containers last.
var scanBands = []string{
	"article, [role=article], a, h3",
	"p, span, li, blockquote",
	"div, section",
}

// imagesPerTick bounds image candidates per epoch; image calls are
// per-item and rate limited, so the planner keeps the queue short
const imagesPerTick = 8

// plan is one epoch's worth of work
type plan struct {
	texts  []model.Candidate
	images []model.Candidate
}

// planLocked walks the main content area and selects this epoch's
// candidates. Surplus beyond the text cap is left unscanned and stays
// eligible for the next epoch.
func (s *Scanner) planLocked() plan {
	root := s.mainContent()
	var p plan

	textCap := s.cfg.Scanner.BatchSize
	if textCap <= 0 {
		textCap = 50
	}

	seen := make(map[*dom.Node]bool)
	byText := make(map[string]int) // normalized text -> index into p.texts
	for _, band := range scanBands {
		if len(p.texts) >= textCap {
			break
		}
		for _, n := range dom.QueryAll(root, band) {
			if len(p.texts) >= textCap {
				break
			}
			if seen[n] || !s.eligible(n) {
				continue
			}
			seen[n] = true

			text := content.ElementText(n)
			norm := content.Normalize(text)
			if len([]rune(norm)) < s.profile.MinTextLength {
				continue
			}

			// A container and its descendant carrying the same text are
			// one candidate: the descendant wins, it is the smaller
			// mitigation target.
			if i, dup := byText[norm]; dup {
				if p.texts[i].Node.Contains(n) {
					p.texts[i] = textCandidate(n, text, norm)
				}
				continue
			}
			byText[norm] = len(p.texts)
			p.texts = append(p.texts, textCandidate(n, text, norm))
		}
	}

	for _, img := range dom.QueryAll(root, "img") {
		if len(p.images) >= imagesPerTick {
			break
		}
		src := img.AttrValue("src")
		if src == "" || !s.eligible(img) || !s.imageBigEnough(img) {
			continue
		}
		p.images = append(p.images, model.Candidate{
			Node:    img,
			Kind:    model.KindImage,
			Content: src,
			Hash:    content.Hash(src),
		})
	}
	return p
}

func textCandidate(n *dom.Node, text, norm string) model.Candidate {
	return model.Candidate{
		Node:    n,
		Kind:    model.KindText,
		Content: text,
		Hash:    content.Hash(norm),
	}
}

// mainContent resolves the scan scope: the first profile selector that
// matches, falling back to the document body
func (s *Scanner) mainContent() *dom.Node {
	body := s.doc.Body()
	for _, sel := range s.profile.MainContentSelectors {
		if n := dom.Query(body, sel); n != nil {
			return n
		}
	}
	return body
}

// eligible applies the shared candidate filters: not yet scanned, not
// the scanner's own UI, not already inside a mitigation, and not
// UI-chrome sized on hosts that filter small rects
func (s *Scanner) eligible(n *dom.Node) bool {
	if s.scanned.Contains(n) {
		return false
	}
	if n.Closest(func(a *dom.Node) bool { return a.HasAttr(uiMarkerAttr) }) != nil {
		return false
	}
	if s.registry.Get(n) != nil || s.registry.HasAncestorOf(n) {
		return false
	}
	if s.profile.FilterSmallRects {
		if r := s.doc.Rect(n); r.Area() > 0 && r.Area() < s.profile.UIRectThreshold {
			return false
		}
	}
	return true
}

// imageBigEnough drops icons and avatars below the profile's size floor
func (s *Scanner) imageBigEnough(img *dom.Node) bool {
	min := s.profile.MinImageSize
	if min <= 0 {
		return true
	}
	r := s.doc.Rect(img)
	if r.Width > 0 && r.Height > 0 {
		return r.Width >= min && r.Height >= min
	}
	return true
}
