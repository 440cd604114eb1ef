package scanner

import (
	"time"

	"github.com/pageguard/pageguard/internal/content"
	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/match"
	"github.com/pageguard/pageguard/internal/model"
)

// attachObserver subscribes to document mutations. Only childList and
// characterData records are requested: attribute churn on social feeds
// is orders of magnitude noisier and carries no new content.
func (s *Scanner) attachObserver() {
	s.observer = s.doc.Observe(dom.ObserverInit{
		ChildList:     true,
		CharacterData: true,
	}, s.onMutations)
}

// onMutations is the dual-path entry point: pattern tiers run
// synchronously against the changed nodes, then a debounced full scan
// is scheduled for everything the tiers could not decide
func (s *Scanner) onMutations(records []dom.MutationRecord) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	substantial := false
	for _, rec := range records {
		if s.handleRecordLocked(rec) {
			substantial = true
		}
	}
	s.mu.Unlock()

	if substantial {
		s.schedule()
	}
}

func (s *Scanner) handleRecordLocked(rec dom.MutationRecord) bool {
	switch rec.Type {
	case dom.ChildList:
		substantial := false
		for _, added := range rec.AddedNodes {
			if s.underOwnUI(added) {
				continue
			}
			if s.substantial(added) {
				substantial = true
			}
			s.instantSweepLocked(added)
		}
		// A rewrite that re-inserts a mitigated element can strip the
		// class while the marker attribute survives.
		if rec.Target.HasAttr(markerAttr) && !rec.Target.HasClass(blockedClass) {
			if m := s.registry.Get(rec.Target); m != nil {
				reassert(m)
			}
		}
		return substantial

	case dom.CharacterData:
		container := rec.Target.Parent()
		if container == nil || s.underOwnUI(container) {
			return false
		}
		// Content changed under an inspected node: it is new content now.
		s.scanned.Remove(container)
		text := content.Normalize(container.VisibleText())
		if len([]rune(text)) < s.profile.MinTextLength {
			return false
		}
		s.instantTextLocked(container)
		return true
	}
	return false
}

// underOwnUI reports whether a node sits inside scanner-injected UI
func (s *Scanner) underOwnUI(n *dom.Node) bool {
	return n.Closest(func(a *dom.Node) bool { return a.HasAttr(uiMarkerAttr) }) != nil
}

// substantial reports whether an added subtree carries enough content
// to justify a deferred scan epoch
func (s *Scanner) substantial(n *dom.Node) bool {
	if len([]rune(content.Normalize(n.VisibleText()))) >= s.profile.MinTextLength {
		return true
	}
	if n.Type() == dom.ElementNode && dom.Query(n, "img") != nil {
		return true
	}
	return false
}

// instantSweepLocked walks an added subtree and runs the synchronous
// tiers over its leaf-text elements and images. No I/O happens here;
// anything the tiers cannot decide waits for the deferred epoch.
func (s *Scanner) instantSweepLocked(root *dom.Node) {
	root.Walk(func(cur *dom.Node) bool {
		if cur.Type() != dom.ElementNode {
			return true
		}
		if cur.HasAttr(uiMarkerAttr) {
			return false
		}
		if cur.Tag() == "img" {
			s.instantImageLocked(cur)
			return true
		}
		if cur.IsLeafText() && !s.scanned.Contains(cur) {
			s.instantTextLocked(cur)
		}
		return true
	})
}

// instantTextLocked resolves a text element through the cache and the
// pattern tiers. Returns true when a decision (either way) was reached.
func (s *Scanner) instantTextLocked(el *dom.Node) bool {
	text := content.ElementText(el)
	norm := content.Normalize(text)
	if len([]rune(norm)) < s.profile.MinTextLength {
		return false
	}
	hash := content.Hash(norm)

	if d, ok := s.cache.Get(model.KindText, hash); ok {
		s.scanned.Add(el)
		if d.ShouldMitigate() {
			s.applyTextLocked(el, d)
		}
		return true
	}

	d, ok := s.pipeline.Decide(match.Input{
		Kind:      model.KindText,
		Text:      text,
		MinLength: s.profile.MinTextLength,
	})
	if !ok {
		return false
	}
	s.cache.Set(model.KindText, hash, d)
	s.scanned.Add(el)
	if d.ShouldMitigate() {
		s.applyTextLocked(el, d)
	}
	return true
}

// instantImageLocked runs the image tier over an image element
func (s *Scanner) instantImageLocked(img *dom.Node) bool {
	src := img.AttrValue("src")
	if src == "" || s.scanned.Contains(img) {
		return false
	}
	hash := content.Hash(src)

	if d, ok := s.cache.Get(model.KindImage, hash); ok {
		s.scanned.Add(img)
		if d.ShouldMitigate() {
			s.applyImageLocked(img, d)
		}
		return true
	}

	d, ok := s.pipeline.Decide(match.Input{
		Kind:   model.KindImage,
		SrcURL: src,
		Alt:    img.AttrValue("alt"),
		Text:   content.ImageText(img),
	})
	if !ok {
		return false
	}
	s.cache.Set(model.KindImage, hash, d)
	s.scanned.Add(img)
	if d.ShouldMitigate() {
		s.applyImageLocked(img, d)
	}
	return true
}

// applyTextLocked narrows the flagged element to its smallest carrier
// and mitigates it
func (s *Scanner) applyTextLocked(el *dom.Node, d model.Decision) {
	target := s.selector.selectTarget(el, model.KindText, s.textMatches)
	if target == nil {
		return
	}
	s.mitigate(target, model.KindText, d)
}

func (s *Scanner) applyImageLocked(img *dom.Node, d model.Decision) {
	target := s.selector.selectTarget(img, model.KindImage, nil)
	if target == nil {
		return
	}
	s.mitigate(target, model.KindImage, d)
}

// textMatches steers the target-narrowing descent: a child is worth
// descending into only if its text alone still trips a tier
func (s *Scanner) textMatches(text string) bool {
	_, ok := s.pipeline.Decide(match.Input{
		Kind:      model.KindText,
		Text:      text,
		MinLength: s.profile.MinTextLength,
	})
	return ok
}

// schedule arranges one deferred scan epoch. Repeated mutations during
// the debounce window coalesce; the cooldown floor from the previous
// epoch is respected.
func (s *Scanner) schedule() {
	s.mu.Lock()
	if s.closed || s.timerActive {
		s.mu.Unlock()
		return
	}
	s.timerActive = true
	delay := s.profile.Debounce
	if rest := s.cooldownUntil.Sub(s.now()); rest > delay {
		delay = rest
	}
	s.mu.Unlock()

	time.AfterFunc(delay, func() {
		s.mu.Lock()
		s.timerActive = false
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		select {
		case s.kick <- struct{}{}:
		default:
		}
	})
}
