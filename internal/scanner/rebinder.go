package scanner

import (
	"github.com/pageguard/pageguard/internal/dom"
)

// rebinderThreshold is the visible fraction at which a mitigated
// element counts as on screen
const rebinderThreshold = 0.1

// Rebinder re-asserts mitigations as their elements scroll back into
// view. Virtualised feeds recycle nodes offscreen; the cheapest moment
// to repair a stripped treatment is the moment it becomes visible again.
type Rebinder struct {
	observer *dom.IntersectionObserver
}

// newRebinder wires the intersection observer to the registry. Observe
// fires the callback synchronously, possibly while the scanner lock is
// already held, so lookup must not take it; the document's
// single-goroutine ownership covers the access.
func newRebinder(doc *dom.Document, lookup func(*dom.Node) *Mitigation) *Rebinder {
	r := &Rebinder{}
	r.observer = doc.NewIntersectionObserver(rebinderThreshold, func(entries []dom.IntersectionEntry) {
		for _, e := range entries {
			if !e.IsIntersecting {
				continue
			}
			m := lookup(e.Node)
			if m == nil {
				continue
			}
			if e.Node.HasAttr(markerAttr) && !e.Node.HasClass(blockedClass) {
				reassert(m)
			}
		}
	})
	return r
}

// Observe starts watching a mitigated element
func (r *Rebinder) Observe(n *dom.Node) { r.observer.Observe(n) }

// Unobserve stops watching an element
func (r *Rebinder) Unobserve(n *dom.Node) { r.observer.Unobserve(n) }

// Disconnect tears the observer down
func (r *Rebinder) Disconnect() { r.observer.Disconnect() }
