package scanner

import (
	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/model"
)

// MitigationState tracks the interaction state machine of a mitigated
// element. Dismissing the explanation returns to StateMitigated: reveal
// is a policy choice, never the default.
type MitigationState int

const (
	StateMitigated MitigationState = iota
	StateExplaining
	StateAcknowledged
)

// Mitigation pairs a live element with its decision and wrapper
type Mitigation struct {
	Element  *dom.Node
	Wrapper  *dom.Node // media wrapper carrying the filter alongside, or nil
	Decision *model.Decision
	Kind     model.NodeKind
	State    MitigationState
}

// Registry is the blocked-element registry: mitigated element to
// decision. Strong keys are safe because the maintainer sweep prunes
// entries whose elements left the document.
type Registry struct {
	entries map[*dom.Node]*Mitigation
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[*dom.Node]*Mitigation)}
}

// Get returns the mitigation for an element, or nil
func (r *Registry) Get(n *dom.Node) *Mitigation {
	return r.entries[n]
}

// Add registers a mitigation
func (r *Registry) Add(m *Mitigation) {
	r.entries[m.Element] = m
}

// Remove drops an element's mitigation
func (r *Registry) Remove(n *dom.Node) {
	delete(r.entries, n)
}

// Len returns the number of mitigated elements
func (r *Registry) Len() int { return len(r.entries) }

// ForEach visits every mitigation; the visitor may call Remove
func (r *Registry) ForEach(visit func(*Mitigation)) {
	for _, m := range r.entries {
		visit(m)
	}
}

// HasAncestorOf reports whether any strict ancestor of n is mitigated
func (r *Registry) HasAncestorOf(n *dom.Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if _, ok := r.entries[cur]; ok {
			return true
		}
	}
	return false
}

// HasDescendantOf reports whether any strict descendant of n is
// mitigated
func (r *Registry) HasDescendantOf(n *dom.Node) bool {
	for el := range r.entries {
		if el != n && n.Contains(el) {
			return true
		}
	}
	return false
}
