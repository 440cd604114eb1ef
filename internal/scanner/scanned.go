package scanner

import "github.com/pageguard/pageguard/internal/dom"

// ScannedSet records live nodes that have been inspected at least once
// in their current form. Go offers no weak-keyed map with finalisation,
// so the maintainer sweep prunes entries whose nodes left the document;
// the document itself stays the source of truth for liveness.
type ScannedSet struct {
	nodes map[*dom.Node]struct{}
}

// NewScannedSet creates an empty set
func NewScannedSet() *ScannedSet {
	return &ScannedSet{nodes: make(map[*dom.Node]struct{})}
}

// Add marks a node as inspected. Only call after a decision (including
// safe-unknown) has been recorded.
func (s *ScannedSet) Add(n *dom.Node) {
	s.nodes[n] = struct{}{}
}

// Contains reports whether the node was already inspected
func (s *ScannedSet) Contains(n *dom.Node) bool {
	_, ok := s.nodes[n]
	return ok
}

// Remove drops a node whose content changed; it becomes eligible again
func (s *ScannedSet) Remove(n *dom.Node) {
	delete(s.nodes, n)
}

// Prune drops nodes the document no longer holds
func (s *ScannedSet) Prune() {
	for n := range s.nodes {
		if !n.IsConnected() {
			delete(s.nodes, n)
		}
	}
}

// Len returns the current membership count
func (s *ScannedSet) Len() int { return len(s.nodes) }

// Clear empties the set (scanner teardown)
func (s *ScannedSet) Clear() {
	s.nodes = make(map[*dom.Node]struct{})
}
