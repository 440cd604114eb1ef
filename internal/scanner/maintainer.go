package scanner

import "go.uber.org/zap"

// Maintain is the periodic sweep over all active mitigations: entries
// whose elements left the document are pruned, live ones get their
// treatment re-asserted against hostile class and style rewrites. The
// scanned set is pruned in the same pass so rewritten slots become
// eligible again.
func (s *Scanner) Maintain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maintainLocked()
}

func (s *Scanner) maintainLocked() {
	pruned := 0
	s.registry.ForEach(func(m *Mitigation) {
		if !m.Element.IsConnected() {
			s.registry.Remove(m.Element)
			s.rebinder.Unobserve(m.Element)
			pruned++
			return
		}
		reassert(m)
	})
	s.scanned.Prune()
	if pruned > 0 {
		s.log.Debug("maintainer pruned disconnected mitigations",
			zap.Int("pruned", pruned), zap.Int("active", s.registry.Len()))
	}
}
