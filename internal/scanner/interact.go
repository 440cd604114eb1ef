package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/explain"
	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/remote"
)

// Presenter renders the explanation surface for a mitigated element.
// Implementations must be cheap; both methods run with the scanner lock
// held.
type Presenter interface {
	ShowLoading(el *dom.Node)
	ShowExplanation(el *dom.Node, e remote.Explanation)
}

// NopPresenter discards all presentation
type NopPresenter struct{}

func (NopPresenter) ShowLoading(*dom.Node)                        {}
func (NopPresenter) ShowExplanation(*dom.Node, remote.Explanation) {}

// handleInteraction answers the first pointerdown on a mitigated
// element. The explanation is fetched at most once per session per
// element; self-harm keeps its fixed crisis text and never fetches.
func (s *Scanner) handleInteraction(el *dom.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.registry.Get(el)
	if m == nil || m.State == StateExplaining {
		return
	}
	d := m.Decision

	if d.SkipEducationalFetch || d.EducationalFetched {
		m.State = StateExplaining
		s.presenter.ShowExplanation(el, remote.Explanation{
			Title:    d.Title,
			Reason:   d.Reason,
			WhatToDo: d.WhatToDo,
		})
		return
	}

	// Marked fetched before the call returns: a second interaction while
	// the fetch is in flight must not issue another call.
	d.EducationalFetched = true
	m.State = StateExplaining
	s.presenter.ShowLoading(el)

	req := explain.Request{
		Category:        d.Category,
		OriginalContent: d.OriginalContent,
		ImageContext:    d.ImageContext,
		IsImage:         m.Kind == model.KindImage,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		e := s.explainer.Fetch(ctx, req)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.registry.Get(el) != m {
			return
		}
		d.Title = e.Title
		d.Reason = e.Reason
		d.WhatToDo = e.WhatToDo
		s.presenter.ShowExplanation(el, e)
		s.log.Debug("explanation resolved",
			zap.String("category", string(d.Category)),
			zap.String("tag", el.Tag()))
	}()
}

// Dismiss closes the explanation surface. The mitigation stays in place
// unless the acknowledge-reveal policy is enabled.
func (s *Scanner) Dismiss(el *dom.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.registry.Get(el)
	if m == nil {
		return
	}
	if s.cfg.Scanner.RevealOnAcknowledge {
		m.State = StateAcknowledged
		s.unmitigate(m)
		return
	}
	m.State = StateMitigated
}
