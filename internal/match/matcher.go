// Package match implements the instant classification tiers: pure,
// synchronous, deterministic matchers safe to run inside a mutation
// observer callback. Absence of a positive match is never a safe
// verdict; the matchers return unknown and defer to the remote
// classifier.
package match

import (
	"sort"
	"sync/atomic"

	"github.com/pageguard/pageguard/internal/content"
	"github.com/pageguard/pageguard/internal/model"
)

// AppliesTo selects which candidate kinds a matcher sees
type AppliesTo int

const (
	TextOnly AppliesTo = iota
	ImageOnly
	Both
)

// Input carries the content metadata a matcher may inspect
type Input struct {
	Kind model.NodeKind

	// Text is the extracted element text, or the surrounding text for
	// an image candidate
	Text string

	// Image metadata, set for image candidates only
	SrcURL string
	Alt    string

	// MinLength is the host profile's classification floor
	MinLength int
}

// Matcher is one tier of the instant pipeline. Decide must be pure:
// no fetching, no mutation, no logging beyond the hit counter.
type Matcher struct {
	ID        string
	Priority  int // lower runs first
	AppliesTo AppliesTo
	Decide    func(in Input) (model.Decision, bool)

	hits atomic.Int64 // diagnostic counter only
}

// Hits returns the diagnostic hit counter
func (m *Matcher) Hits() int64 { return m.hits.Load() }

// Pipeline is an ordered vector of matchers; first hit wins
type Pipeline struct {
	matchers []*Matcher
}

// NewPipeline builds the default tier ordering. Self-harm runs first as
// a data invariant, not a control-flow accident.
func NewPipeline() *Pipeline {
	p := &Pipeline{}
	p.matchers = append(p.matchers, textTiers()...)
	p.matchers = append(p.matchers, imageTier())
	sort.SliceStable(p.matchers, func(i, j int) bool {
		return p.matchers[i].Priority < p.matchers[j].Priority
	})
	return p
}

// Matchers exposes the ordered tiers
func (p *Pipeline) Matchers() []*Matcher { return p.matchers }

// Decide runs the tiers top to bottom and returns the first hit.
// The boolean is false when no tier matched (unknown, distinct from
// safe).
func (p *Pipeline) Decide(in Input) (model.Decision, bool) {
	if in.Kind == model.KindText {
		text := trimmed(in.Text)
		min := in.MinLength
		if min <= 0 {
			min = 5
		}
		if len([]rune(text)) < min {
			return model.Decision{}, false
		}
		if isDateTimeLiteral(text) {
			return model.Decision{}, false
		}
	}

	for _, m := range p.matchers {
		switch m.AppliesTo {
		case TextOnly:
			if in.Kind != model.KindText {
				continue
			}
		case ImageOnly:
			if in.Kind != model.KindImage {
				continue
			}
		}
		if d, ok := m.Decide(in); ok {
			m.hits.Add(1)
			return d, true
		}
	}
	return model.Decision{}, false
}

func trimmed(s string) string {
	return content.Normalize(s)
}
