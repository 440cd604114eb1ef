// Package scanner drives real-time content mitigation over a live
// document: a mutation observer feeds an instant pattern path and a
// debounced deferred path, flagged elements are blurred in place, and
// a maintainer sweep keeps mitigations alive against hostile rewrites.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/content"
	"github.com/pageguard/pageguard/internal/dispatch"
	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/explain"
	"github.com/pageguard/pageguard/internal/hostprofile"
	"github.com/pageguard/pageguard/internal/match"
	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/remote"
	"github.com/pageguard/pageguard/internal/report"
)

// ErrClosed is returned by operations on a closed scanner
var ErrClosed = errors.New("scanner closed")

// Options configures a Scanner. Zero-value fields get defaults;
// Classifier is the only required dependency for deferred scanning.
type Options struct {
	Config     *model.Config
	Profile    *hostprofile.Profile // overrides URL-derived profile
	Classifier remote.Classifier
	Explainer  remote.Explainer
	Sender     remote.IncidentSender
	Encoder    dispatch.MediaEncoder
	Presenter  Presenter
	Reject     RejectFunc
	Logger     *zap.Logger
	Now        func() time.Time
}

// Scanner owns all mutable scanning state behind one mutex. The
// document itself belongs to a single goroutine; remote completions
// re-enter through the mutex.
type Scanner struct {
	mu sync.Mutex

	doc     *dom.Document
	profile hostprofile.Profile
	cfg     *model.Config

	pipeline *match.Pipeline
	cache    *DecisionCache
	scanned  *ScannedSet
	registry *Registry
	selector *targetSelector

	dispatcher *dispatch.Dispatcher
	explainer  *explain.Fetcher
	reporter   *report.Reporter
	presenter  Presenter

	observer *dom.MutationObserver
	rebinder *Rebinder

	// epoch state
	epochActive   bool
	cooldownUntil time.Time
	timerActive   bool
	kick          chan struct{}

	now    func() time.Time
	log    *zap.Logger
	closed bool
}

// New attaches a scanner to a document and performs no scanning yet;
// the first epoch runs on ScanTick or on the first scheduled kick.
func New(doc *dom.Document, opts Options) *Scanner {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	profile := hostprofile.Resolve(doc.URL())
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = NopPresenter{}
	}
	reject := opts.Reject
	if reject == nil {
		reject = DefaultReject
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Scanner{
		doc:       doc,
		profile:   profile,
		cfg:       cfg,
		pipeline:  match.NewPipeline(),
		cache:     NewDecisionCache(cfg.Cache),
		scanned:   NewScannedSet(),
		registry:  NewRegistry(),
		presenter: presenter,
		explainer: explain.NewFetcher(opts.Explainer, log),
		kick:      make(chan struct{}, 1),
		now:       now,
		log:       log,
	}
	s.selector = &targetSelector{registry: s.registry, reject: reject}
	if opts.Sender != nil {
		s.reporter = report.NewReporter(opts.Sender, log)
	}
	if opts.Classifier != nil {
		limiter := dispatch.NewLimiter(cfg.Scanner.ImageRatePerSecond, cfg.Scanner.ImageRateBurst)
		s.dispatcher = dispatch.New(opts.Classifier, opts.Encoder, limiter, cfg.Scanner.BatchSize, log)
	}
	s.rebinder = newRebinder(doc, s.registry.Get)
	s.attachObserver()
	return s
}

// ScanTick runs one scan epoch: plan, resolve what the cache and the
// pattern tiers can, send the rest to the remote classifier, record
// and apply the results. At most one epoch runs at a time; a tick
// inside the cooldown window is a no-op.
func (s *Scanner) ScanTick(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.epochActive || s.now().Before(s.cooldownUntil) {
		s.mu.Unlock()
		return nil
	}
	s.epochActive = true

	p := s.planLocked()
	deferredTexts := p.texts[:0]
	for _, c := range p.texts {
		if !s.resolveTextLocked(c) {
			deferredTexts = append(deferredTexts, c)
		}
	}
	deferredImages := p.images[:0]
	for _, c := range p.images {
		if !s.resolveImageLocked(c) {
			deferredImages = append(deferredImages, c)
		}
	}
	s.mu.Unlock()

	// Remote calls happen outside the lock; the instant path stays
	// responsive while a batch is in flight.
	var textResults []dispatch.TextResult
	if s.dispatcher != nil && len(deferredTexts) > 0 {
		textResults = s.dispatcher.DispatchText(ctx, deferredTexts)
	}
	type imageResult struct {
		cand     model.Candidate
		decision model.Decision
		err      error
	}
	var imageResults []imageResult
	if s.dispatcher != nil {
		for _, c := range deferredImages {
			d, err := s.dispatcher.DispatchImage(ctx, c)
			imageResults = append(imageResults, imageResult{cand: c, decision: d, err: err})
		}
	}

	s.mu.Lock()
	for _, r := range textResults {
		if r.Err != nil {
			// Safe-unknown: no cache entry, no mitigation, but inspected
			// so the epoch does not retry the same content forever.
			s.scanned.Add(r.Candidate.Node)
			continue
		}
		s.recordTextLocked(r.Candidate, r.Decision)
	}
	for _, r := range imageResults {
		if r.err != nil {
			s.scanned.Add(r.cand.Node)
			s.log.Debug("image classification failed",
				zap.String("src", r.cand.Content), zap.Error(r.err))
			continue
		}
		s.recordImageLocked(r.cand, r.decision)
	}

	s.epochActive = false
	s.cooldownUntil = s.now().Add(s.profile.Cooldown)
	mitigations := s.registry.Len()
	s.mu.Unlock()

	s.log.Debug("scan epoch finished",
		zap.Int("texts", len(p.texts)),
		zap.Int("images", len(p.images)),
		zap.Int("deferred_texts", len(deferredTexts)),
		zap.Int("mitigations", mitigations))
	return nil
}

// resolveTextLocked settles a planned text candidate without the
// network. Returns false when the candidate must go to the classifier.
func (s *Scanner) resolveTextLocked(c model.Candidate) bool {
	if s.scanned.Contains(c.Node) {
		return true
	}
	if d, ok := s.cache.Get(model.KindText, c.Hash); ok {
		s.scanned.Add(c.Node)
		if d.ShouldMitigate() {
			s.applyTextLocked(c.Node, d)
		}
		return true
	}
	d, ok := s.pipeline.Decide(match.Input{
		Kind:      model.KindText,
		Text:      c.Content,
		MinLength: s.profile.MinTextLength,
	})
	if !ok {
		return false
	}
	s.recordTextLocked(c, d)
	return true
}

func (s *Scanner) resolveImageLocked(c model.Candidate) bool {
	if s.scanned.Contains(c.Node) {
		return true
	}
	if d, ok := s.cache.Get(model.KindImage, c.Hash); ok {
		s.scanned.Add(c.Node)
		if d.ShouldMitigate() {
			s.applyImageLocked(c.Node, d)
		}
		return true
	}
	d, ok := s.pipeline.Decide(match.Input{
		Kind:   model.KindImage,
		SrcURL: c.Content,
		Alt:    c.Node.AttrValue("alt"),
		Text:   content.ImageText(c.Node),
	})
	if !ok {
		return false
	}
	s.recordImageLocked(c, d)
	return true
}

// recordTextLocked caches, marks inspected and applies a settled text
// decision. An already-mitigated element is never downgraded: a safe
// verdict changes nothing that is already blurred.
func (s *Scanner) recordTextLocked(c model.Candidate, d model.Decision) {
	s.cache.Set(model.KindText, c.Hash, d)
	s.scanned.Add(c.Node)
	if d.ShouldMitigate() {
		s.applyTextLocked(c.Node, d)
	}
}

func (s *Scanner) recordImageLocked(c model.Candidate, d model.Decision) {
	s.cache.Set(model.KindImage, c.Hash, d)
	s.scanned.Add(c.Node)
	if d.ShouldMitigate() {
		s.applyImageLocked(c.Node, d)
	}
}

// Run drives the scanner until the context ends: scheduled kicks turn
// into scan epochs and the maintainer sweeps on its interval
func (s *Scanner) Run(ctx context.Context) error {
	interval := s.cfg.Scanner.MaintainerInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.kick:
			if err := s.ScanTick(ctx); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				s.log.Warn("scan epoch failed", zap.Error(err))
			}
		case <-ticker.C:
			s.Maintain()
		}
	}
}

// Kick requests a deferred scan epoch through the debounce machinery
func (s *Scanner) Kick() { s.schedule() }

// Stats is a point-in-time snapshot for CLI output
type Stats struct {
	Mitigations int
	Scanned     int
	BatchCalls  int64
	ImageCalls  int64
	SessionID   string
}

// Snapshot returns current counters
func (s *Scanner) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Mitigations: s.registry.Len(),
		Scanned:     s.scanned.Len(),
	}
	if s.dispatcher != nil {
		st.BatchCalls = s.dispatcher.BatchCalls()
		st.ImageCalls = s.dispatcher.ImageCalls()
	}
	if s.reporter != nil {
		st.SessionID = s.reporter.SessionID()
	}
	return st
}

// Mitigations returns the active mitigations in no particular order
func (s *Scanner) Mitigations() []*Mitigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Mitigation, 0, s.registry.Len())
	s.registry.ForEach(func(m *Mitigation) { out = append(out, m) })
	return out
}

// Registry exposes the blocked-element registry for inspection
func (s *Scanner) Registry() *Registry { return s.registry }

// Close detaches the scanner from the document and drops all state.
// Mitigations already applied stay applied; nothing reveals on close.
func (s *Scanner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.observer.Disconnect()
	s.rebinder.Disconnect()
	s.cache.Clear()
	s.scanned.Clear()
}
