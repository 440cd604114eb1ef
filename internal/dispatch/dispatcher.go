// Package dispatch groups deferred candidates into remote calls: text
// candidates into one batch per call, image candidates into per-item
// calls with a base64-then-URL fallback.
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/remote"
)

// ErrShortResponse marks positions a short batch response did not cover
var ErrShortResponse = errors.New("batch response shorter than request")

// TextResult pairs a candidate with its remote decision. Err is set for
// transport failures and for positions missing from a short response;
// such candidates are treated as safe-unknown and not mitigated.
type TextResult struct {
	Candidate model.Candidate
	Decision  model.Decision
	Err       error
}

// Dispatcher enforces the per-batch cap and the image fallback ladder
type Dispatcher struct {
	classifier remote.Classifier
	encoder    MediaEncoder
	limiter    *Limiter
	batchSize  int
	log        *zap.Logger

	// call counters are read by snapshot callers on other goroutines
	batchCalls atomic.Int64
	imageCalls atomic.Int64
}

// New creates a dispatcher. batchSize is clamped to the wire limit.
func New(classifier remote.Classifier, encoder MediaEncoder, limiter *Limiter, batchSize int, log *zap.Logger) *Dispatcher {
	if batchSize <= 0 || batchSize > remote.BatchLimit {
		batchSize = remote.BatchLimit
	}
	if limiter == nil {
		limiter = NewLimiter(0, 0)
	}
	return &Dispatcher{
		classifier: classifier,
		encoder:    encoder,
		limiter:    limiter,
		batchSize:  batchSize,
		log:        log,
	}
}

// BatchCalls returns how many analyze-batch calls were made
func (d *Dispatcher) BatchCalls() int64 { return d.batchCalls.Load() }

// ImageCalls returns how many analyze-image calls were made
func (d *Dispatcher) ImageCalls() int64 { return d.imageCalls.Load() }

// DispatchText sends text candidates in batches of at most batchSize
// and aligns the response positionally. A response shorter than the
// request yields ErrShortResponse for the uncovered positions only.
func (d *Dispatcher) DispatchText(ctx context.Context, candidates []model.Candidate) []TextResult {
	results := make([]TextResult, 0, len(candidates))
	for start := 0; start < len(candidates); start += d.batchSize {
		end := min(start+d.batchSize, len(candidates))
		results = append(results, d.dispatchBatch(ctx, candidates[start:end])...)
	}
	return results
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, batch []model.Candidate) []TextResult {
	contents := make([]string, len(batch))
	for i, c := range batch {
		contents[i] = c.Content
	}

	d.batchCalls.Add(1)
	decisions, err := d.classifier.AnalyzeBatch(ctx, contents)
	results := make([]TextResult, len(batch))
	for i, c := range batch {
		results[i].Candidate = c
		switch {
		case err != nil:
			results[i].Err = err
		case i >= len(decisions):
			results[i].Err = ErrShortResponse
		default:
			results[i].Decision = decisions[i]
		}
	}
	if err != nil {
		d.log.Warn("batch classification failed; treating as safe-unknown",
			zap.Int("candidates", len(batch)), zap.Error(err))
	} else if len(decisions) < len(batch) {
		d.log.Warn("batch response shorter than request",
			zap.Int("want", len(batch)), zap.Int("got", len(decisions)))
	}
	return results
}

// DispatchImage classifies one image. The encoder runs first to work
// around CDNs that refuse direct requests from the service; on encode
// failure the source URL is sent instead. A transport error leaves the
// image unmitigated; the caller marks it scanned so re-entry does not
// retry indefinitely.
func (d *Dispatcher) DispatchImage(ctx context.Context, cand model.Candidate) (model.Decision, error) {
	src := cand.Node.AttrValue("src")
	if src == "" {
		return model.Decision{}, errors.New("image candidate without src")
	}

	if err := d.limiter.Wait(ctx, src); err != nil {
		return model.Decision{}, err
	}

	req := remote.ImageRequest{URL: src}
	if d.encoder != nil {
		if b64, err := d.encoder.EncodeBase64(ctx, src); err == nil {
			req = remote.ImageRequest{Base64: b64}
		} else {
			d.log.Debug("image encode failed; falling back to URL form",
				zap.String("src", src), zap.Error(err))
		}
	}

	d.imageCalls.Add(1)
	decision, err := d.classifier.AnalyzeImage(ctx, req)
	if err != nil {
		return model.Decision{}, err
	}
	if !decision.Safe && decision.ImageContext == nil {
		decision.ImageContext = &model.ImageContext{
			Source:     model.ImageSourceNSFWModel,
			Confidence: decision.Confidence,
		}
	}
	return decision, nil
}
