package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/content"
	"github.com/pageguard/pageguard/internal/dispatch"
	"github.com/pageguard/pageguard/internal/fetch"
	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/remote"
	"github.com/pageguard/pageguard/internal/report"
	"github.com/pageguard/pageguard/internal/scanner"
)

// pageScanner wires one fetch-attach-scan cycle per URL
type pageScanner struct {
	cfg        *model.Config
	fetcher    *fetch.Fetcher
	classifier remote.Classifier
	service    *remote.Service
	encoder    dispatch.MediaEncoder
	log        *zap.Logger
}

func newPageScanner(cfg *model.Config, log *zap.Logger) (*pageScanner, error) {
	classifier, err := remote.NewClassifier(cfg.Service, log)
	if err != nil {
		return nil, err
	}
	return &pageScanner{
		cfg:        cfg,
		fetcher:    fetch.NewFetcher(cfg.HTTP, log),
		classifier: classifier,
		// The dedicated service carries the explanation and incident
		// endpoints regardless of which classifier is selected.
		service: remote.NewService(cfg.Service, log),
		// Images go to the classifier base64-first; the URL form is the
		// fallback when a CDN refuses the direct fetch.
		encoder: dispatch.NewHTTPMediaEncoder(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes),
		log:     log,
	}, nil
}

// ScanPage fetches a page, runs one scan epoch over it and summarises
// the mitigations
func (p *pageScanner) ScanPage(ctx context.Context, url string) (*model.PageReport, error) {
	res, err := p.fetcher.FetchWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	sc := scanner.New(res.Document, scanner.Options{
		Config:     p.cfg,
		Classifier: p.classifier,
		Explainer:  p.service,
		Sender:     p.service,
		Encoder:    p.encoder,
		Logger:     p.log,
	})
	defer sc.Close()

	if err := sc.ScanTick(ctx); err != nil {
		return nil, err
	}
	return p.summarise(res, sc), nil
}

func (p *pageScanner) summarise(res *fetch.Result, sc *scanner.Scanner) *model.PageReport {
	stats := sc.Snapshot()
	rep := &model.PageReport{
		URL:        res.FinalURL,
		Title:      res.Document.Title(),
		ScannedAt:  time.Now().UTC(),
		BatchCalls: stats.BatchCalls,
		ImageCalls: stats.ImageCalls,
		SessionID:  stats.SessionID,
	}
	for _, m := range sc.Mitigations() {
		excerpt := m.Decision.OriginalContent
		if m.Kind == model.KindImage {
			excerpt = m.Element.AttrValue("src")
		}
		rep.Findings = append(rep.Findings, model.Finding{
			Category:   m.Decision.Category,
			Confidence: m.Decision.Confidence,
			Kind:       m.Kind,
			ElementTag: m.Element.Tag(),
			Excerpt:    content.Excerpt(excerpt),
			Severity:   report.Severity(m.Decision.Category, m.Decision.Confidence),
		})
	}
	sort.Slice(rep.Findings, func(i, j int) bool {
		if rep.Findings[i].Confidence != rep.Findings[j].Confidence {
			return rep.Findings[i].Confidence > rep.Findings[j].Confidence
		}
		return rep.Findings[i].Category < rep.Findings[j].Category
	})
	return rep
}

// renderJSON writes a page report as indented JSON
func renderJSON(w io.Writer, rep *model.PageReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// renderText writes a human-readable page report
func renderText(w io.Writer, rep *model.PageReport) {
	fmt.Fprintf(w, "\n%s\n", rep.URL)
	if rep.Title != "" {
		fmt.Fprintf(w, "  Title:       %s\n", rep.Title)
	}
	fmt.Fprintf(w, "  Findings:    %d\n", len(rep.Findings))
	fmt.Fprintf(w, "  Batch calls: %d, image calls: %d\n", rep.BatchCalls, rep.ImageCalls)
	for _, f := range rep.Findings {
		fmt.Fprintf(w, "  ✗ [%s/%s] %s (%d%%)", f.Severity, f.Kind, f.Category, f.Confidence)
		if f.Excerpt != "" {
			fmt.Fprintf(w, ": %s", content.Truncate(f.Excerpt, 100))
		}
		fmt.Fprintln(w)
	}
	if len(rep.Findings) == 0 {
		fmt.Fprintf(w, "  ✓ Nothing flagged\n")
	}
}
