// Package fetch retrieves pages and materialises them as live documents
// the scanner can attach to. Fetching respects robots.txt: the scanner
// is a guest on other people's pages.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/model"
)

// Result carries the fetched page and its transport metadata
type Result struct {
	Document    *dom.Document
	FinalURL    string
	StatusCode  int
	ContentType string
}

// Fetcher downloads pages with a size cap and bounded redirects
type Fetcher struct {
	client    *http.Client
	robots    *RobotsChecker
	userAgent string
	maxBytes  int64
	log       *zap.Logger
}

// NewFetcher builds a fetcher from the HTTP configuration
func NewFetcher(cfg model.HTTPConfig, log *zap.Logger) *Fetcher {
	transport := &http.Transport{
		Proxy: proxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		log:       log,
	}
}

// Fetch downloads a page and parses it into a live document
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if allowed, _, err := f.robots.CanFetch(ctx, rawURL); err == nil && !allowed {
		return nil, fmt.Errorf("robots.txt disallows %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") && !strings.Contains(contentType, "xml") {
		return nil, fmt.Errorf("not an HTML page: %s", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := resp.Request.URL.String()
	doc, err := dom.Parse(finalURL, string(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	f.log.Debug("page fetched",
		zap.String("url", finalURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	return &Result{
		Document:    doc,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
	}, nil
}
