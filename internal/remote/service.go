package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageguard/pageguard/internal/model"
)

// Service is the client for the dedicated classification service. It
// implements Classifier, Explainer and IncidentSender.
type Service struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewService creates a client for the configured base URL
func NewService(cfg model.ServiceConfig, log *zap.Logger) *Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:8000"
	}
	return &Service{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// AnalyzeBatch classifies up to BatchLimit texts in one call
func (s *Service) AnalyzeBatch(ctx context.Context, contents []string) ([]model.Decision, error) {
	if len(contents) > BatchLimit {
		return nil, fmt.Errorf("batch of %d exceeds limit %d", len(contents), BatchLimit)
	}
	var resp struct {
		Results []model.Decision `json:"results"`
	}
	if err := s.post(ctx, "/analyze-batch", map[string]any{"contents": contents}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AnalyzeImage classifies a single image by bytes or URL
func (s *Service) AnalyzeImage(ctx context.Context, req ImageRequest) (model.Decision, error) {
	var d model.Decision
	if err := s.post(ctx, "/analyze-image-nsfw", req, &d); err != nil {
		return model.Decision{}, err
	}
	return d, nil
}

// EducationalReason fetches the human-readable explanation for a
// decision. Callers must tolerate any error and fall back to canned
// text.
func (s *Service) EducationalReason(ctx context.Context, req ExplainRequest) (Explanation, error) {
	var e Explanation
	if err := s.post(ctx, "/educational-reason", req, &e); err != nil {
		return Explanation{}, err
	}
	return e, nil
}

// SendIncident posts an incident record; the response body is ignored
func (s *Service) SendIncident(ctx context.Context, inc Incident) error {
	return s.post(ctx, "/flagged-events", inc, nil)
}

// post issues a JSON POST and decodes the response into out when non-nil
func (s *Service) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
