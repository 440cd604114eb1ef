package dispatch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MediaEncoder turns an image source URL into a base64 payload. The
// primary implementation fetches the bytes directly; hosts whose CDNs
// refuse the request make it fail, and the dispatcher falls back to
// sending the URL itself.
type MediaEncoder interface {
	EncodeBase64(ctx context.Context, srcURL string) (string, error)
}

// HTTPMediaEncoder fetches image bytes over HTTP
type HTTPMediaEncoder struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTPMediaEncoder creates an encoder with a byte cap
func NewHTTPMediaEncoder(timeout time.Duration, userAgent string, maxBytes int64) *HTTPMediaEncoder {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &HTTPMediaEncoder{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// EncodeBase64 fetches the image and returns its base64 encoding
func (e *HTTPMediaEncoder) EncodeBase64(ctx context.Context, srcURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("fetch image: not an image (%s)", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("fetch image: empty body")
	}
	return base64.StdEncoding.EncodeToString(body), nil
}
