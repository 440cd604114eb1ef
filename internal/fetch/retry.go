package fetch

import (
	"context"
	"strings"
	"time"
)

const maxFetchAttempts = 3

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = time.Sleep

// FetchWithRetry fetches with exponential backoff on transient failures.
// Client errors fail immediately; 429 and 5xx are retried.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*Result, error) {
	var lastErr error
	backoff := 500 * time.Millisecond

	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return nil, err
		}
		if attempt < maxFetchAttempts {
			fetchSleepFunc(backoff)
			backoff *= 2
		}
	}
	return nil, lastErr
}

// isRetryableFetchError classifies transport failures worth retrying
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, status := range []string{"429", "500", "502", "503", "504"} {
		if strings.Contains(msg, "unexpected status: "+status) {
			return true
		}
	}
	if strings.HasPrefix(msg, "fetch: ") {
		return true
	}
	return false
}
