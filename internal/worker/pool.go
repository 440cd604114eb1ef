// Package worker runs page scans concurrently for batch mode. The pool
// is deliberately simple: a fixed worker count, order-preserving
// results, and cancellation through the context.
package worker

import (
	"context"
	"sync"

	"github.com/pageguard/pageguard/internal/model"
)

// ScanFunc scans one URL and returns its page report
type ScanFunc func(ctx context.Context, url string) (*model.PageReport, error)

// Outcome pairs a URL with its report or failure
type Outcome struct {
	URL    string
	Report *model.PageReport
	Err    error
}

// Pool fans page scans out over a fixed number of workers
type Pool struct {
	workers int
	scan    ScanFunc
}

// NewPool creates a pool
func NewPool(workers int, scan ScanFunc) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers, scan: scan}
}

// Process scans every URL and returns outcomes in input order. A
// cancelled context marks the remaining URLs with the context error.
func (p *Pool) Process(ctx context.Context, urls []string) []Outcome {
	outcomes := make([]Outcome, len(urls))
	if len(urls) == 0 {
		return outcomes
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					outcomes[i] = Outcome{URL: urls[i], Err: err}
					continue
				}
				report, err := p.scan(ctx, urls[i])
				outcomes[i] = Outcome{URL: urls[i], Report: report, Err: err}
			}
		}()
	}

	for i := range urls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return outcomes
}
