package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// userAgent, noCache and the provider flags are defined in scan.go
	// and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Scan multiple URLs from a file in parallel",
	Long: `Batch scans multiple URLs concurrently:
- Read URLs from input file (one per line, # comments allowed)
- Process URLs in parallel with configurable worker count
- Write one JSON report per URL into the output directory

Example:
  pageguard batch urls.txt
  pageguard batch urls.txt --concurrency 8 --output-dir ./reports
  pageguard batch urls.txt --scan-timeout 1m --timeout 15m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./pageguard-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from scan command
	batchCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", defaultScanTimeout, "timeout for individual scans")
	batchCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the decision cache")
	batchCmd.Flags().StringVar(&provider, "provider", "", "classifier provider (service, openai)")
	batchCmd.Flags().StringVar(&serviceURL, "service-url", "", "classification service base URL")
	batchCmd.Flags().StringVar(&modelName, "model", "", "model name for the openai provider")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	applyScanFlags(cfg)
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	log := buildLogger()
	defer func() { _ = log.Sync() }()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  PageGuard Batch Scan\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	urls, err := worker.ReadURLsFromFile(file)
	if err != nil {
		return fmt.Errorf("read URLs: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d URLs\n\n", len(urls))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ps, err := newPageScanner(cfg, log)
	if err != nil {
		return err
	}

	scan := func(ctx context.Context, u string) (*model.PageReport, error) {
		scanCtx, cancel := context.WithTimeout(ctx, scanTimeout)
		defer cancel()
		return ps.ScanPage(scanCtx, u)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Scanning with %d workers...\n\n", concurrency)
	outcomes := worker.NewPool(concurrency, scan).Process(ctx, urls)

	successCount := 0
	failureCount := 0
	flaggedTotal := 0

	for _, o := range outcomes {
		if o.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", o.URL, o.Err)
			continue
		}
		successCount++
		flaggedTotal += len(o.Report.Findings)

		path := filepath.Join(outputDir, sanitizeFilename(o.URL)+".json")
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write report: %v\n", o.URL, err)
			continue
		}
		werr := renderJSON(f, o.Report)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write report: %v\n", o.URL, werr)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d flagged)\n", o.URL, len(o.Report.Findings))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d URLs\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Flagged:   %d elements\n", flaggedTotal)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename derives a filesystem-safe slug from a URL
func sanitizeFilename(raw string) string {
	s := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		s = u.Host + u.Path
	}
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = strings.Trim(replacer.Replace(s), "_")
	if s == "" {
		s = "report"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
