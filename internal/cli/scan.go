package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageguard/pageguard/internal/model"
)

var (
	scanTimeout time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	insecureTLS bool
	provider    string
	serviceURL  string
	modelName   string
	httpProxy   string
	httpsProxy  string
	jsonOut     bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Fetch a page, scan it once and report what was flagged",
	Long: `Scan fetches a single page, attaches the scanner and runs one
scan epoch: local pattern tiers first, then bounded remote batches for
anything ambiguous.

Example:
  pageguard scan https://example.com/feed
  pageguard scan https://example.com --json
  pageguard scan https://example.com --provider openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "emit the report as JSON")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", defaultScanTimeout, "overall scan timeout")
	scanCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	scanCmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the decision cache")
	scanCmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	scanCmd.Flags().StringVar(&provider, "provider", "", "classifier provider (service, openai)")
	scanCmd.Flags().StringVar(&serviceURL, "service-url", "", "classification service base URL")
	scanCmd.Flags().StringVar(&modelName, "model", "", "model name for the openai provider")
	scanCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	scanCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runScan(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	cfg := loadConfig()
	applyScanFlags(cfg)
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	log := buildLogger()
	defer func() { _ = log.Sync() }()

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", url)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.Service.Provider)
		fmt.Fprintf(os.Stderr, "Cache:    %v\n\n", cfg.Cache.Enabled)
	}

	ps, err := newPageScanner(cfg, log)
	if err != nil {
		return err
	}
	rep, err := ps.ScanPage(ctx, url)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if jsonOut {
		return renderJSON(os.Stdout, rep)
	}
	renderText(os.Stdout, rep)
	return nil
}

// applyScanFlags layers the scan command's flags over the config
func applyScanFlags(cfg *model.Config) {
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	cfg.HTTP.InsecureTLS = insecureTLS
	if noCache {
		cfg.Cache.Enabled = false
	}
	if provider != "" {
		cfg.Service.Provider = provider
	}
	if serviceURL != "" {
		cfg.Service.BaseURL = serviceURL
	}
	if modelName != "" {
		cfg.Service.Model = modelName
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
}
