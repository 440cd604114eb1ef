package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageguard/pageguard/internal/content"
	"github.com/pageguard/pageguard/internal/dom"
	"github.com/pageguard/pageguard/internal/model"
	"github.com/pageguard/pageguard/internal/report"
	"github.com/pageguard/pageguard/internal/scanner"
)

var watchInterval time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <url>",
	Short: "Watch a page for newly appearing unsafe content",
	Long: `Watch attaches a scanner to a page and keeps it attached. The page
is re-fetched on an interval; content blocks that were not present in
the previous snapshot are injected into the live document as mutations,
so they take the same instant-then-deferred path dynamically loaded
posts would take in a feed.

Only newly flagged content is printed. Stops on Ctrl-C.

Example:
  pageguard watch https://example.com/feed
  pageguard watch https://example.com/feed --interval 30s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Minute, "time between re-fetches")
	watchCmd.Flags().DurationVar(&scanTimeout, "timeout", defaultScanTimeout, "timeout per scan cycle")
	watchCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	watchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the decision cache")
	watchCmd.Flags().StringVar(&provider, "provider", "", "classifier provider (service, openai)")
	watchCmd.Flags().StringVar(&serviceURL, "service-url", "", "classification service base URL")
	watchCmd.Flags().StringVar(&modelName, "model", "", "model name for the openai provider")
}

func runWatch(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	applyScanFlags(cfg)
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	log := buildLogger()
	defer func() { _ = log.Sync() }()

	ps, err := newPageScanner(cfg, log)
	if err != nil {
		return err
	}

	w, err := newWatchSession(ctx, ps, url)
	if err != nil {
		return err
	}
	defer w.scanner.Close()

	fmt.Fprintf(os.Stderr, "Watching %s every %v (Ctrl-C to stop)\n", url, watchInterval)
	w.reportNew()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "\nStopped.\n")
			return nil
		case <-ticker.C:
		}
		if err := w.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				fmt.Fprintf(os.Stderr, "\nStopped.\n")
				return nil
			}
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", time.Now().Format("15:04:05"), err)
		}
	}
}

// watchSession holds one scanner attached across re-fetch cycles
type watchSession struct {
	ps      *pageScanner
	url     string
	scanner *scanner.Scanner
	body    *dom.Node

	// content hashes already present in an earlier snapshot
	seen map[string]struct{}
	// mitigations already printed
	printed map[*dom.Node]struct{}
}

func newWatchSession(ctx context.Context, ps *pageScanner, url string) (*watchSession, error) {
	scanCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	res, err := ps.fetcher.FetchWithRetry(scanCtx, url)
	if err != nil {
		return nil, err
	}
	sc := scanner.New(res.Document, scanner.Options{
		Config:     ps.cfg,
		Classifier: ps.classifier,
		Explainer:  ps.service,
		Sender:     ps.service,
		Encoder:    ps.encoder,
		Logger:     ps.log,
	})
	if err := sc.ScanTick(scanCtx); err != nil {
		sc.Close()
		return nil, err
	}

	w := &watchSession{
		ps:      ps,
		url:     url,
		scanner: sc,
		body:    res.Document.Body(),
		seen:    make(map[string]struct{}),
		printed: make(map[*dom.Node]struct{}),
	}
	w.markSeen(res.Document.Body())
	return w, nil
}

// cycle re-fetches the page, injects content blocks that were not in
// any earlier snapshot as mutations, and scans.
func (w *watchSession) cycle(ctx context.Context) error {
	scanCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	res, err := w.ps.fetcher.FetchWithRetry(scanCtx, w.url)
	if err != nil {
		return err
	}

	fresh := w.newBlocks(res.Document.Body())
	for _, block := range fresh {
		if _, err := w.body.Document().AppendHTML(w.body, block.OuterHTML()); err != nil {
			return fmt.Errorf("inject content: %w", err)
		}
	}
	if err := w.scanner.ScanTick(scanCtx); err != nil {
		return err
	}

	stamp := time.Now().Format("15:04:05")
	count := w.reportNew()
	if count == 0 {
		fmt.Fprintf(os.Stderr, "· %s: %d new block(s), nothing flagged\n", stamp, len(fresh))
	} else {
		fmt.Fprintf(os.Stderr, "! %s: %d new finding(s)\n", stamp, count)
	}
	return nil
}

// markSeen records the content hash of every text block and image
// under root.
func (w *watchSession) markSeen(root *dom.Node) {
	root.Walk(func(n *dom.Node) bool {
		if key, ok := blockKey(n); ok {
			w.seen[key] = struct{}{}
		}
		return true
	})
}

// newBlocks returns elements in a fresh snapshot whose content was not
// present in any earlier one, skipping descendants of returned blocks.
func (w *watchSession) newBlocks(root *dom.Node) []*dom.Node {
	var blocks []*dom.Node
	var visit func(n *dom.Node)
	visit = func(n *dom.Node) {
		if key, ok := blockKey(n); ok {
			if _, dup := w.seen[key]; !dup {
				w.markSeen(n)
				blocks = append(blocks, n)
				return
			}
		}
		for _, c := range n.ChildElements() {
			visit(c)
		}
	}
	visit(root)
	return blocks
}

// blockKey identifies an element by the text originating at it, or an
// image by its source. Keying on own text rather than subtree text
// keeps containers from looking new whenever a descendant changes.
func blockKey(n *dom.Node) (string, bool) {
	if n.Tag() == "img" {
		if src := n.AttrValue("src"); src != "" {
			return "img\x00" + src, true
		}
		return "", false
	}
	text := content.Normalize(n.OwnText())
	if text == "" {
		return "", false
	}
	return strconv.FormatUint(content.Hash(text), 16), true
}

// reportNew prints mitigations not yet printed and returns how many
func (w *watchSession) reportNew() int {
	count := 0
	for _, m := range w.scanner.Mitigations() {
		if _, ok := w.printed[m.Element]; ok {
			continue
		}
		w.printed[m.Element] = struct{}{}
		count++

		excerpt := m.Decision.OriginalContent
		if m.Kind == model.KindImage {
			excerpt = m.Element.AttrValue("src")
		}
		sev := report.Severity(m.Decision.Category, m.Decision.Confidence)
		fmt.Fprintf(os.Stdout, "  ✗ [%s/%s] %s (%d%%)", sev, m.Kind, m.Decision.Category, m.Decision.Confidence)
		if excerpt != "" {
			fmt.Fprintf(os.Stdout, ": %s", content.Truncate(content.Excerpt(excerpt), 100))
		}
		fmt.Fprintln(os.Stdout)
	}
	return count
}
