package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/minsucho/passagetrace/internal/model"
)

// ChromeSession drives the search UI through a headless browser. It is the
// default driver: the reference search site builds its result page with
// scripts, so a plain GET never sees the result blocks.
type ChromeSession struct {
	cfg     model.SearchConfig
	verbose bool

	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewChromeSession creates an unopened chrome-driver session.
func NewChromeSession(cfg model.SearchConfig, verbose bool) *ChromeSession {
	return &ChromeSession{cfg: cfg, verbose: verbose}
}

// Open starts a fresh headless browser process.
func (s *ChromeSession) Open(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.cfg.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Run an empty task list so the browser starts now and a broken driver
	// surfaces here rather than on the first query.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return fmt.Errorf("%w: %v", ErrSessionCreate, err)
	}

	s.ctx = tabCtx
	s.cancelTab = cancelTab
	s.cancelAlloc = cancelAlloc
	return nil
}

// Query navigates to the search page, submits sentence, and parses the
// settled result page.
func (s *ChromeSession) Query(ctx context.Context, sentence string) ([]model.MatchRecord, error) {
	if s.ctx == nil {
		return nil, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Bounded wait for the search widget.
	readyCtx, cancel := context.WithTimeout(s.ctx, s.cfg.ReadyTimeout)
	defer cancel()

	err := chromedp.Run(readyCtx,
		chromedp.Navigate(s.cfg.URL),
		chromedp.WaitVisible(s.cfg.ReadySelector, chromedp.ByQuery),
		chromedp.WaitVisible(s.cfg.InputSelector, chromedp.ByQuery),
		chromedp.SetValue(s.cfg.InputSelector, sentence, chromedp.ByQuery),
		chromedp.Click(s.cfg.SubmitSelector, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrUITimeout, err)
		}
		return nil, fmt.Errorf("drive search page: %w", err)
	}

	// Let the result page settle, then snapshot it for the parser.
	var src string
	snapCtx, cancelSnap := context.WithTimeout(s.ctx, s.cfg.SettleDelay+s.cfg.ReadyTimeout)
	defer cancelSnap()

	err = chromedp.Run(snapCtx,
		chromedp.Sleep(s.cfg.SettleDelay),
		chromedp.OuterHTML("html", &src, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("read result page: %w", err)
	}

	return matchPage(src, s.cfg, sentence)
}

// Close tears the browser down best-effort and enforces the cooldown so the
// debugging port is released before a replacement opens.
func (s *ChromeSession) Close() {
	if s.ctx != nil {
		if err := chromedp.Cancel(s.ctx); err != nil && s.verbose {
			fmt.Fprintf(os.Stderr, "session teardown: %v\n", err)
		}
	}
	if s.cancelTab != nil {
		s.cancelTab()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	s.ctx, s.cancelTab, s.cancelAlloc = nil, nil, nil

	time.Sleep(s.cfg.Cooldown)
}

// matchPage validates the echoed query text and extracts the match records.
// Shared by both drivers.
func matchPage(src string, cfg model.SearchConfig, sentence string) ([]model.MatchRecord, error) {
	page, err := ParsePage(src, PageSpec{
		EchoClass:        cfg.EchoClass,
		BlockClass:       cfg.BlockClass,
		ProvenanceHeader: cfg.ProvenanceHeader,
		PassageHeader:    cfg.PassageHeader,
	})
	if err != nil {
		return nil, fmt.Errorf("parse result page: %w", err)
	}

	if strings.TrimSpace(page.Echo) != sentence {
		return nil, fmt.Errorf("%w: got %q", ErrEchoMismatch, page.Echo)
	}
	// Skipped blocks are a data-quality signal the operator should see on
	// every run, not only under --verbose.
	if page.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d unparseable result blocks for %q\n", page.Skipped, sentence)
	}
	return page.Records, nil
}
