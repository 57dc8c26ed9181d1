package backpacktf

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/tf2tools/tf2arb/internal/config"
)

// Browser owns a headless Chrome instance shared by all fetches in a run.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBrowser launches Chrome with scraping-friendly flags and verifies it by
// opening a blank page.
func NewBrowser(cfg config.BackpackConfig) (*Browser, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), browserFlags(cfg)...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	cancel := func() {
		ctxCancel()
		allocCancel()
	}

	if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, err
	}

	return &Browser{ctx: ctx, cancel: cancel}, nil
}

// browserFlags tunes Chrome for fast, quiet page loads. Image loading stays
// on: backpack.tf renders listing data alongside its item imagery and some
// layouts break without it.
func browserFlags(cfg config.BackpackConfig) []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-audio-output", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "en-US"),
		chromedp.UserAgent(cfg.UserAgent),
	)
}

// PageContext returns a per-fetch context carrying the given timeout.
func (b *Browser) PageContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, timeout)
}

// Close shuts the browser down.
func (b *Browser) Close() {
	b.cancel()
}
