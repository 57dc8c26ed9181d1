package backpacktf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/tf2tools/tf2arb/internal/config"
	"github.com/tf2tools/tf2arb/internal/logger"
	"github.com/tf2tools/tf2arb/internal/models"
)

const (
	sellSelector      = `div.item[data-listing_intent="sell"]`
	buySelector       = `[data-listing_intent="buy"]`
	suggestedSelector = `div.tag.bottom-right span`

	// scrollRounds bounds the infinite-scroll loop on classifieds pages.
	scrollRounds = 12
)

// Client scrapes backpack.tf through a shared Browser. It implements Source.
type Client struct {
	browser *Browser
	cfg     config.BackpackConfig
}

// NewClient launches the browser and optionally imports a cookie export.
func NewClient(cfg config.BackpackConfig) (*Client, error) {
	browser, err := NewBrowser(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	if cfg.CookiesFile != "" {
		cookies, err := LoadCookies(cfg.CookiesFile)
		if err != nil {
			logger.Warn("skipping cookie import: %v", err)
		} else if err := browser.ImportCookies(cookies); err != nil {
			logger.Warn("cookie import failed: %v", err)
		}
	}

	return &Client{browser: browser, cfg: cfg}, nil
}

// Close shuts down the underlying browser.
func (c *Client) Close() {
	c.browser.Close()
}

// Warmup navigates to the query's stats page once. Run before the first real
// fetch so session cookies and any login redirect resolve outside the timed
// scraping path.
func (c *Client) Warmup(ctx context.Context, query models.ItemAttributes) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pageCtx, cancel := c.browser.PageContext(c.cfg.Timeout)
	defer cancel()
	return chromedp.Run(pageCtx,
		chromedp.Navigate(StatsURL(c.cfg.BaseURL, query)),
		chromedp.WaitReady("body"),
		chromedp.Sleep(c.cfg.PageSettle),
	)
}

// FetchListings returns the raw listing price strings for the query on one
// market side. Sell prices come from the item's stats page; buy orders are
// collected across classifieds pages until a page adds nothing new or the
// configured page limit is reached.
func (c *Client) FetchListings(ctx context.Context, query models.ItemAttributes, intent models.Intent) ([]string, error) {
	var prices []string
	err := c.withRetry(ctx, func() error {
		var err error
		if intent == models.IntentBuy {
			prices, err = c.fetchBuyOrders(query)
		} else {
			prices, err = c.fetchSellListings(query)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched %d %s listings for %s", len(prices), intent, query.FullName(query.Killstreak))
	return prices, nil
}

// FetchSuggestedPrice scrapes the suggested-price tag from the query's stats
// page, returning "" when the tag is absent.
func (c *Client) FetchSuggestedPrice(ctx context.Context, query models.ItemAttributes) (string, error) {
	var text string
	err := c.withRetry(ctx, func() error {
		pageCtx, cancel := c.browser.PageContext(c.cfg.Timeout)
		defer cancel()
		return chromedp.Run(pageCtx,
			chromedp.Navigate(StatsURL(c.cfg.BaseURL, query)),
			chromedp.WaitReady("body"),
			chromedp.Sleep(c.cfg.PageSettle),
			chromedp.Evaluate(extractTextJS(suggestedSelector), &text),
		)
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) fetchSellListings(query models.ItemAttributes) ([]string, error) {
	pageCtx, cancel := c.browser.PageContext(c.cfg.Timeout)
	defer cancel()

	var prices []string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(StatsURL(c.cfg.BaseURL, query)),
		chromedp.WaitReady("body"),
		chromedp.Sleep(c.cfg.PageSettle),
		chromedp.Evaluate(extractPricesJS(sellSelector), &prices),
	)
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (c *Client) fetchBuyOrders(query models.ItemAttributes) ([]string, error) {
	var all []string
	for page := 1; page <= c.cfg.MaxClassifiedsPages; page++ {
		prices, err := c.fetchClassifiedsPage(query, page)
		if err != nil {
			return nil, err
		}
		if len(prices) == 0 {
			break
		}
		all = append(all, prices...)
		time.Sleep(c.cfg.PageSettle)
	}
	return all, nil
}

func (c *Client) fetchClassifiedsPage(query models.ItemAttributes, page int) ([]string, error) {
	pageCtx, cancel := c.browser.PageContext(c.cfg.Timeout)
	defer cancel()

	url := ClassifiedsURL(c.cfg.BaseURL, query, page)
	logger.Debug("classifieds page %d: %s", page, url)

	var prices []string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(c.cfg.PageSettle),
		c.loadAllOrders(),
		chromedp.Evaluate(extractPricesJS(buySelector), &prices),
	)
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// loadAllOrders scrolls the classifieds page until the listing count stops
// growing, forcing lazily rendered orders into the DOM.
func (c *Client) loadAllOrders() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		last := -1
		for i := 0; i < scrollRounds; i++ {
			if err := chromedp.Evaluate(`window.scrollBy(0, document.body.scrollHeight); undefined`, nil).Do(ctx); err != nil {
				return err
			}
			if err := chromedp.Sleep(c.cfg.PageSettle).Do(ctx); err != nil {
				return err
			}
			var total int
			countJS := `document.querySelectorAll('[data-listing_intent="buy"], [data-listing_intent="sell"]').length`
			if err := chromedp.Evaluate(countJS, &total).Do(ctx); err != nil {
				return err
			}
			if total <= last {
				break
			}
			last = total
		}
		return nil
	})
}

// withRetry runs fn up to the configured retry budget with a fixed delay,
// honoring context cancellation between attempts.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		logger.Warn("fetch attempt %d/%d failed: %v", attempt, c.cfg.MaxRetries, lastErr)
		if attempt < c.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}
	return fmt.Errorf("fetch failed after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

func extractPricesJS(selector string) string {
	return fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(e => e.getAttribute('data-listing_price') || '')`,
		selector)
}

func extractTextJS(selector string) string {
	return fmt.Sprintf(
		`(document.querySelector(%q) || {textContent: ''}).textContent.trim()`,
		selector)
}
