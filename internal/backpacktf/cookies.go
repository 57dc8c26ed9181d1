package backpacktf

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/tf2tools/tf2arb/internal/logger"
)

// Cookie is one entry of an exported cookies.json file. The shape matches
// common browser cookie exports (name/value/domain/path/secure/expires, with
// expires as a unix timestamp, -1 or 0 meaning session-only).
type Cookie struct {
	Name    string  `json:"name"`
	Value   string  `json:"value"`
	Domain  string  `json:"domain"`
	Path    string  `json:"path"`
	Secure  bool    `json:"secure"`
	Expires float64 `json:"expires"`
}

// LoadCookies reads a cookie export file. A missing file is not an error:
// the site works logged out, just with fewer visible listings.
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("failed to parse cookies file: %w", err)
	}
	return cookies, nil
}

// ImportCookies installs cookies into the browser. Domains are normalized to
// the dotted form so subdomain navigation keeps the session.
func (b *Browser) ImportCookies(cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	err := chromedp.Run(b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			domain := c.Domain
			if domain != "" && !strings.HasPrefix(domain, ".") {
				domain = "." + domain
			}
			p := network.SetCookie(c.Name, c.Value).
				WithDomain(domain).
				WithPath(c.Path).
				WithSecure(c.Secure)
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				p = p.WithExpires(&expires)
			}
			if err := p.Do(ctx); err != nil {
				return err
			}
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}
	logger.Info("imported %d cookies", len(cookies))
	return nil
}
