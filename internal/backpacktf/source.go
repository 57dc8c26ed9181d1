// Package backpacktf scrapes listing prices from backpack.tf.
//
// Listing prices are not present in the served HTML; the site renders them
// client-side into data-listing_price attributes, so the package drives a
// headless Chrome instance via chromedp and extracts the attributes with
// injected JavaScript. Sell prices come from an item's stats page, buy
// orders from the paged classifieds search.
package backpacktf

import (
	"context"

	"github.com/tf2tools/tf2arb/internal/models"
)

// Source is the listing capability the evaluation pipeline consumes. A fetch
// may legitimately return zero listings; transport failures surface as
// errors and are the caller's concern, never the core pipeline's.
type Source interface {
	// FetchListings returns the raw price strings currently displayed for
	// the filtered item query on the given market side.
	FetchListings(ctx context.Context, query models.ItemAttributes, intent models.Intent) ([]string, error)

	// FetchSuggestedPrice returns the marketplace's single best-effort
	// price estimate for the query, or "" when none is shown.
	FetchSuggestedPrice(ctx context.Context, query models.ItemAttributes) (string, error)
}
