package backpacktf

import (
	"fmt"
	"net/url"

	"github.com/tf2tools/tf2arb/internal/models"
)

// StatsURL builds the stats page URL for an item query. Stats pages list the
// current sell orders for one exact item variant.
func StatsURL(baseURL string, q models.ItemAttributes) string {
	u := fmt.Sprintf("%s/stats/%s/%s/Tradable/Craftable",
		baseURL, q.Quality, url.PathEscape(q.BaseName))
	if q.Australium {
		u += "/Australium"
	}
	if q.Killstreak > models.KillstreakNone {
		u += fmt.Sprintf("?killstreak_tier=%d", q.Killstreak)
	}
	return u
}

// ClassifiedsURL builds one page of the classifieds search for an item
// query. Classifieds pages carry both sell listings and buy orders.
func ClassifiedsURL(baseURL string, q models.ItemAttributes, page int) string {
	australium := "-1"
	if q.Australium {
		australium = "1"
	}
	u := fmt.Sprintf("%s/classifieds?item=%s&quality=%d&tradable=1&craftable=1&australium=%s&killstreak_tier=%d",
		baseURL, url.QueryEscape(q.BaseName), int(q.Quality), australium, q.Killstreak)
	if page > 1 {
		u += fmt.Sprintf("&page=%d", page)
	}
	return u
}
