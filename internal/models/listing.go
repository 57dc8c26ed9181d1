package models

import "errors"

// Intent is the side of the market a listing belongs to.
type Intent string

const (
	IntentSell Intent = "sell"
	IntentBuy  Intent = "buy"
)

// Policy selects how many sell listings feed the representative price.
type Policy string

const (
	// PolicyFirst takes the first usable listing.
	PolicyFirst Policy = "first"
	// PolicyAvg23 averages the 2nd and 3rd listings as listed, skipping
	// the cheapest as a possible decoy. Falls back to PolicyFirst when
	// fewer than three usable listings exist.
	PolicyAvg23 Policy = "avg23"
)

// SourceKind records where an aggregated price came from.
type SourceKind string

const (
	// SourceListings means the price was derived from individual listings.
	SourceListings SourceKind = "listings"
	// SourceSuggested means the marketplace's suggested-price tag was used
	// as a fallback because no listing qualified.
	SourceSuggested SourceKind = "suggested"
	// SourceNone means no usable price was found. This is a valid outcome,
	// not an error.
	SourceNone SourceKind = "none"
)

// ListingObservation is one raw price string scraped for a single item query.
// Observations are ephemeral: produced by the listing source and consumed
// immediately by the aggregator.
type ListingObservation struct {
	Text   string `json:"text"`
	Intent Intent `json:"intent"`
}

// AggregatedPrice is the single representative price chosen from many raw
// listing observations for one (item, intent) query. Immutable after
// creation; sell-side results are cached for the run so a later buy
// evaluation of the same item can reuse them.
type AggregatedPrice struct {
	Item   string     `json:"item"`
	Intent Intent     `json:"intent"`
	Price  Price      `json:"price"`
	Policy Policy     `json:"policy"`
	Source SourceKind `json:"source"`
}

// Usable reports whether the aggregation produced a price that can enter
// the profitability computation.
func (p AggregatedPrice) Usable() bool {
	return p.Source != SourceNone && p.Price.Currency != CurrencyUnknown
}

// Validate checks that all aggregated price fields are valid.
func (p *AggregatedPrice) Validate() error {
	if p.Item == "" {
		return errors.New("item must not be empty")
	}
	if p.Intent != IntentSell && p.Intent != IntentBuy {
		return errors.New("intent must be sell or buy")
	}
	switch p.Source {
	case SourceListings, SourceSuggested, SourceNone:
	default:
		return errors.New("source must be listings, suggested, or none")
	}
	if p.Source == SourceNone && p.Price.Currency != CurrencyUnknown {
		return errors.New("a none-sourced price must have unknown currency")
	}
	if p.Source != SourceNone && p.Price.Currency == CurrencyUnknown {
		return errors.New("a sourced price must not have unknown currency")
	}
	return p.Price.Validate()
}
