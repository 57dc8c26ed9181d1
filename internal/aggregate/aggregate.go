// Package aggregate reduces raw listing observations for one item to a
// single representative price in refined metal.
//
// Sell side supports two policies: take the first usable listing, or average
// the 2nd and 3rd listings as listed (the default, which skips the cheapest
// listing as a possible decoy). Buy side keeps only "verified" orders, those
// priced strictly below the item's known minimum sell, and takes the highest.
//
// Observations that fail to parse, or that cannot be converted to refined
// (keys with no known rate), are excluded rather than treated as errors.
// When nothing qualifies the aggregation yields a none-sourced result, a
// valid outcome the evaluator turns into a named failure.
package aggregate

import (
	"github.com/tf2tools/tf2arb/internal/logger"
	"github.com/tf2tools/tf2arb/internal/models"
	"github.com/tf2tools/tf2arb/internal/pricing"
	"github.com/tf2tools/tf2arb/internal/session"
)

// FallbackFunc lazily supplies the marketplace's suggested-price text. It is
// invoked only when no listing observation qualifies, since fetching the
// suggestion may cost a page load. A nil func or empty result means no
// fallback is available.
type FallbackFunc func() string

// Aggregator reduces observations against the shared run session.
type Aggregator struct {
	sess *session.Session
}

// New creates an Aggregator bound to a run session.
func New(sess *session.Session) *Aggregator {
	return &Aggregator{sess: sess}
}

// AggregateSell produces the representative sell price for an item. A
// successful aggregation records the item's minimum convertible sell price
// and caches the result in the session for reuse by later evaluations.
func (a *Aggregator) AggregateSell(item string, observations []models.ListingObservation, policy models.Policy, fallback FallbackFunc) models.AggregatedPrice {
	values := a.convertible(observations)
	if len(values) == 0 {
		return a.fallbackOrNone(item, models.IntentSell, policy, fallback)
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	a.sess.RecordMinSell(item, min)

	// The 1st/2nd/3rd of avg23 are positions in listed order, not sorted
	// rank: the marketplace already orders listings cheapest-first, and
	// the point is to skip the single cheapest as an outlier.
	representative := values[0]
	if policy == models.PolicyAvg23 && len(values) >= 3 {
		representative = (values[1] + values[2]) / 2
	}

	result := models.AggregatedPrice{
		Item:   item,
		Intent: models.IntentSell,
		Price:  models.Price{Amount: representative, Currency: models.CurrencyRefined},
		Policy: policy,
		Source: models.SourceListings,
	}
	a.sess.StoreSell(item, result)
	return result
}

// AggregateBuy produces the representative buy price for an item: the
// highest convertible buy order strictly below the item's known minimum sell
// price. When no minimum sell is known yet, every convertible order is
// eligible.
func (a *Aggregator) AggregateBuy(item string, observations []models.ListingObservation, fallback FallbackFunc) models.AggregatedPrice {
	values := a.convertible(observations)

	minSell, verified := a.sess.MinSell(item)

	var candidates []float64
	for _, v := range values {
		if verified && v >= minSell {
			continue
		}
		candidates = append(candidates, v)
	}
	if !verified && len(values) > 0 {
		logger.Debug("no min sell known for %s, accepting all %d buy orders unverified", item, len(values))
	}

	if len(candidates) == 0 {
		return a.fallbackOrNone(item, models.IntentBuy, models.PolicyFirst, fallback)
	}

	best := candidates[0]
	for _, v := range candidates[1:] {
		if v > best {
			best = v
		}
	}

	return models.AggregatedPrice{
		Item:   item,
		Intent: models.IntentBuy,
		Price:  models.Price{Amount: best, Currency: models.CurrencyRefined},
		Policy: models.PolicyFirst,
		Source: models.SourceListings,
	}
}

// convertible parses each observation and converts it to refined, preserving
// listed order. Unparseable and unconvertible observations are dropped.
func (a *Aggregator) convertible(observations []models.ListingObservation) []float64 {
	rate := a.sess.KeyRatePtr()
	var values []float64
	for _, obs := range observations {
		price := pricing.Parse(obs.Text)
		if refined, ok := pricing.ToRefined(price, rate); ok {
			values = append(values, refined)
		}
	}
	return values
}

// fallbackOrNone resolves the suggested-price fallback, or a none-sourced
// result when the fallback is absent or unusable. The fallback stands alone:
// it never enters the verified-buy filter.
func (a *Aggregator) fallbackOrNone(item string, intent models.Intent, policy models.Policy, fallback FallbackFunc) models.AggregatedPrice {
	none := models.AggregatedPrice{
		Item:   item,
		Intent: intent,
		Price:  models.Unknown(),
		Policy: policy,
		Source: models.SourceNone,
	}
	if fallback == nil {
		return none
	}
	text := fallback()
	if text == "" {
		return none
	}
	refined, ok := pricing.ToRefined(pricing.Parse(text), a.sess.KeyRatePtr())
	if !ok {
		logger.Debug("suggested price for %s unusable: %q", item, text)
		return none
	}
	return models.AggregatedPrice{
		Item:   item,
		Intent: intent,
		Price:  models.Price{Amount: refined, Currency: models.CurrencyRefined},
		Policy: policy,
		Source: models.SourceSuggested,
	}
}

// DiscoverKeyRate estimates the refined-per-key rate from the reference
// item's sell listings: the minimum refined-denominated price observed.
// Returns the rate and whether any candidate was found.
func DiscoverKeyRate(observations []models.ListingObservation) (float64, bool) {
	var best float64
	found := false
	for _, obs := range observations {
		price := pricing.Parse(obs.Text)
		if price.Currency != models.CurrencyRefined {
			continue
		}
		if !found || price.Amount < best {
			best = price.Amount
			found = true
		}
	}
	if !found || best <= 0 {
		return 0, false
	}
	return best, true
}
