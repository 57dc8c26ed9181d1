package pricing

import "github.com/tf2tools/tf2arb/internal/models"

// ToRefined converts a price to refined metal. rate is refined per key; nil
// when the rate has not been discovered.
//
// The second return value reports convertibility: a keys price without a rate
// and an unknown price are both unconvertible, and callers must treat that as
// "observation excluded", never as zero.
func ToRefined(p models.Price, rate *float64) (float64, bool) {
	switch p.Currency {
	case models.CurrencyRefined:
		return p.Amount, true
	case models.CurrencyKeys:
		if rate == nil || *rate <= 0 {
			return 0, false
		}
		return p.Amount**rate + p.RefinedRemainder, true
	}
	return 0, false
}

// ToKeysIfWorthIt re-expresses a refined amount in keys when it is worth more
// than one key and the resulting key amount is at least minKeys. Display-only
// policy: profitability comparisons always happen in refined units.
func ToKeysIfWorthIt(refined float64, rate *float64, minKeys float64) models.Price {
	if rate == nil || *rate <= 0 {
		return models.Price{Amount: refined, Currency: models.CurrencyRefined}
	}
	keys := refined / *rate
	if refined > *rate && keys >= minKeys {
		return models.Price{Amount: keys, Currency: models.CurrencyKeys}
	}
	return models.Price{Amount: refined, Currency: models.CurrencyRefined}
}
