// Package models defines the core domain entities for the tf2arb application.
// These models represent marketplace prices, raw listing observations,
// aggregated quotes, item attributes, and upgrade evaluations.
// All models include built-in validation to ensure data integrity throughout
// the application.
//
// Terminology (matching backpack.tf's own naming):
//   - Refined: refined metal, the marketplace's base unit of value.
//   - Keys: Mann Co. Supply Crate Keys, a higher denomination whose value in
//     refined is only known via a per-run exchange rate.
package models

import "errors"

// Currency identifies the unit a price amount is denominated in.
type Currency string

const (
	// CurrencyRefined is refined metal, the base pricing unit.
	CurrencyRefined Currency = "ref"
	// CurrencyKeys is Mann Co. Supply Crate Keys, convertible to refined
	// only through a known key rate.
	CurrencyKeys Currency = "keys"
	// CurrencyUnknown marks a price that could not be interpreted. An
	// unknown price carries no usable amount and must never enter
	// arithmetic comparisons.
	CurrencyUnknown Currency = "unknown"
)

// Price is a normalized price reading from a single listing.
//
// For the combined listing form "1 key, 6.11 ref" the amount holds the key
// part and RefinedRemainder holds the trailing refined part; the remainder is
// folded in when the price is converted to refined units.
type Price struct {
	Amount           float64  `json:"amount"`
	Currency         Currency `json:"currency"`
	RefinedRemainder float64  `json:"refined_remainder,omitempty"`
}

// Unknown returns the terminal classification for unparseable price text.
func Unknown() Price {
	return Price{Currency: CurrencyUnknown}
}

// Validate checks that all price fields are valid.
func (p *Price) Validate() error {
	switch p.Currency {
	case CurrencyRefined, CurrencyKeys, CurrencyUnknown:
	default:
		return errors.New("currency must be ref, keys, or unknown")
	}
	if p.Currency == CurrencyUnknown {
		if p.Amount != 0 || p.RefinedRemainder != 0 {
			return errors.New("unknown price must not carry an amount")
		}
		return nil
	}
	if p.Amount < 0 {
		return errors.New("amount must not be negative")
	}
	if p.RefinedRemainder < 0 {
		return errors.New("refined remainder must not be negative")
	}
	if p.Currency == CurrencyRefined && p.RefinedRemainder != 0 {
		return errors.New("refined price must not carry a remainder")
	}
	return nil
}
