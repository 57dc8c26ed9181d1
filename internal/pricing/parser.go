// Package pricing turns raw backpack.tf price strings into normalized prices
// and converts between keys and refined metal.
//
// Listing prices appear in three shapes:
//
//	"40.11 ref"          refined only
//	"2.33 keys"          keys only
//	"1 key, 6.11 ref"    keys with a refined remainder
//
// Anything else, including empty text, parses to an unknown price. That is a
// valid terminal classification consumed downstream as "unusable
// observation", never an error.
package pricing

import (
	"strconv"
	"strings"

	"github.com/tf2tools/tf2arb/internal/models"
)

// Parse interprets one raw price string. It never fails: text that matches no
// known shape yields a price with unknown currency. Pure function, safe for
// concurrent use.
func Parse(text string) models.Price {
	cleaned := strings.ReplaceAll(text, "~", "")
	// Commas are both thousands separators and the combined-form delimiter.
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))

	parts := strings.Fields(cleaned)
	if len(parts) == 0 {
		return models.Unknown()
	}

	// "40 ref", "2 keys", "1 key"
	if len(parts) == 2 {
		amount, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || amount < 0 {
			return models.Unknown()
		}
		switch parts[1] {
		case "ref":
			return models.Price{Amount: amount, Currency: models.CurrencyRefined}
		case "key", "keys":
			return models.Price{Amount: amount, Currency: models.CurrencyKeys}
		}
		return models.Unknown()
	}

	// "1 key 6.11 ref": keys with a refined remainder. The remainder stays
	// attached to the price and is folded in at conversion time, so the
	// parser needs no knowledge of the key rate.
	keyIdx := indexOf(parts, "key")
	if keyIdx < 0 {
		keyIdx = indexOf(parts, "keys")
	}
	if keyIdx < 1 {
		return models.Unknown()
	}
	keys, err := strconv.ParseFloat(parts[keyIdx-1], 64)
	if err != nil || keys < 0 {
		return models.Unknown()
	}

	remainder := 0.0
	if refIdx := indexOf(parts, "ref"); refIdx >= 1 {
		remainder, err = strconv.ParseFloat(parts[refIdx-1], 64)
		if err != nil || remainder < 0 {
			return models.Unknown()
		}
	}

	return models.Price{Amount: keys, Currency: models.CurrencyKeys, RefinedRemainder: remainder}
}

func indexOf(parts []string, token string) int {
	for i, p := range parts {
		if p == token {
			return i
		}
	}
	return -1
}
