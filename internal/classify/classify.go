// Package classify breaks item display names into structural attributes:
// quality, killstreak tier, australium flag, and a canonical base name with
// every recognized modifier stripped.
//
// Killstreak detection is an ordered longest-match-first table, so
// "Professional Killstreak" never degrades to the basic tier even though the
// bare "Killstreak" token is a substring of the more specific phrases.
package classify

import (
	"strings"
	"sync"

	"github.com/tf2tools/tf2arb/internal/models"
)

const (
	strangePrefix   = "strange "
	australiumToken = "australium"
)

// killstreakPatterns is evaluated in order; the first (most specific) match
// wins and is stripped from the name.
var killstreakPatterns = []struct {
	phrase string
	tier   models.KillstreakTier
}{
	{"professional killstreak", models.KillstreakProfessional},
	{"specialized killstreak", models.KillstreakSpecialized},
	{"killstreak", models.KillstreakBasic},
}

// aliases maps ambiguous short names to their canonical marketplace names.
// Matched case-insensitively against the full remaining base name after all
// modifier stripping.
var aliases = map[string]string{
	"key":     "Mann Co. Supply Crate Key",
	"keys":    "Mann Co. Supply Crate Key",
	"medigun": "Medi Gun",
}

// Classifier resolves item names to attributes, memoizing results for the
// run. Classification is a pure function of the name, so entries are never
// invalidated.
type Classifier struct {
	mu   sync.Mutex
	memo map[string]models.ItemAttributes
}

// New creates an empty Classifier.
func New() *Classifier {
	return &Classifier{memo: make(map[string]models.ItemAttributes)}
}

// Classify parses an item display name into its attributes. Safe for
// concurrent use; repeated calls with the same name hit the memo.
func (c *Classifier) Classify(name string) models.ItemAttributes {
	c.mu.Lock()
	if attrs, ok := c.memo[name]; ok {
		c.mu.Unlock()
		return attrs
	}
	c.mu.Unlock()

	attrs := classify(name)

	c.mu.Lock()
	// First write wins; a racing duplicate computed the same pure fact.
	if cached, ok := c.memo[name]; ok {
		attrs = cached
	} else {
		c.memo[name] = attrs
	}
	c.mu.Unlock()
	return attrs
}

func classify(name string) models.ItemAttributes {
	rest := strings.TrimSpace(name)
	attrs := models.ItemAttributes{Quality: models.QualityUnique}

	if len(rest) >= len(strangePrefix) && strings.EqualFold(rest[:len(strangePrefix)], strangePrefix) {
		attrs.Quality = models.QualityStrange
		rest = rest[len(strangePrefix):]
	}

	for _, p := range killstreakPatterns {
		if stripped, ok := stripToken(rest, p.phrase); ok {
			attrs.Killstreak = p.tier
			rest = stripped
			break
		}
	}

	if stripped, ok := stripToken(rest, australiumToken); ok {
		attrs.Australium = true
		rest = stripped
	}

	attrs.BaseName = canonicalBase(rest)
	return attrs
}

// stripToken removes the first case-insensitive occurrence of token and
// reports whether it was present.
func stripToken(s, token string) (string, bool) {
	idx := strings.Index(strings.ToLower(s), token)
	if idx < 0 {
		return s, false
	}
	return s[:idx] + s[idx+len(token):], true
}

// canonicalBase collapses leftover whitespace and applies the alias table.
func canonicalBase(s string) string {
	base := strings.Join(strings.Fields(s), " ")
	if canonical, ok := aliases[strings.ToLower(base)]; ok {
		return canonical
	}
	return base
}
