package models

import (
	"errors"
	"strings"
)

// Quality is the backpack.tf item quality. The numeric values are the
// marketplace's own quality IDs, used verbatim in classifieds URLs.
type Quality int

const (
	QualityUnique  Quality = 6
	QualityStrange Quality = 11
)

// String returns the quality name as used in stats page paths.
func (q Quality) String() string {
	if q == QualityStrange {
		return "Strange"
	}
	return "Unique"
}

// KillstreakTier is the killstreak level of an item. The numeric values match
// the marketplace's killstreak_tier query parameter.
type KillstreakTier int

const (
	KillstreakNone         KillstreakTier = 0
	KillstreakBasic        KillstreakTier = 1
	KillstreakSpecialized  KillstreakTier = 2
	KillstreakProfessional KillstreakTier = 3
)

// Phrase returns the display-name phrase for the tier, empty for none.
func (k KillstreakTier) Phrase() string {
	switch k {
	case KillstreakBasic:
		return "Killstreak"
	case KillstreakSpecialized:
		return "Specialized Killstreak"
	case KillstreakProfessional:
		return "Professional Killstreak"
	}
	return ""
}

// ItemAttributes is the structural breakdown of an item display name.
// BaseName has every recognized modifier stripped and is the canonical
// lookup key for marketplace queries.
type ItemAttributes struct {
	BaseName   string         `json:"base_name"`
	Quality    Quality        `json:"quality"`
	Killstreak KillstreakTier `json:"killstreak_tier"`
	Australium bool           `json:"australium"`
}

// FullName composes the canonical display name for these attributes at the
// given killstreak tier. The receiver's own tier is ignored so an upgraded
// name can be built from an already-classified base without duplicating
// modifier tokens.
func (a ItemAttributes) FullName(kit KillstreakTier) string {
	var parts []string
	if a.Quality == QualityStrange {
		parts = append(parts, "Strange")
	}
	if phrase := kit.Phrase(); phrase != "" {
		parts = append(parts, phrase)
	}
	if a.Australium {
		parts = append(parts, "Australium")
	}
	parts = append(parts, a.BaseName)
	return strings.Join(parts, " ")
}

// Validate checks that all attribute fields are valid.
func (a *ItemAttributes) Validate() error {
	if strings.TrimSpace(a.BaseName) == "" {
		return errors.New("base name must not be empty")
	}
	if a.Quality != QualityUnique && a.Quality != QualityStrange {
		return errors.New("quality must be Unique or Strange")
	}
	if a.Killstreak < KillstreakNone || a.Killstreak > KillstreakProfessional {
		return errors.New("killstreak tier must be between 0 and 3")
	}
	return nil
}
