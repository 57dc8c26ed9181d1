package aggregate

import (
	"math"
	"testing"

	"github.com/tf2tools/tf2arb/internal/models"
	"github.com/tf2tools/tf2arb/internal/session"
)

func sellObs(texts ...string) []models.ListingObservation {
	obs := make([]models.ListingObservation, len(texts))
	for i, t := range texts {
		obs[i] = models.ListingObservation{Text: t, Intent: models.IntentSell}
	}
	return obs
}

func buyObs(texts ...string) []models.ListingObservation {
	obs := make([]models.ListingObservation, len(texts))
	for i, t := range texts {
		obs[i] = models.ListingObservation{Text: t, Intent: models.IntentBuy}
	}
	return obs
}

func TestAggregateSellAvg23(t *testing.T) {
	a := New(session.New())

	// 2nd and 3rd as listed, not sorted rank: 10 being globally smallest
	// does not matter.
	got := a.AggregateSell("Strange Shotgun",
		sellObs("10 ref", "20 ref", "21 ref", "22 ref", "30 ref"),
		models.PolicyAvg23, nil)

	if got.Source != models.SourceListings {
		t.Fatalf("source = %v, want listings", got.Source)
	}
	if math.Abs(got.Price.Amount-20.5) > 1e-9 {
		t.Errorf("representative = %v, want 20.5", got.Price.Amount)
	}
	if got.Price.Currency != models.CurrencyRefined {
		t.Errorf("currency = %v, want refined", got.Price.Currency)
	}
}

func TestAggregateSellAvg23FallsBackToFirst(t *testing.T) {
	a := New(session.New())
	got := a.AggregateSell("Strange Shotgun", sellObs("12 ref", "14 ref"), models.PolicyAvg23, nil)
	if got.Price.Amount != 12 {
		t.Errorf("representative = %v, want first listing 12", got.Price.Amount)
	}
}

func TestAggregateSellFirstPolicy(t *testing.T) {
	a := New(session.New())
	got := a.AggregateSell("Strange Shotgun", sellObs("10 ref", "20 ref", "21 ref"), models.PolicyFirst, nil)
	if got.Price.Amount != 10 {
		t.Errorf("representative = %v, want 10", got.Price.Amount)
	}
}

func TestAggregateSellSkipsUnusableObservations(t *testing.T) {
	sess := session.New()
	a := New(sess)

	// No key rate: keys listings are unconvertible and must be excluded,
	// not counted as zero.
	got := a.AggregateSell("Strange Shotgun",
		sellObs("2 keys", "10 ref", "garbage", "20 ref", "21 ref"),
		models.PolicyAvg23, nil)

	if math.Abs(got.Price.Amount-20.5) > 1e-9 {
		t.Errorf("representative = %v, want mean(20, 21) = 20.5", got.Price.Amount)
	}
}

func TestAggregateSellConvertsKeysWithRate(t *testing.T) {
	sess := session.New()
	sess.SetKeyRate(50)
	a := New(sess)

	got := a.AggregateSell("Strange Shotgun", sellObs("1 key, 10 ref"), models.PolicyFirst, nil)
	if math.Abs(got.Price.Amount-60) > 1e-9 {
		t.Errorf("representative = %v, want 60", got.Price.Amount)
	}
}

func TestAggregateSellRecordsMinAndCaches(t *testing.T) {
	sess := session.New()
	a := New(sess)

	got := a.AggregateSell("Strange Shotgun",
		sellObs("15 ref", "20 ref", "21 ref"), models.PolicyAvg23, nil)

	minSell, ok := sess.MinSell("Strange Shotgun")
	if !ok || minSell != 15 {
		t.Errorf("min sell = %v, %v, want 15, true", minSell, ok)
	}
	cached, ok := sess.CachedSell("Strange Shotgun")
	if !ok || cached != got {
		t.Errorf("cached sell = %+v, %v", cached, ok)
	}
}

func TestAggregateSellNone(t *testing.T) {
	a := New(session.New())
	got := a.AggregateSell("Strange Shotgun", sellObs("garbage", ""), models.PolicyAvg23, nil)
	if got.Source != models.SourceNone {
		t.Fatalf("source = %v, want none", got.Source)
	}
	if got.Price.Currency != models.CurrencyUnknown || got.Price.Amount != 0 {
		t.Errorf("none result price = %+v", got.Price)
	}
	if got.Usable() {
		t.Error("none result must not be usable")
	}
}

func TestAggregateSellSuggestedFallback(t *testing.T) {
	a := New(session.New())
	called := false
	got := a.AggregateSell("Strange Shotgun", nil, models.PolicyAvg23, func() string {
		called = true
		return "~13.5 ref"
	})
	if !called {
		t.Fatal("fallback should have been consulted")
	}
	if got.Source != models.SourceSuggested {
		t.Fatalf("source = %v, want suggested", got.Source)
	}
	if got.Price.Amount != 13.5 {
		t.Errorf("suggested price = %v, want 13.5", got.Price.Amount)
	}
}

func TestAggregateSellFallbackNotConsultedWhenListingsQualify(t *testing.T) {
	a := New(session.New())
	a.AggregateSell("Strange Shotgun", sellObs("10 ref"), models.PolicyFirst, func() string {
		t.Error("fallback must not be consulted when a listing qualifies")
		return ""
	})
}

func TestAggregateBuyVerified(t *testing.T) {
	sess := session.New()
	sess.RecordMinSell("Strange Shotgun", 15)
	a := New(sess)

	// 15 is excluded: verification is strictly less-than.
	got := a.AggregateBuy("Strange Shotgun", buyObs("14 ref", "15 ref", "16 ref", "12 ref"), nil)
	if got.Source != models.SourceListings {
		t.Fatalf("source = %v, want listings", got.Source)
	}
	if got.Price.Amount != 14 {
		t.Errorf("representative = %v, want 14", got.Price.Amount)
	}
}

func TestAggregateBuyWithoutKnownMinSell(t *testing.T) {
	a := New(session.New())
	got := a.AggregateBuy("Strange Shotgun", buyObs("14 ref", "16 ref"), nil)
	if got.Price.Amount != 16 {
		t.Errorf("representative = %v, want 16 (all eligible without min sell)", got.Price.Amount)
	}
}

func TestAggregateBuyNoneWhenNothingVerifies(t *testing.T) {
	sess := session.New()
	sess.RecordMinSell("Strange Shotgun", 10)
	a := New(sess)

	got := a.AggregateBuy("Strange Shotgun", buyObs("10 ref", "11 ref"), nil)
	if got.Source != models.SourceNone {
		t.Fatalf("source = %v, want none", got.Source)
	}
}

func TestAggregateBuySuggestedFallbackBypassesVerification(t *testing.T) {
	sess := session.New()
	sess.RecordMinSell("Strange Shotgun", 10)
	a := New(sess)

	// The suggestion is above min sell and is still used: fallback stands
	// alone outside the verification filter.
	got := a.AggregateBuy("Strange Shotgun", nil, func() string { return "12 ref" })
	if got.Source != models.SourceSuggested {
		t.Fatalf("source = %v, want suggested", got.Source)
	}
	if got.Price.Amount != 12 {
		t.Errorf("suggested buy = %v, want 12", got.Price.Amount)
	}
}

func TestDiscoverKeyRate(t *testing.T) {
	rate, ok := DiscoverKeyRate(sellObs("62.11 ref", "60.55 ref", "2 keys", "garbage", "61 ref"))
	if !ok || rate != 60.55 {
		t.Errorf("DiscoverKeyRate = %v, %v, want 60.55, true", rate, ok)
	}

	// Keys-denominated and junk listings alone give no estimate.
	if _, ok := DiscoverKeyRate(sellObs("2 keys", "nope")); ok {
		t.Error("expected no rate from keys-only listings")
	}
	if _, ok := DiscoverKeyRate(nil); ok {
		t.Error("expected no rate from empty listings")
	}
}
