package session

import (
	"sync"
	"testing"

	"github.com/tf2tools/tf2arb/internal/models"
)

func TestKeyRateFirstWriteWins(t *testing.T) {
	s := New()

	if _, ok := s.KeyRate(); ok {
		t.Fatal("fresh session must have no rate")
	}
	if s.KeyRatePtr() != nil {
		t.Fatal("fresh session must return nil rate pointer")
	}

	if !s.SetKeyRate(60.55) {
		t.Fatal("first write should take effect")
	}
	if s.SetKeyRate(99) {
		t.Fatal("second write should be a no-op")
	}

	rate, ok := s.KeyRate()
	if !ok || rate != 60.55 {
		t.Errorf("KeyRate = %v, %v, want 60.55, true", rate, ok)
	}
	if ptr := s.KeyRatePtr(); ptr == nil || *ptr != 60.55 {
		t.Errorf("KeyRatePtr = %v, want 60.55", ptr)
	}
}

func TestSetKeyRateRejectsNonPositive(t *testing.T) {
	s := New()
	if s.SetKeyRate(0) || s.SetKeyRate(-5) {
		t.Fatal("non-positive rates must be rejected")
	}
	if _, ok := s.KeyRate(); ok {
		t.Fatal("rejected writes must not set the rate")
	}
}

func TestMinSellFirstWriteWins(t *testing.T) {
	s := New()
	s.RecordMinSell("Strange Shotgun", 15)
	s.RecordMinSell("Strange Shotgun", 10)

	v, ok := s.MinSell("Strange Shotgun")
	if !ok || v != 15 {
		t.Errorf("MinSell = %v, %v, want 15, true", v, ok)
	}
	if _, ok := s.MinSell("Strange Wrench"); ok {
		t.Error("unrecorded item must have no min sell")
	}
}

func TestSellCache(t *testing.T) {
	s := New()
	price := models.AggregatedPrice{
		Item:   "Strange Shotgun",
		Intent: models.IntentSell,
		Price:  models.Price{Amount: 12, Currency: models.CurrencyRefined},
		Policy: models.PolicyAvg23,
		Source: models.SourceListings,
	}
	s.StoreSell(price.Item, price)

	got, ok := s.CachedSell(price.Item)
	if !ok || got != price {
		t.Errorf("CachedSell = %+v, %v", got, ok)
	}

	other := price
	other.Price.Amount = 99
	s.StoreSell(price.Item, other)
	got, _ = s.CachedSell(price.Item)
	if got.Price.Amount != 12 {
		t.Errorf("second StoreSell overwrote cache: %v", got.Price.Amount)
	}
}

func TestConcurrentRateDiscovery(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetKeyRate(float64(50 + i))
		}(i)
	}
	wg.Wait()

	rate, ok := s.KeyRate()
	if !ok || rate < 50 || rate >= 82 {
		t.Errorf("rate after race = %v, %v", rate, ok)
	}
}
