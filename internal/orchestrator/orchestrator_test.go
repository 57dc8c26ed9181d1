package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/tf2tools/tf2arb/internal/config"
	"github.com/tf2tools/tf2arb/internal/models"
	"github.com/tf2tools/tf2arb/internal/session"
)

// fakeSource serves canned listing texts keyed by full item name and intent.
type fakeSource struct {
	mu        sync.Mutex
	listings  map[string][]string
	suggested map[string]string
	fetches   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		listings:  make(map[string][]string),
		suggested: make(map[string]string),
		fetches:   make(map[string]int),
	}
}

func sourceKey(q models.ItemAttributes, intent models.Intent) string {
	return fmt.Sprintf("%s|%s", q.FullName(q.Killstreak), intent)
}

func (f *fakeSource) FetchListings(_ context.Context, q models.ItemAttributes, intent models.Intent) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sourceKey(q, intent)
	f.fetches[key]++
	return f.listings[key], nil
}

func (f *fakeSource) FetchSuggestedPrice(_ context.Context, q models.ItemAttributes) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suggested[q.FullName(q.Killstreak)], nil
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			Policy:              "avg23",
			ReferenceItem:       "Mann Co. Supply Crate Key",
			KitCostSpecialized:  18,
			KitCostProfessional: 48,
		},
		Arbitrage: config.ArbitrageConfig{
			Items:       []string{"Strange Rocket Launcher"},
			Kits:        []string{"specialized", "professional"},
			Concurrency: 1,
		},
	}
}

func TestRunMatrix(t *testing.T) {
	source := newFakeSource()
	source.listings["Strange Rocket Launcher|sell"] = []string{"10 ref", "20 ref", "21 ref"}
	source.listings["Strange Specialized Killstreak Rocket Launcher|sell"] = []string{"90 ref"}
	source.listings["Strange Specialized Killstreak Rocket Launcher|buy"] = []string{"80 ref", "95 ref"}

	cfg := testConfig()
	cfg.Pricing.KeyRateOverride = 50

	sess := session.New()
	o := New(source, sess, cfg)

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.ID == "" {
		t.Error("expected a report ID")
	}
	if report.KeyRateRefined != 50 {
		t.Errorf("KeyRateRefined = %v, want 50", report.KeyRateRefined)
	}
	if len(report.Evaluations) != 2 {
		t.Fatalf("got %d evaluations, want 2", len(report.Evaluations))
	}

	// Ranked by profit, so the specialized deal comes first.
	specialized := report.Evaluations[0]
	if specialized.Kit != models.KillstreakSpecialized {
		t.Fatalf("top evaluation kit = %v, want specialized", specialized.Kit)
	}
	// Base sell avg23 of [10, 20, 21] is 20.5; total 38.5; the 95 ref buy
	// order fails verification against the 90 ref min sell.
	if specialized.TotalCostRefined != 38.5 {
		t.Errorf("TotalCostRefined = %v, want 38.5", specialized.TotalCostRefined)
	}
	if specialized.UpgradedBuyRefined != 80 {
		t.Errorf("UpgradedBuyRefined = %v, want 80", specialized.UpgradedBuyRefined)
	}
	if specialized.ProfitRefined != 41.5 || !specialized.Profitable {
		t.Errorf("ProfitRefined = %v profitable=%v, want 41.5 profitable", specialized.ProfitRefined, specialized.Profitable)
	}

	// The professional variant has no market at all.
	pro := report.Evaluations[1]
	if pro.Kit != models.KillstreakProfessional {
		t.Fatalf("second evaluation kit = %v, want professional", pro.Kit)
	}
	if pro.FailureReason != models.FailNoVerifiedBuy {
		t.Errorf("FailureReason = %q, want %q", pro.FailureReason, models.FailNoVerifiedBuy)
	}
	if pro.ProfitRefined != -48 {
		t.Errorf("ProfitRefined = %v, want -48", pro.ProfitRefined)
	}
}

func TestRunReusesCachedBaseSell(t *testing.T) {
	source := newFakeSource()
	source.listings["Strange Rocket Launcher|sell"] = []string{"20 ref"}

	cfg := testConfig()
	cfg.Pricing.KeyRateOverride = 50

	o := New(source, session.New(), cfg)
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if n := source.fetches["Strange Rocket Launcher|sell"]; n != 1 {
		t.Errorf("base sell fetched %d times, want 1", n)
	}
}

func TestRunDiscoversKeyRate(t *testing.T) {
	source := newFakeSource()
	source.listings["Mann Co. Supply Crate Key|sell"] = []string{"57.11 ref", "56 ref", "2 keys"}
	source.listings["Strange Rocket Launcher|sell"] = []string{"1 key"}

	cfg := testConfig()
	cfg.Arbitrage.Kits = []string{"specialized"}

	sess := session.New()
	o := New(source, sess, cfg)

	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.KeyRateRefined != 56 {
		t.Errorf("KeyRateRefined = %v, want 56 (cheapest refined listing)", report.KeyRateRefined)
	}

	// With the discovered rate, the key-denominated base sell converts.
	eval := report.Evaluations[0]
	if eval.BaseSellRefined != 56 {
		t.Errorf("BaseSellRefined = %v, want 56", eval.BaseSellRefined)
	}
}

func TestRunWithoutKeyRateSkipsKeyListings(t *testing.T) {
	source := newFakeSource()
	// No reference item listings, so discovery fails and the key-priced
	// base listing cannot convert.
	source.listings["Strange Rocket Launcher|sell"] = []string{"2 keys"}

	cfg := testConfig()
	cfg.Arbitrage.Kits = []string{"specialized"}

	o := New(source, session.New(), cfg)
	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.KeyRateRefined != 0 {
		t.Errorf("KeyRateRefined = %v, want 0", report.KeyRateRefined)
	}
	if got := report.Evaluations[0].FailureReason; got != models.FailNoBaseSell {
		t.Errorf("FailureReason = %q, want %q", got, models.FailNoBaseSell)
	}
}

func TestRunSuggestedFallback(t *testing.T) {
	source := newFakeSource()
	source.suggested["Strange Rocket Launcher"] = "25 ref"
	source.listings["Strange Specialized Killstreak Rocket Launcher|buy"] = []string{"60 ref"}

	cfg := testConfig()
	cfg.Pricing.KeyRateOverride = 50
	cfg.Arbitrage.Kits = []string{"specialized"}

	o := New(source, session.New(), cfg)
	report, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	eval := report.Evaluations[0]
	if eval.BaseSellRefined != 25 {
		t.Errorf("BaseSellRefined = %v, want 25 from suggested fallback", eval.BaseSellRefined)
	}
	// No min sell was recorded for the upgraded item, so the buy order
	// passes unverified.
	if eval.UpgradedBuyRefined != 60 {
		t.Errorf("UpgradedBuyRefined = %v, want 60", eval.UpgradedBuyRefined)
	}
	if eval.ProfitRefined != 60-25-18 {
		t.Errorf("ProfitRefined = %v, want 17", eval.ProfitRefined)
	}
}

func TestRunCancellation(t *testing.T) {
	source := newFakeSource()
	cfg := testConfig()
	cfg.Pricing.KeyRateOverride = 50

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New(source, session.New(), cfg)
	if _, err := o.Run(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}
