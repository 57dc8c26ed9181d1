// Package orchestrator drives one full arbitrage run: key rate discovery,
// the item-by-kit evaluation matrix, and report assembly.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tf2tools/tf2arb/internal/aggregate"
	"github.com/tf2tools/tf2arb/internal/backpacktf"
	"github.com/tf2tools/tf2arb/internal/classify"
	"github.com/tf2tools/tf2arb/internal/config"
	"github.com/tf2tools/tf2arb/internal/evaluate"
	"github.com/tf2tools/tf2arb/internal/logger"
	"github.com/tf2tools/tf2arb/internal/models"
	"github.com/tf2tools/tf2arb/internal/session"
)

var kitTiers = map[string]models.KillstreakTier{
	"specialized":  models.KillstreakSpecialized,
	"professional": models.KillstreakProfessional,
}

// Orchestrator wires the listing source into the evaluation pipeline. It is
// the Quoter the evaluator consults: each quote fetches listings, reduces
// them through the aggregator, and leans on the session caches so a price
// is never scraped twice in one run.
type Orchestrator struct {
	source     backpacktf.Source
	sess       *session.Session
	classifier *classify.Classifier
	agg        *aggregate.Aggregator
	eval       *evaluate.Evaluator

	pricing   config.PricingConfig
	arbitrage config.ArbitrageConfig
}

// New creates an Orchestrator over a listing source and a fresh run session.
func New(source backpacktf.Source, sess *session.Session, cfg *config.Config) *Orchestrator {
	o := &Orchestrator{
		source:     source,
		sess:       sess,
		classifier: classify.New(),
		agg:        aggregate.New(sess),
		pricing:    cfg.Pricing,
		arbitrage:  cfg.Arbitrage,
	}
	o.eval = evaluate.New(o, o.classifier, evaluate.KitCosts{
		Specialized:  cfg.Pricing.KitCostSpecialized,
		Professional: cfg.Pricing.KitCostProfessional,
	})
	return o
}

// Run executes the configured item-by-kit matrix and returns the ranked
// report. Individual evaluation failures are recorded inside the report;
// Run itself fails only on cancellation.
func (o *Orchestrator) Run(ctx context.Context) (*models.Report, error) {
	started := time.Now()

	if err := o.ensureKeyRate(ctx); err != nil {
		return nil, err
	}

	kits := o.kitMatrix()
	logger.Info("evaluating %d items across %d kit tiers", len(o.arbitrage.Items), len(kits))

	var (
		mu    sync.Mutex
		evals []models.UpgradeEvaluation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.arbitrage.Concurrency)
	for _, item := range o.arbitrage.Items {
		for _, kit := range kits {
			item, kit := item, kit
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				eval := o.eval.Evaluate(gctx, item, kit)
				mu.Lock()
				evals = append(evals, eval)
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rate, _ := o.sess.KeyRate()
	report := &models.Report{
		ID:             uuid.New().String(),
		StartedAt:      started,
		FinishedAt:     time.Now(),
		KeyRateRefined: rate,
		Evaluations:    evaluate.Rank(evals),
	}
	logger.Info("run %s finished: %d evaluations in %s",
		report.ID, len(report.Evaluations), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report, nil
}

// SellPrice resolves an item's representative sell price, reusing the
// session cache when a previous evaluation already aggregated it.
func (o *Orchestrator) SellPrice(ctx context.Context, item string) models.AggregatedPrice {
	if cached, ok := o.sess.CachedSell(item); ok {
		return cached
	}
	attrs := o.classifier.Classify(item)
	obs := o.observe(ctx, attrs, models.IntentSell)
	return o.agg.AggregateSell(item, obs, models.Policy(o.pricing.Policy), o.suggestedFallback(ctx, attrs))
}

// BuyPrice resolves an item's highest verified buy order. The item's sell
// side is aggregated first when its minimum sell price is not yet known, so
// the verified-buy filter always has a reference to check against.
func (o *Orchestrator) BuyPrice(ctx context.Context, item string) models.AggregatedPrice {
	if _, known := o.sess.MinSell(item); !known {
		o.SellPrice(ctx, item)
	}
	attrs := o.classifier.Classify(item)
	obs := o.observe(ctx, attrs, models.IntentBuy)
	return o.agg.AggregateBuy(item, obs, o.suggestedFallback(ctx, attrs))
}

// ensureKeyRate makes the key→refined rate available before evaluations
// start. An override from config wins; otherwise the rate is discovered from
// the reference item's cheapest refined-denominated sell listing. A run with
// no rate still proceeds, skipping key-denominated listings.
func (o *Orchestrator) ensureKeyRate(ctx context.Context) error {
	if _, ok := o.sess.KeyRate(); ok {
		return nil
	}
	if o.pricing.KeyRateOverride > 0 {
		o.sess.SetKeyRate(o.pricing.KeyRateOverride)
		logger.Info("key rate fixed by config: %.2f ref/key", o.pricing.KeyRateOverride)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	attrs := o.classifier.Classify(o.pricing.ReferenceItem)
	obs := o.observe(ctx, attrs, models.IntentSell)
	rate, ok := aggregate.DiscoverKeyRate(obs)
	if !ok {
		logger.Warn("key rate discovery failed for %q, key-denominated listings will be skipped", o.pricing.ReferenceItem)
		return nil
	}
	o.sess.SetKeyRate(rate)
	logger.Info("discovered key rate: %.2f ref/key", rate)
	return nil
}

// observe fetches one side's raw listing texts and wraps them as
// observations. Fetch errors degrade to an empty observation set so one bad
// page turns into a named price failure, not an aborted run.
func (o *Orchestrator) observe(ctx context.Context, attrs models.ItemAttributes, intent models.Intent) []models.ListingObservation {
	texts, err := o.source.FetchListings(ctx, attrs, intent)
	if err != nil {
		logger.Warn("listing fetch failed for %s (%s): %v", attrs.BaseName, intent, err)
		return nil
	}
	obs := make([]models.ListingObservation, 0, len(texts))
	for _, t := range texts {
		obs = append(obs, models.ListingObservation{Text: t, Intent: intent})
	}
	return obs
}

// suggestedFallback defers the suggested-price fetch until the aggregator
// decides no listing qualifies.
func (o *Orchestrator) suggestedFallback(ctx context.Context, attrs models.ItemAttributes) aggregate.FallbackFunc {
	return func() string {
		text, err := o.source.FetchSuggestedPrice(ctx, attrs)
		if err != nil {
			logger.Warn("suggested price fetch failed for %s: %v", attrs.BaseName, err)
			return ""
		}
		return text
	}
}

// kitMatrix maps the configured kit names to tiers, dropping unknown names.
func (o *Orchestrator) kitMatrix() []models.KillstreakTier {
	var kits []models.KillstreakTier
	for _, name := range o.arbitrage.Kits {
		tier, ok := kitTiers[name]
		if !ok {
			logger.Warn("ignoring unknown kit tier %q", name)
			continue
		}
		kits = append(kits, tier)
	}
	return kits
}
