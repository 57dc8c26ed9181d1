// Package evaluate computes the economics of killstreak kit upgrades: buy
// the base item at its sell price, pay the kit cost, resell the upgraded
// item into a verified buy order.
//
// Evaluation is a linear pass with no retries and no errors: every call
// returns an UpgradeEvaluation value, and unresolvable price legs are
// recorded as named failure reasons so a batch of dozens of items never
// aborts on one bad page.
package evaluate

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tf2tools/tf2arb/internal/classify"
	"github.com/tf2tools/tf2arb/internal/logger"
	"github.com/tf2tools/tf2arb/internal/models"
)

// Quoter resolves an item name to an aggregated price for one market side.
// Implementations combine the listing source and the aggregator; the
// evaluator itself stays fetch-free and total.
type Quoter interface {
	SellPrice(ctx context.Context, item string) models.AggregatedPrice
	BuyPrice(ctx context.Context, item string) models.AggregatedPrice
}

// KitCosts is the static kit price table in refined metal. Each entry is a
// point estimate standing in for the kit's observed market range.
type KitCosts struct {
	Specialized  float64
	Professional float64
}

// For returns the kit cost for a tier. Only specialized and professional
// kits are tradable goods with a stable price.
func (k KitCosts) For(tier models.KillstreakTier) (float64, bool) {
	switch tier {
	case models.KillstreakSpecialized:
		return k.Specialized, true
	case models.KillstreakProfessional:
		return k.Professional, true
	}
	return 0, false
}

// Evaluator runs upgrade evaluations against a Quoter.
type Evaluator struct {
	quotes     Quoter
	classifier *classify.Classifier
	kits       KitCosts
}

// New creates an Evaluator.
func New(quotes Quoter, classifier *classify.Classifier, kits KitCosts) *Evaluator {
	return &Evaluator{quotes: quotes, classifier: classifier, kits: kits}
}

// Evaluate works through the upgrade economics for one base item and kit
// tier. Always returns a value; failures are encoded in FailureReason with
// Profitable=false.
func (e *Evaluator) Evaluate(ctx context.Context, item string, kit models.KillstreakTier) models.UpgradeEvaluation {
	attrs := e.classifier.Classify(item)
	baseItem := attrs.FullName(models.KillstreakNone)

	eval := models.UpgradeEvaluation{
		ID:          uuid.New().String(),
		BaseItem:    baseItem,
		Kit:         kit,
		EvaluatedAt: time.Now(),
	}

	kitCost, ok := e.kits.For(kit)
	if !ok {
		eval.FailureReason = models.FailNoKitCost
		return eval
	}
	eval.KitCostRefined = kitCost

	sell := e.quotes.SellPrice(ctx, baseItem)
	if !sell.Usable() {
		// Short-circuit: without a base cost the upgraded item's buy
		// side is never queried.
		eval.FailureReason = models.FailNoBaseSell
		return eval
	}
	eval.BaseSellRefined = sell.Price.Amount
	eval.TotalCostRefined = eval.BaseSellRefined + kitCost

	eval.UpgradedItem = attrs.FullName(kit)

	buy := e.quotes.BuyPrice(ctx, eval.UpgradedItem)
	if !buy.Usable() {
		// Kit cost sunk, no resale found.
		eval.FailureReason = models.FailNoVerifiedBuy
		eval.ProfitRefined = -kitCost
		eval.ROIPercent = roi(eval.ProfitRefined, eval.TotalCostRefined)
		logger.Debug("no verified buy for %s", eval.UpgradedItem)
		return eval
	}
	eval.UpgradedBuyRefined = buy.Price.Amount

	eval.ProfitRefined = eval.UpgradedBuyRefined - eval.TotalCostRefined
	eval.ROIPercent = roi(eval.ProfitRefined, eval.TotalCostRefined)
	eval.Profitable = eval.ProfitRefined > 0
	return eval
}

func roi(profit, totalCost float64) float64 {
	if totalCost == 0 {
		return 0
	}
	return profit / totalCost * 100
}

// Rank orders evaluations by descending profit, breaking ties by descending
// ROI. The input is not modified.
func Rank(evals []models.UpgradeEvaluation) []models.UpgradeEvaluation {
	ranked := make([]models.UpgradeEvaluation, len(evals))
	copy(ranked, evals)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ProfitRefined != ranked[j].ProfitRefined {
			return ranked[i].ProfitRefined > ranked[j].ProfitRefined
		}
		return ranked[i].ROIPercent > ranked[j].ROIPercent
	})
	return ranked
}

// Profitable filters a ranked list down to the reportable deals: profitable
// evaluations meeting the minimum profit and ROI thresholds. The thresholds
// shape the report only; they never change an evaluation's Profitable flag.
func Profitable(evals []models.UpgradeEvaluation, minProfit, minROI float64) []models.UpgradeEvaluation {
	var deals []models.UpgradeEvaluation
	for _, e := range evals {
		if e.Profitable && e.ProfitRefined >= minProfit && e.ROIPercent >= minROI {
			deals = append(deals, e)
		}
	}
	return deals
}
