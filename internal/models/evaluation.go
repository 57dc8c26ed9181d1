package models

import (
	"errors"
	"math"
	"time"
)

// Failure reasons for evaluations that could not be resolved. A failed
// evaluation is still a valid record: it stays in the report with
// Profitable=false so systematic problems (stale key rate, dead pages)
// remain visible.
const (
	// FailNoBaseSell means no usable sell price was found for the base item.
	FailNoBaseSell = "no_base_sell"
	// FailNoVerifiedBuy means no buy order strictly below the upgraded
	// item's minimum sell price was found.
	FailNoVerifiedBuy = "no_verified_buy_below_min_sell"
	// FailNoKitCost means no kit cost is configured for the requested tier.
	FailNoKitCost = "no_kit_cost"
)

// UpgradeEvaluation is the terminal artifact of the pipeline: the economics
// of buying a base item, applying a killstreak kit, and reselling the
// upgraded item. All price legs are in refined metal. Immutable after
// creation.
type UpgradeEvaluation struct {
	ID                 string         `json:"id"`
	BaseItem           string         `json:"base_item"`
	Kit                KillstreakTier `json:"kit"`
	UpgradedItem       string         `json:"upgraded_item"`
	BaseSellRefined    float64        `json:"base_sell_refined"`
	KitCostRefined     float64        `json:"kit_cost_refined"`
	TotalCostRefined   float64        `json:"total_cost_refined"`
	UpgradedBuyRefined float64        `json:"upgraded_buy_refined"`
	ProfitRefined      float64        `json:"profit_refined"`
	ROIPercent         float64        `json:"roi_percent"`
	Profitable         bool           `json:"profitable"`
	FailureReason      string         `json:"failure_reason,omitempty"`
	EvaluatedAt        time.Time      `json:"evaluated_at"`
}

// Validate checks that all evaluation fields are valid.
func (e *UpgradeEvaluation) Validate() error {
	if e.ID == "" {
		return errors.New("evaluation ID must not be empty")
	}
	if e.BaseItem == "" {
		return errors.New("base item must not be empty")
	}
	if e.Kit != KillstreakSpecialized && e.Kit != KillstreakProfessional {
		return errors.New("kit must be specialized or professional")
	}
	if e.BaseSellRefined < 0 || e.KitCostRefined < 0 || e.UpgradedBuyRefined < 0 {
		return errors.New("price legs must not be negative")
	}
	if e.FailureReason == "" {
		expected := e.UpgradedBuyRefined - e.TotalCostRefined
		if math.Abs(e.ProfitRefined-expected) > 0.001 {
			return errors.New("profit must equal upgraded buy minus total cost")
		}
	}
	if e.Profitable && e.ProfitRefined <= 0 {
		return errors.New("a profitable evaluation must have positive profit")
	}
	if e.Profitable && e.FailureReason != "" {
		return errors.New("a profitable evaluation must not carry a failure reason")
	}
	if e.EvaluatedAt.After(time.Now()) {
		return errors.New("evaluated at must not be in the future")
	}
	return nil
}

// Report is one full arbitrage run: every evaluation produced, ranked by
// profit, plus the key rate the run operated under (0 when never discovered).
type Report struct {
	ID             string              `json:"id"`
	StartedAt      time.Time           `json:"started_at"`
	FinishedAt     time.Time           `json:"finished_at"`
	KeyRateRefined float64             `json:"key_rate_refined"`
	Evaluations    []UpgradeEvaluation `json:"evaluations"`
}

// Validate checks that all report fields are valid.
func (r *Report) Validate() error {
	if r.ID == "" {
		return errors.New("report ID must not be empty")
	}
	if r.KeyRateRefined < 0 {
		return errors.New("key rate must not be negative")
	}
	if r.FinishedAt.Before(r.StartedAt) {
		return errors.New("finished at must not precede started at")
	}
	for i := range r.Evaluations {
		if err := r.Evaluations[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
