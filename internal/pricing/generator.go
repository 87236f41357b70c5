package pricing

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"creditpipe/internal/config"
	"creditpipe/internal/ledger"
	"creditpipe/internal/models"
	"creditpipe/internal/policy"
	"creditpipe/internal/rates"
	"creditpipe/internal/repository"
	"creditpipe/internal/sba"
)

// Generation statuses. Expected business conditions are values, not errors:
// callers branch on Status and only see an error for infrastructure faults.
const (
	StatusOK               = "ok"
	StatusNoSnapshot       = "no_snapshot"
	StatusNoLoanRequest    = "no_loan_request"
	StatusRatesUnavailable = "rates_unavailable"
	StatusConflict         = "generation_in_progress"
)

type GenerateOutcome struct {
	Status    string                   `json:"status"`
	Reason    string                   `json:"reason,omitempty"`
	Scenarios []models.PricingScenario `json:"scenarios,omitempty"`
}

type Generator struct {
	Repo      repository.Repository
	Rates     *rates.Reader
	SBA       sba.Evaluator
	Ledger    *ledger.Sink
	Logger    *zap.Logger
	Cfg       config.PricingConfig
	PolicyCfg config.PolicyConfig

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Generate builds and persists the full scenario set for a deal, replacing
// whatever was there. A second call for the same deal while one is running
// reports a conflict instead of racing the replace.
func (g *Generator) Generate(ctx context.Context, dealID, bankID string) (GenerateOutcome, error) {
	if g == nil || g.Repo == nil {
		return GenerateOutcome{Status: StatusNoSnapshot, Reason: "pricing engine not configured"}, nil
	}
	if !g.acquire(dealID, bankID) {
		return GenerateOutcome{Status: StatusConflict, Reason: "scenario generation already in progress for deal"}, nil
	}
	defer g.release(dealID, bankID)

	snap, err := g.Repo.GetLatestCreditSnapshot(ctx, dealID, bankID)
	if err != nil {
		return GenerateOutcome{}, err
	}
	if snap == nil {
		return GenerateOutcome{Status: StatusNoSnapshot, Reason: "no credit snapshot for deal"}, nil
	}
	req, err := g.Repo.GetLoanRequest(ctx, dealID, bankID)
	if err != nil {
		return GenerateOutcome{}, err
	}
	if req == nil {
		return GenerateOutcome{Status: StatusNoLoanRequest, Reason: "no loan request for deal"}, nil
	}

	liveRates, err := g.Rates.Latest(ctx)
	if err != nil || len(liveRates) == 0 {
		if err != nil && g.Logger != nil {
			g.Logger.Warn("rate feed unavailable", zap.Error(err))
		}
		return GenerateOutcome{Status: StatusRatesUnavailable, Reason: "index rate feed unavailable"}, nil
	}
	rateViews := make(map[string]IndexRateView, len(liveRates))
	for code, r := range liveRates {
		rateViews[code] = IndexRateView{RatePct: r.RatePct, Source: r.Source}
	}
	if _, ok := rateViews[g.Cfg.DefaultIndexCode]; !ok {
		return GenerateOutcome{Status: StatusRatesUnavailable, Reason: "no observation for index " + g.Cfg.DefaultIndexCode}, nil
	}

	overlayRow, err := g.Repo.GetBankOverlay(ctx, bankID, req.ProductType)
	if err != nil {
		return GenerateOutcome{}, err
	}
	overlay := policy.ResolveOverlay(overlayRow, g.PolicyCfg)

	eligibility := g.SBA.Evaluate(sba.Input{
		LoanAmount:    req.Amount,
		AnnualRevenue: req.AnnualRevenue,
		UseOfProceeds: req.UseOfProceeds,
		IsSBA:         req.IsSBA,
	})

	in := BuildInput{
		DealID:          dealID,
		BankID:          bankID,
		Product:         req.ProductType,
		SnapshotID:      snap.ID,
		CashFlow:        snap.CashFlow,
		NOI:             snap.NOI,
		LoanAmount:      req.Amount,
		CollateralValue: req.CollateralValue,
		TermMonths:      req.TermMonths,
		AmortMonths:     req.AmortMonths,
		IsSBA:           req.IsSBA,
		Overlay:         overlay,
		Rates:           rateViews,
		SBA:             eligibility,
		Cfg:             g.Cfg,
	}
	scenarios := BuildScenarios(in)
	if len(scenarios) == 0 {
		return GenerateOutcome{Status: StatusRatesUnavailable, Reason: "no index observation usable for pricing"}, nil
	}

	if err := g.Repo.ReplacePricingScenarios(ctx, dealID, bankID, scenarios); err != nil {
		return GenerateOutcome{}, err
	}

	g.Ledger.LogPipelineLedger(ctx, dealID, bankID, "pricing_generation", "SUCCEEDED", map[string]any{
		"scenario_count": len(scenarios),
		"sba_status":     eligibility.Status,
	})

	return GenerateOutcome{Status: StatusOK, Scenarios: scenarios}, nil
}

func (g *Generator) acquire(dealID, bankID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight == nil {
		g.inflight = map[string]struct{}{}
	}
	key := dealID + "|" + bankID
	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

func (g *Generator) release(dealID, bankID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, dealID+"|"+bankID)
}
