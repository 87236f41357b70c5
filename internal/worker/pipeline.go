package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"creditpipe/internal/config"
	"creditpipe/internal/ledger"
	"creditpipe/internal/models"
	"creditpipe/internal/policy"
	"creditpipe/internal/repository"
	"creditpipe/internal/snapshot"
	"creditpipe/internal/stress"
)

// Fact keys the model loader maps onto period figures. Anything else rides
// along in the fact table untouched.
const (
	factKeyRevenue            = "revenue"
	factKeyEBITDA             = "ebitda"
	factKeyNetIncome          = "net_income"
	factKeyCurrentAssets      = "current_assets"
	factKeyCurrentLiabilities = "current_liabilities"
	factKeyTotalDebt          = "total_debt"
	factKeyTotalAssets        = "total_assets"
	factKeyNOI                = "noi"
)

// PipelineArtifacts carries one full recomputation's outputs.
type PipelineArtifacts struct {
	Snapshot   *snapshot.Snapshot
	SnapshotID uint64
	Policy     *policy.Result
	Stress     *stress.Result
}

// Pipeline runs the deterministic recomputation for one (deal, bank) pair:
// load visible inputs, build the snapshot, persist it, evaluate policy and
// stress against the same inputs.
type Pipeline struct {
	Repo      repository.Repository
	Ledger    *ledger.Sink
	Logger    *zap.Logger
	PolicyCfg config.PolicyConfig
}

// BuildFinancialModel assembles the in-memory model from the visible facts
// and the debt schedule. Facts with no period id cannot anchor a period and
// are skipped.
func (p *Pipeline) BuildFinancialModel(ctx context.Context, dealID, bankID string) (snapshot.FinancialModel, error) {
	m := snapshot.FinancialModel{DealID: dealID, BankID: bankID}

	facts, err := p.Repo.ListVisibleFacts(ctx, dealID, bankID)
	if err != nil {
		return m, fmt.Errorf("list visible facts: %w", err)
	}
	byPeriod := map[string]*snapshot.Period{}
	order := []string{}
	for i := range facts {
		f := facts[i]
		if f.PeriodID == nil || *f.PeriodID == "" || f.Value == nil {
			continue
		}
		period, ok := byPeriod[*f.PeriodID]
		if !ok {
			period = &snapshot.Period{ID: *f.PeriodID, Type: f.PeriodType}
			if f.PeriodEnd != nil {
				period.End = *f.PeriodEnd
			}
			byPeriod[*f.PeriodID] = period
			order = append(order, *f.PeriodID)
		}
		if period.End.IsZero() && f.PeriodEnd != nil {
			period.End = *f.PeriodEnd
		}
		assignFigure(&period.Figures, f.FactKey, *f.Value)
	}
	sort.Strings(order)
	for _, id := range order {
		m.Periods = append(m.Periods, *byPeriod[id])
	}

	instruments, err := p.Repo.ListDebtInstruments(ctx, dealID, bankID)
	if err != nil {
		return m, fmt.Errorf("list debt instruments: %w", err)
	}
	for _, ins := range instruments {
		m.Instruments = append(m.Instruments, snapshot.Instrument{
			Name:               ins.Name,
			Balance:            ins.Balance,
			AnnualRate:         ins.AnnualRate,
			AmortMonths:        ins.AmortMonths,
			InterestOnlyMonths: ins.InterestOnlyMonths,
		})
	}
	return m, nil
}

// Run executes the full snapshot -> policy -> stress chain. Returns nil
// artifacts with nil error when no usable period exists; the caller decides
// how to report that.
func (p *Pipeline) Run(ctx context.Context, dealID, bankID, product string) (*PipelineArtifacts, error) {
	model, err := p.BuildFinancialModel(ctx, dealID, bankID)
	if err != nil {
		return nil, err
	}
	snap := snapshot.Build(model)
	if snap == nil {
		p.Ledger.LogPipelineLedger(ctx, dealID, bankID, "snapshot", "no_usable_period", nil)
		return nil, nil
	}

	row, err := p.persistSnapshot(ctx, snap)
	if err != nil {
		return nil, err
	}

	overlayRow, err := p.Repo.GetBankOverlay(ctx, bankID, product)
	if err != nil {
		return nil, fmt.Errorf("load bank overlay: %w", err)
	}
	ov := policy.ResolveOverlay(overlayRow, p.PolicyCfg)

	polRes := policy.Evaluate(snap, product, ov)
	stressRes := stress.Run(model, product, ov)

	p.Ledger.LogPipelineLedger(ctx, dealID, bankID, "policy", polRes.TierLabel,
		map[string]any{"passed": polRes.Passed, "failed_metrics": polRes.FailedMetrics})
	if stressRes != nil {
		p.Ledger.LogPipelineLedger(ctx, dealID, bankID, "stress", stressRes.WorstLabel,
			map[string]any{"tier_degraded": stressRes.TierDegraded})
	}

	return &PipelineArtifacts{
		Snapshot:   snap,
		SnapshotID: row.ID,
		Policy:     &polRes,
		Stress:     stressRes,
	}, nil
}

func (p *Pipeline) persistSnapshot(ctx context.Context, snap *snapshot.Snapshot) (*models.CreditSnapshot, error) {
	row := &models.CreditSnapshot{
		DealID:            snap.DealID,
		BankID:            snap.BankID,
		PeriodID:          snap.Period.PeriodID,
		PeriodEnd:         snap.Period.PeriodEnd,
		PeriodType:        snap.Period.Type,
		DebtServiceTotal:  snap.DebtService.Total,
		DebtServiceSource: snap.DebtService.Source,
		CashFlow:          snap.CashFlow,
		NOI:               snap.NOI,
		DSCR:              snap.Ratios.DSCR,
		Leverage:          snap.Ratios.Leverage,
		CurrentRatio:      snap.Ratios.CurrentRatio,
		EBITDAMargin:      snap.Ratios.EBITDAMargin,
		NetMargin:         snap.Ratios.NetMargin,
		DebtToEBITDA:      snap.Ratios.DebtToEBITDA,
	}
	if raw, err := json.Marshal(snap.Period.SelectionDiagnostics); err == nil {
		row.SelectionDiagnostics = datatypes.JSON(raw)
	}
	if raw, err := json.Marshal(snap.DebtService.Breakdown); err == nil {
		row.DebtServiceBreakdown = datatypes.JSON(raw)
	}
	if raw, err := json.Marshal(snap.Ratios); err == nil {
		row.Ratios = datatypes.JSON(raw)
	}
	if err := p.Repo.InsertCreditSnapshot(ctx, row); err != nil {
		return nil, fmt.Errorf("persist credit snapshot: %w", err)
	}
	if p.Logger != nil {
		p.Logger.Info("credit snapshot persisted",
			zap.String("deal_id", snap.DealID),
			zap.String("period_id", snap.Period.PeriodID),
			zap.String("period_type", snap.Period.Type))
	}
	return row, nil
}

func assignFigure(fig *snapshot.Figures, key string, v decimal.Decimal) {
	switch key {
	case factKeyRevenue:
		fig.Revenue = &v
	case factKeyEBITDA:
		fig.EBITDA = &v
	case factKeyNetIncome:
		fig.NetIncome = &v
	case factKeyCurrentAssets:
		fig.CurrentAssets = &v
	case factKeyCurrentLiabilities:
		fig.CurrentLiabilities = &v
	case factKeyTotalDebt:
		fig.TotalDebt = &v
	case factKeyTotalAssets:
		fig.TotalAssets = &v
	case factKeyNOI:
		fig.NOI = &v
	}
}

// resultPayload is the READY payload written to spread_results.
type resultPayload struct {
	SnapshotID  uint64          `json:"snapshot_id"`
	PeriodID    string          `json:"period_id"`
	PeriodType  string          `json:"period_type"`
	Policy      *policy.Result  `json:"policy,omitempty"`
	Stress      *stress.Result  `json:"stress,omitempty"`
	ComputedAt  time.Time       `json:"computed_at"`
	DebtService decimal.Decimal `json:"annual_debt_service"`
}
