package pricing

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"creditpipe/internal/ledger"
	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

const (
	StatusScenarioNotFound = "scenario_not_found"
	StatusSnapshotMissing  = "snapshot_missing"
)

type RecordDecisionInput struct {
	DealID     string   `json:"deal_id"`
	BankID     string   `json:"bank_id"`
	ScenarioID uint64   `json:"scenario_id"`
	Rationale  string   `json:"rationale"`
	Risks      []string `json:"risks"`
	Mitigants  []string `json:"mitigants"`
	DecidedBy  string   `json:"decided_by"`
}

type DecisionOutcome struct {
	Status   string                  `json:"status"`
	Reason   string                  `json:"reason,omitempty"`
	Decision *models.PricingDecision `json:"decision,omitempty"`
	Terms    *models.PricingTerms    `json:"terms,omitempty"`
}

// Recorder records the single chosen decision for a deal: prior decision
// replaced, terms spawned, canonical narratives upserted idempotently, all
// inside one repository transaction.
type Recorder struct {
	Repo   repository.Repository
	Ledger *ledger.Sink
	Logger *zap.Logger
}

func (r *Recorder) Record(ctx context.Context, in RecordDecisionInput) (DecisionOutcome, error) {
	if r == nil || r.Repo == nil {
		return DecisionOutcome{Status: StatusScenarioNotFound, Reason: "recorder not configured"}, nil
	}

	scen, err := r.Repo.GetPricingScenarioByID(ctx, in.ScenarioID)
	if err != nil {
		return DecisionOutcome{}, err
	}
	if scen == nil || scen.DealID != in.DealID || scen.BankID != in.BankID {
		return DecisionOutcome{Status: StatusScenarioNotFound, Reason: "scenario does not exist for deal"}, nil
	}

	// Immutability check: the snapshot the scenario was priced against must
	// still exist, otherwise the decision would reference vanished inputs.
	snap, err := r.Repo.GetCreditSnapshotByID(ctx, scen.SnapshotID)
	if err != nil {
		return DecisionOutcome{}, err
	}
	if snap == nil {
		return DecisionOutcome{Status: StatusSnapshotMissing, Reason: "snapshot backing the scenario no longer exists"}, nil
	}

	decision := &models.PricingDecision{
		DealID:     in.DealID,
		BankID:     in.BankID,
		ScenarioID: scen.ID,
		SnapshotID: scen.SnapshotID,
		Rationale:  in.Rationale,
		DecidedBy:  in.DecidedBy,
	}
	if raw, err := json.Marshal(in.Risks); err == nil {
		decision.Risks = datatypes.JSON(raw)
	}
	if raw, err := json.Marshal(in.Mitigants); err == nil {
		decision.Mitigants = datatypes.JSON(raw)
	}

	terms := &models.PricingTerms{
		DealID:             in.DealID,
		BankID:             in.BankID,
		ScenarioKey:        scen.ScenarioKey,
		ProductType:        scen.ProductType,
		IndexCode:          scen.IndexCode,
		BaseRatePct:        scen.BaseRatePct,
		SpreadBps:          scen.SpreadBps,
		AllInRatePct:       scen.AllInRatePct,
		LoanAmount:         scen.LoanAmount,
		TermMonths:         scen.TermMonths,
		AmortMonths:        scen.AmortMonths,
		InterestOnlyMonths: scen.InterestOnlyMonths,
		MonthlyPI:          scen.MonthlyPI,
		AnnualDebtService:  scen.AnnualDebtService,
		Prepayment:         scen.Prepayment,
		Guaranty:           scen.Guaranty,
	}

	set := RenderNarratives(scen, in.Rationale, in.Risks, in.Mitigants)
	narratives := &models.MemoNarratives{
		DealID:           in.DealID,
		BankID:           in.BankID,
		InputHash:        DecisionInputHash(in.DealID, in.BankID, scen.ID, scen.SnapshotID, in.Rationale),
		Structure:        set.Structure,
		Rationale:        set.Rationale,
		RisksMitigants:   set.RisksMitigants,
		CoverageMetrics:  set.CoverageMetrics,
		CashFlowImpact:   set.CashFlowImpact,
		PolicyCompliance: set.PolicyCompliance,
	}

	if err := r.Repo.RecordPricingDecision(ctx, decision, terms, narratives); err != nil {
		return DecisionOutcome{}, err
	}

	r.Ledger.WriteSystemEvent(ctx, in.DealID, in.BankID, "pricing_decision_recorded", models.EventSeverityInfo,
		"pricing decision recorded", map[string]any{
			"scenario_key": scen.ScenarioKey,
			"scenario_id":  scen.ID,
			"decision_id":  decision.ID,
		})
	r.Ledger.LogPipelineLedger(ctx, in.DealID, in.BankID, "pipeline_cleared", "SUCCEEDED", map[string]any{
		"decision_id": decision.ID,
	})
	if r.Logger != nil {
		r.Logger.Info("pricing decision recorded",
			zap.String("deal_id", in.DealID),
			zap.String("scenario_key", scen.ScenarioKey))
	}

	return DecisionOutcome{Status: StatusOK, Decision: decision, Terms: terms}, nil
}

func decodeOverlays(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
