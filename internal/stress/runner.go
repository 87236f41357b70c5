package stress

import (
	"creditpipe/internal/policy"
	"creditpipe/internal/snapshot"
)

type ScenarioResult struct {
	Key      string             `json:"key"`
	Label    string             `json:"label"`
	Snapshot *snapshot.Snapshot `json:"-"`
	Policy   policy.Result      `json:"policy"`

	// Deltas vs the baseline scenario; nil when either side lacks the metric.
	DSCRDelta        *float64 `json:"dscr_delta,omitempty"`
	DebtServiceDelta *float64 `json:"debt_service_delta,omitempty"`
}

type Result struct {
	Baseline     ScenarioResult   `json:"baseline"`
	Scenarios    []ScenarioResult `json:"scenarios"`
	WorstTier    policy.Tier      `json:"-"`
	WorstLabel   string           `json:"worst_tier"`
	TierDegraded bool             `json:"tier_degraded"`
}

// Run applies every registry scenario to the model, re-evaluating policy per
// scenario, and aggregates the worst tier. Returns nil when the baseline
// snapshot cannot be built: the caller must treat that as "cannot
// stress-test", not an error.
func Run(m snapshot.FinancialModel, product string, ov policy.Overlay) *Result {
	baselineSnap := snapshot.Build(m)
	if baselineSnap == nil {
		return nil
	}

	baseline := ScenarioResult{
		Key:      KeyBaseline,
		Label:    "Baseline",
		Snapshot: baselineSnap,
		Policy:   policy.Evaluate(baselineSnap, product, ov),
	}

	res := &Result{
		Baseline:  baseline,
		WorstTier: baseline.Policy.Tier,
	}

	for _, def := range Registry() {
		if def.Key == KeyBaseline {
			res.Scenarios = append(res.Scenarios, baseline)
			continue
		}
		sc := runScenario(m, def, product, ov, baselineSnap)
		res.Scenarios = append(res.Scenarios, sc)
		res.WorstTier = policy.Worse(res.WorstTier, sc.Policy.Tier)
		if sc.Policy.Tier > baseline.Policy.Tier {
			res.TierDegraded = true
		}
	}
	res.WorstLabel = res.WorstTier.String()
	return res
}

func runScenario(m snapshot.FinancialModel, def ScenarioDefinition, product string, ov policy.Overlay, baseline *snapshot.Snapshot) ScenarioResult {
	shocked := m
	if def.EBITDAHaircut != nil {
		shocked = applyEBITDAHaircut(shocked, *def.EBITDAHaircut)
	}
	if def.RevenueHaircut != nil {
		shocked = applyRevenueHaircut(shocked, *def.RevenueHaircut)
	}
	if def.RateShockBps != nil {
		shocked = cloneModel(shocked)
		shocked.Instruments = applyRateShock(shocked.Instruments, *def.RateShockBps)
	}

	snap := snapshot.Build(shocked)
	sc := ScenarioResult{
		Key:      def.Key,
		Label:    def.Label,
		Snapshot: snap,
		Policy:   policy.Evaluate(snap, product, ov),
	}
	if snap == nil {
		return sc
	}

	if snap.Ratios.DSCR != nil && baseline.Ratios.DSCR != nil {
		d := *snap.Ratios.DSCR - *baseline.Ratios.DSCR
		sc.DSCRDelta = &d
	}
	if snap.DebtService.Source != snapshot.DebtServiceSourceNone &&
		baseline.DebtService.Source != snapshot.DebtServiceSourceNone {
		d := snap.DebtService.Total.Sub(baseline.DebtService.Total).InexactFloat64()
		sc.DebtServiceDelta = &d
	}
	return sc
}
