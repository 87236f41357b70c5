package policy

import (
	"testing"

	"creditpipe/internal/config"
	"creditpipe/internal/models"
	"creditpipe/internal/snapshot"
)

func f64(v float64) *float64 { return &v }

func testOverlay() Overlay {
	return Overlay{
		MinDSCR:                 f64(1.25),
		MaxLeverage:             f64(4.0),
		MinCurrentRatio:         f64(1.2),
		MaxDebtToEBITDA:         f64(5.0),
		ModerateDeviationCutoff: 0.10,
		SevereDeviationCutoff:   0.25,
	}
}

func snapWithRatios(r snapshot.Ratios) *snapshot.Snapshot {
	return &snapshot.Snapshot{DealID: "d1", BankID: "b1", Ratios: r}
}

func TestEvaluate_AllMetricsClean(t *testing.T) {
	res := Evaluate(snapWithRatios(snapshot.Ratios{
		DSCR:         f64(1.8),
		Leverage:     f64(2.0),
		CurrentRatio: f64(1.5),
		DebtToEBITDA: f64(3.0),
	}), "CONVENTIONAL_TERM", testOverlay())
	if res.Tier != TierA {
		t.Fatalf("tier=%s want=A", res.Tier)
	}
	if !res.Passed {
		t.Fatal("passed=false want=true for clean metrics")
	}
	if len(res.Breaches) != 0 {
		t.Fatalf("breaches=%v want none", res.Breaches)
	}
}

func TestEvaluate_WarningBreachGivesTierB(t *testing.T) {
	// DSCR 1.20 vs min 1.25: deviation 4%, below the moderate cutoff.
	res := Evaluate(snapWithRatios(snapshot.Ratios{DSCR: f64(1.20)}), "CONVENTIONAL_TERM", testOverlay())
	if res.Tier != TierB {
		t.Fatalf("tier=%s want=B", res.Tier)
	}
	if !res.Passed {
		t.Fatal("passed=false want=true at tier B")
	}
	if len(res.Breaches) != 1 || res.Breaches[0].Severity != SeverityWarning {
		t.Fatalf("breaches=%+v want one warning", res.Breaches)
	}
	if len(res.FailedMetrics) != 0 {
		t.Fatalf("failed=%v want empty for a warning breach", res.FailedMetrics)
	}
}

func TestEvaluate_ModerateBreachGivesTierC(t *testing.T) {
	// DSCR 1.05 vs min 1.25: deviation 16%.
	res := Evaluate(snapWithRatios(snapshot.Ratios{DSCR: f64(1.05)}), "CONVENTIONAL_TERM", testOverlay())
	if res.Tier != TierC {
		t.Fatalf("tier=%s want=C", res.Tier)
	}
	if res.Passed {
		t.Fatal("passed=true want=false at tier C")
	}
	if len(res.FailedMetrics) != 1 || res.FailedMetrics[0] != "dscr" {
		t.Fatalf("failed=%v want [dscr]", res.FailedMetrics)
	}
}

func TestEvaluate_SevereBreachGivesTierD(t *testing.T) {
	// Leverage 6.0 vs max 4.0: deviation 50%.
	res := Evaluate(snapWithRatios(snapshot.Ratios{Leverage: f64(6.0)}), "CONVENTIONAL_TERM", testOverlay())
	if res.Tier != TierD {
		t.Fatalf("tier=%s want=D", res.Tier)
	}
	if len(res.Breaches) != 1 || res.Breaches[0].Severity != SeveritySevere {
		t.Fatalf("breaches=%+v want one severe", res.Breaches)
	}
}

func TestEvaluate_WorstBreachWins(t *testing.T) {
	res := Evaluate(snapWithRatios(snapshot.Ratios{
		DSCR:     f64(1.20), // warning
		Leverage: f64(6.0),  // severe
	}), "CONVENTIONAL_TERM", testOverlay())
	if res.Tier != TierD {
		t.Fatalf("tier=%s want=D when any breach is severe", res.Tier)
	}
	if len(res.Breaches) != 2 {
		t.Fatalf("breaches len=%d want=2", len(res.Breaches))
	}
}

func TestEvaluate_NilSnapshotFailsClosed(t *testing.T) {
	res := Evaluate(nil, "CONVENTIONAL_TERM", testOverlay())
	if res.Tier != TierD {
		t.Fatalf("tier=%s want=D for nil snapshot", res.Tier)
	}
	if res.Passed {
		t.Fatal("passed=true want=false for nil snapshot")
	}
}

func TestEvaluate_MissingMetricIsWarningOnly(t *testing.T) {
	res := Evaluate(snapWithRatios(snapshot.Ratios{
		DSCR: f64(1.8), // the rest are nil
	}), "CONVENTIONAL_TERM", testOverlay())
	if res.Tier != TierA {
		t.Fatalf("tier=%s want=A; missing metrics must not breach", res.Tier)
	}
	if len(res.Warnings) != 3 {
		t.Fatalf("warnings=%v want one per unavailable metric", res.Warnings)
	}
}

func TestEvaluate_MalformedThresholdFailsClosed(t *testing.T) {
	ov := testOverlay()
	ov.MinDSCR = f64(0) // zero bound is policy-data corruption
	res := Evaluate(snapWithRatios(snapshot.Ratios{DSCR: f64(1.8)}), "CONVENTIONAL_TERM", ov)
	if res.Tier != TierC {
		t.Fatalf("tier=%s want=C for malformed threshold", res.Tier)
	}
	if len(res.Breaches) != 1 || res.Breaches[0].Severity != SeverityModerate {
		t.Fatalf("breaches=%+v want one moderate fail-closed breach", res.Breaches)
	}
}

func TestEvaluate_UnconfiguredMetricSkipped(t *testing.T) {
	ov := testOverlay()
	ov.MaxLeverage = nil
	res := Evaluate(snapWithRatios(snapshot.Ratios{
		DSCR:         f64(1.8),
		Leverage:     f64(9.0),
		CurrentRatio: f64(1.5),
		DebtToEBITDA: f64(3.0),
	}), "CONVENTIONAL_TERM", ov)
	if res.Tier != TierA {
		t.Fatalf("tier=%s want=A when leverage is not policy for the bank", res.Tier)
	}
}

func TestResolveOverlay_RowWinsOverDefaults(t *testing.T) {
	cfg := config.PolicyConfig{
		DefaultMinDSCR:          1.25,
		DefaultMaxLeverage:      4.0,
		ModerateDeviationCutoff: 0.10,
		SevereDeviationCutoff:   0.25,
		DefaultBaseSpreadBps:    275,
	}
	row := &models.BankOverlay{
		MinDSCR:       f64(1.40),
		BaseSpreadBps: 325,
	}
	ov := ResolveOverlay(row, cfg)
	if ov.MinDSCR == nil || *ov.MinDSCR != 1.40 {
		t.Fatalf("min dscr=%v want=1.40 from row", ov.MinDSCR)
	}
	if ov.MaxLeverage == nil || *ov.MaxLeverage != 4.0 {
		t.Fatalf("max leverage=%v want=4.0 from defaults", ov.MaxLeverage)
	}
	if ov.BaseSpreadBps != 325 {
		t.Fatalf("base spread=%d want=325", ov.BaseSpreadBps)
	}
	if ov.ModerateDeviationCutoff != 0.10 || ov.SevereDeviationCutoff != 0.25 {
		t.Fatalf("cutoffs=%v/%v want defaults", ov.ModerateDeviationCutoff, ov.SevereDeviationCutoff)
	}
}

func TestTierOrderingAndParsing(t *testing.T) {
	if Worse(TierA, TierC) != TierC || Worse(TierD, TierB) != TierD {
		t.Fatal("Worse must pick the higher-risk tier")
	}
	if !TierB.Approvable() || TierC.Approvable() {
		t.Fatal("approvable set must be exactly {A, B}")
	}
	if ParseTier("B") != TierB {
		t.Fatalf("ParseTier(B)=%s", ParseTier("B"))
	}
	if ParseTier("garbage") != TierD {
		t.Fatalf("ParseTier(garbage)=%s want=D", ParseTier("garbage"))
	}
}
