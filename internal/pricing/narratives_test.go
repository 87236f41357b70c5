package pricing

import (
	"testing"

	"creditpipe/internal/models"
)

func TestDecisionInputHash(t *testing.T) {
	a := DecisionInputHash("deal-1", "bank-1", 3, 7, "approved per committee")
	b := DecisionInputHash("deal-1", "bank-1", 3, 7, "approved per committee")
	if a != b {
		t.Fatalf("hash not stable: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("len(hash)=%d want=64", len(a))
	}
	for _, other := range []string{
		DecisionInputHash("deal-2", "bank-1", 3, 7, "approved per committee"),
		DecisionInputHash("deal-1", "bank-2", 3, 7, "approved per committee"),
		DecisionInputHash("deal-1", "bank-1", 4, 7, "approved per committee"),
		DecisionInputHash("deal-1", "bank-1", 3, 8, "approved per committee"),
		DecisionInputHash("deal-1", "bank-1", 3, 7, "declined"),
	} {
		if other == a {
			t.Fatalf("distinct inputs hashed to %s", a)
		}
	}
}

func TestRenderNarratives_Deterministic(t *testing.T) {
	scens := BuildScenarios(testInput())
	base := scenarioByKey(t, scens, models.ScenarioBase)
	if base == nil {
		t.Fatal("missing BASE scenario")
	}
	risks := []string{"customer concentration above 40%"}
	mitigants := []string{"twelve-month lookback on top customer retention"}

	first := RenderNarratives(base, "structure supported by trailing cash flow", risks, mitigants)
	second := RenderNarratives(base, "structure supported by trailing cash flow", risks, mitigants)
	if first != second {
		t.Fatalf("narratives differ across identical renders:\n%+v\n%+v", first, second)
	}
	if first.Rationale != "structure supported by trailing cash flow" {
		t.Fatalf("rationale=%q", first.Rationale)
	}
	if first.Structure == "" || first.CoverageMetrics == "" || first.CashFlowImpact == "" {
		t.Fatalf("empty narrative block: %+v", first)
	}
}

func TestRenderNarratives_RisksAndMitigants(t *testing.T) {
	scens := BuildScenarios(testInput())
	base := scenarioByKey(t, scens, models.ScenarioBase)
	if base == nil {
		t.Fatal("missing BASE scenario")
	}
	set := RenderNarratives(base, "ok", []string{"r1", "r2"}, []string{"m1"})
	want := "Risks:\n- r1\n- r2\nMitigants:\n- m1"
	if set.RisksMitigants != want {
		t.Fatalf("risks block=%q want=%q", set.RisksMitigants, want)
	}
}

func TestRenderNarratives_NoCoverageMetrics(t *testing.T) {
	in := testInput()
	in.CashFlow = nil
	in.CollateralValue = nil
	in.NOI = nil
	base := scenarioByKey(t, BuildScenarios(in), models.ScenarioBase)
	if base == nil {
		t.Fatal("missing BASE scenario")
	}
	set := RenderNarratives(base, "ok", nil, nil)
	if set.CoverageMetrics != "Coverage metrics unavailable for the selected structure." {
		t.Fatalf("coverage=%q", set.CoverageMetrics)
	}
}
