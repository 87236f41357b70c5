package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"creditpipe/internal/models"
)

// NarrativeSet is the six deterministic text blocks derived from a recorded
// decision. Rendering is a pure function of the numeric scenario fields and
// the human rationale: identical input always byte-matches.
type NarrativeSet struct {
	Structure        string
	Rationale        string
	RisksMitigants   string
	CoverageMetrics  string
	CashFlowImpact   string
	PolicyCompliance string
}

// DecisionInputHash is the stable idempotency key for the narrative upsert.
func DecisionInputHash(dealID, bankID string, scenarioID, snapshotID uint64, rationale string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%d|%s", dealID, bankID, scenarioID, snapshotID, rationale)
	return hex.EncodeToString(h.Sum(nil))
}

func RenderNarratives(scen *models.PricingScenario, rationale string, risks, mitigants []string) NarrativeSet {
	var set NarrativeSet

	set.Structure = fmt.Sprintf(
		"%s %s: $%s over %d months (%d-month amortization) at %s + %dbps = %.2f%% all-in. Prepayment: %s. Guaranty: %s.",
		scen.ScenarioKey, scen.ProductType,
		scen.LoanAmount.StringFixed(0),
		scen.TermMonths, scen.AmortMonths,
		scen.IndexCode, scen.SpreadBps, scen.AllInRatePct,
		scen.Prepayment, scen.Guaranty,
	)

	set.Rationale = rationale

	var rb strings.Builder
	rb.WriteString("Risks:\n")
	for _, r := range risks {
		fmt.Fprintf(&rb, "- %s\n", r)
	}
	rb.WriteString("Mitigants:\n")
	for _, m := range mitigants {
		fmt.Fprintf(&rb, "- %s\n", m)
	}
	set.RisksMitigants = strings.TrimRight(rb.String(), "\n")

	cov := []string{}
	if scen.DSCR != nil {
		cov = append(cov, fmt.Sprintf("DSCR %.2fx", *scen.DSCR))
	}
	if scen.DSCRStressed != nil {
		cov = append(cov, fmt.Sprintf("stressed DSCR %.2fx", *scen.DSCRStressed))
	}
	if scen.LTVPct != nil {
		cov = append(cov, fmt.Sprintf("LTV %.1f%%", *scen.LTVPct))
	}
	if scen.DebtYieldPct != nil {
		cov = append(cov, fmt.Sprintf("debt yield %.1f%%", *scen.DebtYieldPct))
	}
	if len(cov) == 0 {
		set.CoverageMetrics = "Coverage metrics unavailable for the selected structure."
	} else {
		set.CoverageMetrics = "Coverage: " + strings.Join(cov, ", ") + "."
	}

	set.CashFlowImpact = fmt.Sprintf(
		"Monthly principal and interest $%s; annual debt service $%s. Interest-only payment would be $%s per month.",
		scen.MonthlyPI.StringFixed(2),
		scen.AnnualDebtService.StringFixed(2),
		scen.MonthlyIO.StringFixed(2),
	)

	overlays := decodeOverlays(scen.PolicyOverlays)
	if len(overlays) == 0 {
		set.PolicyCompliance = "No bank policy or SBA SOP overlays fired for this structure."
	} else {
		var pb strings.Builder
		pb.WriteString("Policy overlays applied:\n")
		for _, o := range overlays {
			fmt.Fprintf(&pb, "- %s\n", o)
		}
		set.PolicyCompliance = strings.TrimRight(pb.String(), "\n")
	}

	return set
}
