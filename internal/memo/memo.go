package memo

import (
	"fmt"
	"strings"
	"time"

	"creditpipe/internal/models"
	"creditpipe/internal/policy"
	"creditpipe/internal/snapshot"
	"creditpipe/internal/stress"
)

const (
	RecommendApprove              = "APPROVE"
	RecommendApproveWithMitigants = "APPROVE_WITH_MITIGANTS"
	RecommendDeclineOrRestructure = "DECLINE_OR_RESTRUCTURE"
)

type Input struct {
	DealID   string
	Product  string
	Snapshot *snapshot.Snapshot
	Policy   *policy.Result
	Stress   *stress.Result
	Scenario *models.PricingScenario
	Decision *models.PricingDecision
}

// Sections holds the memo's eight fixed sections.
type Sections struct {
	ExecutiveSummary    string `json:"executive_summary"`
	TransactionOverview string `json:"transaction_overview"`
	FinancialAnalysis   string `json:"financial_analysis"`
	PolicyAssessment    string `json:"policy_assessment"`
	StressAnalysis      string `json:"stress_analysis"`
	PricingSummary      string `json:"pricing_summary"`
	RisksMitigants      string `json:"risks_mitigants"`
	Recommendation      string `json:"recommendation"`
}

type CreditMemo struct {
	DealID         string    `json:"deal_id"`
	Product        string    `json:"product"`
	Recommendation string    `json:"recommendation"`
	Sections       Sections  `json:"sections"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// RecommendationForTier is the explicit total mapping from tier to outcome.
func RecommendationForTier(t policy.Tier) string {
	switch t {
	case policy.TierA, policy.TierB:
		return RecommendApprove
	case policy.TierC:
		return RecommendApproveWithMitigants
	}
	return RecommendDeclineOrRestructure
}

// Compose renders the eight-section memo from the pipeline's outputs. Pure
// and byte-deterministic: the only timestamp lives outside section content.
func Compose(in Input) CreditMemo {
	tier := policy.TierD
	if in.Policy != nil {
		tier = in.Policy.Tier
	}
	rec := RecommendationForTier(tier)

	memo := CreditMemo{
		DealID:         in.DealID,
		Product:        in.Product,
		Recommendation: rec,
		GeneratedAt:    time.Now().UTC(),
	}
	memo.Sections = Sections{
		ExecutiveSummary:    executiveSummary(in, tier, rec),
		TransactionOverview: transactionOverview(in),
		FinancialAnalysis:   financialAnalysis(in),
		PolicyAssessment:    policyAssessment(in),
		StressAnalysis:      stressAnalysis(in),
		PricingSummary:      pricingSummary(in),
		RisksMitigants:      risksMitigants(in),
		Recommendation:      recommendation(in, tier, rec),
	}
	return memo
}

func executiveSummary(in Input, tier policy.Tier, rec string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deal %s (%s) is rated tier %s.", in.DealID, in.Product, tier)
	if in.Stress != nil {
		fmt.Fprintf(&b, " Worst stressed tier is %s", in.Stress.WorstTier)
		if in.Stress.TierDegraded {
			b.WriteString(" with degradation under stress")
		}
		b.WriteString(".")
	}
	fmt.Fprintf(&b, " Recommendation: %s.", rec)
	return b.String()
}

func transactionOverview(in Input) string {
	if in.Scenario == nil {
		return "No priced structure has been selected for this transaction."
	}
	s := in.Scenario
	return fmt.Sprintf(
		"Proposed structure %s: $%s %s, %d-month term with %d-month amortization, priced at %s + %dbps (%.2f%% all-in). Guaranty: %s.",
		s.ScenarioKey, s.LoanAmount.StringFixed(0), s.ProductType,
		s.TermMonths, s.AmortMonths, s.IndexCode, s.SpreadBps, s.AllInRatePct, s.Guaranty,
	)
}

func financialAnalysis(in Input) string {
	if in.Snapshot == nil {
		return "No usable financial period was available; financial analysis could not be performed."
	}
	snap := in.Snapshot
	var b strings.Builder
	fmt.Fprintf(&b, "Based on %s period %s ending %s.",
		strings.ToLower(snap.Period.Type), snap.Period.PeriodID,
		snap.Period.PeriodEnd.Format("2006-01-02"))
	fmt.Fprintf(&b, " Existing annual debt service $%s (%s).",
		snap.DebtService.Total.StringFixed(2), strings.ToLower(snap.DebtService.Source))

	metrics := []struct {
		label string
		value *float64
		unit  string
	}{
		{"DSCR", snap.Ratios.DSCR, "x"},
		{"leverage", snap.Ratios.Leverage, "x"},
		{"current ratio", snap.Ratios.CurrentRatio, "x"},
		{"EBITDA margin", snap.Ratios.EBITDAMargin, ""},
		{"net margin", snap.Ratios.NetMargin, ""},
		{"debt/EBITDA", snap.Ratios.DebtToEBITDA, "x"},
	}
	parts := []string{}
	for _, m := range metrics {
		if m.value == nil {
			continue
		}
		if m.unit == "x" {
			parts = append(parts, fmt.Sprintf("%s %.2fx", m.label, *m.value))
		} else {
			parts = append(parts, fmt.Sprintf("%s %.1f%%", m.label, *m.value*100))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, " Key metrics: %s.", strings.Join(parts, ", "))
	}
	return b.String()
}

func policyAssessment(in Input) string {
	if in.Policy == nil {
		return "Policy evaluation unavailable."
	}
	p := in.Policy
	var b strings.Builder
	if p.Passed {
		fmt.Fprintf(&b, "Passes %s policy at tier %s.", p.Product, p.Tier)
	} else {
		fmt.Fprintf(&b, "Fails %s policy at tier %s.", p.Product, p.Tier)
	}
	for _, br := range p.Breaches {
		fmt.Fprintf(&b, "\n- %s breach (%s): actual %.2f vs %s, deviation %.1f%%",
			br.Metric, br.Severity, br.ActualValue, boundText(br.Threshold), br.Deviation*100)
	}
	for _, w := range p.Warnings {
		fmt.Fprintf(&b, "\n- note: %s", w)
	}
	return b.String()
}

func stressAnalysis(in Input) string {
	if in.Stress == nil {
		return "Stress testing could not be performed: no usable baseline snapshot."
	}
	st := in.Stress
	var b strings.Builder
	fmt.Fprintf(&b, "Baseline tier %s; worst stressed tier %s.", st.Baseline.Policy.Tier, st.WorstTier)
	if st.TierDegraded {
		b.WriteString(" Classification degrades under stress.")
	} else {
		b.WriteString(" Classification holds under all scenarios.")
	}
	for _, sc := range st.Scenarios {
		if sc.Key == stress.KeyBaseline {
			continue
		}
		fmt.Fprintf(&b, "\n- %s: tier %s", sc.Label, sc.Policy.Tier)
		if sc.DSCRDelta != nil {
			fmt.Fprintf(&b, ", DSCR delta %+.2f", *sc.DSCRDelta)
		}
		if sc.DebtServiceDelta != nil {
			fmt.Fprintf(&b, ", debt service delta %+.0f", *sc.DebtServiceDelta)
		}
	}
	return b.String()
}

func pricingSummary(in Input) string {
	if in.Scenario == nil {
		return "Pricing has not been generated for this deal."
	}
	s := in.Scenario
	var b strings.Builder
	fmt.Fprintf(&b, "Selected %s: monthly P&I $%s, annual debt service $%s.",
		s.ScenarioKey, s.MonthlyPI.StringFixed(2), s.AnnualDebtService.StringFixed(2))
	if s.DSCR != nil {
		fmt.Fprintf(&b, " Projected DSCR %.2fx", *s.DSCR)
		if s.DSCRStressed != nil {
			fmt.Fprintf(&b, " (%.2fx at +300bps)", *s.DSCRStressed)
		}
		b.WriteString(".")
	}
	if s.LTVPct != nil {
		fmt.Fprintf(&b, " LTV %.1f%%.", *s.LTVPct)
	}
	if s.DebtYieldPct != nil {
		fmt.Fprintf(&b, " Debt yield %.1f%%.", *s.DebtYieldPct)
	}
	return b.String()
}

func risksMitigants(in Input) string {
	risks := []string{}
	if in.Policy != nil {
		for _, br := range in.Policy.Breaches {
			risks = append(risks, fmt.Sprintf("%s outside policy (%s, deviation %.1f%%)",
				br.Metric, br.Severity, br.Deviation*100))
		}
	}
	if in.Stress != nil && in.Stress.TierDegraded {
		risks = append(risks, "risk tier degrades under stress scenarios")
	}
	if len(risks) == 0 {
		return "No material policy or stress risks identified."
	}
	var b strings.Builder
	b.WriteString("Risks:")
	for _, r := range risks {
		fmt.Fprintf(&b, "\n- %s", r)
	}
	b.WriteString("\nMitigants:")
	b.WriteString("\n- Covenant package sized to the breached metrics")
	b.WriteString("\n- Periodic financial reporting with covenant recalculation")
	return b.String()
}

func recommendation(in Input, tier policy.Tier, rec string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (tier %s).", rec, tier)
	switch rec {
	case RecommendApproveWithMitigants:
		b.WriteString(" Approval is conditioned on active monitoring and remediation of:")
		if in.Policy != nil && len(in.Policy.FailedMetrics) > 0 {
			for _, m := range in.Policy.FailedMetrics {
				fmt.Fprintf(&b, "\n- %s: quarterly covenant test and cure plan", m)
			}
		} else {
			b.WriteString("\n- metrics flagged by policy evaluation")
		}
	case RecommendDeclineOrRestructure:
		b.WriteString(" Decline as structured, or restructure to cure:")
		if in.Policy != nil {
			for _, br := range in.Policy.Breaches {
				fmt.Fprintf(&b, "\n- %s: %s breach, deviation %.1f%%", br.Metric, br.Severity, br.Deviation*100)
			}
		}
	}
	return b.String()
}

func boundText(th policy.Threshold) string {
	if th.Minimum != nil {
		return fmt.Sprintf("minimum %.2f", *th.Minimum)
	}
	if th.Maximum != nil {
		return fmt.Sprintf("maximum %.2f", *th.Maximum)
	}
	return "malformed threshold"
}
