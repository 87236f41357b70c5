package sba

import (
	"fmt"

	"github.com/shopspring/decimal"

	"creditpipe/internal/config"
)

const (
	StatusEligible   = "ELIGIBLE"
	StatusPossible   = "POSSIBLE_WITH_CONDITIONS"
	StatusIneligible = "INELIGIBLE"
)

type Input struct {
	LoanAmount    decimal.Decimal
	AnnualRevenue *decimal.Decimal
	UseOfProceeds string
	IsSBA         bool
}

type Eligibility struct {
	Status    string   `json:"status"`
	Reasons   []string `json:"reasons"`
	Citations []string `json:"citations"`
}

type Evaluator struct {
	Cfg config.SBAConfig
}

// Evaluate applies the program's size and use-of-proceeds rules. Ineligible
// is definitive; unknown revenue or restricted proceeds downgrade to
// possible-with-conditions rather than ruling the program out.
func (e Evaluator) Evaluate(in Input) Eligibility {
	out := Eligibility{Status: StatusEligible}

	if e.Cfg.MaxLoanUSD > 0 && in.LoanAmount.GreaterThan(decimal.NewFromFloat(e.Cfg.MaxLoanUSD)) {
		out.Status = StatusIneligible
		out.Reasons = append(out.Reasons,
			fmt.Sprintf("requested amount %s exceeds the 7(a) program maximum of %.0f", in.LoanAmount.StringFixed(0), e.Cfg.MaxLoanUSD))
		out.Citations = append(out.Citations, "SOP 50 10: 7(a) maximum loan amount")
		return out
	}

	switch in.UseOfProceeds {
	case "SPECULATIVE", "LENDING", "PASSIVE_INVESTMENT":
		out.Status = StatusIneligible
		out.Reasons = append(out.Reasons, "use of proceeds is ineligible for 7(a)")
		out.Citations = append(out.Citations, "SOP 50 10: ineligible businesses and uses")
		return out
	case "RENTAL_REAL_ESTATE":
		out.Status = StatusPossible
		out.Reasons = append(out.Reasons, "rental real estate requires owner-occupancy review")
		out.Citations = append(out.Citations, "SOP 50 10: occupancy requirements for real estate")
	}

	if in.AnnualRevenue == nil {
		if out.Status == StatusEligible {
			out.Status = StatusPossible
		}
		out.Reasons = append(out.Reasons, "annual revenue unknown; size standard unverified")
		out.Citations = append(out.Citations, "13 CFR 121: small business size standards")
	} else if e.Cfg.MaxRevenueUSD > 0 && in.AnnualRevenue.GreaterThan(decimal.NewFromFloat(e.Cfg.MaxRevenueUSD)) {
		out.Status = StatusIneligible
		out.Reasons = append(out.Reasons, "revenue exceeds the alternative size standard")
		out.Citations = append(out.Citations, "13 CFR 121: small business size standards")
		return out
	}

	if len(out.Reasons) == 0 {
		out.Reasons = append(out.Reasons, "meets 7(a) size and use-of-proceeds screens")
	}
	return out
}
