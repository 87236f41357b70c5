package sba

import (
	"testing"

	"github.com/shopspring/decimal"

	"creditpipe/internal/config"
)

func testEvaluator() Evaluator {
	return Evaluator{Cfg: config.SBAConfig{MaxLoanUSD: 5000000, MaxRevenueUSD: 47000000}}
}

func revenue(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestEvaluate_Eligible(t *testing.T) {
	out := testEvaluator().Evaluate(Input{
		LoanAmount:    decimal.RequireFromString("1000000"),
		AnnualRevenue: revenue("8000000"),
		UseOfProceeds: "WORKING_CAPITAL",
	})
	if out.Status != StatusEligible {
		t.Fatalf("status=%q want=%q", out.Status, StatusEligible)
	}
	if len(out.Reasons) != 1 {
		t.Fatalf("reasons=%v", out.Reasons)
	}
}

func TestEvaluate_LoanAboveProgramMax(t *testing.T) {
	out := testEvaluator().Evaluate(Input{
		LoanAmount:    decimal.RequireFromString("6000000"),
		AnnualRevenue: revenue("8000000"),
		UseOfProceeds: "WORKING_CAPITAL",
	})
	if out.Status != StatusIneligible {
		t.Fatalf("status=%q want=%q", out.Status, StatusIneligible)
	}
	if len(out.Citations) == 0 {
		t.Fatal("expected a program citation")
	}
}

func TestEvaluate_IneligibleUseOfProceeds(t *testing.T) {
	for _, use := range []string{"SPECULATIVE", "LENDING", "PASSIVE_INVESTMENT"} {
		out := testEvaluator().Evaluate(Input{
			LoanAmount:    decimal.RequireFromString("500000"),
			AnnualRevenue: revenue("8000000"),
			UseOfProceeds: use,
		})
		if out.Status != StatusIneligible {
			t.Fatalf("use=%s: status=%q want=%q", use, out.Status, StatusIneligible)
		}
	}
}

func TestEvaluate_RentalRealEstateNeedsReview(t *testing.T) {
	out := testEvaluator().Evaluate(Input{
		LoanAmount:    decimal.RequireFromString("500000"),
		AnnualRevenue: revenue("8000000"),
		UseOfProceeds: "RENTAL_REAL_ESTATE",
	})
	if out.Status != StatusPossible {
		t.Fatalf("status=%q want=%q", out.Status, StatusPossible)
	}
}

func TestEvaluate_UnknownRevenueDowngrades(t *testing.T) {
	out := testEvaluator().Evaluate(Input{
		LoanAmount:    decimal.RequireFromString("500000"),
		UseOfProceeds: "WORKING_CAPITAL",
	})
	if out.Status != StatusPossible {
		t.Fatalf("status=%q want=%q", out.Status, StatusPossible)
	}
	if len(out.Reasons) != 1 {
		t.Fatalf("reasons=%v", out.Reasons)
	}
}

func TestEvaluate_RevenueAboveSizeStandard(t *testing.T) {
	out := testEvaluator().Evaluate(Input{
		LoanAmount:    decimal.RequireFromString("500000"),
		AnnualRevenue: revenue("50000000"),
		UseOfProceeds: "WORKING_CAPITAL",
	})
	if out.Status != StatusIneligible {
		t.Fatalf("status=%q want=%q", out.Status, StatusIneligible)
	}
}
