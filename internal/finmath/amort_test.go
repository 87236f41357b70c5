package finmath

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMonthlyPayment_StandardAnnuity(t *testing.T) {
	// $1,000,000 at 6% over 300 months is the textbook $6,443.01/mo.
	got := MonthlyPayment(decimal.NewFromInt(1_000_000), 0.06, 300)
	want := decimal.RequireFromString("6443.01")
	if got.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.01")) {
		t.Fatalf("payment=%s want=%s +/- 0.01", got.StringFixed(2), want.String())
	}
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	got := MonthlyPayment(decimal.NewFromInt(120_000), 0, 120)
	want := decimal.NewFromInt(1000)
	if !got.Equal(want) {
		t.Fatalf("payment=%s want=%s", got.String(), want.String())
	}
}

func TestMonthlyPayment_DegenerateInputs(t *testing.T) {
	if got := MonthlyPayment(decimal.NewFromInt(100_000), 0.05, 0); !got.IsZero() {
		t.Fatalf("zero amort months: payment=%s want=0", got.String())
	}
	if got := MonthlyPayment(decimal.Zero, 0.05, 120); !got.IsZero() {
		t.Fatalf("zero principal: payment=%s want=0", got.String())
	}
}

func TestMonthlyInterestOnly(t *testing.T) {
	got := MonthlyInterestOnly(decimal.NewFromInt(600_000), 0.05)
	want := decimal.NewFromInt(2500)
	if !got.Equal(want) {
		t.Fatalf("io payment=%s want=%s", got.String(), want.String())
	}
}

func TestAnnualDebtService_PerpetualIOWithoutSchedule(t *testing.T) {
	got := AnnualDebtService(decimal.NewFromInt(600_000), 0.05, 0)
	want := decimal.NewFromInt(30_000)
	if !got.Equal(want) {
		t.Fatalf("annual=%s want=%s", got.String(), want.String())
	}
}

func TestAnnualDebtService_AmortizingIsTwelvePayments(t *testing.T) {
	monthly := MonthlyPayment(decimal.NewFromInt(1_000_000), 0.06, 300)
	annual := AnnualDebtService(decimal.NewFromInt(1_000_000), 0.06, 300)
	if !annual.Equal(monthly.Mul(decimal.NewFromInt(12))) {
		t.Fatalf("annual=%s want=%s", annual.String(), monthly.Mul(decimal.NewFromInt(12)).String())
	}
}
