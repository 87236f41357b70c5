package snapshot

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuild_PrefersAnnualOverNewerInterim(t *testing.T) {
	m := FinancialModel{
		DealID: "d1",
		BankID: "b1",
		Periods: []Period{
			{ID: "q2-2026", End: day(2026, 6, 30), Type: "INTERIM", Figures: Figures{EBITDA: dec("100")}},
			{ID: "fy-2025", End: day(2025, 12, 31), Type: "ANNUAL", Figures: Figures{EBITDA: dec("400")}},
			{ID: "ttm-2026", End: day(2026, 3, 31), Type: "TTM", Figures: Figures{EBITDA: dec("410")}},
		},
	}
	snap := Build(m)
	if snap == nil {
		t.Fatal("snapshot=nil want selected annual period")
	}
	if snap.Period.PeriodID != "fy-2025" {
		t.Fatalf("period=%s want=fy-2025", snap.Period.PeriodID)
	}
	if len(snap.Period.SelectionDiagnostics) == 0 {
		t.Fatal("selection diagnostics empty")
	}
}

func TestBuild_FallsBackToTTMThenInterim(t *testing.T) {
	m := FinancialModel{
		Periods: []Period{
			{ID: "q1", End: day(2026, 3, 31), Type: "INTERIM"},
			{ID: "ttm", End: day(2026, 1, 31), Type: "TTM"},
		},
	}
	snap := Build(m)
	if snap == nil || snap.Period.PeriodID != "ttm" {
		t.Fatalf("snapshot=%+v want ttm selected", snap)
	}

	m.Periods = m.Periods[:1]
	snap = Build(m)
	if snap == nil || snap.Period.PeriodID != "q1" {
		t.Fatalf("snapshot=%+v want interim selected", snap)
	}
}

func TestBuild_NoUsablePeriod(t *testing.T) {
	if snap := Build(FinancialModel{}); snap != nil {
		t.Fatalf("snapshot=%+v want nil for empty model", snap)
	}
	m := FinancialModel{Periods: []Period{{ID: "x", End: day(2026, 1, 1), Type: "FORECAST"}}}
	if snap := Build(m); snap != nil {
		t.Fatalf("snapshot=%+v want nil for unknown period type", snap)
	}
}

func TestBuild_DebtServiceFromSchedule(t *testing.T) {
	m := FinancialModel{
		Periods: []Period{
			{ID: "fy", End: day(2025, 12, 31), Type: "ANNUAL", Figures: Figures{EBITDA: dec("500000")}},
		},
		Instruments: []Instrument{
			{Name: "term loan", Balance: decimal.NewFromInt(1_000_000), AnnualRate: 0.06, AmortMonths: 300},
			{Name: "revolver", Balance: decimal.NewFromInt(600_000), AnnualRate: 0.05},
		},
	}
	snap := Build(m)
	if snap == nil {
		t.Fatal("snapshot=nil")
	}
	if snap.DebtService.Source != DebtServiceSourceSchedule {
		t.Fatalf("source=%s want=%s", snap.DebtService.Source, DebtServiceSourceSchedule)
	}
	if len(snap.DebtService.Breakdown) != 2 {
		t.Fatalf("breakdown len=%d want=2", len(snap.DebtService.Breakdown))
	}
	// 12 * 6443.01 + 30000
	want := decimal.RequireFromString("107316.14")
	if snap.DebtService.Total.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.20")) {
		t.Fatalf("total=%s want~%s", snap.DebtService.Total.StringFixed(2), want.String())
	}
	if snap.Ratios.DSCR == nil {
		t.Fatal("dscr=nil want derived")
	}
	if *snap.Ratios.DSCR < 4.6 || *snap.Ratios.DSCR > 4.7 {
		t.Fatalf("dscr=%f want ~4.66", *snap.Ratios.DSCR)
	}
}

func TestBuild_NoInstrumentsMeansNoDSCR(t *testing.T) {
	m := FinancialModel{
		Periods: []Period{
			{ID: "fy", End: day(2025, 12, 31), Type: "ANNUAL", Figures: Figures{EBITDA: dec("500000")}},
		},
	}
	snap := Build(m)
	if snap == nil {
		t.Fatal("snapshot=nil")
	}
	if snap.DebtService.Source != DebtServiceSourceNone {
		t.Fatalf("source=%s want=%s", snap.DebtService.Source, DebtServiceSourceNone)
	}
	if snap.Ratios.DSCR != nil {
		t.Fatalf("dscr=%v want nil without debt service", *snap.Ratios.DSCR)
	}
}

func TestBuild_NilFiguresLeaveRatiosNil(t *testing.T) {
	m := FinancialModel{
		Periods: []Period{
			{ID: "fy", End: day(2025, 12, 31), Type: "ANNUAL", Figures: Figures{
				Revenue: dec("1000"),
				EBITDA:  dec("200"),
			}},
		},
	}
	snap := Build(m)
	if snap == nil {
		t.Fatal("snapshot=nil")
	}
	if snap.Ratios.EBITDAMargin == nil || *snap.Ratios.EBITDAMargin != 0.2 {
		t.Fatalf("ebitda margin=%v want=0.2", snap.Ratios.EBITDAMargin)
	}
	if snap.Ratios.Leverage != nil {
		t.Fatalf("leverage=%v want nil without balance sheet", *snap.Ratios.Leverage)
	}
	if snap.Ratios.CurrentRatio != nil {
		t.Fatal("current ratio set without balance sheet figures")
	}
}

func TestBuild_ZeroDenominatorSkipsRatio(t *testing.T) {
	m := FinancialModel{
		Periods: []Period{
			{ID: "fy", End: day(2025, 12, 31), Type: "ANNUAL", Figures: Figures{
				Revenue: dec("0"),
				EBITDA:  dec("200"),
			}},
		},
	}
	snap := Build(m)
	if snap == nil {
		t.Fatal("snapshot=nil")
	}
	if snap.Ratios.EBITDAMargin != nil {
		t.Fatalf("margin=%v want nil on zero revenue", *snap.Ratios.EBITDAMargin)
	}
}
