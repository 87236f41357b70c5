package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

// stubRepo embeds the interface so only the methods the loader touches need
// real bodies.
type stubRepo struct {
	repository.Repository
	facts       []models.FinancialFact
	instruments []models.DebtInstrument
}

func (r *stubRepo) ListVisibleFacts(ctx context.Context, dealID, bankID string) ([]models.FinancialFact, error) {
	return r.facts, nil
}

func (r *stubRepo) ListDebtInstruments(ctx context.Context, dealID, bankID string) ([]models.DebtInstrument, error) {
	return r.instruments, nil
}

func strPtr(s string) *string { return &s }

func decVal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fact(periodID, periodType, key, value string, end time.Time) models.FinancialFact {
	f := models.FinancialFact{
		DealID:     "deal-1",
		BankID:     "bank-1",
		FactType:   models.FactTypeIncomeStatement,
		FactKey:    key,
		PeriodType: periodType,
		Value:      decVal(value),
		Visible:    true,
	}
	if periodID != "" {
		f.PeriodID = strPtr(periodID)
	}
	if !end.IsZero() {
		f.PeriodEnd = &end
	}
	return f
}

func TestBuildFinancialModel_GroupsFactsByPeriod(t *testing.T) {
	end24 := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	end25 := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		facts: []models.FinancialFact{
			fact("FY2025", models.PeriodTypeAnnual, "revenue", "1200000", end25),
			fact("FY2025", models.PeriodTypeAnnual, "ebitda", "150000", end25),
			fact("FY2024", models.PeriodTypeAnnual, "revenue", "1000000", end24),
			fact("FY2025", models.PeriodTypeAnnual, "net_income", "90000", end25),
		},
		instruments: []models.DebtInstrument{
			{Name: "Term Loan A", Balance: decimal.RequireFromString("1000000"), AnnualRate: 0.06, AmortMonths: 300},
		},
	}
	p := &Pipeline{Repo: repo}

	m, err := p.BuildFinancialModel(context.Background(), "deal-1", "bank-1")
	if err != nil {
		t.Fatalf("BuildFinancialModel: %v", err)
	}
	if len(m.Periods) != 2 {
		t.Fatalf("periods=%d want=2", len(m.Periods))
	}
	if m.Periods[0].ID != "FY2024" || m.Periods[1].ID != "FY2025" {
		t.Fatalf("period order=%s,%s", m.Periods[0].ID, m.Periods[1].ID)
	}
	fy25 := m.Periods[1]
	if fy25.Figures.Revenue == nil || !fy25.Figures.Revenue.Equal(decimal.RequireFromString("1200000")) {
		t.Fatalf("revenue=%v", fy25.Figures.Revenue)
	}
	if fy25.Figures.EBITDA == nil || !fy25.Figures.EBITDA.Equal(decimal.RequireFromString("150000")) {
		t.Fatalf("ebitda=%v", fy25.Figures.EBITDA)
	}
	if fy25.Figures.NetIncome == nil || !fy25.Figures.NetIncome.Equal(decimal.RequireFromString("90000")) {
		t.Fatalf("net income=%v", fy25.Figures.NetIncome)
	}
	if !fy25.End.Equal(end25) {
		t.Fatalf("period end=%v want=%v", fy25.End, end25)
	}
	if len(m.Instruments) != 1 || m.Instruments[0].Name != "Term Loan A" {
		t.Fatalf("instruments=%v", m.Instruments)
	}
	if m.Instruments[0].AmortMonths != 300 {
		t.Fatalf("amort=%d want=300", m.Instruments[0].AmortMonths)
	}
}

func TestBuildFinancialModel_SkipsUnanchoredFacts(t *testing.T) {
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	noValue := fact("FY2025", models.PeriodTypeAnnual, "ebitda", "1", end)
	noValue.Value = nil
	repo := &stubRepo{
		facts: []models.FinancialFact{
			fact("", models.PeriodTypeAnnual, "revenue", "1200000", end),
			noValue,
			fact("FY2025", models.PeriodTypeAnnual, "revenue", "1200000", end),
		},
	}
	p := &Pipeline{Repo: repo}

	m, err := p.BuildFinancialModel(context.Background(), "deal-1", "bank-1")
	if err != nil {
		t.Fatalf("BuildFinancialModel: %v", err)
	}
	if len(m.Periods) != 1 {
		t.Fatalf("periods=%d want=1", len(m.Periods))
	}
	if m.Periods[0].Figures.EBITDA != nil {
		t.Fatal("nil-valued fact assigned a figure")
	}
	if m.Periods[0].Figures.Revenue == nil {
		t.Fatal("anchored revenue fact dropped")
	}
}

func TestBuildFinancialModel_UnknownFactKeyIgnored(t *testing.T) {
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		facts: []models.FinancialFact{
			fact("FY2025", models.PeriodTypeAnnual, "revenue", "1200000", end),
			fact("FY2025", models.PeriodTypeAnnual, "officer_compensation", "250000", end),
		},
	}
	p := &Pipeline{Repo: repo}

	m, err := p.BuildFinancialModel(context.Background(), "deal-1", "bank-1")
	if err != nil {
		t.Fatalf("BuildFinancialModel: %v", err)
	}
	fig := m.Periods[0].Figures
	if fig.Revenue == nil {
		t.Fatal("revenue dropped")
	}
	if fig.EBITDA != nil || fig.NOI != nil || fig.TotalDebt != nil {
		t.Fatalf("unknown key leaked into figures: %+v", fig)
	}
}
