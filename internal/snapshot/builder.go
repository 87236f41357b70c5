package snapshot

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"creditpipe/internal/finmath"
)

// Build selects the best financial period, aggregates debt service from the
// instrument schedule, and derives the ratio set. Returns nil when the model
// has no usable period: callers treat that as "cannot compute", not an error.
func Build(m FinancialModel) *Snapshot {
	period, diags := selectPeriod(m.Periods)
	if period == nil {
		return nil
	}

	ds := buildDebtService(m.Instruments)

	return &Snapshot{
		DealID: m.DealID,
		BankID: m.BankID,
		Period: PeriodInfo{
			PeriodID:             period.ID,
			PeriodEnd:            period.End,
			Type:                 period.Type,
			SelectionDiagnostics: diags,
		},
		DebtService: ds,
		Ratios:      deriveRatios(period.Figures, ds),
		CashFlow:    period.Figures.EBITDA,
		NOI:         period.Figures.NOI,
	}
}

// selectPeriod prefers the most recent annual period, then TTM, then interim.
func selectPeriod(periods []Period) (*Period, []string) {
	if len(periods) == 0 {
		return nil, []string{"no periods available"}
	}
	sorted := make([]Period, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].End.After(sorted[j].End)
	})

	diags := []string{fmt.Sprintf("%d candidate periods", len(sorted))}
	for _, pt := range []string{"ANNUAL", "TTM", "INTERIM"} {
		for i := range sorted {
			if sorted[i].Type == pt {
				diags = append(diags, fmt.Sprintf("selected %s period %s ending %s",
					pt, sorted[i].ID, sorted[i].End.Format("2006-01-02")))
				return &sorted[i], diags
			}
		}
		diags = append(diags, fmt.Sprintf("no %s period", pt))
	}
	// Unknown period types never qualify.
	diags = append(diags, "no usable period type")
	return nil, diags
}

func buildDebtService(instruments []Instrument) DebtService {
	if len(instruments) == 0 {
		return DebtService{Total: decimal.Zero, Source: DebtServiceSourceNone}
	}
	total := decimal.Zero
	breakdown := make([]InstrumentService, 0, len(instruments))
	for _, inst := range instruments {
		annual := finmath.AnnualDebtService(inst.Balance, inst.AnnualRate, inst.AmortMonths)
		total = total.Add(annual)
		breakdown = append(breakdown, InstrumentService{Name: inst.Name, Annual: annual})
	}
	return DebtService{
		Total:     total,
		Breakdown: breakdown,
		Source:    DebtServiceSourceSchedule,
	}
}

func deriveRatios(f Figures, ds DebtService) Ratios {
	var r Ratios
	if f.EBITDA != nil && ds.Source != DebtServiceSourceNone && ds.Total.Sign() > 0 {
		r.DSCR = ratio(*f.EBITDA, ds.Total)
	}
	if f.TotalDebt != nil && f.TotalAssets != nil {
		r.Leverage = ratio(*f.TotalDebt, *f.TotalAssets)
	}
	if f.CurrentAssets != nil && f.CurrentLiabilities != nil {
		r.CurrentRatio = ratio(*f.CurrentAssets, *f.CurrentLiabilities)
	}
	if f.EBITDA != nil && f.Revenue != nil {
		r.EBITDAMargin = ratio(*f.EBITDA, *f.Revenue)
	}
	if f.NetIncome != nil && f.Revenue != nil {
		r.NetMargin = ratio(*f.NetIncome, *f.Revenue)
	}
	if f.TotalDebt != nil && f.EBITDA != nil {
		r.DebtToEBITDA = ratio(*f.TotalDebt, *f.EBITDA)
	}
	return r
}

func ratio(num, den decimal.Decimal) *float64 {
	if den.Sign() == 0 {
		return nil
	}
	v := num.DivRound(den, 10).InexactFloat64()
	return &v
}
