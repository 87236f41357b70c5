package stress

import (
	"github.com/shopspring/decimal"

	"creditpipe/internal/snapshot"
)

// The transforms below copy their inputs; callers keep the originals intact.
// Undefined figures stay undefined: a haircut never invents a value.

func applyEBITDAHaircut(m snapshot.FinancialModel, haircut float64) snapshot.FinancialModel {
	out := cloneModel(m)
	factor := decimal.NewFromFloat(1 - haircut)
	for pi := range out.Periods {
		if out.Periods[pi].Figures.EBITDA != nil {
			v := out.Periods[pi].Figures.EBITDA.Mul(factor)
			out.Periods[pi].Figures.EBITDA = &v
		}
		if out.Periods[pi].Figures.NOI != nil {
			v := out.Periods[pi].Figures.NOI.Mul(factor)
			out.Periods[pi].Figures.NOI = &v
		}
	}
	return out
}

func applyRevenueHaircut(m snapshot.FinancialModel, haircut float64) snapshot.FinancialModel {
	out := cloneModel(m)
	factor := decimal.NewFromFloat(1 - haircut)
	for pi := range out.Periods {
		if out.Periods[pi].Figures.Revenue != nil {
			v := out.Periods[pi].Figures.Revenue.Mul(factor)
			out.Periods[pi].Figures.Revenue = &v
		}
	}
	return out
}

// applyRateShock returns nil when the model carries no instruments: there is
// nothing to shock, and the scenario reports the delta as undefined.
func applyRateShock(instruments []snapshot.Instrument, bps int) []snapshot.Instrument {
	if len(instruments) == 0 {
		return nil
	}
	out := make([]snapshot.Instrument, len(instruments))
	copy(out, instruments)
	shock := float64(bps) / 10000
	for i := range out {
		out[i].AnnualRate += shock
	}
	return out
}

func cloneModel(m snapshot.FinancialModel) snapshot.FinancialModel {
	out := m
	out.Periods = make([]snapshot.Period, len(m.Periods))
	copy(out.Periods, m.Periods)
	out.Instruments = make([]snapshot.Instrument, len(m.Instruments))
	copy(out.Instruments, m.Instruments)
	return out
}
