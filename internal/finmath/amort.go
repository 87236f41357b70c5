package finmath

import (
	"github.com/shopspring/decimal"
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// MonthlyPayment is the standard annuity payment for a fully amortizing loan.
// annualRate is a fraction (0.06 == 6%). Zero-rate loans amortize linearly.
func MonthlyPayment(principal decimal.Decimal, annualRate float64, amortMonths int) decimal.Decimal {
	if amortMonths <= 0 || principal.Sign() <= 0 {
		return decimal.Zero
	}
	months := decimal.NewFromInt(int64(amortMonths))
	if annualRate == 0 {
		return principal.DivRound(months, 10)
	}
	i := decimal.NewFromFloat(annualRate).Div(twelve)
	growth := one.Add(i).Pow(months)
	num := principal.Mul(i).Mul(growth)
	den := growth.Sub(one)
	return num.DivRound(den, 10)
}

// MonthlyInterestOnly is the monthly payment during an interest-only period.
func MonthlyInterestOnly(principal decimal.Decimal, annualRate float64) decimal.Decimal {
	if principal.Sign() <= 0 || annualRate <= 0 {
		return decimal.Zero
	}
	return principal.Mul(decimal.NewFromFloat(annualRate)).DivRound(twelve, 10)
}

// AnnualDebtService is twelve months of amortizing payments. Instruments with
// no amortization schedule are treated as perpetual interest-only.
func AnnualDebtService(principal decimal.Decimal, annualRate float64, amortMonths int) decimal.Decimal {
	if amortMonths > 0 {
		return MonthlyPayment(principal, annualRate, amortMonths).Mul(twelve)
	}
	return MonthlyInterestOnly(principal, annualRate).Mul(twelve)
}
