package policy

import (
	"creditpipe/internal/config"
	"creditpipe/internal/models"
)

// Overlay is the resolved policy configuration the engine evaluates against:
// bank-stored thresholds with config defaults filling the gaps. All numbers
// here are policy data sourced from the overlay row or the seed config.
type Overlay struct {
	MinDSCR         *float64
	MaxLeverage     *float64
	MinCurrentRatio *float64
	MaxLTV          *float64
	MinDebtYieldPct *float64
	MaxDebtToEBITDA *float64

	ModerateDeviationCutoff float64
	SevereDeviationCutoff   float64

	BaseSpreadBps        int
	GuarantyThresholdUSD float64
}

// ResolveOverlay layers a stored bank overlay over the configured defaults.
// row may be nil (bank has no stored overlay yet).
func ResolveOverlay(row *models.BankOverlay, cfg config.PolicyConfig) Overlay {
	ov := Overlay{
		MinDSCR:                 f64ptr(cfg.DefaultMinDSCR),
		MaxLeverage:             f64ptr(cfg.DefaultMaxLeverage),
		MinCurrentRatio:         f64ptr(cfg.DefaultMinCurrentRatio),
		MaxLTV:                  f64ptr(cfg.DefaultMaxLTV),
		MinDebtYieldPct:         f64ptr(cfg.DefaultMinDebtYieldPct),
		MaxDebtToEBITDA:         f64ptr(cfg.DefaultMaxDebtToEBITDA),
		ModerateDeviationCutoff: cfg.ModerateDeviationCutoff,
		SevereDeviationCutoff:   cfg.SevereDeviationCutoff,
		BaseSpreadBps:           cfg.DefaultBaseSpreadBps,
		GuarantyThresholdUSD:    cfg.DefaultGuarantyThreshold,
	}
	if row == nil {
		return ov
	}
	if row.MinDSCR != nil {
		ov.MinDSCR = row.MinDSCR
	}
	if row.MaxLeverage != nil {
		ov.MaxLeverage = row.MaxLeverage
	}
	if row.MinCurrentRatio != nil {
		ov.MinCurrentRatio = row.MinCurrentRatio
	}
	if row.MaxLTV != nil {
		ov.MaxLTV = row.MaxLTV
	}
	if row.MinDebtYieldPct != nil {
		ov.MinDebtYieldPct = row.MinDebtYieldPct
	}
	if row.MaxDebtToEBITDA != nil {
		ov.MaxDebtToEBITDA = row.MaxDebtToEBITDA
	}
	if row.ModerateDeviationCutoff > 0 {
		ov.ModerateDeviationCutoff = row.ModerateDeviationCutoff
	}
	if row.SevereDeviationCutoff > 0 {
		ov.SevereDeviationCutoff = row.SevereDeviationCutoff
	}
	if row.BaseSpreadBps > 0 {
		ov.BaseSpreadBps = row.BaseSpreadBps
	}
	if row.GuarantyThresholdUSD > 0 {
		ov.GuarantyThresholdUSD = row.GuarantyThresholdUSD
	}
	return ov
}

func f64ptr(v float64) *float64 {
	return &v
}
