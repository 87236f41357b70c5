package models

import (
	"time"

	"gorm.io/datatypes"
)

// BankOverlay is the bank-specific policy layer: metric thresholds, severity
// cutoffs, and pricing knobs. One row per (bank, product); product "" is the
// bank-wide default.
type BankOverlay struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	BankID  string `gorm:"type:varchar(100);not null;uniqueIndex:uq_overlay_bank_product,priority:1"`
	Product string `gorm:"type:varchar(50);not null;default:'';uniqueIndex:uq_overlay_bank_product,priority:2"`

	MinDSCR         *float64 `gorm:""`
	MaxLeverage     *float64 `gorm:""`
	MinCurrentRatio *float64 `gorm:""`
	MaxLTV          *float64 `gorm:""`
	MinDebtYieldPct *float64 `gorm:""`
	MaxDebtToEBITDA *float64 `gorm:""`

	// Severity classification cutoffs on relative deviation.
	ModerateDeviationCutoff float64 `gorm:"not null;default:0.10"`
	SevereDeviationCutoff   float64 `gorm:"not null;default:0.25"`

	BaseSpreadBps        int     `gorm:"not null;default:0"`
	GuarantyThresholdUSD float64 `gorm:"not null;default:0"`

	Extra datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (BankOverlay) TableName() string {
	return "bank_overlays"
}
