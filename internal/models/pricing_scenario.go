package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PricingScenario is one priced structure for a deal. Regeneration replaces
// the full set for the deal inside a single transaction; it never appends.
type PricingScenario struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_pricing_scenarios,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_pricing_scenarios,priority:2"`

	ScenarioKey string `gorm:"type:varchar(30);not null;uniqueIndex:uq_pricing_scenarios,priority:3"`
	ProductType string `gorm:"type:varchar(50);not null"`
	SnapshotID  uint64 `gorm:"not null;index"`

	// Structure
	IndexCode          string          `gorm:"type:varchar(30);not null"`
	BaseRatePct        float64         `gorm:"not null"`
	SpreadBps          int             `gorm:"not null"`
	AllInRatePct       float64         `gorm:"not null"`
	LoanAmount         decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	TermMonths         int             `gorm:"not null"`
	AmortMonths        int             `gorm:"not null"`
	InterestOnlyMonths int             `gorm:"not null;default:0"`
	Fees               datatypes.JSON  `gorm:"type:jsonb"`
	Prepayment         string          `gorm:"type:varchar(100)"`
	Guaranty           string          `gorm:"type:varchar(100)"`

	// Metrics
	DSCR              *float64        `gorm:""`
	DSCRStressed      *float64        `gorm:""`
	LTVPct            *float64        `gorm:""`
	DebtYieldPct      *float64        `gorm:""`
	AnnualDebtService decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	MonthlyPI         decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	MonthlyIO         decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	PolicyOverlays datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (PricingScenario) TableName() string {
	return "pricing_scenarios"
}

const (
	ScenarioBase         = "BASE"
	ScenarioConservative = "CONSERVATIVE"
	ScenarioStretch      = "STRETCH"
	ScenarioSBA7a        = "SBA_7A"
)
