package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// FinancialFact is a normalized numeric fact produced upstream (extraction is
// out of scope here); the pipeline only reads facts that are visible.
type FinancialFact struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;index:idx_facts_deal_bank,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;index:idx_facts_deal_bank,priority:2"`

	FactType string `gorm:"type:varchar(50);not null;index"`
	FactKey  string `gorm:"type:varchar(100);not null;index"`

	PeriodID   *string    `gorm:"type:varchar(100);index"`
	PeriodEnd  *time.Time `gorm:"type:timestamptz;index"`
	PeriodType string     `gorm:"type:varchar(20)"`

	Value   *decimal.Decimal `gorm:"type:numeric(30,10)"`
	Payload datatypes.JSON   `gorm:"type:jsonb"`

	Visible   bool      `gorm:"not null;default:true;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (FinancialFact) TableName() string {
	return "financial_facts"
}

// Fact types the readiness gate and snapshot builder know about.
const (
	FactTypeIncomeStatement = "INCOME_STATEMENT"
	FactTypeBalanceSheet    = "BALANCE_SHEET"
	FactTypeDebtSchedule    = "DEBT_SCHEDULE"
	FactTypeTaxReturn       = "TAX_RETURN"
	FactTypeRentRoll        = "RENT_ROLL"
)

// Period types, in ascending selection preference.
const (
	PeriodTypeInterim = "INTERIM"
	PeriodTypeTTM     = "TTM"
	PeriodTypeAnnual  = "ANNUAL"
)
