package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingTerms is the immutable flattened term sheet spawned by a decision.
type PricingTerms struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	DecisionID uint64 `gorm:"not null;uniqueIndex"`
	DealID     string `gorm:"type:varchar(100);not null;index"`
	BankID     string `gorm:"type:varchar(100);not null"`

	ScenarioKey        string          `gorm:"type:varchar(30);not null"`
	ProductType        string          `gorm:"type:varchar(50);not null"`
	IndexCode          string          `gorm:"type:varchar(30);not null"`
	BaseRatePct        float64         `gorm:"not null"`
	SpreadBps          int             `gorm:"not null"`
	AllInRatePct       float64         `gorm:"not null"`
	LoanAmount         decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	TermMonths         int             `gorm:"not null"`
	AmortMonths        int             `gorm:"not null"`
	InterestOnlyMonths int             `gorm:"not null;default:0"`
	MonthlyPI          decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	AnnualDebtService  decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	Prepayment         string          `gorm:"type:varchar(100)"`
	Guaranty           string          `gorm:"type:varchar(100)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (PricingTerms) TableName() string {
	return "pricing_terms"
}
