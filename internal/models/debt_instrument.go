package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtInstrument is an existing obligation on the deal's debt schedule.
// AnnualRate is a fraction (0.065 == 6.5%).
type DebtInstrument struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;index:idx_instruments_deal_bank,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;index:idx_instruments_deal_bank,priority:2"`

	Name string `gorm:"type:varchar(200);not null"`
	Kind string `gorm:"type:varchar(50)"`

	Balance    decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	AnnualRate float64         `gorm:"not null"`

	AmortMonths        int `gorm:"not null;default:0"`
	InterestOnlyMonths int `gorm:"not null;default:0"`

	MaturityDate *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;autoCreateTime"`
}

func (DebtInstrument) TableName() string {
	return "debt_instruments"
}
