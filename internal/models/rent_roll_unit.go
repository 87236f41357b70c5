package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentRollUnit backs the readiness gate's ancillary-table check for
// rent-roll spreads.
type RentRollUnit struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;index:idx_rent_roll_deal_bank,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;index:idx_rent_roll_deal_bank,priority:2"`

	UnitLabel   string           `gorm:"type:varchar(100);not null"`
	Tenant      string           `gorm:"type:varchar(200)"`
	MonthlyRent decimal.Decimal  `gorm:"type:numeric(30,10);not null"`
	SquareFeet  *decimal.Decimal `gorm:"type:numeric(20,2)"`
	LeaseEnd    *time.Time       `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (RentRollUnit) TableName() string {
	return "rent_roll_units"
}
