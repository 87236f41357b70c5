package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CreditSnapshot is the persisted result of the snapshot builder for one
// financial period. Rows are immutable once written; recomputation inserts a
// new row and downstream consumers read the latest.
type CreditSnapshot struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;index:idx_snapshots_deal_bank,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;index:idx_snapshots_deal_bank,priority:2"`

	PeriodID             string         `gorm:"type:varchar(100);not null"`
	PeriodEnd            time.Time      `gorm:"type:timestamptz;not null"`
	PeriodType           string         `gorm:"type:varchar(20);not null"`
	SelectionDiagnostics datatypes.JSON `gorm:"type:jsonb"`

	DebtServiceTotal     decimal.Decimal `gorm:"type:numeric(30,10);not null"`
	DebtServiceBreakdown datatypes.JSON  `gorm:"type:jsonb"`
	DebtServiceSource    string          `gorm:"type:varchar(50)"`

	CashFlow *decimal.Decimal `gorm:"type:numeric(30,10)"`
	NOI      *decimal.Decimal `gorm:"type:numeric(30,10)"`

	DSCR         *float64 `gorm:""`
	Leverage     *float64 `gorm:""`
	CurrentRatio *float64 `gorm:""`
	EBITDAMargin *float64 `gorm:""`
	NetMargin    *float64 `gorm:""`
	DebtToEBITDA *float64 `gorm:""`

	Ratios datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (CreditSnapshot) TableName() string {
	return "credit_snapshots"
}
