package models

import (
	"time"

	"gorm.io/datatypes"
)

// PricingDecision is the single recorded decision for a deal. Recording
// deletes any prior decision first, so at most one row per (deal, bank)
// exists; the unique index backs that up.
type PricingDecision struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_pricing_decision_deal_bank,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_pricing_decision_deal_bank,priority:2"`

	ScenarioID uint64 `gorm:"not null;index"`
	SnapshotID uint64 `gorm:"not null"`

	Rationale string         `gorm:"type:text"`
	Risks     datatypes.JSON `gorm:"type:jsonb"`
	Mitigants datatypes.JSON `gorm:"type:jsonb"`
	DecidedBy string         `gorm:"type:varchar(200)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (PricingDecision) TableName() string {
	return "pricing_decisions"
}
