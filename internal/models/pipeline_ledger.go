package models

import (
	"time"

	"gorm.io/datatypes"
)

// PipelineLedgerEntry records stage transitions for a deal's pipeline run
// (enqueue, snapshot, policy, stress, pricing, decision, cleared).
type PipelineLedgerEntry struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;index:idx_ledger_deal_bank,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;index:idx_ledger_deal_bank,priority:2"`

	Stage  string         `gorm:"type:varchar(40);not null;index"`
	Status string         `gorm:"type:varchar(20);not null"`
	Detail datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (PipelineLedgerEntry) TableName() string {
	return "pipeline_ledger"
}
