package models

import (
	"time"

	"gorm.io/datatypes"
)

// SpreadResult is the per-type placeholder row written at enqueue time so
// consumers can observe pending state before the worker runs. The worker
// flips it to READY or FAILED with the computed payload.
type SpreadResult struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_spread_results,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_spread_results,priority:2"`

	SpreadType string `gorm:"type:varchar(50);not null;uniqueIndex:uq_spread_results,priority:3"`
	Status     string `gorm:"type:varchar(20);not null;index;default:'PENDING'"`

	Payload datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SpreadResult) TableName() string {
	return "spread_results"
}

const (
	SpreadResultPending = "PENDING"
	SpreadResultReady   = "READY"
	SpreadResultFailed  = "FAILED"
)
