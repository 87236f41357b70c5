package models

import (
	"time"

	"gorm.io/datatypes"
)

// SpreadJob is the idempotent unit of recomputation work per (deal, bank).
// A partial unique index (see db.AutoMigrate) guarantees at most one row in
// an active status per pair; concurrent enqueuers merge into the winner.
type SpreadJob struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;index:idx_spread_jobs_deal_bank,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;index:idx_spread_jobs_deal_bank,priority:2"`

	RequestedSpreadTypes datatypes.JSON `gorm:"type:jsonb;not null"`

	Status    string    `gorm:"type:varchar(20);not null;index;default:'QUEUED'"`
	NextRunAt time.Time `gorm:"type:timestamptz;not null;index"`

	Attempts  int            `gorm:"not null;default:0"`
	LastError *string        `gorm:"type:text"`
	Meta      datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SpreadJob) TableName() string {
	return "spread_jobs"
}

const (
	JobStatusQueued    = "QUEUED"
	JobStatusRunning   = "RUNNING"
	JobStatusSucceeded = "SUCCEEDED"
	JobStatusFailed    = "FAILED"
)
