package models

import (
	"time"

	"gorm.io/datatypes"
)

// SystemEvent is the audit/diagnostic event row. Writes are fire-and-forget;
// a failed write never blocks the pipeline.
type SystemEvent struct {
	ID     uint64  `gorm:"primaryKey;autoIncrement"`
	DealID *string `gorm:"type:varchar(100);index"`
	BankID *string `gorm:"type:varchar(100);index"`

	EventType string         `gorm:"type:varchar(50);not null;index"`
	Severity  string         `gorm:"type:varchar(10);not null;default:'INFO'"`
	Message   string         `gorm:"type:text"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (SystemEvent) TableName() string {
	return "system_events"
}

const (
	EventSeverityInfo  = "INFO"
	EventSeverityWarn  = "WARN"
	EventSeverityError = "ERROR"
)
