package models

import (
	"time"
)

// MemoNarratives is the canonical narrative set derived from a recorded
// decision. Keyed by a stable hash of the decision identity so retried
// recordings upsert instead of duplicating.
type MemoNarratives struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_memo_narratives,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_memo_narratives,priority:2"`

	InputHash  string `gorm:"type:varchar(64);not null;uniqueIndex:uq_memo_narratives,priority:3"`
	DecisionID uint64 `gorm:"not null;index"`

	Structure        string `gorm:"type:text"`
	Rationale        string `gorm:"type:text"`
	RisksMitigants   string `gorm:"type:text"`
	CoverageMetrics  string `gorm:"type:text"`
	CashFlowImpact   string `gorm:"type:text"`
	PolicyCompliance string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (MemoNarratives) TableName() string {
	return "canonical_memo_narratives"
}
