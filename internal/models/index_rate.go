package models

import (
	"time"
)

// IndexRate is the cached latest observation per rate index. Refreshed by
// the REST poller and the websocket stream; the pricing engine reads the
// cache and only falls back to a live fetch when it is stale.
type IndexRate struct {
	Code    string    `gorm:"type:varchar(30);primaryKey"`
	RatePct float64   `gorm:"not null"`
	AsOf    time.Time `gorm:"type:timestamptz;not null"`
	Source  string    `gorm:"type:varchar(50)"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (IndexRate) TableName() string {
	return "index_rates"
}
