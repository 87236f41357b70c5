package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanRequest struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	DealID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_loan_request_deal_bank,priority:1"`
	BankID string `gorm:"type:varchar(100);not null;uniqueIndex:uq_loan_request_deal_bank,priority:2"`

	Amount          decimal.Decimal  `gorm:"type:numeric(30,10);not null"`
	ProductType     string           `gorm:"type:varchar(50);not null"`
	CollateralValue *decimal.Decimal `gorm:"type:numeric(30,10)"`
	UseOfProceeds   string           `gorm:"type:varchar(100)"`
	AnnualRevenue   *decimal.Decimal `gorm:"type:numeric(30,10)"`

	// Requested structure; zero means "use bank defaults".
	TermMonths  int `gorm:"not null;default:0"`
	AmortMonths int `gorm:"not null;default:0"`

	IsSBA bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (LoanRequest) TableName() string {
	return "loan_requests"
}

const (
	ProductConventionalTerm = "CONVENTIONAL_TERM"
	ProductCREMortgage      = "CRE_MORTGAGE"
	ProductSBA7a            = "SBA_7A"
)
