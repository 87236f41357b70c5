package snapshot

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialModel is the normalized in-memory input to the builder: candidate
// financial periods plus the deal's debt schedule. Stress transforms copy it;
// nothing here is ever mutated in place.
type FinancialModel struct {
	DealID      string
	BankID      string
	Periods     []Period
	Instruments []Instrument
}

type Period struct {
	ID      string
	End     time.Time
	Type    string
	Figures Figures
}

// Figures holds the period's money facts. Nil means the fact was never
// extracted; derived ratios stay nil rather than guessing.
type Figures struct {
	Revenue            *decimal.Decimal
	EBITDA             *decimal.Decimal
	NetIncome          *decimal.Decimal
	CurrentAssets      *decimal.Decimal
	CurrentLiabilities *decimal.Decimal
	TotalDebt          *decimal.Decimal
	TotalAssets        *decimal.Decimal
	NOI                *decimal.Decimal
}

type Instrument struct {
	Name               string
	Balance            decimal.Decimal
	AnnualRate         float64
	AmortMonths        int
	InterestOnlyMonths int
}

// Snapshot is the computed credit snapshot for the selected period.
// Immutable once built; recomputation produces a new value.
type Snapshot struct {
	DealID      string
	BankID      string
	Period      PeriodInfo
	DebtService DebtService
	Ratios      Ratios

	// Money figures pricing needs downstream; nil when the period lacks them.
	CashFlow *decimal.Decimal
	NOI      *decimal.Decimal
}

type PeriodInfo struct {
	PeriodID             string
	PeriodEnd            time.Time
	Type                 string
	SelectionDiagnostics []string
}

type DebtService struct {
	Total     decimal.Decimal
	Breakdown []InstrumentService
	Source    string
}

type InstrumentService struct {
	Name   string          `json:"name"`
	Annual decimal.Decimal `json:"annual"`
}

const (
	DebtServiceSourceSchedule = "DEBT_SCHEDULE"
	DebtServiceSourceNone     = "NONE"
)

type Ratios struct {
	DSCR         *float64
	Leverage     *float64
	CurrentRatio *float64
	EBITDAMargin *float64
	NetMargin    *float64
	DebtToEBITDA *float64
}
