package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"creditpipe/internal/models"
)

// VisibleFacts summarizes the facts currently visible for a deal, shaped for
// the readiness gate.
type VisibleFacts struct {
	ByFactType map[string]int
	Total      int
}

type ListSpreadJobsParams struct {
	DealID *string
	BankID *string
	Status *string
	Limit  int
	Offset int
}

type ListSystemEventsParams struct {
	DealID    *string
	BankID    *string
	EventType *string
	Severity  *string
	Since     *time.Time
	Limit     int
	Offset    int
}

type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Facts & collateral inputs
	ListVisibleFacts(ctx context.Context, dealID, bankID string) ([]models.FinancialFact, error)
	GetVisibleFacts(ctx context.Context, dealID, bankID string) (VisibleFacts, error)
	ListDebtInstruments(ctx context.Context, dealID, bankID string) ([]models.DebtInstrument, error)
	CountRentRollUnits(ctx context.Context, dealID, bankID string) (int64, error)
	GetLoanRequest(ctx context.Context, dealID, bankID string) (*models.LoanRequest, error)
	GetBankOverlay(ctx context.Context, bankID, product string) (*models.BankOverlay, error)
	UpsertBankOverlay(ctx context.Context, item *models.BankOverlay) error

	// Snapshots
	InsertCreditSnapshot(ctx context.Context, item *models.CreditSnapshot) error
	GetLatestCreditSnapshot(ctx context.Context, dealID, bankID string) (*models.CreditSnapshot, error)
	GetCreditSnapshotByID(ctx context.Context, id uint64) (*models.CreditSnapshot, error)

	// Index rates
	UpsertIndexRate(ctx context.Context, item *models.IndexRate) error
	ListIndexRates(ctx context.Context) ([]models.IndexRate, error)

	// Spread jobs
	InsertSpreadJob(ctx context.Context, item *models.SpreadJob) error
	GetSpreadJobByID(ctx context.Context, id uint64) (*models.SpreadJob, error)
	FindActiveSpreadJob(ctx context.Context, dealID, bankID string) (*models.SpreadJob, error)
	UpdateSpreadJobRequest(ctx context.Context, id uint64, types []byte, meta []byte) error
	ListDueSpreadJobs(ctx context.Context, now time.Time, limit int) ([]models.SpreadJob, error)
	ClaimSpreadJob(ctx context.Context, id uint64) (bool, error)
	FinishSpreadJob(ctx context.Context, id uint64, status string, lastErr *string) error
	RescheduleSpreadJob(ctx context.Context, id uint64, attempts int, nextRunAt time.Time, lastErr *string) error
	ListSpreadJobs(ctx context.Context, params ListSpreadJobsParams) ([]models.SpreadJob, error)
	CountSpreadJobsByStatus(ctx context.Context) (map[string]int64, error)

	// Spread result placeholders
	UpsertSpreadResult(ctx context.Context, item *models.SpreadResult) error
	ListSpreadResults(ctx context.Context, dealID, bankID string) ([]models.SpreadResult, error)

	// Pricing
	ReplacePricingScenarios(ctx context.Context, dealID, bankID string, items []models.PricingScenario) error
	ListPricingScenarios(ctx context.Context, dealID, bankID string) ([]models.PricingScenario, error)
	GetPricingScenarioByID(ctx context.Context, id uint64) (*models.PricingScenario, error)
	RecordPricingDecision(ctx context.Context, decision *models.PricingDecision, terms *models.PricingTerms, narratives *models.MemoNarratives) error
	GetPricingDecision(ctx context.Context, dealID, bankID string) (*models.PricingDecision, error)
	GetPricingTermsByDecisionID(ctx context.Context, decisionID uint64) (*models.PricingTerms, error)
	GetLatestMemoNarratives(ctx context.Context, dealID, bankID string) (*models.MemoNarratives, error)

	// Observability
	InsertSystemEvent(ctx context.Context, item *models.SystemEvent) error
	InsertPipelineLedgerEntry(ctx context.Context, item *models.PipelineLedgerEntry) error
	ListSystemEvents(ctx context.Context, params ListSystemEventsParams) ([]models.SystemEvent, error)
}
