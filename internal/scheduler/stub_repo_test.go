package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

// stubRepo satisfies repository.Repository with in-memory state. Tests
// override the few hooks they care about; everything else is a no-op.
type stubRepo struct {
	facts         repository.VisibleFacts
	rentRollUnits int64

	insertJobFn   func(item *models.SpreadJob) error
	insertCalls   int
	insertedJobs  []models.SpreadJob
	activeJob     *models.SpreadJob
	findActiveFn  func() (*models.SpreadJob, error)
	updateCalls   int
	updatedID     uint64
	updatedTypes  []byte
	spreadResults []models.SpreadResult
	events        []models.SystemEvent
	ledgerEntries []models.PipelineLedgerEntry
}

func (r *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func (r *stubRepo) ListVisibleFacts(ctx context.Context, dealID, bankID string) ([]models.FinancialFact, error) {
	return nil, nil
}

func (r *stubRepo) GetVisibleFacts(ctx context.Context, dealID, bankID string) (repository.VisibleFacts, error) {
	return r.facts, nil
}

func (r *stubRepo) ListDebtInstruments(ctx context.Context, dealID, bankID string) ([]models.DebtInstrument, error) {
	return nil, nil
}

func (r *stubRepo) CountRentRollUnits(ctx context.Context, dealID, bankID string) (int64, error) {
	return r.rentRollUnits, nil
}

func (r *stubRepo) GetLoanRequest(ctx context.Context, dealID, bankID string) (*models.LoanRequest, error) {
	return nil, nil
}

func (r *stubRepo) GetBankOverlay(ctx context.Context, bankID, product string) (*models.BankOverlay, error) {
	return nil, nil
}

func (r *stubRepo) UpsertBankOverlay(ctx context.Context, item *models.BankOverlay) error { return nil }

func (r *stubRepo) InsertCreditSnapshot(ctx context.Context, item *models.CreditSnapshot) error {
	return nil
}

func (r *stubRepo) GetLatestCreditSnapshot(ctx context.Context, dealID, bankID string) (*models.CreditSnapshot, error) {
	return nil, nil
}

func (r *stubRepo) GetCreditSnapshotByID(ctx context.Context, id uint64) (*models.CreditSnapshot, error) {
	return nil, nil
}

func (r *stubRepo) UpsertIndexRate(ctx context.Context, item *models.IndexRate) error { return nil }

func (r *stubRepo) ListIndexRates(ctx context.Context) ([]models.IndexRate, error) { return nil, nil }

func (r *stubRepo) InsertSpreadJob(ctx context.Context, item *models.SpreadJob) error {
	r.insertCalls++
	if r.insertJobFn != nil {
		if err := r.insertJobFn(item); err != nil {
			return err
		}
	}
	item.ID = uint64(len(r.insertedJobs) + 1)
	r.insertedJobs = append(r.insertedJobs, *item)
	return nil
}

func (r *stubRepo) GetSpreadJobByID(ctx context.Context, id uint64) (*models.SpreadJob, error) {
	return nil, nil
}

func (r *stubRepo) FindActiveSpreadJob(ctx context.Context, dealID, bankID string) (*models.SpreadJob, error) {
	if r.findActiveFn != nil {
		return r.findActiveFn()
	}
	return r.activeJob, nil
}

func (r *stubRepo) UpdateSpreadJobRequest(ctx context.Context, id uint64, types []byte, meta []byte) error {
	r.updateCalls++
	r.updatedID = id
	r.updatedTypes = types
	return nil
}

func (r *stubRepo) ListDueSpreadJobs(ctx context.Context, now time.Time, limit int) ([]models.SpreadJob, error) {
	return nil, nil
}

func (r *stubRepo) ClaimSpreadJob(ctx context.Context, id uint64) (bool, error) { return false, nil }

func (r *stubRepo) FinishSpreadJob(ctx context.Context, id uint64, status string, lastErr *string) error {
	return nil
}

func (r *stubRepo) RescheduleSpreadJob(ctx context.Context, id uint64, attempts int, nextRunAt time.Time, lastErr *string) error {
	return nil
}

func (r *stubRepo) ListSpreadJobs(ctx context.Context, params repository.ListSpreadJobsParams) ([]models.SpreadJob, error) {
	return nil, nil
}

func (r *stubRepo) CountSpreadJobsByStatus(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}

func (r *stubRepo) UpsertSpreadResult(ctx context.Context, item *models.SpreadResult) error {
	r.spreadResults = append(r.spreadResults, *item)
	return nil
}

func (r *stubRepo) ListSpreadResults(ctx context.Context, dealID, bankID string) ([]models.SpreadResult, error) {
	return r.spreadResults, nil
}

func (r *stubRepo) ReplacePricingScenarios(ctx context.Context, dealID, bankID string, items []models.PricingScenario) error {
	return nil
}

func (r *stubRepo) ListPricingScenarios(ctx context.Context, dealID, bankID string) ([]models.PricingScenario, error) {
	return nil, nil
}

func (r *stubRepo) GetPricingScenarioByID(ctx context.Context, id uint64) (*models.PricingScenario, error) {
	return nil, nil
}

func (r *stubRepo) RecordPricingDecision(ctx context.Context, decision *models.PricingDecision, terms *models.PricingTerms, narratives *models.MemoNarratives) error {
	return nil
}

func (r *stubRepo) GetPricingDecision(ctx context.Context, dealID, bankID string) (*models.PricingDecision, error) {
	return nil, nil
}

func (r *stubRepo) GetPricingTermsByDecisionID(ctx context.Context, decisionID uint64) (*models.PricingTerms, error) {
	return nil, nil
}

func (r *stubRepo) GetLatestMemoNarratives(ctx context.Context, dealID, bankID string) (*models.MemoNarratives, error) {
	return nil, nil
}

func (r *stubRepo) InsertSystemEvent(ctx context.Context, item *models.SystemEvent) error {
	r.events = append(r.events, *item)
	return nil
}

func (r *stubRepo) InsertPipelineLedgerEntry(ctx context.Context, item *models.PipelineLedgerEntry) error {
	r.ledgerEntries = append(r.ledgerEntries, *item)
	return nil
}

func (r *stubRepo) ListSystemEvents(ctx context.Context, params repository.ListSystemEventsParams) ([]models.SystemEvent, error) {
	return r.events, nil
}
