package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Facts & inputs ---------------------------------------------------------

func (s *Store) ListVisibleFacts(ctx context.Context, dealID, bankID string) ([]models.FinancialFact, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.FinancialFact
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ? AND visible", dealID, bankID).
		Order("period_end desc nulls last, fact_type asc, fact_key asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetVisibleFacts(ctx context.Context, dealID, bankID string) (repository.VisibleFacts, error) {
	out := repository.VisibleFacts{ByFactType: map[string]int{}}
	if s == nil || s.db == nil {
		return out, nil
	}
	var rows []struct {
		FactType string
		N        int
	}
	err := s.db.WithContext(ctx).
		Model(&models.FinancialFact{}).
		Select("fact_type, count(*) as n").
		Where("deal_id = ? AND bank_id = ? AND visible", dealID, bankID).
		Group("fact_type").
		Scan(&rows).Error
	if err != nil {
		return out, err
	}
	for _, r := range rows {
		out.ByFactType[r.FactType] = r.N
		out.Total += r.N
	}
	return out, nil
}

func (s *Store) ListDebtInstruments(ctx context.Context, dealID, bankID string) ([]models.DebtInstrument, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.DebtInstrument
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ?", dealID, bankID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountRentRollUnits(ctx context.Context, dealID, bankID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.RentRollUnit{}).
		Where("deal_id = ? AND bank_id = ?", dealID, bankID).
		Count(&n).Error
	return n, err
}

func (s *Store) GetLoanRequest(ctx context.Context, dealID, bankID string) (*models.LoanRequest, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.LoanRequest
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ?", dealID, bankID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetBankOverlay(ctx context.Context, bankID, product string) (*models.BankOverlay, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	// Product-specific overlay wins over the bank-wide default.
	var item models.BankOverlay
	err := s.db.WithContext(ctx).
		Where("bank_id = ? AND product IN ?", bankID, []string{product, ""}).
		Order("product desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertBankOverlay(ctx context.Context, item *models.BankOverlay) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "bank_id"}, {Name: "product"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"min_dscr",
			"max_leverage",
			"min_current_ratio",
			"max_ltv",
			"min_debt_yield_pct",
			"max_debt_to_ebitda",
			"moderate_deviation_cutoff",
			"severe_deviation_cutoff",
			"base_spread_bps",
			"guaranty_threshold_usd",
			"extra",
			"updated_at",
		}),
	}).Create(item).Error
}

// --- Snapshots --------------------------------------------------------------

func (s *Store) InsertCreditSnapshot(ctx context.Context, item *models.CreditSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetLatestCreditSnapshot(ctx context.Context, dealID, bankID string) (*models.CreditSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.CreditSnapshot
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ?", dealID, bankID).
		Order("created_at desc, id desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetCreditSnapshotByID(ctx context.Context, id uint64) (*models.CreditSnapshot, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.CreditSnapshot
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Index rates ------------------------------------------------------------

func (s *Store) UpsertIndexRate(ctx context.Context, item *models.IndexRate) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Code) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate_pct", "as_of", "source", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListIndexRates(ctx context.Context) ([]models.IndexRate, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.IndexRate
	if err := s.db.WithContext(ctx).Order("code asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Spread jobs ------------------------------------------------------------

func (s *Store) InsertSpreadJob(ctx context.Context, item *models.SpreadJob) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetSpreadJobByID(ctx context.Context, id uint64) (*models.SpreadJob, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.SpreadJob
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) FindActiveSpreadJob(ctx context.Context, dealID, bankID string) (*models.SpreadJob, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SpreadJob
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ? AND status IN ?", dealID, bankID,
			[]string{models.JobStatusQueued, models.JobStatusRunning}).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateSpreadJobRequest(ctx context.Context, id uint64, types []byte, meta []byte) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	updates := map[string]any{
		"requested_spread_types": types,
		"updated_at":             time.Now().UTC(),
	}
	if meta != nil {
		updates["meta"] = meta
	}
	return s.db.WithContext(ctx).
		Model(&models.SpreadJob{}).
		Where("id = ? AND status IN ?", id,
			[]string{models.JobStatusQueued, models.JobStatusRunning}).
		Updates(updates).Error
}

func (s *Store) ListDueSpreadJobs(ctx context.Context, now time.Time, limit int) ([]models.SpreadJob, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	var items []models.SpreadJob
	err := s.db.WithContext(ctx).
		Where("status = ? AND next_run_at <= ?", models.JobStatusQueued, now).
		Order("next_run_at asc").
		Limit(normalizeLimit(limit, 10)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ClaimSpreadJob flips QUEUED to RUNNING; the guarded update makes claiming
// safe across concurrent workers.
func (s *Store) ClaimSpreadJob(ctx context.Context, id uint64) (bool, error) {
	if s == nil || s.db == nil || id == 0 {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.SpreadJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusQueued).
		Updates(map[string]any{
			"status":     models.JobStatusRunning,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) FinishSpreadJob(ctx context.Context, id uint64, status string, lastErr *string) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.SpreadJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"last_error": lastErr,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (s *Store) RescheduleSpreadJob(ctx context.Context, id uint64, attempts int, nextRunAt time.Time, lastErr *string) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.SpreadJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      models.JobStatusQueued,
			"attempts":    attempts,
			"next_run_at": nextRunAt,
			"last_error":  lastErr,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (s *Store) ListSpreadJobs(ctx context.Context, params repository.ListSpreadJobsParams) ([]models.SpreadJob, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SpreadJob{})
	if params.DealID != nil && strings.TrimSpace(*params.DealID) != "" {
		query = query.Where("deal_id = ?", strings.TrimSpace(*params.DealID))
	}
	if params.BankID != nil && strings.TrimSpace(*params.BankID) != "" {
		query = query.Where("bank_id = ?", strings.TrimSpace(*params.BankID))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	var items []models.SpreadJob
	err := query.
		Order("updated_at desc").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountSpreadJobsByStatus(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	if s == nil || s.db == nil {
		return out, nil
	}
	var rows []struct {
		Status string
		N      int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.SpreadJob{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

// --- Spread result placeholders --------------------------------------------

func (s *Store) UpsertSpreadResult(ctx context.Context, item *models.SpreadResult) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "deal_id"}, {Name: "bank_id"}, {Name: "spread_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "payload", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListSpreadResults(ctx context.Context, dealID, bankID string) ([]models.SpreadResult, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SpreadResult
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ?", dealID, bankID).
		Order("spread_type asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// --- Pricing ----------------------------------------------------------------

// ReplacePricingScenarios swaps the deal's full scenario set in one
// transaction. Decisions depend on scenarios, so they go first; readers never
// observe an empty window.
func (s *Store) ReplacePricingScenarios(ctx context.Context, dealID, bankID string, items []models.PricingScenario) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deal_id = ? AND bank_id = ?", dealID, bankID).
			Delete(&models.PricingTerms{}).Error; err != nil {
			return err
		}
		if err := tx.Where("deal_id = ? AND bank_id = ?", dealID, bankID).
			Delete(&models.PricingDecision{}).Error; err != nil {
			return err
		}
		if err := tx.Where("deal_id = ? AND bank_id = ?", dealID, bankID).
			Delete(&models.PricingScenario{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (s *Store) ListPricingScenarios(ctx context.Context, dealID, bankID string) ([]models.PricingScenario, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.PricingScenario
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ?", dealID, bankID).
		Order("scenario_key asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetPricingScenarioByID(ctx context.Context, id uint64) (*models.PricingScenario, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.PricingScenario
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RecordPricingDecision replaces any prior decision and its terms, then
// upserts the canonical narrative set, all in one transaction.
func (s *Store) RecordPricingDecision(ctx context.Context, decision *models.PricingDecision, terms *models.PricingTerms, narratives *models.MemoNarratives) error {
	if s == nil || s.db == nil || decision == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deal_id = ? AND bank_id = ?", decision.DealID, decision.BankID).
			Delete(&models.PricingTerms{}).Error; err != nil {
			return err
		}
		if err := tx.Where("deal_id = ? AND bank_id = ?", decision.DealID, decision.BankID).
			Delete(&models.PricingDecision{}).Error; err != nil {
			return err
		}
		if err := tx.Create(decision).Error; err != nil {
			return err
		}
		if terms != nil {
			terms.DecisionID = decision.ID
			if err := tx.Create(terms).Error; err != nil {
				return err
			}
		}
		if narratives != nil {
			narratives.DecisionID = decision.ID
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "deal_id"}, {Name: "bank_id"}, {Name: "input_hash"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"decision_id",
					"structure",
					"rationale",
					"risks_mitigants",
					"coverage_metrics",
					"cash_flow_impact",
					"policy_compliance",
					"updated_at",
				}),
			}).Create(narratives).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetPricingDecision(ctx context.Context, dealID, bankID string) (*models.PricingDecision, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.PricingDecision
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ?", dealID, bankID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetPricingTermsByDecisionID(ctx context.Context, decisionID uint64) (*models.PricingTerms, error) {
	if s == nil || s.db == nil || decisionID == 0 {
		return nil, nil
	}
	var item models.PricingTerms
	err := s.db.WithContext(ctx).
		Where("decision_id = ?", decisionID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetLatestMemoNarratives(ctx context.Context, dealID, bankID string) (*models.MemoNarratives, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.MemoNarratives
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND bank_id = ?", dealID, bankID).
		Order("updated_at desc, id desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- Observability ----------------------------------------------------------

func (s *Store) InsertSystemEvent(ctx context.Context, item *models.SystemEvent) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) InsertPipelineLedgerEntry(ctx context.Context, item *models.PipelineLedgerEntry) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListSystemEvents(ctx context.Context, params repository.ListSystemEventsParams) ([]models.SystemEvent, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemEvent{})
	if params.DealID != nil && strings.TrimSpace(*params.DealID) != "" {
		query = query.Where("deal_id = ?", strings.TrimSpace(*params.DealID))
	}
	if params.BankID != nil && strings.TrimSpace(*params.BankID) != "" {
		query = query.Where("bank_id = ?", strings.TrimSpace(*params.BankID))
	}
	if params.EventType != nil && strings.TrimSpace(*params.EventType) != "" {
		query = query.Where("event_type = ?", strings.TrimSpace(*params.EventType))
	}
	if params.Severity != nil && strings.TrimSpace(*params.Severity) != "" {
		query = query.Where("severity = ?", strings.TrimSpace(*params.Severity))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	var items []models.SystemEvent
	err := query.
		Order("created_at desc").
		Limit(normalizeLimit(params.Limit, 200)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
