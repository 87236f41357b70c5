package db

import (
	"creditpipe/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	if err := db.Gorm.AutoMigrate(
		&models.FinancialFact{},
		&models.DebtInstrument{},
		&models.LoanRequest{},
		&models.RentRollUnit{},
		&models.BankOverlay{},
		&models.CreditSnapshot{},
		&models.IndexRate{},
		// Scheduling
		&models.SpreadJob{},
		&models.SpreadResult{},
		// Pricing
		&models.PricingScenario{},
		&models.PricingDecision{},
		&models.PricingTerms{},
		&models.MemoNarratives{},
		// Observability
		&models.SystemEvent{},
		&models.PipelineLedgerEntry{},
	); err != nil {
		return err
	}

	// At most one active job per (deal, bank). AutoMigrate cannot express a
	// partial unique index, so it is created directly; the scheduler's
	// conflict-merge path depends on it.
	return db.Gorm.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_spread_jobs_active
		 ON spread_jobs (deal_id, bank_id)
		 WHERE status IN ('QUEUED', 'RUNNING')`,
	).Error
}
