package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"creditpipe/internal/config"
	"creditpipe/internal/ledger"
	"creditpipe/internal/models"
	"creditpipe/internal/pricing"
	"creditpipe/internal/repository"
)

// Runner drains due spread jobs. Claiming is a guarded status update, so
// multiple runner instances can poll the same table without double
// processing.
type Runner struct {
	Repo     repository.Repository
	Pipeline *Pipeline
	Pricing  *pricing.Generator
	Ledger   *ledger.Sink
	Logger   *zap.Logger
	Cfg      config.WorkerConfig
}

func (r *Runner) Tick(ctx context.Context) error {
	if !r.Cfg.Enabled {
		return nil
	}
	batch := r.Cfg.BatchSize
	if batch <= 0 {
		batch = 5
	}
	jobs, err := r.Repo.ListDueSpreadJobs(ctx, time.Now().UTC(), batch)
	if err != nil {
		return fmt.Errorf("list due spread jobs: %w", err)
	}
	for i := range jobs {
		job := jobs[i]
		claimed, err := r.Repo.ClaimSpreadJob(ctx, job.ID)
		if err != nil {
			r.Logger.Warn("spread job claim failed", zap.Uint64("job_id", job.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}
		if err := r.process(ctx, &job); err != nil {
			r.retryOrFail(ctx, &job, err)
		}
	}
	return nil
}

func (r *Runner) process(ctx context.Context, job *models.SpreadJob) error {
	types, err := decodeTypes(job.RequestedSpreadTypes)
	if err != nil {
		return fmt.Errorf("decode requested spread types: %w", err)
	}

	product := models.ProductConventionalTerm
	lr, err := r.Repo.GetLoanRequest(ctx, job.DealID, job.BankID)
	if err != nil {
		return fmt.Errorf("load loan request: %w", err)
	}
	if lr != nil {
		product = lr.ProductType
	}

	artifacts, err := r.Pipeline.Run(ctx, job.DealID, job.BankID, product)
	if err != nil {
		return err
	}
	if artifacts == nil {
		msg := "no usable financial period"
		r.markResults(ctx, job, types, models.SpreadResultFailed, map[string]any{"error": msg})
		if err := r.Repo.FinishSpreadJob(ctx, job.ID, models.JobStatusFailed, &msg); err != nil {
			return fmt.Errorf("finish spread job: %w", err)
		}
		r.Ledger.WriteSystemEvent(ctx, job.DealID, job.BankID, "spread_job_failed", models.EventSeverityWarn,
			msg, map[string]any{"job_id": job.ID})
		return nil
	}

	payload := resultPayload{
		SnapshotID:  artifacts.SnapshotID,
		PeriodID:    artifacts.Snapshot.Period.PeriodID,
		PeriodType:  artifacts.Snapshot.Period.Type,
		Policy:      artifacts.Policy,
		Stress:      artifacts.Stress,
		ComputedAt:  time.Now().UTC(),
		DebtService: artifacts.Snapshot.DebtService.Total,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal spread payload: %w", err)
	}
	for _, st := range types {
		res := &models.SpreadResult{
			DealID:     job.DealID,
			BankID:     job.BankID,
			SpreadType: st,
			Status:     models.SpreadResultReady,
			Payload:    datatypes.JSON(raw),
		}
		if err := r.Repo.UpsertSpreadResult(ctx, res); err != nil {
			return fmt.Errorf("write spread result %s: %w", st, err)
		}
	}

	// Pricing runs after every recomputation so scenarios stay consistent
	// with the latest snapshot. A typed non-ok status is not a job failure.
	if r.Pricing != nil {
		outcome, err := r.Pricing.Generate(ctx, job.DealID, job.BankID)
		if err != nil {
			return fmt.Errorf("generate pricing: %w", err)
		}
		if outcome.Status != pricing.StatusOK {
			r.Logger.Info("pricing skipped after recomputation",
				zap.String("deal_id", job.DealID),
				zap.String("status", outcome.Status),
				zap.String("reason", outcome.Reason))
		}
	}

	if err := r.Repo.FinishSpreadJob(ctx, job.ID, models.JobStatusSucceeded, nil); err != nil {
		return fmt.Errorf("finish spread job: %w", err)
	}
	r.Ledger.LogPipelineLedger(ctx, job.DealID, job.BankID, "worker", "succeeded",
		map[string]any{"job_id": job.ID, "spread_types": types, "snapshot_id": artifacts.SnapshotID})
	return nil
}

func (r *Runner) retryOrFail(ctx context.Context, job *models.SpreadJob, cause error) {
	attempts := job.Attempts + 1
	msg := cause.Error()
	maxAttempts := r.Cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if attempts >= maxAttempts {
		if err := r.Repo.FinishSpreadJob(ctx, job.ID, models.JobStatusFailed, &msg); err != nil {
			r.Logger.Error("spread job fail transition failed", zap.Uint64("job_id", job.ID), zap.Error(err))
			return
		}
		r.Ledger.WriteSystemEvent(ctx, job.DealID, job.BankID, "spread_job_failed", models.EventSeverityError,
			msg, map[string]any{"job_id": job.ID, "attempts": attempts})
		return
	}
	backoff := r.Cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Minute
	}
	next := time.Now().UTC().Add(backoff * time.Duration(attempts))
	if err := r.Repo.RescheduleSpreadJob(ctx, job.ID, attempts, next, &msg); err != nil {
		r.Logger.Error("spread job reschedule failed", zap.Uint64("job_id", job.ID), zap.Error(err))
		return
	}
	r.Logger.Warn("spread job rescheduled",
		zap.Uint64("job_id", job.ID),
		zap.Int("attempts", attempts),
		zap.Time("next_run_at", next),
		zap.Error(cause))
}

func (r *Runner) markResults(ctx context.Context, job *models.SpreadJob, types []string, status string, detail map[string]any) {
	raw, _ := json.Marshal(detail)
	for _, st := range types {
		res := &models.SpreadResult{
			DealID:     job.DealID,
			BankID:     job.BankID,
			SpreadType: st,
			Status:     status,
			Payload:    datatypes.JSON(raw),
		}
		if err := r.Repo.UpsertSpreadResult(ctx, res); err != nil {
			r.Logger.Warn("spread result status write failed",
				zap.Uint64("job_id", job.ID), zap.String("spread_type", st), zap.Error(err))
		}
	}
}

func decodeTypes(raw datatypes.JSON) ([]string, error) {
	var types []string
	if len(raw) == 0 {
		return types, nil
	}
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, err
	}
	return types, nil
}
