package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"creditpipe/internal/config"
	"creditpipe/internal/ledger"
	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

const (
	StatusEnqueued       = "enqueued"
	StatusMerged         = "merged"
	StatusWaitingOnFacts = "waiting_on_facts"
	StatusRejected       = "rejected"
)

// EnqueueOutcome reports what happened to a request. Unknown and not-ready
// types never fail the whole request; they are reported alongside whatever
// was accepted.
type EnqueueOutcome struct {
	Status        string        `json:"status"`
	JobID         uint64        `json:"job_id,omitempty"`
	AcceptedTypes []string      `json:"accepted_types,omitempty"`
	UnknownTypes  []string      `json:"unknown_types,omitempty"`
	NotReady      []PrereqCheck `json:"not_ready,omitempty"`
}

// Service owns spread-job admission. A partial unique index on
// spread_jobs(deal_id, bank_id) over active statuses makes the insert race
// safe: the loser observes a duplicate-key error, re-reads the winner and
// merges its requested types into it.
type Service struct {
	Repo   repository.Repository
	Ledger *ledger.Sink
	Logger *zap.Logger
	Cfg    config.SchedulerConfig
}

func (s *Service) Enqueue(ctx context.Context, dealID, bankID string, requestedTypes []string) (*EnqueueOutcome, error) {
	valid, unknown := splitKnown(requestedTypes)
	out := &EnqueueOutcome{UnknownTypes: unknown}

	if len(unknown) > 0 {
		s.Ledger.WriteSystemEvent(ctx, dealID, bankID, "spread_enqueue_unknown_types", models.EventSeverityWarn,
			fmt.Sprintf("ignored %d unknown spread types", len(unknown)),
			map[string]any{"unknown_types": unknown, "known_types": KnownSpreadTypes()})
	}
	if len(valid) == 0 {
		out.Status = StatusRejected
		return out, nil
	}

	facts, err := s.Repo.GetVisibleFacts(ctx, dealID, bankID)
	if err != nil {
		return nil, fmt.Errorf("load visible facts: %w", err)
	}
	rentRollUnits, err := s.Repo.CountRentRollUnits(ctx, dealID, bankID)
	if err != nil {
		return nil, fmt.Errorf("count rent roll units: %w", err)
	}

	ready := []string{}
	for _, st := range valid {
		t, _ := LookupTemplate(st)
		check := EvaluatePrereq(t, facts, rentRollUnits)
		if check.Ready {
			ready = append(ready, st)
		} else {
			out.NotReady = append(out.NotReady, check)
		}
	}
	if len(ready) == 0 {
		out.Status = StatusWaitingOnFacts
		s.Ledger.LogPipelineLedger(ctx, dealID, bankID, "scheduler", StatusWaitingOnFacts,
			map[string]any{"not_ready": out.NotReady})
		return out, nil
	}
	out.AcceptedTypes = ready

	// Placeholder rows so consumers can see pending work before the worker
	// picks it up. Best effort.
	for _, st := range ready {
		placeholder := &models.SpreadResult{
			DealID:     dealID,
			BankID:     bankID,
			SpreadType: st,
			Status:     models.SpreadResultPending,
		}
		if err := s.Repo.UpsertSpreadResult(ctx, placeholder); err != nil && s.Logger != nil {
			s.Logger.Warn("spread result placeholder write failed",
				zap.String("deal_id", dealID), zap.String("spread_type", st), zap.Error(err))
		}
	}

	jobID, merged, err := s.insertOrMerge(ctx, dealID, bankID, ready)
	if err != nil {
		return nil, err
	}
	out.JobID = jobID
	if merged {
		out.Status = StatusMerged
	} else {
		out.Status = StatusEnqueued
	}
	s.Ledger.LogPipelineLedger(ctx, dealID, bankID, "scheduler", out.Status,
		map[string]any{"job_id": jobID, "accepted_types": ready})
	return out, nil
}

// insertOrMerge tries the optimistic insert first. A duplicate-key error
// means an active job already exists for the pair: union the requested types
// into it instead of creating a second row. Each merge attempt can race with
// the worker finishing the job, so the loop retries the insert a bounded
// number of times.
func (s *Service) insertOrMerge(ctx context.Context, dealID, bankID string, types []string) (uint64, bool, error) {
	retries := s.Cfg.MaxConflictRetries
	if retries < 0 {
		retries = 0
	}
	for attempt := 0; ; attempt++ {
		raw, err := json.Marshal(types)
		if err != nil {
			return 0, false, fmt.Errorf("marshal spread types: %w", err)
		}
		job := &models.SpreadJob{
			DealID:               dealID,
			BankID:               bankID,
			RequestedSpreadTypes: datatypes.JSON(raw),
			Status:               models.JobStatusQueued,
			NextRunAt:            time.Now().UTC().Add(s.Cfg.DefaultRunDelay),
		}
		err = s.Repo.InsertSpreadJob(ctx, job)
		if err == nil {
			return job.ID, false, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, false, fmt.Errorf("insert spread job: %w", err)
		}

		existing, err := s.Repo.FindActiveSpreadJob(ctx, dealID, bankID)
		if err != nil {
			return 0, false, fmt.Errorf("find active spread job: %w", err)
		}
		if existing != nil {
			union, changed, err := unionTypes(existing.RequestedSpreadTypes, types)
			if err != nil {
				return 0, false, err
			}
			if changed {
				if err := s.Repo.UpdateSpreadJobRequest(ctx, existing.ID, union, existing.Meta); err != nil {
					return 0, false, fmt.Errorf("merge spread job request: %w", err)
				}
			}
			return existing.ID, true, nil
		}

		// The winner finished between our insert and the re-read. Retry.
		if attempt >= retries {
			return 0, false, fmt.Errorf("spread job enqueue for deal %s: conflict retries exhausted", dealID)
		}
		if s.Logger != nil {
			s.Logger.Debug("spread job conflict vanished, retrying insert",
				zap.String("deal_id", dealID), zap.Int("attempt", attempt+1))
		}
	}
}

func splitKnown(requested []string) (valid, unknown []string) {
	seen := map[string]bool{}
	for _, st := range requested {
		if seen[st] {
			continue
		}
		seen[st] = true
		if _, ok := LookupTemplate(st); ok {
			valid = append(valid, st)
		} else {
			unknown = append(unknown, st)
		}
	}
	return valid, unknown
}

func unionTypes(existing datatypes.JSON, incoming []string) ([]byte, bool, error) {
	var current []string
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &current); err != nil {
			return nil, false, fmt.Errorf("decode existing spread types: %w", err)
		}
	}
	set := map[string]bool{}
	for _, st := range current {
		set[st] = true
	}
	changed := false
	for _, st := range incoming {
		if !set[st] {
			set[st] = true
			changed = true
		}
	}
	union := make([]string, 0, len(set))
	for st := range set {
		union = append(union, st)
	}
	sort.Strings(union)
	raw, err := json.Marshal(union)
	if err != nil {
		return nil, false, fmt.Errorf("marshal merged spread types: %w", err)
	}
	return raw, changed, nil
}
