package ledger

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

// Sink writes audit events and pipeline ledger entries. Fire-and-forget:
// write failures are logged and swallowed, never surfaced to the pipeline.
type Sink struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (s *Sink) WriteSystemEvent(ctx context.Context, dealID, bankID, eventType, severity, message string, payload map[string]any) {
	if s == nil || s.Repo == nil {
		return
	}
	item := &models.SystemEvent{
		EventType: eventType,
		Severity:  severity,
		Message:   message,
	}
	if dealID != "" {
		item.DealID = &dealID
	}
	if bankID != "" {
		item.BankID = &bankID
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			item.Payload = datatypes.JSON(raw)
		}
	}
	if err := s.Repo.InsertSystemEvent(ctx, item); err != nil && s.Logger != nil {
		s.Logger.Warn("system event write failed",
			zap.String("event_type", eventType), zap.Error(err))
	}
}

func (s *Sink) LogPipelineLedger(ctx context.Context, dealID, bankID, stage, status string, detail map[string]any) {
	if s == nil || s.Repo == nil {
		return
	}
	item := &models.PipelineLedgerEntry{
		DealID: dealID,
		BankID: bankID,
		Stage:  stage,
		Status: status,
	}
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err == nil {
			item.Detail = datatypes.JSON(raw)
		}
	}
	if err := s.Repo.InsertPipelineLedgerEntry(ctx, item); err != nil && s.Logger != nil {
		s.Logger.Warn("pipeline ledger write failed",
			zap.String("stage", stage), zap.Error(err))
	}
}
