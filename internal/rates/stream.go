package rates

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"creditpipe/internal/config"
	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

type subscribeRequest struct {
	Type    string   `json:"type"`
	Indexes []string `json:"indexes,omitempty"`
}

type rateTick struct {
	Code    string  `json:"code"`
	RatePct float64 `json:"rate_pct"`
	AsOf    string  `json:"as_of"`
	Source  string  `json:"source"`
}

// Stream keeps the index-rate cache warm from the feed's push channel.
// Reconnects with a fixed delay until the context is cancelled.
type Stream struct {
	Repo   repository.Repository
	Cfg    config.RateStreamConfig
	Logger *zap.Logger
}

func (s *Stream) Run(ctx context.Context) {
	if s == nil || s.Repo == nil || strings.TrimSpace(s.Cfg.URL) == "" {
		return
	}
	delay := s.Cfg.ReconnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.runOnce(ctx); err != nil && s.Logger != nil && !errors.Is(err, context.Canceled) {
			s.Logger.Warn("rate stream disconnected", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (s *Stream) runOnce(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, s.Cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	req := subscribeRequest{Type: "rates"}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("rate stream connected", zap.String("url", s.Cfg.URL))
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var tick rateTick
		if err := json.Unmarshal(data, &tick); err != nil || strings.TrimSpace(tick.Code) == "" {
			continue
		}
		asOf, err := time.Parse(time.RFC3339, tick.AsOf)
		if err != nil {
			asOf = time.Now().UTC()
		}
		row := &models.IndexRate{
			Code:    tick.Code,
			RatePct: tick.RatePct,
			AsOf:    asOf,
			Source:  tick.Source,
		}
		if err := s.Repo.UpsertIndexRate(ctx, row); err != nil && s.Logger != nil {
			s.Logger.Warn("rate tick cache write failed",
				zap.String("code", tick.Code), zap.Error(err))
		}
	}
}
