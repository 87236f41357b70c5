package rates

import (
	"context"
	"time"

	"go.uber.org/zap"

	"creditpipe/internal/config"
	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

// Reader serves index rates from the DB cache (kept warm by Refresh and the
// websocket stream), falling back to a live fetch when the cache is stale.
type Reader struct {
	Repo   repository.Repository
	Client *Client
	Cfg    config.RatesConfig
	Logger *zap.Logger
}

func (r *Reader) Latest(ctx context.Context) (map[string]IndexRate, error) {
	if r == nil || r.Repo == nil {
		return nil, nil
	}
	cached, err := r.Repo.ListIndexRates(ctx)
	if err == nil && len(cached) > 0 && r.fresh(cached) {
		out := make(map[string]IndexRate, len(cached))
		for _, row := range cached {
			out[row.Code] = IndexRate{
				Code:    row.Code,
				RatePct: row.RatePct,
				AsOf:    row.AsOf,
				Source:  row.Source,
			}
		}
		return out, nil
	}
	return r.Refresh(ctx)
}

// Refresh pulls the feed and rewrites the cache.
func (r *Reader) Refresh(ctx context.Context) (map[string]IndexRate, error) {
	if r == nil || r.Client == nil {
		return nil, nil
	}
	live, err := r.Client.GetLatestIndexRates(ctx)
	if err != nil {
		return nil, err
	}
	for _, rate := range live {
		row := &models.IndexRate{
			Code:    rate.Code,
			RatePct: rate.RatePct,
			AsOf:    rate.AsOf,
			Source:  rate.Source,
		}
		if err := r.Repo.UpsertIndexRate(ctx, row); err != nil && r.Logger != nil {
			r.Logger.Warn("index rate cache write failed",
				zap.String("code", rate.Code), zap.Error(err))
		}
	}
	return live, nil
}

func (r *Reader) fresh(rows []models.IndexRate) bool {
	maxStaleness := r.Cfg.MaxStaleness
	if maxStaleness <= 0 {
		maxStaleness = time.Hour
	}
	cutoff := time.Now().UTC().Add(-maxStaleness)
	for _, row := range rows {
		if row.UpdatedAt.After(cutoff) {
			return true
		}
	}
	return false
}
