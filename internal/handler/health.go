package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"creditpipe/internal/repository"
)

type HealthHandler struct {
	DB   *gorm.DB
	Repo repository.Repository
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
	r.GET("/api/pipeline/health", h.pipeline)
}

// @Summary Health check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Readiness check
// @Tags health
// @Success 200 {object} map[string]string
// @Router /readyz [get]
func (h *HealthHandler) ready(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_missing"})
		return
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// @Summary Pipeline health counters
// @Tags health
// @Success 200 {object} map[string]any
// @Router /api/pipeline/health [get]
func (h *HealthHandler) pipeline(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	ctx := c.Request.Context()

	jobsByStatus, _ := h.Repo.CountSpreadJobsByStatus(ctx)

	rates, _ := h.Repo.ListIndexRates(ctx)
	var ratesFresh int
	cutoff := time.Now().UTC().Add(-1 * time.Hour)
	for _, rate := range rates {
		if rate.AsOf.After(cutoff) {
			ratesFresh++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"spread_jobs_by_status": jobsByStatus,
		"index_rates_total":     len(rates),
		"index_rates_fresh":     ratesFresh,
	})
}
