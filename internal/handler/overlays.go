package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"creditpipe/internal/models"
	"creditpipe/internal/repository"
)

type OverlayHandler struct {
	Repo repository.Repository
}

func (h *OverlayHandler) Register(r *gin.Engine) {
	group := r.Group("/api/overlays")
	group.GET("", h.get)
	group.PUT("", h.upsert)
}

// @Summary Get the resolved overlay row for a bank
// @Tags overlays
// @Success 200 {object} models.BankOverlay
// @Router /api/overlays [get]
func (h *OverlayHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	bankID := strings.TrimSpace(c.Query("bank_id"))
	if bankID == "" {
		Error(c, http.StatusBadRequest, "bank_id required", nil)
		return
	}
	product := strings.TrimSpace(c.Query("product"))
	item, err := h.Repo.GetBankOverlay(c.Request.Context(), bankID, product)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "no overlay for bank", nil)
		return
	}
	Ok(c, item, nil)
}

type upsertOverlayRequest struct {
	BankID  string `json:"bank_id"`
	Product string `json:"product"`

	MinDSCR         *float64 `json:"min_dscr"`
	MaxLeverage     *float64 `json:"max_leverage"`
	MinCurrentRatio *float64 `json:"min_current_ratio"`
	MaxLTV          *float64 `json:"max_ltv"`
	MinDebtYieldPct *float64 `json:"min_debt_yield_pct"`
	MaxDebtToEBITDA *float64 `json:"max_debt_to_ebitda"`

	ModerateDeviationCutoff *float64 `json:"moderate_deviation_cutoff"`
	SevereDeviationCutoff   *float64 `json:"severe_deviation_cutoff"`

	BaseSpreadBps        *int     `json:"base_spread_bps"`
	GuarantyThresholdUSD *float64 `json:"guaranty_threshold_usd"`
}

// @Summary Upsert a bank overlay
// @Tags overlays
// @Accept json
// @Param body body upsertOverlayRequest true "request"
// @Success 200 {object} models.BankOverlay
// @Router /api/overlays [put]
func (h *OverlayHandler) upsert(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req upsertOverlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.BankID = strings.TrimSpace(req.BankID)
	if req.BankID == "" {
		Error(c, http.StatusBadRequest, "bank_id required", nil)
		return
	}
	item := &models.BankOverlay{
		BankID:          req.BankID,
		Product:         strings.TrimSpace(req.Product),
		MinDSCR:         req.MinDSCR,
		MaxLeverage:     req.MaxLeverage,
		MinCurrentRatio: req.MinCurrentRatio,
		MaxLTV:          req.MaxLTV,
		MinDebtYieldPct: req.MinDebtYieldPct,
		MaxDebtToEBITDA: req.MaxDebtToEBITDA,
	}
	if req.ModerateDeviationCutoff != nil {
		item.ModerateDeviationCutoff = *req.ModerateDeviationCutoff
	}
	if req.SevereDeviationCutoff != nil {
		item.SevereDeviationCutoff = *req.SevereDeviationCutoff
	}
	if req.BaseSpreadBps != nil {
		item.BaseSpreadBps = *req.BaseSpreadBps
	}
	if req.GuarantyThresholdUSD != nil {
		item.GuarantyThresholdUSD = *req.GuarantyThresholdUSD
	}
	if err := h.Repo.UpsertBankOverlay(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}
