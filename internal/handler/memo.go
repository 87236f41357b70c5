package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"creditpipe/internal/memo"
	"creditpipe/internal/models"
	"creditpipe/internal/repository"
	"creditpipe/internal/worker"
)

type MemoHandler struct {
	Repo     repository.Repository
	Pipeline *worker.Pipeline
}

func (h *MemoHandler) Register(r *gin.Engine) {
	r.GET("/api/memo", h.compose)
}

// @Summary Compose the credit memo
// @Tags memo
// @Success 200 {object} memo.CreditMemo
// @Router /api/memo [get]
func (h *MemoHandler) compose(c *gin.Context) {
	if h.Repo == nil || h.Pipeline == nil {
		Error(c, http.StatusInternalServerError, "memo engine unavailable", nil)
		return
	}
	dealID := strings.TrimSpace(c.Query("deal_id"))
	bankID := strings.TrimSpace(c.Query("bank_id"))
	if dealID == "" || bankID == "" {
		Error(c, http.StatusBadRequest, "deal_id and bank_id required", nil)
		return
	}
	ctx := c.Request.Context()

	product := models.ProductConventionalTerm
	lr, err := h.Repo.GetLoanRequest(ctx, dealID, bankID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if lr != nil {
		product = lr.ProductType
	}

	// The memo is recomputed on demand so its sections always reflect the
	// currently visible facts rather than a cached run.
	artifacts, err := h.Pipeline.Run(ctx, dealID, bankID, product)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if artifacts == nil {
		Error(c, http.StatusUnprocessableEntity, "no usable financial period", nil)
		return
	}

	scenario, err := h.selectScenario(c, dealID, bankID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	decision, err := h.Repo.GetPricingDecision(ctx, dealID, bankID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	out := memo.Compose(memo.Input{
		DealID:   dealID,
		Product:  product,
		Snapshot: artifacts.Snapshot,
		Policy:   artifacts.Policy,
		Stress:   artifacts.Stress,
		Scenario: scenario,
		Decision: decision,
	})
	Ok(c, out, nil)
}

// selectScenario prefers the scenario the recorded decision points at, then
// falls back to BASE from the latest generation.
func (h *MemoHandler) selectScenario(c *gin.Context, dealID, bankID string) (*models.PricingScenario, error) {
	ctx := c.Request.Context()
	decision, err := h.Repo.GetPricingDecision(ctx, dealID, bankID)
	if err != nil {
		return nil, err
	}
	if decision != nil {
		scen, err := h.Repo.GetPricingScenarioByID(ctx, decision.ScenarioID)
		if err != nil {
			return nil, err
		}
		if scen != nil {
			return scen, nil
		}
	}
	items, err := h.Repo.ListPricingScenarios(ctx, dealID, bankID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ScenarioKey == models.ScenarioBase {
			return &items[i], nil
		}
	}
	if len(items) > 0 {
		return &items[0], nil
	}
	return nil, nil
}
