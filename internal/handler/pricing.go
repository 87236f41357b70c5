package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"creditpipe/internal/pricing"
	"creditpipe/internal/repository"
)

type PricingHandler struct {
	Repo      repository.Repository
	Generator *pricing.Generator
	Recorder  *pricing.Recorder
}

func (h *PricingHandler) Register(r *gin.Engine) {
	group := r.Group("/api/pricing")
	group.POST("/generate", h.generate)
	group.GET("/scenarios", h.listScenarios)
	group.POST("/decide", h.decide)
	group.GET("/decision", h.getDecision)
	group.GET("/narratives", h.getNarratives)
}

type generateRequest struct {
	DealID string `json:"deal_id"`
	BankID string `json:"bank_id"`
}

// @Summary Generate pricing scenarios
// @Tags pricing
// @Accept json
// @Param body body generateRequest true "request"
// @Success 200 {object} pricing.GenerateOutcome
// @Router /api/pricing/generate [post]
func (h *PricingHandler) generate(c *gin.Context) {
	if h.Generator == nil {
		Error(c, http.StatusServiceUnavailable, "pricing unavailable", nil)
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.DealID = strings.TrimSpace(req.DealID)
	req.BankID = strings.TrimSpace(req.BankID)
	if req.DealID == "" || req.BankID == "" {
		Error(c, http.StatusBadRequest, "deal_id and bank_id required", nil)
		return
	}
	out, err := h.Generator.Generate(c.Request.Context(), req.DealID, req.BankID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	switch out.Status {
	case pricing.StatusOK:
		Ok(c, out, nil)
	case pricing.StatusConflict:
		Error(c, http.StatusConflict, out.Reason, map[string]any{"status": out.Status})
	default:
		Error(c, http.StatusUnprocessableEntity, out.Reason, map[string]any{"status": out.Status})
	}
}

// @Summary List pricing scenarios for a deal
// @Tags pricing
// @Success 200 {array} models.PricingScenario
// @Router /api/pricing/scenarios [get]
func (h *PricingHandler) listScenarios(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	dealID := strings.TrimSpace(c.Query("deal_id"))
	bankID := strings.TrimSpace(c.Query("bank_id"))
	if dealID == "" || bankID == "" {
		Error(c, http.StatusBadRequest, "deal_id and bank_id required", nil)
		return
	}
	items, err := h.Repo.ListPricingScenarios(c.Request.Context(), dealID, bankID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary Record a pricing decision
// @Tags pricing
// @Accept json
// @Param body body pricing.RecordDecisionInput true "request"
// @Success 200 {object} pricing.DecisionOutcome
// @Router /api/pricing/decide [post]
func (h *PricingHandler) decide(c *gin.Context) {
	if h.Recorder == nil {
		Error(c, http.StatusServiceUnavailable, "pricing unavailable", nil)
		return
	}
	var req pricing.RecordDecisionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.DealID = strings.TrimSpace(req.DealID)
	req.BankID = strings.TrimSpace(req.BankID)
	if req.DealID == "" || req.BankID == "" || req.ScenarioID == 0 {
		Error(c, http.StatusBadRequest, "deal_id, bank_id and scenario_id required", nil)
		return
	}
	out, err := h.Recorder.Record(c.Request.Context(), req)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	switch out.Status {
	case pricing.StatusOK:
		Ok(c, out, nil)
	case pricing.StatusScenarioNotFound:
		Error(c, http.StatusNotFound, out.Reason, map[string]any{"status": out.Status})
	case pricing.StatusSnapshotMissing:
		Error(c, http.StatusConflict, out.Reason, map[string]any{"status": out.Status})
	default:
		Error(c, http.StatusUnprocessableEntity, out.Reason, map[string]any{"status": out.Status})
	}
}

// @Summary Get the recorded pricing decision
// @Tags pricing
// @Success 200 {object} models.PricingDecision
// @Router /api/pricing/decision [get]
func (h *PricingHandler) getDecision(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	dealID := strings.TrimSpace(c.Query("deal_id"))
	bankID := strings.TrimSpace(c.Query("bank_id"))
	if dealID == "" || bankID == "" {
		Error(c, http.StatusBadRequest, "deal_id and bank_id required", nil)
		return
	}
	decision, err := h.Repo.GetPricingDecision(c.Request.Context(), dealID, bankID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if decision == nil {
		Error(c, http.StatusNotFound, "no decision recorded", nil)
		return
	}
	terms, err := h.Repo.GetPricingTermsByDecisionID(c.Request.Context(), decision.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{"decision": decision, "terms": terms}, nil)
}

// @Summary Get canonical memo narratives
// @Tags pricing
// @Success 200 {object} models.MemoNarratives
// @Router /api/pricing/narratives [get]
func (h *PricingHandler) getNarratives(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	dealID := strings.TrimSpace(c.Query("deal_id"))
	bankID := strings.TrimSpace(c.Query("bank_id"))
	if dealID == "" || bankID == "" {
		Error(c, http.StatusBadRequest, "deal_id and bank_id required", nil)
		return
	}
	item, err := h.Repo.GetLatestMemoNarratives(c.Request.Context(), dealID, bankID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "no narratives recorded", nil)
		return
	}
	Ok(c, item, nil)
}
