package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"creditpipe/internal/repository"
	"creditpipe/internal/scheduler"
)

type SpreadHandler struct {
	Repo      repository.Repository
	Scheduler *scheduler.Service
}

func (h *SpreadHandler) Register(r *gin.Engine) {
	group := r.Group("/api/spreads")
	group.POST("/enqueue", h.enqueue)
	group.GET("/jobs", h.listJobs)
	group.GET("/jobs/:id", h.getJob)
	group.GET("/results", h.listResults)
	group.GET("/types", h.listTypes)
}

type enqueueRequest struct {
	DealID      string   `json:"deal_id"`
	BankID      string   `json:"bank_id"`
	SpreadTypes []string `json:"spread_types"`
}

// @Summary Enqueue spread recomputation
// @Tags spreads
// @Accept json
// @Param body body enqueueRequest true "request"
// @Success 200 {object} scheduler.EnqueueOutcome
// @Router /api/spreads/enqueue [post]
func (h *SpreadHandler) enqueue(c *gin.Context) {
	if h.Scheduler == nil {
		Error(c, http.StatusServiceUnavailable, "scheduler unavailable", nil)
		return
	}
	var req enqueueRequest
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
	if len(req.SpreadTypes) == 0 {
		Error(c, http.StatusBadRequest, "spread_types required", nil)
		return
	}
	out, err := h.Scheduler.Enqueue(c.Request.Context(), req.DealID, req.BankID, req.SpreadTypes)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if out.Status == scheduler.StatusRejected {
		Error(c, http.StatusUnprocessableEntity, "no valid spread types", map[string]any{
			"unknown_types": out.UnknownTypes,
			"known_types":   scheduler.KnownSpreadTypes(),
		})
		return
	}
	Ok(c, out, nil)
}

// @Summary List spread jobs
// @Tags spreads
// @Success 200 {array} models.SpreadJob
// @Router /api/spreads/jobs [get]
func (h *SpreadHandler) listJobs(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListSpreadJobsParams{
		Limit:  limit,
		Offset: offset,
		DealID: strQueryPtr(c, "deal_id"),
		BankID: strQueryPtr(c, "bank_id"),
		Status: strQueryPtr(c, "status"),
	}
	items, err := h.Repo.ListSpreadJobs(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}

// @Summary Get spread job
// @Tags spreads
// @Success 200 {object} models.SpreadJob
// @Router /api/spreads/jobs/{id} [get]
func (h *SpreadHandler) getJob(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Repo.GetSpreadJobByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "spread job not found", nil)
		return
	}
	Ok(c, item, nil)
}

// @Summary List spread results for a deal
// @Tags spreads
// @Success 200 {array} models.SpreadResult
// @Router /api/spreads/results [get]
func (h *SpreadHandler) listResults(c *gin.Context) {
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
	items, err := h.Repo.ListSpreadResults(c.Request.Context(), dealID, bankID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary List known spread types
// @Tags spreads
// @Success 200 {array} string
// @Router /api/spreads/types [get]
func (h *SpreadHandler) listTypes(c *gin.Context) {
	Ok(c, scheduler.KnownSpreadTypes(), nil)
}
