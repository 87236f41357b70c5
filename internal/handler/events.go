package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"creditpipe/internal/repository"
)

type EventHandler struct {
	Repo repository.Repository
}

func (h *EventHandler) Register(r *gin.Engine) {
	r.GET("/api/events", h.list)
}

// @Summary List system events
// @Tags events
// @Success 200 {array} models.SystemEvent
// @Router /api/events [get]
func (h *EventHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)
	params := repository.ListSystemEventsParams{
		Limit:     limit,
		Offset:    offset,
		DealID:    strQueryPtr(c, "deal_id"),
		BankID:    strQueryPtr(c, "bank_id"),
		EventType: strQueryPtr(c, "event_type"),
		Severity:  strQueryPtr(c, "severity"),
		Since:     timeQueryPtr(c, "since"),
	}
	items, err := h.Repo.ListSystemEvents(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}
