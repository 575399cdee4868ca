package handler

import (
	"net/http"

	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	historyService *service.HistoryService
	logger         *zap.Logger
}

func NewHistoryHandler(historyService *service.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, logger: logger}
}

// List godoc
// @Summary List lead history entries across all leads
// @Tags History
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param action query string false "Filter by action kind"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leadsHistory [get]
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 50)

	var action *domain.HistoryAction
	if raw := r.URL.Query().Get("action"); raw != "" {
		parsed := domain.HistoryAction(raw)
		action = &parsed
	}

	entries, total, err := h.historyService.List(r.Context(), page, pageSize, action)
	if err != nil {
		h.logger.Error("failed to list lead history", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondPaginated(w, entries, page, pageSize, total)
}

// ListByLead godoc
// @Summary List history entries for one lead
// @Tags History
// @Produce json
// @Param leadId path string true "Lead ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leadsHistory/{leadId} [get]
func (h *HistoryHandler) ListByLead(w http.ResponseWriter, r *http.Request) {
	leadID, ok := uuidParam(w, r, "leadId")
	if !ok {
		return
	}

	entries, err := h.historyService.ListByLead(r.Context(), leadID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, entries)
}
