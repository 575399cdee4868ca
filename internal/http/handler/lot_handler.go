package handler

import (
	"net/http"

	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

type LotHandler struct {
	lotService *service.LotService
	logger     *zap.Logger
}

func NewLotHandler(lotService *service.LotService, logger *zap.Logger) *LotHandler {
	return &LotHandler{lotService: lotService, logger: logger}
}

func parseLotFilters(r *http.Request) *repository.LotFilters {
	qp := r.URL.Query()
	filters := &repository.LotFilters{
		IsPaid:   queryBool(r, "isPaid"),
		DateFrom: queryTime(r, "dateFrom"),
		DateTo:   queryTime(r, "dateTo"),
	}
	if v := queryBool(r, "includeDeleted"); v != nil {
		filters.IncludeDeleted = *v
	}
	if raw := qp.Get("status"); raw != "" {
		status := domain.LotStatus(raw)
		filters.Status = &status
	}
	if raw := qp.Get("assignedTo"); raw != "" {
		filters.AssignedTo = &raw
	}
	if raw := qp.Get("team"); raw != "" {
		filters.Team = &raw
	}
	return filters
}

// List godoc
// @Summary List lots
// @Tags Lots
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param status query string false "Lot status"
// @Param includeDeleted query bool false "Include archived lots"
// @Param isPaid query bool false "Filter by payout state"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /lots [get]
func (h *LotHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 50)

	lots, total, err := h.lotService.List(r.Context(), auth.MustFromContext(r.Context()), page, pageSize, parseLotFilters(r))
	if err != nil {
		h.logger.Error("failed to list lots", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondPaginated(w, lots, page, pageSize, total)
}

// Totals godoc
// @Summary Sum lot amounts under the current filters
// @Tags Lots
// @Produce json
// @Param status query string false "Lot status"
// @Param team query string false "Filter by team"
// @Param isPaid query bool false "Filter by payout state"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /lots/stats [get]
func (h *LotHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.lotService.Totals(r.Context(), auth.MustFromContext(r.Context()), parseLotFilters(r))
	if err != nil {
		h.logger.Error("failed to sum lots", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, totals)
}

// Get godoc
// @Summary Get a lot with its amount history
// @Tags Lots
// @Produce json
// @Param id path string true "Lot ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /lots/{id} [get]
func (h *LotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	lot, err := h.lotService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lot)
}

// Create godoc
// @Summary Create a lot from a lead
// @Tags Lots
// @Accept json
// @Produce json
// @Param request body domain.CreateLotRequest true "Lot details"
// @Success 201 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /lots [post]
func (h *LotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lot, err := h.lotService.Create(r.Context(), auth.MustFromContext(r.Context()), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, lot)
}

// UpdateAmount godoc
// @Summary Change a lot's amount with an audit record
// @Tags Lots
// @Accept json
// @Produce json
// @Param id path string true "Lot ID"
// @Param request body domain.UpdateLotAmountRequest true "New amount and reason"
// @Success 200 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Security BearerAuth
// @Router /lots/{id}/amount [patch]
func (h *LotHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateLotAmountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lot, err := h.lotService.UpdateAmount(r.Context(), auth.MustFromContext(r.Context()), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lot)
}

// UpdatePayout godoc
// @Summary Update a lot's payout fields
// @Tags Lots
// @Accept json
// @Produce json
// @Param id path string true "Lot ID"
// @Param request body domain.UpdateLotPayoutRequest true "Payout changes"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /lots/{id}/payout [patch]
func (h *LotHandler) UpdatePayout(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateLotPayoutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lot, err := h.lotService.UpdatePayout(r.Context(), auth.MustFromContext(r.Context()), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lot)
}

// Delete godoc
// @Summary Archive a lot
// @Tags Lots
// @Produce json
// @Param id path string true "Lot ID"
// @Success 200 {object} domain.APIResponse
// @Failure 403 {object} domain.APIResponse
// @Security BearerAuth
// @Router /lots/{id} [delete]
func (h *LotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	lot, err := h.lotService.Delete(r.Context(), auth.MustFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lot)
}

// Restore godoc
// @Summary Restore an archived lot
// @Tags Lots
// @Produce json
// @Param id path string true "Lot ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /lots/{id}/restore [post]
func (h *LotHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	lot, err := h.lotService.Restore(r.Context(), auth.MustFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lot)
}
