package handler

import (
	"net/http"

	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

type SuccessfulLeadHandler struct {
	dealService *service.SuccessfulLeadService
	logger      *zap.Logger
}

func NewSuccessfulLeadHandler(dealService *service.SuccessfulLeadService, logger *zap.Logger) *SuccessfulLeadHandler {
	return &SuccessfulLeadHandler{dealService: dealService, logger: logger}
}

// List godoc
// @Summary List closed deals
// @Tags SuccessfulLeads
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param assignedTo query string false "Filter by assignee login"
// @Param team query string false "Filter by team name"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /successful-leads [get]
func (h *SuccessfulLeadHandler) List(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 50)

	filters := &repository.SuccessfulLeadFilters{
		ClosedFrom: queryTime(r, "dateFrom"),
		ClosedTo:   queryTime(r, "dateTo"),
	}
	if raw := qp.Get("assignedTo"); raw != "" {
		filters.AssignedTo = &raw
	}
	if raw := qp.Get("team"); raw != "" {
		filters.Team = &raw
	}

	deals, total, err := h.dealService.List(r.Context(), auth.MustFromContext(r.Context()), page, pageSize, filters)
	if err != nil {
		h.logger.Error("failed to list successful leads", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondPaginated(w, deals, page, pageSize, total)
}

// Get godoc
// @Summary Get a closed deal
// @Tags SuccessfulLeads
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /successful-leads/{id} [get]
func (h *SuccessfulLeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	deal, err := h.dealService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, deal)
}

// Create godoc
// @Summary Record a closed deal from a lead
// @Tags SuccessfulLeads
// @Accept json
// @Produce json
// @Param request body domain.CreateSuccessfulLeadRequest true "Deal details"
// @Success 201 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /successful-leads [post]
func (h *SuccessfulLeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSuccessfulLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deal, err := h.dealService.Create(r.Context(), auth.MustFromContext(r.Context()), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, deal)
}

// Update godoc
// @Summary Update a closed deal
// @Tags SuccessfulLeads
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.UpdateSuccessfulLeadRequest true "Fields to change"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /successful-leads/{id} [put]
func (h *SuccessfulLeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateSuccessfulLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deal, err := h.dealService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, deal)
}

// Delete godoc
// @Summary Delete a closed deal
// @Tags SuccessfulLeads
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.APIResponse
// @Failure 403 {object} domain.APIResponse
// @Security BearerAuth
// @Router /successful-leads/{id} [delete]
func (h *SuccessfulLeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.dealService.Delete(r.Context(), auth.MustFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Deal deleted")
}
