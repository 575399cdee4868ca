package handler

import (
	"net/http"
	"strings"

	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService    *service.LeadService
	historyService *service.HistoryService
	logger         *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, historyService *service.HistoryService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{leadService: leadService, historyService: historyService, logger: logger}
}

func parseListQuery(r *http.Request) *service.ListLeadsQuery {
	qp := r.URL.Query()

	var statuses []string
	if raw := qp.Get("statuses"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}

	return &service.ListLeadsQuery{
		Page:       queryInt(r, "page", 1),
		PageSize:   queryInt(r, "pageSize", 50),
		Search:     qp.Get("search"),
		Statuses:   statuses,
		StatusMode: qp.Get("statusMode"),
		AssignedTo: qp.Get("assignedTo"),
		Hidden:     queryBool(r, "hidden"),
		Department: qp.Get("department"),
		UTMSource:  qp.Get("utmSource"),
		SourceDesc: qp.Get("sourceDescription"),
		DateFrom:   queryTime(r, "dateFrom"),
		DateTo:     queryTime(r, "dateTo"),
		SortBy:     qp.Get("sortBy"),
		SortOrder:  qp.Get("sortOrder"),
	}
}

// List godoc
// @Summary List leads visible to the caller
// @Tags Leads
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Name, phone or email fragment"
// @Param statuses query string false "Comma-separated status values"
// @Param statusMode query string false "only or exclude"
// @Param assignedTo query string false "Filter by assignee login"
// @Param dateFrom query string false "Creation date lower bound"
// @Param dateTo query string false "Creation date upper bound"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	q := parseListQuery(r)

	leads, total, err := h.leadService.List(r.Context(), user, q)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondPaginated(w, leads, q.Page, q.PageSize, total)
}

// Count godoc
// @Summary Count leads visible to the caller under the current filters
// @Tags Leads
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/count [get]
func (h *LeadHandler) Count(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	total, err := h.leadService.Count(r.Context(), user, parseListQuery(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]int64{"count": total})
}

// Get godoc
// @Summary Get a single lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.APIResponse
// @Failure 403 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	lead, err := h.leadService.Get(r.Context(), auth.MustFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lead)
}

// Create godoc
// @Summary Create a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.CreateLeadRequest true "Lead details"
// @Success 201 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.Create(r.Context(), auth.MustFromContext(r.Context()), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, lead)
}

// Update godoc
// @Summary Update a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.UpdateLeadRequest true "Fields to change"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id} [put]
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.Update(r.Context(), auth.MustFromContext(r.Context()), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lead)
}

// Delete godoc
// @Summary Delete a lead and its notes
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id} [delete]
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.leadService.Delete(r.Context(), auth.MustFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Lead deleted")
}

// ChangeStatus godoc
// @Summary Change a lead's status
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.ChangeStatusRequest true "New status"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id}/status [patch]
func (h *LeadHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.ChangeStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.ChangeStatus(r.Context(), auth.MustFromContext(r.Context()), id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lead)
}

// Assign godoc
// @Summary Reassign a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.AssignLeadRequest true "New assignee"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id}/assign [patch]
func (h *LeadHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.AssignLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.Assign(r.Context(), auth.MustFromContext(r.Context()), id, req.AssignedTo)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lead)
}

// ToggleVisibility godoc
// @Summary Toggle a lead's hidden flag
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id}/visibility [patch]
func (h *LeadHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	lead, err := h.leadService.ToggleVisibility(r.Context(), auth.MustFromContext(r.Context()), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, lead)
}

// AddNote godoc
// @Summary Add a note to a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body domain.AddNoteRequest true "Note text and optional photo"
// @Success 201 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id}/notes [post]
func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.AddNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.leadService.AddNote(r.Context(), auth.MustFromContext(r.Context()), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, note)
}

// EditNote godoc
// @Summary Edit a lead note
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param noteId path string true "Note ID"
// @Param request body domain.AddNoteRequest true "Replacement text and photo"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id}/notes/{noteId} [put]
func (h *LeadHandler) EditNote(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := uuidParam(w, r, "noteId")
	if !ok {
		return
	}
	var req domain.AddNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.leadService.EditNote(r.Context(), auth.MustFromContext(r.Context()), id, noteID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, note)
}

// DeleteNote godoc
// @Summary Delete a lead note
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Param noteId path string true "Note ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id}/notes/{noteId} [delete]
func (h *LeadHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	noteID, ok := uuidParam(w, r, "noteId")
	if !ok {
		return
	}

	if err := h.leadService.DeleteNote(r.Context(), auth.MustFromContext(r.Context()), id, noteID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Note deleted")
}

// History godoc
// @Summary Get the change history of a lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id}/history [get]
func (h *LeadHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	// Access check runs through the lead service so history honors the same
	// visibility rules as the lead itself
	if _, err := h.leadService.Get(r.Context(), auth.MustFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}

	entries, err := h.historyService.ListByLead(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, entries)
}

// BulkDelete godoc
// @Summary Delete a batch of leads
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.BulkLeadIDsRequest true "Lead IDs"
// @Success 200 {object} domain.APIResponse
// @Failure 403 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/bulk/delete [post]
func (h *LeadHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkLeadIDsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	affected, err := h.leadService.BulkDelete(r.Context(), auth.MustFromContext(r.Context()), req.IDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, domain.BulkResult{Affected: affected})
}

// BulkUpdate godoc
// @Summary Update a batch of leads
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.BulkUpdateLeadsRequest true "Lead IDs and changes"
// @Success 200 {object} domain.APIResponse
// @Failure 403 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/bulk/update [post]
func (h *LeadHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkUpdateLeadsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	affected, err := h.leadService.BulkUpdate(r.Context(), auth.MustFromContext(r.Context()), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, domain.BulkResult{Affected: affected})
}

// BulkHide godoc
// @Summary Hide a batch of leads
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body domain.BulkLeadIDsRequest true "Lead IDs"
// @Success 200 {object} domain.APIResponse
// @Failure 403 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/bulk/hide [post]
func (h *LeadHandler) BulkHide(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkLeadIDsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hidden := true
	affected, err := h.leadService.BulkUpdate(r.Context(), auth.MustFromContext(r.Context()), &domain.BulkUpdateLeadsRequest{
		IDs:    req.IDs,
		Hidden: &hidden,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, domain.BulkResult{Affected: affected})
}

// StatsOverview godoc
// @Summary Headline lead counts under the caller's scope
// @Tags Stats
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/stats/overview [get]
func (h *LeadHandler) StatsOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.leadService.StatsOverview(r.Context(), auth.MustFromContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to compute stats overview", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, overview)
}

// StatsDimension returns a handler serving lead counts bucketed by the
// given dimension (status, source, utm or manager)
func (h *LeadHandler) StatsDimension(dimension string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buckets, err := h.leadService.StatsBy(r.Context(), auth.MustFromContext(r.Context()), dimension)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, buckets)
	}
}

// StatsByTeam godoc
// @Summary Lead counts folded into per-team totals
// @Tags Stats
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/stats/teams [get]
func (h *LeadHandler) StatsByTeam(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.leadService.StatsByTeam(r.Context(), auth.MustFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, buckets)
}
