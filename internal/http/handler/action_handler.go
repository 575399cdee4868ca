package handler

import (
	"net/http"

	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

type ActionHandler struct {
	actionService *service.ActionService
	logger        *zap.Logger
}

func NewActionHandler(actionService *service.ActionService, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{actionService: actionService, logger: logger}
}

// Create godoc
// @Summary Schedule a follow-up action for a lead
// @Tags Actions
// @Accept json
// @Produce json
// @Param request body domain.CreateActionRequest true "Action details"
// @Success 201 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse
// @Security BearerAuth
// @Router /actions [post]
func (h *ActionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	action, err := h.actionService.Create(r.Context(), auth.MustFromContext(r.Context()), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, action)
}

// Get godoc
// @Summary Get a follow-up action
// @Tags Actions
// @Produce json
// @Param id path string true "Action ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /actions/{id} [get]
func (h *ActionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	action, err := h.actionService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, action)
}

// Update godoc
// @Summary Update a follow-up action
// @Tags Actions
// @Accept json
// @Produce json
// @Param id path string true "Action ID"
// @Param request body domain.UpdateActionRequest true "Fields to change"
// @Success 200 {object} domain.APIResponse
// @Failure 403 {object} domain.APIResponse
// @Security BearerAuth
// @Router /actions/{id} [put]
func (h *ActionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	action, err := h.actionService.Update(r.Context(), auth.MustFromContext(r.Context()), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, action)
}

// Delete godoc
// @Summary Delete a follow-up action
// @Tags Actions
// @Produce json
// @Param id path string true "Action ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /actions/{id} [delete]
func (h *ActionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.actionService.Delete(r.Context(), auth.MustFromContext(r.Context()), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Action deleted")
}

// ListByLead godoc
// @Summary List follow-up actions for a lead
// @Tags Actions
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /leads/{id}/actions [get]
func (h *ActionHandler) ListByLead(w http.ResponseWriter, r *http.Request) {
	leadID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	actions, err := h.actionService.ListByLead(r.Context(), leadID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, actions)
}

// ListToday godoc
// @Summary List actions planned for the current office day
// @Tags Actions
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /actions/today [get]
func (h *ActionHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	actions, err := h.actionService.ListToday(r.Context(), auth.MustFromContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to list today's actions", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, actions)
}

// ListOverdue godoc
// @Summary List undone actions planned before today
// @Tags Actions
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /actions/overdue [get]
func (h *ActionHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	actions, err := h.actionService.ListOverdue(r.Context(), auth.MustFromContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to list overdue actions", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, actions)
}
