package handler

import (
	"net/http"

	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

type TeamHandler struct {
	teamService *service.TeamService
	logger      *zap.Logger
}

func NewTeamHandler(teamService *service.TeamService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{teamService: teamService, logger: logger}
}

// List godoc
// @Summary List teams with their membership
// @Tags Teams
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /teams [get]
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list teams", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, teams)
}

// Get godoc
// @Summary Get a team
// @Tags Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /teams/{id} [get]
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	team, err := h.teamService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, team)
}

// Create godoc
// @Summary Create a team
// @Tags Teams
// @Accept json
// @Produce json
// @Param request body domain.CreateTeamRequest true "Team name and members"
// @Success 201 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Security BearerAuth
// @Router /teams [post]
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTeamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	team, err := h.teamService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, team)
}

// Update godoc
// @Summary Rename a team or replace its membership
// @Tags Teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body domain.UpdateTeamRequest true "Fields to change"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /teams/{id} [put]
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateTeamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	team, err := h.teamService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, team)
}

// Delete godoc
// @Summary Delete a team and detach its members
// @Tags Teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /teams/{id} [delete]
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.teamService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Team deleted")
}
