package handler

import (
	"net/http"

	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService *service.AdminService
	logger       *zap.Logger
}

func NewAdminHandler(adminService *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, logger: logger}
}

// List godoc
// @Summary List admin accounts
// @Tags Admins
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Login or name fragment"
// @Param role query string false "Filter by role"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /admins [get]
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 50)
	search := r.URL.Query().Get("search")

	var role *domain.AdminRole
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed := domain.AdminRole(raw)
		if !parsed.IsValid() {
			respondError(w, http.StatusBadRequest, "Unknown role")
			return
		}
		role = &parsed
	}

	admins, total, err := h.adminService.List(r.Context(), page, pageSize, search, role)
	if err != nil {
		h.logger.Error("failed to list admins", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondPaginated(w, admins, page, pageSize, total)
}

// Create godoc
// @Summary Provision an admin account
// @Tags Admins
// @Accept json
// @Produce json
// @Param request body domain.RegisterRequest true "Account details"
// @Success 201 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Security BearerAuth
// @Router /admins [post]
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	admin, err := h.adminService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, admin)
}

// Get godoc
// @Summary Get an admin account
// @Tags Admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} domain.APIResponse
// @Failure 404 {object} domain.APIResponse
// @Security BearerAuth
// @Router /admins/{id} [get]
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	admin, err := h.adminService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, admin)
}

// Update godoc
// @Summary Update an admin account
// @Tags Admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param request body domain.UpdateAdminRequest true "Fields to change"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /admins/{id} [put]
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateAdminRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	admin, err := h.adminService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, admin)
}

// Delete godoc
// @Summary Delete an admin account
// @Tags Admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /admins/{id} [delete]
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.adminService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Admin deleted")
}
