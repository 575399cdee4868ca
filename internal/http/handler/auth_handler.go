package handler

import (
	"net/http"

	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type authResponse struct {
	Admin  *domain.Admin     `json:"admin"`
	Tokens *domain.TokenPair `json:"tokens"`
}

// Register godoc
// @Summary Register a new admin account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterRequest true "Account details"
// @Success 201 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse
// @Failure 409 {object} domain.APIResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	admin, tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, authResponse{Admin: admin, Tokens: tokens})
}

// Login godoc
// @Summary Sign in with login and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.APIResponse
// @Failure 401 {object} domain.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	admin, tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, authResponse{Admin: admin, Tokens: tokens})
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RefreshRequest true "Refresh token"
// @Success 200 {object} domain.APIResponse
// @Failure 401 {object} domain.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, tokens)
}

// Logout godoc
// @Summary Invalidate the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	if err := h.authService.Logout(r.Context(), user.AdminID); err != nil {
		h.logger.Error("failed to logout", zap.String("login", user.Login), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Logged out")
}

// Me godoc
// @Summary Get the authenticated account
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.APIResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	admin, err := h.authService.Me(r.Context(), user.AdminID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, admin)
}
