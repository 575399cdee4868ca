package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"go.uber.org/zap"
)

// AdminLookup resolves the current account record for token claims. The
// database stays authoritative for role, team and active flag; tokens only
// prove identity.
type AdminLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens *TokenManager
	admins AdminLookup
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(tokens *TokenManager, admins AdminLookup, apiKey string, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		admins: admins,
		apiKey: apiKey,
		logger: logger,
	}
}

// Authenticate validates the Bearer access token and loads the admin account
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := m.tokens.ValidateAccess(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			unauthorized(w, "invalid token")
			return
		}

		admin, err := m.admins.GetByID(r.Context(), claims.AdminID)
		if err != nil || admin == nil || !admin.IsActive {
			m.logger.Warn("token for unknown or inactive account",
				zap.String("admin_id", claims.AdminID.String()),
				zap.String("path", r.URL.Path),
			)
			unauthorized(w, "account not active")
			return
		}

		userCtx := &UserContext{
			AdminID: admin.ID,
			Login:   admin.Login,
			Name:    admin.Name,
			Role:    admin.Role,
			Team:    admin.Team,
		}
		ctx := WithUserContext(r.Context(), userCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the authenticated admin holds one of the given roles
func (m *Middleware) RequireRole(roles ...domain.AdminRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				forbidden(w, "no user context")
				return
			}
			if !userCtx.HasAnyRole(roles...) {
				forbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIKey guards partner integration endpoints. The key arrives in the
// X-API-Key header or as an Authorization bearer token; X-API-Key is checked
// first.
func (m *Middleware) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			key = bearerToken(r)
		}
		if !m.validateAPIKey(key) {
			m.logger.Warn("invalid API key attempt",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			unauthorized(w, "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" || key == "" {
		return false
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func unauthorized(w http.ResponseWriter, detail string) {
	writeAuthError(w, http.StatusUnauthorized, detail)
}

func forbidden(w http.ResponseWriter, detail string) {
	writeAuthError(w, http.StatusForbidden, detail)
}

func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"success":false,"error":"` + detail + `"}`))
}
