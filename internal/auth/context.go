package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
)

// UserContext holds the authenticated admin for the current request
type UserContext struct {
	AdminID uuid.UUID
	Login   string
	Name    string
	Role    domain.AdminRole
	Team    string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics. Only call behind the
// authentication middleware.
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if the admin holds a specific role
func (u *UserContext) HasRole(role domain.AdminRole) bool {
	return u.Role == role
}

// HasAnyRole checks if the admin holds any of the given roles
func (u *UserContext) HasAnyRole(roles ...domain.AdminRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsElevated reports whether the admin sees all leads regardless of assignment
func (u *UserContext) IsElevated() bool {
	return u.HasAnyRole(domain.RoleSuperAdmin, domain.RoleAdmin)
}

// IsTeamLead reports whether the admin manages a team scope
func (u *UserContext) IsTeamLead() bool {
	return u.Role == domain.RoleTeamLead
}

// SelfOnly reports whether visibility collapses to the admin's own leads.
// Managers and reten operators always see only their own assignments, as
// does anyone on the quarantine team regardless of role.
func (u *UserContext) SelfOnly() bool {
	if u.Team == domain.TeamFantom {
		return true
	}
	return u.HasAnyRole(domain.RoleManager, domain.RoleReten)
}
