package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	return NewTokenManager(&config.JWTConfig{
		AccessSecret:     "access-secret-for-tests",
		RefreshSecret:    "refresh-secret-for-tests",
		AccessTTLMinutes: 15,
		RefreshTTLDays:   7,
		Issuer:           "leadforge-test",
	})
}

func testAdmin() *domain.Admin {
	return &domain.Admin{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Login:     "jdoe",
		Name:      "J Doe",
		Role:      domain.RoleManager,
		Team:      "Alpha",
	}
}

func TestIssuePairAndValidate(t *testing.T) {
	m := newTestManager(t)
	admin := testAdmin()

	access, refresh, err := m.IssuePair(admin)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := m.ValidateAccess(access)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "jdoe", claims.Login)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.Equal(t, "Alpha", claims.Team)

	refreshClaims, err := m.ValidateRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, refreshClaims.AdminID)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	m := newTestManager(t)
	access, _, err := m.IssuePair(testAdmin())
	require.NoError(t, err)

	_, err = m.ValidateRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	m := newTestManager(t)
	other := NewTokenManager(&config.JWTConfig{
		AccessSecret:     "someone-elses-secret",
		RefreshSecret:    "someone-elses-refresh",
		AccessTTLMinutes: 15,
		RefreshTTLDays:   7,
		Issuer:           "leadforge-test",
	})

	access, _, err := other.IssuePair(testAdmin())
	require.NoError(t, err)

	_, err = m.ValidateAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := newTestManager(t)
	_, err := m.ValidateAccess("not.a.token")
	assert.Error(t, err)
}
