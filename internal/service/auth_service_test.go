package service_test

import (
	"context"
	"testing"

	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"github.com/leadforge/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *service.AuthService {
	tokens := auth.NewTokenManager(&config.JWTConfig{
		AccessSecret:     "test-access-secret",
		RefreshSecret:    "test-refresh-secret",
		AccessTTLMinutes: 15,
		RefreshTTLDays:   7,
		Issuer:           "leadforge-test",
	})
	return service.NewAuthService(repository.NewAdminRepository(db), tokens, zap.NewNop())
}

func TestAuthService_Register(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	t.Run("creates an account and signs it in", func(t *testing.T) {
		admin, pair, err := svc.Register(ctx, &domain.RegisterRequest{
			Login:    "newcomer",
			Password: "password123",
			Name:     "New Comer",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleManager, admin.Role)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("duplicate login is rejected", func(t *testing.T) {
		_, _, err := svc.Register(ctx, &domain.RegisterRequest{
			Login:    "newcomer",
			Password: "password123",
		})
		assert.ErrorIs(t, err, service.ErrLoginTaken)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, _, err := svc.Register(ctx, &domain.RegisterRequest{
			Login:    "weirdo",
			Password: "password123",
			Role:     "director",
		})
		assert.ErrorIs(t, err, service.ErrInvalidRole)
	})
}

func TestAuthService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	seeded := testutil.CreateTestAdmin(t, db, "alice", domain.RoleManager, "Alpha")

	t.Run("valid credentials issue a pair", func(t *testing.T) {
		admin, pair, err := svc.Login(ctx, &domain.LoginRequest{Login: "alice", Password: "password123"})
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, admin.ID)
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, _, err := svc.Login(ctx, &domain.LoginRequest{Login: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown login is rejected with the same error", func(t *testing.T) {
		_, _, err := svc.Login(ctx, &domain.LoginRequest{Login: "nobody", Password: "password123"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("deactivated account cannot sign in", func(t *testing.T) {
		require.NoError(t, db.Model(seeded).Update("is_active", false).Error)
		_, _, err := svc.Login(ctx, &domain.LoginRequest{Login: "alice", Password: "password123"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAuthService_RefreshRotation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	testutil.CreateTestAdmin(t, db, "bob", domain.RoleManager, "")
	_, pair, err := svc.Login(ctx, &domain.LoginRequest{Login: "bob", Password: "password123"})
	require.NoError(t, err)

	t.Run("refresh issues a new pair", func(t *testing.T) {
		next, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, next.AccessToken)

		t.Run("the replaced token no longer works", func(t *testing.T) {
			_, err := svc.Refresh(ctx, pair.RefreshToken)
			assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
		})
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-token")
		assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	admin := testutil.CreateTestAdmin(t, db, "carol", domain.RoleManager, "")
	_, pair, err := svc.Login(ctx, &domain.LoginRequest{Login: "carol", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, admin.ID))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidRefreshToken)
}
