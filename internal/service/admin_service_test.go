package service_test

import (
	"context"
	"testing"

	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"github.com/leadforge/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAdminService(db *gorm.DB) *service.AdminService {
	return service.NewAdminService(repository.NewAdminRepository(db), zap.NewNop())
}

func TestAdminService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newAdminService(db)
	ctx := context.Background()

	t.Run("provisions an active account with a hashed password", func(t *testing.T) {
		admin, err := svc.Create(ctx, &domain.RegisterRequest{
			Login:    "provisioned",
			Password: "s3cret-pass",
			Name:     "Provisioned User",
			Role:     domain.RoleTeamLead,
			Team:     "Alpha",
		})
		require.NoError(t, err)
		assert.True(t, admin.IsActive)
		assert.Equal(t, domain.RoleTeamLead, admin.Role)
		assert.NotEqual(t, "s3cret-pass", admin.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("s3cret-pass")))
		// No session is opened for the new account
		assert.Empty(t, admin.RefreshToken)
	})

	t.Run("defaults the role to manager", func(t *testing.T) {
		admin, err := svc.Create(ctx, &domain.RegisterRequest{Login: "plain", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleManager, admin.Role)
	})

	t.Run("duplicate login is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.RegisterRequest{Login: "provisioned", Password: "another-pass"})
		assert.ErrorIs(t, err, service.ErrLoginTaken)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.RegisterRequest{Login: "roleless", Password: "s3cret-pass", Role: "overlord"})
		assert.ErrorIs(t, err, service.ErrInvalidRole)
	})
}
