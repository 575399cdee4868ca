package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"github.com/leadforge/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTeamService(db *gorm.DB) *service.TeamService {
	return service.NewTeamService(
		repository.NewTeamRepository(db),
		repository.NewAdminRepository(db),
		zap.NewNop(),
	)
}

func TestTeamService_CreateAndMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTeamService(db)
	ctx := context.Background()

	leader := testutil.CreateTestAdmin(t, db, "lead-alpha", domain.RoleTeamLead, "")
	member := testutil.CreateTestAdmin(t, db, "alice", domain.RoleManager, "")

	t.Run("create assigns membership and syncs the team string", func(t *testing.T) {
		team, err := svc.Create(ctx, &domain.CreateTeamRequest{
			Name:       "Alpha",
			LeaderIDs:  []uuid.UUID{leader.ID},
			ManagerIDs: []uuid.UUID{member.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{leader.ID}, team.LeaderIDs)
		assert.Equal(t, []uuid.UUID{member.ID}, team.ManagerIDs)

		var synced domain.Admin
		require.NoError(t, db.Where("id = ?", member.ID).First(&synced).Error)
		assert.Equal(t, "Alpha", synced.Team)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateTeamRequest{Name: "Alpha"})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("an id listed as both leader and manager counts once", func(t *testing.T) {
		team, err := svc.Create(ctx, &domain.CreateTeamRequest{
			Name:       "Beta",
			LeaderIDs:  []uuid.UUID{leader.ID},
			ManagerIDs: []uuid.UUID{leader.ID},
		})
		require.NoError(t, err)
		assert.Len(t, team.LeaderIDs, 1)
		assert.Empty(t, team.ManagerIDs)
	})
}

func TestTeamService_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTeamService(db)
	ctx := context.Background()

	member := testutil.CreateTestAdmin(t, db, "bob", domain.RoleManager, "")
	team, err := svc.Create(ctx, &domain.CreateTeamRequest{
		Name:       "Gamma",
		ManagerIDs: []uuid.UUID{member.ID},
	})
	require.NoError(t, err)

	t.Run("rename propagates to member admins", func(t *testing.T) {
		name := "Gamma Prime"
		updated, err := svc.Update(ctx, team.ID, &domain.UpdateTeamRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Gamma Prime", updated.Name)

		var synced domain.Admin
		require.NoError(t, db.Where("id = ?", member.ID).First(&synced).Error)
		assert.Equal(t, "Gamma Prime", synced.Team)
	})

	t.Run("membership replacement clears removed members", func(t *testing.T) {
		empty := []uuid.UUID{}
		_, err := svc.Update(ctx, team.ID, &domain.UpdateTeamRequest{ManagerIDs: &empty})
		require.NoError(t, err)

		var synced domain.Admin
		require.NoError(t, db.Where("id = ?", member.ID).First(&synced).Error)
		assert.Empty(t, synced.Team)
	})

	t.Run("delete detaches remaining members", func(t *testing.T) {
		carol := testutil.CreateTestAdmin(t, db, "carol", domain.RoleManager, "")
		_, err := svc.Update(ctx, team.ID, &domain.UpdateTeamRequest{ManagerIDs: &[]uuid.UUID{carol.ID}})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, team.ID))

		_, err = svc.Get(ctx, team.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)

		var synced domain.Admin
		require.NoError(t, db.Where("id = ?", carol.ID).First(&synced).Error)
		assert.Empty(t, synced.Team)
	})
}
