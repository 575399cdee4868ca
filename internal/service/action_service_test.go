package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
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

func newActionService(db *gorm.DB) *service.ActionService {
	actionsCfg := config.ActionsConfig{UTCOffsetHours: 3}
	return service.NewActionService(
		repository.NewActionRepository(db),
		repository.NewLeadRepository(db),
		actionsCfg.Location(),
		zap.NewNop(),
	)
}

func TestActionService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newActionService(db)
	ctx := context.Background()
	manager := userCtx("alice", domain.RoleManager, "")

	lead := testutil.CreateTestLead(t, db, "Follow Up Lead", "", "alice")

	t.Run("defaults assignee to the caller", func(t *testing.T) {
		planDate := time.Now().Add(2 * time.Hour)
		action, err := svc.Create(ctx, manager, &domain.CreateActionRequest{
			LeadID:   lead.ID,
			Comment:  "call back",
			PlanDate: &planDate,
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", action.AssignedTo)
		assert.False(t, action.IsDone)
	})

	t.Run("missing plan date is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, manager, &domain.CreateActionRequest{LeadID: lead.ID})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("unknown lead is rejected", func(t *testing.T) {
		planDate := time.Now()
		_, err := svc.Create(ctx, manager, &domain.CreateActionRequest{
			LeadID:   uuid.New(),
			PlanDate: &planDate,
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestActionService_TodayAndOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newActionService(db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Scheduled Lead", "", "alice")

	seed := func(assignedTo string, planDate time.Time, done bool) {
		require.NoError(t, db.Create(&domain.Action{
			LeadID:     lead.ID,
			AssignedTo: assignedTo,
			PlanDate:   planDate.UTC(),
			IsDone:     done,
		}).Error)
	}

	// Anchor on the office-day boundary so the test is stable at any hour
	loc := (&config.ActionsConfig{UTCOffsetHours: 3}).Location()
	local := time.Now().In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	seed("alice", dayStart.Add(12*time.Hour), false)  // today
	seed("alice", dayStart.Add(-12*time.Hour), false) // overdue
	seed("alice", dayStart.Add(-12*time.Hour), true)  // done, not overdue
	seed("bob", dayStart.Add(-12*time.Hour), false)   // someone else's
	seed("alice", dayStart.Add(36*time.Hour), false)  // tomorrow

	t.Run("manager sees only own today actions", func(t *testing.T) {
		actions, err := svc.ListToday(ctx, userCtx("alice", domain.RoleManager, ""))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.Equal(t, "alice", actions[0].AssignedTo)
	})

	t.Run("overdue excludes done and future actions", func(t *testing.T) {
		actions, err := svc.ListOverdue(ctx, userCtx("alice", domain.RoleManager, ""))
		require.NoError(t, err)
		require.Len(t, actions, 1)
		assert.False(t, actions[0].IsDone)
	})

	t.Run("admin sees every overdue action", func(t *testing.T) {
		actions, err := svc.ListOverdue(ctx, userCtx("boss", domain.RoleAdmin, ""))
		require.NoError(t, err)
		assert.Len(t, actions, 2)
	})
}

func TestActionService_UpdatePermissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newActionService(db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Guarded Lead", "", "alice")
	planDate := time.Now().Add(time.Hour)
	action, err := svc.Create(ctx, userCtx("alice", domain.RoleManager, ""), &domain.CreateActionRequest{
		LeadID:   lead.ID,
		PlanDate: &planDate,
	})
	require.NoError(t, err)

	t.Run("another manager cannot touch it", func(t *testing.T) {
		done := true
		_, err := svc.Update(ctx, userCtx("bob", domain.RoleManager, ""), action.ID, &domain.UpdateActionRequest{IsDone: &done})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("owner can mark it done", func(t *testing.T) {
		done := true
		updated, err := svc.Update(ctx, userCtx("alice", domain.RoleManager, ""), action.ID, &domain.UpdateActionRequest{IsDone: &done})
		require.NoError(t, err)
		assert.True(t, updated.IsDone)
	})

	t.Run("admin can delete any action", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, userCtx("boss", domain.RoleAdmin, ""), action.ID))
		_, err := svc.Get(ctx, action.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
