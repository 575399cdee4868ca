package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/realtime"
	"github.com/leadforge/crm-api/internal/repository"
	"github.com/leadforge/crm-api/internal/service"
	"github.com/leadforge/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newLeadService(db *gorm.DB) *service.LeadService {
	logger := zap.NewNop()
	history := service.NewHistoryService(repository.NewLeadHistoryRepository(db), logger)
	actionsCfg := config.ActionsConfig{UTCOffsetHours: 3}
	return service.NewLeadService(
		repository.NewLeadRepository(db),
		repository.NewLeadNoteRepository(db),
		repository.NewAdminRepository(db),
		repository.NewTeamRepository(db),
		history,
		realtime.NewHub(logger),
		actionsCfg.Location(),
		logger,
	)
}

func userCtx(login string, role domain.AdminRole, team string) *auth.UserContext {
	return &auth.UserContext{Login: login, Name: login, Role: role, Team: team}
}

func TestLeadService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	t.Run("normalizes phone and defaults status", func(t *testing.T) {
		lead, err := svc.Create(ctx, admin, &domain.CreateLeadRequest{
			Name:  "Ivan Petrov",
			Phone: "+1 (555) 123-4567",
		})
		require.NoError(t, err)
		assert.Equal(t, "15551234567", lead.NormalizedPhone)
		assert.Equal(t, domain.DefaultLeadStatus, lead.Status)
	})

	t.Run("keeps explicit status", func(t *testing.T) {
		lead, err := svc.Create(ctx, admin, &domain.CreateLeadRequest{
			Name:   "Maria",
			Status: "IN_PROGRESS",
		})
		require.NoError(t, err)
		assert.Equal(t, "IN_PROGRESS", lead.Status)
	})

	t.Run("records a creation history entry", func(t *testing.T) {
		lead, err := svc.Create(ctx, admin, &domain.CreateLeadRequest{Name: "Audited"})
		require.NoError(t, err)

		var entries []domain.LeadHistory
		require.NoError(t, db.Where("lead_id = ?", lead.ID).Find(&entries).Error)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.HistoryActionCreated, entries[0].Action)
		assert.Equal(t, "boss", entries[0].AdminID)
	})
}

func TestLeadService_Visibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	ctx := context.Background()

	testutil.CreateTestAdmin(t, db, "alice", domain.RoleManager, "Alpha")
	testutil.CreateTestAdmin(t, db, "bob", domain.RoleManager, "Alpha")
	testutil.CreateTestAdmin(t, db, "carol", domain.RoleManager, "Beta")
	testutil.CreateTestLead(t, db, "Lead A", "111", "alice")
	testutil.CreateTestLead(t, db, "Lead B", "222", "bob")
	testutil.CreateTestLead(t, db, "Lead C", "333", "carol")
	testutil.CreateTestLead(t, db, "Unowned", "444", "")

	t.Run("manager sees only own leads", func(t *testing.T) {
		leads, total, err := svc.List(ctx, userCtx("alice", domain.RoleManager, "Alpha"), &service.ListLeadsQuery{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, leads, 1)
		assert.Equal(t, "alice", leads[0].AssignedTo)
	})

	t.Run("team lead sees team members and self", func(t *testing.T) {
		tl := userCtx("tl", domain.RoleTeamLead, "Alpha")
		leads, total, err := svc.List(ctx, tl, &service.ListLeadsQuery{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		for _, l := range leads {
			assert.Contains(t, []string{"alice", "bob", "tl"}, l.AssignedTo)
		}
	})

	t.Run("team lead filtering on an outside assignee gets nothing", func(t *testing.T) {
		tl := userCtx("tl", domain.RoleTeamLead, "Alpha")
		_, total, err := svc.List(ctx, tl, &service.ListLeadsQuery{AssignedTo: "carol"})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("team lead of unknown team sees nothing", func(t *testing.T) {
		tl := userCtx("ghost", domain.RoleTeamLead, "Nonexistent")
		_, total, err := svc.List(ctx, tl, &service.ListLeadsQuery{})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		_, total, err := svc.List(ctx, userCtx("boss", domain.RoleAdmin, ""), &service.ListLeadsQuery{})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
	})

	t.Run("quarantine team collapses admin to self only", func(t *testing.T) {
		_, total, err := svc.List(ctx, userCtx("shadow", domain.RoleAdmin, domain.TeamFantom), &service.ListLeadsQuery{})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("manager cannot fetch another manager's lead", func(t *testing.T) {
		var other domain.Lead
		require.NoError(t, db.Where("assigned_to = ?", "bob").First(&other).Error)
		_, err := svc.Get(ctx, userCtx("alice", domain.RoleManager, "Alpha"), other.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestLeadService_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	testutil.CreateTestLead(t, db, "Ivan Petrov", "+380 (67) 123-45-67", "")
	testutil.CreateTestLead(t, db, "John Smith", "+1 555 000 1111", "")
	testutil.CreateTestLead(t, db, "Sale 100% Real", "+7 777 222 3333", "")

	t.Run("finds by name fragment", func(t *testing.T) {
		leads, total, err := svc.List(ctx, admin, &service.ListLeadsQuery{Search: "petrov"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, leads, 1)
		assert.Equal(t, "Ivan Petrov", leads[0].Name)
	})

	t.Run("finds by differently formatted phone", func(t *testing.T) {
		_, total, err := svc.List(ctx, admin, &service.ListLeadsQuery{Search: "0671234567"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		_, total, err := svc.List(ctx, admin, &service.ListLeadsQuery{Search: "nobody"})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("percent sign matches literally, not as a wildcard", func(t *testing.T) {
		leads, total, err := svc.List(ctx, admin, &service.ListLeadsQuery{Search: "100%"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, leads, 1)
		assert.Equal(t, "Sale 100% Real", leads[0].Name)

		_, total, err = svc.List(ctx, admin, &service.ListLeadsQuery{Search: "%"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("underscore matches literally, not as a wildcard", func(t *testing.T) {
		_, total, err := svc.List(ctx, admin, &service.ListLeadsQuery{Search: "j_hn"})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})
}

func TestLeadService_StatusFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	for _, status := range []string{"NEW", "NEW", "IN_PROGRESS", "CLOSED"} {
		lead := testutil.CreateTestLead(t, db, "L "+status, "", "")
		require.NoError(t, db.Model(lead).Update("status", status).Error)
	}

	t.Run("only mode keeps named statuses", func(t *testing.T) {
		_, total, err := svc.List(ctx, admin, &service.ListLeadsQuery{Statuses: []string{"NEW"}, StatusMode: "only"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("exclude mode drops named statuses", func(t *testing.T) {
		_, total, err := svc.List(ctx, admin, &service.ListLeadsQuery{Statuses: []string{"NEW"}, StatusMode: "exclude"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})
}

func TestLeadService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	t.Run("status change is recorded", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, "Statusful", "123", "")

		updated, err := svc.ChangeStatus(ctx, admin, lead.ID, "IN_PROGRESS")
		require.NoError(t, err)
		assert.Equal(t, "IN_PROGRESS", updated.Status)

		var entries []domain.LeadHistory
		require.NoError(t, db.Where("lead_id = ? AND action = ?", lead.ID, domain.HistoryActionStatusChanged).Find(&entries).Error)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Description, "NEW")
		assert.Contains(t, entries[0].Description, "IN_PROGRESS")
	})

	t.Run("phone change renormalizes", func(t *testing.T) {
		lead := testutil.CreateTestLead(t, db, "Phoney", "111", "")
		newPhone := "+49 (30) 555-222"

		updated, err := svc.Update(ctx, admin, lead.ID, &domain.UpdateLeadRequest{Phone: &newPhone})
		require.NoError(t, err)
		assert.Equal(t, "4930555222", updated.NormalizedPhone)
	})

	t.Run("team lead assignment stamps the timestamp", func(t *testing.T) {
		testutil.CreateTestAdmin(t, db, "member", domain.RoleManager, "Gamma")
		lead := testutil.CreateTestLead(t, db, "Assignable", "", "member")

		tl := userCtx("lead-gamma", domain.RoleTeamLead, "Gamma")
		updated, err := svc.Assign(ctx, tl, lead.ID, "lead-gamma")
		require.NoError(t, err)
		assert.Equal(t, "lead-gamma", updated.AssignedTo)
		require.NotNil(t, updated.TeamLeadAssignedAt)
	})
}

func TestLeadService_Notes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")
	lead := testutil.CreateTestLead(t, db, "Notable", "123", "")

	t.Run("note without text or photo is rejected", func(t *testing.T) {
		_, err := svc.AddNote(ctx, admin, lead.ID, &domain.AddNoteRequest{})
		assert.ErrorIs(t, err, service.ErrEmptyNote)
	})

	t.Run("photo only note gets placeholder text", func(t *testing.T) {
		note, err := svc.AddNote(ctx, admin, lead.ID, &domain.AddNoteRequest{Photo: "/uploads/2026/08/pic.jpg"})
		require.NoError(t, err)
		assert.Equal(t, domain.NotePlaceholderText, note.Text)
		assert.Equal(t, "/uploads/2026/08/pic.jpg", note.Photo)
	})

	t.Run("edit and delete address notes by id", func(t *testing.T) {
		note, err := svc.AddNote(ctx, admin, lead.ID, &domain.AddNoteRequest{Text: "first"})
		require.NoError(t, err)

		edited, err := svc.EditNote(ctx, admin, lead.ID, note.ID, &domain.AddNoteRequest{Text: "second"})
		require.NoError(t, err)
		assert.Equal(t, "second", edited.Text)

		require.NoError(t, svc.DeleteNote(ctx, admin, lead.ID, note.ID))

		err = svc.DeleteNote(ctx, admin, lead.ID, note.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestLeadService_BulkOperations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLeadService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	a := testutil.CreateTestLead(t, db, "Bulk A", "", "")
	b := testutil.CreateTestLead(t, db, "Bulk B", "", "")

	t.Run("manager cannot bulk delete", func(t *testing.T) {
		_, err := svc.BulkDelete(ctx, userCtx("m", domain.RoleManager, ""), []uuid.UUID{a.ID})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("bulk update requires at least one change", func(t *testing.T) {
		_, err := svc.BulkUpdate(ctx, admin, &domain.BulkUpdateLeadsRequest{IDs: []uuid.UUID{a.ID}})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("bulk status update touches all rows", func(t *testing.T) {
		status := "CLOSED"
		affected, err := svc.BulkUpdate(ctx, admin, &domain.BulkUpdateLeadsRequest{
			IDs:    []uuid.UUID{a.ID, b.ID},
			Status: &status,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 2, affected)
	})

	t.Run("bulk delete removes rows", func(t *testing.T) {
		affected, err := svc.BulkDelete(ctx, admin, []uuid.UUID{a.ID, b.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 2, affected)
	})
}
