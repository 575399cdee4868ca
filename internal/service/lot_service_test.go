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

func newLotService(db *gorm.DB) *service.LotService {
	logger := zap.NewNop()
	history := service.NewHistoryService(repository.NewLeadHistoryRepository(db), logger)
	return service.NewLotService(
		repository.NewLotRepository(db),
		repository.NewLeadRepository(db),
		history,
		logger,
	)
}

func TestLotService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLotService(db)
	ctx := context.Background()

	lead := testutil.CreateTestLead(t, db, "Deal Lead", "+380671112233", "closer")

	t.Run("snapshots lead contact onto the lot", func(t *testing.T) {
		lot, err := svc.Create(ctx, userCtx("closer", domain.RoleReten, "Alpha"), &domain.CreateLotRequest{
			LeadID: lead.ID,
			Name:   "Big Deal",
			Amount: 1000,
		})
		require.NoError(t, err)
		assert.Equal(t, "Deal Lead", lot.LeadName)
		assert.Equal(t, "+380671112233", lot.LeadPhone)
		assert.Equal(t, domain.LotStatusActive, lot.Status)
		assert.Equal(t, "closer", lot.AssignedTo)
		assert.Equal(t, "Alpha", lot.Team)
	})

	t.Run("reten cannot close another manager's lead", func(t *testing.T) {
		_, err := svc.Create(ctx, userCtx("intruder", domain.RoleReten, ""), &domain.CreateLotRequest{
			LeadID: lead.ID,
			Name:   "Stolen Deal",
		})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("unknown lead is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, userCtx("boss", domain.RoleAdmin, ""), &domain.CreateLotRequest{
			LeadID: uuid.New(),
			Name:   "Orphan",
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestLotService_UpdateAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLotService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	lead := testutil.CreateTestLead(t, db, "Amount Lead", "123", "")
	lot, err := svc.Create(ctx, admin, &domain.CreateLotRequest{
		LeadID: lead.ID,
		Name:   "Amounts",
		Amount: 1000,
	})
	require.NoError(t, err)

	t.Run("equal amount is rejected", func(t *testing.T) {
		_, err := svc.UpdateAmount(ctx, admin, lot.ID, &domain.UpdateLotAmountRequest{Amount: 1000})
		assert.ErrorIs(t, err, service.ErrSameAmount)
	})

	t.Run("each change appends to the audit history in order", func(t *testing.T) {
		updated, err := svc.UpdateAmount(ctx, admin, lot.ID, &domain.UpdateLotAmountRequest{Amount: 1500, Reason: "upsell"})
		require.NoError(t, err)
		assert.Equal(t, 1500.0, updated.Amount)

		updated, err = svc.UpdateAmount(ctx, admin, lot.ID, &domain.UpdateLotAmountRequest{Amount: 1200, Reason: "partial refund"})
		require.NoError(t, err)
		assert.Equal(t, 1200.0, updated.Amount)

		require.Len(t, updated.AmountHistory, 2)
		assert.Equal(t, 1000.0, updated.AmountHistory[0].PreviousAmount)
		assert.Equal(t, 1500.0, updated.AmountHistory[0].NewAmount)
		assert.Equal(t, 1500.0, updated.AmountHistory[1].PreviousAmount)
		assert.Equal(t, 1200.0, updated.AmountHistory[1].NewAmount)
		assert.Equal(t, "boss", updated.AmountHistory[0].EditorID)
		assert.Equal(t, "partial refund", updated.AmountHistory[1].Reason)
	})
}

func TestLotService_SoftDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLotService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	lead := testutil.CreateTestLead(t, db, "Archive Lead", "456", "")
	lot, err := svc.Create(ctx, admin, &domain.CreateLotRequest{
		LeadID: lead.ID,
		Name:   "Archivable",
		Amount: 500,
	})
	require.NoError(t, err)

	t.Run("manager cannot delete", func(t *testing.T) {
		_, err := svc.Delete(ctx, userCtx("m", domain.RoleManager, ""), lot.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("delete archives instead of removing", func(t *testing.T) {
		deleted, err := svc.Delete(ctx, admin, lot.ID)
		require.NoError(t, err)
		assert.True(t, deleted.IsDeleted)
		assert.Equal(t, domain.LotStatusArchived, deleted.Status)
		assert.Equal(t, "boss", deleted.DeletedBy)
		require.NotNil(t, deleted.DeletedAt)
	})

	t.Run("archived lots drop out of the default listing", func(t *testing.T) {
		lots, total, err := svc.List(ctx, admin, 1, 50, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
		assert.Empty(t, lots)

		_, total, err = svc.List(ctx, admin, 1, 50, &repository.LotFilters{IncludeDeleted: true})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("amount change on an archived lot is rejected", func(t *testing.T) {
		_, err := svc.UpdateAmount(ctx, admin, lot.ID, &domain.UpdateLotAmountRequest{Amount: 700})
		assert.ErrorIs(t, err, service.ErrLotDeleted)
	})

	t.Run("restore reactivates", func(t *testing.T) {
		restored, err := svc.Restore(ctx, admin, lot.ID)
		require.NoError(t, err)
		assert.False(t, restored.IsDeleted)
		assert.Equal(t, domain.LotStatusActive, restored.Status)
		assert.Empty(t, restored.DeletedBy)

		_, total, err := svc.List(ctx, admin, 1, 50, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}

func TestLotService_Totals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLotService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	lead := testutil.CreateTestLead(t, db, "Totals Lead", "555", "seller")
	open, err := svc.Create(ctx, admin, &domain.CreateLotRequest{
		LeadID: lead.ID, Name: "Open", Amount: 1000, AssignedTo: "seller", Team: "Alpha",
	})
	require.NoError(t, err)
	settled, err := svc.Create(ctx, admin, &domain.CreateLotRequest{
		LeadID: lead.ID, Name: "Settled", Amount: 500, AssignedTo: "seller", Team: "Alpha",
	})
	require.NoError(t, err)

	paid := true
	_, err = svc.UpdatePayout(ctx, admin, settled.ID, &domain.UpdateLotPayoutRequest{IsPaid: &paid})
	require.NoError(t, err)

	t.Run("splits paid and unpaid amounts", func(t *testing.T) {
		totals, err := svc.Totals(ctx, admin, nil)
		require.NoError(t, err)
		assert.Equal(t, 1500.0, totals.TotalAmount)
		assert.Equal(t, 500.0, totals.PaidAmount)
		assert.Equal(t, 1000.0, totals.UnpaidAmount)
	})

	t.Run("restricted caller only sums own lots", func(t *testing.T) {
		totals, err := svc.Totals(ctx, userCtx("someone-else", domain.RoleManager, "Beta"), nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, totals.TotalAmount)
	})

	t.Run("archived lots drop out of the sums", func(t *testing.T) {
		_, err := svc.Delete(ctx, admin, open.ID)
		require.NoError(t, err)

		totals, err := svc.Totals(ctx, admin, nil)
		require.NoError(t, err)
		assert.Equal(t, 500.0, totals.TotalAmount)
	})
}

func TestLotService_Payout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newLotService(db)
	ctx := context.Background()
	admin := userCtx("boss", domain.RoleAdmin, "")

	lead := testutil.CreateTestLead(t, db, "Payout Lead", "789", "")
	lot, err := svc.Create(ctx, admin, &domain.CreateLotRequest{
		LeadID: lead.ID,
		Name:   "Payable",
		Amount: 2000,
		Team:   "Alpha",
	})
	require.NoError(t, err)

	t.Run("team lead of another team is rejected", func(t *testing.T) {
		payout := 200.0
		_, err := svc.UpdatePayout(ctx, userCtx("tl", domain.RoleTeamLead, "Beta"), lot.ID, &domain.UpdateLotPayoutRequest{Payout: &payout})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("payout and paid flag are applied", func(t *testing.T) {
		payout := 200.0
		paid := true
		updated, err := svc.UpdatePayout(ctx, admin, lot.ID, &domain.UpdateLotPayoutRequest{Payout: &payout, IsPaid: &paid})
		require.NoError(t, err)
		assert.Equal(t, 200.0, updated.Payout)
		assert.True(t, updated.IsPaid)
	})

	t.Run("empty payout update is rejected", func(t *testing.T) {
		_, err := svc.UpdatePayout(ctx, admin, lot.ID, &domain.UpdateLotPayoutRequest{})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}
