package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LotService owns the closed-deal lifecycle. Every mutation that carries an
// audit entry commits the lot write and the history write in one
// transaction.
type LotService struct {
	lotRepo  *repository.LotRepository
	leadRepo *repository.LeadRepository
	history  *HistoryService
	logger   *zap.Logger
}

func NewLotService(
	lotRepo *repository.LotRepository,
	leadRepo *repository.LeadRepository,
	history *HistoryService,
	logger *zap.Logger,
) *LotService {
	return &LotService{
		lotRepo:  lotRepo,
		leadRepo: leadRepo,
		history:  history,
		logger:   logger,
	}
}

// Get returns a lot with its ordered amount history
func (s *LotService) Get(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	lot, err := s.lotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return lot, nil
}

// List returns lots; soft-deleted lots are excluded unless requested
func (s *LotService) List(ctx context.Context, user *auth.UserContext, page, pageSize int, filters *repository.LotFilters) ([]domain.Lot, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	if filters == nil {
		filters = &repository.LotFilters{}
	}
	// Restricted callers only see their own lots; team leads their team's
	if user != nil {
		if user.SelfOnly() {
			filters.AssignedTo = &user.Login
		} else if user.IsTeamLead() {
			filters.Team = &user.Team
		}
	}
	return s.lotRepo.List(ctx, page, pageSize, filters)
}

// Totals sums lot amounts under the caller's visibility and the given
// filters. Archived lots stay excluded unless the filters include them.
func (s *LotService) Totals(ctx context.Context, user *auth.UserContext, filters *repository.LotFilters) (*domain.LotTotals, error) {
	if filters == nil {
		filters = &repository.LotFilters{}
	}
	if user != nil {
		if user.SelfOnly() {
			filters.AssignedTo = &user.Login
		} else if user.IsTeamLead() {
			filters.Team = &user.Team
		}
	}

	total, err := s.lotRepo.SumAmounts(ctx, filters)
	if err != nil {
		return nil, err
	}

	paidFilters := *filters
	paid := true
	paidFilters.IsPaid = &paid
	paidTotal, err := s.lotRepo.SumAmounts(ctx, &paidFilters)
	if err != nil {
		return nil, err
	}

	return &domain.LotTotals{
		TotalAmount:  total,
		PaidAmount:   paidTotal,
		UnpaidAmount: total - paidTotal,
	}, nil
}

// Create records a closed deal against an existing lead. A reten caller may
// only close a lead already assigned to themselves. The lead's contact
// snapshot is denormalized onto the lot.
func (s *LotService) Create(ctx context.Context, user *auth.UserContext, req *domain.CreateLotRequest) (*domain.Lot, error) {
	lead, err := s.leadRepo.GetByID(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if user != nil && user.Role == domain.RoleReten && lead.AssignedTo != user.Login {
		return nil, ErrPermissionDenied
	}

	lot := &domain.Lot{
		LeadID:     lead.ID,
		Name:       req.Name,
		Amount:     req.Amount,
		AssignedTo: req.AssignedTo,
		Team:       req.Team,
		Status:     domain.LotStatusActive,
		LeadName:   lead.Name,
		LeadPhone:  lead.Phone,
		LeadEmail:  lead.Email,
	}
	if req.Date != nil {
		lot.Date = *req.Date
	} else {
		lot.Date = time.Now().UTC()
	}
	if lot.AssignedTo == "" && user != nil {
		lot.AssignedTo = user.Login
	}
	if lot.Team == "" && user != nil {
		lot.Team = user.Team
	}

	entry := s.history.BuildEntry(lead.ID, domain.HistoryActionUpdated,
		fmt.Sprintf("Lot %q opened for %.2f", lot.Name, lot.Amount), user,
		map[string]interface{}{"leadName": lead.Name, "amount": lot.Amount})

	err = s.lotRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(lot).Error; err != nil {
			return err
		}
		return s.history.WriteTx(tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// UpdateAmount changes a lot's amount. The change is rejected when the new
// amount equals the current one; otherwise a history entry recording both
// values is appended before the new value is applied, in one transaction.
func (s *LotService) UpdateAmount(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.UpdateLotAmountRequest) (*domain.Lot, error) {
	lot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot.IsDeleted {
		return nil, ErrLotDeleted
	}
	if req.Amount == lot.Amount {
		return nil, ErrSameAmount
	}

	change := &domain.LotAmountChange{
		LotID:          lot.ID,
		PreviousAmount: lot.Amount,
		NewAmount:      req.Amount,
		Reason:         req.Reason,
	}
	if user != nil {
		change.EditorID = user.Login
		change.EditorName = user.Name
	}

	entry := s.history.BuildEntry(lot.LeadID, domain.HistoryActionUpdated,
		fmt.Sprintf("Lot %q amount changed from %.2f to %.2f", lot.Name, lot.Amount, req.Amount), user,
		map[string]interface{}{
			"previousAmount": lot.Amount,
			"newAmount":      req.Amount,
			"reason":         req.Reason,
		})

	err = s.lotRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(change).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Lot{}).Where("id = ?", lot.ID).
			Updates(map[string]interface{}{"amount": req.Amount, "updated_at": time.Now().UTC()}).Error; err != nil {
			return err
		}
		return s.history.WriteTx(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// UpdatePayout sets payout amount and/or paid flag. Admin roles may touch
// any lot; a team lead only lots belonging to their own team.
func (s *LotService) UpdatePayout(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.UpdateLotPayoutRequest) (*domain.Lot, error) {
	if user == nil || (!user.IsElevated() && !user.IsTeamLead()) {
		return nil, ErrPermissionDenied
	}

	lot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot.IsDeleted {
		return nil, ErrLotDeleted
	}
	if user.IsTeamLead() && lot.Team != user.Team {
		return nil, ErrPermissionDenied
	}

	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if req.Payout != nil {
		updates["payout"] = *req.Payout
	}
	if req.IsPaid != nil {
		updates["is_paid"] = *req.IsPaid
	}
	if len(updates) == 1 {
		return nil, ErrInvalidInput
	}

	entry := s.history.BuildEntry(lot.LeadID, domain.HistoryActionUpdated,
		fmt.Sprintf("Lot %q payout updated", lot.Name), user,
		map[string]interface{}{"payout": req.Payout, "isPaid": req.IsPaid})

	err = s.lotRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Lot{}).Where("id = ?", lot.ID).Updates(updates).Error; err != nil {
			return err
		}
		return s.history.WriteTx(tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete archives a lot: soft delete with actor and timestamp recorded.
// Admin roles only.
func (s *LotService) Delete(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.Lot, error) {
	if user == nil || !user.IsElevated() {
		return nil, ErrPermissionDenied
	}

	lot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot.IsDeleted {
		return lot, nil
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"is_deleted": true,
		"status":     domain.LotStatusArchived,
		"deleted_at": now,
		"deleted_by": user.Login,
		"updated_at": now,
	}

	entry := s.history.BuildEntry(lot.LeadID, domain.HistoryActionUpdated,
		fmt.Sprintf("Lot %q archived", lot.Name), user,
		map[string]interface{}{"lotId": lot.ID.String()})

	err = s.lotRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Lot{}).Where("id = ?", lot.ID).Updates(updates).Error; err != nil {
			return err
		}
		return s.history.WriteTx(tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Restore brings an archived lot back to the active state
func (s *LotService) Restore(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.Lot, error) {
	if user == nil || !user.IsElevated() {
		return nil, ErrPermissionDenied
	}

	lot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lot.IsDeleted {
		return lot, nil
	}

	updates := map[string]interface{}{
		"is_deleted": false,
		"status":     domain.LotStatusActive,
		"deleted_at": nil,
		"deleted_by": "",
		"updated_at": time.Now().UTC(),
	}

	entry := s.history.BuildEntry(lot.LeadID, domain.HistoryActionUpdated,
		fmt.Sprintf("Lot %q restored", lot.Name), user,
		map[string]interface{}{"lotId": lot.ID.String()})

	err = s.lotRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Lot{}).Where("id = ?", lot.ID).Updates(updates).Error; err != nil {
			return err
		}
		return s.history.WriteTx(tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
