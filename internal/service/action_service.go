package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ActionService manages planned follow-up tasks. "Today" and "overdue" are
// computed against the fixed office timezone, not the server clock's zone.
type ActionService struct {
	actionRepo *repository.ActionRepository
	leadRepo   *repository.LeadRepository
	loc        *time.Location
	logger     *zap.Logger
}

func NewActionService(
	actionRepo *repository.ActionRepository,
	leadRepo *repository.LeadRepository,
	loc *time.Location,
	logger *zap.Logger,
) *ActionService {
	return &ActionService{
		actionRepo: actionRepo,
		leadRepo:   leadRepo,
		loc:        loc,
		logger:     logger,
	}
}

// dayStart returns midnight of the current office-zone day
func (s *ActionService) dayStart(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// Create schedules a follow-up against an existing lead
func (s *ActionService) Create(ctx context.Context, user *auth.UserContext, req *domain.CreateActionRequest) (*domain.Action, error) {
	if req.PlanDate == nil {
		return nil, ErrInvalidInput
	}
	if _, err := s.leadRepo.GetByID(ctx, req.LeadID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	assignedTo := req.AssignedTo
	if assignedTo == "" && user != nil {
		assignedTo = user.Login
	}

	action := &domain.Action{
		LeadID:     req.LeadID,
		AssignedTo: assignedTo,
		Comment:    req.Comment,
		PlanDate:   req.PlanDate.UTC(),
	}
	if err := s.actionRepo.Create(ctx, action); err != nil {
		return nil, err
	}
	return action, nil
}

func (s *ActionService) Get(ctx context.Context, id uuid.UUID) (*domain.Action, error) {
	action, err := s.actionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return action, nil
}

// Update changes comment, plan date or the done flag
func (s *ActionService) Update(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.UpdateActionRequest) (*domain.Action, error) {
	action, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user != nil && user.SelfOnly() && action.AssignedTo != user.Login {
		return nil, ErrPermissionDenied
	}

	if req.Comment != nil {
		action.Comment = *req.Comment
	}
	if req.PlanDate != nil {
		action.PlanDate = req.PlanDate.UTC()
	}
	if req.IsDone != nil {
		action.IsDone = *req.IsDone
	}

	if err := s.actionRepo.Update(ctx, action); err != nil {
		return nil, err
	}
	return action, nil
}

func (s *ActionService) Delete(ctx context.Context, user *auth.UserContext, id uuid.UUID) error {
	action, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if user != nil && user.SelfOnly() && action.AssignedTo != user.Login {
		return ErrPermissionDenied
	}
	return s.actionRepo.Delete(ctx, id)
}

// ListByLead returns a lead's follow-ups ordered by plan date
func (s *ActionService) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Action, error) {
	return s.actionRepo.ListByLead(ctx, leadID)
}

// ListToday returns actions planned for the current office-zone day.
// Restricted callers only see their own.
func (s *ActionService) ListToday(ctx context.Context, user *auth.UserContext) ([]domain.Action, error) {
	assignedTo := s.scopeAssignee(user)
	start := s.dayStart(time.Now())
	return s.actionRepo.ListForDay(ctx, assignedTo, start.UTC(), start.Add(24*time.Hour).UTC())
}

// ListOverdue returns undone actions planned before today
func (s *ActionService) ListOverdue(ctx context.Context, user *auth.UserContext) ([]domain.Action, error) {
	assignedTo := s.scopeAssignee(user)
	start := s.dayStart(time.Now())
	return s.actionRepo.ListOverdue(ctx, assignedTo, start.UTC())
}

func (s *ActionService) scopeAssignee(user *auth.UserContext) string {
	if user != nil && user.SelfOnly() {
		return user.Login
	}
	return ""
}
