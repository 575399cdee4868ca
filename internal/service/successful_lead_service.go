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

// SuccessfulLeadService keeps the legacy closed-deal records that predate
// lots. New closes should create lots; this records stay for reporting.
type SuccessfulLeadService struct {
	dealRepo *repository.SuccessfulLeadRepository
	leadRepo *repository.LeadRepository
	logger   *zap.Logger
}

func NewSuccessfulLeadService(
	dealRepo *repository.SuccessfulLeadRepository,
	leadRepo *repository.LeadRepository,
	logger *zap.Logger,
) *SuccessfulLeadService {
	return &SuccessfulLeadService{dealRepo: dealRepo, leadRepo: leadRepo, logger: logger}
}

func (s *SuccessfulLeadService) Get(ctx context.Context, id uuid.UUID) (*domain.SuccessfulLead, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return deal, nil
}

// List returns closed deals, newest close first. Restricted callers only
// see their own; team leads their team's.
func (s *SuccessfulLeadService) List(ctx context.Context, user *auth.UserContext, page, pageSize int, filters *repository.SuccessfulLeadFilters) ([]domain.SuccessfulLead, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	if filters == nil {
		filters = &repository.SuccessfulLeadFilters{}
	}
	if user != nil {
		if user.SelfOnly() {
			filters.AssignedTo = &user.Login
		} else if user.IsTeamLead() {
			filters.Team = &user.Team
		}
	}
	return s.dealRepo.List(ctx, page, pageSize, filters)
}

// Create records a closed deal with the lead's contact snapshot denormalized
func (s *SuccessfulLeadService) Create(ctx context.Context, user *auth.UserContext, req *domain.CreateSuccessfulLeadRequest) (*domain.SuccessfulLead, error) {
	lead, err := s.leadRepo.GetByID(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	deal := &domain.SuccessfulLead{
		LeadID:        lead.ID,
		Amount:        req.Amount,
		AssignedTo:    req.AssignedTo,
		Team:          req.Team,
		TransferredAt: req.TransferredAt,
		LeadName:      lead.Name,
		LeadPhone:     lead.Phone,
	}
	if req.ClosedAt != nil {
		deal.ClosedAt = *req.ClosedAt
	} else {
		deal.ClosedAt = time.Now().UTC()
	}
	if deal.AssignedTo == "" && user != nil {
		deal.AssignedTo = user.Login
	}
	if deal.Team == "" && user != nil {
		deal.Team = user.Team
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *SuccessfulLeadService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateSuccessfulLeadRequest) (*domain.SuccessfulLead, error) {
	deal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		deal.Amount = *req.Amount
	}
	if req.TransferredAt != nil {
		deal.TransferredAt = req.TransferredAt
	}
	if req.AssignedTo != nil {
		deal.AssignedTo = *req.AssignedTo
	}
	if req.Team != nil {
		deal.Team = *req.Team
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, err
	}
	return deal, nil
}

func (s *SuccessfulLeadService) Delete(ctx context.Context, user *auth.UserContext, id uuid.UUID) error {
	if user == nil || !user.IsElevated() {
		return ErrPermissionDenied
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.dealRepo.Delete(ctx, id)
}
