package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"gorm.io/gorm"
)

// CatalogService manages the status, source and UTM dropdown catalogs
type CatalogService struct {
	statusRepo *repository.StatusRepository
	sourceRepo *repository.SourceRepository
	utmRepo    *repository.UTMSourceRepository
}

func NewCatalogService(
	statusRepo *repository.StatusRepository,
	sourceRepo *repository.SourceRepository,
	utmRepo *repository.UTMSourceRepository,
) *CatalogService {
	return &CatalogService{statusRepo: statusRepo, sourceRepo: sourceRepo, utmRepo: utmRepo}
}

// --- Statuses ---

// CreateStatus adds a pipeline status; values are stored uppercased
func (s *CatalogService) CreateStatus(ctx context.Context, req *domain.CreateStatusRequest) (*domain.Status, error) {
	value := strings.ToUpper(strings.TrimSpace(req.Value))
	if _, err := s.statusRepo.GetByValue(ctx, value); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	status := &domain.Status{
		Value:     value,
		Label:     req.Label,
		IsActive:  true,
		SortOrder: req.SortOrder,
	}
	if req.Color != "" {
		status.Color = req.Color
	}
	if err := s.statusRepo.Create(ctx, status); err != nil {
		return nil, err
	}
	return status, nil
}

func (s *CatalogService) UpdateStatus(ctx context.Context, id uuid.UUID, req *domain.UpdateStatusRequest) (*domain.Status, error) {
	status, err := s.statusRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Label != nil {
		status.Label = *req.Label
	}
	if req.Color != nil {
		status.Color = *req.Color
	}
	if req.IsActive != nil {
		status.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		status.SortOrder = *req.SortOrder
	}

	if err := s.statusRepo.Update(ctx, status); err != nil {
		return nil, err
	}
	return status, nil
}

func (s *CatalogService) DeleteStatus(ctx context.Context, id uuid.UUID) error {
	if _, err := s.statusRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.statusRepo.Delete(ctx, id)
}

func (s *CatalogService) ListStatuses(ctx context.Context, activeOnly bool) ([]domain.Status, error) {
	return s.statusRepo.List(ctx, activeOnly)
}

// --- Sources ---

func (s *CatalogService) CreateSource(ctx context.Context, req *domain.CreateCatalogEntryRequest) (*domain.Source, error) {
	source := &domain.Source{
		Name:     req.Name,
		Category: req.Category,
		IsActive: true,
		Priority: req.Priority,
	}
	if err := s.sourceRepo.Create(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

func (s *CatalogService) UpdateSource(ctx context.Context, id uuid.UUID, req *domain.UpdateCatalogEntryRequest) (*domain.Source, error) {
	source, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		source.Name = *req.Name
	}
	if req.Category != nil {
		source.Category = *req.Category
	}
	if req.IsActive != nil {
		source.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		source.Priority = *req.Priority
	}

	if err := s.sourceRepo.Update(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

func (s *CatalogService) DeleteSource(ctx context.Context, id uuid.UUID) error {
	if _, err := s.sourceRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.sourceRepo.Delete(ctx, id)
}

func (s *CatalogService) ListSources(ctx context.Context, activeOnly bool) ([]domain.Source, error) {
	return s.sourceRepo.List(ctx, activeOnly)
}

// --- UTM sources ---

func (s *CatalogService) CreateUTMSource(ctx context.Context, req *domain.CreateCatalogEntryRequest) (*domain.UTMSource, error) {
	utm := &domain.UTMSource{
		Name:     req.Name,
		IsActive: true,
		Priority: req.Priority,
	}
	if err := s.utmRepo.Create(ctx, utm); err != nil {
		return nil, err
	}
	return utm, nil
}

func (s *CatalogService) UpdateUTMSource(ctx context.Context, id uuid.UUID, req *domain.UpdateCatalogEntryRequest) (*domain.UTMSource, error) {
	utm, err := s.utmRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		utm.Name = *req.Name
	}
	if req.IsActive != nil {
		utm.IsActive = *req.IsActive
	}
	if req.Priority != nil {
		utm.Priority = *req.Priority
	}

	if err := s.utmRepo.Update(ctx, utm); err != nil {
		return nil, err
	}
	return utm, nil
}

func (s *CatalogService) DeleteUTMSource(ctx context.Context, id uuid.UUID) error {
	if _, err := s.utmRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.utmRepo.Delete(ctx, id)
}

func (s *CatalogService) ListUTMSources(ctx context.Context, activeOnly bool) ([]domain.UTMSource, error) {
	return s.utmRepo.List(ctx, activeOnly)
}
