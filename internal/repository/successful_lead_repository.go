package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
)

// SuccessfulLeadFilters contains filter options for listing closed deals
type SuccessfulLeadFilters struct {
	AssignedTo *string
	Team       *string
	ClosedFrom *time.Time
	ClosedTo   *time.Time
}

type SuccessfulLeadRepository struct {
	db *gorm.DB
}

func NewSuccessfulLeadRepository(db *gorm.DB) *SuccessfulLeadRepository {
	return &SuccessfulLeadRepository{db: db}
}

func (r *SuccessfulLeadRepository) Create(ctx context.Context, sl *domain.SuccessfulLead) error {
	return r.db.WithContext(ctx).Create(sl).Error
}

func (r *SuccessfulLeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SuccessfulLead, error) {
	var sl domain.SuccessfulLead
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&sl).Error; err != nil {
		return nil, err
	}
	return &sl, nil
}

func (r *SuccessfulLeadRepository) Update(ctx context.Context, sl *domain.SuccessfulLead) error {
	return r.db.WithContext(ctx).Save(sl).Error
}

func (r *SuccessfulLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.SuccessfulLead{}, "id = ?", id).Error
}

func (r *SuccessfulLeadRepository) List(ctx context.Context, page, pageSize int, filters *SuccessfulLeadFilters) ([]domain.SuccessfulLead, int64, error) {
	var deals []domain.SuccessfulLead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.SuccessfulLead{})
	if filters != nil {
		if filters.AssignedTo != nil {
			query = query.Where("assigned_to = ?", *filters.AssignedTo)
		}
		if filters.Team != nil {
			query = query.Where("team = ?", *filters.Team)
		}
		if filters.ClosedFrom != nil {
			query = query.Where("closed_at >= ?", *filters.ClosedFrom)
		}
		if filters.ClosedTo != nil {
			query = query.Where("closed_at <= ?", *filters.ClosedTo)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("closed_at DESC").Find(&deals).Error
	return deals, total, err
}
