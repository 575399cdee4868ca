package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LotFilters contains filter options for listing lots
type LotFilters struct {
	// IncludeDeleted lifts the default is_deleted = false restriction
	IncludeDeleted bool
	Status         *domain.LotStatus
	AssignedTo     *string
	Team           *string
	IsPaid         *bool
	DateFrom       *time.Time
	DateTo         *time.Time
}

type LotRepository struct {
	db *gorm.DB
}

func NewLotRepository(db *gorm.DB) *LotRepository {
	return &LotRepository{db: db}
}

func (r *LotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lot).Error
}

func (r *LotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	var lot domain.Lot
	err := r.db.WithContext(ctx).
		Preload("AmountHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&lot).Error
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

func (r *LotRepository) Update(ctx context.Context, lot *domain.Lot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(lot).Error
}

func (r *LotRepository) List(ctx context.Context, page, pageSize int, filters *LotFilters) ([]domain.Lot, int64, error) {
	var lots []domain.Lot
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lot{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("date DESC, created_at DESC").Find(&lots).Error
	return lots, total, err
}

// SumAmounts totals lot amounts under the given filters
func (r *LotRepository) SumAmounts(ctx context.Context, filters *LotFilters) (float64, error) {
	var total float64
	query := r.db.WithContext(ctx).Model(&domain.Lot{})
	query = r.applyFilters(query, filters)
	err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// WithTransaction executes operations within a transaction. Lot mutations
// pair with their history writes inside one transaction.
func (r *LotRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *LotRepository) applyFilters(query *gorm.DB, filters *LotFilters) *gorm.DB {
	if filters == nil || !filters.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filters.AssignedTo)
	}
	if filters.Team != nil {
		query = query.Where("team = ?", *filters.Team)
	}
	if filters.IsPaid != nil {
		query = query.Where("is_paid = ?", *filters.IsPaid)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}
	return query
}
