package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
)

// StatusRepository manages the lead status catalog
type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) Create(ctx context.Context, status *domain.Status) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *StatusRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Status, error) {
	var status domain.Status
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *StatusRepository) GetByValue(ctx context.Context, value string) (*domain.Status, error) {
	var status domain.Status
	if err := r.db.WithContext(ctx).Where("value = ?", value).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *StatusRepository) Update(ctx context.Context, status *domain.Status) error {
	return r.db.WithContext(ctx).Save(status).Error
}

func (r *StatusRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Status{}, "id = ?", id).Error
}

func (r *StatusRepository) List(ctx context.Context, activeOnly bool) ([]domain.Status, error) {
	var statuses []domain.Status
	query := r.db.WithContext(ctx).Model(&domain.Status{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC, value ASC").Find(&statuses).Error
	return statuses, err
}

// SourceRepository manages the lead source catalog
type SourceRepository struct {
	db *gorm.DB
}

func NewSourceRepository(db *gorm.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

func (r *SourceRepository) Create(ctx context.Context, source *domain.Source) error {
	return r.db.WithContext(ctx).Create(source).Error
}

func (r *SourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Source, error) {
	var source domain.Source
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&source).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

func (r *SourceRepository) Update(ctx context.Context, source *domain.Source) error {
	return r.db.WithContext(ctx).Save(source).Error
}

func (r *SourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Source{}, "id = ?", id).Error
}

func (r *SourceRepository) List(ctx context.Context, activeOnly bool) ([]domain.Source, error) {
	var sources []domain.Source
	query := r.db.WithContext(ctx).Model(&domain.Source{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("priority DESC, name ASC").Find(&sources).Error
	return sources, err
}

// UTMSourceRepository manages the UTM attribution catalog
type UTMSourceRepository struct {
	db *gorm.DB
}

func NewUTMSourceRepository(db *gorm.DB) *UTMSourceRepository {
	return &UTMSourceRepository{db: db}
}

func (r *UTMSourceRepository) Create(ctx context.Context, utm *domain.UTMSource) error {
	return r.db.WithContext(ctx).Create(utm).Error
}

func (r *UTMSourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UTMSource, error) {
	var utm domain.UTMSource
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&utm).Error; err != nil {
		return nil, err
	}
	return &utm, nil
}

func (r *UTMSourceRepository) Update(ctx context.Context, utm *domain.UTMSource) error {
	return r.db.WithContext(ctx).Save(utm).Error
}

func (r *UTMSourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.UTMSource{}, "id = ?", id).Error
}

func (r *UTMSourceRepository) List(ctx context.Context, activeOnly bool) ([]domain.UTMSource, error) {
	var utms []domain.UTMSource
	query := r.db.WithContext(ctx).Model(&domain.UTMSource{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("priority DESC, name ASC").Find(&utms).Error
	return utms, err
}
