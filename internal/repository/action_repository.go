package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
)

type ActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

func (r *ActionRepository) Create(ctx context.Context, action *domain.Action) error {
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *ActionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Action, error) {
	var action domain.Action
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&action).Error; err != nil {
		return nil, err
	}
	return &action, nil
}

func (r *ActionRepository) Update(ctx context.Context, action *domain.Action) error {
	return r.db.WithContext(ctx).Save(action).Error
}

func (r *ActionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Action{}, "id = ?", id).Error
}

func (r *ActionRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Action, error) {
	var actions []domain.Action
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("plan_date ASC").
		Find(&actions).Error
	return actions, err
}

// ListForDay returns an assignee's actions planned inside [dayStart, dayEnd)
func (r *ActionRepository) ListForDay(ctx context.Context, assignedTo string, dayStart, dayEnd time.Time) ([]domain.Action, error) {
	var actions []domain.Action
	query := r.db.WithContext(ctx).
		Where("plan_date >= ? AND plan_date < ?", dayStart, dayEnd)
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	err := query.Order("plan_date ASC").Find(&actions).Error
	return actions, err
}

// ListOverdue returns undone actions planned before dayStart
func (r *ActionRepository) ListOverdue(ctx context.Context, assignedTo string, dayStart time.Time) ([]domain.Action, error) {
	var actions []domain.Action
	query := r.db.WithContext(ctx).
		Where("plan_date < ? AND is_done = ?", dayStart, false)
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	err := query.Order("plan_date ASC").Find(&actions).Error
	return actions, err
}

