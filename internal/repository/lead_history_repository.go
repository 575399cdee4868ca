package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
)

// LeadHistoryRepository writes and reads the append-only lead audit trail.
// There are deliberately no update or delete methods.
type LeadHistoryRepository struct {
	db *gorm.DB
}

func NewLeadHistoryRepository(db *gorm.DB) *LeadHistoryRepository {
	return &LeadHistoryRepository{db: db}
}

func (r *LeadHistoryRepository) Create(ctx context.Context, entry *domain.LeadHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateTx writes an entry inside an existing transaction
func (r *LeadHistoryRepository) CreateTx(tx *gorm.DB, entry *domain.LeadHistory) error {
	return tx.Create(entry).Error
}

func (r *LeadHistoryRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.LeadHistory, error) {
	var entries []domain.LeadHistory
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *LeadHistoryRepository) List(ctx context.Context, page, pageSize int, action *domain.HistoryAction) ([]domain.LeadHistory, int64, error) {
	var entries []domain.LeadHistory
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.LeadHistory{})
	if action != nil {
		query = query.Where("action = ?", *action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&entries).Error
	return entries, total, err
}
