package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
)

// LeadNoteRepository addresses notes by their stable UUID
type LeadNoteRepository struct {
	db *gorm.DB
}

func NewLeadNoteRepository(db *gorm.DB) *LeadNoteRepository {
	return &LeadNoteRepository{db: db}
}

func (r *LeadNoteRepository) Create(ctx context.Context, note *domain.LeadNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *LeadNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadNote, error) {
	var note domain.LeadNote
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&note).Error; err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *LeadNoteRepository) Update(ctx context.Context, note *domain.LeadNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *LeadNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.LeadNote{}, "id = ?", id).Error
}

func (r *LeadNoteRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.LeadNote, error) {
	var notes []domain.LeadNote
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}
