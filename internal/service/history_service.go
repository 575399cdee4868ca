package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HistoryService records the immutable audit trail of lead changes. Writes
// are best-effort: a failed history write is logged and swallowed so the
// triggering mutation still succeeds. Lot operations instead pair their
// entries transactionally via BuildEntry + WriteTx.
type HistoryService struct {
	historyRepo *repository.LeadHistoryRepository
	logger      *zap.Logger
}

func NewHistoryService(historyRepo *repository.LeadHistoryRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{historyRepo: historyRepo, logger: logger}
}

// BuildEntry assembles an audit entry without persisting it
func (s *HistoryService) BuildEntry(leadID uuid.UUID, action domain.HistoryAction, description string, actor *auth.UserContext, metadata map[string]interface{}) *domain.LeadHistory {
	entry := &domain.LeadHistory{
		LeadID:      leadID,
		Action:      action,
		Description: description,
	}
	if actor != nil {
		entry.AdminID = actor.Login
		entry.AdminName = actor.Name
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = string(raw)
		}
	}
	return entry
}

// WriteTx persists an entry inside an existing transaction
func (s *HistoryService) WriteTx(tx *gorm.DB, entry *domain.LeadHistory) error {
	return s.historyRepo.CreateTx(tx, entry)
}

func (s *HistoryService) record(ctx context.Context, entry *domain.LeadHistory) {
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write lead history entry",
			zap.String("lead_id", entry.LeadID.String()),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}
}

// LeadCreated records the creation of a lead
func (s *HistoryService) LeadCreated(ctx context.Context, lead *domain.Lead, actor *auth.UserContext) {
	desc := fmt.Sprintf("Lead %q created with status %s", lead.Name, lead.Status)
	s.record(ctx, s.BuildEntry(lead.ID, domain.HistoryActionCreated, desc, actor, map[string]interface{}{
		"leadName": lead.Name,
		"status":   lead.Status,
		"source":   lead.SourceDescription,
	}))
}

// StatusChanged records a status transition
func (s *HistoryService) StatusChanged(ctx context.Context, lead *domain.Lead, oldStatus, newStatus string, actor *auth.UserContext) {
	desc := fmt.Sprintf("Status of %q changed from %s to %s", lead.Name, oldStatus, newStatus)
	s.record(ctx, s.BuildEntry(lead.ID, domain.HistoryActionStatusChanged, desc, actor, map[string]interface{}{
		"leadName":  lead.Name,
		"oldStatus": oldStatus,
		"newStatus": newStatus,
	}))
}

// Assigned records an assignment change
func (s *HistoryService) Assigned(ctx context.Context, lead *domain.Lead, oldAssignee, newAssignee string, actor *auth.UserContext) {
	var desc string
	if oldAssignee == "" {
		desc = fmt.Sprintf("Lead %q assigned to %s", lead.Name, newAssignee)
	} else {
		desc = fmt.Sprintf("Lead %q reassigned from %s to %s", lead.Name, oldAssignee, newAssignee)
	}
	s.record(ctx, s.BuildEntry(lead.ID, domain.HistoryActionAssigned, desc, actor, map[string]interface{}{
		"leadName":    lead.Name,
		"oldAssignee": oldAssignee,
		"newAssignee": newAssignee,
	}))
}

// CommentAdded records a new note
func (s *HistoryService) CommentAdded(ctx context.Context, lead *domain.Lead, note *domain.LeadNote, actor *auth.UserContext) {
	entry := s.BuildEntry(lead.ID, domain.HistoryActionCommentAdded,
		fmt.Sprintf("Comment added to %q", lead.Name), actor, map[string]interface{}{
			"leadName": lead.Name,
			"noteId":   note.ID.String(),
			"text":     note.Text,
		})
	entry.Photo = note.Photo
	s.record(ctx, entry)
}

// CommentEdited records a note edit
func (s *HistoryService) CommentEdited(ctx context.Context, lead *domain.Lead, note *domain.LeadNote, oldText string, actor *auth.UserContext) {
	s.record(ctx, s.BuildEntry(lead.ID, domain.HistoryActionCommentEdited,
		fmt.Sprintf("Comment on %q edited", lead.Name), actor, map[string]interface{}{
			"leadName": lead.Name,
			"noteId":   note.ID.String(),
			"oldText":  oldText,
			"newText":  note.Text,
		}))
}

// CommentDeleted records a note removal
func (s *HistoryService) CommentDeleted(ctx context.Context, lead *domain.Lead, note *domain.LeadNote, actor *auth.UserContext) {
	s.record(ctx, s.BuildEntry(lead.ID, domain.HistoryActionCommentDeleted,
		fmt.Sprintf("Comment on %q deleted", lead.Name), actor, map[string]interface{}{
			"leadName": lead.Name,
			"noteId":   note.ID.String(),
			"text":     note.Text,
		}))
}

// ContactUpdated records a change to name, phone or email
func (s *HistoryService) ContactUpdated(ctx context.Context, lead *domain.Lead, changes map[string]interface{}, actor *auth.UserContext) {
	s.record(ctx, s.BuildEntry(lead.ID, domain.HistoryActionContactUpdated,
		fmt.Sprintf("Contact info of %q updated", lead.Name), actor, changes))
}

// VisibilityChanged records a hidden-flag toggle
func (s *HistoryService) VisibilityChanged(ctx context.Context, lead *domain.Lead, hidden bool, actor *auth.UserContext) {
	verb := "unhidden"
	if hidden {
		verb = "hidden"
	}
	s.record(ctx, s.BuildEntry(lead.ID, domain.HistoryActionVisibilityChanged,
		fmt.Sprintf("Lead %q %s", lead.Name, verb), actor, map[string]interface{}{
			"leadName": lead.Name,
			"hidden":   hidden,
		}))
}

// Updated records a generic field update not covered by a dedicated action
func (s *HistoryService) Updated(ctx context.Context, lead *domain.Lead, changes map[string]interface{}, actor *auth.UserContext) {
	s.record(ctx, s.BuildEntry(lead.ID, domain.HistoryActionUpdated,
		fmt.Sprintf("Lead %q updated", lead.Name), actor, changes))
}

// ListByLead returns the audit trail of one lead, newest first
func (s *HistoryService) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.LeadHistory, error) {
	return s.historyRepo.ListByLead(ctx, leadID)
}

// List returns audit entries across leads
func (s *HistoryService) List(ctx context.Context, page, pageSize int, action *domain.HistoryAction) ([]domain.LeadHistory, int64, error) {
	return s.historyRepo.List(ctx, page, pageSize, action)
}
