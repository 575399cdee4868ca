package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/phone"
	"github.com/leadforge/crm-api/internal/realtime"
	"github.com/leadforge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListLeadsQuery is the typed form of the lead listing query parameters.
// Handlers normalize raw parameters into this struct before any filter
// building happens.
type ListLeadsQuery struct {
	Page       int
	PageSize   int
	Search     string
	Statuses   []string
	StatusMode string
	AssignedTo string
	Hidden     *bool
	Department string
	UTMSource  string
	SourceDesc string
	DateFrom   *time.Time
	DateTo     *time.Time
	SortBy     string
	SortOrder  string
}

// LeadService owns lead CRUD, notes, visibility, bulk operations and stats
type LeadService struct {
	leadRepo  *repository.LeadRepository
	noteRepo  *repository.LeadNoteRepository
	adminRepo *repository.AdminRepository
	teamRepo  *repository.TeamRepository
	history   *HistoryService
	hub       *realtime.Hub
	loc       *time.Location
	logger    *zap.Logger
}

func NewLeadService(
	leadRepo *repository.LeadRepository,
	noteRepo *repository.LeadNoteRepository,
	adminRepo *repository.AdminRepository,
	teamRepo *repository.TeamRepository,
	history *HistoryService,
	hub *realtime.Hub,
	loc *time.Location,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:  leadRepo,
		noteRepo:  noteRepo,
		adminRepo: adminRepo,
		teamRepo:  teamRepo,
		history:   history,
		hub:       hub,
		loc:       loc,
		logger:    logger,
	}
}

// visibilityScope resolves what the caller is allowed to see. A restricted
// scope with an empty assignee list matches nothing; team lookup failures
// degrade to that empty scope instead of erroring, so a broken lookup can
// never widen visibility.
func (s *LeadService) visibilityScope(ctx context.Context, user *auth.UserContext) (bool, []string) {
	if user == nil {
		return true, nil
	}
	if user.SelfOnly() {
		return true, []string{user.Login}
	}
	if user.IsTeamLead() {
		logins, err := s.teamRepo.MemberLogins(ctx, user.Team)
		if err != nil || len(logins) == 0 {
			// Legacy data shape: membership lives on the admin row
			logins, err = s.adminRepo.ListLoginsByTeam(ctx, user.Team)
			if err != nil {
				s.logger.Warn("team member lookup failed, restricting to empty scope",
					zap.String("team", user.Team),
					zap.Error(err),
				)
				return true, []string{}
			}
		}
		scope := make([]string, 0, len(logins)+1)
		scope = append(scope, logins...)
		scope = append(scope, user.Login)
		return true, scope
	}
	return false, nil
}

func (s *LeadService) canAccess(ctx context.Context, user *auth.UserContext, lead *domain.Lead) bool {
	restricted, assignees := s.visibilityScope(ctx, user)
	if !restricted {
		return true
	}
	for _, a := range assignees {
		if lead.AssignedTo == a {
			return true
		}
	}
	return false
}

// dayBounds widens a date range to inclusive office-timezone day boundaries
func (s *LeadService) dayBounds(from, to *time.Time) (*time.Time, *time.Time) {
	var lo, hi *time.Time
	if from != nil {
		f := from.In(s.loc)
		start := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, s.loc)
		lo = &start
	}
	if to != nil {
		t := to.In(s.loc)
		end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, s.loc)
		hi = &end
	}
	return lo, hi
}

func (s *LeadService) buildFilters(ctx context.Context, user *auth.UserContext, q *ListLeadsQuery) *repository.LeadFilters {
	filters := &repository.LeadFilters{
		Statuses:   q.Statuses,
		StatusMode: q.StatusMode,
		Hidden:     q.Hidden,
		SortBy:     q.SortBy,
		SortOrder:  q.SortOrder,
	}

	filters.ScopeRestricted, filters.ScopeAssignees = s.visibilityScope(ctx, user)

	if q.AssignedTo != "" {
		// ANDed with the scope, so a restricted caller requesting a
		// non-member assignee intersects down to an empty result
		filters.AssignedTo = &q.AssignedTo
	}
	if q.Department != "" {
		filters.Department = &q.Department
	}
	if q.UTMSource != "" {
		filters.UTMSource = &q.UTMSource
	}
	if q.SourceDesc != "" {
		filters.SourceDesc = &q.SourceDesc
	}
	if q.Search != "" {
		filters.Search = &q.Search
		filters.PhoneVariants = phone.SearchVariants(q.Search)
	}
	filters.CreatedFrom, filters.CreatedTo = s.dayBounds(q.DateFrom, q.DateTo)

	return filters
}

// List returns leads visible to the caller
func (s *LeadService) List(ctx context.Context, user *auth.UserContext, q *ListLeadsQuery) ([]domain.Lead, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 200 {
		q.PageSize = 50
	}
	filters := s.buildFilters(ctx, user, q)
	return s.leadRepo.List(ctx, q.Page, q.PageSize, filters)
}

// Count returns the number of leads visible to the caller under the query
func (s *LeadService) Count(ctx context.Context, user *auth.UserContext, q *ListLeadsQuery) (int64, error) {
	return s.leadRepo.Count(ctx, s.buildFilters(ctx, user, q))
}

// Get returns a single lead the caller may see
func (s *LeadService) Get(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !s.canAccess(ctx, user, lead) {
		return nil, ErrPermissionDenied
	}
	return lead, nil
}

// Create persists a new lead with the default status and normalized phone
func (s *LeadService) Create(ctx context.Context, user *auth.UserContext, req *domain.CreateLeadRequest) (*domain.Lead, error) {
	lead := &domain.Lead{
		Name:              req.Name,
		Phone:             req.Phone,
		NormalizedPhone:   phone.Normalize(req.Phone),
		Email:             req.Email,
		AssignedTo:        req.AssignedTo,
		Status:            req.Status,
		Department:        req.Department,
		SourceDescription: req.SourceDescription,
		UTMSource:         req.UTMSource,
	}
	if lead.Status == "" {
		lead.Status = domain.DefaultLeadStatus
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.history.LeadCreated(ctx, lead, user)
	s.hub.Broadcast(realtime.Event{Type: "created", Entity: "lead", Payload: lead})
	return lead, nil
}

// Update applies a diff-based update; each recognized change category gets
// its own history entry
func (s *LeadService) Update(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.Lead, error) {
	lead, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	contactChanges := map[string]interface{}{}
	otherChanges := map[string]interface{}{}
	oldStatus, oldAssignee := lead.Status, lead.AssignedTo

	if req.Name != nil && *req.Name != lead.Name {
		contactChanges["name"] = map[string]string{"old": lead.Name, "new": *req.Name}
		lead.Name = *req.Name
	}
	if req.Phone != nil && *req.Phone != lead.Phone {
		contactChanges["phone"] = map[string]string{"old": lead.Phone, "new": *req.Phone}
		lead.Phone = *req.Phone
		lead.NormalizedPhone = phone.Normalize(*req.Phone)
	}
	if req.Email != nil && *req.Email != lead.Email {
		contactChanges["email"] = map[string]string{"old": lead.Email, "new": *req.Email}
		lead.Email = *req.Email
	}
	if req.Status != nil && *req.Status != lead.Status {
		lead.Status = *req.Status
	}
	if req.AssignedTo != nil && *req.AssignedTo != lead.AssignedTo {
		lead.AssignedTo = *req.AssignedTo
		if user != nil && user.IsTeamLead() {
			now := time.Now().UTC()
			lead.TeamLeadAssignedAt = &now
		}
	}
	if req.Department != nil && *req.Department != lead.Department {
		otherChanges["department"] = map[string]string{"old": lead.Department, "new": *req.Department}
		lead.Department = *req.Department
	}
	if req.SourceDescription != nil && *req.SourceDescription != lead.SourceDescription {
		otherChanges["sourceDescription"] = map[string]string{"old": lead.SourceDescription, "new": *req.SourceDescription}
		lead.SourceDescription = *req.SourceDescription
	}
	if req.UTMSource != nil && *req.UTMSource != lead.UTMSource {
		otherChanges["utmSource"] = map[string]string{"old": lead.UTMSource, "new": *req.UTMSource}
		lead.UTMSource = *req.UTMSource
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}

	if lead.Status != oldStatus {
		s.history.StatusChanged(ctx, lead, oldStatus, lead.Status, user)
	}
	if lead.AssignedTo != oldAssignee {
		s.history.Assigned(ctx, lead, oldAssignee, lead.AssignedTo, user)
	}
	if len(contactChanges) > 0 {
		s.history.ContactUpdated(ctx, lead, contactChanges, user)
	}
	if len(otherChanges) > 0 {
		s.history.Updated(ctx, lead, otherChanges, user)
	}

	s.hub.Broadcast(realtime.Event{Type: "updated", Entity: "lead", Payload: lead})
	return lead, nil
}

// ChangeStatus sets a lead's status and records the transition
func (s *LeadService) ChangeStatus(ctx context.Context, user *auth.UserContext, id uuid.UUID, status string) (*domain.Lead, error) {
	return s.Update(ctx, user, id, &domain.UpdateLeadRequest{Status: &status})
}

// Assign reassigns a lead
func (s *LeadService) Assign(ctx context.Context, user *auth.UserContext, id uuid.UUID, assignedTo string) (*domain.Lead, error) {
	return s.Update(ctx, user, id, &domain.UpdateLeadRequest{AssignedTo: &assignedTo})
}

// ToggleVisibility flips the hidden flag without deleting the record
func (s *LeadService) ToggleVisibility(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.Lead, error) {
	lead, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	lead.Hidden = !lead.Hidden
	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}
	s.history.VisibilityChanged(ctx, lead, lead.Hidden, user)
	return lead, nil
}

// Delete removes a lead and its notes
func (s *LeadService) Delete(ctx context.Context, user *auth.UserContext, id uuid.UUID) error {
	lead, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	return s.leadRepo.Delete(ctx, lead.ID)
}

// AddNote appends a note; a note needs text or a photo, and a photo-only
// note gets the placeholder text
func (s *LeadService) AddNote(ctx context.Context, user *auth.UserContext, leadID uuid.UUID, req *domain.AddNoteRequest) (*domain.LeadNote, error) {
	if req.Text == "" && req.Photo == "" {
		return nil, ErrEmptyNote
	}

	lead, err := s.Get(ctx, user, leadID)
	if err != nil {
		return nil, err
	}

	note := &domain.LeadNote{
		LeadID: lead.ID,
		Text:   req.Text,
		Photo:  req.Photo,
	}
	if note.Text == "" {
		note.Text = domain.NotePlaceholderText
	}
	if user != nil {
		note.AuthorID = user.Login
		note.AuthorName = user.Name
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}
	s.history.CommentAdded(ctx, lead, note, user)
	return note, nil
}

// EditNote updates a note addressed by its stable id
func (s *LeadService) EditNote(ctx context.Context, user *auth.UserContext, leadID, noteID uuid.UUID, req *domain.AddNoteRequest) (*domain.LeadNote, error) {
	if req.Text == "" && req.Photo == "" {
		return nil, ErrEmptyNote
	}

	lead, err := s.Get(ctx, user, leadID)
	if err != nil {
		return nil, err
	}

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil || note.LeadID != lead.ID {
		return nil, ErrNotFound
	}

	oldText := note.Text
	note.Text = req.Text
	note.Photo = req.Photo
	if note.Text == "" {
		note.Text = domain.NotePlaceholderText
	}

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	s.history.CommentEdited(ctx, lead, note, oldText, user)
	return note, nil
}

// DeleteNote removes a note addressed by its stable id
func (s *LeadService) DeleteNote(ctx context.Context, user *auth.UserContext, leadID, noteID uuid.UUID) error {
	lead, err := s.Get(ctx, user, leadID)
	if err != nil {
		return err
	}

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil || note.LeadID != lead.ID {
		return ErrNotFound
	}

	if err := s.noteRepo.Delete(ctx, note.ID); err != nil {
		return err
	}
	s.history.CommentDeleted(ctx, lead, note, user)
	return nil
}

// BulkDelete removes a batch of leads in one statement
func (s *LeadService) BulkDelete(ctx context.Context, user *auth.UserContext, ids []uuid.UUID) (int64, error) {
	if user != nil && !user.IsElevated() {
		return 0, ErrPermissionDenied
	}
	return s.leadRepo.BulkDelete(ctx, ids)
}

// BulkUpdate applies status/assignment/visibility changes to a batch
func (s *LeadService) BulkUpdate(ctx context.Context, user *auth.UserContext, req *domain.BulkUpdateLeadsRequest) (int64, error) {
	if user != nil && !user.IsElevated() && !user.IsTeamLead() {
		return 0, ErrPermissionDenied
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.Hidden != nil {
		updates["hidden"] = *req.Hidden
	}
	if len(updates) == 0 {
		return 0, ErrInvalidInput
	}
	return s.leadRepo.BulkUpdate(ctx, req.IDs, updates)
}

// StatsOverview aggregates headline counts under the caller's scope
func (s *LeadService) StatsOverview(ctx context.Context, user *auth.UserContext) (*domain.LeadStatsOverview, error) {
	filters := s.buildFilters(ctx, user, &ListLeadsQuery{})
	now := time.Now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return s.leadRepo.Overview(ctx, filters, dayStart)
}

// StatsBy returns lead counts bucketed by a dimension: status, source, utm,
// manager
func (s *LeadService) StatsBy(ctx context.Context, user *auth.UserContext, dimension string) ([]domain.CountBucket, error) {
	column, ok := map[string]string{
		"status":  "status",
		"source":  "source_description",
		"utm":     "utm_source",
		"manager": "assigned_to",
	}[dimension]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stats dimension %q", ErrInvalidInput, dimension)
	}
	filters := s.buildFilters(ctx, user, &ListLeadsQuery{})
	return s.leadRepo.CountByColumn(ctx, column, filters)
}

// StatsByTeam folds per-manager counts into per-team counts using the
// admins' team attribution
func (s *LeadService) StatsByTeam(ctx context.Context, user *auth.UserContext) ([]domain.CountBucket, error) {
	byManager, err := s.StatsBy(ctx, user, "manager")
	if err != nil {
		return nil, err
	}

	admins, err := s.adminRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	teamOf := make(map[string]string, len(admins))
	for _, a := range admins {
		teamOf[a.Login] = a.Team
	}

	totals := map[string]int64{}
	for _, bucket := range byManager {
		team := teamOf[bucket.Key]
		if team == "" {
			team = "Unassigned"
		}
		totals[team] += bucket.Count
	}

	buckets := make([]domain.CountBucket, 0, len(totals))
	for team, count := range totals {
		buckets = append(buckets, domain.CountBucket{Key: team, Count: count})
	}
	return buckets, nil
}
