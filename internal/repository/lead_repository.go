package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeadFilters contains all filter options for listing leads. Scope fields
// encode role-based visibility and are always ANDed with caller-supplied
// filters, so a restricted caller cannot widen visibility through the
// assignedTo parameter.
type LeadFilters struct {
	// ScopeRestricted applies assigned_to IN ScopeAssignees. An empty
	// slice with ScopeRestricted set matches nothing, which is the
	// intended degradation when a team lookup fails.
	ScopeRestricted bool
	ScopeAssignees  []string

	AssignedTo *string
	Statuses   []string
	// StatusMode selects how Statuses applies: "" or "only" includes,
	// "exclude" inverts
	StatusMode    string
	Hidden        *bool
	Department    *string
	UTMSource     *string
	SourceDesc    *string
	Search        *string
	PhoneVariants []string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time

	SortBy    string
	SortOrder string
}

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(lead).Error
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select(clause.Associations).Delete(&domain.Lead{BaseModel: domain.BaseModel{ID: id}}).Error
}

// FindByNormalizedPhone returns the oldest lead with the given normalized
// phone, or nil when none exists
func (r *LeadRepository) FindByNormalizedPhone(ctx context.Context, normalized string) (*domain.Lead, error) {
	if normalized == "" {
		return nil, nil
	}
	var lead domain.Lead
	err := r.db.WithContext(ctx).
		Where("normalized_phone = ?", normalized).
		Order("created_at ASC").
		First(&lead).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) List(ctx context.Context, page, pageSize int, filters *LeadFilters) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Lead{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, filters)
	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&leads).Error
	return leads, total, err
}

func (r *LeadRepository) Count(ctx context.Context, filters *LeadFilters) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Lead{})
	query = r.applyFilters(query, filters)
	err := query.Count(&count).Error
	return count, err
}

// BulkDelete removes the given leads in one statement and returns the
// affected row count
func (r *LeadRepository) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Lead{})
	return result.RowsAffected, result.Error
}

// BulkUpdate applies the same column updates to all given leads
func (r *LeadRepository) BulkUpdate(ctx context.Context, ids []uuid.UUID, updates map[string]interface{}) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&domain.Lead{}).Where("id IN ?", ids).Updates(updates)
	return result.RowsAffected, result.Error
}

// CountByColumn returns counts grouped by an aggregation column. Only
// whitelisted columns are accepted.
func (r *LeadRepository) CountByColumn(ctx context.Context, column string, filters *LeadFilters) ([]domain.CountBucket, error) {
	switch column {
	case "status", "utm_source", "source_description", "assigned_to", "department":
	default:
		return nil, gorm.ErrInvalidField
	}

	var rows []struct {
		Key   string
		Count int64
	}
	query := r.db.WithContext(ctx).Model(&domain.Lead{}).
		Select(column + " as key, COUNT(*) as count").
		Group(column)
	query = r.applyFilters(query, filters)
	if err := query.Order("count DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := make([]domain.CountBucket, len(rows))
	for i, row := range rows {
		buckets[i] = domain.CountBucket{Key: row.Key, Count: row.Count}
	}
	return buckets, nil
}

// Overview aggregates headline lead counts under the caller's scope
func (r *LeadRepository) Overview(ctx context.Context, filters *LeadFilters, dayStart time.Time) (*domain.LeadStatsOverview, error) {
	overview := &domain.LeadStatsOverview{}

	base := func() *gorm.DB {
		return r.applyFilters(r.db.WithContext(ctx).Model(&domain.Lead{}), filters)
	}

	if err := base().Count(&overview.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("hidden = ?", true).Count(&overview.Hidden).Error; err != nil {
		return nil, err
	}
	if err := base().Where("assigned_to <> ''").Count(&overview.Assigned).Error; err != nil {
		return nil, err
	}
	overview.Unassigned = overview.Total - overview.Assigned
	if err := base().Where("created_at >= ?", dayStart).Count(&overview.CreatedToday).Error; err != nil {
		return nil, err
	}
	return overview, nil
}

// WithTransaction executes operations within a transaction
func (r *LeadRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// likeEscaper neutralizes LIKE metacharacters in user input; patterns built
// with it must carry a matching ESCAPE clause
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *LeadRepository) applyFilters(query *gorm.DB, filters *LeadFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.ScopeRestricted {
		// gorm renders an empty slice as IN (NULL), matching nothing
		query = query.Where("assigned_to IN ?", filters.ScopeAssignees)
	}

	if filters.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filters.AssignedTo)
	}

	if len(filters.Statuses) > 0 {
		if filters.StatusMode == "exclude" {
			query = query.Where("status NOT IN ?", filters.Statuses)
		} else {
			query = query.Where("status IN ?", filters.Statuses)
		}
	}

	if filters.Hidden != nil {
		query = query.Where("hidden = ?", *filters.Hidden)
	}

	if filters.Department != nil {
		query = query.Where("department = ?", *filters.Department)
	}

	if filters.UTMSource != nil {
		query = query.Where("utm_source = ?", *filters.UTMSource)
	}

	if filters.SourceDesc != nil {
		pattern := "%" + escapeLike(strings.ToLower(*filters.SourceDesc)) + "%"
		query = query.Where(`LOWER(source_description) LIKE ? ESCAPE '\'`, pattern)
	}

	if filters.Search != nil && *filters.Search != "" {
		// Free-text search groups its OR branches so it ANDs cleanly
		// with the source filter above
		pattern := "%" + escapeLike(strings.ToLower(*filters.Search)) + "%"
		group := r.db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(email) LIKE ? ESCAPE '\'`, pattern)
		for _, variant := range filters.PhoneVariants {
			group = group.Or("normalized_phone LIKE ?", "%"+variant+"%")
		}
		query = query.Where(group)
	}

	if filters.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filters.CreatedFrom)
	}

	if filters.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filters.CreatedTo)
	}

	return query
}

var leadSortColumns = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"name":       "name",
	"status":     "status",
	"assignedTo": "assigned_to",
}

func (r *LeadRepository) applySorting(query *gorm.DB, filters *LeadFilters) *gorm.DB {
	column := "created_at"
	order := "DESC"
	if filters != nil {
		if mapped, ok := leadSortColumns[filters.SortBy]; ok {
			column = mapped
		}
		if strings.EqualFold(filters.SortOrder, "asc") {
			order = "ASC"
		}
	}
	return query.Order(column + " " + order)
}
