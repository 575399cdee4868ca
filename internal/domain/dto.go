package domain

import (
	"time"

	"github.com/google/uuid"
)

// APIResponse is the envelope every JSON endpoint responds with
type APIResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes the page window of a list response
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes the page count for a result window
func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// --- Auth ---

type RegisterRequest struct {
	Login      string    `json:"login" validate:"required,min=3,max=100"`
	Password   string    `json:"password" validate:"required,min=6,max=72"`
	Name       string    `json:"name" validate:"max=200"`
	Role       AdminRole `json:"role" validate:"omitempty,oneof=superadmin admin teamlead manager reten"`
	Department string    `json:"department" validate:"max=100"`
	Team       string    `json:"team" validate:"max=100"`
}

type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is returned by login, register and refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// --- Leads ---

type CreateLeadRequest struct {
	Name              string `json:"name" validate:"required,max=200"`
	Phone             string `json:"phone" validate:"max=50"`
	Email             string `json:"email" validate:"omitempty,email"`
	AssignedTo        string `json:"assignedTo" validate:"max=100"`
	Status            string `json:"status" validate:"max=50"`
	Department        string `json:"department" validate:"max=100"`
	SourceDescription string `json:"sourceDescription" validate:"max=500"`
	UTMSource         string `json:"utmSource" validate:"max=200"`
}

type UpdateLeadRequest struct {
	Name              *string `json:"name" validate:"omitempty,max=200"`
	Phone             *string `json:"phone" validate:"omitempty,max=50"`
	Email             *string `json:"email" validate:"omitempty,email"`
	AssignedTo        *string `json:"assignedTo" validate:"omitempty,max=100"`
	Status            *string `json:"status" validate:"omitempty,max=50"`
	Department        *string `json:"department" validate:"omitempty,max=100"`
	SourceDescription *string `json:"sourceDescription" validate:"omitempty,max=500"`
	UTMSource         *string `json:"utmSource" validate:"omitempty,max=200"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

type AssignLeadRequest struct {
	AssignedTo string `json:"assignedTo" validate:"required,max=100"`
}

type AddNoteRequest struct {
	Text  string `json:"text" validate:"max=5000"`
	Photo string `json:"photo" validate:"max=500"`
}

type BulkLeadIDsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,dive,required"`
}

type BulkUpdateLeadsRequest struct {
	IDs        []uuid.UUID `json:"ids" validate:"required,min=1,dive,required"`
	Status     *string     `json:"status" validate:"omitempty,max=50"`
	AssignedTo *string     `json:"assignedTo" validate:"omitempty,max=100"`
	Hidden     *bool       `json:"hidden"`
}

// BulkResult reports how many rows a bulk statement touched. Bulk
// operations are all-or-nothing; there is no partial-failure detail.
type BulkResult struct {
	Affected int64 `json:"affected"`
}

// --- Lots ---

type CreateLotRequest struct {
	LeadID     uuid.UUID  `json:"leadId" validate:"required"`
	Name       string     `json:"name" validate:"required,max=200"`
	Amount     float64    `json:"amount" validate:"gte=0"`
	Date       *time.Time `json:"date"`
	AssignedTo string     `json:"assignedTo" validate:"max=100"`
	Team       string     `json:"team" validate:"max=100"`
}

type UpdateLotAmountRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
	Reason string  `json:"reason" validate:"max=500"`
}

type UpdateLotPayoutRequest struct {
	Payout *float64 `json:"payout" validate:"omitempty,gte=0"`
	IsPaid *bool    `json:"isPaid"`
}

// LotTotals aggregates lot amounts under a filter set
type LotTotals struct {
	TotalAmount  float64 `json:"totalAmount"`
	PaidAmount   float64 `json:"paidAmount"`
	UnpaidAmount float64 `json:"unpaidAmount"`
}

// --- Successful leads ---

type CreateSuccessfulLeadRequest struct {
	LeadID        uuid.UUID  `json:"leadId" validate:"required"`
	Amount        float64    `json:"amount" validate:"gte=0"`
	ClosedAt      *time.Time `json:"closedAt"`
	TransferredAt *time.Time `json:"transferredAt"`
	AssignedTo    string     `json:"assignedTo" validate:"max=100"`
	Team          string     `json:"team" validate:"max=100"`
}

type UpdateSuccessfulLeadRequest struct {
	Amount        *float64   `json:"amount" validate:"omitempty,gte=0"`
	TransferredAt *time.Time `json:"transferredAt"`
	AssignedTo    *string    `json:"assignedTo" validate:"omitempty,max=100"`
	Team          *string    `json:"team" validate:"omitempty,max=100"`
}

// --- Teams / admins ---

type CreateTeamRequest struct {
	Name       string      `json:"name" validate:"required,max=100"`
	LeaderIDs  []uuid.UUID `json:"leaderIds" validate:"dive,required"`
	ManagerIDs []uuid.UUID `json:"managerIds" validate:"dive,required"`
}

type UpdateTeamRequest struct {
	Name       *string      `json:"name" validate:"omitempty,max=100"`
	LeaderIDs  *[]uuid.UUID `json:"leaderIds"`
	ManagerIDs *[]uuid.UUID `json:"managerIds"`
}

// TeamDTO flattens membership into the legacy leader/manager id lists
type TeamDTO struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	LeaderIDs  []uuid.UUID `json:"leaderIds"`
	ManagerIDs []uuid.UUID `json:"managerIds"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

type UpdateAdminRequest struct {
	Name       *string    `json:"name" validate:"omitempty,max=200"`
	Role       *AdminRole `json:"role" validate:"omitempty,oneof=superadmin admin teamlead manager reten"`
	Department *string    `json:"department" validate:"omitempty,max=100"`
	Team       *string    `json:"team" validate:"omitempty,max=100"`
	BitrixID   *string    `json:"bitrixId" validate:"omitempty,max=100"`
	Avatar     *string    `json:"avatar" validate:"omitempty,max=500"`
	IsActive   *bool      `json:"isActive"`
	Password   *string    `json:"password" validate:"omitempty,min=6,max=72"`
}

// --- Catalogs ---

type CreateStatusRequest struct {
	Value     string `json:"value" validate:"required,max=50"`
	Label     string `json:"label" validate:"required,max=100"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	SortOrder int    `json:"sortOrder"`
}

type UpdateStatusRequest struct {
	Label     *string `json:"label" validate:"omitempty,max=100"`
	Color     *string `json:"color" validate:"omitempty,hexcolor"`
	IsActive  *bool   `json:"isActive"`
	SortOrder *int    `json:"sortOrder"`
}

type CreateCatalogEntryRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=100"`
	Priority int    `json:"priority"`
}

type UpdateCatalogEntryRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Category *string `json:"category" validate:"omitempty,max=100"`
	IsActive *bool   `json:"isActive"`
	Priority *int    `json:"priority"`
}

// --- Actions ---

type CreateActionRequest struct {
	LeadID     uuid.UUID  `json:"leadId" validate:"required"`
	AssignedTo string     `json:"assignedTo" validate:"required,max=100"`
	Comment    string     `json:"comment" validate:"max=1000"`
	PlanDate   *time.Time `json:"planDate" validate:"required"`
}

type UpdateActionRequest struct {
	Comment  *string    `json:"comment" validate:"omitempty,max=1000"`
	PlanDate *time.Time `json:"planDate"`
	IsDone   *bool      `json:"isDone"`
}

// --- Webhooks / integration ---

// WebhookLeadPayload is the shared inbound shape for external lead capture.
// Field casing varies between form builders (Phone vs phone); the decoder
// in the webhook service folds both spellings into this struct.
type WebhookLeadPayload struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	SourceDescription string `json:"sourceDescription"`
	UTMSource         string `json:"utm_source"`
	UTMMedium         string `json:"utm_medium"`
	UTMCampaign       string `json:"utm_campaign"`
	UTMContent        string `json:"utm_content"`
	UTMTerm           string `json:"utm_term"`
	// Referrer is the page URL the form was submitted from; its hostname
	// becomes the source when the payload names none
	Referrer string `json:"referrer"`
}

// IntegrationResult is the contract promised to partner integrations
type IntegrationResult struct {
	LeadID      uuid.UUID `json:"leadId"`
	IsDuplicate bool      `json:"isDuplicate"`
}

// --- Stats ---

type LeadStatsOverview struct {
	Total      int64 `json:"total"`
	Hidden     int64 `json:"hidden"`
	Assigned   int64 `json:"assigned"`
	Unassigned int64 `json:"unassigned"`
	CreatedToday int64 `json:"createdToday"`
}

type CountBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}
