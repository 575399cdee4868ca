package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// BeforeCreate assigns a UUID when none was provided
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// AdminRole represents the role of an admin account
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "superadmin"
	RoleAdmin      AdminRole = "admin"
	RoleTeamLead   AdminRole = "teamlead"
	RoleManager    AdminRole = "manager"
	RoleReten      AdminRole = "reten"
)

// IsValid checks if the AdminRole is a valid enum value
func (r AdminRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleTeamLead, RoleManager, RoleReten:
		return true
	}
	return false
}

// TeamFantom is a restricted team: its members only ever see their own
// leads regardless of role. Business rule, not a general mechanism.
const TeamFantom = "Team Fantom"

// Admin represents a CRM user account (manager, team lead, admin)
type Admin struct {
	BaseModel
	Login        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"login"`
	PasswordHash string    `gorm:"type:varchar(100);not null;column:password_hash" json:"-"`
	Name         string    `gorm:"type:varchar(200)" json:"name"`
	Role         AdminRole `gorm:"type:varchar(50);not null;default:'manager';index" json:"role"`
	Department   string    `gorm:"type:varchar(100)" json:"department,omitempty"`
	// Team is the legacy denormalized team name. The normalized shape is the
	// team_members join table; the lead filter builder consults both.
	Team         string `gorm:"type:varchar(100);index" json:"team,omitempty"`
	RefreshToken string `gorm:"type:varchar(500);column:refresh_token" json:"-"`
	BitrixID     string `gorm:"type:varchar(100);column:bitrix_id" json:"bitrixId,omitempty"`
	Avatar       string `gorm:"type:varchar(500)" json:"avatar,omitempty"`
	IsActive     bool   `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// Team represents a sales team
type Team struct {
	BaseModel
	Name    string       `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Members []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// TeamMember links an admin to a team, optionally as a leader
type TeamMember struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index;column:team_id" json:"teamId"`
	AdminID  uuid.UUID `gorm:"type:uuid;not null;index;column:admin_id" json:"adminId"`
	IsLeader bool      `gorm:"not null;default:false;column:is_leader" json:"isLeader"`
	AddedAt  time.Time `gorm:"not null;column:added_at" json:"addedAt"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.AddedAt.IsZero() {
		m.AddedAt = time.Now().UTC()
	}
	return nil
}

// DefaultLeadStatus is assigned to leads created without an explicit status
const DefaultLeadStatus = "NEW"

// DuplicateLeadStatus marks webhook submissions whose normalized phone
// already exists on another lead
const DuplicateLeadStatus = "DUPLICATE"

// Lead represents a sales prospect tracked through the status pipeline
type Lead struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null" json:"name"`
	Phone string `gorm:"type:varchar(50)" json:"phone"`
	// NormalizedPhone is Phone with every non-digit stripped. Recomputed on
	// each save; used for duplicate detection and phone search.
	NormalizedPhone string `gorm:"type:varchar(30);index;column:normalized_phone" json:"normalizedPhone"`
	Email           string `gorm:"type:varchar(255)" json:"email,omitempty"`
	// AssignedTo holds the manager identifier as an opaque string, matching
	// the legacy data shape (not a DB-enforced reference).
	AssignedTo         string     `gorm:"type:varchar(100);index;column:assigned_to" json:"assignedTo,omitempty"`
	Status             string     `gorm:"type:varchar(50);not null;default:'NEW';index" json:"status"`
	Department         string     `gorm:"type:varchar(100)" json:"department,omitempty"`
	SourceDescription  string     `gorm:"type:varchar(500);column:source_description" json:"sourceDescription,omitempty"`
	UTMSource          string     `gorm:"type:varchar(200);column:utm_source" json:"utmSource,omitempty"`
	UTMMedium          string     `gorm:"type:varchar(200);column:utm_medium" json:"utmMedium,omitempty"`
	UTMCampaign        string     `gorm:"type:varchar(200);column:utm_campaign" json:"utmCampaign,omitempty"`
	UTMContent         string     `gorm:"type:varchar(200);column:utm_content" json:"utmContent,omitempty"`
	UTMTerm            string     `gorm:"type:varchar(200);column:utm_term" json:"utmTerm,omitempty"`
	Hidden             bool       `gorm:"not null;default:false;index" json:"hidden"`
	TeamLeadAssignedAt *time.Time `gorm:"column:team_lead_assigned_at" json:"teamLeadAssignedAt,omitempty"`
	Notes              []LeadNote `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// NotePlaceholderText is stored for photo-only notes
const NotePlaceholderText = "Photo"

// LeadNote is a single note on a lead. Notes carry a stable UUID so edits
// and deletes address a note directly instead of a positional index.
type LeadNote struct {
	BaseModel
	LeadID     uuid.UUID `gorm:"type:uuid;not null;index;column:lead_id" json:"leadId"`
	Text       string    `gorm:"type:text" json:"text"`
	Photo      string    `gorm:"type:varchar(500)" json:"photo,omitempty"`
	AuthorID   string    `gorm:"type:varchar(100);column:author_id" json:"authorId,omitempty"`
	AuthorName string    `gorm:"type:varchar(200);column:author_name" json:"authorName,omitempty"`
}

// Status is a catalog entry governing valid Lead.Status values.
// Convention only: nothing at the database level ties leads to this catalog.
type Status struct {
	BaseModel
	Value     string `gorm:"type:varchar(50);not null;uniqueIndex" json:"value"`
	Label     string `gorm:"type:varchar(100);not null" json:"label"`
	Color     string `gorm:"type:varchar(20);not null;default:'#9e9e9e'" json:"color"`
	IsActive  bool   `gorm:"not null;default:true;column:is_active" json:"isActive"`
	SortOrder int    `gorm:"not null;default:0;column:sort_order" json:"sortOrder"`
}

// Source is a catalog entry for lead source dropdowns
type Source struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null" json:"name"`
	Category string `gorm:"type:varchar(100)" json:"category,omitempty"`
	IsActive bool   `gorm:"not null;default:true;column:is_active" json:"isActive"`
	Priority int    `gorm:"not null;default:0" json:"priority"`
}

// UTMSource is a catalog entry for marketing attribution tags
type UTMSource struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null" json:"name"`
	IsActive bool   `gorm:"not null;default:true;column:is_active" json:"isActive"`
	Priority int    `gorm:"not null;default:0" json:"priority"`
}

// TableName overrides the default pluralization
func (UTMSource) TableName() string {
	return "utm_sources"
}

// LotStatus represents the lifecycle state of a lot
type LotStatus string

const (
	LotStatusActive    LotStatus = "ACTIVE"
	LotStatusArchived  LotStatus = "ARCHIVED"
	LotStatusCancelled LotStatus = "CANCELLED"
)

// Lot represents a closed deal recorded against a lead. The amount is
// mutable but every change appends to AmountHistory first.
type Lot struct {
	BaseModel
	LeadID     uuid.UUID  `gorm:"type:uuid;not null;index;column:lead_id" json:"leadId"`
	Lead       *Lead      `gorm:"foreignKey:LeadID" json:"-"`
	Name       string     `gorm:"type:varchar(200);not null" json:"name"`
	Amount     float64    `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	Date       time.Time  `gorm:"type:date;not null" json:"date"`
	AssignedTo string     `gorm:"type:varchar(100);index;column:assigned_to" json:"assignedTo"`
	Team       string     `gorm:"type:varchar(100);index" json:"team,omitempty"`
	Payout     float64    `gorm:"type:decimal(15,2);not null;default:0" json:"payout"`
	IsPaid     bool       `gorm:"not null;default:false;column:is_paid" json:"isPaid"`
	Status     LotStatus  `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	IsDeleted  bool       `gorm:"not null;default:false;column:is_deleted;index" json:"isDeleted"`
	DeletedAt  *time.Time `gorm:"column:deleted_at" json:"deletedAt,omitempty"`
	DeletedBy  string     `gorm:"type:varchar(100);column:deleted_by" json:"deletedBy,omitempty"`
	// Lead contact snapshot, denormalized at creation for read efficiency
	LeadName      string            `gorm:"type:varchar(200);column:lead_name" json:"leadName,omitempty"`
	LeadPhone     string            `gorm:"type:varchar(50);column:lead_phone" json:"leadPhone,omitempty"`
	LeadEmail     string            `gorm:"type:varchar(255);column:lead_email" json:"leadEmail,omitempty"`
	AmountHistory []LotAmountChange `gorm:"foreignKey:LotID;constraint:OnDelete:CASCADE" json:"amountHistory,omitempty"`
}

// LotAmountChange is one entry in a lot's amount edit history
type LotAmountChange struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	LotID          uuid.UUID `gorm:"type:uuid;not null;index;column:lot_id" json:"lotId"`
	PreviousAmount float64   `gorm:"type:decimal(15,2);not null;column:previous_amount" json:"previousAmount"`
	NewAmount      float64   `gorm:"type:decimal(15,2);not null;column:new_amount" json:"newAmount"`
	EditorID       string    `gorm:"type:varchar(100);column:editor_id" json:"editorId"`
	EditorName     string    `gorm:"type:varchar(200);column:editor_name" json:"editorName,omitempty"`
	Reason         string    `gorm:"type:varchar(500)" json:"reason,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
}

func (c *LotAmountChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SuccessfulLead is the legacy closed-deal record kept in parallel with Lot
type SuccessfulLead struct {
	BaseModel
	LeadID        uuid.UUID  `gorm:"type:uuid;not null;index;column:lead_id" json:"leadId"`
	Amount        float64    `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	ClosedAt      time.Time  `gorm:"not null;column:closed_at" json:"closedAt"`
	TransferredAt *time.Time `gorm:"column:transferred_at" json:"transferredAt,omitempty"`
	AssignedTo    string     `gorm:"type:varchar(100);index;column:assigned_to" json:"assignedTo"`
	Team          string     `gorm:"type:varchar(100)" json:"team,omitempty"`
	LeadName      string     `gorm:"type:varchar(200);column:lead_name" json:"leadName,omitempty"`
	LeadPhone     string     `gorm:"type:varchar(50);column:lead_phone" json:"leadPhone,omitempty"`
}

// HistoryAction represents the type of lead history entry
type HistoryAction string

const (
	HistoryActionCreated           HistoryAction = "created"
	HistoryActionStatusChanged     HistoryAction = "status_changed"
	HistoryActionAssigned          HistoryAction = "assigned"
	HistoryActionCommentAdded      HistoryAction = "comment_added"
	HistoryActionCommentEdited     HistoryAction = "comment_edited"
	HistoryActionCommentDeleted    HistoryAction = "comment_deleted"
	HistoryActionContactUpdated    HistoryAction = "contact_updated"
	HistoryActionVisibilityChanged HistoryAction = "visibility_changed"
	HistoryActionUpdated           HistoryAction = "updated"
)

// LeadHistory is an append-only audit entry for a lead. Entries are never
// updated or deleted after creation.
type LeadHistory struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	LeadID      uuid.UUID     `gorm:"type:uuid;not null;index;column:lead_id" json:"leadId"`
	Action      HistoryAction `gorm:"type:varchar(50);not null;index" json:"action"`
	Description string        `gorm:"type:varchar(1000);not null" json:"description"`
	AdminID     string        `gorm:"type:varchar(100);column:admin_id" json:"adminId,omitempty"`
	AdminName   string        `gorm:"type:varchar(200);column:admin_name" json:"adminName,omitempty"`
	Photo       string        `gorm:"type:varchar(500)" json:"photo,omitempty"`
	// Metadata holds machine-readable old/new values as a JSON document
	Metadata  string    `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// TableName matches the legacy collection name
func (LeadHistory) TableName() string {
	return "leads_history"
}

func (h *LeadHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// Action is a scheduled follow-up task tied to a lead and a manager
type Action struct {
	BaseModel
	LeadID     uuid.UUID `gorm:"type:uuid;not null;index;column:lead_id" json:"leadId"`
	AssignedTo string    `gorm:"type:varchar(100);not null;index;column:assigned_to" json:"assignedTo"`
	Comment    string    `gorm:"type:varchar(1000)" json:"comment,omitempty"`
	PlanDate   time.Time `gorm:"not null;index;column:plan_date" json:"planDate"`
	IsDone     bool      `gorm:"not null;default:false;column:is_done" json:"isDone"`
}
