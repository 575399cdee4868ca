package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	var admin domain.Admin
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) GetByLogin(ctx context.Context, login string) (*domain.Admin, error) {
	var admin domain.Admin
	err := r.db.WithContext(ctx).Where("login = ?", login).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) Update(ctx context.Context, admin *domain.Admin) error {
	return r.db.WithContext(ctx).Save(admin).Error
}

func (r *AdminRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Admin{}, "id = ?", id).Error
}

func (r *AdminRepository) List(ctx context.Context, page, pageSize int, search string, role *domain.AdminRole) ([]domain.Admin, int64, error) {
	var admins []domain.Admin
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Admin{})

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(login) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	if role != nil {
		query = query.Where("role = ?", *role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&admins).Error
	return admins, total, err
}

// ListAll returns every admin account, for login-to-team mapping
func (r *AdminRepository) ListAll(ctx context.Context) ([]domain.Admin, error) {
	var admins []domain.Admin
	err := r.db.WithContext(ctx).Find(&admins).Error
	return admins, err
}

// ListLoginsByTeam returns the logins of all admins carrying the legacy
// team string. Used as the fallback when the team has no membership rows.
func (r *AdminRepository) ListLoginsByTeam(ctx context.Context, team string) ([]string, error) {
	var logins []string
	err := r.db.WithContext(ctx).Model(&domain.Admin{}).
		Where("team = ?", team).
		Pluck("login", &logins).Error
	return logins, err
}

// UpdateRefreshToken stores the current refresh token for an admin; an
// empty token clears it (logout)
func (r *AdminRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.db.WithContext(ctx).Model(&domain.Admin{}).
		Where("id = ?", id).
		Update("refresh_token", token).Error
}

// ListWithRefreshTokens returns admins holding a refresh token, for the
// expired-token cleanup job
func (r *AdminRepository) ListWithRefreshTokens(ctx context.Context) ([]domain.Admin, error) {
	var admins []domain.Admin
	err := r.db.WithContext(ctx).Where("refresh_token <> ''").Find(&admins).Error
	return admins, err
}

// UpdateTeamByName rewrites the legacy team string for all members of a
// renamed team
func (r *AdminRepository) UpdateTeamByName(ctx context.Context, oldName, newName string) error {
	return r.db.WithContext(ctx).Model(&domain.Admin{}).
		Where("team = ?", oldName).
		Update("team", newName).Error
}
