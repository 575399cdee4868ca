package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (*domain.Team, error) {
	var team domain.Team
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) Update(ctx context.Context, team *domain.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *TeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&domain.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Team{}, "id = ?", id).Error
	})
}

func (r *TeamRepository) List(ctx context.Context) ([]domain.Team, error) {
	var teams []domain.Team
	err := r.db.WithContext(ctx).Order("name ASC").Find(&teams).Error
	return teams, err
}

// Members returns the membership rows of a team
func (r *TeamRepository) Members(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	var members []domain.TeamMember
	err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Find(&members).Error
	return members, err
}

// ReplaceMembers swaps the full membership of a team in one transaction
func (r *TeamRepository) ReplaceMembers(ctx context.Context, teamID uuid.UUID, members []domain.TeamMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", teamID).Delete(&domain.TeamMember{}).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		return tx.Create(&members).Error
	})
}

// MemberLogins resolves a team name to its members' logins through the
// membership table joined against admins
func (r *TeamRepository) MemberLogins(ctx context.Context, teamName string) ([]string, error) {
	var logins []string
	err := r.db.WithContext(ctx).Model(&domain.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Joins("JOIN admins ON admins.id = team_members.admin_id").
		Where("teams.name = ?", teamName).
		Pluck("admins.login", &logins).Error
	return logins, err
}
