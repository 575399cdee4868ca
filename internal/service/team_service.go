package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TeamService owns teams and keeps the legacy Admin.Team string in sync
// with the membership table on every membership change.
type TeamService struct {
	teamRepo  *repository.TeamRepository
	adminRepo *repository.AdminRepository
	logger    *zap.Logger
}

func NewTeamService(teamRepo *repository.TeamRepository, adminRepo *repository.AdminRepository, logger *zap.Logger) *TeamService {
	return &TeamService{teamRepo: teamRepo, adminRepo: adminRepo, logger: logger}
}

// Get returns a team in the flattened leader/manager id shape
func (s *TeamService) Get(ctx context.Context, id uuid.UUID) (*domain.TeamDTO, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.toDTO(ctx, team)
}

// List returns all teams
func (s *TeamService) List(ctx context.Context) ([]domain.TeamDTO, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]domain.TeamDTO, 0, len(teams))
	for i := range teams {
		dto, err := s.toDTO(ctx, &teams[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

// Create makes a team and assigns its initial membership
func (s *TeamService) Create(ctx context.Context, req *domain.CreateTeamRequest) (*domain.TeamDTO, error) {
	if _, err := s.teamRepo.GetByName(ctx, req.Name); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	team := &domain.Team{Name: req.Name}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}

	if err := s.setMembers(ctx, team, req.LeaderIDs, req.ManagerIDs); err != nil {
		return nil, err
	}
	return s.toDTO(ctx, team)
}

// Update renames a team and/or replaces its membership
func (s *TeamService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateTeamRequest) (*domain.TeamDTO, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != team.Name {
		oldName := team.Name
		team.Name = *req.Name
		if err := s.teamRepo.Update(ctx, team); err != nil {
			return nil, err
		}
		// Keep the denormalized team string on admins following the rename
		if err := s.adminRepo.UpdateTeamByName(ctx, oldName, team.Name); err != nil {
			s.logger.Warn("failed to propagate team rename to admins",
				zap.String("team", team.Name), zap.Error(err))
		}
	}

	if req.LeaderIDs != nil || req.ManagerIDs != nil {
		leaders := []uuid.UUID{}
		managers := []uuid.UUID{}
		if req.LeaderIDs != nil {
			leaders = *req.LeaderIDs
		}
		if req.ManagerIDs != nil {
			managers = *req.ManagerIDs
		}
		if err := s.setMembers(ctx, team, leaders, managers); err != nil {
			return nil, err
		}
	}

	return s.toDTO(ctx, team)
}

// Delete removes a team and detaches its members
func (s *TeamService) Delete(ctx context.Context, id uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.teamRepo.Delete(ctx, team.ID); err != nil {
		return err
	}
	if err := s.adminRepo.UpdateTeamByName(ctx, team.Name, ""); err != nil {
		s.logger.Warn("failed to clear team on admins after delete",
			zap.String("team", team.Name), zap.Error(err))
	}
	return nil
}

// setMembers replaces the membership and syncs each member's legacy team
// string
func (s *TeamService) setMembers(ctx context.Context, team *domain.Team, leaderIDs, managerIDs []uuid.UUID) error {
	previous, err := s.teamRepo.Members(ctx, team.ID)
	if err != nil {
		return err
	}

	members := make([]domain.TeamMember, 0, len(leaderIDs)+len(managerIDs))
	seen := map[uuid.UUID]bool{}
	for _, id := range leaderIDs {
		if !seen[id] {
			seen[id] = true
			members = append(members, domain.TeamMember{TeamID: team.ID, AdminID: id, IsLeader: true})
		}
	}
	for _, id := range managerIDs {
		if !seen[id] {
			seen[id] = true
			members = append(members, domain.TeamMember{TeamID: team.ID, AdminID: id, IsLeader: false})
		}
	}

	if err := s.teamRepo.ReplaceMembers(ctx, team.ID, members); err != nil {
		return err
	}

	// Denormalization pass: clear removed members, stamp current ones
	for _, m := range previous {
		if !seen[m.AdminID] {
			s.syncAdminTeam(ctx, m.AdminID, "")
		}
	}
	for id := range seen {
		s.syncAdminTeam(ctx, id, team.Name)
	}
	return nil
}

func (s *TeamService) syncAdminTeam(ctx context.Context, adminID uuid.UUID, team string) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		s.logger.Warn("failed to load admin for team sync",
			zap.String("admin_id", adminID.String()), zap.Error(err))
		return
	}
	if admin.Team == team {
		return
	}
	admin.Team = team
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		s.logger.Warn("failed to sync admin team field",
			zap.String("admin_id", adminID.String()), zap.Error(err))
	}
}

func (s *TeamService) toDTO(ctx context.Context, team *domain.Team) (*domain.TeamDTO, error) {
	members, err := s.teamRepo.Members(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	dto := &domain.TeamDTO{
		ID:         team.ID,
		Name:       team.Name,
		LeaderIDs:  []uuid.UUID{},
		ManagerIDs: []uuid.UUID{},
		CreatedAt:  team.CreatedAt,
		UpdatedAt:  team.UpdatedAt,
	}
	for _, m := range members {
		if m.IsLeader {
			dto.LeaderIDs = append(dto.LeaderIDs, m.AdminID)
		} else {
			dto.ManagerIDs = append(dto.ManagerIDs, m.AdminID)
		}
	}
	return dto, nil
}
