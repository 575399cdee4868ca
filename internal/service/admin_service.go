package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminService manages admin accounts beyond self-service auth
type AdminService struct {
	adminRepo *repository.AdminRepository
	logger    *zap.Logger
}

func NewAdminService(adminRepo *repository.AdminRepository, logger *zap.Logger) *AdminService {
	return &AdminService{adminRepo: adminRepo, logger: logger}
}

// Create provisions an account without signing it in; self-service signup
// goes through the register endpoint instead
func (s *AdminService) Create(ctx context.Context, req *domain.RegisterRequest) (*domain.Admin, error) {
	if _, err := s.adminRepo.GetByLogin(ctx, req.Login); err == nil {
		return nil, ErrLoginTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleManager
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &domain.Admin{
		Login:        req.Login,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
		Department:   req.Department,
		Team:         req.Team,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("admin provisioned", zap.String("login", admin.Login), zap.String("role", string(admin.Role)))
	return admin, nil
}

func (s *AdminService) Get(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) List(ctx context.Context, page, pageSize int, search string, role *domain.AdminRole) ([]domain.Admin, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return s.adminRepo.List(ctx, page, pageSize, search, role)
}

// Update applies partial changes to an account; role changes are validated
// and a new password is re-hashed
func (s *AdminService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateAdminRequest) (*domain.Admin, error) {
	admin, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, ErrInvalidRole
		}
		admin.Role = *req.Role
	}
	if req.Name != nil {
		admin.Name = *req.Name
	}
	if req.Department != nil {
		admin.Department = *req.Department
	}
	if req.Team != nil {
		admin.Team = *req.Team
	}
	if req.BitrixID != nil {
		admin.BitrixID = *req.BitrixID
	}
	if req.Avatar != nil {
		admin.Avatar = *req.Avatar
	}
	if req.IsActive != nil {
		admin.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		admin.PasswordHash = string(hash)
		// Password change invalidates the active session
		admin.RefreshToken = ""
	}

	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// Delete removes an account
func (s *AdminService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.adminRepo.Delete(ctx, id)
}
