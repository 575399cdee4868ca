package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"github.com/leadforge/crm-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles account registration and the token lifecycle. The
// current refresh token is stored on the admin row; refresh rotates it so a
// replayed old token stops working.
type AuthService struct {
	adminRepo *repository.AdminRepository
	tokens    *auth.TokenManager
	logger    *zap.Logger
}

func NewAuthService(adminRepo *repository.AdminRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{adminRepo: adminRepo, tokens: tokens, logger: logger}
}

// Register creates an admin account and signs it in
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Admin, *domain.TokenPair, error) {
	if _, err := s.adminRepo.GetByLogin(ctx, req.Login); err == nil {
		return nil, nil, ErrLoginTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleManager
	}
	if !role.IsValid() {
		return nil, nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
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
		return nil, nil, err
	}

	pair, err := s.issue(ctx, admin)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("admin registered", zap.String("login", admin.Login), zap.String("role", string(admin.Role)))
	return admin, pair, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Admin, *domain.TokenPair, error) {
	admin, err := s.adminRepo.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !admin.IsActive {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, admin)
	if err != nil {
		return nil, nil, err
	}
	return admin, pair, nil
}

// Refresh rotates a valid refresh token into a new pair. The presented
// token must match the one stored on the account.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	admin, err := s.adminRepo.GetByID(ctx, claims.AdminID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if !admin.IsActive || admin.RefreshToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	return s.issue(ctx, admin)
}

// Logout invalidates the stored refresh token
func (s *AuthService) Logout(ctx context.Context, adminID uuid.UUID) error {
	return s.adminRepo.UpdateRefreshToken(ctx, adminID, "")
}

// Me returns the account behind the authenticated context
func (s *AuthService) Me(ctx context.Context, adminID uuid.UUID) (*domain.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) issue(ctx context.Context, admin *domain.Admin) (*domain.TokenPair, error) {
	access, refresh, err := s.tokens.IssuePair(admin)
	if err != nil {
		return nil, err
	}
	if err := s.adminRepo.UpdateRefreshToken(ctx, admin.ID, refresh); err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
