package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/domain"
)

// ErrInvalidToken is returned when a token fails signature or claims checks
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the admin identity inside both access and refresh tokens
type Claims struct {
	AdminID uuid.UUID        `json:"adminId"`
	Login   string           `json:"login"`
	Name    string           `json:"name"`
	Role    domain.AdminRole `json:"role"`
	Team    string           `json:"team"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 token pairs. Access and refresh
// tokens use separate secrets so a leaked access secret cannot mint
// refresh tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewTokenManager creates a token manager from JWT configuration
func NewTokenManager(cfg *config.JWTConfig) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL(),
		refreshTTL:    cfg.RefreshTTL(),
		issuer:        cfg.Issuer,
	}
}

// IssuePair signs a fresh access and refresh token for the admin
func (m *TokenManager) IssuePair(admin *domain.Admin) (access, refresh string, err error) {
	access, err = m.sign(admin, m.accessSecret, m.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err = m.sign(admin, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return access, refresh, nil
}

// ValidateAccess parses and verifies an access token
func (m *TokenManager) ValidateAccess(token string) (*Claims, error) {
	return m.validate(token, m.accessSecret)
}

// ValidateRefresh parses and verifies a refresh token
func (m *TokenManager) ValidateRefresh(token string) (*Claims, error) {
	return m.validate(token, m.refreshSecret)
}

func (m *TokenManager) sign(admin *domain.Admin, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AdminID: admin.ID,
		Login:   admin.Login,
		Name:    admin.Name,
		Role:    admin.Role,
		Team:    admin.Team,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique ID keeps tokens issued in the same second distinct,
			// which refresh rotation depends on
			ID:        uuid.NewString(),
			Subject:   admin.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *TokenManager) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
