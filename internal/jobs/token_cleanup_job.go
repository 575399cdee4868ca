package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leadforge/crm-api/internal/auth"
	"github.com/leadforge/crm-api/internal/domain"
	"go.uber.org/zap"
)

// TokenCleanupJobName is the name of the refresh token cleanup job
const TokenCleanupJobName = "token_cleanup"

// SessionStore is the slice of the admin repository the cleanup job needs.
type SessionStore interface {
	ListWithRefreshTokens(ctx context.Context) ([]domain.Admin, error)
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error
}

// RefreshValidator checks whether a stored refresh token is still valid.
type RefreshValidator interface {
	ValidateRefresh(token string) (*auth.Claims, error)
}

// TokenCleanupJob clears expired refresh tokens from admin rows. A stored
// token past its expiry can never be exchanged again, so keeping it around
// only widens the window for leaked-database replay.
type TokenCleanupJob struct {
	admins  SessionStore
	tokens  RefreshValidator
	logger  *zap.Logger
	timeout time.Duration
}

func NewTokenCleanupJob(admins SessionStore, tokens RefreshValidator, logger *zap.Logger, timeout time.Duration) *TokenCleanupJob {
	return &TokenCleanupJob{
		admins:  admins,
		tokens:  tokens,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one cleanup pass. Called by the scheduler.
func (j *TokenCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	admins, err := j.admins.ListWithRefreshTokens(ctx)
	if err != nil {
		j.logger.Error("refresh token cleanup failed to list sessions", zap.Error(err))
		return
	}

	cleared := 0
	for _, admin := range admins {
		if _, err := j.tokens.ValidateRefresh(admin.RefreshToken); err == nil {
			continue
		}
		if err := j.admins.UpdateRefreshToken(ctx, admin.ID, ""); err != nil {
			j.logger.Warn("failed to clear expired refresh token",
				zap.String("login", admin.Login),
				zap.Error(err))
			continue
		}
		cleared++
	}

	j.logger.Info("refresh token cleanup finished",
		zap.Int("sessions_checked", len(admins)),
		zap.Int("tokens_cleared", cleared))
}
