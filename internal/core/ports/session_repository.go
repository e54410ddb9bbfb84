package ports

import (
	"context"
	"time"

	"github.com/vaultline/authd/internal/core/domain"
)

// SessionRepository persists active sessions keyed by token digest.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.ActiveSession) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*domain.ActiveSession, error)
	Touch(ctx context.Context, tokenHash string, at time.Time) error
	// Deactivate ends the session; unknown or already-ended sessions are not an error.
	Deactivate(ctx context.Context, tokenHash string) error
	DeactivateByUser(ctx context.Context, appUserID string) error
	// DeactivateExpired ends every active session whose expiry is before now.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
