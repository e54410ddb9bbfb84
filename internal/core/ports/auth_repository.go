package ports

import (
	"context"
	"time"

	"github.com/vaultline/authd/internal/core/domain"
)

// ApplicationRepository persists tenant applications.
type ApplicationRepository interface {
	// FindByAPIKey returns domain.ErrNotFound when no application holds key.
	FindByAPIKey(ctx context.Context, key string) (*domain.Application, error)
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Application, error)
	Create(ctx context.Context, app *domain.Application) error
	Update(ctx context.Context, app *domain.Application) error
	// RotateAPIKey swaps the key in a single write; the old key stops resolving immediately.
	RotateAPIKey(ctx context.Context, id, newKey string) error
}

// AppUserRepository persists end users of an application.
type AppUserRepository interface {
	FindByUsername(ctx context.Context, applicationID, username string) (*domain.AppUser, error)
	FindByID(ctx context.Context, applicationID, id string) (*domain.AppUser, error)
	// Exists reports whether username, or email when non-empty, is taken within the application.
	Exists(ctx context.Context, applicationID, username, email string) (bool, error)
	// Create returns domain.ErrConflict on a uniqueness violation.
	Create(ctx context.Context, user *domain.AppUser) error
	RecordFailedAttempt(ctx context.Context, id string, at time.Time) error
	RecordLogin(ctx context.Context, id, ip string, at time.Time) error
	// BindHwid sets the HWID only if none is stored yet; returns domain.ErrConflict otherwise.
	BindHwid(ctx context.Context, id, hwid string) error
	ResetHwid(ctx context.Context, id string) error
	SetPaused(ctx context.Context, id string, paused bool) error
	Delete(ctx context.Context, id string) error
}

// AccountRepository persists platform owner accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// UpsertByEmail creates the account on first sign-in and returns the stored record.
	UpsertByEmail(ctx context.Context, email, role string) (*domain.Account, error)
}
