package ports

import (
	"context"

	"github.com/vaultline/authd/internal/core/domain"
)

// CreateApplicationInput carries the settings of a new application.
type CreateApplicationInput struct {
	Name     string
	Version  string
	HwidLock bool
	Messages domain.Messages
}

// UpdateApplicationInput carries a partial update; nil fields are left unchanged.
type UpdateApplicationInput struct {
	Name     *string
	Version  *string
	Active   *bool
	HwidLock *bool
	Messages *domain.Messages
}

// CreateLicensesInput describes a batch of license keys.
type CreateLicensesInput struct {
	Count        int
	MaxUsers     int
	ValidityDays int
}

// BlacklistInput describes a block rule. An empty ApplicationID requests a global rule.
type BlacklistInput struct {
	ApplicationID string
	Type          domain.BlacklistType
	Value         string
	Reason        string
}

// ConsoleService is the owner-console surface over the credential store.
// Every call is authorized against the acting account.
type ConsoleService interface {
	CreateApplication(ctx context.Context, actor *domain.Account, in CreateApplicationInput) (*domain.Application, error)
	ListApplications(ctx context.Context, actor *domain.Account) ([]*domain.Application, error)
	UpdateApplication(ctx context.Context, actor *domain.Account, appID string, in UpdateApplicationInput) (*domain.Application, error)
	RotateAPIKey(ctx context.Context, actor *domain.Account, appID string) (*domain.Application, error)

	CreateLicenseKeys(ctx context.Context, actor *domain.Account, appID string, in CreateLicensesInput) ([]*domain.LicenseKey, error)

	PauseUser(ctx context.Context, actor *domain.Account, appID, userID string) error
	UnpauseUser(ctx context.Context, actor *domain.Account, appID, userID string) error
	ResetHwid(ctx context.Context, actor *domain.Account, appID, userID string) error
	DeleteUser(ctx context.Context, actor *domain.Account, appID, userID string) error

	AddBlacklist(ctx context.Context, actor *domain.Account, in BlacklistInput) (*domain.BlacklistEntry, error)
	RemoveBlacklist(ctx context.Context, actor *domain.Account, appID, entryID string) error
	ListBlacklist(ctx context.Context, actor *domain.Account, appID string) ([]*domain.BlacklistEntry, error)

	ListActivity(ctx context.Context, actor *domain.Account, appID string, limit int) ([]*domain.ActivityLog, error)
}
