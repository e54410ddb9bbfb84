package ports

import (
	"context"

	"github.com/vaultline/authd/internal/core/domain"
)

// LicenseRepository persists license keys. Consume and Release must be
// single conditional updates at the storage layer.
type LicenseRepository interface {
	FindByKey(ctx context.Context, key string) (*domain.LicenseKey, error)
	CreateMany(ctx context.Context, keys []*domain.LicenseKey) error
	// Consume increments current_users only while current_users < max_users.
	// Returns domain.ErrLicenseFull when no slot was taken.
	Consume(ctx context.Context, id string) error
	// Release decrements current_users, never below zero.
	Release(ctx context.Context, id string) error
}
