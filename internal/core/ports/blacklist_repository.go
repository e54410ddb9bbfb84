package ports

import (
	"context"

	"github.com/vaultline/authd/internal/core/domain"
)

// BlacklistRepository persists block rules.
type BlacklistRepository interface {
	// ActiveMatch reports whether an active entry for (t, value) exists either
	// scoped to applicationID or global.
	ActiveMatch(ctx context.Context, applicationID string, t domain.BlacklistType, value string) (bool, error)
	// Create returns domain.ErrConflict if an active entry already exists for the tuple.
	Create(ctx context.Context, entry *domain.BlacklistEntry) error
	Deactivate(ctx context.Context, applicationID, id string) error
	List(ctx context.Context, applicationID string) ([]*domain.BlacklistEntry, error)
}
