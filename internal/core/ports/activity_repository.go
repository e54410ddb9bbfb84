package ports

import (
	"context"

	"github.com/vaultline/authd/internal/core/domain"
)

// ActivityRepository is the append-only activity log store.
type ActivityRepository interface {
	Insert(ctx context.Context, entry *domain.ActivityLog) error
	ListByApplication(ctx context.Context, applicationID string, limit int) ([]*domain.ActivityLog, error)
}

// ActivityRecorder appends activity records. Implementations never return
// errors to the caller; a failed write must not abort the primary operation.
type ActivityRecorder interface {
	Record(ctx context.Context, entry domain.ActivityLog)
}
