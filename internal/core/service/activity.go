package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vaultline/authd/internal/core/domain"
	"github.com/vaultline/authd/internal/core/ports"
)

const activityWriteTimeout = 5 * time.Second

type activityRecorder struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

// NewActivityRecorder returns a recorder that writes synchronously and
// swallows write failures after logging them.
func NewActivityRecorder(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityRecorder {
	return &activityRecorder{repo: repo, log: log}
}

func (r *activityRecorder) Record(ctx context.Context, entry domain.ActivityLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	// Detached so a caller disconnect does not drop an already-decided record.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), activityWriteTimeout)
	defer cancel()

	if err := r.repo.Insert(writeCtx, &entry); err != nil {
		r.log.Warn().Err(err).
			Str("event", entry.Event).
			Str("application_id", entry.ApplicationID).
			Msg("failed to record activity")
	}
}
