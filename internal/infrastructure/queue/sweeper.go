package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultSweepInterval = 5 * time.Minute

// SessionSweeper is the subset of the session tracker the sweeper drives.
type SessionSweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Sweeper periodically deactivates expired sessions.
type Sweeper struct {
	target   SessionSweeper
	interval time.Duration
	onSweep  func(n int64)
	log      zerolog.Logger
}

// NewSweeper returns a Sweeper running every interval. onSweep, when set,
// receives the number of sessions ended by each successful pass.
func NewSweeper(target SessionSweeper, interval time.Duration, onSweep func(n int64), log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{target: target, interval: interval, onSweep: onSweep, log: log}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	n, err := s.target.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error().Err(err).Msg("session sweep failed")
		}
		return
	}
	if s.onSweep != nil {
		s.onSweep(n)
	}
}
