package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) Sweep(context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestSweeper_RunsUntilCancelled(t *testing.T) {
	target := &countingSweeper{}
	var swept atomic.Int64
	s := NewSweeper(target, 10*time.Millisecond, func(n int64) { swept.Add(n) }, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if target.calls.Load() < 2 {
		t.Errorf("expected repeated sweeps, got %d", target.calls.Load())
	}
	if swept.Load() != int64(target.calls.Load())*2 {
		t.Errorf("onSweep not called for every pass")
	}
}

func TestSweeper_ErrorSkipsCallback(t *testing.T) {
	target := &countingSweeper{err: errors.New("mongo down")}
	called := false
	s := NewSweeper(target, time.Hour, func(int64) { called = true }, zerolog.Nop())

	s.sweepOnce(context.Background())
	if called {
		t.Error("onSweep must not run on error")
	}
}
