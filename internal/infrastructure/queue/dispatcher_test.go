package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaultline/authd/internal/core/domain"
)

type collectingSink struct {
	mu      sync.Mutex
	entries []domain.ActivityLog
	block   chan struct{}
}

func (s *collectingSink) Record(_ context.Context, e domain.ActivityLog) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func (s *collectingSink) snapshot() []domain.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ActivityLog(nil), s.entries...)
}

func TestDispatcher_PreservesPerApplicationOrder(t *testing.T) {
	sink := &collectingSink{}
	d := NewDispatcher(4, sink, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()

	events := []string{domain.EventLoginFailed, domain.EventHwidBound, domain.EventUserLogin, domain.EventUserLogout}
	for _, ev := range events {
		d.Record(context.Background(), domain.ActivityLog{ApplicationID: "app-1", Event: ev})
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}

	got := sink.snapshot()
	if len(got) != len(events) {
		t.Fatalf("expected %d records, got %d", len(events), len(got))
	}
	for i, ev := range events {
		if got[i].Event != ev {
			t.Errorf("record %d: expected %s, got %s", i, ev, got[i].Event)
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	var dropped atomic.Int32
	d := NewDispatcher(1, &collectingSink{}, func(string) { dropped.Add(1) }, zerolog.Nop())

	// No workers running: the single shard fills up.
	for i := 0; i < channelBuffer+3; i++ {
		d.Record(context.Background(), domain.ActivityLog{ApplicationID: "app-1", Event: domain.EventUserLogin})
	}
	if got := dropped.Load(); got != 3 {
		t.Errorf("expected 3 drops, got %d", got)
	}
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, &collectingSink{}, nil, zerolog.Nop())
	first := d.shardIndex("app-42")
	for i := 0; i < 10; i++ {
		if idx := d.shardIndex("app-42"); idx != first {
			t.Fatalf("shard changed: %d != %d", idx, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard out of range: %d", first)
	}
}
