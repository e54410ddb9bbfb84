package redis

import (
	"context"
	"testing"
	"time"
)

func TestConfig_Options(t *testing.T) {
	opts := Config{Addr: "cache:6379", Password: "pw", DB: 2, Timeout: 300 * time.Millisecond}.options()

	if opts.Addr != "cache:6379" || opts.Password != "pw" || opts.DB != 2 {
		t.Fatalf("connection settings not applied: %+v", opts)
	}
	for name, got := range map[string]time.Duration{
		"dial":  opts.DialTimeout,
		"read":  opts.ReadTimeout,
		"write": opts.WriteTimeout,
		"pool":  opts.PoolTimeout,
	} {
		if got != 300*time.Millisecond {
			t.Errorf("%s timeout = %s, want 300ms", name, got)
		}
	}
}

func TestConfig_DefaultTimeout(t *testing.T) {
	opts := Config{Addr: "cache:6379"}.options()
	if opts.DialTimeout != defaultTimeout || opts.ReadTimeout != defaultTimeout {
		t.Fatalf("expected default timeout, got dial=%s read=%s", opts.DialTimeout, opts.ReadTimeout)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	// Port 1 on loopback refuses connections.
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("expected ping error")
	}
}
