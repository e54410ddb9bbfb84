package redis

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// scriptedRedis answers commands in-process so the limiter can be exercised
// without a server. Every round trip is recorded.
type scriptedRedis struct {
	hits  int64
	ttl   time.Duration
	err   error
	trips [][]string
}

func (h *scriptedRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (h *scriptedRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.trips = append(h.trips, []string{commandLine(cmd)})
		return nil
	}
}

func (h *scriptedRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		trip := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			trip = append(trip, commandLine(cmd))
			if h.err != nil {
				cmd.SetErr(h.err)
				continue
			}
			switch c := cmd.(type) {
			case *redis.IntCmd:
				c.SetVal(h.hits)
			case *redis.BoolCmd:
				c.SetVal(true)
			case *redis.DurationCmd:
				c.SetVal(h.ttl)
			}
		}
		h.trips = append(h.trips, trip)
		return h.err
	}
}

func commandLine(cmd redis.Cmder) string {
	parts := make([]string, 0, len(cmd.Args()))
	for _, a := range cmd.Args() {
		if s, ok := a.(string); ok {
			parts = append(parts, strings.ToLower(s))
		}
	}
	return strings.Join(parts, " ")
}

func newScriptedLimiter(h *scriptedRedis, max int, window time.Duration) *RateLimiter {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(h)
	l := NewRateLimiter(client, "", max, window)
	l.now = func() time.Time { return time.Unix(1_700_000_040, 0) }
	return l
}

func TestRateLimiter_Key(t *testing.T) {
	l := NewRateLimiter(nil, "", 10, time.Minute)
	start := time.Unix(1_700_000_040, 0).UTC()

	got := l.key("login 10.0.0.1", start)
	want := "rl:login_10.0.0.1:1700000040"
	if got != want {
		t.Errorf("key = %q, want %q", got, want)
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name      string
		hits      int64
		ttl       time.Duration
		allowed   bool
		remaining int64
		retry     time.Duration
	}{
		{name: "first hit", hits: 1, ttl: time.Minute, allowed: true, remaining: 2},
		{name: "at limit", hits: 3, ttl: 30 * time.Second, allowed: true, remaining: 0},
		{name: "over limit", hits: 4, ttl: 20 * time.Second, allowed: false, remaining: 0, retry: 20 * time.Second},
		{name: "no ttl uses fallback", hits: 9, ttl: -1, allowed: false, remaining: 0, retry: 5 * time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluate(tc.hits, 3, tc.ttl, 5*time.Second)
			if got.Allowed != tc.allowed || got.Remaining != tc.remaining || got.RetryAfter != tc.retry {
				t.Errorf("evaluate = %+v", got)
			}
		})
	}
}

func TestRateLimiter_ExpirySetInsideTransaction(t *testing.T) {
	h := &scriptedRedis{hits: 1, ttl: time.Minute}
	l := newScriptedLimiter(h, 3, time.Minute)

	res, err := l.Allow(context.Background(), "login:10.0.0.1")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if !res.Allowed || res.Remaining != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(h.trips) != 1 {
		t.Fatalf("expected a single round trip, got %v", h.trips)
	}
	joined := strings.Join(h.trips[0], "|")
	for _, want := range []string{"multi", "incr rl:login:10.0.0.1:1700000040", "expire rl:login:10.0.0.1:1700000040", "nx", "ttl", "exec"} {
		if !strings.Contains(joined, want) {
			t.Errorf("transaction %q missing %q", joined, want)
		}
	}
}

func TestRateLimiter_OverLimitUsesTTL(t *testing.T) {
	h := &scriptedRedis{hits: 4, ttl: 12 * time.Second}
	l := newScriptedLimiter(h, 3, time.Minute)

	res, err := l.Allow(context.Background(), "login:10.0.0.1")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if res.Allowed || res.RetryAfter != 12*time.Second {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRateLimiter_StoreError(t *testing.T) {
	h := &scriptedRedis{err: errors.New("LOADING redis is loading")}
	l := newScriptedLimiter(h, 3, time.Minute)

	if _, err := l.Allow(context.Background(), "login:10.0.0.1"); err == nil {
		t.Fatal("expected error")
	}
}
