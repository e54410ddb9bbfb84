package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRateLimitPrefix = "rl:"

// RateResult is the outcome of one Allow call.
type RateResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter is a fixed-window counter. INCR and EXPIRE NX run in one
// MULTI so a window key never outlives its window.
type RateLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, prefix string, max int, window time.Duration) *RateLimiter {
	if prefix == "" {
		prefix = defaultRateLimitPrefix
	}
	return &RateLimiter{
		client: client,
		prefix: prefix,
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

// Allow counts one hit for key in the current window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (RateResult, error) {
	windowStart := l.now().UTC().Truncate(l.window)
	redisKey := l.key(key, windowStart)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateResult{}, fmt.Errorf("rate limit: %w", err)
	}

	hits := incr.Val()
	retry := ttl.Val()
	return evaluate(hits, l.max, retry, windowStart.Add(l.window).Sub(l.now().UTC())), nil
}

func (l *RateLimiter) key(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), windowStart.Unix())
}

// evaluate turns a hit count into a result. fallback is used as the retry
// delay when redis reports no TTL.
func evaluate(hits, max int64, ttl, fallback time.Duration) RateResult {
	res := RateResult{Allowed: hits <= max, Remaining: max - hits}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = fallback
		}
	}
	return res
}
