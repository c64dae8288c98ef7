package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"csvchat/internal/utils"
)

const window = time.Minute

// Limiter is used to enforce per-client rate limits at the route layer.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// NoopLimiter allows all requests (rate limiting disabled).
type NoopLimiter struct{}

func NewNoopLimiter() *NoopLimiter {
	return &NoopLimiter{}
}

func (l *NoopLimiter) Allow(ctx context.Context, key string) bool {
	return true
}

// RateLimiter implements distributed rate limiting using Redis sorted
// sets as a sliding one-minute window.
type RateLimiter struct {
	client *redis.Client
	limit  int
	logger *utils.Logger
}

// NewRateLimiter creates a new rate limiter. limit <= 0 means unlimited.
func NewRateLimiter(client *redis.Client, limit int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		logger: utils.NewLogger("ratelimit"),
	}
}

// Allow checks if a request should be allowed for the given key. Redis
// failures fail open: a broken limiter must not take the gateway down.
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	allowed, _, _, err := rl.AllowWithDetails(ctx, key, rl.limit)
	if err != nil {
		rl.logger.Warn("rate limit check failed, allowing request", "key", key, "error", err)
		return true
	}
	return allowed
}

// AllowWithDetails checks the sliding window and reports how many
// requests remain and when the window resets.
func (rl *RateLimiter) AllowWithDetails(ctx context.Context, key string, limit int) (bool, int, time.Time, error) {
	if limit <= 0 {
		return true, 0, time.Time{}, nil
	}

	redisKey := fmt.Sprintf("ratelimit:%s", key)
	now := time.Now()
	windowStart := now.Add(-window)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d:%d", now.UnixMilli(), now.Nanosecond()),
	})
	pipe.Expire(ctx, redisKey, 2*window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	// countCmd counted the window before this request was added.
	before := int(countCmd.Val())
	resetAt := now.Add(window)

	if before >= limit {
		return false, 0, resetAt, nil
	}
	return true, limit - before - 1, resetAt, nil
}

// Reset clears the window for a key.
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, fmt.Sprintf("ratelimit:%s", key)).Err()
}
