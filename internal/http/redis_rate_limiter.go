package httpx

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/redis/go-redis/v9"
)

const redisRateTimeout = 250 * time.Millisecond

// redisRateLimiter shares counters across replicas through Redis. Any Redis
// failure fails open so the limiter never blocks traffic on its own outage.
type redisRateLimiter struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisRateLimiter connects to Redis and verifies the connection.
func NewRedisRateLimiter(addr, password string, db int, logger *slog.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisRateLimiter{client: client, logger: logger}, nil
}

func (r *redisRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisRateTimeout)
	defer cancel()

	redisKey := "penpal:ratelimit:" + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		r.logger.Warn("rate limiter unavailable, allowing request", "error", err)
		return rateDecision{allowed: true}
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			r.logger.Warn("rate limiter expire failed", "key", redisKey, "error", err)
		}
	}
	windowEnd := time.Now().Add(window)
	if ttl, err := r.client.TTL(ctx, redisKey).Result(); err == nil && ttl > 0 {
		windowEnd = time.Now().Add(ttl)
	}
	return rateDecision{
		allowed:   int(count) <= limit,
		count:     int(count),
		windowEnd: windowEnd,
	}
}

func (r *redisRateLimiter) Close() {
	_ = r.client.Close()
}
