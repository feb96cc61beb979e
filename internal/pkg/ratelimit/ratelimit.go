package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rate_limit:"

// Limiter is a fixed-window counter kept in Redis.
// A nil client lets every request through, so local setups run without Redis.
type Limiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration
}

func NewLimiter(rdb redis.Cmdable, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// NewRedisClient connects and pings. An empty addr yields a nil client.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	slog.Info("Redis connected", "addr", addr)
	return rdb, nil
}

// Allow counts one hit for key and reports whether it is within the limit.
// Redis errors fail open.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.rdb == nil || l.limit <= 0 {
		return true
	}

	bucket := time.Now().UnixNano() / int64(l.window)
	fullKey := fmt.Sprintf("%s%s:%d", keyPrefix, key, bucket)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.Expire(ctx, fullKey, l.window)
		return nil
	})
	if err != nil {
		slog.Warn("Rate limiter unavailable, allowing request", "error", err)
		return true
	}

	return incr.Val() <= int64(l.limit)
}
