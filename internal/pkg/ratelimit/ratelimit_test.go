package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_NilClientAllows(t *testing.T) {
	l := NewLimiter(nil, 1, time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(context.Background(), "client"))
	}

	var nilLimiter *Limiter
	assert.True(t, nilLimiter.Allow(context.Background(), "client"))
}

func TestLimiter_UnreachableRedisFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	l := NewLimiter(rdb, 1, time.Minute)
	assert.True(t, l.Allow(context.Background(), "client"))
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), "", "", 0)
	require.NoError(t, err)
	assert.Nil(t, rdb)
}
