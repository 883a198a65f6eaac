package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterFixedWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, 10*time.Second)
	l.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "visitor-1")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "call %d", i)
	}

	ok, _ := l.Allow(ctx, "visitor-2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(10 * time.Second)
	ok, _ = l.Allow(ctx, "visitor-1")
	assert.True(t, ok, "new window")
}

func TestMemoryLimiterSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow(ctx, "a")
	l.Allow(ctx, "b")
	assert.Equal(t, 0, l.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, l.Sweep())
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient("not a url")
	assert.Error(t, err)
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	client, err := NewRedisClient(url)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	l := NewRedisLimiter(client, "test:ratelimit:", 2, time.Second)
	key := uuid.NewString()

	first, err := l.Allow(ctx, key)
	require.NoError(t, err)
	second, _ := l.Allow(ctx, key)
	third, _ := l.Allow(ctx, key)

	assert.True(t, first)
	assert.True(t, second)
	assert.False(t, third)
}
