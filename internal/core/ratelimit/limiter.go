package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter admits at most limit events per key in each fixed window
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// fixedWindowScript increments the counter and starts the window on first hit
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
	return 0
end
return 1
`

// RedisLimiter is a fixed-window limiter shared by every chat-api replica
type RedisLimiter struct {
	rdb    redis.Scripter
	script *redis.Script
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter
func NewRedisLimiter(rdb redis.Scripter, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		script: redis.NewScript(fixedWindowScript),
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	result, err := l.script.Run(ctx, l.rdb, []string{l.prefix + key}, l.limit, l.window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	return result == 1, nil
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis client connection test failed: %w", err)
	}
	return client, nil
}

type counter struct {
	start time.Time
	count int
}

// MemoryLimiter is the single-process fallback when no Redis is configured
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*counter
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewMemoryLimiter creates an in-process limiter
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*counter),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &counter{start: now}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.limit, nil
}

// Sweep forgets windows that have expired and returns how many were dropped
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	dropped := 0
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
			dropped++
		}
	}
	return dropped
}
