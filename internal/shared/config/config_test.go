package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_API_PORT", "ENV", "STORE_MODE", "STORE_URL", "AUTO_REPLY_POLICY", "WIDGET_POLL_INTERVAL", "SESSION_POLL_INTERVAL", "RATE_LIMIT", "RATE_LIMIT_WINDOW"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "8081", cfg.StoreAPIPort)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "http", cfg.StoreMode)
	assert.Equal(t, "http://localhost:8081", cfg.StoreURL)
	assert.Equal(t, "always", cfg.AutoReplyPolicy)
	assert.Equal(t, 3*time.Second, cfg.WidgetPollInterval)
	assert.Equal(t, 10*time.Second, cfg.SessionPollInterval)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("WIDGET_POLL_INTERVAL", "5s")
	t.Setenv("SESSION_POLL_INTERVAL", "not-a-duration")
	t.Setenv("MATCHER_LEGACY", "true")
	t.Setenv("STORE_MODE", "memory")
	t.Setenv("RATE_LIMIT", "-3")

	cfg := LoadConfig()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Second, cfg.WidgetPollInterval)
	assert.Equal(t, 10*time.Second, cfg.SessionPollInterval)
	assert.True(t, cfg.MatcherLegacy)
	assert.Equal(t, "memory", cfg.StoreMode)
	assert.Equal(t, 5, cfg.RateLimit)
}
