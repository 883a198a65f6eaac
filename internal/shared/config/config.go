package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	Port         string
	StoreAPIPort string
	Env          string
	LogLevel     string

	// Where the widget and dashboard read and write: "http" talks to store-api,
	// "memory" keeps everything in-process.
	StoreMode      string
	StoreURL       string
	StoreJWTSecret string
	StoreTokenTTL  time.Duration

	// YAML settings and rules loaded into the in-process store
	SeedFile string

	// Operator tokens for the dashboard routes of chat-api
	DashboardJWTSecret string

	RedisURL        string
	RateLimit       int
	RateLimitWindow time.Duration

	SynonymsFile      string
	MatcherLegacy     bool
	AutoReplyPolicy   string
	AgentActiveWindow time.Duration

	WidgetPollInterval  time.Duration
	SessionPollInterval time.Duration
	WidgetIdleTTL       time.Duration
	SweepSchedule       string
	PublicChatURL       string

	// store-api keeps session history this long
	HistoryRetention time.Duration
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		Port:                os.Getenv("PORT"),
		StoreAPIPort:        os.Getenv("STORE_API_PORT"),
		Env:                 os.Getenv("ENV"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		StoreMode:           os.Getenv("STORE_MODE"),
		StoreURL:            os.Getenv("STORE_URL"),
		StoreJWTSecret:      os.Getenv("STORE_JWT_SECRET"),
		StoreTokenTTL:       getDuration("STORE_TOKEN_TTL", 5*time.Minute),
		SeedFile:            os.Getenv("SEED_FILE"),
		DashboardJWTSecret:  os.Getenv("DASHBOARD_JWT_SECRET"),
		RedisURL:            os.Getenv("REDIS_URL"),
		RateLimit:           getInt("RATE_LIMIT", 5),
		RateLimitWindow:     getDuration("RATE_LIMIT_WINDOW", 10*time.Second),
		SynonymsFile:        os.Getenv("SYNONYMS_FILE"),
		MatcherLegacy:       getBool("MATCHER_LEGACY", false),
		AutoReplyPolicy:     os.Getenv("AUTO_REPLY_POLICY"),
		AgentActiveWindow:   getDuration("AGENT_ACTIVE_WINDOW", 10*time.Minute),
		WidgetPollInterval:  getDuration("WIDGET_POLL_INTERVAL", 3*time.Second),
		SessionPollInterval: getDuration("SESSION_POLL_INTERVAL", 10*time.Second),
		WidgetIdleTTL:       getDuration("WIDGET_IDLE_TTL", 30*time.Minute),
		SweepSchedule:       os.Getenv("SWEEP_SCHEDULE"),
		HistoryRetention:    getDuration("HISTORY_RETENTION", 90*24*time.Hour),
		PublicChatURL:       os.Getenv("PUBLIC_CHAT_URL"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.StoreAPIPort == "" {
		cfg.StoreAPIPort = "8081"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StoreMode == "" {
		cfg.StoreMode = "http"
	}
	if cfg.StoreURL == "" {
		cfg.StoreURL = "http://localhost:" + cfg.StoreAPIPort
	}
	if cfg.AutoReplyPolicy == "" {
		cfg.AutoReplyPolicy = "always"
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = "@every 1m"
	}
	if cfg.PublicChatURL == "" {
		cfg.PublicChatURL = "http://localhost:" + cfg.Port + "/chat"
	}

	return cfg
}

// IsProduction reports whether ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("⚠️ invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}
