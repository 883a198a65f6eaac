package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/agent"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/matcher"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/persist"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/ratelimit"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/resolver"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/handlers"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/dashboard"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/widget"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/cmd/chat-api/docs"
)

// @title Chat Widget API
// @version 1.0
// @description Embeddable chat widget and operator dashboard
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env, cfg.LogLevel)
	log.Info().Msgf("🚀 Starting chat-api on port %s", cfg.Port)

	stores := newStoreFactory(cfg)

	// Matcher + resolver
	var matcherOpts []matcher.Option
	if cfg.SynonymsFile != "" {
		table, err := matcher.LoadSynonymTable(cfg.SynonymsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load synonym table")
		}
		matcherOpts = append(matcherOpts, matcher.WithSynonyms(table))
		log.Info().Str("file", cfg.SynonymsFile).Msg("📚 Synonym table loaded")
	}
	if cfg.MatcherLegacy {
		matcherOpts = append(matcherOpts, matcher.WithLegacyMatching())
		log.Warn().Msg("⚠️  Legacy keyword matching enabled")
	}
	engine := resolver.NewEngine(matcher.New(matcherOpts...))

	policy, err := agent.ParsePolicy(cfg.AutoReplyPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid AUTO_REPLY_POLICY")
	}
	log.Info().Str("policy", string(policy)).Msg("🤝 Auto-reply policy")

	sched := scheduler.NewScheduler()
	sched.Start()
	defer sched.Stop()

	// Visitor rate limit
	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, "chat:ratelimit", cfg.RateLimit, cfg.RateLimitWindow)
		log.Info().Msg("🧱 Rate limiter: redis")
	} else {
		mem := ratelimit.NewMemoryLimiter(cfg.RateLimit, cfg.RateLimitWindow)
		if err := sched.AddSpec("ratelimit-sweep", cfg.SweepSchedule, func() { mem.Sweep() }); err != nil {
			log.Fatal().Err(err).Msg("Invalid SWEEP_SCHEDULE")
		}
		limiter = mem
		log.Info().Msg("🧱 Rate limiter: in-memory")
	}

	// Widget + dashboard registries
	widgets := widget.NewRegistry(widget.Deps{
		Resolver:  engine,
		Scheduler: sched,
		Gate:      agent.NewGate(policy, cfg.AgentActiveWindow),
		Writes:    persist.DefaultConfig,
		OnWriteFail: func(desc string, err error) {
			log.Error().Err(err).Str("write", desc).Msg("❌ message could not be stored, kept locally")
		},
		PollInterval: cfg.WidgetPollInterval,
	}, func(businessID uuid.UUID) widget.Store {
		return stores(businessID)
	}, cfg.WidgetIdleTTL)
	defer widgets.Close()

	if err := widgets.StartSweeper(sched, cfg.SweepSchedule); err != nil {
		log.Fatal().Err(err).Msg("Invalid SWEEP_SCHEDULE")
	}

	dashboards := dashboard.NewRegistry(dashboard.Deps{
		Scheduler:       sched,
		SessionInterval: cfg.SessionPollInterval,
		MessageInterval: cfg.WidgetPollInterval,
	}, func(businessID uuid.UUID) dashboard.Store {
		return stores(businessID)
	})
	defer dashboards.Close()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Chat Widget API",
	})

	// Middleware
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.RegisterRoutes(app,
		handlers.NewWidgetHandler(widgets, limiter, cfg.PublicChatURL),
		handlers.NewDashboardHandler(dashboards),
		auth.NewJWTService(cfg.DashboardJWTSecret, 0),
	)

	go func() {
		log.Info().Msgf("✅ chat-api running at :%s", cfg.Port)
		log.Info().Msgf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("🛑 Shutting down chat-api...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("👋 Goodbye!")
}

// storeView is everything a widget or dashboard needs from the store
type storeView interface {
	widget.Store
	dashboard.Store
}

// newStoreFactory picks where widgets and dashboards read and write
func newStoreFactory(cfg *config.Config) func(businessID uuid.UUID) storeView {
	switch cfg.StoreMode {
	case "memory":
		log.Warn().Msg("⚠️  STORE_MODE=memory, chats are lost on restart")
		mem := store.NewMemory()
		if cfg.SeedFile == "" {
			log.Warn().Msg("⚠️  SEED_FILE not set, every widget answers \"not configured\"")
		} else {
			n, err := mem.LoadSeed(cfg.SeedFile)
			if err != nil {
				log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("❌ failed to seed memory store")
			}
			log.Info().Int("businesses", n).Str("file", cfg.SeedFile).Msg("🌱 memory store seeded")
		}
		return func(uuid.UUID) storeView { return mem }

	case "http":
		tokens := auth.NewJWTService(cfg.StoreJWTSecret, cfg.StoreTokenTTL)
		if !tokens.Enabled() {
			log.Warn().Msg("⚠️  STORE_JWT_SECRET not set, store requests carry no token")
		}
		log.Info().Str("url", cfg.StoreURL).Msg("🗄️  Using remote store")
		return func(businessID uuid.UUID) storeView {
			return store.NewHTTPClient(cfg.StoreURL, businessID, store.WithTokens(tokens))
		}

	default:
		log.Fatal().Str("mode", cfg.StoreMode).Msg("Unknown STORE_MODE (use: http, memory)")
		return nil
	}
}
