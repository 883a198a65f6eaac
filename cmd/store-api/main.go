package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/store/handlers"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/store/repositories"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/cmd/store-api/docs"
)

// @title Chat Store API
// @version 1.0
// @description Settings, reply rules, sessions and messages of the chat widget
// @contact.name API Support
// @license.name MIT
// @host localhost:8081
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env, cfg.LogLevel)
	log.Info().Msgf("🚀 Starting store-api on port %s", cfg.StoreAPIPort)

	// Init database
	db := database.NewDB(cfg.DatabaseURL, cfg.IsProduction())
	defer db.Close()

	chatStore := repositories.NewChatStore(db.GORM)
	healthHandler := handlers.NewHealthHandler("store-api", db.PingContext)

	// Session history retention
	sched := scheduler.NewScheduler()
	err := sched.AddSpec("history-retention", "@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := chatStore.PruneHistory(ctx, cfg.HistoryRetention); err != nil {
			log.Error().Err(err).Msg("❌ Failed to prune session history")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule history retention")
	}
	sched.Start()
	defer sched.Stop()
	log.Info().Dur("retention", cfg.HistoryRetention).Msg("🗂️  Session history retention scheduled")

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Chat Store API",
	})

	// Middleware
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.RegisterRoutes(app, chatStore, auth.NewJWTService(cfg.StoreJWTSecret, cfg.StoreTokenTTL), healthHandler)

	go func() {
		log.Info().Msgf("✅ store-api running at :%s", cfg.StoreAPIPort)
		log.Info().Msgf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.StoreAPIPort)
		if err := app.Listen(":" + cfg.StoreAPIPort); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("🛑 Shutting down store-api...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("👋 Goodbye!")
}
