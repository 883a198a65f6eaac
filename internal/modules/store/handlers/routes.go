package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/utils"
)

// RegisterRoutes mounts the store API. Everything except /health sits behind
// the bearer-token middleware. Session history is served when s records it.
func RegisterRoutes(app *fiber.App, s store.Store, jwtService *auth.JWTService, health *HealthHandler) {
	validator := utils.NewValidator()

	settingsHandler := NewSettingsHandler(s)
	ruleHandler := NewRuleHandler(s, validator)
	sessionHandler := NewSessionHandler(s, validator)
	messageHandler := NewMessageHandler(s, sessionHandler, validator)

	app.Get("/health", health.GetHealth)

	authed := auth.AuthMiddleware(jwtService)

	// Settings
	app.Get("/settings", authed, settingsHandler.GetSettings)
	app.Put("/settings", authed, settingsHandler.SaveSettings)

	// Auto replies
	app.Get("/auto-replies", authed, ruleHandler.ListAutoReplies)
	app.Post("/auto-replies", authed, ruleHandler.CreateAutoReply)
	app.Post("/auto-replies/import", authed, ruleHandler.ImportAutoReplies)
	app.Get("/auto-replies/export", authed, ruleHandler.ExportAutoReplies)
	app.Put("/auto-replies/:id", authed, ruleHandler.UpdateAutoReply)
	app.Delete("/auto-replies/:id", authed, ruleHandler.DeleteAutoReply)

	// Advanced replies
	app.Get("/advanced-replies", authed, ruleHandler.ListAdvancedReplies)
	app.Post("/advanced-replies", authed, ruleHandler.CreateAdvancedReply)
	app.Post("/advanced-replies/import", authed, ruleHandler.ImportAdvancedReplies)
	app.Get("/advanced-replies/export", authed, ruleHandler.ExportAdvancedReplies)
	app.Put("/advanced-replies/:id", authed, ruleHandler.UpdateAdvancedReply)
	app.Delete("/advanced-replies/:id", authed, ruleHandler.DeleteAdvancedReply)

	// Sessions
	app.Get("/sessions", authed, sessionHandler.ListSessions)
	app.Post("/sessions", authed, sessionHandler.CreateSession)
	app.Get("/sessions/:id", authed, sessionHandler.GetSession)
	app.Patch("/sessions/:id", authed, sessionHandler.PatchSession)
	if history, ok := s.(HistoryStore); ok {
		app.Get("/sessions/:id/history", authed, NewHistoryHandler(history, sessionHandler).GetSessionHistory)
	}

	// Messages
	app.Get("/messages", authed, messageHandler.ListMessages)
	app.Post("/messages", authed, messageHandler.AppendMessage)
}
