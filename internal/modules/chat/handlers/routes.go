package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
)

// RegisterRoutes mounts the chat API. Widget routes are public, dashboard
// routes need an operator token for the business they address.
func RegisterRoutes(app *fiber.App, widgets *WidgetHandler, dashboards *DashboardHandler, jwtService *auth.JWTService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "chat-api",
			"widgets": widgets.registry.Len(),
		})
	})

	// Widget
	w := app.Group("/widget/:business_id")
	w.Get("/qr", widgets.GetQRCode)
	w.Get("/visitors/:visitor_id", widgets.GetState)
	w.Delete("/visitors/:visitor_id", widgets.Teardown)
	w.Post("/visitors/:visitor_id/messages", widgets.SendMessage)
	w.Post("/visitors/:visitor_id/open", widgets.Open)
	w.Post("/visitors/:visitor_id/close", widgets.Close)

	// Dashboard
	d := app.Group("/dashboard/:business_id", auth.AuthMiddleware(jwtService))
	d.Get("/sessions", dashboards.ListSessions)
	d.Post("/sessions/close", dashboards.CloseSessions)
	d.Post("/sessions/:id/select", dashboards.SelectSession)
	d.Patch("/sessions/:id/metadata", dashboards.UpdateMetadata)
	d.Put("/sessions/:id/pin", dashboards.PinSession)
	d.Put("/sessions/:id/label", dashboards.LabelSession)
	d.Put("/sessions/:id/note", dashboards.NoteSession)
	d.Put("/sessions/:id/visitor-name", dashboards.RenameVisitor)
	d.Post("/sessions/:id/close", dashboards.CloseSession)
	d.Post("/sessions/:id/messages", dashboards.SendAgentMessage)
	d.Delete("/selection", dashboards.Deselect)
	d.Get("/messages", dashboards.GetMessages)
	d.Put("/agent-mode", dashboards.SetAgentMode)
}
