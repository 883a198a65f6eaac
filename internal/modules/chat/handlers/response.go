package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/agent"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/dashboard"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/widget"
)

func success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// chatError maps runtime errors to status codes
func chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, widget.ErrEmptyMessage), errors.Is(err, agent.ErrEmptyMessage):
		return fail(c, fiber.StatusBadRequest, "Message is empty")
	case errors.Is(err, widget.ErrWidgetDisabled):
		return fail(c, fiber.StatusNotFound, "Chat widget is not configured for this business")
	case errors.Is(err, dashboard.ErrAgentModeDisabled):
		return fail(c, fiber.StatusConflict, "Agent mode is off")
	case errors.Is(err, dashboard.ErrNoSelection):
		return fail(c, fiber.StatusConflict, "No session selected")
	case errors.Is(err, dashboard.ErrUnknownSession), errors.Is(err, store.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Session not found")
	case errors.Is(err, store.ErrSessionClosed):
		return fail(c, fiber.StatusConflict, "Session is closed")
	case errors.Is(err, store.ErrVersionConflict):
		return fail(c, fiber.StatusConflict, "Session was changed by someone else, try again")
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("❌ chat request failed")
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
}

func businessParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("business_id"))
	if err != nil {
		_ = fail(c, fiber.StatusBadRequest, "Invalid business_id")
		return uuid.Nil, false
	}
	return id, true
}

func sessionParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = fail(c, fiber.StatusBadRequest, "Invalid session id")
		return uuid.Nil, false
	}
	return id, true
}
