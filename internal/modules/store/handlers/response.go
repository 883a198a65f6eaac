package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/utils"
)

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func successList(c *fiber.Ctx, data interface{}, count int) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   data,
		"count":  count,
	})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func invalid(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"fields": utils.FormatValidationErrors(err),
	})
}

// storeError maps store sentinels to status codes. 409s carry a code so the
// client can tell a stale version from a closed session.
func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Version conflict, re-read and retry",
			"code":  store.CodeVersionConflict,
		})
	case errors.Is(err, store.ErrSessionClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session is closed",
			"code":  store.CodeSessionClosed,
		})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("❌ store operation failed")
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
}

// businessQuery reads and authorizes ?business_id=. On false the response
// has been written.
func businessQuery(c *fiber.Ctx) (uuid.UUID, bool) {
	raw := c.Query("business_id")
	if raw == "" {
		_ = fail(c, fiber.StatusBadRequest, "business_id is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		_ = fail(c, fiber.StatusBadRequest, "Invalid business_id")
		return uuid.Nil, false
	}
	if !authorized(c, id) {
		return uuid.Nil, false
	}
	return id, true
}

// authorized checks the token against the business a request addresses
func authorized(c *fiber.Ctx, businessID uuid.UUID) bool {
	if businessID == uuid.Nil {
		_ = fail(c, fiber.StatusBadRequest, "business_id is required")
		return false
	}
	if !auth.AuthorizeBusiness(c, businessID) {
		_ = fail(c, fiber.StatusForbidden, "Token is not valid for this business")
		return false
	}
	return true
}

func idParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = fail(c, fiber.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}
