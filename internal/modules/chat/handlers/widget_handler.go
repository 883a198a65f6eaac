package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/ratelimit"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/widget"
)

type WidgetHandler struct {
	registry *widget.Registry
	limiter  ratelimit.Limiter
	chatURL  string
}

func NewWidgetHandler(registry *widget.Registry, limiter ratelimit.Limiter, chatURL string) *WidgetHandler {
	return &WidgetHandler{
		registry: registry,
		limiter:  limiter,
		chatURL:  strings.TrimRight(chatURL, "/"),
	}
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *WidgetHandler) widgetFor(c *fiber.Ctx) (*widget.Widget, uuid.UUID, string, bool) {
	businessID, ok := businessParam(c)
	if !ok {
		return nil, uuid.Nil, "", false
	}
	visitorID := c.Params("visitor_id")
	if visitorID == "" {
		_ = fail(c, fiber.StatusBadRequest, "visitor_id is required")
		return nil, uuid.Nil, "", false
	}

	w, err := h.registry.Get(c.UserContext(), businessID, visitorID)
	if err != nil {
		_ = chatError(c, err)
		return nil, uuid.Nil, "", false
	}
	return w, businessID, visitorID, true
}

// SendMessage godoc
// @Summary Send a visitor message
// @Description Appends the message and resolves the bot reply. Deferred replies show up in the widget state later.
// @Tags Widget
// @Accept json
// @Produce json
// @Param business_id path string true "Business ID"
// @Param visitor_id path string true "Visitor ID"
// @Param message body sendMessageRequest true "Message"
// @Success 200 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /widget/{business_id}/visitors/{visitor_id}/messages [post]
func (h *WidgetHandler) SendMessage(c *fiber.Ctx) error {
	businessID, ok := businessParam(c)
	if !ok {
		return nil
	}
	visitorID := c.Params("visitor_id")

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.UserContext(), businessID.String()+":"+visitorID)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ rate limiter unavailable, letting message through")
		} else if !allowed {
			return fail(c, fiber.StatusTooManyRequests, "Too many messages, slow down")
		}
	}

	w, _, _, ok := h.widgetFor(c)
	if !ok {
		return nil
	}

	result, err := w.SendMessage(c.UserContext(), req.Text)
	if errors.Is(err, widget.ErrTornDown) {
		// swept between lookup and send, start over with a fresh instance
		w, _, _, ok = h.widgetFor(c)
		if !ok {
			return nil
		}
		result, err = w.SendMessage(c.UserContext(), req.Text)
	}
	if err != nil {
		return chatError(c, err)
	}

	return success(c, fiber.Map{
		"visitor_message": result.Visitor,
		"outcome":         result.Outcome.String(),
		"reply":           result.Reply,
		"suppressed":      result.Suppressed,
		"typing":          w.Typing(),
	})
}

// GetState godoc
// @Summary Widget state
// @Description Messages, typing indicator and branding of a visitor's widget
// @Tags Widget
// @Produce json
// @Param business_id path string true "Business ID"
// @Param visitor_id path string true "Visitor ID"
// @Param refresh query bool false "Poll the store before answering"
// @Success 200 {object} map[string]interface{}
// @Router /widget/{business_id}/visitors/{visitor_id} [get]
func (h *WidgetHandler) GetState(c *fiber.Ctx) error {
	w, _, _, ok := h.widgetFor(c)
	if !ok {
		return nil
	}
	if c.QueryBool("refresh") {
		if err := w.Refresh(c.UserContext()); err != nil {
			log.Warn().Err(err).Msg("widget refresh failed, serving cached state")
		}
	}
	return success(c, w.State())
}

// Open godoc
// @Summary Open the widget
// @Description Starts polling the visitor's session
// @Tags Widget
// @Param business_id path string true "Business ID"
// @Param visitor_id path string true "Visitor ID"
// @Success 200 {object} map[string]interface{}
// @Router /widget/{business_id}/visitors/{visitor_id}/open [post]
func (h *WidgetHandler) Open(c *fiber.Ctx) error {
	w, _, _, ok := h.widgetFor(c)
	if !ok {
		return nil
	}
	w.Open()
	return success(c, w.State())
}

// Close godoc
// @Summary Close the widget
// @Description Stops polling the visitor's session
// @Tags Widget
// @Param business_id path string true "Business ID"
// @Param visitor_id path string true "Visitor ID"
// @Success 200 {object} map[string]interface{}
// @Router /widget/{business_id}/visitors/{visitor_id}/close [post]
func (h *WidgetHandler) Close(c *fiber.Ctx) error {
	w, _, _, ok := h.widgetFor(c)
	if !ok {
		return nil
	}
	w.Close()
	return success(c, w.State())
}

// Teardown godoc
// @Summary Tear down a widget instance
// @Description Cancels polling and pending replies of the visitor's widget
// @Tags Widget
// @Param business_id path string true "Business ID"
// @Param visitor_id path string true "Visitor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /widget/{business_id}/visitors/{visitor_id} [delete]
func (h *WidgetHandler) Teardown(c *fiber.Ctx) error {
	businessID, ok := businessParam(c)
	if !ok {
		return nil
	}
	if !h.registry.Remove(businessID, c.Params("visitor_id")) {
		return fail(c, fiber.StatusNotFound, "No widget instance for this visitor")
	}
	return success(c, fiber.Map{"torn_down": true})
}

// ChatLink is the hosted chat page of a business
func (h *WidgetHandler) ChatLink(businessID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", h.chatURL, businessID)
}

// GetQRCode godoc
// @Summary Chat link QR code
// @Description PNG QR code pointing at the hosted chat page of a business
// @Tags Widget
// @Produce image/png
// @Param business_id path string true "Business ID"
// @Param size query int false "Pixels" default(256)
// @Success 200 {file} image/png
// @Router /widget/{business_id}/qr [get]
func (h *WidgetHandler) GetQRCode(c *fiber.Ctx) error {
	businessID, ok := businessParam(c)
	if !ok {
		return nil
	}

	size := c.QueryInt("size", 256)
	if size < 64 || size > 1024 {
		return fail(c, fiber.StatusBadRequest, "size must be between 64 and 1024")
	}

	png, err := qrcode.Encode(h.ChatLink(businessID), qrcode.Medium, size)
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to generate QR")
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	c.Set("Content-Type", "image/png")
	c.Set("Content-Disposition", "inline; filename=chat-qr.png")
	return c.Send(png)
}
