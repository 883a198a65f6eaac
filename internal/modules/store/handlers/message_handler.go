package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/utils"
)

type MessageHandler struct {
	store     store.MessageStore
	sessions  *SessionHandler
	validator *utils.Validator
}

func NewMessageHandler(s store.MessageStore, sessions *SessionHandler, v *utils.Validator) *MessageHandler {
	return &MessageHandler{store: s, sessions: sessions, validator: v}
}

// ListMessages godoc
// @Summary List messages
// @Description A session's messages in ascending order
// @Tags Messages
// @Produce json
// @Param session_id query string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /messages [get]
func (h *MessageHandler) ListMessages(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Query("session_id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid session_id")
	}
	if _, ok := h.sessions.load(c, sessionID); !ok {
		return nil
	}

	messages, err := h.store.ListMessages(c.UserContext(), sessionID)
	if err != nil {
		return storeError(c, err)
	}
	return successList(c, messages, len(messages))
}

// AppendMessage godoc
// @Summary Append message
// @Description Idempotent on the message id
// @Tags Messages
// @Accept json
// @Produce json
// @Param message body models.Message true "Message"
// @Success 201 {object} map[string]interface{}
// @Router /messages [post]
func (h *MessageHandler) AppendMessage(c *fiber.Ctx) error {
	var message models.Message
	if err := c.BodyParser(&message); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(message); err != nil {
		return invalid(c, err)
	}
	if _, ok := h.sessions.load(c, message.SessionID); !ok {
		return nil
	}

	if err := h.store.AppendMessage(c.UserContext(), &message); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusCreated, message)
}
