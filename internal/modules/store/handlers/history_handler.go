package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/audit"
)

// HistoryStore is implemented by stores that record session changes
type HistoryStore interface {
	SessionHistory(ctx context.Context, sessionID uuid.UUID, limit int) ([]audit.Entry, error)
}

type HistoryHandler struct {
	history  HistoryStore
	sessions *SessionHandler
}

func NewHistoryHandler(history HistoryStore, sessions *SessionHandler) *HistoryHandler {
	return &HistoryHandler{history: history, sessions: sessions}
}

// GetSessionHistory godoc
// @Summary Session change history
// @Description Status and metadata changes of a session, newest first
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param limit query int false "Max entries" default(100)
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /sessions/{id}/history [get]
func (h *HistoryHandler) GetSessionHistory(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return nil
	}
	if _, ok := h.sessions.load(c, id); !ok {
		return nil
	}

	entries, err := h.history.SessionHistory(c.UserContext(), id, c.QueryInt("limit", 100))
	if err != nil {
		return storeError(c, err)
	}
	return successList(c, entries, len(entries))
}
