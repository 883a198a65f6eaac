package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/utils"
)

type SessionHandler struct {
	store     store.SessionStore
	validator *utils.Validator
}

func NewSessionHandler(s store.SessionStore, v *utils.Validator) *SessionHandler {
	return &SessionHandler{store: s, validator: v}
}

// load fetches a session the caller may see. Sessions of another business
// answer 404.
func (h *SessionHandler) load(c *fiber.Ctx, id uuid.UUID) (*models.Session, bool) {
	session, err := h.store.GetSession(c.UserContext(), id)
	if err != nil {
		_ = storeError(c, err)
		return nil, false
	}
	if !auth.AuthorizeBusiness(c, session.BusinessID) {
		_ = storeError(c, store.ErrNotFound)
		return nil, false
	}
	return session, true
}

// ListSessions godoc
// @Summary List sessions
// @Description Sessions of a business, most recently updated first
// @Tags Sessions
// @Produce json
// @Param business_id query string true "Business ID"
// @Param status query string false "active or closed"
// @Success 200 {object} map[string]interface{}
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}

	status := models.SessionStatus(c.Query("status"))
	if status != "" && status != models.SessionStatusActive && status != models.SessionStatusClosed {
		return fail(c, fiber.StatusBadRequest, "status must be active or closed")
	}

	sessions, err := h.store.ListSessions(c.UserContext(), businessID, status)
	if err != nil {
		return storeError(c, err)
	}
	return successList(c, sessions, len(sessions))
}

// GetSession godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return nil
	}
	session, ok := h.load(c, id)
	if !ok {
		return nil
	}
	return success(c, fiber.StatusOK, session)
}

// CreateSession godoc
// @Summary Create session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session body models.Session true "Session"
// @Success 201 {object} map[string]interface{}
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	var session models.Session
	if err := c.BodyParser(&session); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !authorized(c, session.BusinessID) {
		return nil
	}
	if err := h.validator.ValidateStruct(session); err != nil {
		return invalid(c, err)
	}

	// new sessions always start active
	session.Status = models.SessionStatusActive
	if err := h.store.CreateSession(c.UserContext(), &session); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusCreated, session)
}

// PatchSession godoc
// @Summary Patch session
// @Description Updates status, metadata or updated_at. With If-Match the write only happens at that version.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param If-Match header int false "Expected version"
// @Param patch body models.SessionPatch true "Patch"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /sessions/{id} [patch]
func (h *SessionHandler) PatchSession(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return nil
	}

	ifVersion := 0
	if raw := strings.Trim(c.Get(fiber.HeaderIfMatch), `" `); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return fail(c, fiber.StatusBadRequest, "If-Match must be a positive version number")
		}
		ifVersion = v
	}

	var patch models.SessionPatch
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(patch); err != nil {
		return invalid(c, err)
	}

	if _, ok := h.load(c, id); !ok {
		return nil
	}

	session, err := h.store.PatchSession(c.UserContext(), id, patch, ifVersion)
	if err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusOK, session)
}
