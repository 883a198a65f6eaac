package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/dashboard"
)

type DashboardHandler struct {
	registry *dashboard.Registry
}

func NewDashboardHandler(registry *dashboard.Registry) *DashboardHandler {
	return &DashboardHandler{registry: registry}
}

func (h *DashboardHandler) dashboardFor(c *fiber.Ctx) (*dashboard.Dashboard, uuid.UUID, bool) {
	businessID, ok := businessParam(c)
	if !ok {
		return nil, uuid.Nil, false
	}
	if !auth.AuthorizeBusiness(c, businessID) {
		_ = fail(c, fiber.StatusForbidden, "Token is not valid for this business")
		return nil, uuid.Nil, false
	}
	d, err := h.registry.Get(c.UserContext(), businessID)
	if err != nil {
		_ = chatError(c, err)
		return nil, uuid.Nil, false
	}
	return d, businessID, true
}

// sessionView is the session list as the operator sees it
func (h *DashboardHandler) sessionView(d *dashboard.Dashboard, businessID uuid.UUID) fiber.Map {
	var selectedID *uuid.UUID
	if sel, ok := d.Selected(); ok {
		selectedID = &sel.ID
	}
	sessions := d.Sessions()
	return fiber.Map{
		"sessions":    sessions,
		"count":       len(sessions),
		"selected_id": selectedID,
		"agent_mode":  d.AgentMode(),
		"notices":     h.registry.Notices(businessID),
	}
}

// ListSessions godoc
// @Summary Active sessions
// @Description Active sessions of a business, the selected one and pending failure notices
// @Tags Dashboard
// @Produce json
// @Param business_id path string true "Business ID"
// @Param refresh query bool false "Poll the store before answering"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions [get]
func (h *DashboardHandler) ListSessions(c *fiber.Ctx) error {
	d, businessID, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	if c.QueryBool("refresh") {
		if err := d.RefreshSessions(c.UserContext()); err != nil {
			log.Warn().Err(err).Msg("session refresh failed, serving cached list")
		}
	}
	return success(c, h.sessionView(d, businessID))
}

// SelectSession godoc
// @Summary Select a session
// @Description Loads the session's log and starts polling it
// @Tags Dashboard
// @Param business_id path string true "Business ID"
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/{id}/select [post]
func (h *DashboardHandler) SelectSession(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	id, ok := sessionParam(c)
	if !ok {
		return nil
	}
	if err := d.Select(c.UserContext(), id); err != nil {
		return chatError(c, err)
	}
	return success(c, fiber.Map{"selected_id": id, "messages": d.Messages()})
}

// Deselect godoc
// @Summary Clear the selection
// @Tags Dashboard
// @Param business_id path string true "Business ID"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/{business_id}/selection [delete]
func (h *DashboardHandler) Deselect(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	d.Deselect()
	return success(c, fiber.Map{"selected_id": nil})
}

// GetMessages godoc
// @Summary Messages of the selected session
// @Tags Dashboard
// @Produce json
// @Param business_id path string true "Business ID"
// @Param refresh query bool false "Poll the store before answering"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /dashboard/{business_id}/messages [get]
func (h *DashboardHandler) GetMessages(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	sel, selected := d.Selected()
	if !selected {
		return fail(c, fiber.StatusConflict, "No session selected")
	}
	if c.QueryBool("refresh") {
		if err := d.RefreshMessages(c.UserContext()); err != nil {
			log.Warn().Err(err).Msg("message refresh failed, serving cached log")
		}
	}
	messages := d.Messages()
	return c.JSON(fiber.Map{
		"status":     "success",
		"session_id": sel.ID,
		"data":       messages,
		"count":      len(messages),
	})
}

// UpdateMetadata godoc
// @Summary Merge session metadata
// @Description Shallow-merges the given keys into the session's metadata
// @Tags Dashboard
// @Accept json
// @Param business_id path string true "Business ID"
// @Param id path string true "Session ID"
// @Param metadata body map[string]interface{} true "Metadata keys"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/{id}/metadata [patch]
func (h *DashboardHandler) UpdateMetadata(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	id, ok := sessionParam(c)
	if !ok {
		return nil
	}

	var patch models.Metadata
	if err := c.BodyParser(&patch); err != nil || len(patch) == 0 {
		return fail(c, fiber.StatusBadRequest, "Body must be a non-empty JSON object")
	}

	s, err := d.UpdateMetadata(c.UserContext(), id, patch)
	if err != nil {
		return chatError(c, err)
	}
	return success(c, s)
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// PinSession godoc
// @Summary Pin or unpin a session
// @Tags Dashboard
// @Accept json
// @Param business_id path string true "Business ID"
// @Param id path string true "Session ID"
// @Param body body pinRequest true "Pinned"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/{id}/pin [put]
func (h *DashboardHandler) PinSession(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	id, ok := sessionParam(c)
	if !ok {
		return nil
	}
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s, err := d.Pin(c.UserContext(), id, req.Pinned)
	if err != nil {
		return chatError(c, err)
	}
	return success(c, s)
}

// LabelSession godoc
// @Summary Label a session
// @Tags Dashboard
// @Accept json
// @Param business_id path string true "Business ID"
// @Param id path string true "Session ID"
// @Param label body models.Label true "Label"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/{id}/label [put]
func (h *DashboardHandler) LabelSession(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	id, ok := sessionParam(c)
	if !ok {
		return nil
	}
	var label models.Label
	if err := c.BodyParser(&label); err != nil || label.Text == "" {
		return fail(c, fiber.StatusBadRequest, "Label text is required")
	}
	s, err := d.Label(c.UserContext(), id, label)
	if err != nil {
		return chatError(c, err)
	}
	return success(c, s)
}

type noteRequest struct {
	Note string `json:"note"`
}

// NoteSession godoc
// @Summary Save the operator note
// @Tags Dashboard
// @Accept json
// @Param business_id path string true "Business ID"
// @Param id path string true "Session ID"
// @Param body body noteRequest true "Note"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/{id}/note [put]
func (h *DashboardHandler) NoteSession(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	id, ok := sessionParam(c)
	if !ok {
		return nil
	}
	var req noteRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s, err := d.Note(c.UserContext(), id, req.Note)
	if err != nil {
		return chatError(c, err)
	}
	return success(c, s)
}

type renameRequest struct {
	Name string `json:"name"`
}

// RenameVisitor godoc
// @Summary Rename the visitor
// @Tags Dashboard
// @Accept json
// @Param business_id path string true "Business ID"
// @Param id path string true "Session ID"
// @Param body body renameRequest true "Display name"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/{id}/visitor-name [put]
func (h *DashboardHandler) RenameVisitor(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	id, ok := sessionParam(c)
	if !ok {
		return nil
	}
	var req renameRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return fail(c, fiber.StatusBadRequest, "name is required")
	}
	s, err := d.RenameVisitor(c.UserContext(), id, req.Name)
	if err != nil {
		return chatError(c, err)
	}
	return success(c, s)
}

// CloseSession godoc
// @Summary Close a session
// @Tags Dashboard
// @Param business_id path string true "Business ID"
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/{id}/close [post]
func (h *DashboardHandler) CloseSession(c *fiber.Ctx) error {
	d, businessID, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	id, ok := sessionParam(c)
	if !ok {
		return nil
	}
	if err := d.Close(c.UserContext(), id); err != nil {
		return chatError(c, err)
	}
	return success(c, h.sessionView(d, businessID))
}

type closeManyRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// CloseSessions godoc
// @Summary Close several sessions
// @Description Keeps going past failures; closed ids are reported either way
// @Tags Dashboard
// @Accept json
// @Param business_id path string true "Business ID"
// @Param body body closeManyRequest true "Session IDs"
// @Success 200 {object} map[string]interface{}
// @Failure 207 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/close [post]
func (h *DashboardHandler) CloseSessions(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	var req closeManyRequest
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return fail(c, fiber.StatusBadRequest, "ids is required")
	}

	closed, err := d.CloseMany(c.UserContext(), req.IDs)
	if err != nil {
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
			"status": "partial",
			"closed": closed,
			"error":  err.Error(),
		})
	}
	return success(c, fiber.Map{"closed": closed})
}

type agentModeRequest struct {
	Enabled bool `json:"enabled"`
}

// SetAgentMode godoc
// @Summary Toggle agent mode
// @Tags Dashboard
// @Accept json
// @Param business_id path string true "Business ID"
// @Param body body agentModeRequest true "Toggle"
// @Success 200 {object} map[string]interface{}
// @Router /dashboard/{business_id}/agent-mode [put]
func (h *DashboardHandler) SetAgentMode(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	var req agentModeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	d.SetAgentMode(req.Enabled)
	return success(c, fiber.Map{"agent_mode": d.AgentMode()})
}

// SendAgentMessage godoc
// @Summary Send an agent message
// @Description Selects the session if needed and writes an agent-tagged message into it
// @Tags Dashboard
// @Accept json
// @Param business_id path string true "Business ID"
// @Param id path string true "Session ID"
// @Param message body sendMessageRequest true "Message"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /dashboard/{business_id}/sessions/{id}/messages [post]
func (h *DashboardHandler) SendAgentMessage(c *fiber.Ctx) error {
	d, _, ok := h.dashboardFor(c)
	if !ok {
		return nil
	}
	id, ok := sessionParam(c)
	if !ok {
		return nil
	}
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !d.AgentMode() {
		return chatError(c, dashboard.ErrAgentModeDisabled)
	}

	if sel, selected := d.Selected(); !selected || sel.ID != id {
		if err := d.Select(c.UserContext(), id); err != nil {
			return chatError(c, err)
		}
	}

	msg, err := d.SendAgentMessage(c.UserContext(), req.Text)
	if err != nil {
		return chatError(c, err)
	}
	return success(c, msg)
}
