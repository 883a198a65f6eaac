package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/shared/utils"
)

type RuleHandler struct {
	store     store.RuleStore
	validator *utils.Validator
}

func NewRuleHandler(s store.RuleStore, v *utils.Validator) *RuleHandler {
	return &RuleHandler{store: s, validator: v}
}

// ownsAutoReply reports whether id belongs to the token's business. Open
// access (no token) owns everything.
func (h *RuleHandler) ownsAutoReply(c *fiber.Ctx, id uuid.UUID) bool {
	businessID, ok := auth.BusinessFromContext(c)
	if !ok {
		return true
	}
	rules, err := h.store.ListAutoReplies(c.UserContext(), businessID)
	if err != nil {
		return false
	}
	for _, r := range rules {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (h *RuleHandler) ownsAdvancedReply(c *fiber.Ctx, id uuid.UUID) bool {
	businessID, ok := auth.BusinessFromContext(c)
	if !ok {
		return true
	}
	rules, err := h.store.ListAdvancedReplies(c.UserContext(), businessID)
	if err != nil {
		return false
	}
	for _, r := range rules {
		if r.ID == id {
			return true
		}
	}
	return false
}

// ListAutoReplies godoc
// @Summary List auto replies
// @Description Rules of a business ordered by position
// @Tags Rules
// @Produce json
// @Param business_id query string true "Business ID"
// @Success 200 {object} map[string]interface{}
// @Router /auto-replies [get]
func (h *RuleHandler) ListAutoReplies(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}
	rules, err := h.store.ListAutoReplies(c.UserContext(), businessID)
	if err != nil {
		return storeError(c, err)
	}
	return successList(c, rules, len(rules))
}

// CreateAutoReply godoc
// @Summary Create auto reply
// @Description Appended after the existing rules unless a position is given
// @Tags Rules
// @Accept json
// @Produce json
// @Param rule body models.AutoReplyRule true "Rule"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /auto-replies [post]
func (h *RuleHandler) CreateAutoReply(c *fiber.Ctx) error {
	var rule models.AutoReplyRule
	if err := c.BodyParser(&rule); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !authorized(c, rule.BusinessID) {
		return nil
	}
	if err := h.validator.ValidateStruct(rule); err != nil {
		return invalid(c, err)
	}

	rule.ID = uuid.Nil
	if err := h.store.CreateAutoReply(c.UserContext(), &rule); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusCreated, rule)
}

// UpdateAutoReply godoc
// @Summary Update auto reply
// @Tags Rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body models.AutoReplyRule true "Rule"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /auto-replies/{id} [put]
func (h *RuleHandler) UpdateAutoReply(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return nil
	}

	var rule models.AutoReplyRule
	if err := c.BodyParser(&rule); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(rule); err != nil {
		return invalid(c, err)
	}
	if !h.ownsAutoReply(c, id) {
		return storeError(c, store.ErrNotFound)
	}

	rule.ID = id
	if err := h.store.UpdateAutoReply(c.UserContext(), &rule); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusOK, rule)
}

// DeleteAutoReply godoc
// @Summary Delete auto reply
// @Tags Rules
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /auto-replies/{id} [delete]
func (h *RuleHandler) DeleteAutoReply(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return nil
	}
	if !h.ownsAutoReply(c, id) {
		return storeError(c, store.ErrNotFound)
	}
	if err := h.store.DeleteAutoReply(c.UserContext(), id); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusOK, fiber.Map{"id": id})
}

// ImportAutoReplies godoc
// @Summary Import auto replies
// @Description Appends an array of rules in order after the existing ones
// @Tags Rules
// @Accept json
// @Produce json
// @Param business_id query string true "Business ID"
// @Param rules body []models.AutoReplyRule true "Rules"
// @Success 201 {object} map[string]interface{}
// @Router /auto-replies/import [post]
func (h *RuleHandler) ImportAutoReplies(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}

	var rules []models.AutoReplyRule
	if err := c.BodyParser(&rules); err != nil {
		return fail(c, fiber.StatusBadRequest, "Body must be an array of rules")
	}
	for _, r := range rules {
		if err := h.validator.ValidateStruct(r); err != nil {
			return invalid(c, err)
		}
	}

	created, err := h.store.ImportAutoReplies(c.UserContext(), businessID, rules)
	if err != nil {
		return storeError(c, err)
	}
	log.Info().Str("business_id", businessID.String()).Int("count", len(created)).Msg("📥 auto replies imported")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   created,
		"count":  len(created),
	})
}

// ExportAutoReplies godoc
// @Summary Export auto replies
// @Description Downloads the current rules as a JSON array
// @Tags Rules
// @Produce json
// @Param business_id query string true "Business ID"
// @Success 200 {array} models.AutoReplyRule
// @Router /auto-replies/export [get]
func (h *RuleHandler) ExportAutoReplies(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}
	rules, err := h.store.ListAutoReplies(c.UserContext(), businessID)
	if err != nil {
		return storeError(c, err)
	}
	c.Attachment("auto-replies.json")
	return c.JSON(rules)
}

// ListAdvancedReplies godoc
// @Summary List advanced replies
// @Tags Rules
// @Produce json
// @Param business_id query string true "Business ID"
// @Success 200 {object} map[string]interface{}
// @Router /advanced-replies [get]
func (h *RuleHandler) ListAdvancedReplies(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}
	rules, err := h.store.ListAdvancedReplies(c.UserContext(), businessID)
	if err != nil {
		return storeError(c, err)
	}
	return successList(c, rules, len(rules))
}

// CreateAdvancedReply godoc
// @Summary Create advanced reply
// @Tags Rules
// @Accept json
// @Produce json
// @Param rule body models.AdvancedReplyRule true "Rule"
// @Success 201 {object} map[string]interface{}
// @Router /advanced-replies [post]
func (h *RuleHandler) CreateAdvancedReply(c *fiber.Ctx) error {
	var rule models.AdvancedReplyRule
	if err := c.BodyParser(&rule); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if !authorized(c, rule.BusinessID) {
		return nil
	}
	if err := h.validator.ValidateStruct(rule); err != nil {
		return invalid(c, err)
	}

	rule.ID = uuid.Nil
	if err := h.store.CreateAdvancedReply(c.UserContext(), &rule); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusCreated, rule)
}

// UpdateAdvancedReply godoc
// @Summary Update advanced reply
// @Tags Rules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body models.AdvancedReplyRule true "Rule"
// @Success 200 {object} map[string]interface{}
// @Router /advanced-replies/{id} [put]
func (h *RuleHandler) UpdateAdvancedReply(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return nil
	}

	var rule models.AdvancedReplyRule
	if err := c.BodyParser(&rule); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(rule); err != nil {
		return invalid(c, err)
	}
	if !h.ownsAdvancedReply(c, id) {
		return storeError(c, store.ErrNotFound)
	}

	rule.ID = id
	if err := h.store.UpdateAdvancedReply(c.UserContext(), &rule); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusOK, rule)
}

// DeleteAdvancedReply godoc
// @Summary Delete advanced reply
// @Tags Rules
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Router /advanced-replies/{id} [delete]
func (h *RuleHandler) DeleteAdvancedReply(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return nil
	}
	if !h.ownsAdvancedReply(c, id) {
		return storeError(c, store.ErrNotFound)
	}
	if err := h.store.DeleteAdvancedReply(c.UserContext(), id); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusOK, fiber.Map{"id": id})
}

// ImportAdvancedReplies godoc
// @Summary Import advanced replies
// @Tags Rules
// @Accept json
// @Produce json
// @Param business_id query string true "Business ID"
// @Param rules body []models.AdvancedReplyRule true "Rules"
// @Success 201 {object} map[string]interface{}
// @Router /advanced-replies/import [post]
func (h *RuleHandler) ImportAdvancedReplies(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}

	var rules []models.AdvancedReplyRule
	if err := c.BodyParser(&rules); err != nil {
		return fail(c, fiber.StatusBadRequest, "Body must be an array of rules")
	}
	for _, r := range rules {
		if err := h.validator.ValidateStruct(r); err != nil {
			return invalid(c, err)
		}
	}

	created, err := h.store.ImportAdvancedReplies(c.UserContext(), businessID, rules)
	if err != nil {
		return storeError(c, err)
	}
	log.Info().Str("business_id", businessID.String()).Int("count", len(created)).Msg("📥 advanced replies imported")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   created,
		"count":  len(created),
	})
}

// ExportAdvancedReplies godoc
// @Summary Export advanced replies
// @Tags Rules
// @Produce json
// @Param business_id query string true "Business ID"
// @Success 200 {array} models.AdvancedReplyRule
// @Router /advanced-replies/export [get]
func (h *RuleHandler) ExportAdvancedReplies(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}
	rules, err := h.store.ListAdvancedReplies(c.UserContext(), businessID)
	if err != nil {
		return storeError(c, err)
	}
	c.Attachment("advanced-replies.json")
	return c.JSON(rules)
}
