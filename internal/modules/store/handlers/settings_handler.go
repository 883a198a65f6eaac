package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

type SettingsHandler struct {
	store store.SettingsStore
}

func NewSettingsHandler(s store.SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: s}
}

// GetSettings godoc
// @Summary Get widget settings
// @Description Latest settings row of a business
// @Tags Settings
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param business_id query string true "Business ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}

	settings, err := h.store.LatestSettings(c.UserContext(), businessID)
	if err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusOK, settings)
}

// SaveSettings godoc
// @Summary Save widget settings
// @Description Full-document update of the latest settings row, inserted when the business has none
// @Tags Settings
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param business_id query string true "Business ID"
// @Param settings body models.WidgetSettings true "Settings"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /settings [put]
func (h *SettingsHandler) SaveSettings(c *fiber.Ctx) error {
	businessID, ok := businessQuery(c)
	if !ok {
		return nil
	}

	var settings models.WidgetSettings
	if err := c.BodyParser(&settings); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	settings.BusinessID = businessID

	if err := h.store.SaveSettings(c.UserContext(), &settings); err != nil {
		return storeError(c, err)
	}
	return success(c, fiber.StatusOK, settings)
}
