package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type SettingsHandler struct {
	settingsService SettingsServiceInterface
}

func NewSettingsHandler(settingsService SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	settings, err := h.settingsService.Get(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get settings")
		return
	}

	_ = c.JSON(200, settings)
}

func (h *SettingsHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.ItemsPerPage != nil && (*req.ItemsPerPage < 1 || *req.ItemsPerPage > 100) {
		c.BadRequest("items_per_page must be between 1 and 100")
		return
	}
	if req.DefaultDueDateDays != nil && *req.DefaultDueDateDays < 0 {
		c.BadRequest("default_due_date_days cannot be negative")
		return
	}

	settings, err := h.settingsService.Update(context.Background(), userID, services.SettingsPatch{
		Theme:                    req.Theme,
		Language:                 req.Language,
		ItemsPerPage:             req.ItemsPerPage,
		DefaultDueDateDays:       req.DefaultDueDateDays,
		EnableEmailNotifications: req.EnableEmailNotifications,
		EnablePushNotifications:  req.EnablePushNotifications,
		AutoArchiveCompleted:     req.AutoArchiveCompleted,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidTheme) {
			c.BadRequest("invalid theme")
			return
		}
		c.InternalServerError("failed to update settings")
		return
	}

	_ = c.JSON(200, settings)
}
