package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type DashboardHandler struct {
	dashboardService DashboardServiceInterface
	settingsService  SettingsServiceInterface
	userService      UserServiceInterface
}

func NewDashboardHandler(
	dashboardService DashboardServiceInterface,
	settingsService SettingsServiceInterface,
	userService UserServiceInterface,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		settingsService:  settingsService,
		userService:      userService,
	}
}

type dashboardResponse struct {
	User     dto.UserResponse           `json:"user"`
	Summary  *services.DashboardSummary `json:"summary"`
	Settings *models.UserSettings       `json:"settings"`
}

// Get assembles the profile, aggregate statistics and preferences into one
// payload.
func (h *DashboardHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	summary, err := h.dashboardService.Summary(ctx, userID)
	if err != nil {
		c.InternalServerError("failed to load dashboard")
		return
	}

	settings, err := h.settingsService.Get(ctx, userID)
	if err != nil {
		c.InternalServerError("failed to load settings")
		return
	}

	_ = c.JSON(200, dashboardResponse{
		User:     userResponse(user),
		Summary:  summary,
		Settings: settings,
	})
}
