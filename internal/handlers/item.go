package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/taskhive/taskhive-api/internal/authz"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type ItemHandler struct {
	itemService         ItemServiceInterface
	projectService      ProjectServiceInterface
	accessService       AccessServiceInterface
	notificationService NotificationServiceInterface
}

func NewItemHandler(
	itemService ItemServiceInterface,
	projectService ProjectServiceInterface,
	accessService AccessServiceInterface,
	notificationService NotificationServiceInterface,
) *ItemHandler {
	return &ItemHandler{
		itemService:         itemService,
		projectService:      projectService,
		accessService:       accessService,
		notificationService: notificationService,
	}
}

func respondItemError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		c.NotFound("item not found")
	case errors.Is(err, services.ErrItemNotStartable):
		c.BadRequest("item is not pending or already claimed")
	case errors.Is(err, services.ErrItemNotCompletable):
		c.BadRequest("item is not in progress")
	case errors.Is(err, services.ErrNotClaimant):
		c.Forbidden("only the user who started the item can complete it")
	case errors.Is(err, services.ErrInvalidStatus):
		c.BadRequest("invalid status")
	case errors.Is(err, services.ErrInvalidPriority):
		c.BadRequest("invalid priority")
	default:
		respondProjectError(c, err)
	}
}

// itemInProject loads the item and confirms it belongs to the project in the
// path. Items reached through the wrong project path are treated as missing.
func (h *ItemHandler) itemInProject(ctx context.Context, c *drift.Context, projectID uuid.UUID) (*models.ProjectItem, bool) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.BadRequest("invalid item id")
		return nil, false
	}

	item, err := h.itemService.GetByID(ctx, itemID)
	if err != nil || item.ProjectID != projectID {
		c.NotFound("item not found")
		return nil, false
	}
	return item, true
}

func (h *ItemHandler) authorize(c *drift.Context, op authz.Op) (uuid.UUID, uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, uuid.Nil, false
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return uuid.Nil, uuid.Nil, false
	}

	if _, err := h.accessService.AuthorizeProject(context.Background(), projectID, userID, op); err != nil {
		respondProjectError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, projectID, true
}

func (h *ItemHandler) Create(c *drift.Context) {
	userID, projectID, ok := h.authorize(c, authz.OpWrite)
	if !ok {
		return
	}

	var req dto.CreateItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	ctx := context.Background()

	item, err := h.itemService.Create(ctx, projectID, req.Title, req.Description, req.Priority, req.DueDate, userID)
	if err != nil {
		respondItemError(c, err)
		return
	}

	go func() {
		bg := context.Background()
		if project, err := h.projectService.GetByID(bg, projectID); err == nil {
			_ = h.notificationService.TaskCreated(bg, item, project.Title, userID)
		}
	}()

	_ = c.JSON(201, item)
}

func (h *ItemHandler) List(c *drift.Context) {
	_, projectID, ok := h.authorize(c, authz.OpRead)
	if !ok {
		return
	}

	items, err := h.itemService.GetByProject(context.Background(), projectID)
	if err != nil {
		c.InternalServerError("failed to get items")
		return
	}

	if items == nil {
		items = []models.ProjectItem{}
	}
	_ = c.JSON(200, items)
}

func (h *ItemHandler) Get(c *drift.Context) {
	_, projectID, ok := h.authorize(c, authz.OpRead)
	if !ok {
		return
	}

	item, ok := h.itemInProject(context.Background(), c, projectID)
	if !ok {
		return
	}

	_ = c.JSON(200, item)
}

func (h *ItemHandler) Update(c *drift.Context) {
	_, projectID, ok := h.authorize(c, authz.OpWrite)
	if !ok {
		return
	}

	ctx := context.Background()

	item, ok := h.itemInProject(ctx, c, projectID)
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	updated, err := h.itemService.Update(ctx, item.ID, services.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondItemError(c, err)
		return
	}

	_ = c.JSON(200, updated)
}

func (h *ItemHandler) Delete(c *drift.Context) {
	_, projectID, ok := h.authorize(c, authz.OpDelete)
	if !ok {
		return
	}

	ctx := context.Background()

	item, ok := h.itemInProject(ctx, c, projectID)
	if !ok {
		return
	}

	if err := h.itemService.Delete(ctx, item.ID); err != nil {
		respondItemError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "item deleted"})
}

// Start claims the item for the caller. Access to the project is enough;
// the pending/unclaimed precondition is enforced atomically in the service.
func (h *ItemHandler) Start(c *drift.Context) {
	userID, projectID, ok := h.authorize(c, authz.OpRead)
	if !ok {
		return
	}

	ctx := context.Background()

	item, ok := h.itemInProject(ctx, c, projectID)
	if !ok {
		return
	}

	started, err := h.itemService.Start(ctx, item.ID, userID)
	if err != nil {
		respondItemError(c, err)
		return
	}

	go func() {
		bg := context.Background()
		if project, err := h.projectService.GetByID(bg, projectID); err == nil {
			_ = h.notificationService.TaskStatusChanged(bg, started, project.Title, userID)
		}
	}()

	_ = c.JSON(200, started)
}

func (h *ItemHandler) Complete(c *drift.Context) {
	userID, projectID, ok := h.authorize(c, authz.OpRead)
	if !ok {
		return
	}

	ctx := context.Background()

	item, ok := h.itemInProject(ctx, c, projectID)
	if !ok {
		return
	}

	completed, err := h.itemService.Complete(ctx, item.ID, userID)
	if err != nil {
		respondItemError(c, err)
		return
	}

	go func() {
		bg := context.Background()
		if project, err := h.projectService.GetByID(bg, projectID); err == nil {
			_ = h.notificationService.TaskStatusChanged(bg, completed, project.Title, userID)
		}
	}()

	_ = c.JSON(200, completed)
}
