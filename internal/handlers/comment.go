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

type CommentHandler struct {
	commentService CommentServiceInterface
	itemService    ItemServiceInterface
	accessService  AccessServiceInterface
}

func NewCommentHandler(
	commentService CommentServiceInterface,
	itemService ItemServiceInterface,
	accessService AccessServiceInterface,
) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		itemService:    itemService,
		accessService:  accessService,
	}
}

func (h *CommentHandler) resolveItem(c *drift.Context, op authz.Op) (uuid.UUID, *models.ProjectItem, authz.Standing, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, nil, authz.None(), false
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return uuid.Nil, nil, authz.None(), false
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.BadRequest("invalid item id")
		return uuid.Nil, nil, authz.None(), false
	}

	ctx := context.Background()

	standing, err := h.accessService.AuthorizeProject(ctx, projectID, userID, op)
	if err != nil {
		respondProjectError(c, err)
		return uuid.Nil, nil, authz.None(), false
	}

	item, err := h.itemService.GetByID(ctx, itemID)
	if err != nil || item.ProjectID != projectID {
		c.NotFound("item not found")
		return uuid.Nil, nil, authz.None(), false
	}

	return userID, item, standing, true
}

func (h *CommentHandler) List(c *drift.Context) {
	_, item, _, ok := h.resolveItem(c, authz.OpRead)
	if !ok {
		return
	}

	comments, err := h.commentService.GetByItem(context.Background(), item.ID)
	if err != nil {
		c.InternalServerError("failed to get comments")
		return
	}

	if comments == nil {
		comments = []models.Comment{}
	}
	_ = c.JSON(200, comments)
}

func (h *CommentHandler) Create(c *drift.Context) {
	userID, item, _, ok := h.resolveItem(c, authz.OpWrite)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Content == "" {
		c.BadRequest("content is required")
		return
	}

	comment, err := h.commentService.Create(context.Background(), item.ID, userID, req.Content)
	if err != nil {
		c.InternalServerError("failed to create comment")
		return
	}

	_ = c.JSON(201, comment)
}

// Delete removes a comment. The author may always delete their own; anyone
// else needs delete-level standing on the project.
func (h *CommentHandler) Delete(c *drift.Context) {
	userID, item, standing, ok := h.resolveItem(c, authz.OpRead)
	if !ok {
		return
	}

	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		c.BadRequest("invalid comment id")
		return
	}

	ctx := context.Background()

	comment, err := h.commentService.GetByID(ctx, commentID)
	if err != nil || comment.ItemID != item.ID {
		c.NotFound("comment not found")
		return
	}

	if comment.AuthorID != userID && !standing.Allows(authz.OpDelete) {
		c.Forbidden("insufficient access")
		return
	}

	if err := h.commentService.Delete(ctx, commentID); err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			c.NotFound("comment not found")
			return
		}
		c.InternalServerError("failed to delete comment")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "comment deleted"})
}
