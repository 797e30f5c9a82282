package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type FeedHandler struct {
	feedService FeedServiceInterface
}

func NewFeedHandler(feedService FeedServiceInterface) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

func (h *FeedHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	posts, err := h.feedService.List(context.Background(), limit)
	if err != nil {
		c.InternalServerError("failed to get feed")
		return
	}

	if posts == nil {
		posts = []models.FeedPost{}
	}
	_ = c.JSON(200, posts)
}

func (h *FeedHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateFeedPostRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Content == "" {
		c.BadRequest("content is required")
		return
	}

	post, err := h.feedService.Create(context.Background(), userID, req.Content)
	if err != nil {
		c.InternalServerError("failed to create post")
		return
	}

	_ = c.JSON(201, post)
}

func (h *FeedHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	postID, err := uuid.Parse(c.Param("postId"))
	if err != nil {
		c.BadRequest("invalid post id")
		return
	}

	if err := h.feedService.Delete(context.Background(), postID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrPostNotFound):
			c.NotFound("post not found")
		case errors.Is(err, services.ErrNotAuthor):
			c.Forbidden("only the author can delete this post")
		default:
			c.InternalServerError("failed to delete post")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "post deleted"})
}
