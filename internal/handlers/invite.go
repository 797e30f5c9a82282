package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/taskhive/taskhive-api/internal/authz"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/pkg/dto"
)

type InviteHandler struct {
	serverService       ServerServiceInterface
	accessService       AccessServiceInterface
	userService         UserServiceInterface
	notificationService NotificationServiceInterface
	emailService        *services.EmailService
	baseURL             string
}

func NewInviteHandler(
	serverService ServerServiceInterface,
	accessService AccessServiceInterface,
	userService UserServiceInterface,
	notificationService NotificationServiceInterface,
	emailService *services.EmailService,
	baseURL string,
) *InviteHandler {
	return &InviteHandler{
		serverService:       serverService,
		accessService:       accessService,
		userService:         userService,
		notificationService: notificationService,
		emailService:        emailService,
		baseURL:             baseURL,
	}
}

func respondInviteError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInviteNotFound):
		c.NotFound("invitation not found")
	case errors.Is(err, services.ErrInviteNotUsable):
		c.BadRequest("invitation is no longer usable")
	case errors.Is(err, services.ErrInviteExpired):
		c.BadRequest("invitation has expired")
	case errors.Is(err, services.ErrInvalidRole):
		c.BadRequest("invalid role")
	case errors.Is(err, services.ErrAlreadyMember):
		_ = c.JSON(409, map[string]string{"error": "user is already a member"})
	default:
		respondServerError(c, err)
	}
}

func (h *InviteHandler) requireManager(c *drift.Context) (uuid.UUID, uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return uuid.Nil, uuid.Nil, false
	}

	serverID, err := uuid.Parse(c.Param("serverId"))
	if err != nil {
		c.BadRequest("invalid server id")
		return uuid.Nil, uuid.Nil, false
	}

	standing, err := h.accessService.AuthorizeServer(context.Background(), serverID, userID, authz.OpRead)
	if err != nil {
		respondServerError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	if !standing.CanManageMembers() {
		c.Forbidden("insufficient access")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, serverID, true
}

func (h *InviteHandler) Create(c *drift.Context) {
	userID, serverID, ok := h.requireManager(c)
	if !ok {
		return
	}

	var req dto.CreateInvitationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.MaxUses < 0 {
		c.BadRequest("max_uses cannot be negative")
		return
	}

	ctx := context.Background()

	invitation, err := h.serverService.CreateInvitation(ctx, serverID, userID, req.Role, req.MaxUses, req.ExpiresAt)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	if req.Email != "" && h.emailService != nil && h.emailService.IsConfigured() {
		go func() {
			bg := context.Background()
			server, err := h.serverService.GetByID(bg, serverID)
			if err != nil {
				return
			}
			inviter, err := h.userService.GetByID(bg, userID)
			if err != nil {
				return
			}
			inviteURL := fmt.Sprintf("%s/api/v1/invitations/%s/join", h.baseURL, invitation.InviteCode)
			_ = h.emailService.SendServerInvite(req.Email, server.Name, inviter.Name, inviteURL)
		}()
	}

	_ = c.JSON(201, invitation)
}

func (h *InviteHandler) List(c *drift.Context) {
	_, serverID, ok := h.requireManager(c)
	if !ok {
		return
	}

	invitations, err := h.serverService.GetInvitations(context.Background(), serverID)
	if err != nil {
		c.InternalServerError("failed to get invitations")
		return
	}

	if invitations == nil {
		invitations = []models.ServerInvitation{}
	}
	_ = c.JSON(200, invitations)
}

func (h *InviteHandler) Revoke(c *drift.Context) {
	_, serverID, ok := h.requireManager(c)
	if !ok {
		return
	}

	inviteID, err := uuid.Parse(c.Param("inviteId"))
	if err != nil {
		c.BadRequest("invalid invitation id")
		return
	}

	if err := h.serverService.RevokeInvitation(context.Background(), inviteID, serverID); err != nil {
		respondInviteError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invitation revoked"})
}

// Join redeems an invitation code for the caller.
func (h *InviteHandler) Join(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	code := c.Param("code")
	if code == "" {
		c.BadRequest("code is required")
		return
	}

	ctx := context.Background()

	server, err := h.serverService.JoinByCode(ctx, code, userID)
	if err != nil {
		respondInviteError(c, err)
		return
	}

	go func() {
		bg := context.Background()
		if user, err := h.userService.GetByID(bg, userID); err == nil {
			_ = h.notificationService.MemberJoined(bg, server.ID, server.Name, user.ID, user.Name)
		}
	}()

	_ = c.JSON(200, server)
}
