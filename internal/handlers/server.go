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

type ServerHandler struct {
	serverService       ServerServiceInterface
	accessService       AccessServiceInterface
	userService         UserServiceInterface
	projectService      ProjectServiceInterface
	notificationService NotificationServiceInterface
}

func NewServerHandler(
	serverService ServerServiceInterface,
	accessService AccessServiceInterface,
	userService UserServiceInterface,
	projectService ProjectServiceInterface,
	notificationService NotificationServiceInterface,
) *ServerHandler {
	return &ServerHandler{
		serverService:       serverService,
		accessService:       accessService,
		userService:         userService,
		projectService:      projectService,
		notificationService: notificationService,
	}
}

func respondServerError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrServerNotFound):
		c.NotFound("server not found")
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden("insufficient access")
	case errors.Is(err, services.ErrMemberNotFound):
		c.NotFound("member not found")
	case errors.Is(err, services.ErrAlreadyMember):
		_ = c.JSON(409, map[string]string{"error": "user is already a member"})
	case errors.Is(err, services.ErrCannotRemoveOwner):
		c.BadRequest("cannot remove the server owner")
	case errors.Is(err, services.ErrCannotChangeOwnRole):
		c.BadRequest("cannot change your own role")
	case errors.Is(err, services.ErrInvalidRole):
		c.BadRequest("invalid role")
	default:
		c.InternalServerError("something went wrong")
	}
}

// requireManager authorizes the caller for member management on the server.
func (h *ServerHandler) requireManager(c *drift.Context) (uuid.UUID, uuid.UUID, bool) {
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

func (h *ServerHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateServerRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	server, err := h.serverService.Create(context.Background(), req.Name, req.Description, userID)
	if err != nil {
		c.InternalServerError("failed to create server")
		return
	}

	_ = c.JSON(201, server)
}

func (h *ServerHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	servers, roles, err := h.serverService.GetUserServers(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get servers")
		return
	}

	response := make([]dto.ServerResponse, len(servers))
	for i, srv := range servers {
		response[i] = dto.ServerResponse{
			ID:          srv.ID,
			Name:        srv.Name,
			Description: srv.Description,
			OwnerID:     srv.OwnerID,
			Role:        roles[i],
			CreatedAt:   srv.CreatedAt,
		}
	}
	_ = c.JSON(200, response)
}

func (h *ServerHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	serverID, err := uuid.Parse(c.Param("serverId"))
	if err != nil {
		c.BadRequest("invalid server id")
		return
	}

	ctx := context.Background()

	if _, err := h.accessService.AuthorizeServer(ctx, serverID, userID, authz.OpRead); err != nil {
		respondServerError(c, err)
		return
	}

	server, err := h.serverService.GetByID(ctx, serverID)
	if err != nil {
		respondServerError(c, err)
		return
	}

	_ = c.JSON(200, server)
}

func (h *ServerHandler) ListProjects(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	serverID, err := uuid.Parse(c.Param("serverId"))
	if err != nil {
		c.BadRequest("invalid server id")
		return
	}

	ctx := context.Background()

	if _, err := h.accessService.AuthorizeServer(ctx, serverID, userID, authz.OpRead); err != nil {
		respondServerError(c, err)
		return
	}

	projects, err := h.projectService.GetServerProjects(ctx, serverID)
	if err != nil {
		c.InternalServerError("failed to get projects")
		return
	}

	if projects == nil {
		projects = []models.Project{}
	}
	_ = c.JSON(200, projects)
}

func (h *ServerHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	serverID, err := uuid.Parse(c.Param("serverId"))
	if err != nil {
		c.BadRequest("invalid server id")
		return
	}

	var req dto.UpdateServerRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := context.Background()

	if _, err := h.accessService.AuthorizeServer(ctx, serverID, userID, authz.OpWrite); err != nil {
		respondServerError(c, err)
		return
	}

	server, err := h.serverService.Update(ctx, serverID, req.Name, req.Description)
	if err != nil {
		respondServerError(c, err)
		return
	}

	_ = c.JSON(200, server)
}

func (h *ServerHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	serverID, err := uuid.Parse(c.Param("serverId"))
	if err != nil {
		c.BadRequest("invalid server id")
		return
	}

	ctx := context.Background()

	if _, err := h.accessService.AuthorizeServer(ctx, serverID, userID, authz.OpDelete); err != nil {
		respondServerError(c, err)
		return
	}

	if err := h.serverService.Delete(ctx, serverID); err != nil {
		c.InternalServerError("failed to delete server")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "server deleted"})
}

func (h *ServerHandler) GetMembers(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	serverID, err := uuid.Parse(c.Param("serverId"))
	if err != nil {
		c.BadRequest("invalid server id")
		return
	}

	ctx := context.Background()

	if _, err := h.accessService.AuthorizeServer(ctx, serverID, userID, authz.OpRead); err != nil {
		respondServerError(c, err)
		return
	}

	members, err := h.serverService.GetMembers(ctx, serverID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	response := make([]dto.MemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.MemberResponse{
			UserID: m.UserID,
			Role:   m.Role,
		}
		if m.User != nil {
			response[i].Email = m.User.Email
			response[i].Name = m.User.Name
		}
	}
	_ = c.JSON(200, response)
}

func (h *ServerHandler) AddMember(c *drift.Context) {
	_, serverID, ok := h.requireManager(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" {
		c.BadRequest("email is required")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByEmail(ctx, req.Email)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	if err := h.serverService.AddMember(ctx, serverID, user.ID, req.Role); err != nil {
		respondServerError(c, err)
		return
	}

	go func() {
		bg := context.Background()
		if server, err := h.serverService.GetByID(bg, serverID); err == nil {
			_ = h.notificationService.MemberJoined(bg, serverID, server.Name, user.ID, user.Name)
		}
	}()

	_ = c.JSON(201, map[string]string{"message": "member added"})
}

func (h *ServerHandler) RemoveMember(c *drift.Context) {
	_, serverID, ok := h.requireManager(c)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	if err := h.serverService.RemoveMember(context.Background(), serverID, memberID); err != nil {
		respondServerError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *ServerHandler) UpdateMemberRole(c *drift.Context) {
	actorID, serverID, ok := h.requireManager(c)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.BadRequest("invalid member id")
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	member, err := h.serverService.UpdateMemberRole(context.Background(), serverID, memberID, req.Role, actorID)
	if err != nil {
		respondServerError(c, err)
		return
	}

	_ = c.JSON(200, member)
}
