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

type ProjectHandler struct {
	projectService      ProjectServiceInterface
	accessService       AccessServiceInterface
	userService         UserServiceInterface
	notificationService NotificationServiceInterface
	emailService        *services.EmailService
}

func NewProjectHandler(
	projectService ProjectServiceInterface,
	accessService AccessServiceInterface,
	userService UserServiceInterface,
	notificationService NotificationServiceInterface,
	emailService *services.EmailService,
) *ProjectHandler {
	return &ProjectHandler{
		projectService:      projectService,
		accessService:       accessService,
		userService:         userService,
		notificationService: notificationService,
		emailService:        emailService,
	}
}

// respondProjectError maps the access layer's sentinels. Principals with no
// standing already got ErrProjectNotFound from the service, so the 404 here
// covers both genuinely missing and deliberately hidden projects.
func respondProjectError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		c.NotFound("project not found")
	case errors.Is(err, services.ErrServerNotFound):
		c.NotFound("server not found")
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden("insufficient access")
	default:
		c.InternalServerError("something went wrong")
	}
}

func (h *ProjectHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}
	if req.Visibility == "" {
		req.Visibility = models.VisibilityPrivate
	}
	if !models.ValidVisibility(req.Visibility) {
		c.BadRequest("invalid visibility")
		return
	}

	ctx := context.Background()

	if req.ServerID != nil {
		if _, err := h.accessService.AuthorizeServer(ctx, *req.ServerID, userID, authz.OpWrite); err != nil {
			respondProjectError(c, err)
			return
		}
	}

	project, err := h.projectService.Create(ctx, req.Title, req.Description, req.Visibility, userID, req.ServerID)
	if err != nil {
		c.InternalServerError("failed to create project")
		return
	}

	_ = c.JSON(201, project)
}

func (h *ProjectHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projects, err := h.projectService.GetVisibleProjects(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get projects")
		return
	}

	if projects == nil {
		projects = []models.Project{}
	}
	_ = c.JSON(200, projects)
}

func (h *ProjectHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := context.Background()

	if _, err := h.accessService.AuthorizeProject(ctx, projectID, userID, authz.OpRead); err != nil {
		respondProjectError(c, err)
		return
	}

	project, err := h.projectService.GetByID(ctx, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	_ = c.JSON(200, project)
}

func (h *ProjectHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Visibility != nil && !models.ValidVisibility(*req.Visibility) {
		c.BadRequest("invalid visibility")
		return
	}

	ctx := context.Background()

	if _, err := h.accessService.AuthorizeProject(ctx, projectID, userID, authz.OpWrite); err != nil {
		respondProjectError(c, err)
		return
	}

	project, err := h.projectService.Update(ctx, projectID, req.Title, req.Description, req.Visibility, req.IsArchived)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	_ = c.JSON(200, project)
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := context.Background()

	if _, err := h.accessService.AuthorizeProject(ctx, projectID, userID, authz.OpDelete); err != nil {
		respondProjectError(c, err)
		return
	}

	if err := h.projectService.Delete(ctx, projectID); err != nil {
		c.InternalServerError("failed to delete project")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "project deleted"})
}

func (h *ProjectHandler) GetAccessList(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	ctx := context.Background()

	standing, err := h.accessService.AuthorizeProject(ctx, projectID, userID, authz.OpRead)
	if err != nil {
		respondProjectError(c, err)
		return
	}
	if !standing.CanManageMembers() {
		c.Forbidden("insufficient access")
		return
	}

	grants, err := h.projectService.GetAccessList(ctx, projectID)
	if err != nil {
		c.InternalServerError("failed to get access list")
		return
	}

	response := make([]dto.AccessEntryResponse, len(grants))
	for i, g := range grants {
		response[i] = dto.AccessEntryResponse{
			UserID:      g.UserID,
			AccessLevel: g.AccessLevel,
		}
		if g.User != nil {
			response[i].Email = g.User.Email
			response[i].Name = g.User.Name
		}
	}
	_ = c.JSON(200, response)
}

// GrantAccess invites a user by email. Re-inviting bumps the existing grant
// in place rather than conflicting.
func (h *ProjectHandler) GrantAccess(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	var req dto.GrantAccessRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" {
		c.BadRequest("email is required")
		return
	}
	if !authz.ValidAccessLevel(req.AccessLevel) {
		c.BadRequest("invalid access level")
		return
	}

	ctx := context.Background()

	standing, err := h.accessService.AuthorizeProject(ctx, projectID, userID, authz.OpRead)
	if err != nil {
		respondProjectError(c, err)
		return
	}
	if !standing.CanManageMembers() {
		c.Forbidden("insufficient access")
		return
	}

	project, err := h.projectService.GetByID(ctx, projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}
	if project.IsServerProject() {
		c.BadRequest("server projects use server membership, not access grants")
		return
	}

	invitee, err := h.userService.GetByEmail(ctx, req.Email)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	grant, err := h.projectService.UpsertAccess(ctx, projectID, invitee.ID, req.AccessLevel, userID)
	if err != nil {
		if errors.Is(err, services.ErrCannotGrantOwner) {
			c.BadRequest("user already owns this project")
			return
		}
		respondProjectError(c, err)
		return
	}

	go func() {
		bg := context.Background()
		_ = h.notificationService.AccessGranted(bg, invitee.ID, project.Title, grant.AccessLevel)
		if h.emailService != nil && h.emailService.IsConfigured() {
			inviter, err := h.userService.GetByID(bg, userID)
			if err == nil {
				_ = h.emailService.SendProjectInvite(invitee.Email, project.Title, inviter.Name, grant.AccessLevel)
			}
		}
	}()

	_ = c.JSON(201, grant)
}

func (h *ProjectHandler) RevokeAccess(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	ctx := context.Background()

	standing, err := h.accessService.AuthorizeProject(ctx, projectID, userID, authz.OpRead)
	if err != nil {
		respondProjectError(c, err)
		return
	}
	if !standing.CanManageMembers() {
		c.Forbidden("insufficient access")
		return
	}

	if err := h.projectService.RevokeAccess(ctx, projectID, targetID); err != nil {
		if errors.Is(err, services.ErrAccessNotFound) {
			c.NotFound("access grant not found")
			return
		}
		c.InternalServerError("failed to revoke access")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "access revoked"})
}
