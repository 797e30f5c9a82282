package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/authz"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/oauth"
	"github.com/taskhive/taskhive-api/internal/services"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Rotate(ctx context.Context, userID uuid.UUID, oldHash, newHash string, expiresAt time.Time) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateAccessToken(tokenString string) (*services.Claims, error)
	ValidateRefreshToken(tokenString string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// AccessServiceInterface defines the methods used by handlers from AccessService
type AccessServiceInterface interface {
	ProjectStanding(ctx context.Context, projectID, userID uuid.UUID) (authz.Standing, error)
	ServerStanding(ctx context.Context, serverID, userID uuid.UUID) (authz.Standing, error)
	AuthorizeProject(ctx context.Context, projectID, userID uuid.UUID, op authz.Op) (authz.Standing, error)
	AuthorizeServer(ctx context.Context, serverID, userID uuid.UUID, op authz.Op) (authz.Standing, error)
	ProjectRecipients(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// ProjectServiceInterface defines the methods used by handlers from ProjectService
type ProjectServiceInterface interface {
	Create(ctx context.Context, title, description, visibility string, ownerID uuid.UUID, serverID *uuid.UUID) (*models.Project, error)
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	GetVisibleProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	GetServerProjects(ctx context.Context, serverID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, projectID uuid.UUID, title, description, visibility *string, isArchived *bool) (*models.Project, error)
	Delete(ctx context.Context, projectID uuid.UUID) error
	UpsertAccess(ctx context.Context, projectID, userID uuid.UUID, level string, grantedBy uuid.UUID) (*models.ProjectAccess, error)
	GetAccessList(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAccess, error)
	RevokeAccess(ctx context.Context, projectID, userID uuid.UUID) error
}

// ItemServiceInterface defines the methods used by handlers from ItemService
type ItemServiceInterface interface {
	Create(ctx context.Context, projectID uuid.UUID, title, description, priority string, dueDate *time.Time, createdBy uuid.UUID) (*models.ProjectItem, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (*models.ProjectItem, error)
	GetByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectItem, error)
	Start(ctx context.Context, itemID, userID uuid.UUID) (*models.ProjectItem, error)
	Complete(ctx context.Context, itemID, userID uuid.UUID) (*models.ProjectItem, error)
	Update(ctx context.Context, itemID uuid.UUID, patch services.ItemPatch) (*models.ProjectItem, error)
	Delete(ctx context.Context, itemID uuid.UUID) error
}

// ServerServiceInterface defines the methods used by handlers from ServerService
type ServerServiceInterface interface {
	Create(ctx context.Context, name, description string, ownerID uuid.UUID) (*models.Server, error)
	GetByID(ctx context.Context, serverID uuid.UUID) (*models.Server, error)
	GetUserServers(ctx context.Context, userID uuid.UUID) ([]models.Server, []string, error)
	Update(ctx context.Context, serverID uuid.UUID, name, description *string) (*models.Server, error)
	Delete(ctx context.Context, serverID uuid.UUID) error
	GetMembers(ctx context.Context, serverID uuid.UUID) ([]models.ServerMember, error)
	AddMember(ctx context.Context, serverID, userID uuid.UUID, role string) error
	RemoveMember(ctx context.Context, serverID, userID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, serverID, userID uuid.UUID, role string, actorID uuid.UUID) (*models.ServerMember, error)
	CreateInvitation(ctx context.Context, serverID, inviterID uuid.UUID, role string, maxUses int, expiresAt *time.Time) (*models.ServerInvitation, error)
	GetInvitations(ctx context.Context, serverID uuid.UUID) ([]models.ServerInvitation, error)
	RevokeInvitation(ctx context.Context, inviteID, serverID uuid.UUID) error
	JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.Server, error)
}

// CommentServiceInterface defines the methods used by handlers from CommentService
type CommentServiceInterface interface {
	Create(ctx context.Context, itemID, authorID uuid.UUID, content string) (*models.Comment, error)
	GetByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error)
	GetByItem(ctx context.Context, itemID uuid.UUID) ([]models.Comment, error)
	Delete(ctx context.Context, commentID uuid.UUID) error
}

// FeedServiceInterface defines the methods used by handlers from FeedService
type FeedServiceInterface interface {
	Create(ctx context.Context, authorID uuid.UUID, content string) (*models.FeedPost, error)
	List(ctx context.Context, limit int) ([]models.FeedPost, error)
	Delete(ctx context.Context, postID, userID uuid.UUID) error
}

// DashboardServiceInterface defines the methods used by handlers from DashboardService
type DashboardServiceInterface interface {
	Summary(ctx context.Context, userID uuid.UUID) (*services.DashboardSummary, error)
}

// SettingsServiceInterface defines the methods used by handlers from SettingsService
type SettingsServiceInterface interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Update(ctx context.Context, userID uuid.UUID, patch services.SettingsPatch) (*models.UserSettings, error)
}

// NotificationServiceInterface defines the methods used by handlers from NotificationService
type NotificationServiceInterface interface {
	TaskCreated(ctx context.Context, item *models.ProjectItem, projectTitle string, actorID uuid.UUID) error
	TaskStatusChanged(ctx context.Context, item *models.ProjectItem, projectTitle string, actorID uuid.UUID) error
	AccessGranted(ctx context.Context, userID uuid.UUID, projectTitle, level string) error
	MemberJoined(ctx context.Context, serverID uuid.UUID, serverName string, newMemberID uuid.UUID, newMemberName string) error
	UserRegistered(ctx context.Context, user *models.User) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}
