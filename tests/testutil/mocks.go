package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/taskhive/taskhive-api/internal/authz"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/oauth"
	"github.com/taskhive/taskhive-api/internal/services"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, bool, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockDashboardService mocks the DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context, userID uuid.UUID) (*services.DashboardSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DashboardSummary), args.Error(1)
}

// MockSettingsService mocks the SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSettings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, userID uuid.UUID, patch services.SettingsPatch) (*models.UserSettings, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSettings), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) Rotate(ctx context.Context, userID uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, oldHash, newHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockAccessService mocks the AccessService
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) ProjectStanding(ctx context.Context, projectID, userID uuid.UUID) (authz.Standing, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Get(0).(authz.Standing), args.Error(1)
}

func (m *MockAccessService) ServerStanding(ctx context.Context, serverID, userID uuid.UUID) (authz.Standing, error) {
	args := m.Called(ctx, serverID, userID)
	return args.Get(0).(authz.Standing), args.Error(1)
}

func (m *MockAccessService) AuthorizeProject(ctx context.Context, projectID, userID uuid.UUID, op authz.Op) (authz.Standing, error) {
	args := m.Called(ctx, projectID, userID, op)
	return args.Get(0).(authz.Standing), args.Error(1)
}

func (m *MockAccessService) AuthorizeServer(ctx context.Context, serverID, userID uuid.UUID, op authz.Op) (authz.Standing, error) {
	args := m.Called(ctx, serverID, userID, op)
	return args.Get(0).(authz.Standing), args.Error(1)
}

func (m *MockAccessService) ProjectRecipients(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockProjectService mocks the ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, title, description, visibility string, ownerID uuid.UUID, serverID *uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, title, description, visibility, ownerID, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) GetVisibleProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectService) GetServerProjects(ctx context.Context, serverID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, projectID uuid.UUID, title, description, visibility *string, isArchived *bool) (*models.Project, error) {
	args := m.Called(ctx, projectID, title, description, visibility, isArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockProjectService) UpsertAccess(ctx context.Context, projectID, userID uuid.UUID, level string, grantedBy uuid.UUID) (*models.ProjectAccess, error) {
	args := m.Called(ctx, projectID, userID, level, grantedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectAccess), args.Error(1)
}

func (m *MockProjectService) GetAccessList(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAccess, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProjectAccess), args.Error(1)
}

func (m *MockProjectService) RevokeAccess(ctx context.Context, projectID, userID uuid.UUID) error {
	args := m.Called(ctx, projectID, userID)
	return args.Error(0)
}

// MockItemService mocks the ItemService
type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Create(ctx context.Context, projectID uuid.UUID, title, description, priority string, dueDate *time.Time, createdBy uuid.UUID) (*models.ProjectItem, error) {
	args := m.Called(ctx, projectID, title, description, priority, dueDate, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectItem), args.Error(1)
}

func (m *MockItemService) GetByID(ctx context.Context, itemID uuid.UUID) (*models.ProjectItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectItem), args.Error(1)
}

func (m *MockItemService) GetByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectItem, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProjectItem), args.Error(1)
}

func (m *MockItemService) Start(ctx context.Context, itemID, userID uuid.UUID) (*models.ProjectItem, error) {
	args := m.Called(ctx, itemID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectItem), args.Error(1)
}

func (m *MockItemService) Complete(ctx context.Context, itemID, userID uuid.UUID) (*models.ProjectItem, error) {
	args := m.Called(ctx, itemID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectItem), args.Error(1)
}

func (m *MockItemService) Update(ctx context.Context, itemID uuid.UUID, patch services.ItemPatch) (*models.ProjectItem, error) {
	args := m.Called(ctx, itemID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectItem), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

// MockServerService mocks the ServerService
type MockServerService struct {
	mock.Mock
}

func (m *MockServerService) Create(ctx context.Context, name, description string, ownerID uuid.UUID) (*models.Server, error) {
	args := m.Called(ctx, name, description, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerService) GetByID(ctx context.Context, serverID uuid.UUID) (*models.Server, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerService) GetUserServers(ctx context.Context, userID uuid.UUID) ([]models.Server, []string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]models.Server), args.Get(1).([]string), args.Error(2)
}

func (m *MockServerService) Update(ctx context.Context, serverID uuid.UUID, name, description *string) (*models.Server, error) {
	args := m.Called(ctx, serverID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

func (m *MockServerService) Delete(ctx context.Context, serverID uuid.UUID) error {
	args := m.Called(ctx, serverID)
	return args.Error(0)
}

func (m *MockServerService) GetMembers(ctx context.Context, serverID uuid.UUID) ([]models.ServerMember, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServerMember), args.Error(1)
}

func (m *MockServerService) AddMember(ctx context.Context, serverID, userID uuid.UUID, role string) error {
	args := m.Called(ctx, serverID, userID, role)
	return args.Error(0)
}

func (m *MockServerService) RemoveMember(ctx context.Context, serverID, userID uuid.UUID) error {
	args := m.Called(ctx, serverID, userID)
	return args.Error(0)
}

func (m *MockServerService) UpdateMemberRole(ctx context.Context, serverID, userID uuid.UUID, role string, actorID uuid.UUID) (*models.ServerMember, error) {
	args := m.Called(ctx, serverID, userID, role, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServerMember), args.Error(1)
}

func (m *MockServerService) CreateInvitation(ctx context.Context, serverID, inviterID uuid.UUID, role string, maxUses int, expiresAt *time.Time) (*models.ServerInvitation, error) {
	args := m.Called(ctx, serverID, inviterID, role, maxUses, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServerInvitation), args.Error(1)
}

func (m *MockServerService) GetInvitations(ctx context.Context, serverID uuid.UUID) ([]models.ServerInvitation, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServerInvitation), args.Error(1)
}

func (m *MockServerService) RevokeInvitation(ctx context.Context, inviteID, serverID uuid.UUID) error {
	args := m.Called(ctx, inviteID, serverID)
	return args.Error(0)
}

func (m *MockServerService) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.Server, error) {
	args := m.Called(ctx, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Server), args.Error(1)
}

// MockCommentService mocks the CommentService
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Create(ctx context.Context, itemID, authorID uuid.UUID, content string) (*models.Comment, error) {
	args := m.Called(ctx, itemID, authorID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) GetByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	args := m.Called(ctx, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) GetByItem(ctx context.Context, itemID uuid.UUID) ([]models.Comment, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, commentID uuid.UUID) error {
	args := m.Called(ctx, commentID)
	return args.Error(0)
}

// MockFeedService mocks the FeedService
type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) Create(ctx context.Context, authorID uuid.UUID, content string) (*models.FeedPost, error) {
	args := m.Called(ctx, authorID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedPost), args.Error(1)
}

func (m *MockFeedService) List(ctx context.Context, limit int) ([]models.FeedPost, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FeedPost), args.Error(1)
}

func (m *MockFeedService) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	args := m.Called(ctx, postID, userID)
	return args.Error(0)
}

// MockNotificationService mocks the NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) TaskCreated(ctx context.Context, item *models.ProjectItem, projectTitle string, actorID uuid.UUID) error {
	args := m.Called(ctx, item, projectTitle, actorID)
	return args.Error(0)
}

func (m *MockNotificationService) TaskStatusChanged(ctx context.Context, item *models.ProjectItem, projectTitle string, actorID uuid.UUID) error {
	args := m.Called(ctx, item, projectTitle, actorID)
	return args.Error(0)
}

func (m *MockNotificationService) AccessGranted(ctx context.Context, userID uuid.UUID, projectTitle, level string) error {
	args := m.Called(ctx, userID, projectTitle, level)
	return args.Error(0)
}

func (m *MockNotificationService) MemberJoined(ctx context.Context, serverID uuid.UUID, serverName string, newMemberID uuid.UUID, newMemberName string) error {
	args := m.Called(ctx, serverID, serverName, newMemberID, newMemberName)
	return args.Error(0)
}

func (m *MockNotificationService) UserRegistered(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockNotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockNotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
