package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
		IsActive:   true,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// CreateProject creates a standalone project owned by ownerID
func (f *Fixtures) CreateProject(t *testing.T, ownerID uuid.UUID, opts ...ProjectOption) *models.Project {
	t.Helper()
	f.counter++

	project := &models.Project{
		Title:      fmt.Sprintf("Project %d", f.counter),
		Visibility: models.VisibilityPrivate,
		OwnerID:    ownerID,
	}

	for _, opt := range opts {
		opt(project)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (title, description, visibility, owner_id, server_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_archived, created_at, updated_at
	`, project.Title, project.Description, project.Visibility, project.OwnerID, project.ServerID).Scan(
		&project.ID, &project.IsArchived, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	return project
}

// ProjectOption configures a test project
type ProjectOption func(*models.Project)

// WithServer attaches the project to a server
func WithServer(serverID uuid.UUID) ProjectOption {
	return func(p *models.Project) {
		p.ServerID = &serverID
	}
}

// WithVisibility sets the project visibility
func WithVisibility(visibility string) ProjectOption {
	return func(p *models.Project) {
		p.Visibility = visibility
	}
}

// GrantAccess inserts a project access grant
func (f *Fixtures) GrantAccess(t *testing.T, projectID, userID uuid.UUID, level string, grantedBy uuid.UUID) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO project_access (project_id, user_id, access_level, granted_by)
		VALUES ($1, $2, $3, $4)
	`, projectID, userID, level, grantedBy)
	if err != nil {
		t.Fatalf("failed to grant access: %v", err)
	}
}

// CreateServer creates a server with the owner recorded as a member
func (f *Fixtures) CreateServer(t *testing.T, ownerID uuid.UUID) *models.Server {
	t.Helper()
	f.counter++

	server := &models.Server{
		Name:    fmt.Sprintf("Server %d", f.counter),
		OwnerID: ownerID,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO servers (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, server.Name, server.Description, server.OwnerID).Scan(
		&server.ID, &server.CreatedAt, &server.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	f.AddServerMember(t, server.ID, ownerID, models.RoleOwner)

	return server
}

// AddServerMember inserts a server membership row
func (f *Fixtures) AddServerMember(t *testing.T, serverID, userID uuid.UUID, role string) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO server_members (server_id, user_id, role)
		VALUES ($1, $2, $3)
	`, serverID, userID, role)
	if err != nil {
		t.Fatalf("failed to add server member: %v", err)
	}
}

// CreateItem creates a project item with default values
func (f *Fixtures) CreateItem(t *testing.T, projectID, createdBy uuid.UUID, opts ...ItemOption) *models.ProjectItem {
	t.Helper()
	f.counter++

	item := &models.ProjectItem{
		ProjectID: projectID,
		Title:     fmt.Sprintf("Item %d", f.counter),
		Priority:  models.PriorityMedium,
		Status:    models.StatusPending,
		CreatedBy: &createdBy,
	}

	for _, opt := range opts {
		opt(item)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO project_items (project_id, title, description, priority, status, due_date, started_by, completed_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, item.ProjectID, item.Title, item.Description, item.Priority, item.Status,
		item.DueDate, item.StartedBy, item.CompletedAt, item.CreatedBy).Scan(
		&item.ID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	return item
}

// ItemOption configures a test item
type ItemOption func(*models.ProjectItem)

// WithStatus sets the item status
func WithStatus(status string) ItemOption {
	return func(i *models.ProjectItem) {
		i.Status = status
	}
}

// WithClaimant marks the item as started by userID
func WithClaimant(userID uuid.UUID) ItemOption {
	return func(i *models.ProjectItem) {
		i.StartedBy = &userID
	}
}

// WithDueDate sets the item due date
func WithDueDate(due time.Time) ItemOption {
	return func(i *models.ProjectItem) {
		i.DueDate = &due
	}
}
