package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

func setupProjectService(t *testing.T) (*ProjectService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewProjectService(db), mock
}

func projectRows(id, ownerID uuid.UUID, serverID *uuid.UUID) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "title", "description", "visibility", "is_archived",
		"owner_id", "server_id", "created_at", "updated_at",
	}).AddRow(id, "Test Project", "", models.VisibilityPrivate, false, ownerID, serverID, now, now)
}

func TestProjectService_Create(t *testing.T) {
	svc, mock := setupProjectService(t)
	ctx := context.Background()
	projectID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs("Test Project", "", models.VisibilityPrivate, ownerID, (*uuid.UUID)(nil)).
		WillReturnRows(projectRows(projectID, ownerID, nil))

	project, err := svc.Create(ctx, "Test Project", "", models.VisibilityPrivate, ownerID, nil)

	require.NoError(t, err)
	assert.Equal(t, projectID, project.ID)
	assert.Nil(t, project.ServerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupProjectService(t)
	projectID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM projects WHERE id`).
		WithArgs(projectID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), projectID)

	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectService_UpsertAccess_NewGrant(t *testing.T) {
	svc, mock := setupProjectService(t)
	ctx := context.Background()
	projectID := uuid.New()
	ownerID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT owner_id FROM projects WHERE id`).
		WithArgs(projectID).
		WillReturnRows(pgxmock.NewRows([]string{"owner_id"}).AddRow(ownerID))

	rows := pgxmock.NewRows([]string{
		"id", "project_id", "user_id", "access_level", "granted_by", "created_at", "updated_at",
	}).AddRow(uuid.New(), projectID, userID, "write", ownerID, now, now)
	mock.ExpectQuery(`INSERT INTO project_access .+ ON CONFLICT \(project_id, user_id\) DO UPDATE`).
		WithArgs(projectID, userID, "write", ownerID).
		WillReturnRows(rows)

	grant, err := svc.UpsertAccess(ctx, projectID, userID, "write", ownerID)

	require.NoError(t, err)
	assert.Equal(t, "write", grant.AccessLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectService_UpsertAccess_OwnerRejected(t *testing.T) {
	svc, mock := setupProjectService(t)
	ctx := context.Background()
	projectID := uuid.New()
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT owner_id FROM projects WHERE id`).
		WithArgs(projectID).
		WillReturnRows(pgxmock.NewRows([]string{"owner_id"}).AddRow(ownerID))

	_, err := svc.UpsertAccess(ctx, projectID, ownerID, "read", ownerID)

	assert.ErrorIs(t, err, ErrCannotGrantOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectService_RevokeAccess_NotFound(t *testing.T) {
	svc, mock := setupProjectService(t)
	projectID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM project_access`).
		WithArgs(projectID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.RevokeAccess(context.Background(), projectID, userID)

	assert.ErrorIs(t, err, ErrAccessNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectService_GetVisibleProjects(t *testing.T) {
	svc, mock := setupProjectService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "title", "description", "visibility", "is_archived",
		"owner_id", "server_id", "created_at", "updated_at",
	}).
		AddRow(uuid.New(), "Mine", "", models.VisibilityPrivate, false, userID, nil, now, now).
		AddRow(uuid.New(), "Shared with me", "", models.VisibilityShared, false, uuid.New(), nil, now, now)

	mock.ExpectQuery(`SELECT DISTINCT .+ FROM projects p`).
		WithArgs(userID).
		WillReturnRows(rows)

	projects, err := svc.GetVisibleProjects(ctx, userID)

	require.NoError(t, err)
	assert.Len(t, projects, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
