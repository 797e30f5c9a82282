package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/database"
)

func setupDashboardService(t *testing.T) (*DashboardService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewDashboardService(db), mock
}

func TestDashboardService_Summary(t *testing.T) {
	svc, mock := setupDashboardService(t)
	ctx := context.Background()
	userID := uuid.New()
	projectID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM projects WHERE owner_id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"projects", "tasks", "shared", "today", "overdue", "weekly", "in_progress",
		}).AddRow(3, 12, 2, 1, 2, 4, 5))

	mock.ExpectQuery(`SELECT i\.status, COUNT\(\*\)`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 7).
			AddRow("completed", 5))

	mock.ExpectQuery(`SELECT i\.priority, COUNT\(\*\)`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"priority", "count"}).
			AddRow("medium", 12))

	mock.ExpectQuery(`FROM projects p\s+LEFT JOIN project_items i`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "description", "visibility", "updated_at", "total", "completed",
		}).AddRow(projectID, "Launch", "", "private", now, 4, 1))

	mock.ExpectQuery(`SELECT DISTINCT i\.id, i\.title, i\.due_date`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "due_date", "priority", "status", "project_id", "project_title",
		}))

	mock.ExpectQuery(`FROM project_access pa\s+JOIN projects p`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{
			"project_id", "title", "owner_email", "granted_by_email", "access_level", "created_at",
		}))

	summary, err := svc.Summary(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.QuickStats.TotalProjects)
	assert.Equal(t, 5, summary.QuickStats.InProgressTasks)
	assert.Equal(t, 7, summary.ItemsByStatus["pending"])
	assert.Equal(t, 12, summary.ItemsByPriority["medium"])

	require.Len(t, summary.RecentProjects, 1)
	digest := summary.RecentProjects[0]
	assert.Equal(t, 3, digest.PendingItems)
	assert.InDelta(t, 25.0, digest.CompletionRate, 0.01)

	assert.Empty(t, summary.UpcomingTasks)
	assert.Empty(t, summary.SharedProjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardService_Summary_QueryFailure(t *testing.T) {
	svc, mock := setupDashboardService(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM projects WHERE owner_id`).
		WithArgs(userID).
		WillReturnError(assert.AnError)

	_, err := svc.Summary(context.Background(), userID)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardService_ItemDistribution_RejectsUnknownColumn(t *testing.T) {
	svc, mock := setupDashboardService(t)

	_, err := svc.itemDistribution(context.Background(), uuid.New(), "title")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
