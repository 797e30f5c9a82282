package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/authz"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/tests/testutil"
)

func TestDashboardService_Integration_Summary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewDashboardService(tdb.DB)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	friend := fixtures.CreateUser(t)
	project := fixtures.CreateProject(t, owner.ID)
	other := fixtures.CreateProject(t, owner.ID)

	tomorrow := time.Now().Add(24 * time.Hour)
	yesterday := time.Now().Add(-24 * time.Hour)
	fixtures.CreateItem(t, project.ID, owner.ID, testutil.WithDueDate(tomorrow))
	fixtures.CreateItem(t, project.ID, owner.ID, testutil.WithStatus(models.StatusCompleted))
	fixtures.CreateItem(t, other.ID, owner.ID,
		testutil.WithStatus(models.StatusInProgress), testutil.WithDueDate(yesterday))

	// A grant held by the owner on someone else's project counts as shared
	theirProject := fixtures.CreateProject(t, friend.ID)
	fixtures.GrantAccess(t, theirProject.ID, owner.ID, authz.LevelRead, friend.ID)

	summary, err := svc.Summary(ctx, owner.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.QuickStats.TotalProjects)
	assert.Equal(t, 3, summary.QuickStats.TotalTasks)
	assert.Equal(t, 1, summary.QuickStats.SharedProjects)
	assert.Equal(t, 1, summary.QuickStats.OverdueTasks)
	assert.Equal(t, 1, summary.QuickStats.InProgressTasks)

	assert.Equal(t, 1, summary.ItemsByStatus[models.StatusPending])
	assert.Equal(t, 1, summary.ItemsByStatus[models.StatusCompleted])
	assert.Equal(t, 1, summary.ItemsByStatus[models.StatusInProgress])

	require.Len(t, summary.RecentProjects, 2)
	for _, digest := range summary.RecentProjects {
		if digest.ID == project.ID {
			assert.Equal(t, 2, digest.TotalItems)
			assert.Equal(t, 1, digest.CompletedItems)
			assert.InDelta(t, 50.0, digest.CompletionRate, 0.01)
		}
	}

	require.Len(t, summary.UpcomingTasks, 1)
	assert.Equal(t, project.ID, summary.UpcomingTasks[0].ProjectID)

	require.Len(t, summary.SharedProjects, 1)
	assert.Equal(t, theirProject.ID, summary.SharedProjects[0].ProjectID)
	assert.Equal(t, friend.Email, summary.SharedProjects[0].OwnerEmail)
}

func TestSettingsService_Integration_GetAndUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewSettingsService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)

	// First read creates the row with defaults
	settings, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "light", settings.Theme)
	assert.Equal(t, 10, settings.ItemsPerPage)

	theme := "dark"
	perPage := 25
	updated, err := svc.Update(ctx, user.ID, services.SettingsPatch{
		Theme:        &theme,
		ItemsPerPage: &perPage,
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Theme)
	assert.Equal(t, 25, updated.ItemsPerPage)
	assert.Equal(t, "en", updated.Language)

	// A second read returns the same row, not a fresh default one
	again, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)
	assert.Equal(t, "dark", again.Theme)
}
