package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/notify"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/tests/testutil"
)

func newNotificationService(tdb *testutil.TestDB) *services.NotificationService {
	access := services.NewAccessService(tdb.DB)
	hub := notify.NewHub()
	go hub.Run()
	return services.NewNotificationService(tdb.DB, access, hub)
}

func TestNotificationService_Integration_TaskCreatedFanOut(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newNotificationService(tdb)
	itemSvc := services.NewItemService(tdb.DB)
	ctx := context.Background()

	owner := fixtures.CreateUser(t)
	collaborator := fixtures.CreateUser(t)
	project := fixtures.CreateProject(t, owner.ID)
	fixtures.GrantAccess(t, project.ID, collaborator.ID, "write", owner.ID)

	item, err := itemSvc.Create(ctx, project.ID, "Ship release", "", "", nil, collaborator.ID)
	require.NoError(t, err)

	require.NoError(t, svc.TaskCreated(ctx, item, project.Title, collaborator.ID))

	// The actor is excluded; only the owner is notified
	ownerNotifications, err := svc.List(ctx, owner.ID, false)
	require.NoError(t, err)
	require.Len(t, ownerNotifications, 1)
	assert.Contains(t, ownerNotifications[0].Title, project.Title)
	assert.Equal(t, "task", ownerNotifications[0].Category)

	actorNotifications, err := svc.List(ctx, collaborator.ID, false)
	require.NoError(t, err)
	assert.Empty(t, actorNotifications)
}

func TestNotificationService_Integration_WelcomeTemplate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newNotificationService(tdb)
	ctx := context.Background()

	user := fixtures.CreateUser(t, testutil.WithName("Ada"), testutil.WithEmail("ada@example.com"))

	require.NoError(t, svc.UserRegistered(ctx, user))

	notifications, err := svc.List(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Welcome to TaskHive", notifications[0].Title)
	assert.Contains(t, notifications[0].Message, "Ada")
	assert.Contains(t, notifications[0].Message, "ada@example.com")
	assert.Equal(t, "system", notifications[0].Category)
}

func TestNotificationService_Integration_ReadFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newNotificationService(tdb)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	other := fixtures.CreateUser(t)

	require.NoError(t, svc.Notify(ctx, []uuid.UUID{user.ID}, uuid.Nil, "first", "m", "task"))
	require.NoError(t, svc.Notify(ctx, []uuid.UUID{user.ID}, uuid.Nil, "second", "m", "task"))

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unread, err := svc.List(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	// A user cannot mark someone else's notification read
	err = svc.MarkRead(ctx, unread[0].ID, other.ID)
	assert.ErrorIs(t, err, services.ErrNotificationNotFound)

	require.NoError(t, svc.MarkRead(ctx, unread[0].ID, user.ID))

	count, err = svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.MarkAllRead(ctx, user.ID))

	count, err = svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
