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

func setupFeedService(t *testing.T) (*FeedService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewFeedService(db), mock
}

func TestFeedService_List_ClampsLimit(t *testing.T) {
	svc, mock := setupFeedService(t)
	authorID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "author_id", "content", "created_at", "updated_at",
		"id", "email", "name", "avatar_url", "provider", "is_staff", "is_active", "created_at", "updated_at",
	}).AddRow(
		uuid.New(), authorID, "hello", now, now,
		authorID, "ada@example.com", "Ada", nil, "github", false, true, now, now,
	)

	// out-of-range limits fall back to the default of 20
	mock.ExpectQuery(`SELECT .+ FROM feed_posts fp\s+JOIN users u`).
		WithArgs(20).
		WillReturnRows(rows)

	posts, err := svc.List(context.Background(), 500)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Content)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "Ada", posts[0].Author.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedService_Delete_NotAuthor(t *testing.T) {
	svc, mock := setupFeedService(t)
	postID := uuid.New()
	authorID := uuid.New()
	otherID := uuid.New()

	mock.ExpectQuery(`SELECT author_id FROM feed_posts`).
		WithArgs(postID).
		WillReturnRows(pgxmock.NewRows([]string{"author_id"}).AddRow(authorID))

	err := svc.Delete(context.Background(), postID, otherID)

	assert.ErrorIs(t, err, ErrNotAuthor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedService_Delete_NotFound(t *testing.T) {
	svc, mock := setupFeedService(t)
	postID := uuid.New()

	mock.ExpectQuery(`SELECT author_id FROM feed_posts`).
		WithArgs(postID).
		WillReturnRows(pgxmock.NewRows([]string{"author_id"}))

	err := svc.Delete(context.Background(), postID, uuid.New())

	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
