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
	"github.com/taskhive/taskhive-api/internal/oauth"
)

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db), mock
}

func userRows(id uuid.UUID, email, name, provider, providerID string) *pgxmock.Rows {
	return activeUserRows(id, email, name, provider, providerID, true)
}

func activeUserRows(id uuid.UUID, email, name, provider, providerID string, active bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "email", "name", "avatar_url", "provider", "provider_id", "is_staff", "is_active", "created_at", "updated_at",
	}).AddRow(id, email, name, nil, provider, providerID, false, active, now, now)
}

func TestUserService_FindOrCreateFromOAuth_ExistingUser(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	info := &oauth.UserInfo{
		Email:    "ada@example.com",
		Name:     "Ada",
		ID:       "gh-12345",
		Provider: "github",
	}

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE provider = \$1 AND provider_id = \$2`).
		WithArgs("github", "gh-12345").
		WillReturnRows(userRows(userID, "ada@example.com", "Ada", "github", "gh-12345"))

	user, created, err := svc.FindOrCreateFromOAuth(ctx, info)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_FindOrCreateFromOAuth_RefreshesProfile(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	info := &oauth.UserInfo{
		Email:    "ada@newmail.com",
		Name:     "Ada L",
		ID:       "gh-12345",
		Provider: "github",
	}

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE provider = \$1 AND provider_id = \$2`).
		WithArgs("github", "gh-12345").
		WillReturnRows(userRows(userID, "ada@example.com", "Ada", "github", "gh-12345"))

	mock.ExpectExec(`UPDATE users SET email = \$1, name = \$2`).
		WithArgs("ada@newmail.com", "Ada L", (*string)(nil), userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	user, created, err := svc.FindOrCreateFromOAuth(ctx, info)

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "ada@newmail.com", user.Email)
	assert.Equal(t, "Ada L", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_FindOrCreateFromOAuth_CreatesUser(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	info := &oauth.UserInfo{
		Email:    "grace@example.com",
		Name:     "Grace",
		ID:       "gl-999",
		Provider: "gitlab",
	}

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE provider = \$1 AND provider_id = \$2`).
		WithArgs("gitlab", "gl-999").
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("grace@example.com", "Grace", (*string)(nil), "gitlab", "gl-999").
		WillReturnRows(userRows(userID, "grace@example.com", "Grace", "gitlab", "gl-999"))

	user, created, err := svc.FindOrCreateFromOAuth(ctx, info)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_FindOrCreateFromOAuth_DisabledAccount(t *testing.T) {
	svc, mock := setupUserService(t)
	info := &oauth.UserInfo{
		Email:    "ada@example.com",
		Name:     "Ada",
		ID:       "gh-12345",
		Provider: "github",
	}

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE provider = \$1 AND provider_id = \$2`).
		WithArgs("github", "gh-12345").
		WillReturnRows(activeUserRows(uuid.New(), "ada@example.com", "Ada", "github", "gh-12345", false))

	_, _, err := svc.FindOrCreateFromOAuth(context.Background(), info)

	assert.ErrorIs(t, err, ErrAccountDisabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetActive_Deactivate(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET is_active = \$1`).
		WithArgs(false, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, svc.SetActive(context.Background(), userID, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByEmail_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByEmail(context.Background(), "nobody@example.com")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Update(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()

	mock.ExpectQuery(`UPDATE users SET name = \$1`).
		WithArgs("New Name", userID).
		WillReturnRows(userRows(userID, "ada@example.com", "New Name", "github", "gh-1"))

	user, err := svc.Update(context.Background(), userID, "New Name")

	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
