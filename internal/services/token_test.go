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
)

func setupTokenService(t *testing.T) (*TokenService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTokenService(db), mock
}

func TestTokenService_StoreAndValidate(t *testing.T) {
	svc, mock := setupTokenService(t)
	ctx := context.Background()
	userID := uuid.New()
	hash := HashToken("refresh-token")
	expiresAt := time.Now().Add(24 * time.Hour)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(userID, hash, expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, svc.StoreRefreshToken(ctx, userID, hash, expiresAt))

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs(hash).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(userID))

	got, err := svc.ValidateRefreshToken(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ValidateRefreshToken_Expired(t *testing.T) {
	svc, mock := setupTokenService(t)
	hash := HashToken("stale")

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs(hash).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.ValidateRefreshToken(context.Background(), hash)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_Rotate(t *testing.T) {
	svc, mock := setupTokenService(t)
	userID := uuid.New()
	oldHash := HashToken("old")
	newHash := HashToken("new")
	expiresAt := time.Now().Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs(oldHash).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(userID, newHash, expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Rotate(context.Background(), userID, oldHash, newHash, expiresAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_Rotate_InsertFails(t *testing.T) {
	svc, mock := setupTokenService(t)
	userID := uuid.New()
	expiresAt := time.Now().Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs("a").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(userID, "b", expiresAt).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := svc.Rotate(context.Background(), userID, "a", "b", expiresAt)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_CleanupExpired(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < NOW\(\)`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, svc.CleanupExpired(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
