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
	"github.com/taskhive/taskhive-api/internal/models"
)

func setupSettingsService(t *testing.T) (*SettingsService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewSettingsService(db), mock
}

func settingsRows(s *models.UserSettings) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "theme", "language", "items_per_page", "default_due_date_days",
		"enable_email_notifications", "enable_push_notifications", "auto_archive_completed",
		"created_at", "updated_at",
	}).AddRow(
		s.ID, s.UserID, s.Theme, s.Language, s.ItemsPerPage, s.DefaultDueDateDays,
		s.EnableEmailNotifications, s.EnablePushNotifications, s.AutoArchiveCompleted,
		s.CreatedAt, s.UpdatedAt,
	)
}

func defaultSettings(userID uuid.UUID) *models.UserSettings {
	return &models.UserSettings{
		ID:                       uuid.New(),
		UserID:                   userID,
		Theme:                    "light",
		Language:                 "en",
		ItemsPerPage:             10,
		DefaultDueDateDays:       7,
		EnableEmailNotifications: true,
		EnablePushNotifications:  true,
		AutoArchiveCompleted:     true,
		CreatedAt:                time.Now(),
		UpdatedAt:                time.Now(),
	}
}

func TestSettingsService_Get_CreatesRowOnFirstAccess(t *testing.T) {
	svc, mock := setupSettingsService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectQuery(`INSERT INTO user_settings \(user_id\) VALUES \(\$1\)`).
		WithArgs(userID).
		WillReturnRows(settingsRows(defaultSettings(userID)))

	settings, err := svc.Get(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, settings.UserID)
	assert.Equal(t, "light", settings.Theme)
	assert.Equal(t, 10, settings.ItemsPerPage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsService_Update_PatchesOnlyGivenFields(t *testing.T) {
	svc, mock := setupSettingsService(t)
	ctx := context.Background()
	userID := uuid.New()
	theme := "dark"
	updated := defaultSettings(userID)
	updated.Theme = theme

	mock.ExpectQuery(`INSERT INTO user_settings \(user_id\) VALUES \(\$1\)`).
		WithArgs(userID).
		WillReturnRows(settingsRows(defaultSettings(userID)))
	mock.ExpectQuery(`UPDATE user_settings SET`).
		WithArgs(userID, &theme, (*string)(nil), (*int)(nil), (*int)(nil),
			(*bool)(nil), (*bool)(nil), (*bool)(nil)).
		WillReturnRows(settingsRows(updated))

	settings, err := svc.Update(ctx, userID, SettingsPatch{Theme: &theme})

	require.NoError(t, err)
	assert.Equal(t, "dark", settings.Theme)
	assert.Equal(t, "en", settings.Language)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsService_Update_InvalidTheme(t *testing.T) {
	svc, mock := setupSettingsService(t)
	theme := "neon"

	_, err := svc.Update(context.Background(), uuid.New(), SettingsPatch{Theme: &theme})

	assert.ErrorIs(t, err, ErrInvalidTheme)
	assert.NoError(t, mock.ExpectationsWereMet())
}
