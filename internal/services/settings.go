package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

var ErrInvalidTheme = errors.New("invalid theme")

// SettingsService manages per-user preferences. Rows are created lazily:
// the first read upserts a row with column defaults, so every user always
// has settings without a signup-time hook.
type SettingsService struct {
	db *database.DB
}

func NewSettingsService(db *database.DB) *SettingsService {
	return &SettingsService{db: db}
}

const settingsColumns = `id, user_id, theme, language, items_per_page, default_due_date_days,
		enable_email_notifications, enable_push_notifications, auto_archive_completed, created_at, updated_at`

func scanSettings(row pgx.Row) (*models.UserSettings, error) {
	var s models.UserSettings
	err := row.Scan(
		&s.ID, &s.UserID, &s.Theme, &s.Language, &s.ItemsPerPage,
		&s.DefaultDueDateDays, &s.EnableEmailNotifications,
		&s.EnablePushNotifications, &s.AutoArchiveCompleted,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns the user's settings, creating the row with defaults on first
// access. The conflict arm is a no-op update so RETURNING always yields the
// existing row.
func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	settings, err := scanSettings(s.db.Pool.QueryRow(ctx, `
		INSERT INTO user_settings (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING `+settingsColumns+`
	`, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// SettingsPatch carries the updatable fields; nil means leave unchanged.
type SettingsPatch struct {
	Theme                    *string
	Language                 *string
	ItemsPerPage             *int
	DefaultDueDateDays       *int
	EnableEmailNotifications *bool
	EnablePushNotifications  *bool
	AutoArchiveCompleted     *bool
}

func validTheme(theme string) bool {
	return theme == "light" || theme == "dark" || theme == "system"
}

func (s *SettingsService) Update(ctx context.Context, userID uuid.UUID, patch SettingsPatch) (*models.UserSettings, error) {
	if patch.Theme != nil && !validTheme(*patch.Theme) {
		return nil, ErrInvalidTheme
	}

	// Ensure the row exists before patching so a fresh user can PATCH
	// without a prior GET.
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	settings, err := scanSettings(s.db.Pool.QueryRow(ctx, `
		UPDATE user_settings SET
			theme = COALESCE($2, theme),
			language = COALESCE($3, language),
			items_per_page = COALESCE($4, items_per_page),
			default_due_date_days = COALESCE($5, default_due_date_days),
			enable_email_notifications = COALESCE($6, enable_email_notifications),
			enable_push_notifications = COALESCE($7, enable_push_notifications),
			auto_archive_completed = COALESCE($8, auto_archive_completed),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+settingsColumns+`
	`, userID, patch.Theme, patch.Language, patch.ItemsPerPage, patch.DefaultDueDateDays,
		patch.EnableEmailNotifications, patch.EnablePushNotifications, patch.AutoArchiveCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}
