package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
	Provider   string    `json:"provider"`
	ProviderID string    `json:"-"`
	IsStaff    bool      `json:"is_staff"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserSettings is the per-user preference row. A user without a row gets
// the column defaults; the settings service creates the row on first read.
type UserSettings struct {
	ID                       uuid.UUID `json:"id"`
	UserID                   uuid.UUID `json:"user_id"`
	Theme                    string    `json:"theme"`
	Language                 string    `json:"language"`
	ItemsPerPage             int       `json:"items_per_page"`
	DefaultDueDateDays       int       `json:"default_due_date_days"`
	EnableEmailNotifications bool      `json:"enable_email_notifications"`
	EnablePushNotifications  bool      `json:"enable_push_notifications"`
	AutoArchiveCompleted     bool      `json:"auto_archive_completed"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}
