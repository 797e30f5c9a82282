package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/notify"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTemplateNotFound     = errors.New("notification template not found")
)

// NotificationService persists notifications and pushes them to connected
// clients through the hub. Fan-out recipients come from the access layer so
// that delivery and authorization always agree on who can see a project.
type NotificationService struct {
	db     *database.DB
	access *AccessService
	hub    *notify.Hub
}

func NewNotificationService(db *database.DB, access *AccessService, hub *notify.Hub) *NotificationService {
	return &NotificationService{db: db, access: access, hub: hub}
}

const notificationColumns = `id, user_id, title, message, channels, category, read_at, created_at`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Channels, &n.Category, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Notify stores one notification per recipient and publishes the stored
// rows to the hub. Recipients already in the exclude set are skipped, which
// keeps actors from being notified about their own actions.
func (s *NotificationService) Notify(ctx context.Context, recipients []uuid.UUID, exclude uuid.UUID, title, message, category string) error {
	seen := make(map[uuid.UUID]bool, len(recipients))

	for _, userID := range recipients {
		if userID == exclude || seen[userID] {
			continue
		}
		seen[userID] = true

		n, err := scanNotification(s.db.Pool.QueryRow(ctx, `
			INSERT INTO notifications (user_id, title, message, channels, category)
			VALUES ($1, $2, $3, 'in_app', $4)
			RETURNING `+notificationColumns+`
		`, userID, title, message, category))
		if err != nil {
			return fmt.Errorf("failed to store notification: %w", err)
		}

		s.hub.Publish([]uuid.UUID{userID}, notify.Event{
			Type: "notification",
			Data: notify.NotificationEvent{
				ID:       n.ID,
				Title:    n.Title,
				Message:  n.Message,
				Category: n.Category,
			},
		})
	}

	return nil
}

// TaskCreated fans out to everyone with standing on the item's project,
// minus the actor who created it.
func (s *NotificationService) TaskCreated(ctx context.Context, item *models.ProjectItem, projectTitle string, actorID uuid.UUID) error {
	recipients, err := s.access.ProjectRecipients(ctx, item.ProjectID)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("New task in %s", projectTitle)
	message := fmt.Sprintf("Task %q was added to %s.", item.Title, projectTitle)
	return s.Notify(ctx, recipients, actorID, title, message, "task")
}

// TaskStatusChanged covers start and complete transitions.
func (s *NotificationService) TaskStatusChanged(ctx context.Context, item *models.ProjectItem, projectTitle string, actorID uuid.UUID) error {
	recipients, err := s.access.ProjectRecipients(ctx, item.ProjectID)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Task updated in %s", projectTitle)
	message := fmt.Sprintf("Task %q is now %s.", item.Title, item.Status)
	return s.Notify(ctx, recipients, actorID, title, message, "task")
}

// AccessGranted tells a user they were given access to a standalone project.
func (s *NotificationService) AccessGranted(ctx context.Context, userID uuid.UUID, projectTitle, level string) error {
	title := "Project shared with you"
	message := fmt.Sprintf("You now have %s access to %s.", level, projectTitle)
	return s.Notify(ctx, []uuid.UUID{userID}, uuid.Nil, title, message, "access")
}

// MemberJoined tells existing server members about a new arrival.
func (s *NotificationService) MemberJoined(ctx context.Context, serverID uuid.UUID, serverName string, newMemberID uuid.UUID, newMemberName string) error {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT user_id FROM server_members WHERE server_id = $1
	`, serverID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var recipients []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		recipients = append(recipients, id)
	}

	title := fmt.Sprintf("New member in %s", serverName)
	message := fmt.Sprintf("%s joined %s.", newMemberName, serverName)
	return s.Notify(ctx, recipients, newMemberID, title, message, "member")
}

// UserRegistered sends the signup welcome from its template. A missing or
// disabled template silently skips the welcome rather than failing signup.
func (s *NotificationService) UserRegistered(ctx context.Context, user *models.User) error {
	tmpl, err := s.GetTemplateByName(ctx, "signup_welcome")
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return nil
		}
		return err
	}
	if !tmpl.IsActive {
		return nil
	}

	title := renderTemplate(tmpl.Title, user)
	message := renderTemplate(tmpl.Message, user)
	return s.Notify(ctx, []uuid.UUID{user.ID}, uuid.Nil, title, message, "system")
}

func (s *NotificationService) GetTemplateByName(ctx context.Context, name string) (*models.NotificationTemplate, error) {
	var t models.NotificationTemplate
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, title, message, channels, is_active, created_at, updated_at
		FROM notification_templates
		WHERE name = $1
	`, name).Scan(&t.ID, &t.Name, &t.Title, &t.Message, &t.Channels, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

// renderTemplate substitutes the {{user.*}} placeholders a template may use.
func renderTemplate(text string, user *models.User) string {
	text = strings.ReplaceAll(text, "{{user.email}}", user.Email)
	text = strings.ReplaceAll(text, "{{user.name}}", user.Name)
	return text
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
	`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := s.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Channels, &n.Category, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE notifications SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE notifications SET read_at = NOW()
		WHERE user_id = $1 AND read_at IS NULL
	`, userID)
	return err
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL
	`, userID).Scan(&count)
	return count, err
}
