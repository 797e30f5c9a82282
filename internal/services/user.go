package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/oauth"
)

// ErrAccountDisabled is returned when a deactivated account tries to sign in.
var ErrAccountDisabled = errors.New("account is disabled")

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, email, name, avatar_url, provider, provider_id, is_staff, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.IsStaff, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateFromOAuth looks the user up by provider identity, refreshing
// stale profile fields, or creates the account. The created flag lets the
// caller fire the signup welcome notification exactly once. A deactivated
// account is never reactivated by signing in; it gets ErrAccountDisabled.
func (s *UserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, bool, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE provider = $1 AND provider_id = $2
	`, info.Provider, info.ID))

	if err == nil {
		if !user.IsActive {
			return nil, false, ErrAccountDisabled
		}
		s.refreshProfile(ctx, user, info)
		return user, false, nil
	}

	user, err = scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns+`
	`, info.Email, info.Name, nullableString(info.AvatarURL), info.Provider, info.ID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	return user, true, nil
}

// refreshProfile brings email, name and avatar in line with the provider.
// Best effort; a failed refresh must not block sign-in.
func (s *UserService) refreshProfile(ctx context.Context, user *models.User, info *oauth.UserInfo) {
	if user.Email == info.Email && user.Name == info.Name && (user.AvatarURL != nil || info.AvatarURL == "") {
		return
	}
	_, _ = s.db.Pool.Exec(ctx, `
		UPDATE users SET email = $1, name = $2, avatar_url = $3, updated_at = NOW()
		WHERE id = $4
	`, info.Email, info.Name, nullableString(info.AvatarURL), user.ID)
	user.Email = info.Email
	user.Name = info.Name
	if info.AvatarURL != "" {
		user.AvatarURL = &info.AvatarURL
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	return scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns+`
	`, name, id))
}

// SetActive enables or disables an account. Disabling also revokes every
// refresh token so existing sessions die at the next refresh.
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if !active {
		_, err = s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, id)
	}
	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
