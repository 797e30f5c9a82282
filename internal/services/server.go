package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

var (
	ErrAlreadyMember       = errors.New("user is already a server member")
	ErrMemberNotFound      = errors.New("member not found")
	ErrCannotRemoveOwner   = errors.New("cannot remove the server owner")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInviteNotFound      = errors.New("invitation not found")
	ErrInviteNotUsable     = errors.New("invitation is no longer usable")
	ErrInviteExpired       = errors.New("invitation has expired")
)

type ServerService struct {
	db *database.DB
}

func NewServerService(db *database.DB) *ServerService {
	return &ServerService{db: db}
}

func generateInviteCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create inserts the server, records the owner as a member, and opens an
// initial pending invitation so the server is joinable from day one.
func (s *ServerService) Create(ctx context.Context, name, description string, ownerID uuid.UUID) (*models.Server, error) {
	code, err := generateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var server models.Server
	err = tx.QueryRow(ctx, `
		INSERT INTO servers (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, owner_id, created_at, updated_at
	`, name, description, ownerID).Scan(
		&server.ID, &server.Name, &server.Description, &server.OwnerID,
		&server.CreatedAt, &server.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO server_members (server_id, user_id, role)
		VALUES ($1, $2, $3)
	`, server.ID, ownerID, models.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO server_invitations (server_id, inviter_id, invite_code, role, max_uses)
		VALUES ($1, $2, $3, $4, $5)
	`, server.ID, ownerID, code, models.RoleMember, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &server, nil
}

func (s *ServerService) GetByID(ctx context.Context, serverID uuid.UUID) (*models.Server, error) {
	var server models.Server
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM servers WHERE id = $1
	`, serverID).Scan(
		&server.ID, &server.Name, &server.Description, &server.OwnerID,
		&server.CreatedAt, &server.UpdatedAt,
	)
	if err != nil {
		return nil, ErrServerNotFound
	}
	return &server, nil
}

func (s *ServerService) GetUserServers(ctx context.Context, userID uuid.UUID) ([]models.Server, []string, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT srv.id, srv.name, srv.description, srv.owner_id, srv.created_at, srv.updated_at, sm.role
		FROM servers srv
		JOIN server_members sm ON srv.id = sm.server_id
		WHERE sm.user_id = $1
		ORDER BY srv.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var servers []models.Server
	var roles []string
	for rows.Next() {
		var srv models.Server
		var role string
		if err := rows.Scan(&srv.ID, &srv.Name, &srv.Description, &srv.OwnerID, &srv.CreatedAt, &srv.UpdatedAt, &role); err != nil {
			return nil, nil, err
		}
		servers = append(servers, srv)
		roles = append(roles, role)
	}
	return servers, roles, nil
}

func (s *ServerService) Update(ctx context.Context, serverID uuid.UUID, name, description *string) (*models.Server, error) {
	var server models.Server
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE servers SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, owner_id, created_at, updated_at
	`, serverID, name, description).Scan(
		&server.ID, &server.Name, &server.Description, &server.OwnerID,
		&server.CreatedAt, &server.UpdatedAt,
	)
	if err != nil {
		return nil, ErrServerNotFound
	}
	return &server, nil
}

func (s *ServerService) Delete(ctx context.Context, serverID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM servers WHERE id = $1`, serverID)
	return err
}

func (s *ServerService) GetMembers(ctx context.Context, serverID uuid.UUID) ([]models.ServerMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT sm.id, sm.server_id, sm.user_id, sm.role, sm.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.is_staff, u.is_active, u.created_at, u.updated_at
		FROM server_members sm
		JOIN users u ON sm.user_id = u.id
		WHERE sm.server_id = $1
		ORDER BY sm.created_at
	`, serverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.ServerMember
	for rows.Next() {
		var member models.ServerMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.ServerID, &member.UserID, &member.Role, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL,
			&user.Provider, &user.IsStaff, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, nil
}

// AddMember adds a user with the given role. A duplicate add is a conflict,
// not an upsert: member roles change through UpdateMemberRole, never
// through re-adding.
func (s *ServerService) AddMember(ctx context.Context, serverID, userID uuid.UUID, role string) error {
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidMemberRole(role) {
		return ErrInvalidRole
	}

	result, err := s.db.Pool.Exec(ctx, `
		INSERT INTO server_members (server_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (server_id, user_id) DO NOTHING
	`, serverID, userID, role)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyMember
	}
	return nil
}

func (s *ServerService) RemoveMember(ctx context.Context, serverID, userID uuid.UUID) error {
	var role string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role FROM server_members WHERE server_id = $1 AND user_id = $2
	`, serverID, userID).Scan(&role)
	if err != nil {
		return ErrMemberNotFound
	}

	if role == models.RoleOwner {
		return ErrCannotRemoveOwner
	}

	_, err = s.db.Pool.Exec(ctx, `
		DELETE FROM server_members WHERE server_id = $1 AND user_id = $2
	`, serverID, userID)
	return err
}

// UpdateMemberRole changes a member's role. Actors may never change their
// own role, and the owner's role is immutable.
func (s *ServerService) UpdateMemberRole(ctx context.Context, serverID, userID uuid.UUID, role string, actorID uuid.UUID) (*models.ServerMember, error) {
	if userID == actorID {
		return nil, ErrCannotChangeOwnRole
	}
	if !models.ValidMemberRole(role) {
		return nil, ErrInvalidRole
	}

	var member models.ServerMember
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE server_members SET role = $3
		WHERE server_id = $1 AND user_id = $2 AND role != $4
		RETURNING id, server_id, user_id, role, created_at
	`, serverID, userID, role, models.RoleOwner).Scan(
		&member.ID, &member.ServerID, &member.UserID, &member.Role, &member.CreatedAt,
	)
	if err != nil {
		return nil, ErrMemberNotFound
	}
	return &member, nil
}

const invitationColumns = `id, server_id, inviter_id, invite_code, role, status, max_uses, uses, expires_at, created_at, updated_at`

func scanInvitation(row pgx.Row) (*models.ServerInvitation, error) {
	var inv models.ServerInvitation
	err := row.Scan(
		&inv.ID, &inv.ServerID, &inv.InviterID, &inv.InviteCode, &inv.Role,
		&inv.Status, &inv.MaxUses, &inv.Uses, &inv.ExpiresAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *ServerService) CreateInvitation(ctx context.Context, serverID, inviterID uuid.UUID, role string, maxUses int, expiresAt *time.Time) (*models.ServerInvitation, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidMemberRole(role) {
		return nil, ErrInvalidRole
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	inv, err := scanInvitation(s.db.Pool.QueryRow(ctx, `
		INSERT INTO server_invitations (server_id, inviter_id, invite_code, role, max_uses, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+invitationColumns+`
	`, serverID, inviterID, code, role, maxUses, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return inv, nil
}

func (s *ServerService) GetInvitations(ctx context.Context, serverID uuid.UUID) ([]models.ServerInvitation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+invitationColumns+` FROM server_invitations
		WHERE server_id = $1
		ORDER BY created_at DESC
	`, serverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.ServerInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}
	return invitations, nil
}

// RevokeInvitation marks a pending invitation revoked. The row is kept so
// the invitation history remains auditable.
func (s *ServerService) RevokeInvitation(ctx context.Context, inviteID, serverID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE server_invitations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND server_id = $3 AND status = $4
	`, models.InviteStatusRevoked, inviteID, serverID, models.InviteStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// JoinByCode redeems an invitation code. The invitation row is locked for
// the duration of the transaction so concurrent redemptions cannot
// over-spend a limited-use code. Exhausted codes are marked accepted, not
// deleted.
func (s *ServerService) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*models.Server, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inv, err := scanInvitation(tx.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM server_invitations
		WHERE invite_code = $1
		FOR UPDATE
	`, code))
	if err != nil {
		return nil, ErrInviteNotFound
	}

	if inv.Status != models.InviteStatusPending {
		return nil, ErrInviteNotUsable
	}

	if inv.IsExpired(time.Now()) {
		_, err = tx.Exec(ctx, `
			UPDATE server_invitations SET status = $1, updated_at = NOW() WHERE id = $2
		`, models.InviteStatusExpired, inv.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to expire invitation: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil, ErrInviteExpired
	}

	if inv.MaxUses > 0 && inv.Uses >= inv.MaxUses {
		return nil, ErrInviteNotUsable
	}

	result, err := tx.Exec(ctx, `
		INSERT INTO server_members (server_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (server_id, user_id) DO NOTHING
	`, inv.ServerID, userID, inv.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrAlreadyMember
	}

	status := models.InviteStatusPending
	if inv.MaxUses > 0 && inv.Uses+1 >= inv.MaxUses {
		status = models.InviteStatusAccepted
	}
	_, err = tx.Exec(ctx, `
		UPDATE server_invitations SET uses = uses + 1, status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	var server models.Server
	err = tx.QueryRow(ctx, `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM servers WHERE id = $1
	`, inv.ServerID).Scan(
		&server.ID, &server.Name, &server.Description, &server.OwnerID,
		&server.CreatedAt, &server.UpdatedAt,
	)
	if err != nil {
		return nil, ErrServerNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &server, nil
}
