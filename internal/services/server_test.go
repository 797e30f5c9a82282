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

func setupServerService(t *testing.T) (*ServerService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewServerService(db), mock
}

func invitationRows(inv *models.ServerInvitation) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "server_id", "inviter_id", "invite_code", "role", "status",
		"max_uses", "uses", "expires_at", "created_at", "updated_at",
	}).AddRow(
		inv.ID, inv.ServerID, inv.InviterID, inv.InviteCode, inv.Role, inv.Status,
		inv.MaxUses, inv.Uses, inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt,
	)
}

func TestServerService_Create(t *testing.T) {
	svc, mock := setupServerService(t)
	ctx := context.Background()
	serverID := uuid.New()
	ownerID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()

	rows := pgxmock.NewRows([]string{"id", "name", "description", "owner_id", "created_at", "updated_at"}).
		AddRow(serverID, "Dev Team", "", ownerID, now, now)
	mock.ExpectQuery(`INSERT INTO servers`).
		WithArgs("Dev Team", "", ownerID).
		WillReturnRows(rows)

	mock.ExpectExec(`INSERT INTO server_members`).
		WithArgs(serverID, ownerID, models.RoleOwner).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectExec(`INSERT INTO server_invitations`).
		WithArgs(serverID, ownerID, pgxmock.AnyArg(), models.RoleMember, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectCommit()

	server, err := svc.Create(ctx, "Dev Team", "", ownerID)

	require.NoError(t, err)
	assert.Equal(t, serverID, server.ID)
	assert.Equal(t, ownerID, server.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerService_AddMember_Duplicate(t *testing.T) {
	svc, mock := setupServerService(t)
	serverID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`INSERT INTO server_members .+ ON CONFLICT \(server_id, user_id\) DO NOTHING`).
		WithArgs(serverID, userID, models.RoleMember).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := svc.AddMember(context.Background(), serverID, userID, models.RoleMember)

	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerService_AddMember_InvalidRole(t *testing.T) {
	svc, mock := setupServerService(t)

	err := svc.AddMember(context.Background(), uuid.New(), uuid.New(), "owner")

	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerService_RemoveMember_Owner(t *testing.T) {
	svc, mock := setupServerService(t)
	serverID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT role FROM server_members`).
		WithArgs(serverID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"role"}).AddRow(models.RoleOwner))

	err := svc.RemoveMember(context.Background(), serverID, userID)

	assert.ErrorIs(t, err, ErrCannotRemoveOwner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerService_UpdateMemberRole_SelfChange(t *testing.T) {
	svc, mock := setupServerService(t)
	serverID := uuid.New()
	userID := uuid.New()

	_, err := svc.UpdateMemberRole(context.Background(), serverID, userID, models.RoleAdmin, userID)

	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerService_JoinByCode_Success(t *testing.T) {
	svc, mock := setupServerService(t)
	ctx := context.Background()
	serverID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	inv := &models.ServerInvitation{
		ID:         uuid.New(),
		ServerID:   serverID,
		InviterID:  uuid.New(),
		InviteCode: "abcdef0123456789",
		Role:       models.RoleMember,
		Status:     models.InviteStatusPending,
		MaxUses:    0,
		Uses:       3,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectBegin()

	mock.ExpectQuery(`SELECT .+ FROM server_invitations\s+WHERE invite_code = \$1\s+FOR UPDATE`).
		WithArgs(inv.InviteCode).
		WillReturnRows(invitationRows(inv))

	mock.ExpectExec(`INSERT INTO server_members`).
		WithArgs(serverID, userID, models.RoleMember).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectExec(`UPDATE server_invitations SET uses = uses \+ 1`).
		WithArgs(models.InviteStatusPending, inv.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectQuery(`SELECT .+ FROM servers WHERE id`).
		WithArgs(serverID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "owner_id", "created_at", "updated_at"}).
			AddRow(serverID, "Dev Team", "", inv.InviterID, now, now))

	mock.ExpectCommit()

	server, err := svc.JoinByCode(ctx, inv.InviteCode, userID)

	require.NoError(t, err)
	assert.Equal(t, serverID, server.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerService_JoinByCode_Expired(t *testing.T) {
	svc, mock := setupServerService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()
	past := now.Add(-time.Hour)

	inv := &models.ServerInvitation{
		ID:         uuid.New(),
		ServerID:   uuid.New(),
		InviterID:  uuid.New(),
		InviteCode: "deadbeefdeadbeef",
		Role:       models.RoleMember,
		Status:     models.InviteStatusPending,
		ExpiresAt:  &past,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM server_invitations\s+WHERE invite_code = \$1\s+FOR UPDATE`).
		WithArgs(inv.InviteCode).
		WillReturnRows(invitationRows(inv))
	mock.ExpectExec(`UPDATE server_invitations SET status = \$1`).
		WithArgs(models.InviteStatusExpired, inv.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	_, err := svc.JoinByCode(ctx, inv.InviteCode, userID)

	assert.ErrorIs(t, err, ErrInviteExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerService_JoinByCode_Exhausted(t *testing.T) {
	svc, mock := setupServerService(t)
	ctx := context.Background()
	now := time.Now()

	inv := &models.ServerInvitation{
		ID:         uuid.New(),
		ServerID:   uuid.New(),
		InviterID:  uuid.New(),
		InviteCode: "cafebabecafebabe",
		Role:       models.RoleMember,
		Status:     models.InviteStatusPending,
		MaxUses:    2,
		Uses:       2,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM server_invitations\s+WHERE invite_code = \$1\s+FOR UPDATE`).
		WithArgs(inv.InviteCode).
		WillReturnRows(invitationRows(inv))
	mock.ExpectRollback()

	_, err := svc.JoinByCode(ctx, inv.InviteCode, uuid.New())

	assert.ErrorIs(t, err, ErrInviteNotUsable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerService_RevokeInvitation_NotPending(t *testing.T) {
	svc, mock := setupServerService(t)
	inviteID := uuid.New()
	serverID := uuid.New()

	mock.ExpectExec(`UPDATE server_invitations SET status`).
		WithArgs(models.InviteStatusRevoked, inviteID, serverID, models.InviteStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.RevokeInvitation(context.Background(), inviteID, serverID)

	assert.ErrorIs(t, err, ErrInviteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
