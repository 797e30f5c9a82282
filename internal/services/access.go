package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskhive/taskhive-api/internal/authz"
	"github.com/taskhive/taskhive-api/internal/database"
)

var (
	ErrForbidden       = errors.New("insufficient access")
	ErrProjectNotFound = errors.New("project not found")
	ErrServerNotFound  = errors.New("server not found")
)

// AccessService resolves a principal's standing against a container and
// turns standing plus operation class into an allow/deny decision. It is
// called on every request, so each resolution is at most two single-row
// queries.
type AccessService struct {
	db *database.DB
}

func NewAccessService(db *database.DB) *AccessService {
	return &AccessService{db: db}
}

// ProjectStanding resolves standing for one project. The recorded owner is
// always OWNER, whether or not a grant or membership row exists. Standalone
// projects fall back to the single project_access row; server projects fall
// back to the server membership role.
func (s *AccessService) ProjectStanding(ctx context.Context, projectID, userID uuid.UUID) (authz.Standing, error) {
	var ownerID uuid.UUID
	var serverID *uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT owner_id, server_id FROM projects WHERE id = $1
	`, projectID).Scan(&ownerID, &serverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.None(), ErrProjectNotFound
		}
		return authz.None(), err
	}

	if ownerID == userID {
		return authz.Owner(), nil
	}

	if serverID != nil {
		var role string
		err = s.db.Pool.QueryRow(ctx, `
			SELECT role FROM server_members WHERE server_id = $1 AND user_id = $2
		`, *serverID, userID).Scan(&role)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return authz.None(), nil
			}
			return authz.None(), err
		}
		return authz.Member(role), nil
	}

	var level string
	err = s.db.Pool.QueryRow(ctx, `
		SELECT access_level FROM project_access WHERE project_id = $1 AND user_id = $2
	`, projectID, userID).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.None(), nil
		}
		return authz.None(), err
	}
	return authz.Shared(level), nil
}

// ServerStanding resolves standing for a server container.
func (s *AccessService) ServerStanding(ctx context.Context, serverID, userID uuid.UUID) (authz.Standing, error) {
	var ownerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT owner_id FROM servers WHERE id = $1
	`, serverID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.None(), ErrServerNotFound
		}
		return authz.None(), err
	}

	if ownerID == userID {
		return authz.Owner(), nil
	}

	var role string
	err = s.db.Pool.QueryRow(ctx, `
		SELECT role FROM server_members WHERE server_id = $1 AND user_id = $2
	`, serverID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authz.None(), nil
		}
		return authz.None(), err
	}
	return authz.Member(role), nil
}

// AuthorizeProject gates op against the project. A principal with no
// standing gets ErrProjectNotFound for every operation class so that
// private projects cannot be probed for existence.
func (s *AccessService) AuthorizeProject(ctx context.Context, projectID, userID uuid.UUID, op authz.Op) (authz.Standing, error) {
	standing, err := s.ProjectStanding(ctx, projectID, userID)
	if err != nil {
		return standing, err
	}
	if !standing.Exists() {
		return standing, ErrProjectNotFound
	}
	if !standing.Allows(op) {
		return standing, ErrForbidden
	}
	return standing, nil
}

// AuthorizeServer gates op against the server, with the same non-leak rule.
func (s *AccessService) AuthorizeServer(ctx context.Context, serverID, userID uuid.UUID, op authz.Op) (authz.Standing, error) {
	standing, err := s.ServerStanding(ctx, serverID, userID)
	if err != nil {
		return standing, err
	}
	if !standing.Exists() {
		return standing, ErrServerNotFound
	}
	if !standing.Allows(op) {
		return standing, ErrForbidden
	}
	return standing, nil
}

// ProjectRecipients returns every principal with standing on the project,
// deduplicated: the owner, all grant holders for standalone projects, and
// all server members for server projects. The owner arm is unconditional
// because ownership confers standing even without a membership row. Used
// by notification fan-out.
func (s *AccessService) ProjectRecipients(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT owner_id AS user_id FROM projects WHERE id = $1
		UNION
		SELECT pa.user_id FROM project_access pa
		JOIN projects p ON pa.project_id = p.id
		WHERE pa.project_id = $1 AND p.server_id IS NULL
		UNION
		SELECT sm.user_id FROM server_members sm
		JOIN projects p ON sm.server_id = p.server_id
		WHERE p.id = $1
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		recipients = append(recipients, id)
	}
	return recipients, nil
}
