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

var (
	ErrAccessNotFound = errors.New("access grant not found")
	ErrCannotGrantOwner = errors.New("cannot grant access to the project owner")
)

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) Create(ctx context.Context, title, description, visibility string, ownerID uuid.UUID, serverID *uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (title, description, visibility, owner_id, server_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, description, visibility, is_archived, owner_id, server_id, created_at, updated_at
	`, title, description, visibility, ownerID, serverID).Scan(
		&project.ID, &project.Title, &project.Description, &project.Visibility,
		&project.IsArchived, &project.OwnerID, &project.ServerID,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, title, description, visibility, is_archived, owner_id, server_id, created_at, updated_at
		FROM projects WHERE id = $1
	`, projectID).Scan(
		&project.ID, &project.Title, &project.Description, &project.Visibility,
		&project.IsArchived, &project.OwnerID, &project.ServerID,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetVisibleProjects lists every project the user can see: owned, granted
// through project_access, or reachable through server membership. One
// explicit union query rather than per-row predicate checks.
func (s *ProjectService) GetVisibleProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT DISTINCT p.id, p.title, p.description, p.visibility, p.is_archived,
		       p.owner_id, p.server_id, p.created_at, p.updated_at
		FROM projects p
		LEFT JOIN project_access pa ON pa.project_id = p.id AND pa.user_id = $1
		LEFT JOIN server_members sm ON sm.server_id = p.server_id AND sm.user_id = $1
		WHERE p.owner_id = $1 OR pa.id IS NOT NULL OR sm.id IS NOT NULL
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Visibility, &p.IsArchived,
			&p.OwnerID, &p.ServerID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *ProjectService) GetServerProjects(ctx context.Context, serverID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, title, description, visibility, is_archived, owner_id, server_id, created_at, updated_at
		FROM projects WHERE server_id = $1
		ORDER BY created_at DESC
	`, serverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Visibility, &p.IsArchived,
			&p.OwnerID, &p.ServerID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *ProjectService) Update(ctx context.Context, projectID uuid.UUID, title, description, visibility *string, isArchived *bool) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE projects SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			visibility = COALESCE($4, visibility),
			is_archived = COALESCE($5, is_archived),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, description, visibility, is_archived, owner_id, server_id, created_at, updated_at
	`, projectID, title, description, visibility, isArchived).Scan(
		&project.ID, &project.Title, &project.Description, &project.Visibility,
		&project.IsArchived, &project.OwnerID, &project.ServerID,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Delete(ctx context.Context, projectID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	return err
}

// UpsertAccess grants access to a standalone project, or bumps the level if
// a grant already exists. The UNIQUE(project_id, user_id) constraint plus
// ON CONFLICT keeps concurrent invites from ever producing two rows.
func (s *ProjectService) UpsertAccess(ctx context.Context, projectID, userID uuid.UUID, level string, grantedBy uuid.UUID) (*models.ProjectAccess, error) {
	var ownerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT owner_id FROM projects WHERE id = $1`, projectID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if ownerID == userID {
		return nil, ErrCannotGrantOwner
	}

	var grant models.ProjectAccess
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO project_access (project_id, user_id, access_level, granted_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, user_id) DO UPDATE SET
			access_level = EXCLUDED.access_level,
			granted_by = EXCLUDED.granted_by,
			updated_at = NOW()
		RETURNING id, project_id, user_id, access_level, granted_by, created_at, updated_at
	`, projectID, userID, level, grantedBy).Scan(
		&grant.ID, &grant.ProjectID, &grant.UserID, &grant.AccessLevel,
		&grant.GrantedBy, &grant.CreatedAt, &grant.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert access grant: %w", err)
	}
	return &grant, nil
}

func (s *ProjectService) GetAccessList(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAccess, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT pa.id, pa.project_id, pa.user_id, pa.access_level, pa.granted_by, pa.created_at, pa.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.is_staff, u.is_active, u.created_at, u.updated_at
		FROM project_access pa
		JOIN users u ON pa.user_id = u.id
		WHERE pa.project_id = $1
		ORDER BY pa.created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []models.ProjectAccess
	for rows.Next() {
		var grant models.ProjectAccess
		var user models.User
		if err := rows.Scan(
			&grant.ID, &grant.ProjectID, &grant.UserID, &grant.AccessLevel,
			&grant.GrantedBy, &grant.CreatedAt, &grant.UpdatedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL,
			&user.Provider, &user.IsStaff, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		grant.User = &user
		grants = append(grants, grant)
	}
	return grants, nil
}

func (s *ProjectService) RevokeAccess(ctx context.Context, projectID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM project_access WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccessNotFound
	}
	return nil
}
