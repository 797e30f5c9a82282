package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/models"
)

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrItemNotStartable   = errors.New("item is not available to start")
	ErrItemNotCompletable = errors.New("item cannot be completed in its current state")
	ErrNotClaimant        = errors.New("only the user who started the item can complete it")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidPriority    = errors.New("invalid priority")
)

// ItemService owns the item lifecycle: pending -> in_progress -> completed,
// with cancelled reachable through a generic update. Start and Complete are
// single conditional UPDATEs so two concurrent callers can never both win.
type ItemService struct {
	db *database.DB
}

func NewItemService(db *database.DB) *ItemService {
	return &ItemService{db: db}
}

const itemColumns = `id, project_id, title, description, priority, status, due_date, started_by, completed_at, created_by, created_at, updated_at`

func scanItem(row pgx.Row) (*models.ProjectItem, error) {
	var item models.ProjectItem
	err := row.Scan(
		&item.ID, &item.ProjectID, &item.Title, &item.Description,
		&item.Priority, &item.Status, &item.DueDate, &item.StartedBy,
		&item.CompletedAt, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ItemService) Create(ctx context.Context, projectID uuid.UUID, title, description, priority string, dueDate *time.Time, createdBy uuid.UUID) (*models.ProjectItem, error) {
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		INSERT INTO project_items (project_id, title, description, priority, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+itemColumns+`
	`, projectID, title, description, priority, dueDate, createdBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

func (s *ItemService) GetByID(ctx context.Context, itemID uuid.UUID) (*models.ProjectItem, error) {
	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM project_items WHERE id = $1
	`, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *ItemService) GetByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectItem, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+itemColumns+` FROM project_items WHERE project_id = $1
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ProjectItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// Start claims a pending item for userID. The precondition (pending and
// unclaimed) is part of the UPDATE's WHERE clause: under concurrent calls
// exactly one caller gets the row back, the rest fall through to the
// existence check and get ErrItemNotStartable.
func (s *ItemService) Start(ctx context.Context, itemID, userID uuid.UUID) (*models.ProjectItem, error) {
	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		UPDATE project_items
		SET status = $2, started_by = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4 AND started_by IS NULL
		RETURNING `+itemColumns+`
	`, itemID, models.StatusInProgress, userID, models.StatusPending))
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, getErr := s.GetByID(ctx, itemID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrItemNotStartable
}

// Complete finishes an in-progress item. Only the claimant may complete;
// anyone else with project access gets ErrNotClaimant. completed_at is set
// in the same conditional UPDATE.
func (s *ItemService) Complete(ctx context.Context, itemID, userID uuid.UUID) (*models.ProjectItem, error) {
	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		UPDATE project_items
		SET status = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $3 AND started_by = $4
		RETURNING `+itemColumns+`
	`, itemID, models.StatusCompleted, models.StatusInProgress, userID))
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	current, getErr := s.GetByID(ctx, itemID)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status != models.StatusInProgress {
		return nil, ErrItemNotCompletable
	}
	return nil, ErrNotClaimant
}

// ItemPatch carries the generic-update fields; nil means leave unchanged.
type ItemPatch struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	DueDate     *time.Time
}

// Update applies a generic patch. The completed_at derivation runs inside
// the statement on every write: moving to completed stamps it (unless
// already stamped), moving anywhere else clears it. Callers cannot bypass
// the derivation by patching status directly.
func (s *ItemService) Update(ctx context.Context, itemID uuid.UUID, patch ItemPatch) (*models.ProjectItem, error) {
	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		return nil, ErrInvalidStatus
	}
	if patch.Priority != nil && !models.ValidPriority(*patch.Priority) {
		return nil, ErrInvalidPriority
	}

	item, err := scanItem(s.db.Pool.QueryRow(ctx, `
		UPDATE project_items
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    priority = COALESCE($4, priority),
		    status = COALESCE($5, status),
		    due_date = COALESCE($6, due_date),
		    completed_at = CASE
		        WHEN COALESCE($5, status) = 'completed' THEN COALESCE(completed_at, NOW())
		        ELSE NULL
		    END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+itemColumns+`
	`, itemID, patch.Title, patch.Description, patch.Priority, patch.Status, patch.DueDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, itemID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM project_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
