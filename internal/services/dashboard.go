package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/database"
)

// DashboardService aggregates a user's projects, items and grants into the
// single overview payload behind GET /dashboard. Every figure is computed
// in SQL; nothing here mutates state.
type DashboardService struct {
	db *database.DB
}

func NewDashboardService(db *database.DB) *DashboardService {
	return &DashboardService{db: db}
}

// ProjectDigest is a project row plus its item completion counters.
type ProjectDigest struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Visibility     string    `json:"visibility"`
	TotalItems     int       `json:"total_items"`
	CompletedItems int       `json:"completed_items"`
	PendingItems   int       `json:"pending_items"`
	CompletionRate float64   `json:"completion_rate"`
	LastUpdated    time.Time `json:"last_updated"`
}

// UpcomingTask is a due item from any project the user owns or holds a
// grant on.
type UpcomingTask struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	DueDate      *time.Time `json:"due_date"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ProjectTitle string     `json:"project_title"`
}

// SharedProjectDigest describes a project shared with the user through a
// grant, including who owns it and who granted the access.
type SharedProjectDigest struct {
	ProjectID      uuid.UUID `json:"project_id"`
	Title          string    `json:"title"`
	OwnerEmail     string    `json:"owner_email"`
	GrantedByEmail string    `json:"granted_by_email"`
	AccessLevel    string    `json:"access_level"`
	SharedSince    time.Time `json:"shared_since"`
}

// QuickStats are the headline counters over the user's own projects.
type QuickStats struct {
	TotalProjects     int `json:"total_projects"`
	TotalTasks        int `json:"total_tasks"`
	SharedProjects    int `json:"shared_projects_count"`
	TasksDueToday     int `json:"tasks_due_today"`
	OverdueTasks      int `json:"overdue_tasks"`
	CompletedThisWeek int `json:"completed_this_week"`
	InProgressTasks   int `json:"in_progress_tasks"`
}

type DashboardSummary struct {
	ItemsByStatus   map[string]int        `json:"items_by_status"`
	ItemsByPriority map[string]int        `json:"items_by_priority"`
	RecentProjects  []ProjectDigest       `json:"recent_projects"`
	UpcomingTasks   []UpcomingTask        `json:"upcoming_tasks"`
	SharedProjects  []SharedProjectDigest `json:"shared_projects"`
	QuickStats      QuickStats            `json:"quick_stats"`
}

func (s *DashboardService) Summary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	var err error
	if summary.QuickStats, err = s.quickStats(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load quick stats: %w", err)
	}
	if summary.ItemsByStatus, err = s.itemDistribution(ctx, userID, "status"); err != nil {
		return nil, fmt.Errorf("failed to load status distribution: %w", err)
	}
	if summary.ItemsByPriority, err = s.itemDistribution(ctx, userID, "priority"); err != nil {
		return nil, fmt.Errorf("failed to load priority distribution: %w", err)
	}
	if summary.RecentProjects, err = s.recentProjects(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load recent projects: %w", err)
	}
	if summary.UpcomingTasks, err = s.upcomingTasks(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load upcoming tasks: %w", err)
	}
	if summary.SharedProjects, err = s.sharedProjects(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to load shared projects: %w", err)
	}
	return summary, nil
}

// quickStats is a single row of scalar subqueries so the headline counters
// stay consistent with each other.
func (s *DashboardService) quickStats(ctx context.Context, userID uuid.UUID) (QuickStats, error) {
	var stats QuickStats
	err := s.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE owner_id = $1 AND is_archived = FALSE),
			(SELECT COUNT(*) FROM project_items i JOIN projects p ON i.project_id = p.id WHERE p.owner_id = $1),
			(SELECT COUNT(*) FROM project_access WHERE user_id = $1),
			(SELECT COUNT(*) FROM project_items i JOIN projects p ON i.project_id = p.id
				WHERE p.owner_id = $1 AND i.due_date::date = CURRENT_DATE AND i.status IN ('pending', 'in_progress')),
			(SELECT COUNT(*) FROM project_items i JOIN projects p ON i.project_id = p.id
				WHERE p.owner_id = $1 AND i.due_date < NOW() AND i.status IN ('pending', 'in_progress')),
			(SELECT COUNT(*) FROM project_items i JOIN projects p ON i.project_id = p.id
				WHERE p.owner_id = $1 AND i.status = 'completed' AND i.completed_at >= NOW() - INTERVAL '7 days'),
			(SELECT COUNT(*) FROM project_items i JOIN projects p ON i.project_id = p.id
				WHERE p.owner_id = $1 AND i.status = 'in_progress')
	`, userID).Scan(
		&stats.TotalProjects, &stats.TotalTasks, &stats.SharedProjects,
		&stats.TasksDueToday, &stats.OverdueTasks, &stats.CompletedThisWeek,
		&stats.InProgressTasks,
	)
	return stats, err
}

// itemDistribution groups the user's own items by status or priority. The
// column name is interpolated from a fixed whitelist, never from input.
func (s *DashboardService) itemDistribution(ctx context.Context, userID uuid.UUID, column string) (map[string]int, error) {
	if column != "status" && column != "priority" {
		return nil, fmt.Errorf("unsupported distribution column: %s", column)
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.`+column+`, COUNT(*)
		FROM project_items i
		JOIN projects p ON i.project_id = p.id
		WHERE p.owner_id = $1
		GROUP BY i.`+column+`
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		dist[key] = count
	}
	return dist, nil
}

func (s *DashboardService) recentProjects(ctx context.Context, userID uuid.UUID) ([]ProjectDigest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT p.id, p.title, p.description, p.visibility, p.updated_at,
		       COUNT(i.id), COUNT(i.id) FILTER (WHERE i.status = 'completed')
		FROM projects p
		LEFT JOIN project_items i ON i.project_id = p.id
		WHERE p.owner_id = $1 AND p.is_archived = FALSE
		GROUP BY p.id
		ORDER BY p.updated_at DESC
		LIMIT 5
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []ProjectDigest
	for rows.Next() {
		var d ProjectDigest
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.Visibility,
			&d.LastUpdated, &d.TotalItems, &d.CompletedItems); err != nil {
			return nil, err
		}
		d.PendingItems = d.TotalItems - d.CompletedItems
		if d.TotalItems > 0 {
			d.CompletionRate = float64(d.CompletedItems) / float64(d.TotalItems) * 100
		}
		digests = append(digests, d)
	}
	return digests, nil
}

func (s *DashboardService) upcomingTasks(ctx context.Context, userID uuid.UUID) ([]UpcomingTask, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT DISTINCT i.id, i.title, i.due_date, i.priority, i.status, p.id, p.title
		FROM project_items i
		JOIN projects p ON i.project_id = p.id
		LEFT JOIN project_access pa ON pa.project_id = p.id AND pa.user_id = $1
		WHERE (p.owner_id = $1 OR pa.id IS NOT NULL)
		  AND i.status IN ('pending', 'in_progress')
		  AND i.due_date >= NOW()
		ORDER BY i.due_date
		LIMIT 10
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []UpcomingTask
	for rows.Next() {
		var t UpcomingTask
		if err := rows.Scan(&t.ID, &t.Title, &t.DueDate, &t.Priority,
			&t.Status, &t.ProjectID, &t.ProjectTitle); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *DashboardService) sharedProjects(ctx context.Context, userID uuid.UUID) ([]SharedProjectDigest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT p.id, p.title, owner.email, grantor.email, pa.access_level, pa.created_at
		FROM project_access pa
		JOIN projects p ON pa.project_id = p.id
		JOIN users owner ON p.owner_id = owner.id
		JOIN users grantor ON pa.granted_by = grantor.id
		WHERE pa.user_id = $1
		ORDER BY pa.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []SharedProjectDigest
	for rows.Next() {
		var d SharedProjectDigest
		if err := rows.Scan(&d.ProjectID, &d.Title, &d.OwnerEmail,
			&d.GrantedByEmail, &d.AccessLevel, &d.SharedSince); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, nil
}
