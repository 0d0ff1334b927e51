package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/repository"
)

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed implementation of ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if project == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO projects (title, admin_id, total_hours, total_cost, status)
	VALUES ($1, $2, 0, 0, $3)
	RETURNING id, total_hours, total_cost, created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		project.Title,
		project.AdminID,
		domain.StatusInProgress,
	).Scan(&project.ID, &project.TotalHours, &project.TotalCost, &project.CreatedAt); err != nil {
		return nil, err
	}

	project.Status = domain.StatusInProgress
	return project, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	const query = `
	SELECT id, title, admin_id, total_hours, total_cost, status, created_at
	FROM projects
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Title,
		&project.AdminID,
		&project.TotalHours,
		&project.TotalCost,
		&project.Status,
		&project.CreatedAt,
	); err != nil {
		return nil, notFoundOr(err, domain.ErrProjectNotFound)
	}
	return &project, nil
}

// projectSummaryQuery recomputes the task aggregates on every read so
// the response never reflects stale stored totals. Listings read newest
// first.
const projectSummaryQuery = `
	SELECT p.id, p.title, p.admin_id, u.email, p.status,
	       COUNT(t.id) AS total_tasks,
	       COALESCE(SUM(t.hours_worked), 0) AS total_hours,
	       COALESCE(SUM(t.total_cost), 0) AS total_cost,
	       COUNT(t.id) FILTER (WHERE t.status <> 'Completed') AS in_progress_tasks,
	       COUNT(t.id) FILTER (WHERE t.status = 'Completed') AS completed_tasks
	FROM projects p
	INNER JOIN users u ON p.admin_id = u.id
	LEFT JOIN tasks t ON t.project_id = p.id
	WHERE ($1 = 0 OR p.admin_id = $1)
	  AND ($2 = '' OR p.status <> $2)
	GROUP BY p.id, p.title, p.admin_id, u.email, p.status
	ORDER BY p.id DESC
	`

func (r *projectRepository) ListSummaries(ctx context.Context, filter repository.ProjectFilter) ([]domain.ProjectSummary, error) {
	rows, err := r.pool.Query(ctx, projectSummaryQuery, filter.AdminID, string(filter.ExcludeStatus))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.ProjectSummary
	for rows.Next() {
		var s domain.ProjectSummary
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.AdminID,
			&s.AdminEmail,
			&s.Status,
			&s.TotalTasks,
			&s.TotalHours,
			&s.TotalCost,
			&s.InProgressTasks,
			&s.CompletedTasks,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *projectRepository) ListIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT id FROM projects ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	const query = `UPDATE projects SET status = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// SyncTotals rewrites the stored totals from the current task set. The
// read and the write run in one transaction so a concurrent task
// mutation cannot interleave a partial update.
func (r *projectRepository) SyncTotals(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const aggregate = `
	SELECT COALESCE(SUM(hours_worked), 0), COALESCE(SUM(total_cost), 0)
	FROM tasks
	WHERE project_id = $1
	`
	var (
		hours float64
		cost  decimal.Decimal
	)
	if err := tx.QueryRow(ctx, aggregate, id).Scan(&hours, &cost); err != nil {
		return err
	}

	const update = `UPDATE projects SET total_hours = $2, total_cost = $3 WHERE id = $1`
	tag, err := tx.Exec(ctx, update, id, hours, cost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}

	return tx.Commit(ctx)
}
