package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/taskledger/backend/domain"
	"github.com/taskledger/backend/repository"
)

const taskColumns = `id, title, description, project_id, dependency_task_id,
	start_date, end_date, created_by_user_id, assigned_to_user_id,
	completed_by_user_id, completed_date_time, status, hourly_rate,
	hours_worked, total_cost`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (title, description, project_id, dependency_task_id,
		start_date, end_date, created_by_user_id, assigned_to_user_id,
		status, hourly_rate, hours_worked, total_cost)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, 0)
	RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.ProjectID,
		task.DependencyTaskID,
		task.StartDate,
		task.EndDate,
		task.CreatedByUserID,
		task.AssignedToUserID,
		domain.StatusInProgress,
		task.HourlyRate,
	).Scan(&task.ID); err != nil {
		return nil, err
	}

	task.Status = domain.StatusInProgress
	task.HoursWorked = 0
	task.TotalCost = decimal.Zero
	return task, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

// taskListQuery resolves the dependency through a LEFT JOIN so a
// deleted target renders as absent instead of failing the whole
// listing. Listings read newest first.
const taskListQuery = `
	SELECT t.id, t.title, t.description, t.project_id, t.dependency_task_id,
	       t.start_date, t.end_date, t.created_by_user_id, t.assigned_to_user_id,
	       t.completed_by_user_id, t.completed_date_time, t.status, t.hourly_rate,
	       t.hours_worked, t.total_cost,
	       p.title, u.email, uc.email,
	       dep.id, dep.title, dep.status
	FROM tasks t
	INNER JOIN projects p ON t.project_id = p.id
	INNER JOIN users u ON t.assigned_to_user_id = u.id
	LEFT JOIN users uc ON t.completed_by_user_id = uc.id
	LEFT JOIN tasks dep ON t.dependency_task_id = dep.id
	WHERE ($1 = 0 OR t.project_id = $1)
	  AND ($2 = 0 OR t.assigned_to_user_id = $2)
	ORDER BY t.id DESC
	`

func (r *taskRepository) ListDetails(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskDetail, error) {
	rows, err := r.pool.Query(ctx, taskListQuery, filter.ProjectID, filter.AssignedTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.TaskDetail
	for rows.Next() {
		var (
			d         domain.TaskDetail
			depID     *int64
			depTitle  *string
			depStatus *string
		)
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.Description,
			&d.ProjectID,
			&d.DependencyTaskID,
			&d.StartDate,
			&d.EndDate,
			&d.CreatedByUserID,
			&d.AssignedToUserID,
			&d.CompletedBy,
			&d.CompletedAt,
			&d.Status,
			&d.HourlyRate,
			&d.HoursWorked,
			&d.TotalCost,
			&d.ProjectTitle,
			&d.AssigneeEmail,
			&d.CompletedByEmail,
			&depID,
			&depTitle,
			&depStatus,
		); err != nil {
			return nil, err
		}
		d.Dependency = dependencyRef(depID, depTitle, depStatus)
		details = append(details, d)
	}
	return details, rows.Err()
}

// AddHours locks the row, accumulates the delta onto the stored hours
// and rewrites total_cost from rate and the new hours, all in one
// transaction.
func (r *taskRepository) AddHours(ctx context.Context, id int64, delta float64, rate decimal.Decimal) (*domain.Task, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const lock = `SELECT hours_worked, status FROM tasks WHERE id = $1 FOR UPDATE`
	var (
		hours  float64
		status domain.Status
	)
	if err := tx.QueryRow(ctx, lock, id).Scan(&hours, &status); err != nil {
		return nil, notFoundOr(err, domain.ErrTaskNotFound)
	}
	if status == domain.StatusCompleted {
		return nil, domain.NewError(domain.ErrCodeConflict, "task already completed")
	}

	newHours := hours + delta
	newCost := domain.Cost(rate, newHours)

	const update = `
	UPDATE tasks
	SET hours_worked = $2, hourly_rate = $3, total_cost = $4
	WHERE id = $1
	RETURNING ` + taskColumns + `
	`
	task, err := scanTask(tx.QueryRow(ctx, update, id, newHours, rate, newCost))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks the task done. A missing task surfaces as NotFound
// rather than a silent no-op; a second completion surfaces as Conflict.
func (r *taskRepository) Complete(ctx context.Context, id int64, completedBy int64, at time.Time) (*domain.Task, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const lock = `SELECT status FROM tasks WHERE id = $1 FOR UPDATE`
	var status domain.Status
	if err := tx.QueryRow(ctx, lock, id).Scan(&status); err != nil {
		return nil, notFoundOr(err, domain.ErrTaskNotFound)
	}
	if status == domain.StatusCompleted {
		return nil, domain.NewError(domain.ErrCodeConflict, "task already completed")
	}

	const update = `
	UPDATE tasks
	SET status = $2, completed_by_user_id = $3, completed_date_time = $4
	WHERE id = $1
	RETURNING ` + taskColumns + `
	`
	task, err := scanTask(tx.QueryRow(ctx, update, id, domain.StatusCompleted, completedBy, at))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// dependencyRef assembles the dependency view columns. The LEFT JOIN
// yields all-NULL columns when the target was deleted; the view then
// carries no dependency even though the stored id survives on the row.
func dependencyRef(id *int64, title *string, status *string) *domain.TaskRef {
	if id == nil || title == nil || status == nil {
		return nil
	}
	return &domain.TaskRef{
		ID:     *id,
		Title:  *title,
		Status: domain.Status(*status),
	}
}

func scanTask(row pgRow) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.ProjectID,
		&task.DependencyTaskID,
		&task.StartDate,
		&task.EndDate,
		&task.CreatedByUserID,
		&task.AssignedToUserID,
		&task.CompletedBy,
		&task.CompletedAt,
		&task.Status,
		&task.HourlyRate,
		&task.HoursWorked,
		&task.TotalCost,
	); err != nil {
		return nil, notFoundOr(err, domain.ErrTaskNotFound)
	}
	return &task, nil
}
