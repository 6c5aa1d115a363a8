package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/studentplanner/planner/internal/model"
)

const taskColumns = `id, user_id, title, description, category, priority, status, due_date, created_at, updated_at`

// TaskRepo persists tasks.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func scanTask(s rowScanner) (*model.Task, error) {
	var (
		t    model.Task
		desc sql.NullString
		due  sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &desc, &t.Category, &t.Priority, &t.Status, &due, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Description = nullString(desc)
	t.DueDate = dateString(due)
	t.Normalize()
	return &t, nil
}

func (r *TaskRepo) query(ctx context.Context, q string, args ...any) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListByOwner returns the owner's tasks: dated tasks first by due date,
// then by priority from high to low, then newest first.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks
               WHERE user_id = ?
               ORDER BY due_date IS NULL, due_date ASC,
                        CASE priority WHEN 'wysoki' THEN 0 WHEN 'sredni' THEN 1 ELSE 2 END,
                        created_at DESC, id DESC`
	return r.query(ctx, q, ownerID)
}

// GetByIDAndOwner returns the task only if it belongs to ownerID.
func (r *TaskRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`
	t, err := scanTask(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Create inserts t and reloads it so timestamps and defaults are filled in.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	const q = `INSERT INTO tasks (user_id, title, description, category, priority, status, due_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	t.Normalize()
	res, err := r.db.ExecContext(ctx, q, t.UserID, t.Title, nullable(t.Description), t.Category, t.Priority, t.Status, nullable(t.DueDate))
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByIDAndOwner(ctx, uint64(id), t.UserID)
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// Update writes every mutable column of t, scoped to its owner.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	const q = `UPDATE tasks
               SET title = ?, description = ?, category = ?, priority = ?, status = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND user_id = ?`
	t.Normalize()
	_, err := r.db.ExecContext(ctx, q, t.Title, nullable(t.Description), t.Category, t.Priority, t.Status, nullable(t.DueDate), t.ID, t.UserID)
	return err
}

// UpdateStatus sets only the status column.
func (r *TaskRepo) UpdateStatus(ctx context.Context, id, ownerID uint64, status string) error {
	const q = `UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, q, status, id, ownerID)
	return err
}

// DeleteByIDAndOwner removes the task, or returns ErrNotFound when the owner
// has no such task.
func (r *TaskRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DueOn returns the owner's tasks due on date, open ones first.
func (r *TaskRepo) DueOn(ctx context.Context, ownerID uint64, date string) ([]*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks
               WHERE user_id = ? AND due_date = ?
               ORDER BY status DESC, CASE priority WHEN 'wysoki' THEN 0 WHEN 'sredni' THEN 1 ELSE 2 END, id DESC`
	return r.query(ctx, q, ownerID, date)
}

// Overdue returns open tasks due before today, oldest first.
func (r *TaskRepo) Overdue(ctx context.Context, ownerID uint64, today string) ([]*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks
               WHERE user_id = ? AND due_date < ? AND status = 'todo'
               ORDER BY due_date ASC, id ASC`
	return r.query(ctx, q, ownerID, today)
}

// Stats counts the owner's tasks.  today is YYYY-MM-DD in the app timezone.
func (r *TaskRepo) Stats(ctx context.Context, ownerID uint64, today string) (model.TaskStats, error) {
	const q = `SELECT
                 COUNT(*),
                 COALESCE(SUM(CASE WHEN status = 'todo' THEN 1 ELSE 0 END), 0),
                 COALESCE(SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END), 0),
                 COALESCE(SUM(CASE WHEN due_date = ? THEN 1 ELSE 0 END), 0),
                 COALESCE(SUM(CASE WHEN due_date < ? AND status = 'todo' THEN 1 ELSE 0 END), 0)
               FROM tasks WHERE user_id = ?`
	var st model.TaskStats
	err := r.db.QueryRowContext(ctx, q, today, today, ownerID).Scan(&st.Total, &st.Todo, &st.Done, &st.Today, &st.Overdue)
	return st, err
}

// SearchByTitle returns the owner's tasks whose title contains term,
// ignoring case.
func (r *TaskRepo) SearchByTitle(ctx context.Context, ownerID uint64, term string) ([]*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks
               WHERE user_id = ? AND LOWER(title) LIKE ? ESCAPE '!'
               ORDER BY created_at DESC, id DESC`
	return r.query(ctx, q, ownerID, likePattern(term))
}
