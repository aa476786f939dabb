package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/todo-api/internal/model"
)

const taskColumns = "id, user_id, title, description, completed, created_at, updated_at"

// TaskRepo encapsulates task queries. Every method takes the owner id and
// filters on it, so a task owned by someone else looks exactly like a
// missing one.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo returns a TaskRepo bound to the given database.
func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

func scanTask(s rowScanner) (*model.Task, error) {
	var t model.Task
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a task and reloads it so timestamps are populated.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks (user_id, title, description, completed) VALUES (?,?,?,?)",
		t.UserID, t.Title, t.Description, t.Completed)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task id: %w", err)
	}
	return r.GetByIDAndUser(ctx, uint64(id), t.UserID)
}

// ListByUser returns the user's tasks, newest first.
func (r *TaskRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id=? ORDER BY id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// GetByIDAndUser fetches one task owned by userID.
func (r *TaskRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id=? AND user_id=?", id, userID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Update writes title, description and completed for a task owned by
// t.UserID and returns the reloaded row.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) (*model.Task, error) {
	if _, err := r.GetByIDAndUser(ctx, t.ID, t.UserID); err != nil {
		return nil, err
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, completed=? WHERE id=? AND user_id=?",
		t.Title, t.Description, t.Completed, t.ID, t.UserID)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return r.GetByIDAndUser(ctx, t.ID, t.UserID)
}

// DeleteByIDAndUser removes a task owned by userID.
func (r *TaskRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}
