package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/askar/teamboard/internal/models"
	"github.com/askar/teamboard/internal/store"
)

const taskColumns = `task_id, team_id, user_id, title, COALESCE(description, ''), status,
	priority, COALESCE(assignee_name, ''), color, due_date, created_at, updated_at`

func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	now := time.Now().UTC().Unix()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (team_id, user_id, title, description, status, priority,
		 assignee_name, color, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TeamID, t.UserID, t.Title, t.Description, t.Status, t.Priority,
		t.AssigneeName, t.Color, t.DueDate, now, now,
	)
	if err != nil {
		return err
	}
	t.ID, err = result.LastInsertId()
	t.CreatedAt = now
	t.UpdatedAt = now
	return err
}

func (s *Store) TaskByID(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	err := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE task_id = ?`, id).
		Scan(&t.ID, &t.TeamID, &t.UserID, &t.Title, &t.Description, &t.Status,
			&t.Priority, &t.AssigneeName, &t.Color, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListTasks(ctx context.Context, f store.TaskFilter) ([]models.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []interface{}{}
	if f.TeamID != nil {
		q += ` AND team_id = ?`
		args = append(args, *f.TeamID)
	}
	if f.UserID != nil {
		q += ` AND user_id = ?`
		args = append(args, *f.UserID)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.TeamID, &t.UserID, &t.Title, &t.Description, &t.Status,
			&t.Priority, &t.AssigneeName, &t.Color, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(ctx context.Context, t *models.Task) error {
	now := time.Now().UTC().Unix()
	// RowsAffected is 0 for a no-op update on MySQL, so existence is checked
	// by the caller via TaskByID, not here.
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
		 assignee_name = ?, color = ?, due_date = ?, updated_at = ?
		 WHERE task_id = ?`,
		t.Title, t.Description, t.Status, t.Priority,
		t.AssigneeName, t.Color, t.DueDate, now, t.ID,
	)
	if err != nil {
		return err
	}
	t.UpdatedAt = now
	return nil
}

func (s *Store) UpdateTaskStatus(ctx context.Context, id int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE task_id = ?`,
		status, time.Now().UTC().Unix(), id,
	)
	return err
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
