package tasks

import (
	"context"
	"database/sql"
	"errors"
)

// SQLStore is the PostgreSQL-backed Store.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const taskColumns = `id, user_id, title, COALESCE(description, ''), completed, priority, due_date, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description,
		&t.Completed, &t.Priority, &t.DueDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (s *SQLStore) Create(ctx context.Context, userID int, title, description string) (Task, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (user_id, title, description, completed)
		VALUES ($1, $2, NULLIF($3, ''), FALSE)
		RETURNING `+taskColumns+`
	`, userID, title, description)
	return scanTask(row)
}

func (s *SQLStore) List(ctx context.Context, userID int, status string) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	switch status {
	case StatusPending:
		query += ` AND completed = FALSE`
	case StatusCompleted:
		query += ` AND completed = TRUE`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, userID, taskID int) (Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2
	`, taskID, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *SQLStore) SetCompleted(ctx context.Context, userID, taskID int) (Task, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE tasks SET completed = TRUE, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns+`
	`, taskID, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *SQLStore) Delete(ctx context.Context, userID, taskID int) (Task, error) {
	row := s.db.QueryRowContext(ctx, `
		DELETE FROM tasks WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns+`
	`, taskID, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *SQLStore) Update(ctx context.Context, userID, taskID int, title, description *string) (Task, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE tasks SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns+`
	`, taskID, userID, title, description)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}
