// Package local implements service.Service on a SQLite file, for use
// without a remote server.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"evotodo/internal/service"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT 'Medium',
	status      TEXT NOT NULL DEFAULT 'Incomplete',
	created_at  TEXT NOT NULL
);`

// Store is a SQLite-backed task service.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. Use ":memory:" in tests.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// One connection: a second one would see a different :memory: database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListTasks returns tasks in insertion order.
func (s *Store) ListTasks(ctx context.Context) ([]service.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, priority, status, created_at FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []service.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a task with a new UUID, priority Medium when unset and
// status Incomplete.
func (s *Store) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	t := service.Task{
		ID:          uuid.New().String(),
		Title:       nt.Title,
		Description: nt.Description,
		Priority:    nt.Priority,
		Status:      service.StatusIncomplete,
		CreatedAt:   s.now().UTC(),
	}
	if t.Priority == "" {
		t.Priority = service.DefaultPriority
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, priority, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Priority), string(t.Status), t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return service.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// UpdateTask applies fields to the stored task.
func (s *Store) UpdateTask(ctx context.Context, id string, fields service.TaskFields) (service.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return service.Task{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, title, description, priority, status, created_at FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return service.Task{}, fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return service.Task{}, err
	}

	t = fields.Apply(t)
	_, err = tx.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, priority = ?, status = ? WHERE id = ?`,
		t.Title, t.Description, string(t.Priority), string(t.Status), id)
	if err != nil {
		return service.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", id, service.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (service.Task, error) {
	var (
		t                          service.Task
		priority, status, created string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &priority, &status, &created); err != nil {
		return service.Task{}, err
	}
	t.Priority = service.Priority(priority)
	t.Status = service.Status(status)
	at, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return service.Task{}, fmt.Errorf("task %s: invalid created_at %q", t.ID, created)
	}
	t.CreatedAt = at
	return t, nil
}
