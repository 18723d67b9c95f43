// Package jobs persists summarization jobs and their results.
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "error"
)

// ErrNotFound is returned for an unknown request id.
var ErrNotFound = errors.New("job not found")

// Job is one summarization request and, once finished, its output.
type Job struct {
	ID        string
	ArxivURL  string
	Status    Status
	HTML      string
	Markdown  string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SQLiteStore keeps jobs in a single SQLite table.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens (or creates) the job database at path. Use ":memory:" for an
// in-memory database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id         TEXT PRIMARY KEY,
		arxiv_url  TEXT NOT NULL,
		status     TEXT NOT NULL,
		html       TEXT NOT NULL DEFAULT '',
		markdown   TEXT NOT NULL DEFAULT '',
		error      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Create inserts a pending job.
func (s *SQLiteStore) Create(ctx context.Context, id, arxivURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO jobs (id, arxiv_url, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, arxivURL, string(StatusPending), now, now,
	)
	if err != nil {
		return fmt.Errorf("create job %q: %w", id, err)
	}
	return nil
}

// Complete stores the rendered result of a job.
func (s *SQLiteStore) Complete(ctx context.Context, id, html, markdown string) error {
	return s.finish(ctx, id, StatusDone, html, markdown, "")
}

// Fail records why a job could not be finished.
func (s *SQLiteStore) Fail(ctx context.Context, id string, cause error) error {
	return s.finish(ctx, id, StatusFailed, "", "", cause.Error())
}

func (s *SQLiteStore) finish(ctx context.Context, id string, status Status, html, markdown, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, html = ?, markdown = ?, error = ?, updated_at = ? WHERE id = ?",
		string(status), html, markdown, errMsg, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("update job %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns a job by id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var job Job
	var status, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, arxiv_url, status, html, markdown, error, created_at, updated_at FROM jobs WHERE id = ?",
		id,
	).Scan(&job.ID, &job.ArxivURL, &status, &job.HTML, &job.Markdown, &job.Error, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %q: %w", id, err)
	}

	job.Status = Status(status)
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &job, nil
}

// Pending returns unfinished jobs, oldest first.
func (s *SQLiteStore) Pending(ctx context.Context) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, arxiv_url FROM jobs WHERE status = ? ORDER BY created_at, rowid",
		string(StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}
	defer rows.Close()

	var pending []*Job
	for rows.Next() {
		job := &Job{Status: StatusPending}
		if err := rows.Scan(&job.ID, &job.ArxivURL); err != nil {
			return nil, fmt.Errorf("scan pending job: %w", err)
		}
		pending = append(pending, job)
	}
	return pending, rows.Err()
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
