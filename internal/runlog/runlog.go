// Package runlog keeps a history of sync runs in SQLite.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lepinkainen/shelfsync/internal/reconcile"
	_ "modernc.org/sqlite"
)

// DefaultLimit is the number of runs List returns when limit is not positive
const DefaultLimit = 10

// fixed width so that text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is a summary of one recorded sync run
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Manifest     string
	DryRun       bool
	TotalLocal   int
	Added        int
	Removed      int
	Unchanged    int
	Failed       int
	BlobFailures int
	Invalid      int
}

// Duration returns how long the run took
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FromResult summarises a reconcile result
func FromResult(res *reconcile.Result) Run {
	return Run{
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		Manifest:     res.Manifest,
		DryRun:       res.DryRun,
		TotalLocal:   res.TotalLocal,
		Added:        len(res.Added),
		Removed:      len(res.Removed),
		Unchanged:    res.Unchanged,
		Failed:       len(res.Failures),
		BlobFailures: len(res.BlobFailures),
		Invalid:      len(res.Invalid),
	}
}

// Log is the run history database
type Log struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens (creating if needed) the history database at dbPath
func Open(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to history database: %w", err), closeErr)
	}

	if _, err := db.Exec(RunsSchema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create runs table: %w", err), closeErr)
	}

	return &Log{db: db, path: dbPath}, nil
}

// Path returns the database file path
func (l *Log) Path() string {
	return l.path
}

// Record stores res and returns the generated run ID
func (l *Log) Record(ctx context.Context, res *reconcile.Result) (string, error) {
	run := FromResult(res)
	run.ID = uuid.NewString()

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, manifest, dry_run, total_local,
			added, removed, unchanged, failed, blob_failures, invalid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Manifest,
		run.DryRun,
		run.TotalLocal,
		run.Added,
		run.Removed,
		run.Unchanged,
		run.Failed,
		run.BlobFailures,
		run.Invalid,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}

// List returns up to limit runs, newest first
func (l *Log) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, manifest, dry_run, total_local,
			added, removed, unchanged, failed, blob_failures, invalid
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(
			&run.ID, &started, &finished, &run.Manifest, &run.DryRun, &run.TotalLocal,
			&run.Added, &run.Removed, &run.Unchanged, &run.Failed, &run.BlobFailures, &run.Invalid,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("run %s: bad finished_at: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// Close closes the database connection
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
