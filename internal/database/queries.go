// internal/database/queries.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Error definitions
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Run statuses
const (
	RunStatusOK      = "ok"
	RunStatusPartial = "partial"
	RunStatusFailed  = "failed"
)

// Run is one ingestion attempt.
type Run struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	SermonCount int       `json:"sermonCount"`
	LiveCount   int       `json:"liveCount"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// Duration is how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

const runColumns = "id, started_at, finished_at, sermon_count, live_count, status, error"

// RecordRun stores a finished run.
func (db *DB) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run ID is required", ErrInvalidInput)
	}
	switch run.Status {
	case RunStatusOK, RunStatusPartial, RunStatusFailed:
	default:
		return fmt.Errorf("%w: unknown run status %q", ErrInvalidInput, run.Status)
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO ingest_runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.SermonCount, run.LiveCount, run.Status, run.Error,
	)
	if err != nil {
		return fmt.Errorf("error recording run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM ingest_runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastSuccessfulRun returns the newest run that produced a file from real
// feed data. Partial runs count.
func (db *DB) LastSuccessfulRun(ctx context.Context) (Run, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM ingest_runs WHERE status != ? ORDER BY started_at DESC LIMIT 1",
		RunStatusFailed,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("error querying last successful run: %w", err)
	}
	return run, nil
}

// PruneRuns deletes all but the newest keep runs and reports how many were
// removed.
func (db *DB) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("%w: keep must not be negative", ErrInvalidInput)
	}
	result, err := db.ExecContext(ctx, `
		DELETE FROM ingest_runs WHERE id NOT IN (
			SELECT id FROM ingest_runs ORDER BY started_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("error pruning runs: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
		&run.SermonCount, &run.LiveCount, &run.Status, &run.Error)
	return run, err
}

// GetSetting retrieves a setting value
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?",
		key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting stores a setting value, replacing any existing one
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: setting key is required", ErrInvalidInput)
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}
