// Package audit keeps an append-only history of every step result in a
// local SQLite database.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry records a single step outcome.
type Entry struct {
	Time     time.Time
	RunID    string
	Command  string // "run" | "check"
	Step     string
	Index    int
	Total    int
	Outcome  string // "ok" | "skipped" | "failed"
	Optional bool
	Message  string
	Duration time.Duration
}

// Query filters Read.
type Query struct {
	Step  string // exact step name; empty matches all
	RunID string
	Limit int // last Limit entries; <= 0 returns all
}

// Store is the history database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the history database location under home.
func DefaultPath(home string) string {
	return filepath.Join(home, ".local", "share", "provision", "history.db")
}

// NewRunID returns a fresh identifier grouping the entries of one run.
func NewRunID() string {
	return uuid.NewString()
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set history db busy timeout: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS step_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time TEXT NOT NULL,
	run_id TEXT NOT NULL,
	command TEXT NOT NULL,
	step TEXT NOT NULL,
	step_index INTEGER NOT NULL,
	total INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	optional INTEGER NOT NULL DEFAULT 0,
	message TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends e. A zero Time is stamped with the current UTC time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	optional := 0
	if e.Optional {
		optional = 1
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO step_results (time, run_id, command, step, step_index, total, outcome, optional, message, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UTC().Format(time.RFC3339Nano), e.RunID, e.Command, e.Step, e.Index, e.Total,
		e.Outcome, optional, e.Message, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record step %q: %w", e.Step, err)
	}
	return nil
}

// Read returns matching entries, oldest first.
func (s *Store) Read(ctx context.Context, q Query) ([]Entry, error) {
	query := `SELECT time, run_id, command, step, step_index, total, outcome, optional, message, duration_ms
FROM step_results WHERE (? = '' OR step = ?) AND (? = '' OR run_id = ?) ORDER BY id DESC`
	args := []any{q.Step, q.Step, q.RunID, q.RunID}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			ts         string
			optional   int
			durationMS int64
		)
		if err := rows.Scan(&ts, &e.RunID, &e.Command, &e.Step, &e.Index, &e.Total,
			&e.Outcome, &optional, &e.Message, &durationMS); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Time, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse history time %q: %w", ts, err)
		}
		e.Optional = optional != 0
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
