package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"pixelart/internal/logging"
)

// Default timeout for ledger operations
const defaultTimeout = 5 * time.Second

// Run is one recorded conversion.
type Run struct {
	ID         int64
	InputPath  string
	OutputPath string
	Kind       string
	Frames     int
	Duration   time.Duration
	Status     string
	Error      string
	CreatedAt  time.Time
}

// Ledger manages the run-history database.
type Ledger struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at dbPath. The parent
// directory must already exist and be writable.
func Open(ctx context.Context, dbPath string) (*Ledger, error) {
	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close ledger after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to ledger database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close ledger after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	logging.Debug("Ledger initialized at %s", dbPath)
	return l, nil
}

func (l *Ledger) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		kind TEXT NOT NULL,
		frames INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`

	_, err := l.db.ExecContext(ctx, schema)
	return err
}

// RecordRun appends a run to the history.
func (l *Ledger) RecordRun(ctx context.Context, run Run) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (input_path, output_path, kind, frames, duration_ms, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.InputPath, run.OutputPath, run.Kind, run.Frames,
		run.Duration.Milliseconds(), run.Status, run.Error,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (l *Ledger) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, input_path, output_path, kind, frames, duration_ms, status, error, created_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMS, createdAt int64
		if err := rows.Scan(&r.ID, &r.InputPath, &r.OutputPath, &r.Kind,
			&r.Frames, &durationMS, &r.Status, &r.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}
