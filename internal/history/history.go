// Package history keeps a queryable log of finished captures in an embedded
// SQLite database. The Log implements the orchestrator's Recorder, so every
// attempt lands here whether it produced an artifact or an error.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raysh454/webshot/internal/capture"
	"github.com/raysh454/webshot/internal/logging"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrEntryNotFound reports a lookup for a capture id that was never recorded.
var ErrEntryNotFound = errors.New("capture not found in history")

// Entry is one row of the capture log.
type Entry struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	DelaySeconds int       `json:"delaySeconds"`
	FullPage     bool      `json:"fullPage"`
	Driver       string    `json:"driver"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	StoragePath  string    `json:"storagePath,omitempty"`
	HTMLPath     string    `json:"htmlPath,omitempty"`
	Title        string    `json:"title,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	DurationMS   int64     `json:"durationMs"`
}

// Log records finished captures and serves the query side.
type Log struct {
	db     *sql.DB
	logger logging.Logger
}

// Ensure Log satisfies the orchestrator's recording hook at compile time.
var _ capture.Recorder = (*Log)(nil)

// Open opens the history database at path, creating the file and schema on
// first use.
func Open(path string, logger logging.Logger) (*Log, error) {
	if logger == nil {
		return nil, errors.New("history: nil logger provided")
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	logger.Info("capture history opened", logging.Field{Key: "path", Value: path})
	return &Log{db: db, logger: logger}, nil
}

// applySchema sets pragmas and creates the tables if they do not exist.
func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA foreign_keys=ON",    // Enable foreign key constraints
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds on locked database
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Record stores one finished attempt. Implements capture.Recorder.
func (l *Log) Record(ctx context.Context, attempt capture.Attempt) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO captures
		  (id, url, width, height, delay_seconds, full_page, driver, status,
		   error, storage_path, html_path, title, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		attempt.ID,
		attempt.Request.URL,
		attempt.Request.Width,
		attempt.Request.Height,
		attempt.Request.DelaySeconds,
		boolToInt(attempt.Request.FullPage),
		attempt.Driver,
		string(attempt.Status),
		nullableString(attempt.Error),
		nullableString(attempt.StoragePath),
		nullableString(attempt.HTMLPath),
		nullableString(attempt.Title),
		attempt.StartedAt.Unix(),
		attempt.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert capture row: %w", err)
	}

	l.logger.Debug("capture recorded",
		logging.Field{Key: "capture_id", Value: attempt.ID},
		logging.Field{Key: "status", Value: string(attempt.Status)})
	return nil
}

// Get returns the entry for a capture id, or ErrEntryNotFound.
func (l *Log) Get(ctx context.Context, id string) (*Entry, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, url, width, height, delay_seconds, full_page, driver, status,
		       error, storage_path, html_path, title, started_at, duration_ms
		FROM captures
		WHERE id = ?
	`, id)

	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query capture %s: %w", id, err)
	}
	return e, nil
}

// List returns recent captures, newest first. A non-positive limit falls back
// to 20.
func (l *Log) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, url, width, height, delay_seconds, full_page, driver, status,
		       error, storage_path, html_path, title, started_at, duration_ms
		FROM captures
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capture row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating captures: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (l *Log) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

func scanEntry(scan func(dest ...any) error) (*Entry, error) {
	var (
		e                             Entry
		fullPage                      int
		errMsg, storagePath, htmlPath sql.NullString
		title                         sql.NullString
		startedAt, durationMS         int64
	)
	if err := scan(
		&e.ID, &e.URL, &e.Width, &e.Height, &e.DelaySeconds, &fullPage,
		&e.Driver, &e.Status, &errMsg, &storagePath, &htmlPath, &title,
		&startedAt, &durationMS,
	); err != nil {
		return nil, err
	}
	e.FullPage = fullPage != 0
	e.Error = errMsg.String
	e.StoragePath = storagePath.String
	e.HTMLPath = htmlPath.String
	e.Title = title.String
	e.StartedAt = time.Unix(startedAt, 0)
	e.DurationMS = durationMS
	return &e, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
