// Package session persists the question/answer history of the assistant so
// past conversations survive process restarts and can be exported.
package session

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// HistoryFileName is the history database file inside the data directory.
const HistoryFileName = "history.db"

// Entry is one question/answer exchange.
type Entry struct {
	ID        int64
	Question  string
	Answer    string
	Provider  string
	Model     string
	CreatedAt time.Time
}

// History stores exchanges in SQLite.
type History struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL,
		provider   TEXT NOT NULL,
		model      TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_provider ON history(provider);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &History{db: db}, nil
}

// Append records an exchange.
func (h *History) Append(ctx context.Context, e Entry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO history (question, answer, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.Question, e.Answer, e.Provider, e.Model, created.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, question, answer, provider, model, created_at
		FROM history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// All returns every entry, oldest first.
func (h *History) All(ctx context.Context) ([]Entry, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, question, answer, provider, model, created_at
		FROM history ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var model sql.NullString
		var created string
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Provider, &model, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Model = model.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored exchanges.
func (h *History) Count(ctx context.Context) (int, error) {
	var count int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// ExportCSV writes the full history as CSV, oldest first.
func (h *History) ExportCSV(ctx context.Context, w io.Writer) error {
	entries, err := h.All(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "created_at", "provider", "model", "question", "answer"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Format(time.RFC3339),
			e.Provider,
			e.Model,
			e.Question,
			e.Answer,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
