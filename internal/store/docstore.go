package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// DocStore persists chunk content and metadata in SQLite, one database per
// collection. It also holds the collection state table (embedding model,
// dimensions, corpus-ingested marker).
type DocStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenDocStore opens (or creates) the document database at path.
// Pass ":memory:" for an ephemeral store used in degraded mode.
func OpenDocStore(path string) (*DocStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	// WAL must be set via PRAGMA statements; DSN params may be ignored by
	// modernc.org/sqlite.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	s := &DocStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *DocStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id          TEXT PRIMARY KEY,
		content     TEXT NOT NULL,
		source      TEXT NOT NULL,
		title       TEXT,
		category    TEXT,
		dialogue    TEXT,
		book        TEXT,
		chunk_id    INTEGER,
		concepts    TEXT,
		complexity  REAL,
		provider    TEXT,
		ingested_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);

	CREATE TABLE IF NOT EXISTS collection_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveDocuments inserts documents in a single transaction.
// An existing ID is replaced.
func (s *DocStore) SaveDocuments(ctx context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO documents
		(id, content, source, title, category, dialogue, book, chunk_id, concepts, complexity, provider, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, doc := range docs {
		m := doc.Meta
		if _, err := stmt.ExecContext(ctx,
			doc.ID, doc.Content, m.Source, m.Title, m.Category, m.Dialogue,
			m.Book, m.ChunkID, m.Concepts, m.Complexity, m.Provider, m.IngestedAt,
		); err != nil {
			return fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
		}
	}

	return tx.Commit()
}

// GetDocuments retrieves documents by ID, preserving the input order.
// Missing IDs are skipped silently.
func (s *DocStore) GetDocuments(ctx context.Context, ids []string) ([]*Document, error) {
	if len(ids) == 0 {
		return []*Document{}, nil
	}

	byID := make(map[string]*Document, len(ids))

	stmt, err := s.db.PrepareContext(ctx, `
		SELECT id, content, source, title, category, dialogue, book, chunk_id, concepts, complexity, provider, ingested_at
		FROM documents WHERE id = ?`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		doc, err := scanDocument(stmt.QueryRowContext(ctx, id))
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, fmt.Errorf("failed to query document %s: %w", id, err)
		}
		byID[id] = doc
	}

	docs := make([]*Document, 0, len(byID))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

func scanDocument(row *sql.Row) (*Document, error) {
	var doc Document
	var title, category, dialogue, book, concepts, provider, ingestedAt sql.NullString
	var chunkID sql.NullInt64
	var complexity sql.NullFloat64

	err := row.Scan(&doc.ID, &doc.Content, &doc.Meta.Source, &title, &category,
		&dialogue, &book, &chunkID, &concepts, &complexity, &provider, &ingestedAt)
	if err != nil {
		return nil, err
	}

	doc.Meta.Title = title.String
	doc.Meta.Category = category.String
	doc.Meta.Dialogue = dialogue.String
	doc.Meta.Book = book.String
	doc.Meta.ChunkID = int(chunkID.Int64)
	doc.Meta.Concepts = concepts.String
	doc.Meta.Complexity = complexity.Float64
	doc.Meta.Provider = provider.String
	doc.Meta.IngestedAt = ingestedAt.String

	return &doc, nil
}

// HasSource reports whether any document with the given source exists.
// Bounded by the source index; no full scan.
func (s *DocStore) HasSource(ctx context.Context, source string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE source = ? LIMIT 1`, source).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check source presence: %w", err)
	}
	return true, nil
}

// ListMetadata returns metadata for up to limit entries.
// Kept as a compatibility fallback for presence detection on collections
// created before the corpus-ingested state marker existed.
func (s *DocStore) ListMetadata(ctx context.Context, limit int) ([]Metadata, error) {
	if limit <= 0 {
		return []Metadata{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, title, category, dialogue, book, chunk_id, concepts, complexity, provider, ingested_at
		FROM documents LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metas []Metadata
	for rows.Next() {
		var m Metadata
		var title, category, dialogue, book, concepts, provider, ingestedAt sql.NullString
		var chunkID sql.NullInt64
		var complexity sql.NullFloat64

		if err := rows.Scan(&m.Source, &title, &category, &dialogue, &book,
			&chunkID, &concepts, &complexity, &provider, &ingestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		m.Title = title.String
		m.Category = category.String
		m.Dialogue = dialogue.String
		m.Book = book.String
		m.ChunkID = int(chunkID.Int64)
		m.Concepts = concepts.String
		m.Complexity = complexity.Float64
		m.Provider = provider.String
		m.IngestedAt = ingestedAt.String

		metas = append(metas, m)
	}

	return metas, rows.Err()
}

// Count returns the number of stored documents.
func (s *DocStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// GetState reads a collection state value. Returns "" when the key is absent.
func (s *DocStore) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM collection_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get state %q: %w", key, err)
	}
	return value, nil
}

// SetState writes a collection state value.
func (s *DocStore) SetState(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO collection_state (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set state %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *DocStore) Close() error {
	return s.db.Close()
}
