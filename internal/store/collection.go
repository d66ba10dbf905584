package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/elenchus/platon/internal/embed"
)

// File names inside a collection directory.
const (
	VectorFileName = "vectors.hnsw"
	DocsFileName   = "docs.db"
)

// Embedding batch size for merges. Remote APIs reject oversized batches.
const embedBatchSize = 32

// Collection is one provider's persisted index: an HNSW vector index plus a
// SQLite document store, bound to the embedder the index was built with.
// Two providers never share a collection.
type Collection struct {
	id        string
	dir       string // empty for in-memory collections
	embedder  embed.Embedder
	vectors   *VectorIndex
	docs      *DocStore
	persisted bool
}

// Exists reports whether a persisted collection is present at dir.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, VectorFileName))
	return err == nil && !info.IsDir()
}

// Open loads an existing persisted collection from dir.
// The embedder's dimensions must match the persisted index; a mismatch means
// the caller is about to mix embedding spaces and is rejected.
func Open(ctx context.Context, dir string, embedder embed.Embedder, id string) (*Collection, error) {
	vectorPath := filepath.Join(dir, VectorFileName)

	dims, err := ReadVectorIndexDimensions(vectorPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted dimensions: %w", err)
	}
	if dims != 0 && dims != embedder.Dimensions() {
		return nil, ErrDimensionMismatch{Expected: dims, Got: embedder.Dimensions()}
	}

	vectors, err := NewVectorIndex(DefaultVectorConfig(embedder.Dimensions()))
	if err != nil {
		return nil, err
	}
	if err := vectors.Load(vectorPath); err != nil {
		return nil, fmt.Errorf("failed to load vector index: %w", err)
	}

	docs, err := OpenDocStore(filepath.Join(dir, DocsFileName))
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}

	return &Collection{
		id:        id,
		dir:       dir,
		embedder:  embedder,
		vectors:   vectors,
		docs:      docs,
		persisted: true,
	}, nil
}

// Create builds a new persisted collection at dir from the given documents.
func Create(ctx context.Context, documents []*Document, embedder embed.Embedder, dir string, id string) (*Collection, error) {
	vectors, err := NewVectorIndex(DefaultVectorConfig(embedder.Dimensions()))
	if err != nil {
		return nil, err
	}

	docs, err := OpenDocStore(filepath.Join(dir, DocsFileName))
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}

	c := &Collection{
		id:        id,
		dir:       dir,
		embedder:  embedder,
		vectors:   vectors,
		docs:      docs,
		persisted: true,
	}

	if err := c.Add(ctx, documents); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// NewMemory builds an ephemeral, non-persisted collection from the given
// documents. Used as the degraded-mode fallback when durable persistence
// fails: the caller still gets a usable index for this process.
func NewMemory(ctx context.Context, documents []*Document, embedder embed.Embedder, id string) (*Collection, error) {
	vectors, err := NewVectorIndex(DefaultVectorConfig(embedder.Dimensions()))
	if err != nil {
		return nil, err
	}

	docs, err := OpenDocStore(":memory:")
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}

	c := &Collection{
		id:       id,
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
	}

	if err := c.Add(ctx, documents); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// Add embeds and appends documents to the collection.
//
// For persisted collections the vector graph is flushed to disk before any
// document row is committed. Rows must never outlive their vectors: a row
// whose vector was lost would make Count and HasSource claim content the
// index cannot retrieve, and a stray corpus row would suppress re-merging.
// The reverse gap, vectors without rows, is benign: retrieval skips them and
// the next merge replaces them.
func (c *Collection) Add(ctx context.Context, documents []*Document) error {
	if len(documents) == 0 {
		return nil
	}

	for start := 0; start < len(documents); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(documents) {
			end = len(documents)
		}
		batch := documents[start:end]

		texts := make([]string, len(batch))
		ids := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Content
			ids[i] = doc.ID
		}

		vectors, err := c.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch: %w", err)
		}

		if err := c.vectors.Add(ctx, ids, vectors); err != nil {
			return fmt.Errorf("failed to add vectors: %w", err)
		}
	}

	if c.persisted {
		if err := c.vectors.Save(filepath.Join(c.dir, VectorFileName)); err != nil {
			return fmt.Errorf("failed to flush vector index: %w", err)
		}
	}

	if err := c.docs.SaveDocuments(ctx, documents); err != nil {
		return fmt.Errorf("failed to save documents: %w", err)
	}

	if err := c.docs.SetState(ctx, StateKeyEmbeddingModel, c.embedder.ModelName()); err != nil {
		return err
	}
	return c.docs.SetState(ctx, StateKeyDimensions, strconv.Itoa(c.embedder.Dimensions()))
}

// SimilaritySearch returns up to k documents ranked by descending similarity
// to the query. Candidates are oversampled from fetchK nearest neighbors
// before taking the top k. An empty collection returns an empty slice.
func (c *Collection) SimilaritySearch(ctx context.Context, query string, k, fetchK int) ([]SearchResult, error) {
	if fetchK < k {
		fetchK = k
	}

	queryVec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	ids, scores, err := c.vectors.Search(ctx, queryVec, fetchK)
	if err != nil {
		return nil, err
	}

	if len(ids) > k {
		ids = ids[:k]
		scores = scores[:k]
	}

	docs, err := c.docs.GetDocuments(ctx, ids)
	if err != nil {
		return nil, err
	}

	// GetDocuments skips ids with no row, so pair scores by id rather than
	// by position
	scoreByID := make(map[string]float32, len(ids))
	for i, id := range ids {
		scoreByID[id] = scores[i]
	}

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, SearchResult{Document: doc, Score: scoreByID[doc.ID]})
	}

	return results, nil
}

// ListMetadata returns metadata for up to limit indexed entries.
func (c *Collection) ListMetadata(ctx context.Context, limit int) ([]Metadata, error) {
	return c.docs.ListMetadata(ctx, limit)
}

// HasSource reports whether any entry from the given source is indexed.
func (c *Collection) HasSource(ctx context.Context, source string) (bool, error) {
	return c.docs.HasSource(ctx, source)
}

// GetState reads a collection state value.
func (c *Collection) GetState(ctx context.Context, key string) (string, error) {
	return c.docs.GetState(ctx, key)
}

// SetState writes a collection state value.
func (c *Collection) SetState(ctx context.Context, key, value string) error {
	return c.docs.SetState(ctx, key, value)
}

// Count returns the number of indexed entries.
func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.docs.Count(ctx)
}

// ID returns the collection identifier.
func (c *Collection) ID() string {
	return c.id
}

// Embedder returns the embedding backend this collection was opened with.
// The collection does not own it; the caller that supplied it closes it.
func (c *Collection) Embedder() embed.Embedder {
	return c.embedder
}

// Persisted reports whether this collection is backed by durable storage.
// False means degraded mode: the index lives only in process memory.
func (c *Collection) Persisted() bool {
	return c.persisted
}

// Persist flushes the vector index to disk. Add already flushes before
// committing rows, so this is only needed after direct graph mutation.
// No-op for in-memory collections; the document store is durable per
// transaction.
func (c *Collection) Persist() error {
	if !c.persisted {
		return nil
	}
	return c.vectors.Save(filepath.Join(c.dir, VectorFileName))
}

// Close releases the collection's resources.
func (c *Collection) Close() error {
	verr := c.vectors.Close()
	derr := c.docs.Close()
	if verr != nil {
		return verr
	}
	return derr
}
