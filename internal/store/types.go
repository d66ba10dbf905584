// Package store provides the persisted vector index for a provider: an HNSW
// graph for similarity search plus a SQLite document store for chunk content
// and metadata. One Collection per embedding provider; embedding spaces are
// never mixed across providers.
package store

import (
	"fmt"
)

// Metadata describes the origin of an indexed chunk.
// Corpus entries carry concepts and complexity; uploads carry provider and
// ingestion timestamp. ChunkID is unique within a single source, not globally.
type Metadata struct {
	Source     string  // corpus sentinel or "uploaded_pdf_<name>"
	Title      string
	Category   string  // dialogue, treatise, fragment
	Dialogue   string
	Book       string
	ChunkID    int     // position within its source
	Concepts   string  // comma-joined philosophical concept tags (corpus only)
	Complexity float64 // avg sentence length metric (corpus only)
	Provider   string  // embedding provider name (uploads only)
	IngestedAt string  // RFC 3339 timestamp (uploads only)
}

// Document is one retrievable unit of text plus metadata.
// ID is the index entry key: "corpus:<chunk_id>" for corpus entries,
// "upload:<uuid>" for uploaded chunks.
type Document struct {
	ID      string
	Content string
	Meta    Metadata
}

// SearchResult pairs a document with its similarity score (0-1, higher is
// more similar).
type SearchResult struct {
	Document *Document
	Score    float32
}

// Collection state keys persisted in SQLite alongside the documents.
const (
	// StateKeyEmbeddingModel records the model the index was built with.
	StateKeyEmbeddingModel = "embedding_model"
	// StateKeyDimensions records the embedding dimension of the index.
	StateKeyDimensions = "embedding_dimensions"
	// StateKeyCorpusIngested marks that the corpus has been merged into this
	// collection. Cheaper than scanning entry metadata on every open.
	StateKeyCorpusIngested = "corpus_ingested"
)

// VectorConfig configures the HNSW vector index.
type VectorConfig struct {
	// Dimensions is the embedding vector dimension.
	Dimensions int

	// Metric is the distance metric: "cos" (cosine) or "l2" (euclidean).
	Metric string

	// M is HNSW max connections per layer.
	M int

	// EfSearch is HNSW query-time search width.
	EfSearch int
}

// DefaultVectorConfig returns sensible defaults for the vector index.
func DefaultVectorConfig(dimensions int) VectorConfig {
	return VectorConfig{
		Dimensions: dimensions,
		Metric:     "cos",
		M:          16,
		EfSearch:   64,
	}
}

// ErrDimensionMismatch indicates the embedder's dimension does not match the
// persisted index. Mixing embedding spaces silently corrupts rankings, so
// this is always fatal.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: index has %d, embedder produces %d (run 'platon reset' for this provider)", e.Expected, e.Got)
}
