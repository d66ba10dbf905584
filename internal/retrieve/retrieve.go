// Package retrieve answers similarity queries against an acquired provider
// index. It is a thin delegation layer: every call re-queries the collection,
// since the index can grow between calls when documents are re-submitted.
package retrieve

import (
	"context"
	"strings"

	platonerrors "github.com/elenchus/platon/internal/errors"
	"github.com/elenchus/platon/internal/store"
)

// Defaults for retrieval depth.
const (
	DefaultTopK   = 3
	DefaultFetchK = 10
)

// Retriever runs top-K similarity searches over one collection.
type Retriever struct {
	collection *store.Collection
	topK       int
	fetchK     int
}

// New creates a retriever over the given collection.
// Non-positive settings fall back to the defaults; fetchK is raised to topK
// when it is smaller.
func New(collection *store.Collection, topK, fetchK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if fetchK <= 0 {
		fetchK = DefaultFetchK
	}
	if fetchK < topK {
		fetchK = topK
	}
	return &Retriever{collection: collection, topK: topK, fetchK: fetchK}
}

// Retrieve returns up to TopK passages ordered from most to least similar.
// An empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, platonerrors.New(platonerrors.ErrCodeQueryEmpty, "query is empty", nil)
	}

	return r.collection.SimilaritySearch(ctx, query, r.topK, r.fetchK)
}

// TopK returns the configured result count.
func (r *Retriever) TopK() int { return r.topK }
