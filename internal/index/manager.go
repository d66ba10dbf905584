// Package index owns provider index acquisition: opening or creating a
// provider's persisted collection, merging the corpus exactly once, staging
// uploaded documents, and falling back to an in-memory index when durable
// persistence fails.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/elenchus/platon/internal/chunk"
	"github.com/elenchus/platon/internal/config"
	"github.com/elenchus/platon/internal/corpus"
	platonerrors "github.com/elenchus/platon/internal/errors"
	"github.com/elenchus/platon/internal/extract"
	"github.com/elenchus/platon/internal/provider"
	"github.com/elenchus/platon/internal/store"
)

// LockFileName guards a collection directory against concurrent writers.
const LockFileName = ".write.lock"

// Handle is an acquired provider index, ready for retrieval.
type Handle struct {
	// Collection is the provider's index. In degraded mode it lives only in
	// process memory.
	Collection *store.Collection

	// Provider is the provider name the index belongs to.
	Provider string

	// EmbedderFallback is true when the provider's preferred embedding model
	// was unreachable and the static embedder was used instead.
	EmbedderFallback bool

	// Degraded is true when persistence failed and the index is in-memory.
	Degraded bool

	// DegradedCause explains why the index is in-memory, nil otherwise.
	DegradedCause error

	// SkippedUploads lists upload names that failed extraction and were
	// left out of the merge.
	SkippedUploads []string
}

// Close releases the handle's collection and embedder.
func (h *Handle) Close() error {
	cerr := h.Collection.Close()
	// The collection does not own the embedder; the handle does.
	eerr := h.Collection.Embedder().Close()
	if cerr != nil {
		return cerr
	}
	return eerr
}

// Manager acquires provider indexes.
// Safe for sequential use; concurrent merges on the same collection are
// serialized through a file lock.
type Manager struct {
	dataDir  string
	corpus   *corpus.Cache
	splitter *chunk.Splitter
	logger   *slog.Logger
}

// NewManager creates an index manager from configuration.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		dataDir:  cfg.Paths.DataDir,
		corpus:   corpus.NewCache(cfg.Paths.CorpusPath),
		splitter: chunk.NewSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap),
		logger:   logger,
	}
}

// GetOrCreate returns the provider's index with the corpus and the given
// uploads merged in.
//
// The corpus is merged at most once per collection: re-acquiring an index
// never duplicates corpus entries. Uploads are always staged; a failed
// extraction skips that upload and continues. When the persisted collection
// cannot be created or written, the caller gets a usable in-memory index
// marked degraded instead of an error.
func (m *Manager) GetOrCreate(ctx context.Context, providerName string, uploads []extract.Upload) (*Handle, error) {
	providerName = provider.Canonical(providerName)

	res, err := provider.Resolve(ctx, providerName, m.logger)
	if err != nil {
		return nil, err
	}

	handle, err := m.acquire(ctx, providerName, res, uploads)
	if err != nil {
		_ = res.Embedder.Close()
		return nil, err
	}
	return handle, nil
}

func (m *Manager) acquire(ctx context.Context, providerName string, res *provider.Resolution, uploads []extract.Upload) (*Handle, error) {
	collectionID := provider.CollectionID(providerName)
	dir := provider.Dir(m.dataDir, providerName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, platonerrors.PersistenceError(
			fmt.Sprintf("failed to create collection directory %s", dir), err)
	}

	unlock, err := m.lock(ctx, dir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	uploadDocs, skipped := m.stageUploads(providerName, uploads)

	handle := &Handle{
		Provider:         providerName,
		EmbedderFallback: res.Fallback,
		SkippedUploads:   skipped,
	}

	if store.Exists(dir) {
		collection, err := m.openAndMerge(ctx, dir, collectionID, res, uploadDocs)
		if err != nil {
			return nil, err
		}
		if collection != nil {
			handle.Collection = collection
			return handle, nil
		}
		// Persistence failed mid-merge; rebuild in memory below
	} else {
		collection, err := m.createCollection(ctx, dir, collectionID, res, uploadDocs)
		if err != nil {
			return nil, err
		}
		if collection != nil {
			handle.Collection = collection
			return handle, nil
		}
	}

	collection, cause, err := m.memoryFallback(ctx, collectionID, res, uploadDocs)
	if err != nil {
		return nil, err
	}

	m.logger.Warn("index persistence failed, serving in-memory index",
		"provider", providerName, "collection", collectionID, "cause", cause)

	handle.Collection = collection
	handle.Degraded = true
	handle.DegradedCause = cause
	return handle, nil
}

// Reset deletes a provider's persisted collection.
// The next acquisition rebuilds it from the corpus.
func (m *Manager) Reset(ctx context.Context, providerName string) error {
	if !provider.Supported(providerName) {
		return platonerrors.UnsupportedProviderError(providerName)
	}

	dir := provider.Dir(m.dataDir, providerName)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	unlock, err := m.lock(ctx, dir)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.RemoveAll(dir); err != nil {
		return platonerrors.PersistenceError(
			fmt.Sprintf("failed to delete collection directory %s", dir), err)
	}

	m.logger.Info("collection reset", "provider", providerName, "dir", dir)
	return nil
}

// lock takes the collection's single-writer lock.
func (m *Manager) lock(ctx context.Context, dir string) (func(), error) {
	fileLock := flock.New(filepath.Join(dir, LockFileName))

	lockCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil || !locked {
		return nil, platonerrors.New(platonerrors.ErrCodeIndexLocked,
			fmt.Sprintf("collection at %s is locked by another process", dir), err).
			WithSuggestion("wait for the other platon process to finish and retry")
	}

	return func() { _ = fileLock.Unlock() }, nil
}

// openAndMerge opens an existing collection, merges the corpus if it is not
// present yet, and appends the staged uploads. A nil collection with nil
// error signals the caller to fall back to an in-memory index.
func (m *Manager) openAndMerge(ctx context.Context, dir, collectionID string, res *provider.Resolution, uploadDocs []*store.Document) (*store.Collection, error) {
	collection, err := store.Open(ctx, dir, res.Embedder, collectionID)
	if err != nil {
		var mismatch store.ErrDimensionMismatch
		if errors.As(err, &mismatch) {
			return nil, platonerrors.New(platonerrors.ErrCodeDimensionMismatch, err.Error(), err)
		}
		return nil, platonerrors.New(platonerrors.ErrCodeCorruptIndex,
			fmt.Sprintf("failed to open collection %s", collectionID), err).
			WithSuggestion("run 'platon reset' for this provider to rebuild the index")
	}

	ingested, err := m.corpusIngested(ctx, collection)
	if err != nil {
		_ = collection.Close()
		return nil, err
	}

	// Nothing staged: hand back the index as-is, no flush needed
	if ingested && len(uploadDocs) == 0 {
		return collection, nil
	}

	if !ingested {
		corpusDocs, err := m.stageCorpus()
		if err != nil {
			_ = collection.Close()
			return nil, err
		}
		if err := collection.Add(ctx, corpusDocs); err != nil {
			m.logger.Warn("corpus merge failed on persisted collection",
				"collection", collectionID, "error", err)
			_ = collection.Close()
			return nil, nil
		}
		if err := collection.SetState(ctx, store.StateKeyCorpusIngested, "true"); err != nil {
			m.logger.Warn("failed to record corpus marker",
				"collection", collectionID, "error", err)
			_ = collection.Close()
			return nil, nil
		}
		m.logger.Info("corpus merged into collection",
			"collection", collectionID, "chunks", len(corpusDocs))
	}

	if err := collection.Add(ctx, uploadDocs); err != nil {
		m.logger.Warn("upload merge failed on persisted collection",
			"collection", collectionID, "error", err)
		_ = collection.Close()
		return nil, nil
	}

	return collection, nil
}

// createCollection builds a fresh persisted collection with the corpus and
// staged uploads. A nil collection with nil error signals the in-memory
// fallback.
func (m *Manager) createCollection(ctx context.Context, dir, collectionID string, res *provider.Resolution, uploadDocs []*store.Document) (*store.Collection, error) {
	corpusDocs, err := m.stageCorpus()
	if err != nil {
		return nil, err
	}

	collection, err := store.Create(ctx, corpusDocs, res.Embedder, dir, collectionID)
	if err != nil {
		m.logger.Warn("failed to create persisted collection",
			"collection", collectionID, "error", err)
		return nil, nil
	}

	if err := collection.SetState(ctx, store.StateKeyCorpusIngested, "true"); err != nil {
		m.logger.Warn("failed to record corpus marker",
			"collection", collectionID, "error", err)
		_ = collection.Close()
		return nil, nil
	}

	if err := collection.Add(ctx, uploadDocs); err != nil {
		m.logger.Warn("upload merge failed on new collection",
			"collection", collectionID, "error", err)
		_ = collection.Close()
		return nil, nil
	}

	m.logger.Info("created collection",
		"collection", collectionID, "corpus_chunks", len(corpusDocs), "upload_chunks", len(uploadDocs))
	return collection, nil
}

// memoryFallback builds the degraded in-memory index from the corpus plus
// the staged uploads.
func (m *Manager) memoryFallback(ctx context.Context, collectionID string, res *provider.Resolution, uploadDocs []*store.Document) (*store.Collection, error, error) {
	cause := platonerrors.PersistenceError(
		fmt.Sprintf("collection %s could not be persisted", collectionID), nil)

	corpusDocs, err := m.stageCorpus()
	if err != nil {
		return nil, nil, err
	}

	collection, err := store.NewMemory(ctx, append(corpusDocs, uploadDocs...), res.Embedder, collectionID)
	if err != nil {
		return nil, nil, platonerrors.New(platonerrors.ErrCodeInternal,
			"failed to build in-memory index", err)
	}

	return collection, cause, nil
}

// corpusIngested reports whether the corpus is already merged into the
// collection. The state marker is authoritative; collections created before
// the marker existed fall back to a bounded source check, and a positive
// result backfills the marker.
func (m *Manager) corpusIngested(ctx context.Context, collection *store.Collection) (bool, error) {
	marker, err := collection.GetState(ctx, store.StateKeyCorpusIngested)
	if err != nil {
		return false, platonerrors.PersistenceError("failed to read corpus marker", err)
	}
	if marker == "true" {
		return true, nil
	}

	present, err := collection.HasSource(ctx, config.CorpusSource)
	if err != nil {
		return false, platonerrors.PersistenceError("failed to check corpus presence", err)
	}
	if present {
		if err := collection.SetState(ctx, store.StateKeyCorpusIngested, "true"); err != nil {
			return false, platonerrors.PersistenceError("failed to backfill corpus marker", err)
		}
	}
	return present, nil
}

// stageCorpus chunks every corpus entry into documents.
// Chunk IDs are assigned sequentially across the whole corpus so entry IDs
// stay stable between runs.
func (m *Manager) stageCorpus() ([]*store.Document, error) {
	entries, err := m.corpus.Entries()
	if err != nil {
		return nil, err
	}

	var docs []*store.Document
	chunkID := 0
	for _, entry := range entries {
		for _, piece := range m.splitter.Split(entry.Text) {
			docs = append(docs, &store.Document{
				ID:      fmt.Sprintf("corpus:%d", chunkID),
				Content: piece,
				Meta: store.Metadata{
					Source:     config.CorpusSource,
					Title:      entry.Title,
					Category:   entry.Category,
					Dialogue:   entry.Dialogue,
					Book:       entry.Book,
					ChunkID:    chunkID,
					Concepts:   entry.ConceptNames(),
					Complexity: entry.Analysis.Complexity.AvgSentenceLength,
				},
			})
			chunkID++
		}
	}

	return docs, nil
}

// stageUploads extracts and chunks the uploads.
// An upload that fails extraction is logged, recorded as skipped, and left
// out; the remaining uploads still merge.
func (m *Manager) stageUploads(providerName string, uploads []extract.Upload) ([]*store.Document, []string) {
	var docs []*store.Document
	var skipped []string

	now := time.Now().UTC().Format(time.RFC3339)
	for _, upload := range uploads {
		text, err := upload.Text()
		if err != nil {
			m.logger.Warn("skipping upload, extraction failed",
				"upload", upload.Name, "error", err)
			skipped = append(skipped, upload.Name)
			continue
		}

		for i, piece := range m.splitter.Split(text) {
			docs = append(docs, &store.Document{
				ID:      "upload:" + uuid.NewString(),
				Content: piece,
				Meta: store.Metadata{
					Source:     upload.Source(),
					Title:      upload.Name,
					ChunkID:    i,
					Provider:   providerName,
					IngestedAt: now,
				},
			})
		}
	}

	return docs, skipped
}
