package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elenchus/platon/internal/embed"
)

func collectionDocs() []*Document {
	return []*Document{
		{
			ID:      "corpus:0",
			Content: "La justicia consiste en que cada uno haga lo que le corresponde.",
			Meta:    Metadata{Source: "platon_analisis_nlp.json", Dialogue: "República", ChunkID: 0},
		},
		{
			ID:      "corpus:1",
			Content: "El alma es inmortal y ha contemplado las ideas antes de nacer.",
			Meta:    Metadata{Source: "platon_analisis_nlp.json", Dialogue: "Fedón", ChunkID: 1},
		},
		{
			ID:      "corpus:2",
			Content: "Los prisioneros de la caverna confunden las sombras con la realidad.",
			Meta:    Metadata{Source: "platon_analisis_nlp.json", Dialogue: "República", ChunkID: 2},
		},
	}
}

func TestCollection_CreateOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	// Given: a collection created and persisted on disk
	created, err := Create(context.Background(), collectionDocs(), embedder, dir, "platonic_gemini")
	require.NoError(t, err)
	require.NoError(t, created.Persist())
	require.NoError(t, created.Close())

	require.True(t, Exists(dir))

	// When: reopening it with the same embedder
	opened, err := Open(context.Background(), dir, embedder, "platonic_gemini")
	require.NoError(t, err)
	defer func() { _ = opened.Close() }()

	// Then: documents and state survive
	count, err := opened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	model, err := opened.GetState(context.Background(), StateKeyEmbeddingModel)
	require.NoError(t, err)
	assert.Equal(t, "static", model)
	assert.True(t, opened.Persisted())
}

func TestCollection_OpenRejectsDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	created, err := Create(context.Background(), collectionDocs(), embedder, dir, "platonic_gemini")
	require.NoError(t, err)
	require.NoError(t, created.Persist())
	require.NoError(t, created.Close())

	other := &fixedDimEmbedder{dims: embed.StaticDimensions + 1}
	_, err = Open(context.Background(), dir, other, "platonic_gemini")
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrDimensionMismatch{})
}

func TestCollection_SimilaritySearchRanksRelevantFirst(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	c, err := NewMemory(context.Background(), collectionDocs(), embedder, "platonic_groq")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	// Query repeats a stored chunk verbatim, so it must rank first
	results, err := c.SimilaritySearch(context.Background(),
		"Los prisioneros de la caverna confunden las sombras con la realidad.", 2, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "corpus:2", results[0].Document.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestCollection_SimilaritySearchEmptyCollection(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	c, err := NewMemory(context.Background(), nil, embedder, "platonic_groq")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	results, err := c.SimilaritySearch(context.Background(), "justicia", 3, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCollection_MemoryIsNotPersisted(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	c, err := NewMemory(context.Background(), collectionDocs(), embedder, "platonic_spanish-llm")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.False(t, c.Persisted())
	assert.NoError(t, c.Persist())
}

func TestCollection_HasSourceAfterAdd(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	c, err := NewMemory(context.Background(), collectionDocs(), embedder, "platonic_gemini")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	found, err := c.HasSource(context.Background(), "platon_analisis_nlp.json")
	require.NoError(t, err)
	assert.True(t, found)

	err = c.Add(context.Background(), []*Document{{
		ID:      "upload:xyz",
		Content: "apuntes subidos",
		Meta:    Metadata{Source: "uploaded_pdf_apuntes.pdf"},
	}})
	require.NoError(t, err)

	found, err = c.HasSource(context.Background(), "uploaded_pdf_apuntes.pdf")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCollection_AddFlushFailureCommitsNoRows(t *testing.T) {
	dir := t.TempDir()
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	created, err := Create(context.Background(), collectionDocs(), embedder, dir, "platonic_groq")
	require.NoError(t, err)
	require.NoError(t, created.Close())

	// Block the temp file the vector flush writes through
	require.NoError(t, os.MkdirAll(filepath.Join(dir, VectorFileName+".tmp"), 0o755))

	opened, err := Open(context.Background(), dir, embedder, "platonic_groq")
	require.NoError(t, err)
	defer func() { _ = opened.Close() }()

	// When: appending while the graph cannot be flushed
	err = opened.Add(context.Background(), []*Document{{
		ID:      "upload:1",
		Content: "notas nuevas",
		Meta:    Metadata{Source: "uploaded_pdf_notas.txt"},
	}})
	require.Error(t, err)

	// Then: no row was committed for the unflushed vector
	count, err := opened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	found, err := opened.HasSource(context.Background(), "uploaded_pdf_notas.txt")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCollection_SimilaritySearchPairsScoresByID(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	c, err := NewMemory(context.Background(), collectionDocs(), embedder, "platonic_groq")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	query := "El alma es inmortal y ha contemplado las ideas antes de nacer."
	before, err := c.SimilaritySearch(context.Background(), query, 3, 10)
	require.NoError(t, err)
	require.Len(t, before, 3)

	scoreByID := make(map[string]float32, len(before))
	for _, r := range before {
		scoreByID[r.Document.ID] = r.Score
	}

	// When: the top match loses its row, orphaning its vector
	_, err = c.docs.db.ExecContext(context.Background(),
		"DELETE FROM documents WHERE id = ?", before[0].Document.ID)
	require.NoError(t, err)

	after, err := c.SimilaritySearch(context.Background(), query, 3, 10)
	require.NoError(t, err)
	require.Len(t, after, 2)

	// Then: the survivors keep their own scores
	for _, r := range after {
		assert.NotEqual(t, before[0].Document.ID, r.Document.ID)
		assert.Equal(t, scoreByID[r.Document.ID], r.Score)
	}
}

// fixedDimEmbedder reports an arbitrary dimension for mismatch tests.
type fixedDimEmbedder struct {
	dims int
}

func (f *fixedDimEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, f.dims), nil
}

func (f *fixedDimEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, f.dims)
	}
	return out, nil
}

func (f *fixedDimEmbedder) Dimensions() int                { return f.dims }
func (f *fixedDimEmbedder) ModelName() string              { return "fixed" }
func (f *fixedDimEmbedder) Available(context.Context) bool { return true }
func (f *fixedDimEmbedder) Close() error                   { return nil }
