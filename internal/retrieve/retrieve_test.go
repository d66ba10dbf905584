package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elenchus/platon/internal/embed"
	platonerrors "github.com/elenchus/platon/internal/errors"
	"github.com/elenchus/platon/internal/store"
)

func newTestCollection(t *testing.T) *store.Collection {
	t.Helper()
	embedder := embed.NewStaticEmbedder()
	t.Cleanup(func() { _ = embedder.Close() })

	docs := []*store.Document{
		{ID: "corpus:0", Content: "La justicia es la armonía del alma.", Meta: store.Metadata{Dialogue: "República"}},
		{ID: "corpus:1", Content: "El conocimiento verdadero es reminiscencia.", Meta: store.Metadata{Dialogue: "Menón"}},
		{ID: "corpus:2", Content: "Las sombras de la caverna engañan a los prisioneros.", Meta: store.Metadata{Dialogue: "República"}},
		{ID: "corpus:3", Content: "El amor asciende de los cuerpos bellos a la belleza en sí.", Meta: store.Metadata{Dialogue: "Banquete"}},
	}

	c, err := store.NewMemory(context.Background(), docs, embedder, "platonic_groq")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRetriever_OrdersByDescendingSimilarity(t *testing.T) {
	r := New(newTestCollection(t), 3, 10)

	results, err := r.Retrieve(context.Background(), "Las sombras de la caverna engañan a los prisioneros.")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "corpus:2", results[0].Document.ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRetriever_EmptyQueryRejected(t *testing.T) {
	r := New(newTestCollection(t), 3, 10)

	_, err := r.Retrieve(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, platonerrors.ErrCodeQueryEmpty, platonerrors.GetCode(err))
}

func TestRetriever_EmptyIndexYieldsEmptyResult(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	defer func() { _ = embedder.Close() }()

	c, err := store.NewMemory(context.Background(), nil, embedder, "platonic_groq")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	results, err := New(c, 3, 10).Retrieve(context.Background(), "justicia")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNew_DefaultsAndFloors(t *testing.T) {
	r := New(nil, 0, 0)
	assert.Equal(t, DefaultTopK, r.topK)
	assert.Equal(t, DefaultFetchK, r.fetchK)

	r = New(nil, 20, 5)
	assert.Equal(t, 20, r.topK)
	assert.Equal(t, 20, r.fetchK)
}
