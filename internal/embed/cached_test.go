package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps the static embedder and counts backend calls.
type countingEmbedder struct {
	*StaticEmbedder
	embedCalls int
	batchTexts int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.embedCalls++
	return c.StaticEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batchTexts += len(texts)
	return c.StaticEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedder_HitAvoidsBackend(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	defer func() { _ = cached.Close() }()

	// Given: a text embedded once
	first, err := cached.Embed(context.Background(), "la idea del bien")
	require.NoError(t, err)
	require.Equal(t, 1, inner.embedCalls)

	// When: the same text is embedded again
	second, err := cached.Embed(context.Background(), "la idea del bien")
	require.NoError(t, err)

	// Then: the backend is not called again and the vector is identical
	assert.Equal(t, 1, inner.embedCalls)
	assert.Equal(t, first, second)
}

func TestCachedEmbedder_BatchOnlyEmbedsUncached(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	defer func() { _ = cached.Close() }()

	_, err := cached.Embed(context.Background(), "sócrates")
	require.NoError(t, err)

	vectors, err := cached.EmbedBatch(context.Background(), []string{"sócrates", "platón", "glaucón"})
	require.NoError(t, err)

	require.Len(t, vectors, 3)
	assert.Equal(t, 2, inner.batchTexts)
}

func TestCachedEmbedder_BatchFullyCached(t *testing.T) {
	inner := &countingEmbedder{StaticEmbedder: NewStaticEmbedder()}
	cached := NewCachedEmbedder(inner, 10)
	defer func() { _ = cached.Close() }()

	texts := []string{"uno", "dos"}
	_, err := cached.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Equal(t, 2, inner.batchTexts)

	_, err = cached.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.batchTexts)
}

func TestCachedEmbedder_Passthroughs(t *testing.T) {
	inner := NewStaticEmbedder()
	cached := NewCachedEmbedder(inner, 0)
	defer func() { _ = cached.Close() }()

	assert.Equal(t, StaticDimensions, cached.Dimensions())
	assert.Equal(t, "static", cached.ModelName())
	assert.True(t, cached.Available(context.Background()))
}
