package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticEmbedder_Deterministic(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	// Given: the same text embedded twice
	a, err := e.Embed(context.Background(), "la justicia en la República")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "la justicia en la República")
	require.NoError(t, err)

	// Then: the vectors are identical
	assert.Equal(t, a, b)
}

func TestStaticEmbedder_EmptyInput(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)

	require.Len(t, vec, StaticDimensions)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestStaticEmbedder_NormalizedOutput(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	vec, err := e.Embed(context.Background(), "el alma es inmortal")
	require.NoError(t, err)

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-4)
}

func TestStaticEmbedder_DifferentTextsDiffer(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	a, err := e.Embed(context.Background(), "la caverna y las sombras")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "el mundo de las ideas")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStaticEmbedder_Batch(t *testing.T) {
	e := NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	vectors, err := e.EmbedBatch(context.Background(), []string{"uno", "dos", "tres"})
	require.NoError(t, err)

	require.Len(t, vectors, 3)
	for _, vec := range vectors {
		assert.Len(t, vec, StaticDimensions)
	}
}

func TestStaticEmbedder_ClosedRejects(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "algo")
	assert.Error(t, err)
	assert.False(t, e.Available(context.Background()))
}

func TestTokenize_DropsStopWordsKeepsAccents(t *testing.T) {
	tokens := tokenize("El alma de la República")

	assert.Contains(t, tokens, "alma")
	assert.Contains(t, tokens, "república")
	assert.NotContains(t, tokens, "el")
	assert.NotContains(t, tokens, "de")
}
