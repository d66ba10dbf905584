package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, dims int) *VectorIndex {
	t.Helper()
	idx, err := NewVectorIndex(DefaultVectorConfig(dims))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestVectorIndex_AddAndSearch(t *testing.T) {
	idx := newTestIndex(t, 3)

	// Given: three orthogonal vectors
	err := idx.Add(context.Background(),
		[]string{"corpus:0", "corpus:1", "corpus:2"},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	require.NoError(t, err)

	// When: searching near the first vector
	ids, scores, err := idx.Search(context.Background(), []float32{0.9, 0.1, 0}, 2)
	require.NoError(t, err)

	// Then: the closest match comes first with the highest score
	require.Len(t, ids, 2)
	assert.Equal(t, "corpus:0", ids[0])
	assert.Greater(t, scores[0], scores[1])
}

func TestVectorIndex_EmptySearch(t *testing.T) {
	idx := newTestIndex(t, 3)

	ids, scores, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)

	assert.Empty(t, ids)
	assert.Empty(t, scores)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	idx := newTestIndex(t, 3)

	err := idx.Add(context.Background(), []string{"corpus:0"}, [][]float32{{1, 0}})
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrDimensionMismatch{})

	_, _, err = idx.Search(context.Background(), []float32{1, 0}, 1)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrDimensionMismatch{})
}

func TestVectorIndex_ReplaceOrphansOldNode(t *testing.T) {
	idx := newTestIndex(t, 3)

	require.NoError(t, idx.Add(context.Background(),
		[]string{"corpus:0"}, [][]float32{{1, 0, 0}}))
	require.NoError(t, idx.Add(context.Background(),
		[]string{"corpus:0"}, [][]float32{{0, 1, 0}}))

	assert.Equal(t, 1, idx.Count())

	ids, _, err := idx.Search(context.Background(), []float32{0, 1, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"corpus:0"}, ids)
}

func TestVectorIndex_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, VectorFileName)

	// Given: a persisted index
	idx := newTestIndex(t, 3)
	require.NoError(t, idx.Add(context.Background(),
		[]string{"corpus:0", "corpus:1"},
		[][]float32{{1, 0, 0}, {0, 1, 0}}))
	require.NoError(t, idx.Save(path))

	// When: loading it into a fresh index
	loaded := newTestIndex(t, 3)
	require.NoError(t, loaded.Load(path))

	// Then: content and search behavior survive the round trip
	assert.Equal(t, 2, loaded.Count())
	assert.True(t, loaded.Contains("corpus:1"))

	ids, _, err := loaded.Search(context.Background(), []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"corpus:1"}, ids)
}

func TestReadVectorIndexDimensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, VectorFileName)

	// Missing file reports zero, not an error
	dims, err := ReadVectorIndexDimensions(path)
	require.NoError(t, err)
	assert.Zero(t, dims)

	idx := newTestIndex(t, 5)
	require.NoError(t, idx.Add(context.Background(),
		[]string{"corpus:0"}, [][]float32{{1, 0, 0, 0, 0}}))
	require.NoError(t, idx.Save(path))

	dims, err = ReadVectorIndexDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, 5, dims)
}

func TestDistanceToScore(t *testing.T) {
	assert.InDelta(t, 1.0, distanceToScore(0, "cos"), 1e-6)
	assert.InDelta(t, 0.0, distanceToScore(2, "cos"), 1e-6)
	assert.InDelta(t, 1.0, distanceToScore(0, "l2"), 1e-6)
	assert.InDelta(t, 0.5, distanceToScore(1, "l2"), 1e-6)
}
