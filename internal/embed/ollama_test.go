package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama serves /api/tags and /api/embed with fixed-dimension vectors.
func fakeOllama(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/embed":
			var req ollamaEmbedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			embeddings := make([][]float32, len(req.Input))
			for i := range req.Input {
				vec := make([]float32, dims)
				vec[i%dims] = 1
				embeddings[i] = vec
			}
			require.NoError(t, json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: embeddings}))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOllamaEmbedder_DetectsDimensionsOnConstruction(t *testing.T) {
	server := fakeOllama(t, 384)
	defer server.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:  server.URL,
		Model: "paraphrase-multilingual",
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, 384, e.Dimensions())
}

func TestOllamaEmbedder_EmbedBatch(t *testing.T) {
	server := fakeOllama(t, 8)
	defer server.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:      server.URL,
		Model:     "paraphrase-multilingual",
		BatchSize: 2,
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)

	require.Len(t, vectors, 5)
	for _, vec := range vectors {
		assert.Len(t, vec, 8)
	}
}

func TestOllamaEmbedder_ConnectionFailure(t *testing.T) {
	_, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:  "http://127.0.0.1:1",
		Model: "paraphrase-multilingual",
	})
	assert.Error(t, err)
}

func TestOllamaEmbedder_RequiresModel(t *testing.T) {
	_, err := NewOllamaEmbedder(context.Background(), OllamaConfig{SkipHealthCheck: true})
	assert.Error(t, err)
}

func TestOllamaEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host:            server.URL,
		Model:           "missing-model",
		Dimensions:      8,
		SkipHealthCheck: true,
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	_, err = e.Embed(context.Background(), "algo")
	assert.ErrorContains(t, err, "404")
}
