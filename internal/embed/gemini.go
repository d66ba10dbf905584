package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// Gemini defaults.
const (
	// DefaultGeminiModel is the Gemini embedding model.
	DefaultGeminiModel = "gemini-embedding-001"

	// DefaultGeminiDimensions is the requested output dimensionality.
	DefaultGeminiDimensions = 768

	geminiBatchSize  = 50
	geminiBatchDelay = 700 * time.Millisecond
	geminiRetryDelay = 6 * time.Second
	geminiMaxRetries = 5
)

// GeminiEmbedder generates embeddings using Google's Gemini API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dims   int

	mu     sync.RWMutex
	closed bool
}

// Verify interface implementation at compile time.
var _ Embedder = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder creates a new Gemini embedder.
// The caller is responsible for checking that the API key is present; an
// empty key here is a programming error surfaced by the client.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, dims int) (*GeminiEmbedder, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	if dims <= 0 {
		dims = DefaultGeminiDimensions
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiEmbedder{
		client: client,
		model:  model,
		dims:   dims,
	}, nil
}

// Embed generates an embedding for a single text.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts, batching requests and
// retrying on rate limits.
func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	g.mu.RLock()
	if g.closed {
		g.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	g.mu.RUnlock()

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	dim := int32(g.dims)
	config := &genai.EmbedContentConfig{OutputDimensionality: &dim}

	var results [][]float32
	for start := 0; start < len(texts); start += geminiBatchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(geminiBatchDelay):
			}
		}

		end := start + geminiBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		contents := make([]*genai.Content, 0, len(batch))
		for _, text := range batch {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		var res *genai.EmbedContentResponse
		var err error
		for attempt := 0; attempt <= geminiMaxRetries; attempt++ {
			res, err = g.client.Models.EmbedContent(ctx, g.model, contents, config)
			if err == nil {
				break
			}
			if !isRateLimitError(err) || attempt == geminiMaxRetries {
				return nil, fmt.Errorf("failed to embed batch: %w", err)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(geminiRetryDelay):
			}
		}

		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d",
				len(res.Embeddings), len(batch))
		}
		for _, emb := range res.Embeddings {
			results = append(results, emb.Values)
		}
	}

	return results, nil
}

// isRateLimitError reports whether err is a 429/quota error worth retrying.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "RESOURCE_EXHAUSTED") ||
		strings.Contains(s, "quota")
}

// Dimensions returns the embedding dimension.
func (g *GeminiEmbedder) Dimensions() int {
	return g.dims
}

// ModelName returns the model identifier.
func (g *GeminiEmbedder) ModelName() string {
	return g.model
}

// Available checks if the embedder is ready.
// Avoids a probe request; the client validates on first use.
func (g *GeminiEmbedder) Available(_ context.Context) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.closed
}

// Close releases resources.
func (g *GeminiEmbedder) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}
