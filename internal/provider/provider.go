// Package provider maps LLM provider names to the embedding backends their
// collections are built with. The set of providers is closed: each one is
// pinned to a specific embedding model so that a provider's persisted index
// always lives in a single embedding space.
package provider

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/elenchus/platon/internal/embed"
	platonerrors "github.com/elenchus/platon/internal/errors"
)

// Known provider names.
const (
	Gemini     = "gemini"
	Groq       = "groq"
	SpanishLLM = "spanish-llm"
)

// GoogleAPIKeyEnv is the environment variable holding the Gemini API key.
const GoogleAPIKeyEnv = "GOOGLE_API_KEY"

// OllamaHostEnv overrides the Ollama endpoint for local embedding models.
const OllamaHostEnv = "PLATON_OLLAMA_HOST"

// Local embedding models served by Ollama.
const (
	groqEmbedModel    = "paraphrase-multilingual"
	spanishEmbedModel = "jina/jina-embeddings-v2-base-es"
)

// spec describes one registered provider.
type spec struct {
	remote      bool   // true: Gemini API, false: local Ollama model
	ollamaModel string // local model name, when remote is false
}

// registry is the closed provider table. Adding a provider means adding an
// entry here; free-form names are rejected.
var registry = map[string]spec{
	Gemini:     {remote: true},
	Groq:       {ollamaModel: groqEmbedModel},
	SpanishLLM: {ollamaModel: spanishEmbedModel},
}

// Names returns the registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canonical maps the spellings a user may type to the registered key:
// "Spanish LLM", "spanish_llm" and "spanish-llm" all name the same provider.
func Canonical(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.FieldsFunc(lower, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	}), "-")
}

// Supported reports whether name is a registered provider.
func Supported(name string) bool {
	_, ok := registry[Canonical(name)]
	return ok
}

// Resolution is the outcome of resolving a provider to an embedder.
type Resolution struct {
	// Embedder is the ready-to-use embedding backend, LRU-cached.
	Embedder embed.Embedder

	// Fallback is true when the provider's preferred local model was
	// unreachable and the hash-based static embedder is used instead.
	// Callers should surface this as a quality degradation.
	Fallback bool
}

// Resolve maps a provider name to its embedding backend.
//
// Gemini uses the remote Gemini embedding API and fails hard without a
// credential; embeddings from two different spaces must never mix, so there
// is no fallback for it. The local providers try Ollama first and fall back
// to the static embedder when the server is unreachable.
func Resolve(ctx context.Context, name string, logger *slog.Logger) (*Resolution, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, ok := registry[Canonical(name)]
	if !ok {
		return nil, platonerrors.UnsupportedProviderError(name)
	}

	if s.remote {
		apiKey := os.Getenv(GoogleAPIKeyEnv)
		if apiKey == "" {
			return nil, platonerrors.MissingCredentialError(name, GoogleAPIKeyEnv)
		}

		embedder, err := embed.NewGeminiEmbedder(ctx, apiKey, "", 0)
		if err != nil {
			return nil, platonerrors.Wrap(platonerrors.ErrCodeEmbeddingAPI, err)
		}

		logger.Debug("resolved provider embedder",
			"provider", name, "model", embedder.ModelName())
		return &Resolution{Embedder: embed.NewCachedEmbedder(embedder, 0)}, nil
	}

	embedder, err := embed.NewOllamaEmbedder(ctx, embed.OllamaConfig{
		Host:  os.Getenv(OllamaHostEnv),
		Model: s.ollamaModel,
	})
	if err != nil {
		logger.Warn("local embedding model unavailable, using static fallback",
			"provider", name, "model", s.ollamaModel, "error", err)
		return &Resolution{
			Embedder: embed.NewCachedEmbedder(embed.NewStaticEmbedder(), 0),
			Fallback: true,
		}, nil
	}

	logger.Debug("resolved provider embedder",
		"provider", name, "model", embedder.ModelName())
	return &Resolution{Embedder: embed.NewCachedEmbedder(embedder, 0)}, nil
}
