package llm

import (
	"context"
	"os"

	platonerrors "github.com/elenchus/platon/internal/errors"
	"github.com/elenchus/platon/internal/provider"
)

// Local chat models served by Ollama for the non-Gemini providers.
const (
	groqChatModel    = "llama3.1"
	spanishChatModel = "mistral"
)

// ForProvider returns the completion backend for a provider name.
// Gemini answers through the Gemini API; the local providers answer through
// an Ollama-served chat model.
func ForProvider(ctx context.Context, name string) (Completer, error) {
	switch provider.Canonical(name) {
	case provider.Gemini:
		apiKey := os.Getenv(provider.GoogleAPIKeyEnv)
		if apiKey == "" {
			return nil, platonerrors.MissingCredentialError(name, provider.GoogleAPIKeyEnv)
		}
		completer, err := NewGeminiCompleter(ctx, apiKey, "")
		if err != nil {
			return nil, platonerrors.Wrap(platonerrors.ErrCodeCompletionAPI, err)
		}
		return completer, nil

	case provider.Groq:
		return NewOllamaCompleter(os.Getenv(provider.OllamaHostEnv), groqChatModel)

	case provider.SpanishLLM:
		return NewOllamaCompleter(os.Getenv(provider.OllamaHostEnv), spanishChatModel)

	default:
		return nil, platonerrors.UnsupportedProviderError(name)
	}
}
