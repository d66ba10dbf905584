package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	platonerrors "github.com/elenchus/platon/internal/errors"
)

// DefaultGeminiModel is the Gemini completion model.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiCompleter generates answers with the Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

var _ Completer = (*GeminiCompleter)(nil)

// NewGeminiCompleter creates a Gemini-backed completer.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiCompleter{client: client, model: model}, nil
}

// Complete generates an answer for the prompt.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", platonerrors.Wrap(platonerrors.ErrCodeCompletionAPI, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", platonerrors.New(platonerrors.ErrCodeCompletionAPI,
			"completion returned no text", nil)
	}
	return text, nil
}

// ModelName returns the completion model identifier.
func (g *GeminiCompleter) ModelName() string { return g.model }

// Close releases resources.
func (g *GeminiCompleter) Close() error { return nil }
