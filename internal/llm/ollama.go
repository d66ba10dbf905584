package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	platonerrors "github.com/elenchus/platon/internal/errors"
)

// Ollama chat defaults.
const (
	DefaultOllamaHost  = "http://localhost:11434"
	defaultChatTimeout = 120 * time.Second
)

// OllamaCompleter generates answers with a locally served chat model.
type OllamaCompleter struct {
	client *http.Client
	host   string
	model  string
}

var _ Completer = (*OllamaCompleter)(nil)

// NewOllamaCompleter creates an Ollama-backed completer.
func NewOllamaCompleter(host, model string) (*OllamaCompleter, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		return nil, fmt.Errorf("ollama completer requires a model name")
	}

	return &OllamaCompleter{
		client: &http.Client{},
		host:   host,
		model:  model,
	}, nil
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
}

// Complete generates an answer for the prompt.
func (o *OllamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	body, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Messages: []ollamaChatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		o.host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", platonerrors.Wrap(platonerrors.ErrCodeCompletionAPI, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", platonerrors.New(platonerrors.ErrCodeCompletionAPI,
			fmt.Sprintf("ollama returned status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text := strings.TrimSpace(result.Message.Content)
	if text == "" {
		return "", platonerrors.New(platonerrors.ErrCodeCompletionAPI,
			"completion returned no text", nil)
	}
	return text, nil
}

// ModelName returns the completion model identifier.
func (o *OllamaCompleter) ModelName() string { return o.model }

// Close releases resources.
func (o *OllamaCompleter) Close() error {
	o.client.CloseIdleConnections()
	return nil
}
