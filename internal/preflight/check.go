// Package preflight validates the environment before index operations run:
// corpus readability, data directory writability, and reachability of the
// embedding/completion backends. Checks distinguish hard failures (nothing
// will work) from warnings (a fallback exists).
package preflight

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/elenchus/platon/internal/config"
	"github.com/elenchus/platon/internal/corpus"
	"github.com/elenchus/platon/internal/provider"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker runs environment validation for a configuration.
type Checker struct {
	cfg *config.Config
}

// New creates a checker for the given configuration.
func New(cfg *config.Config) *Checker {
	return &Checker{cfg: cfg}
}

// RunAll executes every check and returns the results in order.
func (c *Checker) RunAll(ctx context.Context) []CheckResult {
	return []CheckResult{
		c.CheckCorpus(),
		c.CheckDataDir(),
		c.CheckGeminiCredential(),
		c.CheckOllama(ctx),
	}
}

// HasCriticalFailures reports whether any required check failed.
func HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// CheckCorpus verifies the corpus file parses and is non-empty.
// Without the corpus there is nothing to retrieve from, so this is required.
func (c *Checker) CheckCorpus() CheckResult {
	result := CheckResult{Name: "corpus", Required: true}

	entries, err := corpus.Load(c.cfg.Paths.CorpusPath)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot load %s: %v", c.cfg.Paths.CorpusPath, err)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d entries at %s", len(entries), c.cfg.Paths.CorpusPath)
	return result
}

// CheckDataDir verifies the data directory is writable.
// Failure is a warning, not an error: the index manager falls back to an
// in-memory index when persistence is unavailable.
func (c *Checker) CheckDataDir() CheckResult {
	result := CheckResult{Name: "data-dir"}

	if err := os.MkdirAll(c.cfg.Paths.DataDir, 0o755); err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot create %s, indexes will not persist: %v", c.cfg.Paths.DataDir, err)
		return result
	}

	probe := filepath.Join(c.cfg.Paths.DataDir, ".write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s is not writable, indexes will not persist: %v", c.cfg.Paths.DataDir, err)
		return result
	}
	_ = os.Remove(probe)

	result.Status = StatusPass
	result.Message = c.cfg.Paths.DataDir
	return result
}

// CheckGeminiCredential verifies the Gemini API key is present.
// A missing key only blocks the gemini provider, so this is a warning.
func (c *Checker) CheckGeminiCredential() CheckResult {
	result := CheckResult{Name: "gemini-credential"}

	if os.Getenv(provider.GoogleAPIKeyEnv) == "" {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s not set, the gemini provider is unavailable", provider.GoogleAPIKeyEnv)
		return result
	}

	result.Status = StatusPass
	result.Message = provider.GoogleAPIKeyEnv + " is set"
	return result
}

// CheckOllama verifies the local model server responds.
// Unreachable Ollama degrades the local providers to static embeddings, so
// this is a warning.
func (c *Checker) CheckOllama(ctx context.Context) CheckResult {
	result := CheckResult{Name: "ollama"}

	host := os.Getenv(provider.OllamaHostEnv)
	if host == "" {
		host = "http://localhost:11434"
	}

	reqCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, host+"/api/tags", nil)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("invalid host %s: %v", host, err)
		return result
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s unreachable, local providers fall back to static embeddings", host)
		return result
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s returned status %d", host, resp.StatusCode)
		return result
	}

	result.Status = StatusPass
	result.Message = host
	return result
}
