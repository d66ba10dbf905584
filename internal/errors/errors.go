package errors

import (
	"fmt"
)

// PlatonError is the structured error type for platon.
// It provides rich context for error handling, logging, and user presentation.
type PlatonError struct {
	// Code is the unique error code (e.g., "ERR_201_CORPUS_LOAD").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *PlatonError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *PlatonError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with PlatonError.
func (e *PlatonError) Is(target error) bool {
	if t, ok := target.(*PlatonError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *PlatonError) WithDetail(key, value string) *PlatonError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *PlatonError) WithSuggestion(suggestion string) *PlatonError {
	e.Suggestion = suggestion
	return e
}

// New creates a new PlatonError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *PlatonError {
	return &PlatonError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a PlatonError from an existing error.
// The error's message becomes the PlatonError message.
func Wrap(code string, err error) *PlatonError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// CorpusLoadError creates a fatal corpus loading error.
func CorpusLoadError(message string, cause error) *PlatonError {
	return New(ErrCodeCorpusLoad, message, cause)
}

// UnsupportedProviderError creates an error for an unknown provider name.
func UnsupportedProviderError(name string) *PlatonError {
	return New(ErrCodeUnsupportedProvider, fmt.Sprintf("unsupported provider: %q", name), nil).
		WithSuggestion("run 'platon status' to list registered providers")
}

// MissingCredentialError creates an error for an absent API key.
func MissingCredentialError(provider, envVar string) *PlatonError {
	return New(ErrCodeMissingCredential,
		fmt.Sprintf("provider %q requires %s to be set", provider, envVar), nil).
		WithDetail("provider", provider).
		WithDetail("env_var", envVar).
		WithSuggestion(fmt.Sprintf("export %s or add it to .env", envVar))
}

// UploadExtractionError creates a recoverable per-file extraction error.
func UploadExtractionError(file string, cause error) *PlatonError {
	return Wrap(ErrCodeUploadExtraction, cause).WithDetail("file", file)
}

// PersistenceError creates a recoverable index persistence error.
// Callers fall back to an in-memory index when they see this code.
func PersistenceError(message string, cause error) *PlatonError {
	return New(ErrCodeIndexPersistence, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if pe, ok := err.(*PlatonError); ok {
		return pe.Severity == SeverityFatal
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if pe, ok := err.(*PlatonError); ok {
		return pe.Retryable
	}
	return false
}

// GetCode extracts the error code from a PlatonError.
// Returns empty string if not a PlatonError.
func GetCode(err error) string {
	if pe, ok := err.(*PlatonError); ok {
		return pe.Code
	}
	return ""
}

// GetCategory extracts the category from a PlatonError.
// Returns empty string if not a PlatonError.
func GetCategory(err error) Category {
	if pe, ok := err.(*PlatonError); ok {
		return pe.Category
	}
	return ""
}
