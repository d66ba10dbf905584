// Package errors provides structured error handling for platon.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration and provider errors
//   - 2XX: Corpus and upload IO errors
//   - 3XX: Network errors (remote embedding/completion APIs)
//   - 4XX: Validation errors
//   - 5XX: Internal and persistence errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration and provider resolution errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates corpus file and upload I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates remote API errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort the request.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the caller can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config and provider errors (100-199)
	ErrCodeConfigInvalid       = "ERR_101_CONFIG_INVALID"
	ErrCodeUnsupportedProvider = "ERR_102_UNSUPPORTED_PROVIDER"
	ErrCodeMissingCredential   = "ERR_103_MISSING_CREDENTIAL"

	// Corpus and upload IO errors (200-299)
	ErrCodeCorpusLoad       = "ERR_201_CORPUS_LOAD"
	ErrCodeCorpusEmpty      = "ERR_202_CORPUS_EMPTY"
	ErrCodeUploadExtraction = "ERR_203_UPLOAD_EXTRACTION"
	ErrCodeCorruptIndex     = "ERR_204_CORRUPT_INDEX"

	// Network errors (300-399)
	ErrCodeEmbeddingAPI  = "ERR_301_EMBEDDING_API"
	ErrCodeCompletionAPI = "ERR_302_COMPLETION_API"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeDimensionMismatch = "ERR_402_DIMENSION_MISMATCH"
	ErrCodeQueryEmpty        = "ERR_403_QUERY_EMPTY"

	// Internal and persistence errors (500-599)
	ErrCodeInternal         = "ERR_501_INTERNAL"
	ErrCodeIndexPersistence = "ERR_502_INDEX_PERSISTENCE"
	ErrCodeIndexLocked      = "ERR_503_INDEX_LOCKED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Corpus load failure, provider resolution failure, and credential absence
// abort the whole index-acquisition call. Upload extraction and persistence
// failures degrade the call instead of aborting it.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorpusLoad, ErrCodeCorpusEmpty, ErrCodeUnsupportedProvider,
		ErrCodeMissingCredential, ErrCodeCorruptIndex, ErrCodeDimensionMismatch:
		return SeverityFatal
	case ErrCodeUploadExtraction, ErrCodeIndexPersistence:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeEmbeddingAPI, ErrCodeCompletionAPI, ErrCodeIndexLocked:
		return true
	default:
		return false
	}
}
