// Package ragerr provides the closed error taxonomy the retrieval
// engine uses to surface failures: every error the engine returns is
// either a *ragerr.Error with one of the Kind values below, or an
// error wrapped from an external collaborator (embedding/LLM provider,
// vector store driver) that callers can still errors.As into a
// *ragerr.Error via Unwrap.
package ragerr

import (
	"errors"
	"fmt"
)

// Kind is one entry of the closed taxonomy from spec section 7.
type Kind string

const (
	// Loading
	KindUnsupportedFileType Kind = "unsupported_file_type"
	KindLoadingFailed       Kind = "loading_failed"
	KindInvalidData         Kind = "invalid_data"

	// Chunking
	KindChunkingFailed Kind = "chunking_failed"
	KindEmptyDocument  Kind = "empty_document"

	// Embedding
	KindEmbeddingFailed              Kind = "embedding_failed"
	KindEmbeddingDimensionMismatch   Kind = "embedding_dimension_mismatch"
	KindEmbeddingModelMismatch       Kind = "embedding_model_mismatch"
	KindEmbeddingProviderUnavailable Kind = "embedding_provider_unavailable"
	KindRateLimited                  Kind = "rate_limited"

	// Vector store
	KindVectorStoreUnavailable      Kind = "vector_store_unavailable"
	KindVectorStoreConnectionFailed Kind = "vector_store_connection_failed"
	KindIndexNotFound               Kind = "index_not_found"
	KindInsertionFailed             Kind = "insertion_failed"
	KindSearchFailed                Kind = "search_failed"

	// Retrieval
	KindRetrievalFailed Kind = "retrieval_failed"
	KindNoResultsFound  Kind = "no_results_found"

	// Generation
	KindGenerationFailed       Kind = "generation_failed"
	KindLLMProviderUnavailable Kind = "llm_provider_unavailable"
	KindContextTooLong         Kind = "context_too_long"

	// Configuration
	KindInvalidConfiguration     Kind = "invalid_configuration"
	KindMissingRequiredComponent Kind = "missing_required_component"
)

// retryableKinds are kinds whose underlying cause is typically
// transient (a rate limit, a dropped connection, a provider blip) and
// worth retrying with backoff. Everything else - bad input, invalid
// config, missing components - won't succeed on retry.
var retryableKinds = map[Kind]bool{
	KindRateLimited:                  true,
	KindVectorStoreConnectionFailed:  true,
	KindVectorStoreUnavailable:       true,
	KindEmbeddingProviderUnavailable: true,
	KindLLMProviderUnavailable:       true,
}

// Error is the engine's structured error type, modeled on the
// category/severity/cause shape every component needs to report a
// failure with enough context to act on.
type Error struct {
	Kind      Kind
	Message   string
	Cause     error
	Details   map[string]string
	Retryable bool
}

// New creates an Error with the given kind and message. Retryable is
// derived from the kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Retryable: retryableKinds[kind]}
}

// Wrap creates an Error from an existing error, preserving it as
// Cause. Retryable is derived from the kind. Returns nil if err is
// nil.
func Wrap(kind Kind, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err, Retryable: retryableKinds[kind]}
}

// Loading creates a document-loading error.
func Loading(message string, cause error) *Error { return Wrap(KindLoadingFailed, message, cause) }

// Chunking creates a chunking error.
func Chunking(message string, cause error) *Error { return Wrap(KindChunkingFailed, message, cause) }

// Embedding creates an embedding-provider error.
func Embedding(message string, cause error) *Error {
	return Wrap(KindEmbeddingFailed, message, cause)
}

// Store creates a vector-store error.
func Store(message string, cause error) *Error {
	return Wrap(KindVectorStoreUnavailable, message, cause)
}

// Retrieval creates a retrieval error.
func Retrieval(message string, cause error) *Error {
	return Wrap(KindRetrievalFailed, message, cause)
}

// Generation creates an LLM-generation error.
func Generation(message string, cause error) *Error {
	return Wrap(KindGenerationFailed, message, cause)
}

// Config creates a configuration error. Configuration errors are
// never retryable, regardless of cause.
func Config(message string, cause error) *Error {
	e := Wrap(KindInvalidConfiguration, message, cause)
	if e == nil {
		e = New(KindInvalidConfiguration, message)
	}
	e.Retryable = false
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is enables errors.Is(err, &Error{Kind: ...}) to match by kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithDetail attaches a key-value detail and returns the receiver for
// chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Sentinel returns an *Error carrying only a Kind, suitable for
// errors.Is(err, ragerr.Sentinel(KindNoResultsFound)).
func Sentinel(kind Kind) *Error { return &Error{Kind: kind} }

// GetKind extracts the Kind from err if it is (or wraps) a *Error.
func GetKind(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsRetryable reports whether err is (or wraps) a *Error whose Kind is
// one callers should retry with backoff.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
