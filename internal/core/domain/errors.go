package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates missing or invalid credentials, project,
	// model or provider selection. Retrying will not help.
	ErrConfiguration = errors.New("configuration error")

	// ErrProvider indicates the embedding or generation provider failed.
	// Use errors.As with *ProviderError for the failure kind.
	ErrProvider = errors.New("provider error")

	// ErrEmptyDocument indicates the document produced no text and no chunks.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrNoRelevantContext indicates retrieval returned nothing for a query.
	// This is a normal outcome, not a failure.
	ErrNoRelevantContext = errors.New("no relevant context")

	// ErrDimensionMismatch indicates a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// Session Errors.

	// ErrIndexNotReady indicates no document has been indexed yet.
	ErrIndexNotReady = errors.New("no document indexed")

	// ErrBuildInProgress indicates an index build is already running.
	ErrBuildInProgress = errors.New("index build in progress")

	// ErrQueryInProgress indicates a query is already being answered.
	ErrQueryInProgress = errors.New("query in progress")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
