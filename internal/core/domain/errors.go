package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document type or normaliser.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoContent indicates a source produced no usable text.
	ErrNoContent = errors.New("no content")

	// ErrDimensionMismatch indicates an embedding whose size differs from
	// the dimension recorded on its collection.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCheckInProgress indicates an update check is already running.
	ErrCheckInProgress = errors.New("update check in progress")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer generation and topology diagrams are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and vector retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not open.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrRateLimited indicates a remote site rejected the request for rate.
	ErrRateLimited = errors.New("rate limited")
)
