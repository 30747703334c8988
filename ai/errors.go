package ai

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbeddingProvider wraps failures reported by the embedding service.
	ErrEmbeddingProvider = errors.New("embedding provider failed")

	// ErrEmptyEmbedding is returned when the provider answers with no vector.
	ErrEmptyEmbedding = errors.New("embedding provider returned an empty vector")
)
