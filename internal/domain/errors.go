package domain

import "errors"

var (
	// ErrResourceUnavailable signals that a required backing resource
	// (vector index, model endpoint) is missing or not yet constructed.
	// Callers may retry later; the process stays up.
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrGenerationFailure signals that the generation model failed during
	// execution. Not retried by the pipeline.
	ErrGenerationFailure = errors.New("generation failure")
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTimeout signals that retrieval or generation exceeded the
	// caller-visible deadline.
	ErrTimeout = errors.New("timeout")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
