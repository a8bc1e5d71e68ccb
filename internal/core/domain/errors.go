package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrOutOfRangeReference indicates a referenced article number lies
	// outside the valid article domain. Fatal to the chunk at ingestion
	// time; reported, never retried.
	ErrOutOfRangeReference = errors.New("article reference out of range")

	// ErrStoreUnavailable indicates the vector store cannot be reached.
	// Transient; callers retry with bounded exponential backoff.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrInvalidFilter indicates a malformed metadata filter.
	// A caller error; surfaced immediately, never retried.
	ErrInvalidFilter = errors.New("invalid metadata filter")

	// ErrRetrievalUnavailable indicates every sub-query search failed.
	// Surfaced as a user-visible "temporarily unable to search" condition.
	ErrRetrievalUnavailable = errors.New("retrieval temporarily unavailable")

	// ErrGenerationUnavailable indicates the generation service failed
	// after one retry. Retrieval sources are still returned for partial
	// value.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrInvalidQuery indicates an empty or malformed question.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNoDocuments indicates ingestion input contained no usable chunks.
	ErrNoDocuments = errors.New("no documents to ingest")
)
