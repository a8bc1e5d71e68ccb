package driven

import (
	"context"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

// VectorStore persists embedded chunks and supports filtered similarity
// search over one collection.
//
// Error contract: transient unavailability is reported as
// domain.ErrStoreUnavailable (wrapped) and is retried by the caller;
// a malformed filter is domain.ErrInvalidFilter and is never retried.
type VectorStore interface {
	// Upsert stores chunks with their embeddings. Re-upserting an existing
	// ID replaces content and embedding atomically from the caller's
	// perspective; at-least-once delivery is acceptable.
	Upsert(ctx context.Context, chunks []domain.DocumentChunk) error

	// Search returns at most q.TopK results ordered by ascending distance.
	// When q.MetadataFilter is present every returned chunk satisfies all
	// filter equalities. Distance ties are broken by chunk ID ascending so
	// results are deterministic.
	Search(ctx context.Context, q domain.Query) ([]domain.RetrievalResult, error)

	// Count returns the number of chunks in the collection.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
