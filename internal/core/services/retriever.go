package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
	"github.com/kanun-labs/kanunqa/internal/logger"
)

// Retry defaults for transient store failures.
const (
	DefaultTopK        = 5
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = 100 * time.Millisecond
)

// MultiQueryRetriever decomposes a question into sub-queries, fans them
// out concurrently against the article and term collections, and merges
// the results into a single ranked, deduplicated set.
type MultiQueryRetriever struct {
	embedder    driven.EmbeddingService
	articles    driven.VectorStore
	terms       driven.VectorStore
	decomposer  Decomposer
	maxRetries  int
	baseBackoff time.Duration
}

// RetrieverOption configures a MultiQueryRetriever.
type RetrieverOption func(*MultiQueryRetriever)

// WithDecomposer overrides the decomposition strategy.
func WithDecomposer(d Decomposer) RetrieverOption {
	return func(r *MultiQueryRetriever) {
		if d != nil {
			r.decomposer = d
		}
	}
}

// WithRetry overrides the transient-failure retry policy.
func WithRetry(maxRetries int, baseBackoff time.Duration) RetrieverOption {
	return func(r *MultiQueryRetriever) {
		if maxRetries >= 0 {
			r.maxRetries = maxRetries
		}
		if baseBackoff > 0 {
			r.baseBackoff = baseBackoff
		}
	}
}

// NewMultiQueryRetriever creates a retriever over the article and term
// collections. Dependencies are explicit: no shared global clients.
func NewMultiQueryRetriever(
	embedder driven.EmbeddingService,
	articles driven.VectorStore,
	terms driven.VectorStore,
	opts ...RetrieverOption,
) *MultiQueryRetriever {
	r := &MultiQueryRetriever{
		embedder:    embedder,
		articles:    articles,
		terms:       terms,
		decomposer:  NewConjunctionDecomposer(DefaultMaxSubQueries),
		maxRetries:  DefaultMaxRetries,
		baseBackoff: DefaultBaseBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve answers a question with a ranked result set.
//
// Each sub-query is embedded once and searched concurrently against both
// collections. A sub-query whose searches fail after retries is dropped
// and the set is marked degraded; the call fails with
// domain.ErrRetrievalUnavailable only when every sub-query failed.
// An empty merged set is a valid outcome, not an error.
func (r *MultiQueryRetriever) Retrieve(
	ctx context.Context, question string, filter map[string]string, topK int,
) (domain.ResultSet, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.ResultSet{}, fmt.Errorf("%w: empty question", domain.ErrInvalidQuery)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	subQueries := r.decomposer.Decompose(question)
	logger.Section("Multi-Query Retrieval")
	logger.Debug("Question: %q, sub-queries: %d, topK: %d", question, len(subQueries), topK)

	set := domain.ResultSet{SubQueries: subQueries}

	// Fan-out: one goroutine per sub-query. The degree is bounded by the
	// decomposer's cap. Goroutines return an error only for conditions
	// that must fail the whole call (cancellation, invalid filter);
	// transient search failures are recorded and tolerated.
	perQuery := make([][]domain.RetrievalResult, len(subQueries))
	failed := make([]bool, len(subQueries))
	partial := make([]bool, len(subQueries))

	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range subQueries {
		i, sub := i, sub
		g.Go(func() error {
			hits, subPartial, err := r.searchSubQuery(gctx, sub, filter, topK)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidFilter) || gctx.Err() != nil {
					return err
				}
				logger.Warn("Sub-query %q dropped: %v", sub, err)
				failed[i] = true
				return nil
			}
			perQuery[i] = hits
			partial[i] = subPartial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ResultSet{}, err
	}

	allFailed := true
	for i := range subQueries {
		if !failed[i] {
			allFailed = false
		}
		if failed[i] || partial[i] {
			set.Degraded = true
		}
	}
	if allFailed {
		return domain.ResultSet{}, fmt.Errorf("%w: all %d sub-queries failed",
			domain.ErrRetrievalUnavailable, len(subQueries))
	}

	// Fan-in: dedupe by chunk ID keeping the smallest distance, then
	// re-rank ascending with ID tie-break for determinism.
	best := make(map[string]domain.RetrievalResult)
	for _, hits := range perQuery {
		for _, hit := range hits {
			if prev, ok := best[hit.Chunk.ID]; !ok || hit.Distance < prev.Distance {
				best[hit.Chunk.ID] = hit
			}
		}
	}

	merged := make([]domain.RetrievalResult, 0, len(best))
	for _, hit := range best {
		merged = append(merged, hit)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Distance != merged[j].Distance {
			return merged[i].Distance < merged[j].Distance
		}
		return merged[i].Chunk.ID < merged[j].Chunk.ID
	})
	if len(merged) > topK {
		merged = merged[:topK]
	}
	set.Results = merged

	logger.Debug("Merged results: %d (degraded: %t)", len(set.Results), set.Degraded)
	return set, nil
}

// searchSubQuery embeds one sub-query and searches both collections with
// the shared filter and topK. partial is true when exactly one
// collection's search failed after retries and its contribution was
// dropped; the caller surfaces that as a degraded result set.
func (r *MultiQueryRetriever) searchSubQuery(
	ctx context.Context, sub string, filter map[string]string, topK int,
) (hits []domain.RetrievalResult, partial bool, err error) {
	embedding, err := r.embedder.Embed(ctx, sub)
	if err != nil {
		return nil, false, fmt.Errorf("embed sub-query: %w", err)
	}

	q := domain.Query{Text: sub, Embedding: embedding, MetadataFilter: filter, TopK: topK}

	articleHits, articleErr := r.searchWithRetry(ctx, r.articles, q)
	if articleErr != nil && errors.Is(articleErr, domain.ErrInvalidFilter) {
		return nil, false, articleErr
	}
	termHits, termErr := r.searchWithRetry(ctx, r.terms, q)
	if termErr != nil && errors.Is(termErr, domain.ErrInvalidFilter) {
		return nil, false, termErr
	}
	if articleErr != nil && termErr != nil {
		return nil, false, fmt.Errorf("both collections failed: %w", articleErr)
	}
	if articleErr != nil {
		logger.Warn("Article search for %q dropped: %v", sub, articleErr)
	}
	if termErr != nil {
		logger.Warn("Term search for %q dropped: %v", sub, termErr)
	}

	return append(articleHits, termHits...), articleErr != nil || termErr != nil, nil
}

// searchWithRetry retries transient store failures with exponential
// backoff; caller errors are surfaced immediately.
func (r *MultiQueryRetriever) searchWithRetry(
	ctx context.Context, store driven.VectorStore, q domain.Query,
) ([]domain.RetrievalResult, error) {
	var lastErr error
	backoff := r.baseBackoff
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		hits, err := store.Search(ctx, q)
		if err == nil {
			return hits, nil
		}
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		lastErr = err
		logger.Debug("Search attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("after %d attempts: %w", r.maxRetries+1, lastErr)
}
