package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
)

// fakeEmbedder returns a fixed vector for every text.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

func (f *fakeEmbedder) ModelName() string { return "fake-embedder" }

func (f *fakeEmbedder) Ping(ctx context.Context) error { return nil }

func (f *fakeEmbedder) Close() error { return nil }

// fakeStore answers every search with a fixed hit list. errs, when
// non-empty, is consumed one entry per Search call before hits are
// served; fail, when set, decides per query and is checked first.
type fakeStore struct {
	mu    sync.Mutex
	hits  []domain.RetrievalResult
	errs  []error
	fail  func(q domain.Query) error
	calls int
}

func (f *fakeStore) Upsert(ctx context.Context, chunks []domain.DocumentChunk) error { return nil }

func (f *fakeStore) Search(ctx context.Context, q domain.Query) ([]domain.RetrievalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		if err := f.fail(q); err != nil {
			return nil, err
		}
	}
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := f.hits
	if q.TopK > 0 && len(out) > q.TopK {
		out = out[:q.TopK]
	}
	return out, nil
}

func (f *fakeStore) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hits), nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) searchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var (
	_ driven.EmbeddingService = (*fakeEmbedder)(nil)
	_ driven.VectorStore      = (*fakeStore)(nil)
)

func hit(id string, distance float64) domain.RetrievalResult {
	return domain.RetrievalResult{
		Chunk:    domain.DocumentChunk{ID: id, Content: "içerik " + id},
		Distance: distance,
	}
}

// fixedDecomposer returns a scripted decomposition regardless of input.
type fixedDecomposer struct {
	subQueries []string
}

func (d *fixedDecomposer) Decompose(question string) []string { return d.subQueries }

func TestRetrieveRejectsEmptyQuestion(t *testing.T) {
	r := NewMultiQueryRetriever(&fakeEmbedder{}, &fakeStore{}, &fakeStore{})

	_, err := r.Retrieve(context.Background(), "   ", nil, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestRetrieveMergesBothCollections(t *testing.T) {
	articles := &fakeStore{hits: []domain.RetrievalResult{hit("article_81", 0.2), hit("article_82", 0.4)}}
	terms := &fakeStore{hits: []domain.RetrievalResult{hit("term_kast", 0.3)}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, terms)

	set, err := r.Retrieve(context.Background(), "Kasten öldürme nedir", nil, 5)
	require.NoError(t, err)

	assert.False(t, set.Degraded)
	assert.Equal(t, []string{"Kasten öldürme nedir"}, set.SubQueries)
	require.Len(t, set.Results, 3)
	assert.Equal(t, "article_81", set.Results[0].Chunk.ID)
	assert.Equal(t, "term_kast", set.Results[1].Chunk.ID)
	assert.Equal(t, "article_82", set.Results[2].Chunk.ID)
}

func TestRetrieveDeduplicatesKeepingSmallestDistance(t *testing.T) {
	articles := &fakeStore{hits: []domain.RetrievalResult{hit("article_1", 0.5), hit("article_1", 0.1)}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, &fakeStore{},
		WithDecomposer(&fixedDecomposer{subQueries: []string{"soru", "alt soru"}}))

	set, err := r.Retrieve(context.Background(), "soru ve alt soru", nil, 5)
	require.NoError(t, err)

	require.Len(t, set.Results, 1)
	assert.Equal(t, "article_1", set.Results[0].Chunk.ID)
	assert.Equal(t, 0.1, set.Results[0].Distance)
}

func TestRetrieveBreaksDistanceTiesByID(t *testing.T) {
	articles := &fakeStore{hits: []domain.RetrievalResult{
		hit("article_9", 0.3), hit("article_10", 0.3), hit("article_2", 0.3),
	}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, &fakeStore{})

	set, err := r.Retrieve(context.Background(), "eşit mesafeler", nil, 5)
	require.NoError(t, err)

	require.Len(t, set.Results, 3)
	// Lexicographic ID order on equal distance.
	assert.Equal(t, "article_10", set.Results[0].Chunk.ID)
	assert.Equal(t, "article_2", set.Results[1].Chunk.ID)
	assert.Equal(t, "article_9", set.Results[2].Chunk.ID)
}

func TestRetrieveTruncatesToTopK(t *testing.T) {
	articles := &fakeStore{hits: []domain.RetrievalResult{
		hit("article_1", 0.1), hit("article_2", 0.2), hit("article_3", 0.3),
	}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, &fakeStore{})

	set, err := r.Retrieve(context.Background(), "hırsızlık cezası", nil, 2)
	require.NoError(t, err)

	require.Len(t, set.Results, 2)
	assert.Equal(t, "article_1", set.Results[0].Chunk.ID)
	assert.Equal(t, "article_2", set.Results[1].Chunk.ID)
}

func TestRetrieveDefaultTopK(t *testing.T) {
	var results []domain.RetrievalResult
	for _, id := range []string{"article_1", "article_2", "article_3", "article_4", "article_5", "article_6", "article_7"} {
		results = append(results, hit(id, float64(len(results))*0.1))
	}
	articles := &fakeStore{hits: results}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, &fakeStore{})

	set, err := r.Retrieve(context.Background(), "geniş sonuç kümesi", nil, 0)
	require.NoError(t, err)
	assert.Len(t, set.Results, DefaultTopK)
}

func TestRetrieveDegradedOnPartialFailure(t *testing.T) {
	// Two sub-queries; both collections refuse the second one so its
	// contribution is dropped while the first still answers.
	failSecond := func(q domain.Query) error {
		if q.Text == "ikinci" {
			return domain.ErrStoreUnavailable
		}
		return nil
	}
	articles := &fakeStore{
		hits: []domain.RetrievalResult{hit("article_1", 0.2)},
		fail: failSecond,
	}
	terms := &fakeStore{fail: failSecond}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, terms,
		WithDecomposer(&fixedDecomposer{subQueries: []string{"ilk", "ikinci"}}),
		WithRetry(0, 1))

	set, err := r.Retrieve(context.Background(), "ilk ve ikinci", nil, 5)
	require.NoError(t, err)

	assert.True(t, set.Degraded)
	require.Len(t, set.Results, 1)
	assert.Equal(t, "article_1", set.Results[0].Chunk.ID)
}

func TestRetrieveFailsWhenAllSubQueriesFail(t *testing.T) {
	r := NewMultiQueryRetriever(&fakeEmbedder{err: domain.ErrEmbeddingUnavailable}, &fakeStore{}, &fakeStore{})

	_, err := r.Retrieve(context.Background(), "cevaplanamayan soru", nil, 5)
	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
}

func TestRetrieveInvalidFilterAborts(t *testing.T) {
	articles := &fakeStore{errs: []error{domain.ErrInvalidFilter}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, &fakeStore{})

	_, err := r.Retrieve(context.Background(), "geçersiz filtre", map[string]string{"bogus": "x"}, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
}

func TestRetrieveIsDeterministic(t *testing.T) {
	articles := &fakeStore{hits: []domain.RetrievalResult{
		hit("article_9", 0.3), hit("article_2", 0.3), hit("article_1", 0.1),
	}}
	terms := &fakeStore{hits: []domain.RetrievalResult{
		hit("term_kast", 0.3), hit("term_taksir", 0.2),
	}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, terms,
		WithDecomposer(&fixedDecomposer{subQueries: []string{"soru", "alt soru"}}))

	ids := func(set domain.ResultSet) []string {
		out := make([]string, 0, len(set.Results))
		for _, res := range set.Results {
			out = append(out, res.Chunk.ID)
		}
		return out
	}

	first, err := r.Retrieve(context.Background(), "soru ve alt soru", nil, 5)
	require.NoError(t, err)
	want := ids(first)

	for i := 0; i < 10; i++ {
		set, err := r.Retrieve(context.Background(), "soru ve alt soru", nil, 5)
		require.NoError(t, err)
		assert.Equal(t, want, ids(set))
	}
}

func TestRetrieveEmptyResultSetIsNotAnError(t *testing.T) {
	r := NewMultiQueryRetriever(&fakeEmbedder{}, &fakeStore{}, &fakeStore{})

	set, err := r.Retrieve(context.Background(), "hiç eşleşme yok", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, set.Results)
	assert.False(t, set.Degraded)
}

func TestSearchWithRetryRecoversFromTransientFailure(t *testing.T) {
	articles := &fakeStore{
		hits: []domain.RetrievalResult{hit("article_1", 0.1)},
		errs: []error{domain.ErrStoreUnavailable, domain.ErrStoreUnavailable},
	}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, &fakeStore{}, WithRetry(2, 1))

	set, err := r.Retrieve(context.Background(), "geçici hata", nil, 5)
	require.NoError(t, err)

	require.Len(t, set.Results, 1)
	assert.Equal(t, 3, articles.searchCalls())
	assert.False(t, set.Degraded)
}

func TestSearchWithRetryDoesNotRetryCallerErrors(t *testing.T) {
	articles := &fakeStore{errs: []error{domain.ErrInvalidFilter}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, &fakeStore{}, WithRetry(3, 1))

	_, err := r.Retrieve(context.Background(), "filtre hatası", nil, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	assert.Equal(t, 1, articles.searchCalls())
}

func TestRetrieveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Both collections fail once so the retry loop has to wait out the
	// backoff, where it observes the cancelled context.
	articles := &fakeStore{errs: []error{domain.ErrStoreUnavailable}}
	terms := &fakeStore{errs: []error{domain.ErrStoreUnavailable}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, terms, WithRetry(3, 50*time.Millisecond))

	_, err := r.Retrieve(ctx, "iptal edilen sorgu", nil, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchWithRetryBackoffIsBounded(t *testing.T) {
	articles := &fakeStore{errs: []error{
		domain.ErrStoreUnavailable, domain.ErrStoreUnavailable,
		domain.ErrStoreUnavailable, domain.ErrStoreUnavailable,
	}}
	terms := &fakeStore{}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, terms, WithRetry(1, time.Microsecond))

	start := time.Now()
	set, err := r.Retrieve(context.Background(), "sürekli hata", nil, 5)
	require.NoError(t, err)

	// Articles exhausted both attempts; terms still answered, so the
	// sub-query survives with an empty article contribution and the set
	// is marked degraded.
	assert.Equal(t, 2, articles.searchCalls())
	assert.Empty(t, set.Results)
	assert.True(t, set.Degraded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRetrieveDegradedWhenOneCollectionFails(t *testing.T) {
	articles := &fakeStore{errs: []error{domain.ErrStoreUnavailable}}
	terms := &fakeStore{hits: []domain.RetrievalResult{hit("term_kast", 0.3)}}
	r := NewMultiQueryRetriever(&fakeEmbedder{}, articles, terms, WithRetry(0, 1))

	set, err := r.Retrieve(context.Background(), "tek koleksiyon hatası", nil, 5)
	require.NoError(t, err)

	// The term hits still arrive, but the dropped article contribution
	// must be visible to the caller.
	assert.True(t, set.Degraded)
	require.Len(t, set.Results, 1)
	assert.Equal(t, "term_kast", set.Results[0].Chunk.ID)
}
