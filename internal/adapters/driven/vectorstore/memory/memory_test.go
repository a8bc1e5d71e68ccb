package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

func chunk(id string, embedding []float32, meta domain.ChunkMetadata) domain.DocumentChunk {
	return domain.DocumentChunk{
		ID:        id,
		Content:   "içerik " + id,
		Embedding: embedding,
		Metadata:  meta,
	}
}

func TestSearchRanksByCosineDistance(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []domain.DocumentChunk{
		chunk("article_1", []float32{1, 0}, domain.ChunkMetadata{}),
		chunk("article_2", []float32{0, 1}, domain.ChunkMetadata{}),
		chunk("article_3", []float32{1, 1}, domain.ChunkMetadata{}),
	}))

	results, err := store.Search(ctx, domain.Query{Embedding: []float32{1, 0}, TopK: 3})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "article_1", results[0].Chunk.ID)
	assert.InDelta(t, 0, results[0].Distance, 1e-9)
	assert.Equal(t, "article_3", results[1].Chunk.ID)
	assert.Equal(t, "article_2", results[2].Chunk.ID)
	assert.InDelta(t, 1, results[2].Distance, 1e-9)
}

func TestSearchBreaksTiesByID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []domain.DocumentChunk{
		chunk("article_9", []float32{1, 0}, domain.ChunkMetadata{}),
		chunk("article_10", []float32{1, 0}, domain.ChunkMetadata{}),
	}))

	results, err := store.Search(ctx, domain.Query{Embedding: []float32{1, 0}, TopK: 2})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "article_10", results[0].Chunk.ID)
	assert.Equal(t, "article_9", results[1].Chunk.ID)
}

func TestSearchAppliesMetadataFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []domain.DocumentChunk{
		chunk("article_21", []float32{1, 0}, domain.ChunkMetadata{
			Type:           domain.ChunkTypeArticle,
			Number:         21,
			HierarchyLevel: domain.HierarchyGeneralProvisions,
		}),
		chunk("article_142", []float32{1, 0}, domain.ChunkMetadata{
			Type:           domain.ChunkTypeArticle,
			Number:         142,
			HierarchyLevel: domain.HierarchySpecialProvisions,
		}),
	}))

	results, err := store.Search(ctx, domain.Query{
		Embedding:      []float32{1, 0},
		MetadataFilter: map[string]string{"hierarchy_level": "general_provisions"},
		TopK:           5,
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "article_21", results[0].Chunk.ID)
}

func TestSearchRejectsUnknownFilterKey(t *testing.T) {
	store := NewStore()

	_, err := store.Search(context.Background(), domain.Query{
		Embedding:      []float32{1, 0},
		MetadataFilter: map[string]string{"bogus": "x"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)
}

func TestSearchTopKDefaultsAndTruncates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var chunks []domain.DocumentChunk
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		chunks = append(chunks, chunk("article_"+id, []float32{1, 0}, domain.ChunkMetadata{}))
	}
	require.NoError(t, store.Upsert(ctx, chunks))

	results, err := store.Search(ctx, domain.Query{Embedding: []float32{1, 0}})
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = store.Search(ctx, domain.Query{Embedding: []float32{1, 0}, TopK: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestUpsertReplacesByID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []domain.DocumentChunk{
		chunk("article_1", []float32{1, 0}, domain.ChunkMetadata{}),
	}))
	replacement := chunk("article_1", []float32{0, 1}, domain.ChunkMetadata{})
	replacement.Content = "güncellenmiş içerik"
	require.NoError(t, store.Upsert(ctx, []domain.DocumentChunk{replacement}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := store.Search(ctx, domain.Query{Embedding: []float32{0, 1}, TopK: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "güncellenmiş içerik", results[0].Chunk.Content)
	assert.InDelta(t, 0, results[0].Distance, 1e-9)
}

func TestUpsertRejectsEmptyID(t *testing.T) {
	store := NewStore()

	err := store.Upsert(context.Background(), []domain.DocumentChunk{
		chunk("", []float32{1, 0}, domain.ChunkMetadata{}),
	})
	assert.Error(t, err)
}

func TestZeroNormEmbeddingIsMaximallyDissimilar(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []domain.DocumentChunk{
		chunk("article_1", []float32{0, 0}, domain.ChunkMetadata{}),
		chunk("article_2", []float32{1, 0}, domain.ChunkMetadata{}),
	}))

	results, err := store.Search(ctx, domain.Query{Embedding: []float32{1, 0}, TopK: 2})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "article_2", results[0].Chunk.ID)
	assert.Equal(t, 1.0, results[1].Distance)
}
