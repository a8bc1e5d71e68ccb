// Package memory provides an in-memory vector store using brute-force
// cosine distance. Intended for tests and small corpora.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kanun-labs/kanunqa/internal/adapters/driven/vectorstore"
	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps chunks and their embeddings in process memory.
type Store struct {
	mu     sync.RWMutex
	chunks map[string]domain.DocumentChunk
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{chunks: make(map[string]domain.DocumentChunk)}
}

// Upsert stores chunks, replacing existing IDs wholesale.
func (s *Store) Upsert(_ context.Context, chunks []domain.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("memory: chunk without ID")
		}
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// Search ranks all matching chunks by ascending cosine distance to the
// query embedding. Ties are broken by chunk ID ascending.
func (s *Store) Search(_ context.Context, q domain.Query) ([]domain.RetrievalResult, error) {
	if err := vectorstore.ValidateFilter(q.MetadataFilter); err != nil {
		return nil, err
	}
	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.RetrievalResult, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		if !vectorstore.MatchesFilter(chunk.Metadata, q.MetadataFilter) {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Chunk:    chunk,
			Distance: cosineDistance(q.Embedding, chunk.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// cosineDistance is 1 - cosine similarity. Zero-norm vectors are treated
// as maximally dissimilar within the valid similarity range.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
