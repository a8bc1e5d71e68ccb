package services

import (
	"context"
	"fmt"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driving"
	"github.com/kanun-labs/kanunqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize bounds one embedding request.
const embedBatchSize = 64

// IngestService runs candidates through classification, validation,
// embedding and indexing. The classifier runs before any upsert; a chunk
// with an out-of-range reference is fatal to that chunk and reported,
// never retried. Quality issues are reported but do not block indexing.
type IngestService struct {
	classifier *HierarchyClassifier
	embedder   driven.EmbeddingService
	articles   driven.VectorStore
	terms      driven.VectorStore
}

// NewIngestService creates the ingestion pipeline.
func NewIngestService(
	classifier *HierarchyClassifier,
	embedder driven.EmbeddingService,
	articles driven.VectorStore,
	terms driven.VectorStore,
) *IngestService {
	return &IngestService{
		classifier: classifier,
		embedder:   embedder,
		articles:   articles,
		terms:      terms,
	}
}

// IngestArticles classifies, validates and indexes law-article chunks.
func (s *IngestService) IngestArticles(
	ctx context.Context, candidates []domain.DocumentChunk,
) (domain.ValidationReport, error) {
	var report domain.ValidationReport
	if len(candidates) == 0 {
		return report, domain.ErrNoDocuments
	}
	logger.Section("Article Ingestion")

	accepted := make([]domain.DocumentChunk, 0, len(candidates))
	for _, candidate := range candidates {
		chunk, res := s.prepareArticle(candidate)
		report.Add(res)
		if chunk == nil {
			logger.Warn("Chunk %s rejected: %v", candidate.ID, res.Issues)
			continue
		}
		accepted = append(accepted, *chunk)
	}
	if len(accepted) == 0 {
		return report, domain.ErrNoDocuments
	}

	if err := s.embedAndUpsert(ctx, s.articles, accepted); err != nil {
		return report, err
	}
	logger.Info("Indexed %d/%d article chunks", len(accepted), len(candidates))
	return report, nil
}

// prepareArticle enriches one candidate's metadata and classifies it.
// A nil chunk means the candidate was fatally rejected.
func (s *IngestService) prepareArticle(candidate domain.DocumentChunk) (*domain.DocumentChunk, domain.ValidationResult) {
	chunk := candidate
	chunk.Metadata.Type = domain.ChunkTypeArticle

	refs := []int{chunk.Metadata.Number}
	if chunk.Metadata.Number == 0 {
		refs = s.classifier.ExtractReferences(chunk.Content)
	}

	level, err := s.classifier.Classify(refs)
	if err != nil {
		return nil, domain.ValidationResult{
			ChunkID: chunk.ID,
			Issues: []domain.Issue{{
				Kind:     domain.IssueOutOfRangeReference,
				Severity: domain.SeverityError,
				Detail:   err.Error(),
			}},
		}
	}
	chunk.Metadata.HierarchyLevel = level

	if len(chunk.Metadata.LegalTerms) == 0 {
		chunk.Metadata.LegalTerms = s.classifier.ExtractLegalTerms(chunk.Content)
	}
	if len(chunk.Metadata.Topics) == 0 {
		chunk.Metadata.Topics = s.classifier.IdentifyTopics(chunk.Content)
	}

	res := s.classifier.ValidateContentQuality(chunk)
	return &chunk, res
}

// IngestTerms indexes legal-terminology chunks. Terms carry no article
// references, so they classify as blog_only.
func (s *IngestService) IngestTerms(
	ctx context.Context, candidates []domain.DocumentChunk,
) (domain.ValidationReport, error) {
	var report domain.ValidationReport
	if len(candidates) == 0 {
		return report, domain.ErrNoDocuments
	}
	logger.Section("Term Ingestion")

	accepted := make([]domain.DocumentChunk, 0, len(candidates))
	for _, candidate := range candidates {
		chunk := candidate
		chunk.Metadata.Type = domain.ChunkTypeTerm

		level, err := s.classifier.Classify(nil)
		if err != nil {
			// Classify(nil) cannot fail; keep the invariant visible.
			return report, err
		}
		chunk.Metadata.HierarchyLevel = level

		res := domain.ValidationResult{ChunkID: chunk.ID, Passed: true}
		if chunk.Metadata.Term == "" {
			res.Passed = false
			res.Issues = append(res.Issues, domain.Issue{
				Kind:     domain.IssueMissingLegalTerms,
				Severity: domain.SeverityError,
				Detail:   "term chunk without a headword",
			})
			report.Add(res)
			continue
		}
		report.Add(res)
		accepted = append(accepted, chunk)
	}
	if len(accepted) == 0 {
		return report, domain.ErrNoDocuments
	}

	if err := s.embedAndUpsert(ctx, s.terms, accepted); err != nil {
		return report, err
	}
	logger.Info("Indexed %d/%d term chunks", len(accepted), len(candidates))
	return report, nil
}

// embedAndUpsert batches embedding generation and writes the chunks.
func (s *IngestService) embedAndUpsert(
	ctx context.Context, store driven.VectorStore, chunks []domain.DocumentChunk,
) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Content
		}
		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embed batch: got %d embeddings for %d chunks", len(embeddings), len(batch))
		}
		for i := range batch {
			batch[i].Embedding = embeddings[i]
		}

		if err := store.Upsert(ctx, batch); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
	}
	return nil
}
