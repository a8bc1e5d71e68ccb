package driving

import (
	"context"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

// IngestService classifies, validates, embeds and indexes chunk
// candidates. The hierarchy classifier runs before any upsert; every
// chunk either passes validation or appears in the report.
type IngestService interface {
	// IngestArticles indexes law-article chunks into the article
	// collection, returning the validation report.
	IngestArticles(ctx context.Context, candidates []domain.DocumentChunk) (domain.ValidationReport, error)

	// IngestTerms indexes legal-terminology chunks into the term
	// collection.
	IngestTerms(ctx context.Context, candidates []domain.DocumentChunk) (domain.ValidationReport, error)
}
