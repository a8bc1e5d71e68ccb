package driving

import (
	"context"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

// QAService answers natural-language legal questions.
type QAService interface {
	// AskQuestion retrieves relevant law articles and terminology,
	// assembles a bounded context and generates an answer with sources,
	// confidence and processing time. Sources may be empty but are never
	// absent.
	AskQuestion(ctx context.Context, question string, filter map[string]string, topK int) (domain.Answer, error)
}
