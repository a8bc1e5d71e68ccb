package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driving"
	"github.com/kanun-labs/kanunqa/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.QAService = (*QAService)(nil)

// maxCosineDistance bounds cosine distance over unit vectors; used to
// normalise the confidence score into [0,1].
const maxCosineDistance = 2.0

// enumerationCues signal that a question expects an enumerated or
// sectioned answer.
var enumerationCues = regexp.MustCompile(`(?i)nelerdir|hangileri|hangi durumlarda|kaç |sayınız|sırala|listele|\d+\)`)

// multiClause detects questions combining several clauses.
var multiClause = regexp.MustCompile(`\s+(?:ve|veya|ya da)\s+|;`)

// Retriever is the retrieval engine consumed by the orchestrator.
type Retriever interface {
	Retrieve(ctx context.Context, question string, filter map[string]string, topK int) (domain.ResultSet, error)
}

// QAService orchestrates retrieval, context assembly and generation into
// a final answer with sources and a confidence score.
type QAService struct {
	retriever Retriever
	assembler *ContextAssembler
	llm       driven.LLMService
	budget    int
	genOpts   driven.GenerateOptions
}

// QAOption configures a QAService.
type QAOption func(*QAService)

// WithContextBudget overrides the assembled-context budget (runes).
func WithContextBudget(budget int) QAOption {
	return func(s *QAService) {
		if budget > 0 {
			s.budget = budget
		}
	}
}

// WithGenerateOptions overrides the generation parameters.
func WithGenerateOptions(opts driven.GenerateOptions) QAOption {
	return func(s *QAService) { s.genOpts = opts }
}

// NewQAService creates the orchestrator. The LLM service is the single
// external generation capability; it is required.
func NewQAService(retriever Retriever, assembler *ContextAssembler, llm driven.LLMService, opts ...QAOption) *QAService {
	s := &QAService{
		retriever: retriever,
		assembler: assembler,
		llm:       llm,
		budget:    DefaultContextBudget,
		genOpts:   driven.GenerateOptions{MaxTokens: 1024},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AskQuestion answers a legal question end to end: retrieve, assemble,
// generate. Sources are always present on the answer, even when empty or
// when generation fails.
func (s *QAService) AskQuestion(
	ctx context.Context, question string, filter map[string]string, topK int,
) (domain.Answer, error) {
	start := time.Now()

	set, err := s.retriever.Retrieve(ctx, question, filter, topK)
	if err != nil {
		return domain.Answer{}, err
	}

	assembled := s.assembler.Assemble(set.Results, s.budget)
	answer, err := s.answer(ctx, question, assembled, set)
	answer.ProcessingTimeSeconds = time.Since(start).Seconds()
	return answer, err
}

// answer runs generation over an already-assembled context. Empty sources
// short-circuit to the insufficient-context answer without invoking
// generation.
func (s *QAService) answer(
	ctx context.Context, question string, assembled domain.AssembledContext, set domain.ResultSet,
) (domain.Answer, error) {
	answer := domain.Answer{
		Sources:  set.Results,
		Degraded: set.Degraded,
	}
	if answer.Sources == nil {
		answer.Sources = []domain.RetrievalResult{}
	}

	if len(set.Results) == 0 {
		answer.Text = domain.InsufficientContextAnswer
		answer.Confidence = 0
		logger.Info("No sources retrieved, returning insufficient-context answer")
		return answer, nil
	}

	answer.Template = SelectTemplate(question, len(set.SubQueries))
	answer.Confidence = confidence(assembled, set.Results)

	prompt := answer.Template.Render(assembled.Text, question)
	logger.Debug("Template: %s, confidence: %.3f, prompt: %d chars",
		answer.Template, answer.Confidence, len(prompt))

	text, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		// Sources stay on the answer for diagnostic value.
		return answer, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	answer.Text = text
	return answer, nil
}

// generateWithRetry performs the single generation call, retried once
// with identical input.
func (s *QAService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	text, err := s.llm.Generate(ctx, prompt, s.genOpts)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	logger.Warn("Generation failed, retrying once: %v", err)
	return s.llm.Generate(ctx, prompt, s.genOpts)
}

// SelectTemplate picks the prompt variant from observable question and
// retrieval features. Pure function: no hidden heuristic state.
func SelectTemplate(question string, subQueryCount int) domain.PromptTemplateKind {
	if enumerationCues.MatchString(question) {
		return domain.PromptStructured
	}
	if multiClause.MatchString(question) && len(strings.Fields(question)) >= 6 {
		return domain.PromptStructured
	}
	if subQueryCount > 1 {
		return domain.PromptMultiStep
	}
	return domain.PromptBasic
}

// confidence derives the answer confidence from the distances of the
// sources actually included in the context: 1 minus the normalised mean
// distance, clamped to [0,1]. Monotonic: uniformly smaller distances
// never lower the score.
func confidence(assembled domain.AssembledContext, sources []domain.RetrievalResult) float64 {
	included := make(map[string]bool, len(assembled.IncludedChunkIDs))
	for _, id := range assembled.IncludedChunkIDs {
		included[id] = true
	}

	var sum float64
	var n int
	for _, src := range sources {
		if len(included) > 0 && !included[src.Chunk.ID] {
			continue
		}
		sum += src.Distance
		n++
	}
	if n == 0 {
		// Budget too small for any block; fall back to all sources.
		for _, src := range sources {
			sum += src.Distance
			n++
		}
	}
	if n == 0 {
		return 0
	}

	score := 1 - (sum/float64(n))/maxCosineDistance
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// FormatCitations renders sources as structural references with a coarse
// relevance indicator bucketed from distance.
func FormatCitations(sources []domain.RetrievalResult) []domain.Citation {
	citations := make([]domain.Citation, 0, len(sources))
	for _, src := range sources {
		citations = append(citations, domain.Citation{
			Reference: src.Chunk.Reference(),
			Relevance: relevanceLabel(src.Distance),
			Distance:  src.Distance,
		})
	}
	return citations
}

func relevanceLabel(distance float64) string {
	switch {
	case distance < 0.5:
		return "yüksek"
	case distance < 1.0:
		return "orta"
	default:
		return "düşük"
	}
}
