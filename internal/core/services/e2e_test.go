package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanun-labs/kanunqa/internal/adapters/driven/vectorstore/memory"
	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
	"github.com/kanun-labs/kanunqa/internal/core/services"
)

// keywordEmbedder maps texts onto a fixed vocabulary axis per keyword,
// giving deterministic, inspectable similarity.
type keywordEmbedder struct{}

var vocabulary = []string{"öldür", "hırsız", "kast", "müdafaa"}

func (keywordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vec := make([]float32, len(vocabulary)+1)
	vec[0] = 0.1
	for i, word := range vocabulary {
		vec[i+1] = float32(strings.Count(lower, word))
	}
	return vec, nil
}

func (e keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (keywordEmbedder) Dimensions() int { return len(vocabulary) + 1 }

func (keywordEmbedder) ModelName() string { return "keyword-embedder" }

func (keywordEmbedder) Ping(ctx context.Context) error { return nil }

func (keywordEmbedder) Close() error { return nil }

type echoLLM struct{}

func (echoLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return "Kasten öldürmenin cezası müebbet hapistir.", nil
}

func (echoLLM) ModelName() string { return "echo-llm" }

func (echoLLM) Ping(ctx context.Context) error { return nil }

func (echoLLM) Close() error { return nil }

func TestQuestionAnsweringEndToEnd(t *testing.T) {
	ctx := context.Background()
	articles := memory.NewStore()
	terms := memory.NewStore()
	embedder := keywordEmbedder{}

	ingest := services.NewIngestService(services.NewHierarchyClassifier(nil), embedder, articles, terms)

	report, err := ingest.IngestArticles(ctx, []domain.DocumentChunk{
		{
			ID: "article_81",
			Content: "Madde 81: Bir insanı kasten öldüren kişi müebbet hapis cezası ile cezalandırılır. " +
				"Suçun soruşturması resen yürütülür.",
			Metadata: domain.ChunkMetadata{Number: 81},
		},
		{
			ID: "article_141",
			Content: "Madde 141: Zilyedinin rızası olmadan taşınır bir malı kendisine yarar sağlamak " +
				"maksadıyla alan hırsız hakkında hapis cezasına hükmolunur.",
			Metadata: domain.ChunkMetadata{Number: 141},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.TotalArticles)
	assert.Zero(t, report.Summary.ArticlesWithIssues)

	_, err = ingest.IngestTerms(ctx, []domain.DocumentChunk{
		{
			ID:       "term_kast",
			Content:  "kast: suçun kanuni tanımındaki unsurların bilerek ve istenerek gerçekleştirilmesi.",
			Metadata: domain.ChunkMetadata{Term: "kast"},
		},
	})
	require.NoError(t, err)

	retriever := services.NewMultiQueryRetriever(embedder, articles, terms)
	qa := services.NewQAService(retriever, services.NewContextAssembler(), echoLLM{})

	answer, err := qa.AskQuestion(ctx, "Kasten öldürmenin cezası nedir", nil, 3)
	require.NoError(t, err)

	assert.Equal(t, "Kasten öldürmenin cezası müebbet hapistir.", answer.Text)
	assert.False(t, answer.Degraded)
	assert.Greater(t, answer.Confidence, 0.0)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "article_81", answer.Sources[0].Chunk.ID)

	// The murder article outranks the theft article for this question.
	var theftRank, murderRank int
	for i, src := range answer.Sources {
		switch src.Chunk.ID {
		case "article_81":
			murderRank = i
		case "article_141":
			theftRank = i
		}
	}
	assert.Less(t, murderRank, theftRank)

	// Stores answer counts after full-replace re-ingestion.
	_, err = ingest.IngestArticles(ctx, []domain.DocumentChunk{
		{
			ID: "article_81",
			Content: "Madde 81: Bir insanı kasten öldüren kişi müebbet hapis cezası ile cezalandırılır. " +
				"Suçun soruşturması resen yürütülür.",
			Metadata: domain.ChunkMetadata{Number: 81},
		},
	})
	require.NoError(t, err)
	count, err := articles.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
