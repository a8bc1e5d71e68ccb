package services

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

func articleHit(number int, level domain.HierarchyLevel, distance float64, content string) domain.RetrievalResult {
	return domain.RetrievalResult{
		Chunk: domain.DocumentChunk{
			ID:      "article_" + strconv.Itoa(number),
			Content: content,
			Metadata: domain.ChunkMetadata{
				Type:           domain.ChunkTypeArticle,
				Number:         number,
				HierarchyLevel: level,
			},
		},
		Distance: distance,
	}
}

func termHit(term string, distance float64, content string) domain.RetrievalResult {
	return domain.RetrievalResult{
		Chunk: domain.DocumentChunk{
			ID:      "term_" + term,
			Content: content,
			Metadata: domain.ChunkMetadata{
				Type: domain.ChunkTypeTerm,
				Term: term,
			},
		},
		Distance: distance,
	}
}

func TestAssembleArticlesBeforeTerms(t *testing.T) {
	a := NewContextAssembler()

	ctx := a.Assemble([]domain.RetrievalResult{
		termHit("kast", 0.1, "kast: bilerek ve isteyerek hareket etme."),
		articleHit(81, domain.HierarchySpecialProvisions, 0.5, "Madde 81: Bir insanı kasten öldüren kişi müebbet hapis cezası ile cezalandırılır."),
	}, DefaultContextBudget)

	articleIdx := strings.Index(ctx.Text, "İlgili Kanun Maddeleri:")
	termIdx := strings.Index(ctx.Text, "İlgili Hukuki Terimler:")
	require.GreaterOrEqual(t, articleIdx, 0)
	require.Greater(t, termIdx, articleIdx)
	assert.Equal(t, []string{"article_81", "term_kast"}, ctx.IncludedChunkIDs)
}

func TestAssembleOrdersByPriorityDistanceThenID(t *testing.T) {
	a := NewContextAssembler()

	ctx := a.Assemble([]domain.RetrievalResult{
		articleHit(142, domain.HierarchySpecialProvisions, 0.1, "Madde 142: Nitelikli hırsızlık halleri."),
		articleHit(21, domain.HierarchyGeneralProvisions, 0.4, "Madde 21: Kast tanımı."),
		articleHit(1, domain.HierarchyGeneralProvisions, 0.2, "Madde 1: Ceza kanununun amacı."),
	}, DefaultContextBudget)

	// General provisions outrank special provisions even at a worse
	// distance; within a level distance decides.
	assert.Equal(t, []string{"article_1", "article_21", "article_142"}, ctx.IncludedChunkIDs)
}

func TestAssembleBudgetIsRespectedInRunes(t *testing.T) {
	a := NewContextAssembler()

	content := "Madde 81: " + strings.Repeat("ğüşöç ", 40)
	budget := 300
	ctx := a.Assemble([]domain.RetrievalResult{
		articleHit(81, domain.HierarchySpecialProvisions, 0.2, content),
	}, budget)

	require.Equal(t, []string{"article_81"}, ctx.IncludedChunkIDs)
	assert.LessOrEqual(t, len([]rune(ctx.Text)), budget)
}

func TestAssembleSkipsOversizedBlockAndContinues(t *testing.T) {
	a := NewContextAssembler()

	big := "Madde 2: " + strings.Repeat("uzun metin ", 100)
	small := "Madde 5: Kısa hüküm."
	ctx := a.Assemble([]domain.RetrievalResult{
		articleHit(2, domain.HierarchyGeneralProvisions, 0.1, big),
		articleHit(5, domain.HierarchyGeneralProvisions, 0.2, small),
	}, 120)

	assert.Equal(t, []string{"article_5"}, ctx.IncludedChunkIDs)
	assert.Contains(t, ctx.Text, "Madde 5")
	assert.NotContains(t, ctx.Text, "uzun metin")
}

func TestAssembleZeroBudget(t *testing.T) {
	a := NewContextAssembler()

	ctx := a.Assemble([]domain.RetrievalResult{
		articleHit(1, domain.HierarchyGeneralProvisions, 0.1, "Madde 1: Amaç."),
	}, 0)

	assert.Empty(t, ctx.Text)
	assert.Empty(t, ctx.IncludedChunkIDs)
}

func TestAssembleEmptyResults(t *testing.T) {
	a := NewContextAssembler()

	ctx := a.Assemble(nil, DefaultContextBudget)
	assert.Empty(t, ctx.Text)
}

func TestAssemblePrefixesReferenceWhenMissing(t *testing.T) {
	a := NewContextAssembler()

	ctx := a.Assemble([]domain.RetrievalResult{
		articleHit(37, domain.HierarchyGeneralProvisions, 0.3, "Suçun işlenişine iştirak eden herkes fail olarak cezalandırılır."),
	}, DefaultContextBudget)

	assert.Contains(t, ctx.Text, "Madde 37\nSuçun işlenişine iştirak")
}

func TestAssembleGlossaryForExcludedTermChunks(t *testing.T) {
	a := NewContextAssembler()

	// The term chunk is too large to fit as a block, but "kast" appears in
	// the included article text, so a compact glossary line is added.
	bigDefinition := "kast: " + strings.Repeat("çok ayrıntılı açıklama ", 80)
	ctx := a.Assemble([]domain.RetrievalResult{
		articleHit(21, domain.HierarchyGeneralProvisions, 0.1,
			"Madde 21: Suçun oluşması kastın varlığına bağlıdır. Kast, suçun kanuni tanımındaki unsurların bilerek ve istenerek gerçekleştirilmesidir."),
		termHit("kast", 0.2, bigDefinition),
	}, 400)

	assert.NotContains(t, ctx.IncludedChunkIDs, "term_kast")
	assert.Contains(t, ctx.Text, "Terim Tanımları:")
	assert.Contains(t, ctx.Text, "kast: ")
	assert.Equal(t, []string{"kast"}, ctx.UsedTermDefinitions)
}

func TestAssembleNoGlossaryForIncludedTermChunks(t *testing.T) {
	a := NewContextAssembler()

	ctx := a.Assemble([]domain.RetrievalResult{
		articleHit(21, domain.HierarchyGeneralProvisions, 0.1,
			"Madde 21: Suçun oluşması kastın varlığına bağlıdır, kast bilerek hareket etmektir."),
		termHit("kast", 0.2, "kast: bilerek ve isteyerek hareket etme."),
	}, DefaultContextBudget)

	assert.Contains(t, ctx.IncludedChunkIDs, "term_kast")
	assert.NotContains(t, ctx.Text, "Terim Tanımları:")
	assert.Empty(t, ctx.UsedTermDefinitions)
}

func TestAssembleGlossaryRequiresTermInArticleText(t *testing.T) {
	a := NewContextAssembler()

	big := "müsadere: " + strings.Repeat("uzun açıklama ", 80)
	ctx := a.Assemble([]domain.RetrievalResult{
		articleHit(21, domain.HierarchyGeneralProvisions, 0.1,
			"Madde 21: Suçun oluşması kastın varlığına bağlıdır ve ceza bunu izler."),
		termHit("müsadere", 0.2, big),
	}, 300)

	assert.NotContains(t, ctx.Text, "Terim Tanımları:")
	assert.Empty(t, ctx.UsedTermDefinitions)
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := NewContextAssembler()

	input := []domain.RetrievalResult{
		articleHit(142, domain.HierarchySpecialProvisions, 0.1, "Madde 142: Nitelikli hırsızlık."),
		articleHit(1, domain.HierarchyGeneralProvisions, 0.2, "Madde 1: Amaç ve kapsam maddesi."),
		termHit("hırsızlık", 0.3, "hırsızlık: zilyedin rızası olmadan taşınır malı alma."),
	}

	first := a.Assemble(input, 500)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.Assemble(input, 500))
	}
}

func TestGlossaryLine(t *testing.T) {
	t.Run("strips repeated headword", func(t *testing.T) {
		got := glossaryLine("kast", "kast: bilerek hareket etme. Ayrıntılar uzundur.")
		assert.Equal(t, "kast: bilerek hareket etme.", got)
	})

	t.Run("keeps first sentence only", func(t *testing.T) {
		got := glossaryLine("taksir", "dikkatsizlik sonucu. İkinci cümle atılır.")
		assert.Equal(t, "taksir: dikkatsizlik sonucu.", got)
	})

	t.Run("caps definition length", func(t *testing.T) {
		got := glossaryLine("müebbet", strings.Repeat("ç", 500))
		assert.LessOrEqual(t, len([]rune(got)), maxGlossaryDefinition+len([]rune("müebbet: ")))
	})
}
