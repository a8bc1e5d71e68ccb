package services

import (
	"sort"
	"strings"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

// Context section headers, carried over from the retrieval pipeline's
// generation prompt format.
const (
	articlesHeader = "İlgili Kanun Maddeleri:"
	termsHeader    = "İlgili Hukuki Terimler:"
	glossaryHeader = "Terim Tanımları:"

	blockSeparator = "\n\n"

	// maxGlossaryDefinition bounds one trailing glossary line, in runes.
	maxGlossaryDefinition = 160
)

// DefaultContextBudget is the default bounded context size. The budget
// unit is runes of the assembled text, applied consistently to blocks,
// headers and separators.
const DefaultContextBudget = 4000

// ContextAssembler deduplicates, orders and truncates retrieval results
// into a bounded context string. Assembly is deterministic: identical
// input order and budget produce identical output.
type ContextAssembler struct{}

// NewContextAssembler creates an assembler.
func NewContextAssembler() *ContextAssembler {
	return &ContextAssembler{}
}

// block is one renderable context unit.
type block struct {
	chunkID string
	text    string
}

// Assemble renders results into a budget-bounded context.
//
// Articles come before terms; within each group chunks are ordered by
// hierarchy level priority, then ascending distance, then ID. A block
// that does not fit the remaining budget is skipped, never split; later
// smaller blocks may still be packed. For legal terms detected in the
// included article content whose definition chunk was not itself
// included, a compact "term: definition" line is appended while budget
// remains.
func (a *ContextAssembler) Assemble(results []domain.RetrievalResult, budget int) domain.AssembledContext {
	ctx := domain.AssembledContext{}
	if budget <= 0 || len(results) == 0 {
		return ctx
	}

	articles, terms := splitByType(results)
	sortGroup(articles)
	sortGroup(terms)

	var b strings.Builder
	remaining := budget
	included := make(map[string]bool, len(results))

	appendSection := func(header string, blocks []block) {
		headerPending := true
		for _, blk := range blocks {
			piece := blk.text
			if headerPending {
				piece = header + blockSeparator + piece
			}
			if b.Len() > 0 {
				piece = blockSeparator + piece
			}
			cost := len([]rune(piece))
			if cost > remaining {
				continue
			}
			b.WriteString(piece)
			remaining -= cost
			headerPending = false
			included[blk.chunkID] = true
			ctx.IncludedChunkIDs = append(ctx.IncludedChunkIDs, blk.chunkID)
		}
	}

	appendSection(articlesHeader, renderBlocks(articles))
	articleTextEnd := b.Len()
	appendSection(termsHeader, renderBlocks(terms))

	// Trailing glossary: definitions for terms that appear verbatim in
	// the included article text but whose own chunk did not fit.
	includedText := strings.ToLower(b.String()[:articleTextEnd])
	headerPending := true
	for _, res := range terms {
		term := res.Chunk.Metadata.Term
		if term == "" || included[res.Chunk.ID] {
			continue
		}
		if !strings.Contains(includedText, strings.ToLower(term)) {
			continue
		}
		line := glossaryLine(term, res.Chunk.Content)
		var piece string
		if headerPending {
			piece = glossaryHeader + "\n" + line
			if b.Len() > 0 {
				piece = blockSeparator + piece
			}
		} else {
			piece = "\n" + line
		}
		cost := len([]rune(piece))
		if cost > remaining {
			continue
		}
		b.WriteString(piece)
		remaining -= cost
		headerPending = false
		ctx.UsedTermDefinitions = append(ctx.UsedTermDefinitions, term)
	}

	ctx.Text = b.String()
	return ctx
}

// splitByType groups results into article and term chunks, preserving
// input order within each group.
func splitByType(results []domain.RetrievalResult) (articles, terms []domain.RetrievalResult) {
	for _, res := range results {
		if res.Chunk.Metadata.Type == domain.ChunkTypeTerm {
			terms = append(terms, res)
		} else {
			articles = append(articles, res)
		}
	}
	return articles, terms
}

// sortGroup orders a group by hierarchy priority, distance, then ID.
func sortGroup(group []domain.RetrievalResult) {
	sort.SliceStable(group, func(i, j int) bool {
		pi := group[i].Chunk.Metadata.HierarchyLevel.Priority()
		pj := group[j].Chunk.Metadata.HierarchyLevel.Priority()
		if pi != pj {
			return pi < pj
		}
		if group[i].Distance != group[j].Distance {
			return group[i].Distance < group[j].Distance
		}
		return group[i].Chunk.ID < group[j].Chunk.ID
	})
}

// renderBlocks labels each chunk with its structural reference.
func renderBlocks(group []domain.RetrievalResult) []block {
	blocks := make([]block, 0, len(group))
	for _, res := range group {
		ref := res.Chunk.Reference()
		text := res.Chunk.Content
		if !strings.HasPrefix(text, ref) {
			text = ref + "\n" + text
		}
		blocks = append(blocks, block{chunkID: res.Chunk.ID, text: text})
	}
	return blocks
}

// glossaryLine renders a compact "term: definition" line, trimming the
// definition to its first sentence or the rune cap.
func glossaryLine(term, content string) string {
	def := content
	if idx := strings.Index(def, ":"); idx >= 0 && strings.EqualFold(strings.TrimSpace(def[:idx]), term) {
		def = strings.TrimSpace(def[idx+1:])
	}
	if idx := strings.IndexAny(def, ".\n"); idx > 0 {
		def = def[:idx+1]
	}
	runes := []rune(def)
	if len(runes) > maxGlossaryDefinition {
		def = string(runes[:maxGlossaryDefinition])
	}
	return term + ": " + strings.TrimSpace(def)
}
