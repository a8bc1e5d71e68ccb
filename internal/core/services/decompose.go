package services

import (
	"regexp"
	"strings"
)

// DefaultMaxSubQueries caps decomposition so fan-out stays bounded.
const DefaultMaxSubQueries = 4

// Decomposer splits a question into sub-queries. Implementations must
// return the original question as the first element and never exceed
// their configured maximum.
type Decomposer interface {
	Decompose(question string) []string
}

// clauseSeparator splits Turkish questions on conjunctions and clause
// punctuation.
var clauseSeparator = regexp.MustCompile(`\s+(?:ve|veya|ya da|ayrıca)\s+|[;?]`)

// ConjunctionDecomposer produces sub-queries by splitting a question on
// conjunctions and sub-clause boundaries.
type ConjunctionDecomposer struct {
	maxSubQueries int
}

// NewConjunctionDecomposer creates a decomposer capped at max sub-queries.
// Values below 1 select the default cap.
func NewConjunctionDecomposer(max int) *ConjunctionDecomposer {
	if max < 1 {
		max = DefaultMaxSubQueries
	}
	return &ConjunctionDecomposer{maxSubQueries: max}
}

// Decompose returns the original question followed by clause sub-queries,
// capped at the configured maximum. Clauses shorter than two words are
// discarded as noise.
func (d *ConjunctionDecomposer) Decompose(question string) []string {
	question = strings.TrimSpace(question)
	subQueries := []string{question}

	// Trailing sentence punctuation is not a clause boundary; without
	// this a single-clause "... nedir?" question would split into itself
	// plus an unpunctuated copy.
	clauses := clauseSeparator.Split(strings.TrimRight(question, "?.! "), -1)
	if len(clauses) < 2 {
		return subQueries
	}

	seen := map[string]struct{}{strings.ToLower(question): {}}
	for _, clause := range clauses {
		if len(subQueries) >= d.maxSubQueries {
			break
		}
		clause = strings.TrimSpace(strings.Trim(clause, ",.?!"))
		if len(strings.Fields(clause)) < 2 {
			continue
		}
		key := strings.ToLower(clause)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		subQueries = append(subQueries, clause)
	}
	return subQueries
}
