package domain

// Query is one similarity search against a vector store collection.
// Immutable once constructed.
type Query struct {
	// Text is the free-text query embedded by the caller.
	Text string

	// Embedding is the query vector. Populated by the retriever before
	// the query reaches a store.
	Embedding []float32

	// MetadataFilter restricts results to chunks whose metadata satisfies
	// every key/value equality (AND semantics). Nil means unfiltered.
	MetadataFilter map[string]string

	// TopK is the maximum number of results to return.
	TopK int
}

// RetrievalResult is one similarity hit. Lower distance means higher
// similarity. Produced per sub-query, merged by the retriever, never
// persisted.
type RetrievalResult struct {
	Chunk    DocumentChunk `json:"chunk"`
	Distance float64       `json:"distance"`
}

// ResultSet is the merged, ranked outcome of a multi-query retrieval.
type ResultSet struct {
	// Results are deduplicated hits in ascending distance order.
	Results []RetrievalResult

	// SubQueries are the decomposed queries actually issued, the original
	// question always first.
	SubQueries []string

	// Degraded is set when at least one sub-query's searches failed after
	// retries and its contribution was dropped.
	Degraded bool
}

// AssembledContext is the bounded, ordered context string handed to the
// generation service. Built fresh per question, never shared.
type AssembledContext struct {
	// Text is the rendered context, at most the configured budget long.
	Text string

	// IncludedChunkIDs lists the chunks rendered as full blocks, in order.
	IncludedChunkIDs []string

	// UsedTermDefinitions lists terms whose compact definitions were
	// appended in the trailing glossary section.
	UsedTermDefinitions []string
}
