package domain

import "strconv"

// ChunkType distinguishes law articles from legal-terminology entries.
type ChunkType string

// Available chunk types.
const (
	// ChunkTypeArticle is a criminal-code article or a blog fragment
	// referencing articles.
	ChunkTypeArticle ChunkType = "article"

	// ChunkTypeTerm is a legal-terminology entry (term plus definition).
	ChunkTypeTerm ChunkType = "term"
)

// IsValid returns true if the chunk type is recognised.
func (t ChunkType) IsValid() bool {
	return t == ChunkTypeArticle || t == ChunkTypeTerm
}

// ChunkMetadata is the fixed metadata record attached to every chunk.
// It replaces the loosely-typed metadata dictionaries of earlier data
// pipelines with explicit, checkable fields.
type ChunkMetadata struct {
	// Type is the chunk variant (article or term).
	Type ChunkType `json:"type"`

	// Number is the article number for law articles, 0 otherwise.
	Number int `json:"number,omitempty"`

	// Book is the code book title (e.g. "Genel Hükümler").
	Book string `json:"book,omitempty"`

	// Part is the part title within the book.
	Part string `json:"part,omitempty"`

	// Chapter is the chapter title within the part.
	Chapter string `json:"chapter,omitempty"`

	// HierarchyLevel is derived from Number or the referenced article
	// ranges, never set arbitrarily.
	HierarchyLevel HierarchyLevel `json:"hierarchy_level"`

	// LegalTerms are the recognised legal terms found in the content.
	LegalTerms []string `json:"legal_terms,omitempty"`

	// Topics are the topic categories matched in the content.
	Topics []string `json:"topics,omitempty"`

	// Term is the terminology headword for term chunks.
	Term string `json:"term,omitempty"`
}

// DocumentChunk is one retrievable unit of legal text or terminology.
// Chunks are created once during ingestion and are immutable thereafter;
// re-indexing replaces a chunk wholesale, never partially.
type DocumentChunk struct {
	// ID is stable and content-derived (article_<n>, term_<name>).
	ID string `json:"id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Embedding is the vector representation. It is owned exclusively
	// by the vector store once the chunk is indexed.
	Embedding []float32 `json:"-"`

	// Metadata is the typed metadata record.
	Metadata ChunkMetadata `json:"metadata"`
}

// Reference returns the human-readable structural reference of the chunk,
// used for context block labels and citations.
func (c DocumentChunk) Reference() string {
	if c.Metadata.Type == ChunkTypeTerm {
		if c.Metadata.Term != "" {
			return c.Metadata.Term
		}
		return c.ID
	}
	if c.Metadata.Number > 0 {
		return "Madde " + strconv.Itoa(c.Metadata.Number)
	}
	return c.ID
}
