// Package loader reads the structured law corpus and terminology
// glossary from JSON files and turns them into ingestion candidates.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

// lawDocument is the structured law JSON produced by the PDF pipeline.
// Article numbers are strings in the source data.
type lawDocument struct {
	Title    string       `json:"title"`
	Books    []lawBook    `json:"books"`
	Articles []lawArticle `json:"articles"`
}

type lawBook struct {
	Title string    `json:"title"`
	Parts []lawPart `json:"parts"`
}

type lawPart struct {
	Title    string       `json:"title"`
	Chapters []lawChapter `json:"chapters"`
}

type lawChapter struct {
	Title    string       `json:"title"`
	Articles []lawArticle `json:"articles"`
}

type lawArticle struct {
	Number  string `json:"number"`
	Content string `json:"content"`
	Book    string `json:"book,omitempty"`
	Part    string `json:"part,omitempty"`
	Chapter string `json:"chapter,omitempty"`
}

// LoadArticles reads a structured law JSON file and flattens it into
// article candidates. Both the nested books/parts/chapters layout and a
// flat articles list are accepted.
func LoadArticles(path string) ([]domain.DocumentChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading law file: %w", err)
	}
	return ParseArticles(data)
}

// ParseArticles decodes structured law JSON into article candidates.
func ParseArticles(data []byte) ([]domain.DocumentChunk, error) {
	var doc lawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding law data: %w", err)
	}

	var chunks []domain.DocumentChunk
	appendArticle := func(a lawArticle, book, part, chapter string) error {
		number, err := strconv.Atoi(strings.TrimSpace(a.Number))
		if err != nil {
			return fmt.Errorf("article number %q: %w", a.Number, err)
		}
		content := strings.TrimSpace(a.Content)
		chunks = append(chunks, domain.DocumentChunk{
			ID:      "article_" + strconv.Itoa(number),
			Content: fmt.Sprintf("Madde %d: %s", number, content),
			Metadata: domain.ChunkMetadata{
				Type:    domain.ChunkTypeArticle,
				Number:  number,
				Book:    book,
				Part:    part,
				Chapter: chapter,
			},
		})
		return nil
	}

	for _, book := range doc.Books {
		for _, part := range book.Parts {
			for _, chapter := range part.Chapters {
				for _, article := range chapter.Articles {
					if err := appendArticle(article, book.Title, part.Title, chapter.Title); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	for _, article := range doc.Articles {
		if err := appendArticle(article, article.Book, article.Part, article.Chapter); err != nil {
			return nil, err
		}
	}

	if len(chunks) == 0 {
		return nil, domain.ErrNoDocuments
	}
	return chunks, nil
}

// LoadTerms reads a glossary JSON file mapping term to definition and
// returns term candidates.
func LoadTerms(path string) ([]domain.DocumentChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terms file: %w", err)
	}
	return ParseTerms(data)
}

// ParseTerms decodes a term-to-definition map into term candidates.
// Output order is deterministic regardless of map iteration order.
func ParseTerms(data []byte) ([]domain.DocumentChunk, error) {
	var terms map[string]string
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, fmt.Errorf("decoding terms data: %w", err)
	}
	if len(terms) == 0 {
		return nil, domain.ErrNoDocuments
	}

	names := make([]string, 0, len(terms))
	for term := range terms {
		names = append(names, term)
	}
	sort.Strings(names)

	chunks := make([]domain.DocumentChunk, 0, len(names))
	for _, term := range names {
		definition := strings.TrimSpace(terms[term])
		chunks = append(chunks, domain.DocumentChunk{
			ID:      TermID(term),
			Content: fmt.Sprintf("%s: %s", term, definition),
			Metadata: domain.ChunkMetadata{
				Type: domain.ChunkTypeTerm,
				Term: term,
			},
		})
	}
	return chunks, nil
}

// TermID derives a stable chunk ID from the term headword, so
// re-ingesting a glossary replaces rather than duplicates entries.
func TermID(term string) string {
	return "term_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte("kanunqa/term/"+term)).String()
}
