// Package vectorstore holds the metadata-filter contract shared by the
// vector store adapters.
package vectorstore

import (
	"fmt"
	"strconv"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

// filterKeys are the metadata fields a filter may constrain.
var filterKeys = map[string]struct{}{
	"type":            {},
	"number":          {},
	"book":            {},
	"part":            {},
	"chapter":         {},
	"hierarchy_level": {},
	"term":            {},
}

// ValidateFilter rejects filters constraining unknown metadata fields
// with domain.ErrInvalidFilter.
func ValidateFilter(filter map[string]string) error {
	for key := range filter {
		if _, ok := filterKeys[key]; !ok {
			return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidFilter, key)
		}
	}
	return nil
}

// MatchesFilter applies AND-equality semantics: every filter entry must
// match the corresponding metadata field.
func MatchesFilter(meta domain.ChunkMetadata, filter map[string]string) bool {
	for key, want := range filter {
		var got string
		switch key {
		case "type":
			got = string(meta.Type)
		case "number":
			got = strconv.Itoa(meta.Number)
		case "book":
			got = meta.Book
		case "part":
			got = meta.Part
		case "chapter":
			got = meta.Chapter
		case "hierarchy_level":
			got = string(meta.HierarchyLevel)
		case "term":
			got = meta.Term
		default:
			return false
		}
		if got != want {
			return false
		}
	}
	return true
}
