package domain

import (
	"fmt"
	"sort"
)

// HierarchyLevel classifies a chunk's position within the criminal code's
// structural divisions.
type HierarchyLevel string

// Hierarchy levels, ordered by assembly priority.
const (
	// HierarchyGeneralProvisions covers the first book of the code
	// (articles 1-75, Genel Hükümler).
	HierarchyGeneralProvisions HierarchyLevel = "general_provisions"

	// HierarchySpecialProvisions covers the second book
	// (articles 76-343, Özel Hükümler).
	HierarchySpecialProvisions HierarchyLevel = "special_provisions"

	// HierarchyFinalProvisions covers the third book
	// (articles 344-346, Son Hükümler).
	HierarchyFinalProvisions HierarchyLevel = "final_provisions"

	// HierarchyMixed marks content referencing articles across books.
	HierarchyMixed HierarchyLevel = "mixed"

	// HierarchyBlogOnly marks commentary that references no article.
	HierarchyBlogOnly HierarchyLevel = "blog_only"
)

// IsValid returns true if the hierarchy level is recognised.
func (l HierarchyLevel) IsValid() bool {
	switch l {
	case HierarchyGeneralProvisions, HierarchySpecialProvisions,
		HierarchyFinalProvisions, HierarchyMixed, HierarchyBlogOnly:
		return true
	default:
		return false
	}
}

// Priority returns the ordering rank used by the context assembler.
// Lower ranks are placed earlier in the assembled context.
func (l HierarchyLevel) Priority() int {
	switch l {
	case HierarchyGeneralProvisions:
		return 0
	case HierarchySpecialProvisions:
		return 1
	case HierarchyFinalProvisions:
		return 2
	case HierarchyMixed:
		return 3
	case HierarchyBlogOnly:
		return 4
	default:
		return 5
	}
}

// String returns the string representation.
func (l HierarchyLevel) String() string {
	return string(l)
}

// HierarchyRange is one half-open article-number range [Lo, Hi) mapped to
// a hierarchy level.
type HierarchyRange struct {
	Lo    int
	Hi    int
	Level HierarchyLevel
}

// Contains reports whether n falls inside the range.
func (r HierarchyRange) Contains(n int) bool {
	return n >= r.Lo && n < r.Hi
}

// HierarchyRangeTable is an ordered set of non-overlapping, contiguous
// article-number ranges covering the valid article domain. Numbers outside
// every range are classification errors, never a silent default.
type HierarchyRangeTable struct {
	ranges []HierarchyRange
}

// NewHierarchyRangeTable validates and builds a range table. Ranges must be
// non-empty, contiguous and exhaustive over [first.Lo, last.Hi).
func NewHierarchyRangeTable(ranges []HierarchyRange) (*HierarchyRangeTable, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("hierarchy range table: no ranges")
	}
	sorted := make([]HierarchyRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })
	for i, r := range sorted {
		if r.Hi <= r.Lo {
			return nil, fmt.Errorf("hierarchy range table: empty range [%d,%d)", r.Lo, r.Hi)
		}
		if !r.Level.IsValid() {
			return nil, fmt.Errorf("hierarchy range table: invalid level %q", r.Level)
		}
		if i > 0 && sorted[i-1].Hi != r.Lo {
			return nil, fmt.Errorf("hierarchy range table: gap or overlap between [%d,%d) and [%d,%d)",
				sorted[i-1].Lo, sorted[i-1].Hi, r.Lo, r.Hi)
		}
	}
	return &HierarchyRangeTable{ranges: sorted}, nil
}

// DefaultRangeTable returns the Turkish Criminal Code (TCK) book structure:
// Genel Hükümler 1-75, Özel Hükümler 76-343, Son Hükümler 344-346.
func DefaultRangeTable() *HierarchyRangeTable {
	t, err := NewHierarchyRangeTable([]HierarchyRange{
		{Lo: 1, Hi: 76, Level: HierarchyGeneralProvisions},
		{Lo: 76, Hi: 344, Level: HierarchySpecialProvisions},
		{Lo: 344, Hi: 347, Level: HierarchyFinalProvisions},
	})
	if err != nil {
		// The built-in table is statically valid.
		panic(err)
	}
	return t
}

// LevelFor resolves the hierarchy level of a single article number.
// Returns ErrOutOfRangeReference for numbers outside the valid domain.
func (t *HierarchyRangeTable) LevelFor(n int) (HierarchyLevel, error) {
	for _, r := range t.ranges {
		if r.Contains(n) {
			return r.Level, nil
		}
	}
	return "", fmt.Errorf("%w: article %d outside [%d,%d)", ErrOutOfRangeReference, n, t.ranges[0].Lo, t.ranges[len(t.ranges)-1].Hi)
}

// Domain returns the inclusive-exclusive bounds of the valid article domain.
func (t *HierarchyRangeTable) Domain() (lo, hi int) {
	return t.ranges[0].Lo, t.ranges[len(t.ranges)-1].Hi
}

// Ranges returns a copy of the ordered ranges.
func (t *HierarchyRangeTable) Ranges() []HierarchyRange {
	out := make([]HierarchyRange, len(t.ranges))
	copy(out, t.ranges)
	return out
}
