package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

// Minimum content length for a law-article chunk, in runes.
const minContentLength = 100

// referencePattern matches TCK article references such as "TCK m. 125",
// "Türk Ceza Kanunu madde 81" or "TCK 142".
var referencePattern = regexp.MustCompile(`(?:TCK|Türk Ceza Kanunu)\s*(?:m\.|madde|md\.|Art\.|Article)?\s*(\d+)`)

// Legal-terminology keyword sets used by content-quality validation.
var (
	basicLegalTerms = []string{"suç", "ceza", "hukuk"}

	proceduralTerms = []string{"soruşturma", "kovuşturma", "yargılama", "delil", "ispat"}

	sanctionTerms = []string{"hapis", "para cezası", "adli para", "müebbet"}

	recognisedLegalTerms = []string{
		"suç", "ceza", "yaptırım", "hapis", "para cezası", "adli para cezası",
		"müebbet", "ağırlaştırılmış müebbet", "tutuklama", "gözaltı", "yakalama",
		"soruşturma", "kovuşturma", "mahkumiyet", "beraat", "hüküm",
	}
)

// topicKeywords maps topic categories to the keywords that signal them.
var topicKeywords = map[string][]string{
	"genel_hukumler":   {"suçun unsurları", "kast", "taksir", "teşebbüs", "iştirak"},
	"ceza_sorumlulugu": {"kusur", "hukuka uygunluk", "meşru müdafaa", "zorunluluk hali"},
	"yaptirimlar":      {"hapis cezası", "adli para cezası", "güvenlik tedbirleri"},
	"ozel_hukumler":    {"kasten öldürme", "hırsızlık", "dolandırıcılık", "uyuşturucu"},
	"usul_hukumleri":   {"soruşturma", "kovuşturma", "delil", "ispat", "yargılama"},
}

// expectedTopics maps a hierarchy level to the topic categories its
// referenced articles are expected to discuss. Levels absent from the map
// carry no topical expectation.
var expectedTopics = map[domain.HierarchyLevel][]string{
	domain.HierarchyGeneralProvisions: {"genel_hukumler", "ceza_sorumlulugu", "yaptirimlar", "usul_hukumleri"},
	domain.HierarchySpecialProvisions: {"ozel_hukumler", "yaptirimlar", "usul_hukumleri"},
}

// HierarchyClassifier maps structural article references to a hierarchy
// level and validates chunk content quality. Classification is a pure
// function of the range table and the input set: no hidden state, fully
// deterministic, idempotent.
type HierarchyClassifier struct {
	table *domain.HierarchyRangeTable
}

// NewHierarchyClassifier creates a classifier over the given range table.
// A nil table selects the default TCK book structure.
func NewHierarchyClassifier(table *domain.HierarchyRangeTable) *HierarchyClassifier {
	if table == nil {
		table = domain.DefaultRangeTable()
	}
	return &HierarchyClassifier{table: table}
}

// Classify resolves the hierarchy level for a set of referenced article
// numbers. All references within a single range yield that range's level;
// references spanning ranges yield mixed; an empty reference set yields
// blog_only. Any reference outside the valid domain fails with
// domain.ErrOutOfRangeReference.
func (c *HierarchyClassifier) Classify(refs []int) (domain.HierarchyLevel, error) {
	if len(refs) == 0 {
		return domain.HierarchyBlogOnly, nil
	}

	levels := make(map[domain.HierarchyLevel]struct{}, 2)
	for _, ref := range refs {
		level, err := c.table.LevelFor(ref)
		if err != nil {
			return "", err
		}
		levels[level] = struct{}{}
	}

	if len(levels) > 1 {
		return domain.HierarchyMixed, nil
	}
	for level := range levels {
		return level, nil
	}
	// Unreachable: refs is non-empty and every ref resolved.
	return domain.HierarchyBlogOnly, nil
}

// ValidateContentQuality checks a chunk against the content-quality rules.
// It never returns an error: validation failure is data. Passed is true
// iff no issue has severity error.
func (c *HierarchyClassifier) ValidateContentQuality(chunk domain.DocumentChunk) domain.ValidationResult {
	res := domain.ValidationResult{ChunkID: chunk.ID}
	content := strings.ToLower(chunk.Content)

	if len([]rune(chunk.Content)) < minContentLength {
		res.Issues = append(res.Issues, domain.Issue{
			Kind:     domain.IssueContentTooShort,
			Severity: domain.SeverityError,
			Detail:   fmt.Sprintf("content shorter than %d characters", minContentLength),
		})
	}

	if !containsAny(content, basicLegalTerms) {
		res.Issues = append(res.Issues, domain.Issue{
			Kind:     domain.IssueMissingLegalTerms,
			Severity: domain.SeverityError,
			Detail:   "missing basic legal terminology (suç, ceza, hukuk)",
		})
	}

	if chunk.Metadata.HierarchyLevel == domain.HierarchySpecialProvisions {
		if !containsAny(content, proceduralTerms) && !containsAny(content, sanctionTerms) {
			res.Issues = append(res.Issues, domain.Issue{
				Kind:     domain.IssueMissingProcedural,
				Severity: domain.SeverityError,
				Detail:   "special provisions content lacks procedural and sanction keywords",
			})
		}
	}

	if expected, ok := expectedTopics[chunk.Metadata.HierarchyLevel]; ok && len(chunk.Metadata.Topics) > 0 {
		if !intersects(chunk.Metadata.Topics, expected) {
			res.Issues = append(res.Issues, domain.Issue{
				Kind:     domain.IssueTopicInconsistency,
				Severity: domain.SeverityWarning,
				Detail: fmt.Sprintf("topics %v unexpected for level %s",
					chunk.Metadata.Topics, chunk.Metadata.HierarchyLevel),
			})
		}
	}

	res.Passed = true
	for _, issue := range res.Issues {
		if issue.Severity == domain.SeverityError {
			res.Passed = false
			break
		}
	}
	return res
}

// ExtractReferences pulls TCK article numbers out of free text.
// The result is sorted and deduplicated.
func (c *HierarchyClassifier) ExtractReferences(text string) []int {
	matches := referencePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(matches))
	var refs []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		refs = append(refs, n)
	}
	sort.Ints(refs)
	return refs
}

// ExtractLegalTerms returns the recognised legal terms present in the text.
func (c *HierarchyClassifier) ExtractLegalTerms(text string) []string {
	lower := strings.ToLower(text)
	var terms []string
	for _, term := range recognisedLegalTerms {
		if strings.Contains(lower, term) {
			terms = append(terms, term)
		}
	}
	return terms
}

// IdentifyTopics returns the topic categories whose keywords appear in the
// text, in stable order.
func (c *HierarchyClassifier) IdentifyTopics(text string) []string {
	lower := strings.ToLower(text)
	var topics []string
	for _, category := range topicOrder {
		for _, keyword := range topicKeywords[category] {
			if strings.Contains(lower, keyword) {
				topics = append(topics, category)
				break
			}
		}
	}
	return topics
}

// topicOrder fixes iteration order over topicKeywords for determinism.
var topicOrder = []string{
	"genel_hukumler", "ceza_sorumlulugu", "yaptirimlar", "ozel_hukumler", "usul_hukumleri",
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
