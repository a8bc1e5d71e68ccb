package domain

// IssueSeverity ranks validation issues.
type IssueSeverity string

// Issue severities.
const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// IssueKind identifies the failed validation check.
type IssueKind string

// Issue kinds produced by content-quality validation.
const (
	IssueContentTooShort     IssueKind = "content_too_short"
	IssueMissingLegalTerms   IssueKind = "missing_legal_terms"
	IssueMissingProcedural   IssueKind = "missing_procedural_terms"
	IssueTopicInconsistency  IssueKind = "topic_inconsistency"
	IssueOutOfRangeReference IssueKind = "out_of_range_reference"
)

// Issue is one failed validation check.
type Issue struct {
	Kind     IssueKind     `json:"kind"`
	Severity IssueSeverity `json:"severity"`
	Detail   string        `json:"detail"`
}

// ValidationResult is produced once per chunk at classification time and
// surfaced to the ingestion caller; it is never retried automatically.
// Validation failure is data, not control flow.
type ValidationResult struct {
	ChunkID string  `json:"chunk_id"`
	Issues  []Issue `json:"issues"`

	// Passed is true iff no issue has severity error.
	Passed bool `json:"passed"`
}

// ValidationSummary aggregates per-chunk results for the review report.
type ValidationSummary struct {
	ArticlesWithIssues int `json:"articles_with_issues"`
	TotalArticles      int `json:"total_articles"`
}

// ValidationReport is the ingestion-time report consumed by an external
// review tool.
type ValidationReport struct {
	Summary ValidationSummary  `json:"summary"`
	Issues  []ValidationResult `json:"issues"`
}

// Add records a per-chunk result, counting it in the summary. Results with
// no issues contribute to the total only.
func (r *ValidationReport) Add(res ValidationResult) {
	r.Summary.TotalArticles++
	if len(res.Issues) > 0 {
		r.Summary.ArticlesWithIssues++
		r.Issues = append(r.Issues, res)
	}
}
