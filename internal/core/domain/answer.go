package domain

// InsufficientContextAnswer is the fixed answer text returned when
// retrieval produced no sources. Not an error: a defined, confidence-zero
// answer shape.
const InsufficientContextAnswer = "Bu soruyu yanıtlamak için yeterli bağlam bulunamadı. " +
	"Lütfen sorunuzu farklı bir şekilde ifade etmeyi deneyin."

// Answer is the final response to a legal question.
type Answer struct {
	// Text is the generated answer, or the insufficient-context text.
	Text string `json:"answer"`

	// Sources are the retrieval results backing the answer, ordered by
	// ascending distance. May be empty, never absent.
	Sources []RetrievalResult `json:"sources"`

	// Confidence is in [0,1], monotonic in the included source distances.
	// Zero when Sources is empty.
	Confidence float64 `json:"confidence_score"`

	// ProcessingTimeSeconds measures the full retrieve-assemble-generate
	// path.
	ProcessingTimeSeconds float64 `json:"processing_time"`

	// Template is the prompt template variant used, empty when generation
	// was skipped.
	Template PromptTemplateKind `json:"template,omitempty"`

	// Degraded is set when retrieval dropped failed sub-queries.
	Degraded bool `json:"degraded,omitempty"`
}

// Citation is one rendered source reference.
type Citation struct {
	// Reference is the structural reference (Madde N or term name).
	Reference string `json:"reference"`

	// Relevance is a coarse indicator derived from distance.
	Relevance string `json:"relevance"`

	// Distance is the raw similarity distance.
	Distance float64 `json:"distance"`
}
