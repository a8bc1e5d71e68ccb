package domain

// Supported AI providers.
const (
	AIProviderOpenAI    = "openai"
	AIProviderAnthropic = "anthropic"
	AIProviderOllama    = "ollama"
)

// EmbeddingDimensions maps known embedding models to their vector sizes.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
	}
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider selects the adapter ("openai" or "ollama").
	Provider string

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true when the settings can produce a service.
// Ollama runs locally and needs no API key.
func (s *EmbeddingSettings) IsConfigured() bool {
	if s == nil || s.Provider == "" {
		return false
	}
	return s.Provider == AIProviderOllama || s.APIKey != ""
}

// LLMSettings configures the generation provider.
type LLMSettings struct {
	// Provider selects the adapter ("openai", "anthropic" or "ollama").
	Provider string

	// Model is the model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// MaxTokens caps one generation.
	MaxTokens int

	// Temperature controls randomness; 0 is deterministic.
	Temperature float64
}

// IsConfigured returns true when the settings can produce a service.
// Ollama runs locally and needs no API key.
func (s *LLMSettings) IsConfigured() bool {
	if s == nil || s.Provider == "" {
		return false
	}
	return s.Provider == AIProviderOllama || s.APIKey != ""
}

// RetrievalSettings tunes the retrieval-and-assembly engine.
type RetrievalSettings struct {
	// TopK is the default number of results per question.
	TopK int

	// MaxSubQueries caps question decomposition.
	MaxSubQueries int

	// ContextBudget bounds the assembled context, in runes.
	ContextBudget int

	// MaxRetries bounds retries of transient store failures.
	MaxRetries int
}
