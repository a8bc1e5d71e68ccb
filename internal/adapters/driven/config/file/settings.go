package file

import (
	"os"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyEmbeddingProvider   = "embedding.provider"
	KeyEmbeddingModel      = "embedding.model"
	KeyEmbeddingBaseURL    = "embedding.base_url"
	KeyEmbeddingAPIKey     = "embedding.api_key"
	KeyEmbeddingDimensions = "embedding.dimensions"

	KeyLLMProvider    = "llm.provider"
	KeyLLMModel       = "llm.model"
	KeyLLMBaseURL     = "llm.base_url"
	KeyLLMAPIKey      = "llm.api_key"
	KeyLLMMaxTokens   = "llm.max_tokens"
	KeyLLMTemperature = "llm.temperature"

	KeyRetrievalTopK          = "retrieval.top_k"
	KeyRetrievalMaxSubQueries = "retrieval.max_sub_queries"
	KeyRetrievalContextBudget = "retrieval.context_budget"
	KeyRetrievalMaxRetries    = "retrieval.max_retries"
)

// LoadEmbeddingSettings builds embedding settings from the store.
// Environment variables fill in missing values so API keys can stay
// out of the config file.
func LoadEmbeddingSettings(store driven.ConfigStore) *domain.EmbeddingSettings {
	s := &domain.EmbeddingSettings{
		Provider:   store.GetString(KeyEmbeddingProvider),
		Model:      store.GetString(KeyEmbeddingModel),
		BaseURL:    store.GetString(KeyEmbeddingBaseURL),
		APIKey:     store.GetString(KeyEmbeddingAPIKey),
		Dimensions: store.GetInt(KeyEmbeddingDimensions),
	}
	if s.Provider == "" {
		s.Provider = domain.AIProviderOpenAI
	}
	if s.APIKey == "" {
		s.APIKey = apiKeyFromEnv(s.Provider)
	}
	return s
}

// LoadLLMSettings builds LLM settings from the store, with environment
// fallbacks for the API key.
func LoadLLMSettings(store driven.ConfigStore) *domain.LLMSettings {
	s := &domain.LLMSettings{
		Provider:  store.GetString(KeyLLMProvider),
		Model:     store.GetString(KeyLLMModel),
		BaseURL:   store.GetString(KeyLLMBaseURL),
		APIKey:    store.GetString(KeyLLMAPIKey),
		MaxTokens: store.GetInt(KeyLLMMaxTokens),
	}
	if temp, ok := store.Get(KeyLLMTemperature); ok {
		if f, ok := temp.(float64); ok {
			s.Temperature = f
		}
	}
	if s.Provider == "" {
		s.Provider = domain.AIProviderOpenAI
	}
	if s.APIKey == "" {
		s.APIKey = apiKeyFromEnv(s.Provider)
	}
	return s
}

// LoadRetrievalSettings builds retrieval settings from the store.
// Zero values mean "use engine defaults".
func LoadRetrievalSettings(store driven.ConfigStore) domain.RetrievalSettings {
	return domain.RetrievalSettings{
		TopK:          store.GetInt(KeyRetrievalTopK),
		MaxSubQueries: store.GetInt(KeyRetrievalMaxSubQueries),
		ContextBudget: store.GetInt(KeyRetrievalContextBudget),
		MaxRetries:    store.GetInt(KeyRetrievalMaxRetries),
	}
}

func apiKeyFromEnv(provider string) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case domain.AIProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
