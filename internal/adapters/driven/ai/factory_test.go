package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	t.Run("returns nil when not configured", func(t *testing.T) {
		svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("creates openai service", func(t *testing.T) {
		svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOpenAI,
			APIKey:   "sk-test",
			Model:    "text-embedding-3-small",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		defer svc.Close()
		assert.Equal(t, "text-embedding-3-small", svc.ModelName())
		assert.Equal(t, 1536, svc.Dimensions())
	})

	t.Run("creates ollama service without API key", func(t *testing.T) {
		svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			Model:    "nomic-embed-text",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		defer svc.Close()
		assert.Equal(t, 768, svc.Dimensions())
	})

	t.Run("rejects anthropic embeddings", func(t *testing.T) {
		_, err := CreateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderAnthropic,
			APIKey:   "sk-ant-test",
		})
		assert.Error(t, err)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		_, err := CreateEmbeddingService(&domain.EmbeddingSettings{
			Provider: "cohere",
			APIKey:   "key",
		})
		assert.Error(t, err)
	})
}

func TestCreateLLMService(t *testing.T) {
	t.Run("returns nil when not configured", func(t *testing.T) {
		svc, err := CreateLLMService(&domain.LLMSettings{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("creates anthropic service", func(t *testing.T) {
		svc, err := CreateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderAnthropic,
			APIKey:   "sk-ant-test",
			Model:    "claude-3-5-sonnet-latest",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		defer svc.Close()
		assert.Equal(t, "claude-3-5-sonnet-latest", svc.ModelName())
	})

	t.Run("creates openai service with default model", func(t *testing.T) {
		svc, err := CreateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			APIKey:   "sk-test",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		defer svc.Close()
		assert.Equal(t, "gpt-4o-mini", svc.ModelName())
	})
}
