// Command kanunqa is the Turkish criminal law question answering CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/kanun-labs/kanunqa/internal/adapters/driven/ai"
	configfile "github.com/kanun-labs/kanunqa/internal/adapters/driven/config/file"
	"github.com/kanun-labs/kanunqa/internal/adapters/driven/vectorstore/sqlite"
	"github.com/kanun-labs/kanunqa/internal/adapters/driving/cli"
	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
	"github.com/kanun-labs/kanunqa/internal/core/services"
	"github.com/kanun-labs/kanunqa/internal/logger"
)

// Collection names in the chunk index.
const (
	articlesCollection = "turkish_criminal_law"
	termsCollection    = "turkish_legal_terms"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetInitializer(buildServices)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices wires adapters into the service graph. Providers that are
// not configured leave their dependent services nil; commands report
// guidance instead of failing here.
func buildServices(configDir, dataDir string) (*cli.Services, error) {
	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config store: %w", err)
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening chunk index: %w", err)
	}

	articles := store.Collection(articlesCollection)
	terms := store.Collection(termsCollection)

	svcs := &cli.Services{
		Articles: articles,
		Terms:    terms,
		Config:   configStore,
	}

	var embedder driven.EmbeddingService
	var llm driven.LLMService
	svcs.Close = func() {
		if embedder != nil {
			embedder.Close()
		}
		if llm != nil {
			llm.Close()
		}
		store.Close()
	}

	embedder, err = ai.CreateAndValidateEmbeddingService(configfile.LoadEmbeddingSettings(configStore))
	if err != nil {
		logger.Error("Embedding provider unavailable: %v", err)
	}
	if embedder == nil {
		return svcs, nil
	}

	classifier := services.NewHierarchyClassifier(domain.DefaultRangeTable())
	svcs.Ingest = services.NewIngestService(classifier, embedder, articles, terms)

	retrieval := configfile.LoadRetrievalSettings(configStore)
	svcs.DefaultTopK = retrieval.TopK

	var retrieverOpts []services.RetrieverOption
	if retrieval.MaxSubQueries > 0 {
		retrieverOpts = append(retrieverOpts,
			services.WithDecomposer(services.NewConjunctionDecomposer(retrieval.MaxSubQueries)))
	}
	if retrieval.MaxRetries > 0 {
		retrieverOpts = append(retrieverOpts, services.WithRetry(retrieval.MaxRetries, 0))
	}
	retriever := services.NewMultiQueryRetriever(embedder, articles, terms, retrieverOpts...)

	llmSettings := configfile.LoadLLMSettings(configStore)
	llm, err = ai.CreateAndValidateLLMService(llmSettings)
	if err != nil {
		logger.Error("LLM provider unavailable: %v", err)
	}
	if llm == nil {
		return svcs, nil
	}

	var qaOpts []services.QAOption
	if retrieval.ContextBudget > 0 {
		qaOpts = append(qaOpts, services.WithContextBudget(retrieval.ContextBudget))
	}
	if llmSettings.MaxTokens > 0 || llmSettings.Temperature > 0 {
		genOpts := driven.GenerateOptions{
			MaxTokens:   llmSettings.MaxTokens,
			Temperature: llmSettings.Temperature,
		}
		if genOpts.MaxTokens == 0 {
			genOpts.MaxTokens = 1024
		}
		qaOpts = append(qaOpts, services.WithGenerateOptions(genOpts))
	}
	svcs.QA = services.NewQAService(retriever, services.NewContextAssembler(), llm, qaOpts...)

	return svcs, nil
}
