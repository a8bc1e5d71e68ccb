package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/services"
)

var (
	askTopK    int
	askJSON    bool
	askFilters []string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the Turkish Criminal Code",
	Long: `Retrieves relevant law articles and legal terms for the question
and synthesises an answer with citations.

Metadata filters restrict retrieval, e.g.:
  kanunqa ask "Soykırım suçunun cezası nedir?" --filter hierarchy_level=special_provisions`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default 5)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	askCmd.Flags().StringArrayVar(&askFilters, "filter", nil, "metadata filter as key=value (repeatable)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svcs, err := ensureServices()
	if err != nil {
		return err
	}
	if svcs.QA == nil {
		return errors.New("question answering not available: configure embedding and llm providers with 'kanunqa config set'")
	}

	filter, err := parseFilters(askFilters)
	if err != nil {
		return err
	}

	topK := askTopK
	if topK <= 0 {
		topK = svcs.DefaultTopK
	}

	answer, err := svcs.QA.AskQuestion(cmd.Context(), args[0], filter, topK)
	if err != nil {
		return fmt.Errorf("answering failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

// parseFilters converts key=value pairs into a metadata filter.
func parseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filter[key] = value
	}
	return filter, nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer domain.Answer) error {
	cmd.Println(answer.Text)
	cmd.Println()

	if len(answer.Sources) > 0 {
		cmd.Println("Kaynaklar:")
		for _, citation := range services.FormatCitations(answer.Sources) {
			cmd.Printf("  - %s (%s)\n", citation.Reference, citation.Relevance)
		}
		cmd.Println()
	}

	cmd.Printf("Güven: %.2f\n", answer.Confidence)
	cmd.Printf("Süre: %.2fs\n", answer.ProcessingTimeSeconds)
	if answer.Degraded {
		cmd.Println("Uyarı: bazı alt sorgular yanıtlanamadı, sonuç eksik olabilir.")
	}
	return nil
}
