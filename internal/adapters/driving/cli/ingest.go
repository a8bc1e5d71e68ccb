package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/loader"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index law articles or legal terms",
}

var ingestArticlesCmd = &cobra.Command{
	Use:   "articles [file]",
	Short: "Index law articles from a structured law JSON file",
	Long: `Reads a structured law JSON file (books, parts, chapters, articles),
classifies each article into the code hierarchy, validates content
quality and indexes the chunks. Quality findings are reported but do
not block indexing; only out-of-range article references reject a chunk.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestArticles,
}

var ingestTermsCmd = &cobra.Command{
	Use:   "terms [file]",
	Short: "Index legal term definitions from a glossary JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestTerms,
}

func init() {
	ingestCmd.AddCommand(ingestArticlesCmd)
	ingestCmd.AddCommand(ingestTermsCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestArticles(cmd *cobra.Command, args []string) error {
	svcs, err := ensureServices()
	if err != nil {
		return err
	}
	if svcs.Ingest == nil {
		return errors.New("ingestion not available: configure an embedding provider with 'kanunqa config set'")
	}

	candidates, err := loader.LoadArticles(args[0])
	if err != nil {
		return fmt.Errorf("loading articles: %w", err)
	}

	report, err := svcs.Ingest.IngestArticles(cmd.Context(), candidates)
	printReport(cmd, report)
	if err != nil {
		return fmt.Errorf("ingesting articles: %w", err)
	}
	return nil
}

func runIngestTerms(cmd *cobra.Command, args []string) error {
	svcs, err := ensureServices()
	if err != nil {
		return err
	}
	if svcs.Ingest == nil {
		return errors.New("ingestion not available: configure an embedding provider with 'kanunqa config set'")
	}

	candidates, err := loader.LoadTerms(args[0])
	if err != nil {
		return fmt.Errorf("loading terms: %w", err)
	}

	report, err := svcs.Ingest.IngestTerms(cmd.Context(), candidates)
	printReport(cmd, report)
	if err != nil {
		return fmt.Errorf("ingesting terms: %w", err)
	}
	return nil
}

// printReport summarises a validation report and lists per-chunk issues.
func printReport(cmd *cobra.Command, report domain.ValidationReport) {
	cmd.Printf("Processed %d chunks, %d with findings\n",
		report.Summary.TotalArticles, report.Summary.ArticlesWithIssues)
	for _, result := range report.Issues {
		for _, issue := range result.Issues {
			cmd.Printf("  %s [%s/%s] %s\n", result.ChunkID, issue.Severity, issue.Kind, issue.Detail)
		}
	}
}
