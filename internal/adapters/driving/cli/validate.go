package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/services"
	"github.com/kanun-labs/kanunqa/internal/loader"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a structured law JSON file without indexing",
	Long: `Runs hierarchy classification and content-quality checks over a
structured law JSON file and prints the resulting report. Nothing is
embedded or indexed, so no provider configuration is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	candidates, err := loader.LoadArticles(args[0])
	if err != nil {
		return fmt.Errorf("loading articles: %w", err)
	}

	classifier := services.NewHierarchyClassifier(domain.DefaultRangeTable())

	var report domain.ValidationReport
	for _, candidate := range candidates {
		candidate.Metadata.Type = domain.ChunkTypeArticle

		if _, err := classifier.Classify([]int{candidate.Metadata.Number}); err != nil {
			report.Add(domain.ValidationResult{
				ChunkID: candidate.ID,
				Issues: []domain.Issue{{
					Kind:     domain.IssueOutOfRangeReference,
					Severity: domain.SeverityError,
					Detail:   err.Error(),
				}},
			})
			continue
		}
		report.Add(classifier.ValidateContentQuality(candidate))
	}

	if validateJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printReport(cmd, report)
	return nil
}
