package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of indexed chunks per collection",
	RunE:  runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, _ []string) error {
	svcs, err := ensureServices()
	if err != nil {
		return err
	}
	if svcs.Articles == nil || svcs.Terms == nil {
		return errors.New("index not available")
	}

	articles, err := svcs.Articles.Count(cmd.Context())
	if err != nil {
		return err
	}
	terms, err := svcs.Terms.Count(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("articles: %d\n", articles)
	cmd.Printf("terms:    %d\n", terms)
	return nil
}
