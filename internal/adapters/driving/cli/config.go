package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and persists it immediately.

Common keys:
  embedding.provider   openai | ollama
  embedding.model      e.g. text-embedding-3-small
  embedding.api_key    provider API key (or use OPENAI_API_KEY)
  llm.provider         openai | anthropic | ollama
  llm.model            e.g. gpt-4o-mini
  llm.api_key          provider API key (or use ANTHROPIC_API_KEY)
  retrieval.top_k      results per question
  retrieval.context_budget  assembled context size`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svcs, err := ensureServices()
	if err != nil {
		return err
	}
	if svcs.Config == nil {
		return errors.New("config store not available")
	}

	key, raw := args[0], args[1]
	if err := svcs.Config.Set(key, coerceValue(raw)); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

// coerceValue stores numerics and booleans typed rather than as strings,
// so GetInt and GetBool work after a round trip.
func coerceValue(raw string) any {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	svcs, err := ensureServices()
	if err != nil {
		return err
	}
	if svcs.Config == nil {
		return errors.New("config store not available")
	}

	value, ok := svcs.Config.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q not set", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	svcs, err := ensureServices()
	if err != nil {
		return err
	}
	if svcs.Config == nil {
		return errors.New("config store not available")
	}
	cmd.Println(svcs.Config.Path())
	return nil
}
