// Package cli implements the command-line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driving"
	"github.com/kanun-labs/kanunqa/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services holds the wired application services. Fields are nil when the
// corresponding provider is not configured; commands report guidance
// instead of failing at startup.
type Services struct {
	QA       driving.QAService
	Ingest   driving.IngestService
	Articles driven.VectorStore
	Terms    driven.VectorStore
	Config   driven.ConfigStore

	// DefaultTopK applies when the ask command's --top-k flag is unset.
	DefaultTopK int

	Close func()
}

// Initializer builds the service graph for the resolved directories.
type Initializer func(configDir, dataDir string) (*Services, error)

var (
	initializer Initializer
	appServices *Services

	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

var rootCmd = &cobra.Command{
	Use:   "kanunqa",
	Short: "Turkish criminal law question answering",
	Long: `KanunQA answers questions about the Turkish Criminal Code (TCK).

It retrieves relevant law articles and legal term definitions from a
local vector index and synthesises a grounded answer with citations.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.kanunqa)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "index data directory (default ~/.kanunqa/data)")
}

// SetInitializer injects the service builder. Called from main before
// Execute.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// ensureServices builds the service graph on first use.
func ensureServices() (*Services, error) {
	if appServices != nil {
		return appServices, nil
	}
	if initializer == nil {
		return nil, errors.New("application not initialised")
	}
	svcs, err := initializer(flagConfigDir, flagDataDir)
	if err != nil {
		return nil, err
	}
	appServices = svcs
	return appServices, nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if appServices != nil && appServices.Close != nil {
			appServices.Close()
		}
	}()
	return rootCmd.Execute()
}
