// Command resourcectl is a thin CLI over the resource engine facade: it
// loads a catalog, then lists, searches, plans, installs, or rolls back
// resources, mapping the engine's tagged errors onto the exit codes
// spec.md §6 defines. Grounded on the teacher's cmd/nerd root command
// (cobra root + persistent flags + zap for CLI diagnostics, the
// package's own internal/logging for file telemetry).
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"resourcehub/internal/config"
	"resourcehub/internal/logging"
)

var (
	verbose    bool
	catalogDir string
	homeDir    string
	timeout    time.Duration

	logger *zap.Logger
	cfg    *config.EngineConfig
)

var rootCmd = &cobra.Command{
	Use:   "resourcectl",
	Short: "Manage a local catalog of installable Claude resources",
	Long: `resourcectl loads a resource catalog (agents, commands, hooks,
templates, and MCP servers described by YAML files) and lets you list,
search, categorize, and install resources from it into a per-user
directory, with integrity verification and rollback on failure.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg = config.FromEnv()
		if homeDir != "" {
			cfg.UserBase = homeDir
		}

		if err := logging.Initialize(logging.Options{
			LogsDir:   cfg.LogsDir(),
			DebugMode: cfg.DebugLogging || verbose,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&catalogDir, "catalog", "c", "", "catalog directory (required)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "per-user install base (default: $CLAUDE_HOME or ~/.claude)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall operation timeout")
	rootCmd.MarkPersistentFlagRequired("catalog")

	rootCmd.AddCommand(
		listCmd,
		searchCmd,
		categoriesCmd,
		planCmd,
		installCmd,
		installedCmd,
		watchCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
