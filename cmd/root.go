package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/alaynabinder/DIIG-Data-Challenge/internal/config"
)

var (
	// Global flags (wired to config at load time)
	cfgFile  string
	flagSeed int64

	// Loaded configuration
	cfg *cfgpkg.Analysis
)

var rootCmd = &cobra.Command{
	Use:   "lifexp",
	Short: "lifexp: life expectancy determinants pipeline",
	Long: `lifexp cleans the WHO life expectancy dataset, screens predictors for
collinearity against a declarative decision table, runs forward, backward,
and bidirectional selection per development stratum, cross-checks the
result with a cross-validated LASSO path, and scores the surviving model
on a seeded holdout split. Every stage writes its evidence into one
report artifact.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.lifexp/config.yaml)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "random seed for splits and folds (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("seed") {
		cfg.Seed = flagSeed
	}
}

// ensureConfig returns the loaded configuration; stages cannot run
// without column names and thresholds.
func ensureConfig() (*cfgpkg.Analysis, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded (see --config)")
	}
	return cfg, nil
}
