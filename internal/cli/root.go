// Package cli implements the hidecan command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"hidecan/internal/logger"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion injects build metadata, typically via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// configPath resolves the config file: --config flag first, then the
// HIDECAN_CONFIG environment variable, then the default location.
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("HIDECAN_CONFIG"); env != "" {
		return env
	}
	return "configs/config.yaml"
}

// Execute runs the hidecan CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		cfgFlag string
		verbose bool
	)

	root := &cobra.Command{
		Use:          "hidecan",
		Short:        "hidecan renders stacked per-chromosome genome tracks",
		Long:         "hidecan ingests GWAS, differential expression and candidate gene datasets and renders them as aligned per-chromosome scatter tracks, filtered by significance thresholds.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel("debug")
			}
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("hidecan %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().StringVar(&cfgFlag, "config", "", "config file (default configs/config.yaml, or HIDECAN_CONFIG)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd(&cfgFlag))
	root.AddCommand(newRenderCmd())
	root.AddCommand(newImportCmd(&cfgFlag))
	root.AddCommand(newExampleCmd())

	return root
}
