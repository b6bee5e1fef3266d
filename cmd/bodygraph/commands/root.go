package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bodygraph",
		Short: "Human Design bodygraph calculator",
		Long: `bodygraph computes Human Design charts from birth data.

A chart combines the personality activations at the birth instant with the
design activations at the moment the Sun stood 88 degrees earlier. From the
26 activations it derives:
  - Defined channels and centers
  - Type, strategy and inner authority
  - Profile, incarnation cross and definition`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newChartCommand())
	rootCmd.AddCommand(newGateCommand())
	rootCmd.AddCommand(newChartsCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
