package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// configPath is the --config flag shared by every subcommand.
var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "riskd",
		Short: "Breach risk prediction service",
		Long: "riskd trains a magnitude model on historical data-security incidents\n" +
			"and serves calibrated risk predictions over HTTP and gRPC.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newTrainCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "riskd: %v\n", err)
		os.Exit(1)
	}
}
