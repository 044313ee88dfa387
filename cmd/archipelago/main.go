package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archipelago-eco/archipelago/cmd/archipelago/commands"
	"github.com/archipelago-eco/archipelago/logger"
)

var rootCmd = &cobra.Command{
	Use:   "archipelago",
	Short: "Regional species pools for community assembly simulations",
	Long: `archipelago - Regional species pool generation and sampling.

archipelago generates metacommunities (regional species pools) under uniform,
log-normal, or phylogenetic log-series models, persists them as snapshots in
SQLite, and draws migrants from them for downstream community assembly
simulations.

Examples:
  archipelago generate --seed 42          # Generate a pool and save a snapshot
  archipelago sample --snapshot <id> -n 5 # Draw 5 migrants from a snapshot
  archipelago params show                 # Show generation parameters
  archipelago db ls                       # List stored snapshots`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "Path to an archipelago.toml configuration file")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.SampleCmd)
	rootCmd.AddCommand(commands.ParamsCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
