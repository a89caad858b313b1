// Package app wires the bagpack CLI commands together.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dataDirFlag string

	// RootCmd is the root command for bagpack
	RootCmd = &cobra.Command{
		Use:   "bagpack",
		Short: "Inventory of globally installed brew, npm, and pip packages",
		Long: `bagpack collects the globally installed packages reported by Homebrew,
npm, and pip into one normalized snapshot, flags what is outdated, and keeps
a local history of every collection run.

A manager that fails to respond never blocks the others: its packages are
simply missing from the snapshot and a warning explains why.

Examples:
  # Collect and display the current inventory
  bagpack scan

  # Export the inventory as JSON
  bagpack export --out inventory.json

  # Show the last recorded run without collecting
  bagpack status

  # Keep the inventory fresh in the background
  bagpack watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("bagpack: inventory of globally installed brew, npm, and pip packages")
			fmt.Println()
			fmt.Println("Run 'bagpack scan' to collect the current inventory.")
			fmt.Println("Run 'bagpack --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default: ~/.bagpack)")

	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(exportCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
