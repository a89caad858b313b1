package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/phl28/bagpack/internal/output"
)

var (
	scanNoSave bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Collect and display the current package inventory",
		Long: `Collect globally installed packages from brew, npm, and pip, annotate them
with the latest available versions, and display the result.

Each manager is queried independently: a manager that is not installed or
fails to respond produces a warning, never an error. The completed run is
recorded in the local history unless --no-save is given.`,
		Example: `  # Collect and display the inventory
  bagpack scan

  # Collect without recording the run
  bagpack scan --no-save`,
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().BoolVar(&scanNoSave, "no-save", false, "do not record this run in the history database")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	agg := newAggregator(cfg)

	var spinner *output.Spinner
	if isatty.IsTerminal(os.Stdout.Fd()) {
		spinner = output.NewSpinner("Collecting package inventories...")
		spinner.Start()
	}

	summary := agg.Collect(cmd.Context())

	if spinner != nil {
		spinner.Stop()
	}

	fmt.Print(output.RenderSnapshotTable(&summary.Snapshot))
	if warnings := output.RenderWarnings(summary.Warnings); warnings != "" {
		fmt.Println()
		fmt.Print(warnings)
	}
	fmt.Println()
	fmt.Println(output.RenderSummaryLine(&summary.Snapshot))

	if scanNoSave {
		return nil
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.SaveSummary(summary); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}
