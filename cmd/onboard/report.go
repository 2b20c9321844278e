package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lfx-eng/onboard/internal/progress"
	"github.com/lfx-eng/onboard/internal/storage/sqlite"
)

var reportSessionID int64

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the report for a recorded onboarding session",
	Example: `  onboard report --session 1
  onboard report --session 1 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := sqlite.New(rootCtx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
		}
		defer store.Close()

		report, err := store.GetSessionReport(rootCtx, reportSessionID)
		if err != nil {
			return fmt.Errorf("session %d: %w", reportSessionID, err)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		progress.RenderReport(os.Stdout, report)
		return nil
	},
}

func init() {
	reportCmd.Flags().Int64Var(&reportSessionID, "session", 0, "Session id (required)")
	_ = reportCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(reportCmd)
}
