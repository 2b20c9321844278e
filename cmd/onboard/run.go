package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lfx-eng/onboard/internal/onboard"
	"github.com/lfx-eng/onboard/internal/progress"
	"github.com/lfx-eng/onboard/internal/services/stub"
	"github.com/lfx-eng/onboard/internal/storage/sqlite"
)

var (
	runOrg       string
	runProject   string
	runStub      bool
	runBatchSize int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an onboarding session for an organization and project",
	Example: `  onboard run --stub --org "Acme Corp" --project cncf
  onboard run --stub --org "Tech Innovations Inc" --project prometheus --batch-size 5 -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if runStub {
			cfg.Stub = true
		}
		if cmd.Flags().Changed("batch-size") {
			cfg.BatchSize = runBatchSize
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		// Live collaborator adapters ship separately; this binary only wires
		// the in-process fakes.
		if !cfg.Stub {
			return fmt.Errorf("live collaborator services are not configured; run with --stub for the in-process fakes")
		}

		store, err := sqlite.New(rootCtx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
		}
		defer store.Close()

		set := stub.NewSeededSet()
		var reporter progress.Reporter = progress.NewTerminal(os.Stdout, quietFlag, verboseFlag)
		if jsonOutput {
			reporter = progress.Discard{}
		}

		orch := onboard.New(onboard.Deps{
			Store:     store,
			Members:   set.Members,
			Projects:  set.Projects,
			Slack:     set.Slack,
			Email:     set.Email,
			Landscape: set.Landscape,
			Reporter:  reporter,
		}, cfg)

		result, err := orch.Run(rootCtx, runOrg, runProject)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Printf("\nSession %d recorded in %s. View it with: onboard report --session %d\n",
			result.SessionID, cfg.DBPath, result.SessionID)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runOrg, "org", "", "Member organization name (required)")
	runCmd.Flags().StringVar(&runProject, "project", "", "Project slug (required)")
	runCmd.Flags().BoolVar(&runStub, "stub", false, "Use in-process fake collaborator services")
	runCmd.Flags().IntVar(&runBatchSize, "batch-size", 0, "Contacts per batch (default from config)")
	_ = runCmd.MarkFlagRequired("org")
	_ = runCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(runCmd)
}
