package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

var statusLimitFlag int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent ETL run history",
	Long: `Shows the most recent ETL runs with per-entity counts. Comparing
fetched against normalised and indexed makes silent data loss visible.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimitFlag, "limit", 5,
		"number of runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	reports, err := runStore.ListReports(context.Background(), statusLimitFlag)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Println("No runs recorded yet.")
			return nil
		}
		return err
	}
	if len(reports) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	for i, report := range reports {
		if i > 0 {
			cmd.Println()
		}
		outcome := "ok"
		if !report.Succeeded() {
			outcome = "ABORTED: " + report.Error
		}
		cmd.Printf("%s  run %s  (%s)  %s\n",
			report.StartedAt.Format("2006-01-02 15:04"),
			report.ID,
			report.FinishedAt.Sub(report.StartedAt).Round(time.Second),
			outcome)
		for _, e := range report.Entities {
			cmd.Printf("  %-12s fetched %-6d normalised %-6d indexed %-6d",
				e.Entity, e.Fetched, e.Normalised, e.Indexed)
			if e.Mismatched > 0 {
				cmd.Printf(" mismatched %d", e.Mismatched)
			}
			if e.IndexFailed > 0 {
				cmd.Printf(" rejected %d", e.IndexFailed)
			}
			if e.Error != "" {
				cmd.Printf(" error: %s", e.Error)
			}
			cmd.Println()
		}
	}
	return nil
}
