package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driving"
)

// fromFlagLayout matches the export API's date filter format.
const fromFlagLayout = "02.01.2006"

var (
	etlFromFlag     string
	etlEntitiesFlag []string
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Run the fetch, normalise and index pipeline",
	Long: `Fetches records from Directo, normalises them against the target
schema, and indexes them into fresh generation indices. Each entity's
alias is swapped only after its generation is complete.

Runs are single-flight: a second run started while one is in progress
fails immediately.`,
	RunE: runETL,
}

func init() {
	etlCmd.Flags().StringVar(&etlFromFlag, "from", "",
		"fetch records changed since this date (DD.MM.YYYY)")
	etlCmd.Flags().StringSliceVar(&etlEntitiesFlag, "entity", nil,
		"restrict the run to specific entity types (repeatable)")
	rootCmd.AddCommand(etlCmd)
}

func runETL(cmd *cobra.Command, _ []string) error {
	if connector == nil {
		return errors.New("Directo connector not configured - run 'ledgerlens settings set directo'")
	}
	if searchEngine == nil {
		return errors.New("search engine not configured - run 'ledgerlens settings set elastic'")
	}

	opts := driving.RunOptions{From: defaultFrom()}
	if etlFromFlag != "" {
		from, err := time.Parse(fromFlagLayout, etlFromFlag)
		if err != nil {
			return fmt.Errorf("invalid --from date %q (want DD.MM.YYYY)", etlFromFlag)
		}
		opts.From = from
	}
	for _, name := range etlEntitiesFlag {
		entity, err := domain.ParseEntityType(name)
		if err != nil {
			return err
		}
		opts.Entities = append(opts.Entities, entity)
	}

	cmd.Printf("Starting ETL run (from %s)...\n", opts.From.Format(fromFlagLayout))

	report, err := runWithProgress(context.Background(), cmd, opts)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("ETL run failed: %w", err)
	}
	return nil
}

// runWithProgress runs the ETL while displaying progress updates.
func runWithProgress(ctx context.Context, cmd *cobra.Command, opts driving.RunOptions) (*domain.RunReport, error) {
	type result struct {
		report *domain.RunReport
		err    error
	}
	resultCh := make(chan result, 1)
	go func() {
		report, err := etlRunner.Run(ctx, opts)
		resultCh <- result{report, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastEntity domain.EntityType
	lastFetched := 0
	for {
		select {
		case res := <-resultCh:
			if lastFetched > 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, statusErr := etlRunner.Status(ctx)
			if statusErr != nil || status == nil || !status.Running {
				continue
			}
			if status.Entity != lastEntity {
				if lastFetched > 0 {
					cmd.Println()
				}
				lastEntity = status.Entity
				lastFetched = 0
			}
			if status.Fetched > lastFetched {
				cmd.Printf("\r%s: %d fetched, %d indexed", status.Entity,
					status.Fetched, status.Indexed)
				lastFetched = status.Fetched
			}
		}
	}
}

// printReport renders a run report as a per-entity summary table.
func printReport(cmd *cobra.Command, report *domain.RunReport) {
	cmd.Println()
	cmd.Printf("Run %s (%s)\n", report.ID,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
	cmd.Printf("%-12s %8s %10s %10s %8s  %s\n",
		"ENTITY", "FETCHED", "NORMALISED", "MISMATCHED", "INDEXED", "ERROR")
	for _, e := range report.Entities {
		cmd.Printf("%-12s %8d %10d %10d %8d  %s\n",
			e.Entity, e.Fetched, e.Normalised, e.Mismatched, e.Indexed, e.Error)
	}
	if report.Error != "" {
		cmd.Printf("\nRun aborted: %s\n", report.Error)
		return
	}
	cmd.Printf("\nTotal: %d fetched, %d indexed\n",
		report.TotalFetched(), report.TotalIndexed())
}
