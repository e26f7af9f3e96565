package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/services"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily ETL scheduler in the foreground",
	Long: `Blocks and triggers one full ETL run per day at the configured time.
Set the time with 'ledgerlens settings set schedule'.`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, _ []string) error {
	if connector == nil {
		return errors.New("Directo connector not configured - run 'ledgerlens settings set directo'")
	}
	if searchEngine == nil {
		return errors.New("search engine not configured - run 'ledgerlens settings set elastic'")
	}
	if cfg.Scheduler.At == "" {
		return errors.New("no schedule configured - run 'ledgerlens settings set schedule'")
	}

	scheduler, err := services.NewScheduler(etlRunner, cfg.Scheduler.At,
		driving.RunOptions{From: defaultFrom()})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Scheduler running, daily at %s. Ctrl-C to stop.\n", cfg.Scheduler.At)
	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
