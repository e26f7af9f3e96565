package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-cli/internal/logger"
)

// Scheduler triggers one ETL run per day at a fixed local time.
type Scheduler struct {
	runner driving.ETLRunner
	at     string
	opts   driving.RunOptions

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. at is the daily run time in HH:MM,
// 24-hour clock; opts are passed to every triggered run.
func NewScheduler(runner driving.ETLRunner, at string, opts driving.RunOptions) (*Scheduler, error) {
	if _, err := time.Parse("15:04", at); err != nil {
		return nil, fmt.Errorf("invalid schedule time %q (want HH:MM): %w", at, err)
	}
	return &Scheduler{
		runner: runner,
		at:     at,
		opts:   opts,
	}, nil
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	for {
		next := nextAfter(time.Now(), s.at)
		logger.Info("Next scheduled run at %s", next.Format("2006-01-02 15:04"))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-s.stopCh:
			timer.Stop()
			return nil
		case <-timer.C:
			s.trigger(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for an in-flight run to complete
	s.wg.Wait()

	return nil
}

// trigger executes one scheduled run. Failures are logged, never fatal:
// the next day's run gets a fresh chance.
func (s *Scheduler) trigger(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	logger.Info("Starting scheduled ETL run")
	report, err := s.runner.Run(ctx, s.opts)
	if err != nil {
		logger.Warn("scheduled run failed: %v", err)
		return
	}
	logger.Info("Scheduled run %s finished: %d fetched, %d indexed",
		report.ID, report.TotalFetched(), report.TotalIndexed())
}

// nextAfter returns the next occurrence of the HH:MM wall-clock time
// strictly after now, in now's location.
func nextAfter(now time.Time, at string) time.Time {
	parsed, err := time.Parse("15:04", at)
	if err != nil {
		// Constructor validated the format; fall back to a day from now.
		return now.Add(24 * time.Hour)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
