package driven

import (
	"context"
	"time"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// RunStore persists ETL run history and provides run-level mutual
// exclusion. Bulk writes are non-transactional, so two concurrent runs
// against the same collections could interleave partial batches; the
// lock makes runs single-flight.
type RunStore interface {
	// AcquireLock takes the run lock for holder. It fails with
	// domain.ErrRunInProgress when another holder has a live lock.
	// A lock older than ttl is considered stale and may be taken over.
	AcquireLock(ctx context.Context, holder string, ttl time.Duration) error

	// ReleaseLock releases the run lock held by holder.
	ReleaseLock(ctx context.Context, holder string) error

	// SaveReport persists a completed run report.
	SaveReport(ctx context.Context, report *domain.RunReport) error

	// ListReports returns the most recent run reports, newest first.
	ListReports(ctx context.Context, limit int) ([]domain.RunReport, error)

	// LatestReport returns the most recent run report, or
	// domain.ErrNotFound when no run has been recorded.
	LatestReport(ctx context.Context) (*domain.RunReport, error)

	// Close releases resources.
	Close() error
}
