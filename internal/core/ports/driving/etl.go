package driving

import (
	"context"
	"time"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// RunOptions configures one ETL run.
type RunOptions struct {
	// From bounds the export date range; zero fetches all history.
	From time.Time

	// Entities restricts the run to specific entity types.
	// Empty runs all entity types.
	Entities []domain.EntityType
}

// RunStatus is a snapshot of an in-flight ETL run.
type RunStatus struct {
	Running    bool
	Entity     domain.EntityType
	Fetched    int
	Normalised int
	Indexed    int
}

// ETLRunner executes fetch -> normalise -> index runs.
type ETLRunner interface {
	// Run executes one single-flight ETL run and returns its report.
	// The report is returned even on failure, with the counts gathered
	// up to the abort point.
	Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error)

	// Status returns a snapshot of the current run, if any.
	Status(ctx context.Context) (*RunStatus, error)
}
