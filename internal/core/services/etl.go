package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-cli/internal/logger"
	"github.com/ledgerlens/ledgerlens-cli/internal/normalise"
)

// Ensure Runner implements the interface.
var _ driving.ETLRunner = (*Runner)(nil)

const (
	// bulkBatchSize is how many normalised records one bulk write carries.
	bulkBatchSize = 500

	// runLockTTL bounds how long a crashed run can block the next one.
	runLockTTL = time.Hour

	// generationLayout names index generations by run start time.
	generationLayout = "20060102-150405"
)

// Runner executes fetch -> normalise -> index runs. Each run writes
// every entity into a fresh generation index and swaps the entity alias
// only after the generation is complete, so a failed run never leaves
// readers on a partial snapshot.
type Runner struct {
	connector driven.Connector
	engine    driven.SearchEngine
	store     driven.RunStore

	mu     sync.Mutex
	status driving.RunStatus
}

// NewRunner creates an ETL runner.
func NewRunner(connector driven.Connector, engine driven.SearchEngine, store driven.RunStore) *Runner {
	return &Runner{
		connector: connector,
		engine:    engine,
		store:     store,
	}
}

// Run implements driving.ETLRunner.
func (r *Runner) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunReport, error) {
	if r.connector == nil {
		return nil, domain.ErrConnectorUnavailable
	}
	if r.engine == nil {
		return nil, domain.ErrSearchUnavailable
	}

	entities := opts.Entities
	if len(entities) == 0 {
		entities = domain.AllEntityTypes()
	}
	for _, e := range entities {
		if !e.Valid() {
			return nil, fmt.Errorf("%w: unknown entity type %q", domain.ErrInvalidInput, e)
		}
	}

	runID := uuid.NewString()
	if err := r.store.AcquireLock(ctx, runID, runLockTTL); err != nil {
		return nil, err
	}
	defer func() {
		if err := r.store.ReleaseLock(context.Background(), runID); err != nil {
			logger.Warn("releasing run lock: %v", err)
		}
	}()

	started := time.Now().UTC()
	generation := started.Format(generationLayout)
	report := &domain.RunReport{
		ID:        runID,
		From:      opts.From,
		StartedAt: started,
	}

	logger.Info("Starting ETL run %s (%d entity types)", runID, len(entities))
	r.setRunning(true)

	for _, entity := range entities {
		entityReport, err := r.runEntity(ctx, entity, generation, opts.From)
		report.Entities = append(report.Entities, entityReport)
		if err != nil {
			// Fatal: the token is bad for every remaining entity too.
			report.Error = err.Error()
			break
		}
	}

	r.setRunning(false)
	report.FinishedAt = time.Now().UTC()

	if err := r.store.SaveReport(ctx, report); err != nil {
		logger.Warn("saving run report: %v", err)
	}

	if report.Error != "" {
		return report, fmt.Errorf("ETL run aborted: %s", report.Error)
	}
	logger.Info("ETL run %s finished: %d fetched, %d indexed",
		runID, report.TotalFetched(), report.TotalIndexed())
	return report, nil
}

// runEntity processes one entity type end to end. The returned error is
// non-nil only for failures that must abort the whole run; entity-level
// failures are recorded in the report instead.
func (r *Runner) runEntity(ctx context.Context, entity domain.EntityType, generation string, from time.Time) (domain.EntityReport, error) {
	er := domain.EntityReport{Entity: entity}

	schema, err := domain.SchemaFor(entity)
	if err != nil {
		er.Error = err.Error()
		return er, nil
	}

	logger.Section(fmt.Sprintf("Processing %s", entity))
	r.setEntity(entity)

	// Cancelling releases the connector goroutine when the entity is
	// abandoned mid-stream, e.g. after an index write failure.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indexName := fmt.Sprintf("%s-%s", entity, generation)
	indexCreated := false

	// dropGeneration removes a generation that will never be aliased;
	// the alias stays on the previous complete one. Called on every
	// failure exit once the index exists, so failed runs do not leave
	// orphan indices behind.
	dropGeneration := func() {
		if !indexCreated {
			return
		}
		if err := r.engine.DeleteIndex(ctx, indexName); err != nil {
			logger.Warn("deleting incomplete index %s: %v", indexName, err)
		}
	}

	flush := func(batch []domain.RawRecord) error {
		result := normalise.Batch(batch, schema)
		er.Normalised += len(result.Records)
		er.Mismatched += len(result.Failures)
		for _, mismatch := range result.Failures {
			logger.Warn("%v", &mismatch)
		}
		if len(result.Records) == 0 {
			return nil
		}

		if !indexCreated {
			if err := r.engine.CreateIndex(ctx, indexName, schema); err != nil {
				return err
			}
			indexCreated = true
		}

		bulk, err := r.engine.BulkWrite(ctx, indexName, result.Records)
		if err != nil {
			return err
		}
		er.Indexed += bulk.Succeeded
		er.IndexFailed += bulk.Failed
		for _, reason := range bulk.Reasons {
			logger.Warn("%s: bulk rejection: %s", entity, reason)
		}
		r.setProgress(er.Fetched, er.Normalised, er.Indexed)
		return nil
	}

	records, errs := r.connector.Fetch(ctx, entity, from)
	batch := make([]domain.RawRecord, 0, bulkBatchSize)
	for raw := range records {
		er.Fetched++
		batch = append(batch, raw)
		if len(batch) == bulkBatchSize {
			if err := flush(batch); err != nil {
				er.Error = err.Error()
				dropGeneration()
				return er, nil
			}
			batch = batch[:0]
		}
		r.setProgress(er.Fetched, er.Normalised, er.Indexed)
	}

	if fetchErr := <-errs; fetchErr != nil {
		er.Error = fetchErr.Error()
		dropGeneration()
		if errors.Is(fetchErr, domain.ErrAuthFailed) {
			return er, fetchErr
		}
		return er, nil
	}

	if err := flush(batch); err != nil {
		er.Error = err.Error()
		dropGeneration()
		return er, nil
	}

	if !indexCreated {
		logger.Info("%s: no records, keeping previous generation", entity)
		return er, nil
	}
	er.Generation = indexName

	previous, err := r.engine.SwapAlias(ctx, string(entity), indexName)
	if err != nil {
		er.Error = err.Error()
		er.Generation = ""
		dropGeneration()
		return er, nil
	}
	for _, old := range previous {
		if err := r.engine.DeleteIndex(ctx, old); err != nil {
			logger.Warn("deleting superseded index %s: %v", old, err)
		}
	}

	logger.Info("%s: %d fetched, %d normalised, %d indexed (%d mismatched, %d rejected)",
		entity, er.Fetched, er.Normalised, er.Indexed, er.Mismatched, er.IndexFailed)
	return er, nil
}

// Status implements driving.ETLRunner.
func (r *Runner) Status(_ context.Context) (*driving.RunStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := r.status
	return &status, nil
}

func (r *Runner) setRunning(running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = driving.RunStatus{Running: running}
}

func (r *Runner) setEntity(entity domain.EntityType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Entity = entity
	r.status.Fetched = 0
	r.status.Normalised = 0
	r.status.Indexed = 0
}

func (r *Runner) setProgress(fetched, normalised, indexed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Fetched = fetched
	r.status.Normalised = normalised
	r.status.Indexed = indexed
}
