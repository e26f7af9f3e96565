package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// Store is a SQLite-backed run store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ledgerlens/data/ledgerlens.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ledgerlens", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledgerlens.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// AcquireLock takes the run lock. The lock is a single upsert guarded
// by the expiry check, so two racing acquisitions cannot both succeed.
func (s *Store) AcquireLock(ctx context.Context, holder string, ttl time.Duration) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO run_lock (id, holder, acquired_at, expires_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			holder = excluded.holder,
			acquired_at = excluded.acquired_at,
			expires_at = excluded.expires_at
		WHERE run_lock.expires_at <= excluded.acquired_at
	`, holder, now, now.Add(ttl))
	if err != nil {
		return fmt.Errorf("acquiring run lock: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acquiring run lock: %w", err)
	}
	if affected == 0 {
		return domain.ErrRunInProgress
	}
	return nil
}

// ReleaseLock releases the run lock if holder still owns it. A lock
// taken over after expiry must not be released by the stale holder.
func (s *Store) ReleaseLock(ctx context.Context, holder string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM run_lock WHERE id = 1 AND holder = ?", holder)
	if err != nil {
		return fmt.Errorf("releasing run lock: %w", err)
	}
	return nil
}

// SaveReport persists a run report and its per-entity rows in one
// transaction.
func (s *Store) SaveReport(ctx context.Context, report *domain.RunReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var fromDate any
	if !report.From.IsZero() {
		fromDate = report.From.UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, from_date, started_at, finished_at, error)
		VALUES (?, ?, ?, ?, ?)
	`, report.ID, fromDate, report.StartedAt.UTC(), report.FinishedAt.UTC(), report.Error)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	for _, e := range report.Entities {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO entity_reports
				(run_id, entity, generation, fetched, normalised, mismatched, indexed, index_failed, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.ID, string(e.Entity), e.Generation,
			e.Fetched, e.Normalised, e.Mismatched, e.Indexed, e.IndexFailed, e.Error)
		if err != nil {
			return fmt.Errorf("saving entity report for %s: %w", e.Entity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing report: %w", err)
	}
	return nil
}

// ListReports returns the most recent run reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]domain.RunReport, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_date, started_at, finished_at, error
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var reports []domain.RunReport
	for rows.Next() {
		var report domain.RunReport
		var fromDate sql.NullTime
		if err := rows.Scan(&report.ID, &fromDate,
			&report.StartedAt, &report.FinishedAt, &report.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if fromDate.Valid {
			report.From = fromDate.Time
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range reports {
		entities, err := s.entityReports(ctx, reports[i].ID)
		if err != nil {
			return nil, err
		}
		reports[i].Entities = entities
	}
	return reports, nil
}

// LatestReport returns the most recent run report.
func (s *Store) LatestReport(ctx context.Context) (*domain.RunReport, error) {
	reports, err := s.ListReports(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, fmt.Errorf("%w: no runs recorded", domain.ErrNotFound)
	}
	return &reports[0], nil
}

// entityReports loads the per-entity rows of one run in insert order.
func (s *Store) entityReports(ctx context.Context, runID string) ([]domain.EntityReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity, generation, fetched, normalised, mismatched, indexed, index_failed, error
		FROM entity_reports WHERE run_id = ? ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing entity reports: %w", err)
	}
	defer rows.Close()

	var entities []domain.EntityReport
	for rows.Next() {
		var e domain.EntityReport
		var entity string
		if err := rows.Scan(&entity, &e.Generation, &e.Fetched, &e.Normalised,
			&e.Mismatched, &e.Indexed, &e.IndexFailed, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning entity report: %w", err)
		}
		e.Entity = domain.EntityType(entity)
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity reports: %w", err)
	}
	return entities, nil
}
