package driven

import (
	"context"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// BulkResult reports the outcome of one bulk write. Bulk writes are
// not transactional: a batch can partially fail, and the caller must
// report succeeded/failed counts rather than assume all-or-nothing.
type BulkResult struct {
	// Succeeded is the number of documents the engine accepted.
	Succeeded int

	// Failed is the number of documents the engine rejected.
	Failed int

	// Reasons holds the first few rejection reasons, for logging.
	Reasons []string
}

// SearchEngine is the boundary to the managed search service.
//
// Collections are generation-based: each ETL run writes into a fresh
// generation index and swaps the entity alias on success, so readers
// always see one complete, self-consistent snapshot.
type SearchEngine interface {
	// Ping verifies connectivity and credentials.
	Ping(ctx context.Context) error

	// CreateIndex creates a new index with the type mapping generated
	// from the schema. Mapping changes require a new index, never an
	// in-place mutation.
	CreateIndex(ctx context.Context, name string, schema domain.Schema) error

	// BulkWrite indexes a batch of normalised records into the named
	// index. Partial failures are reported in the result, not as an
	// error; the error return is reserved for transport failures.
	BulkWrite(ctx context.Context, index string, records []domain.Record) (BulkResult, error)

	// SwapAlias atomically points alias at newIndex, detaching any
	// previous generation. It returns the names of the indices the
	// alias previously pointed at so the caller can delete them.
	SwapAlias(ctx context.Context, alias, newIndex string) ([]string, error)

	// DeleteIndex removes an index. Deleting a missing index is not
	// an error.
	DeleteIndex(ctx context.Context, name string) error

	// Search executes a structured query against entity collections.
	// Queries referencing unmapped fields fail with an error wrapping
	// domain.ErrInvalidQuery.
	Search(ctx context.Context, spec domain.QuerySpec) (*domain.QueryResult, error)

	// Count returns the number of documents in an index or alias.
	Count(ctx context.Context, index string) (int64, error)
}
