package driven

import (
	"context"
	"time"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// Connector fetches raw records from the ERP export API.
type Connector interface {
	// Name returns the connector identifier (e.g. "directo").
	Name() string

	// Validate checks that the connector is configured and the API
	// token is accepted. Returns domain.ErrAuthFailed (wrapped) when
	// the upstream rejects the credentials.
	Validate(ctx context.Context) error

	// Fetch streams the full export of one entity type, bounded by an
	// optional from date (zero means all available history). Records
	// and errors are delivered on the returned channels; both are
	// closed when the export is exhausted.
	//
	// The sequence is restartable from the beginning of the entity's
	// export, not resumable mid-stream. Pagination and transient-error
	// retry are handled internally; authentication failures are
	// delivered as domain.ErrAuthFailed and must not be retried.
	Fetch(ctx context.Context, entity domain.EntityType, from time.Time) (<-chan domain.RawRecord, <-chan error)

	// Close releases resources.
	Close() error
}
