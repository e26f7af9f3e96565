// Package directo implements the ERP connector for the Directo XML
// export API. Every entity is exported through a single form-POST
// endpoint selected by the "what" parameter; rows arrive as XML
// elements whose attributes are the field values.
package directo

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-cli/internal/logger"
)

// Connector implements driven.Connector for Directo.
type Connector struct {
	cfg    Config
	client *client
}

var _ driven.Connector = (*Connector)(nil)

// New creates a Directo connector. The config must carry at least the
// company database name and an API token.
func New(cfg Config) (*Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Connector{cfg: cfg, client: newClient(cfg)}, nil
}

// Name implements driven.Connector.
func (c *Connector) Name() string {
	return "directo"
}

// Validate implements driven.Connector. It issues a cheap authenticated
// export to prove the token works.
func (c *Connector) Validate(ctx context.Context) error {
	_, err := c.client.fetch(ctx, domain.EntityAccounts, time.Now())
	if err != nil {
		return fmt.Errorf("validating directo connection: %w", err)
	}
	return nil
}

// Fetch implements driven.Connector. The export API returns a whole
// document per entity, so the fetch completes before streaming starts;
// a failed fetch emits exactly one error and closes both channels.
func (c *Connector) Fetch(ctx context.Context, entity domain.EntityType, from time.Time) (<-chan domain.RawRecord, <-chan error) {
	records := make(chan domain.RawRecord)
	errs := make(chan error, 1)

	go func() {
		defer close(records)
		defer close(errs)

		logger.Debug("directo: fetching %s (from %s)", entity, from.Format(tsFilterLayout))
		raws, err := c.client.fetch(ctx, entity, from)
		if err != nil {
			errs <- fmt.Errorf("fetching %s: %w", entity, err)
			return
		}
		logger.Debug("directo: %s returned %d rows", entity, len(raws))

		for _, raw := range raws {
			select {
			case records <- raw:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return records, errs
}

// Close implements driven.Connector.
func (c *Connector) Close() error {
	return nil
}
