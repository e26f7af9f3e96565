package mcp

import (
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers natural-language questions.
	Assistant driving.Assistant

	// Runs exposes ETL run history.
	Runs driven.RunStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	// Runs is optional: without it the run_status tool reports no history.
	return nil
}
