// Package mcp provides an MCP (Model Context Protocol) server adapter
// for LedgerLens. It lets AI assistants query the indexed accounting
// data and inspect ETL run state.
package mcp

import "errors"

// ErrMissingAssistant is returned when the assistant service is not provided.
var ErrMissingAssistant = errors.New("mcp: assistant service is required")
