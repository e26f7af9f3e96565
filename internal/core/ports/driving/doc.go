// Package driving defines the inbound ports: interfaces the core
// services expose to presentation adapters (CLI, TUI, MCP).
package driving
