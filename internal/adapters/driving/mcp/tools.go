package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a natural-language question about the accounting data"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Hits    int64    `json:"hits"`
	Indices []string `json:"indices"`
}

// RunStatusInput is the input schema for the run_status tool.
type RunStatusInput struct{}

// RunStatusOutput is the output schema for the run_status tool.
type RunStatusOutput struct {
	RunID      string            `json:"run_id,omitempty"`
	StartedAt  string            `json:"started_at,omitempty"`
	FinishedAt string            `json:"finished_at,omitempty"`
	Succeeded  bool              `json:"succeeded"`
	Error      string            `json:"error,omitempty"`
	Entities   []EntityRunOutput `json:"entities,omitempty"`
}

// EntityRunOutput is the per-entity slice of a run report.
type EntityRunOutput struct {
	Entity     string `json:"entity"`
	Fetched    int    `json:"fetched"`
	Normalised int    `json:"normalised"`
	Mismatched int    `json:"mismatched"`
	Indexed    int    `json:"indexed"`
	Error      string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a natural-language question about the indexed accounting data",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_status",
		Description: "Report the most recent ETL run with per-entity counts",
	}, s.handleRunStatus)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Assistant.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Hits:    answer.Hits,
		Indices: answer.Query.Indices,
	}, nil
}

// handleRunStatus handles the run_status tool invocation.
func (s *Server) handleRunStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RunStatusInput,
) (*mcp.CallToolResult, RunStatusOutput, error) {
	if s.ports.Runs == nil {
		return nil, RunStatusOutput{}, nil
	}

	report, err := s.ports.Runs.LatestReport(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, RunStatusOutput{}, nil
		}
		return nil, RunStatusOutput{}, err
	}

	output := RunStatusOutput{
		RunID:      report.ID,
		StartedAt:  report.StartedAt.Format("2006-01-02 15:04:05"),
		FinishedAt: report.FinishedAt.Format("2006-01-02 15:04:05"),
		Succeeded:  report.Succeeded(),
		Error:      report.Error,
	}
	for _, e := range report.Entities {
		output.Entities = append(output.Entities, EntityRunOutput{
			Entity:     string(e.Entity),
			Fetched:    e.Fetched,
			Normalised: e.Normalised,
			Mismatched: e.Mismatched,
			Indexed:    e.Indexed,
			Error:      e.Error,
		})
	}
	return nil, output, nil
}
