package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driven/storage/memory"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// mockAssistant returns a canned answer.
type mockAssistant struct {
	answer *domain.Answer
	err    error
}

func (m *mockAssistant) Ask(_ context.Context, _ string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func TestNewServerRequiresAssistant(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.True(t, errors.Is(err, ErrMissingAssistant))
}

func TestNewServerWithValidPorts(t *testing.T) {
	server, err := NewServer(&Ports{Assistant: &mockAssistant{}})
	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestHandleAsk(t *testing.T) {
	server, err := NewServer(&Ports{Assistant: &mockAssistant{
		answer: &domain.Answer{
			Text:  "Total is 12,345.67 EUR.",
			Hits:  42,
			Query: domain.QuerySpec{Indices: []string{"invoices"}},
		},
	}})
	require.NoError(t, err)

	_, output, err := server.handleAsk(context.Background(), nil,
		AskInput{Question: "total invoiced?"})
	require.NoError(t, err)

	assert.Equal(t, "Total is 12,345.67 EUR.", output.Answer)
	assert.Equal(t, int64(42), output.Hits)
	assert.Equal(t, []string{"invoices"}, output.Indices)
}

func TestHandleAskPropagatesErrors(t *testing.T) {
	server, err := NewServer(&Ports{Assistant: &mockAssistant{
		err: domain.ErrInvalidQuery,
	}})
	require.NoError(t, err)

	_, _, err = server.handleAsk(context.Background(), nil, AskInput{Question: "q"})
	assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
}

func TestHandleRunStatus(t *testing.T) {
	store := memory.NewRunStore()
	now := time.Now().UTC()
	require.NoError(t, store.SaveReport(context.Background(), &domain.RunReport{
		ID:         "run-1",
		StartedAt:  now,
		FinishedAt: now.Add(time.Minute),
		Entities: []domain.EntityReport{
			{Entity: domain.EntityInvoices, Fetched: 10, Normalised: 9, Mismatched: 1, Indexed: 9},
		},
	}))

	server, err := NewServer(&Ports{Assistant: &mockAssistant{}, Runs: store})
	require.NoError(t, err)

	_, output, err := server.handleRunStatus(context.Background(), nil, RunStatusInput{})
	require.NoError(t, err)

	assert.Equal(t, "run-1", output.RunID)
	assert.True(t, output.Succeeded)
	require.Len(t, output.Entities, 1)
	assert.Equal(t, 1, output.Entities[0].Mismatched)
}

func TestHandleRunStatusNoHistory(t *testing.T) {
	server, err := NewServer(&Ports{Assistant: &mockAssistant{}, Runs: memory.NewRunStore()})
	require.NoError(t, err)

	_, output, err := server.handleRunStatus(context.Background(), nil, RunStatusInput{})
	require.NoError(t, err)
	assert.Empty(t, output.RunID)
}

func TestHandleSchemaResource(t *testing.T) {
	server, err := NewServer(&Ports{Assistant: &mockAssistant{}})
	require.NoError(t, err)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uriScheme + "schema"},
	}
	result, err := server.handleSchemaResource(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, "invoices: number (keyword)")
	assert.Contains(t, result.Contents[0].Text, "objects")
}
