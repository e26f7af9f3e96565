package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
)

// mockLLM returns canned responses in call order.
type mockLLM struct {
	responses []string
	prompts   []string
	err       error
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.prompts = append(m.prompts, prompt)
	if len(m.responses) == 0 {
		return "", errors.New("mockLLM: no responses left")
	}
	response := m.responses[0]
	m.responses = m.responses[1:]
	return response, nil
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "", errors.New("not used")
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPrompts serves the embedded placeholder templates.
type mockPrompts struct{}

func (mockPrompts) Load(name string) (string, error) {
	switch name {
	case driven.PromptTranslate:
		return "SCHEMA:\n%s\nQUESTION: %s", nil
	case driven.PromptAnalyse:
		return "QUESTION: %s\nRESULTS:\n%s", nil
	default:
		return "", fmt.Errorf("unknown prompt %q", name)
	}
}

func TestAskHappyPath(t *testing.T) {
	llm := &mockLLM{responses: []string{
		"```json\n{\"indices\": [\"invoices\"], \"query\": {\"range\": {\"date\": {\"gte\": \"2024-01-01\"}}}, \"aggs\": {\"total\": {\"sum\": {\"field\": \"netamount\"}}}}\n```",
		"Total invoiced since January is 12,345.67 EUR.",
	}}
	engine := newMockEngine()
	engine.searchResult = &domain.QueryResult{
		Total:        42,
		Aggregations: json.RawMessage(`{"total":{"value":12345.67}}`),
	}
	assistant := NewAssistant(llm, engine, mockPrompts{})

	answer, err := assistant.Ask(context.Background(), "How much did we invoice this year?")
	require.NoError(t, err)

	assert.Equal(t, "Total invoiced since January is 12,345.67 EUR.", answer.Text)
	assert.Equal(t, []string{"invoices"}, answer.Query.Indices)
	assert.Equal(t, int64(42), answer.Hits)

	// Translation prompt embeds the field reference; analysis prompt
	// embeds the aggregation results.
	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[0], "netamount (float)")
	assert.Contains(t, llm.prompts[1], "12345.67")
}

func TestAskUnknownFieldFailsWithoutRetry(t *testing.T) {
	llm := &mockLLM{responses: []string{
		`{"indices": ["invoices"], "query": {"term": {"profit_margin": 0.3}}}`,
	}}
	assistant := NewAssistant(llm, newMockEngine(), mockPrompts{})

	_, err := assistant.Ask(context.Background(), "What is the profit margin?")
	require.Error(t, err)

	assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
	var unknown *domain.UnknownFieldError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "profit_margin", unknown.Field)

	// The second LLM pass never ran.
	assert.Len(t, llm.prompts, 1)
}

func TestAskUnknownIndex(t *testing.T) {
	llm := &mockLLM{responses: []string{
		`{"indices": ["payroll"], "query": {"match_all": {}}}`,
	}}
	assistant := NewAssistant(llm, newMockEngine(), mockPrompts{})

	_, err := assistant.Ask(context.Background(), "What is the payroll total?")
	assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
}

func TestAskKeywordSuffixIsAccepted(t *testing.T) {
	llm := &mockLLM{responses: []string{
		`{"indices": ["customers"], "query": {"term": {"country.keyword": "EE"}}}`,
		"There are 12 Estonian customers.",
	}}
	engine := newMockEngine()
	engine.searchResult = &domain.QueryResult{Total: 12}
	assistant := NewAssistant(llm, engine, mockPrompts{})

	answer, err := assistant.Ask(context.Background(), "How many Estonian customers?")
	require.NoError(t, err)
	assert.Equal(t, int64(12), answer.Hits)
}

func TestAskUnparseableTranslation(t *testing.T) {
	llm := &mockLLM{responses: []string{"I cannot answer that."}}
	assistant := NewAssistant(llm, newMockEngine(), mockPrompts{})

	_, err := assistant.Ask(context.Background(), "hello")
	assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
}

func TestAskEngineRejectionIsSurfaced(t *testing.T) {
	llm := &mockLLM{responses: []string{
		`{"indices": ["invoices"], "query": {"match_all": {}}}`,
	}}
	engine := newMockEngine()
	engine.searchErr = fmt.Errorf("%w: malformed query", domain.ErrInvalidQuery)
	assistant := NewAssistant(llm, engine, mockPrompts{})

	_, err := assistant.Ask(context.Background(), "list invoices")
	assert.True(t, errors.Is(err, domain.ErrInvalidQuery))
}

func TestAskEmptyQuestion(t *testing.T) {
	assistant := NewAssistant(&mockLLM{}, newMockEngine(), mockPrompts{})

	_, err := assistant.Ask(context.Background(), "   ")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAskRequiresConfiguredServices(t *testing.T) {
	assistant := NewAssistant(nil, newMockEngine(), mockPrompts{})
	_, err := assistant.Ask(context.Background(), "q")
	assert.True(t, errors.Is(err, domain.ErrLLMUnavailable))

	assistant = NewAssistant(&mockLLM{}, nil, mockPrompts{})
	_, err = assistant.Ask(context.Background(), "q")
	assert.True(t, errors.Is(err, domain.ErrSearchUnavailable))
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                   `{"a":1}`,
		"```json\n{\"a\":1}\n```":     `{"a":1}`,
		"```\n{\"a\":1}\n```":         `{"a":1}`,
		"  ```json\n{\"a\":1}\n```  ": `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripCodeFences(in), "input %q", in)
	}
}
