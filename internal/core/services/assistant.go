package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-cli/internal/logger"
)

// Ensure Assistant implements the interface.
var _ driving.Assistant = (*Assistant)(nil)

const (
	// translateMaxTokens bounds the generated query JSON.
	translateMaxTokens = 2000

	// translateTemperature keeps query generation near-deterministic.
	translateTemperature = 0.1

	// analyseTemperature allows a natural conversational register.
	analyseTemperature = 0.7

	// analyseMaxHits caps how many documents are shown to the model.
	analyseMaxHits = 20
)

// Assistant answers natural-language questions in two LLM passes:
// translate the question into a structured query, execute it, then
// analyse the results into a conversational answer.
type Assistant struct {
	llm     driven.LLMService
	engine  driven.SearchEngine
	prompts driven.PromptStore
}

// NewAssistant creates an assistant service.
func NewAssistant(llm driven.LLMService, engine driven.SearchEngine, prompts driven.PromptStore) *Assistant {
	return &Assistant{
		llm:     llm,
		engine:  engine,
		prompts: prompts,
	}
}

// Ask implements driving.Assistant.
func (a *Assistant) Ask(ctx context.Context, question string) (*domain.Answer, error) {
	if a.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if a.engine == nil {
		return nil, domain.ErrSearchUnavailable
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	spec, err := a.translate(ctx, question)
	if err != nil {
		return nil, err
	}
	logger.Debug("assistant: translated question to indices=%v", spec.Indices)

	if err := a.validate(spec); err != nil {
		return nil, err
	}

	result, err := a.engine.Search(ctx, spec)
	if err != nil {
		return nil, err
	}
	logger.Debug("assistant: query matched %d documents", result.Total)

	text, err := a.analyse(ctx, question, result)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Question: question,
		Text:     text,
		Query:    spec,
		Hits:     result.Total,
	}, nil
}

// translate asks the model for a structured query and parses it.
func (a *Assistant) translate(ctx context.Context, question string) (domain.QuerySpec, error) {
	template, err := a.prompts.Load(driven.PromptTranslate)
	if err != nil {
		return domain.QuerySpec{}, fmt.Errorf("loading translate prompt: %w", err)
	}
	prompt := fmt.Sprintf(template, domain.SchemaReference(), question)

	raw, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   translateMaxTokens,
		Temperature: translateTemperature,
	})
	if err != nil {
		return domain.QuerySpec{}, fmt.Errorf("translating question: %w", err)
	}

	var spec domain.QuerySpec
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &spec); err != nil {
		return domain.QuerySpec{}, fmt.Errorf("%w: model returned unparseable query: %v",
			domain.ErrInvalidQuery, err)
	}
	return spec, nil
}

// validate rejects queries that target unknown indices or reference
// fields absent from the target schemas. Invalid queries are surfaced
// to the user as-is; there is no automatic retry.
func (a *Assistant) validate(spec domain.QuerySpec) error {
	if len(spec.Indices) == 0 {
		return fmt.Errorf("%w: query names no indices", domain.ErrInvalidQuery)
	}

	schemas := make([]domain.Schema, 0, len(spec.Indices))
	for _, index := range spec.Indices {
		entity, err := domain.ParseEntityType(index)
		if err != nil {
			return fmt.Errorf("%w: unknown index %q", domain.ErrInvalidQuery, index)
		}
		schema, err := domain.SchemaFor(entity)
		if err != nil {
			return err
		}
		schemas = append(schemas, schema)
	}

	known := func(name string) bool {
		for _, schema := range schemas {
			if _, ok := schema.Field(name); ok {
				return true
			}
		}
		return false
	}

	refs := append(fieldRefs(spec.Query), fieldRefs(spec.Aggs)...)
	for _, ref := range refs {
		if !known(ref) {
			return &domain.UnknownFieldError{Field: ref, Indices: spec.Indices}
		}
	}
	return nil
}

// analyse turns raw query results into a conversational answer.
func (a *Assistant) analyse(ctx context.Context, question string, result *domain.QueryResult) (string, error) {
	template, err := a.prompts.Load(driven.PromptAnalyse)
	if err != nil {
		return "", fmt.Errorf("loading analysis prompt: %w", err)
	}
	prompt := fmt.Sprintf(template, question, formatResults(result))

	text, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: analyseTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("analysing results: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// formatResults renders query results for the analysis prompt:
// aggregations first (they answer most analytics questions), then a
// bounded sample of matched documents.
func formatResults(result *domain.QueryResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total matching documents: %d\n", result.Total)

	if len(result.Aggregations) > 0 && string(result.Aggregations) != "null" {
		b.WriteString("\nAggregations:\n")
		b.Write(result.Aggregations)
		b.WriteString("\n")
	}

	if len(result.Hits) > 0 {
		shown := len(result.Hits)
		if shown > analyseMaxHits {
			shown = analyseMaxHits
		}
		fmt.Fprintf(&b, "\nDocuments (showing %d of %d):\n", shown, result.Total)
		for _, hit := range result.Hits[:shown] {
			b.Write(hit)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// stripCodeFences removes a Markdown code fence wrapper, which chat
// models add even when told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
