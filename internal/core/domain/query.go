package domain

import "encoding/json"

// QuerySpec is a structured filter/aggregation request produced by the
// query translator, targeting one or more entity collections.
type QuerySpec struct {
	// Indices names the entity collections to search.
	Indices []string `json:"indices"`

	// Query is the filter clause in the search engine's query DSL.
	Query json.RawMessage `json:"query,omitempty"`

	// Aggs holds optional aggregations.
	Aggs json.RawMessage `json:"aggs,omitempty"`

	// Size limits returned documents. When aggregations are present
	// the executor forces size 0, matching analytics usage.
	Size int `json:"size,omitempty"`
}

// HasAggs reports whether the query carries aggregations.
func (q QuerySpec) HasAggs() bool {
	return len(q.Aggs) > 0 && string(q.Aggs) != "null" && string(q.Aggs) != "{}"
}

// QueryResult holds the raw outcome of executing a QuerySpec.
type QueryResult struct {
	// Total is the total hit count reported by the engine.
	Total int64

	// Hits holds the matched document sources.
	Hits []json.RawMessage

	// Aggregations holds the raw aggregation results, if any.
	Aggregations json.RawMessage
}

// Answer is the assistant's response to a natural-language question.
type Answer struct {
	// Question is the user's original question.
	Question string

	// Text is the generated conversational answer.
	Text string

	// Query is the structured request the question was translated to.
	Query QuerySpec

	// Hits is the number of documents the query matched.
	Hits int64
}
