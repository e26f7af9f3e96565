package services

import (
	"encoding/json"
	"strings"
)

// fieldClauses are the query DSL clauses whose object keys are field
// names rather than nested clauses. The "exists" clause is covered by
// the explicit "field" key instead.
var fieldClauses = map[string]bool{
	"term":         true,
	"terms":        true,
	"match":        true,
	"match_phrase": true,
	"range":        true,
	"prefix":       true,
	"wildcard":     true,
}

// fieldRefs collects every field name a query or aggregation body
// references, so unknown fields can be rejected before the engine sees
// them. It understands the common clause shapes: explicit "field" keys
// and clauses keyed by field name.
func fieldRefs(body json.RawMessage) []string {
	if len(body) == 0 {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	seen := make(map[string]bool)
	walkRefs(parsed, seen)

	refs := make([]string, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	return refs
}

func walkRefs(node any, seen map[string]bool) {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			if key == "field" {
				if name, ok := child.(string); ok {
					seen[normaliseFieldRef(name)] = true
					continue
				}
			}
			if fieldClauses[key] {
				if clause, ok := child.(map[string]any); ok {
					for fieldName, inner := range clause {
						seen[normaliseFieldRef(fieldName)] = true
						walkRefs(inner, seen)
					}
					continue
				}
			}
			walkRefs(child, seen)
		}
	case []any:
		for _, item := range v {
			walkRefs(item, seen)
		}
	}
}

// normaliseFieldRef strips the multi-field suffix: "code.keyword"
// refers to the "code" mapping.
func normaliseFieldRef(name string) string {
	return strings.TrimSuffix(name, ".keyword")
}
