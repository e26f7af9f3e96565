package domain

// RawRecord is one untyped record as fetched from the upstream export:
// a flat mapping of origin field names to scalar values. XML exports
// yield string values; JSON exports may yield numbers or booleans.
type RawRecord map[string]any

// Record is a normalised record conforming to its entity's target
// schema, ready for indexing.
type Record struct {
	// Entity is the record's entity type.
	Entity EntityType

	// ID is the value of the schema's key field, used as the search
	// document identifier so re-running the ETL is idempotent per
	// record. Empty when the key field was absent upstream.
	ID string

	// Fields maps target field names to coerced values. Values are
	// string (token/text), float64, int64, or time.Time (date).
	// Absent fields are simply not present; absence is legal.
	Fields map[string]any
}

// Has reports whether the named field was set during normalisation.
func (r Record) Has(name string) bool {
	_, ok := r.Fields[name]
	return ok
}
