// Package normalise transforms raw export records into typed records
// matching the versioned target schema. Extraction is driven entirely
// by the schema's declared origins: raw fields with no declared origin
// are dropped, declared fields absent from the raw record stay unset,
// and a value that cannot be coerced to its declared type excludes the
// record without failing the batch.
package normalise

import (
	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// Record normalises one raw export record against the given schema.
// It returns a TypeMismatchError when any declared field carries a
// value that cannot be coerced to its declared type.
func Record(raw domain.RawRecord, schema domain.Schema) (domain.Record, error) {
	rec := domain.Record{
		Entity: schema.Entity,
		Fields: make(map[string]any, len(schema.Fields)),
	}

	for _, f := range schema.Fields {
		rawValue, ok := raw[f.Origin]
		if !ok {
			continue
		}
		value, coerced, present := coerce(rawValue, f.Type)
		if !coerced {
			return domain.Record{}, &domain.TypeMismatchError{
				Entity: schema.Entity,
				Field:  f.Name,
				Type:   f.Type,
				Value:  rawValue,
				Key:    recordKey(raw, schema),
			}
		}
		if !present {
			continue
		}
		rec.Fields[f.Name] = value
	}

	if key, ok := rec.Fields[schema.KeyField].(string); ok {
		rec.ID = key
	}
	return rec, nil
}

// BatchResult is the outcome of normalising a batch of raw records.
type BatchResult struct {
	Records []domain.Record

	// Failures holds one entry per excluded record.
	Failures []domain.TypeMismatchError
}

// Batch normalises a batch of raw records. Records that fail type
// coercion are collected in Failures; the rest of the batch proceeds.
func Batch(raws []domain.RawRecord, schema domain.Schema) BatchResult {
	result := BatchResult{Records: make([]domain.Record, 0, len(raws))}
	for _, raw := range raws {
		rec, err := Record(raw, schema)
		if err != nil {
			if mismatch, ok := err.(*domain.TypeMismatchError); ok {
				result.Failures = append(result.Failures, *mismatch)
			}
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

// recordKey extracts the natural key from the raw record for error
// reporting. Best effort: the key field itself may be the mismatch.
func recordKey(raw domain.RawRecord, schema domain.Schema) string {
	keyField, ok := schema.Field(schema.KeyField)
	if !ok {
		return ""
	}
	value, ok := raw[keyField.Origin]
	if !ok {
		return ""
	}
	s, ok := stringify(value)
	if !ok {
		return ""
	}
	return s
}
