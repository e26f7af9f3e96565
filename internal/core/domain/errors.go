package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthFailed indicates the ERP rejected the API token.
	// Authentication failures are fatal and abort the whole ETL run.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRunInProgress indicates another ETL run holds the run lock.
	// Concurrent runs would interleave non-transactional bulk writes.
	ErrRunInProgress = errors.New("ETL run already in progress")

	// ErrInvalidQuery indicates the translated query was rejected,
	// either before execution or by the search engine.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrSearchUnavailable indicates the search engine is not configured.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrConnectorUnavailable indicates the ERP connector is not configured.
	ErrConnectorUnavailable = errors.New("ERP connector unavailable")
)

// TypeMismatchError reports a raw value that could not be coerced to
// the declared semantic type of a target field. Mismatches are
// per-record and non-fatal: the record is excluded from the batch and
// the batch continues.
type TypeMismatchError struct {
	Entity EntityType
	Field  string
	Type   FieldType

	// Value is the offending raw value.
	Value any

	// Key is the record's natural key, when it could be determined.
	Key string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("type mismatch: %s.%s (record %s): cannot coerce %v to %s",
			e.Entity, e.Field, e.Key, e.Value, e.Type)
	}
	return fmt.Sprintf("type mismatch: %s.%s: cannot coerce %v to %s",
		e.Entity, e.Field, e.Value, e.Type)
}

// UnknownFieldError reports a translated query that references a field
// not present in the target schemas. It is surfaced to the user
// verbatim as a failed query and never retried automatically.
type UnknownFieldError struct {
	Field   string
	Indices []string
}

// Error implements the error interface.
func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("invalid query: field %q does not exist in %s",
		e.Field, strings.Join(e.Indices, ", "))
}

// Unwrap allows errors.Is(err, ErrInvalidQuery) to match.
func (e *UnknownFieldError) Unwrap() error {
	return ErrInvalidQuery
}
