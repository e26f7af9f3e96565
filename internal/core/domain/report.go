package domain

import "time"

// EntityReport holds the per-entity-type counts of one ETL run.
// Reporting fetched vs normalised vs indexed makes silent data loss
// observable.
type EntityReport struct {
	// Entity is the entity type this report covers.
	Entity EntityType

	// Generation is the index generation written by this run,
	// empty when the entity produced no records.
	Generation string

	// Fetched is the number of raw records received from the connector.
	Fetched int

	// Normalised is the number of records that passed normalisation.
	Normalised int

	// Mismatched is the number of records excluded by type mismatches.
	Mismatched int

	// Indexed is the number of documents the search engine accepted.
	Indexed int

	// IndexFailed is the number of documents rejected during bulk writes.
	IndexFailed int

	// Error holds a non-fatal entity-level failure, e.g. a connector
	// timeout after retries. Entity failures never abort the run.
	Error string
}

// RunReport summarises one end-to-end ETL run.
type RunReport struct {
	// ID uniquely identifies the run.
	ID string

	// From is the lower bound of the date-range filter, zero for all
	// available history.
	From time.Time

	StartedAt  time.Time
	FinishedAt time.Time

	// Entities holds one report per processed entity type.
	Entities []EntityReport

	// Error is set when the run aborted (authentication failure).
	Error string
}

// TotalFetched sums fetched records across all entity types.
func (r RunReport) TotalFetched() int {
	total := 0
	for _, e := range r.Entities {
		total += e.Fetched
	}
	return total
}

// TotalIndexed sums indexed documents across all entity types.
func (r RunReport) TotalIndexed() int {
	total := 0
	for _, e := range r.Entities {
		total += e.Indexed
	}
	return total
}

// Succeeded reports whether the run completed without aborting.
func (r RunReport) Succeeded() bool {
	return r.Error == ""
}
