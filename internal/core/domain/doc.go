// Package domain contains the core business types for ledgerlens:
// entity types, the versioned target schema table, normalised records,
// run reports, and query specifications.
//
// The schema table in this package is the single source of truth for
// field names and semantic types. The normaliser, the index mappings,
// and the query translator's prompt reference are all generated from
// it, so they cannot drift apart.
package domain
