// Package sqlite persists ETL run history and the run lock in a local
// SQLite database. The schema is managed through embedded, versioned
// up-migrations applied on open.
package sqlite
