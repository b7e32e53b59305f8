// Package storage defines the report history store.
//
// Every validation run produces a Record that is kept so the admin API can
// show how data quality evolves over time. Backends live in the sqlite and
// postgres subpackages; the backend package selects one from configuration.
package storage

import "context"

// ReportStore persists validation reports.
type ReportStore interface {
	// Save stores a record (upsert semantics on ID).
	// Returns ErrInvalidInput if the record is nil or has no ID.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, id string) (*Record, error)

	// Latest returns the most recently created record.
	// Returns ErrNotFound if the store is empty.
	Latest(ctx context.Context) (*Record, error)

	// List returns records newest first.
	List(ctx context.Context, opts ListOptions) (*PaginatedResult[Record], error)

	// Close releases the underlying connection.
	Close() error
}
