package driven

import (
	"context"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// RecordSink writes normalised records into the sink system.
type RecordSink interface {
	// Upsert writes the batch in one request. Rows whose conflict key
	// already exists are overwritten, unless IgnoreDuplicates is set.
	// Callers never pass an empty batch.
	Upsert(ctx context.Context, req UpsertRequest) error

	// Close releases resources held for the invocation.
	Close() error
}

// UpsertRequest is one write request against a destination table.
type UpsertRequest struct {
	// Table is the destination table name.
	Table string

	// ConflictKey is the column used to detect existing rows.
	ConflictKey string

	// Columns lists every column present in Records, in write order.
	Columns []string

	// IgnoreDuplicates keeps existing rows untouched on conflict.
	IgnoreDuplicates bool

	// Records is the batch to write.
	Records []domain.SinkRecord
}

// SinkFactory builds a RecordSink from per-invocation credentials.
type SinkFactory interface {
	// Driver returns the sink driver name (postgrest, postgres, sqlite, memory).
	Driver() string

	// RequiredKeys lists the configuration values the sink needs.
	RequiredKeys() []string

	// NewSink builds a sink from resolved configuration values,
	// keyed by the names returned from RequiredKeys.
	NewSink(ctx context.Context, values map[string]string) (RecordSink, error)
}
