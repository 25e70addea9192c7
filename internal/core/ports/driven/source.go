package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// RecordSource fetches records from the source system.
type RecordSource interface {
	// Pages lazily yields every page of a source table.
	// Each request depends on the cursor of the previous response, so
	// pages are fetched strictly in sequence. Iteration stops after the
	// first error.
	Pages(ctx context.Context, query SourceQuery) iter.Seq2[domain.Page, error]

	// FetchAll drains Pages into one slice in arrival order.
	// On any error the partial accumulation is discarded.
	FetchAll(ctx context.Context, query SourceQuery) ([]domain.SourceRecord, error)
}

// SourceQuery identifies a source table and listing options.
type SourceQuery struct {
	// BaseID is the source container identifier.
	BaseID string

	// Table is the source table name.
	Table string

	// View optionally restricts the listing to a named view.
	View string

	// PageSize optionally requests a page size (0 = source default).
	PageSize int
}

// SourceCredentials carries the per-invocation source credential.
type SourceCredentials struct {
	// Token is the pre-issued bearer token.
	Token string
}

// SourceFactory builds a RecordSource bound to a credential.
type SourceFactory interface {
	NewSource(ctx context.Context, creds SourceCredentials) (RecordSource, error)
}

// SourceFactoryFunc adapts a function to SourceFactory.
type SourceFactoryFunc func(ctx context.Context, creds SourceCredentials) (RecordSource, error)

// NewSource calls f.
func (f SourceFactoryFunc) NewSource(ctx context.Context, creds SourceCredentials) (RecordSource, error) {
	return f(ctx, creds)
}
