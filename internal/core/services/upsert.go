package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
	"github.com/custodia-labs/tablesync/internal/logger"
)

// UpsertOptions controls how a batch is written.
type UpsertOptions struct {
	// ConflictKey is the column used to detect existing rows.
	ConflictKey string

	// Columns lists every column present in the rows, in write order.
	Columns []string

	// IgnoreDuplicates keeps existing rows untouched on conflict.
	IgnoreDuplicates bool

	// BatchSize caps rows per write request. Zero sends everything at once.
	BatchSize int
}

// Upserter writes normalised rows to a sink.
type Upserter struct {
	sink driven.RecordSink
}

// NewUpserter creates an upserter over the given sink.
func NewUpserter(sink driven.RecordSink) *Upserter {
	return &Upserter{sink: sink}
}

// Upsert writes rows into table. An empty input issues no request.
// Batches are written in order and the first failure stops the write;
// earlier batches stay committed.
func (u *Upserter) Upsert(ctx context.Context, table string, rows []domain.SinkRecord, opts UpsertOptions) error {
	if len(rows) == 0 {
		return nil
	}

	size := opts.BatchSize
	if size <= 0 || size > len(rows) {
		size = len(rows)
	}

	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		req := driven.UpsertRequest{
			Table:            table,
			ConflictKey:      opts.ConflictKey,
			Columns:          opts.Columns,
			IgnoreDuplicates: opts.IgnoreDuplicates,
			Records:          rows[start:end],
		}
		if err := u.sink.Upsert(ctx, req); err != nil {
			var sinkErr *domain.SinkWriteError
			if errors.As(err, &sinkErr) {
				return err
			}
			return domain.NewSinkWriteError(table, err)
		}
		logger.Debug("Upserted rows %d-%d into %q", start+1, end, table)
	}
	return nil
}
