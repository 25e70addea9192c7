package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// DriverName is the sink driver name for SQLite destination tables.
const DriverName = "sqlite"

// SinkFactory hands out sinks writing into the store's database.
type SinkFactory struct {
	store *Store
}

var _ driven.SinkFactory = (*SinkFactory)(nil)

// SinkFactory returns a factory for sinks backed by this store.
func (s *Store) SinkFactory() *SinkFactory {
	return &SinkFactory{store: s}
}

// Driver returns the driver name.
func (f *SinkFactory) Driver() string { return DriverName }

// RequiredKeys returns nil; the database path comes from the config file.
func (f *SinkFactory) RequiredKeys() []string { return nil }

// NewSink returns a sink over the shared database.
func (f *SinkFactory) NewSink(_ context.Context, _ map[string]string) (driven.RecordSink, error) {
	return &sink{store: f.store}, nil
}

// sink implements driven.RecordSink. Destination tables are created
// on first write with one untyped column per mapped column.
type sink struct {
	store *Store

	mu      sync.Mutex
	created map[string]bool
}

var _ driven.RecordSink = (*sink)(nil)

// Upsert writes the batch in one transaction.
func (s *sink) Upsert(ctx context.Context, req driven.UpsertRequest) error {
	if len(req.Columns) == 0 || req.ConflictKey == "" {
		return domain.ErrInvalidInput
	}

	if err := s.ensureTable(ctx, req.Table, req.ConflictKey, req.Columns); err != nil {
		return domain.NewSinkWriteError(req.Table, err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewSinkWriteError(req.Table, fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, upsertSQL(req))
	if err != nil {
		return domain.NewSinkWriteError(req.Table, err)
	}
	defer stmt.Close()

	args := make([]any, len(req.Columns))
	for _, rec := range req.Records {
		for i, col := range req.Columns {
			v, err := sqlValue(rec[col])
			if err != nil {
				return domain.NewSinkWriteError(req.Table, fmt.Errorf("column %s: %w", col, err))
			}
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return domain.NewSinkWriteError(req.Table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewSinkWriteError(req.Table, fmt.Errorf("committing: %w", err))
	}
	return nil
}

// Close is a no-op; the store outlives each invocation.
func (s *sink) Close() error {
	return nil
}

// ensureTable creates the destination table once per sink.
func (s *sink) ensureTable(ctx context.Context, table, key string, columns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created[table] {
		return nil
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		if col == key {
			defs = append(defs, quoteIdent(col)+" TEXT PRIMARY KEY")
			continue
		}
		defs = append(defs, quoteIdent(col))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := s.store.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	if s.created == nil {
		s.created = make(map[string]bool)
	}
	s.created[table] = true
	return nil
}

// upsertSQL builds the INSERT ... ON CONFLICT statement for a request.
func upsertSQL(req driven.UpsertRequest) string {
	cols := make([]string, len(req.Columns))
	marks := make([]string, len(req.Columns))
	var sets []string
	for i, col := range req.Columns {
		cols[i] = quoteIdent(col)
		marks[i] = "?"
		if col != req.ConflictKey {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", cols[i], cols[i]))
		}
	}

	action := "DO NOTHING"
	if !req.IgnoreDuplicates && len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) %s",
		quoteIdent(req.Table), strings.Join(cols, ", "), strings.Join(marks, ", "),
		quoteIdent(req.ConflictKey), action)
}

// sqlValue converts a sink value to a driver value.
// Lists and objects are stored as JSON text.
func sqlValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int, int64, float64:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
}
