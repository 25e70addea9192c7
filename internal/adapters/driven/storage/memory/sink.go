package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// DriverName is the sink driver name for the in-memory sink.
const DriverName = "memory"

// Ensure Sink implements the interfaces.
var (
	_ driven.RecordSink  = (*Sink)(nil)
	_ driven.SinkFactory = (*Sink)(nil)
)

// Sink keeps destination tables in memory, keyed by conflict key.
// It acts as its own factory so every invocation writes the same tables.
type Sink struct {
	mu       sync.RWMutex
	tables   map[string]map[string]domain.SinkRecord
	requests int
	err      error
}

// NewSink creates an empty in-memory sink.
func NewSink() *Sink {
	return &Sink{tables: make(map[string]map[string]domain.SinkRecord)}
}

// Driver returns the driver name.
func (s *Sink) Driver() string { return DriverName }

// RequiredKeys returns nil; the memory sink needs no credentials.
func (s *Sink) RequiredKeys() []string { return nil }

// NewSink returns the shared sink.
func (s *Sink) NewSink(_ context.Context, _ map[string]string) (driven.RecordSink, error) {
	return s, nil
}

// FailWith makes subsequent upserts fail with err. Nil clears it.
func (s *Sink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Upsert inserts new rows and overwrites or keeps existing ones.
func (s *Sink) Upsert(_ context.Context, req driven.UpsertRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
	if s.err != nil {
		return s.err
	}
	if req.ConflictKey == "" {
		return domain.ErrInvalidInput
	}

	// A batch applies whole or not at all.
	keys := make([]string, len(req.Records))
	for i, r := range req.Records {
		keys[i] = r.Key(req.ConflictKey)
		if keys[i] == "" {
			return domain.NewSinkWriteError(req.Table, domain.ErrInvalidInput)
		}
	}

	rows, ok := s.tables[req.Table]
	if !ok {
		rows = make(map[string]domain.SinkRecord)
		s.tables[req.Table] = rows
	}
	for i, r := range req.Records {
		key := keys[i]
		if _, exists := rows[key]; exists && req.IgnoreDuplicates {
			continue
		}
		rows[key] = maps.Clone(r)
	}
	return nil
}

// Close is a no-op; the tables outlive each invocation.
func (s *Sink) Close() error {
	return nil
}

// Rows returns a copy of a table's rows sorted by key.
func (s *Sink) Rows(table string) []domain.SinkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.tables[table]
	keys := slices.Sorted(maps.Keys(rows))
	result := make([]domain.SinkRecord, 0, len(keys))
	for _, k := range keys {
		result = append(result, maps.Clone(rows[k]))
	}
	return result
}

// Requests returns how many upsert requests were received.
func (s *Sink) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}
