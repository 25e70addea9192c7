package services

import (
	"context"
	"iter"
	"sync"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockSecrets implements driven.SecretLookup over a map.
type mockSecrets struct {
	values map[string]string
	err    error
	calls  []string
}

func (m *mockSecrets) Lookup(_ context.Context, name string) (string, bool, error) {
	m.calls = append(m.calls, name)
	if m.err != nil {
		return "", false, m.err
	}
	v := m.values[name]
	return v, v != "", nil
}

// mockSource implements driven.RecordSource with canned pages.
type mockSource struct {
	mu      sync.Mutex
	pages   []domain.Page
	failAt  int // 1-based page index that fails; 0 = never
	err     error
	queries []driven.SourceQuery
	fetched int
}

func (m *mockSource) Pages(_ context.Context, query driven.SourceQuery) iter.Seq2[domain.Page, error] {
	return func(yield func(domain.Page, error) bool) {
		m.mu.Lock()
		m.queries = append(m.queries, query)
		m.mu.Unlock()
		for i, p := range m.pages {
			m.mu.Lock()
			m.fetched++
			m.mu.Unlock()
			if m.failAt == i+1 {
				yield(domain.Page{}, m.err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (m *mockSource) FetchAll(ctx context.Context, query driven.SourceQuery) ([]domain.SourceRecord, error) {
	var all []domain.SourceRecord
	for page, err := range m.Pages(ctx, query) {
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
	}
	return all, nil
}

// mockSourceFactory records the credentials each source was built with.
type mockSourceFactory struct {
	source *mockSource
	tokens []string
}

func (f *mockSourceFactory) NewSource(_ context.Context, creds driven.SourceCredentials) (driven.RecordSource, error) {
	f.tokens = append(f.tokens, creds.Token)
	return f.source, nil
}

// mockSinkFactory wraps a RecordSink with required keys and records
// the values each sink was built with.
type mockSinkFactory struct {
	sink     driven.RecordSink
	keys     []string
	values   []map[string]string
	newErr   error
	closed   int
	requests []driven.UpsertRequest
}

func (f *mockSinkFactory) Driver() string         { return "mock" }
func (f *mockSinkFactory) RequiredKeys() []string { return f.keys }

func (f *mockSinkFactory) NewSink(_ context.Context, values map[string]string) (driven.RecordSink, error) {
	f.values = append(f.values, values)
	if f.newErr != nil {
		return nil, f.newErr
	}
	return &recordingSink{factory: f}, nil
}

// recordingSink captures requests before passing them to the wrapped sink.
type recordingSink struct {
	factory *mockSinkFactory
}

func (s *recordingSink) Upsert(ctx context.Context, req driven.UpsertRequest) error {
	s.factory.requests = append(s.factory.requests, req)
	if s.factory.sink == nil {
		return nil
	}
	return s.factory.sink.Upsert(ctx, req)
}

func (s *recordingSink) Close() error {
	s.factory.closed++
	return nil
}

// failingRunStore implements driven.RunStore and always fails to save.
type failingRunStore struct {
	err error
}

func (f *failingRunStore) Save(context.Context, domain.Run) error { return f.err }
func (f *failingRunStore) List(context.Context, string, int) ([]domain.Run, error) {
	return nil, f.err
}
