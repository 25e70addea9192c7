package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tablesync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// syncFixture wires a SyncService over mocks and in-memory stores.
type syncFixture struct {
	svc     *SyncService
	secrets *mockSecrets
	source  *mockSource
	sources *mockSourceFactory
	sink    *memory.Sink
	sinks   *mockSinkFactory
	runs    *memory.RunStore
}

func newSyncFixture(t *testing.T, pages ...domain.Page) *syncFixture {
	t.Helper()

	keyed := applicantMapping()
	keyed.Name = "keyed"
	keyed.BaseID = ""
	keyed.BaseIDKey = "AIRTABLE_BASE_ID"

	f := &syncFixture{
		secrets: &mockSecrets{values: map[string]string{
			"AIRTABLE_TOKEN":            "tok",
			"AIRTABLE_BASE_ID":          "appFromEnv",
			"SUPABASE_URL":              "https://db.example",
			"SUPABASE_SERVICE_ROLE_KEY": "service-key",
		}},
		source: &mockSource{pages: pages},
		sink:   memory.NewSink(),
		runs:   memory.NewRunStore(),
	}
	f.sources = &mockSourceFactory{source: f.source}
	f.sinks = &mockSinkFactory{sink: f.sink, keys: []string{"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY"}}

	n := 0
	f.svc = NewSyncService(
		memory.NewMappingStore(*applicantMapping(), *keyed),
		f.secrets,
		f.sources,
		f.sinks,
		f.runs,
		WithClock(func() time.Time { return fixedNow }),
		WithRunIDs(func() string { n++; return fmt.Sprintf("run-%d", n) }),
	)
	return f
}

func applicantPage(cursor string, ids ...string) domain.Page {
	p := domain.Page{Cursor: cursor}
	for _, id := range ids {
		p.Records = append(p.Records, domain.SourceRecord{
			ID: id,
			Fields: map[string]any{
				"Full Name": "Name " + id,
				"Role":      "Engineer",
			},
		})
	}
	return p
}

func TestSyncService_Sync_Success(t *testing.T) {
	f := newSyncFixture(t,
		applicantPage("c1", "rec1", "rec2"),
		applicantPage("c2", "rec3", "rec4"),
		applicantPage("", "rec5"),
	)

	result, err := f.svc.Sync(context.Background(), "applicants")

	require.NoError(t, err)
	assert.Equal(t, &domain.SyncResult{Success: true, Synced: 5}, result)

	rows := f.sink.Rows("phase_1_table_1")
	require.Len(t, rows, 5)
	assert.Equal(t, "rec1", rows[0]["airtable_record_id"])
	assert.Equal(t, "Name rec1", rows[0]["full_name"])
	assert.Equal(t, "pending", rows[0]["status"])
	assert.Equal(t, "2024-05-01T12:30:00.000Z", rows[0]["updated_at"])

	require.Len(t, f.sinks.requests, 1)
	req := f.sinks.requests[0]
	assert.Equal(t, "airtable_record_id", req.ConflictKey)
	assert.False(t, req.IgnoreDuplicates)
	assert.Equal(t, applicantMapping().ColumnNames(), req.Columns)
	assert.Equal(t, 1, f.sinks.closed, "sink closed after the invocation")

	assert.Equal(t, []string{"tok"}, f.sources.tokens)
	require.Len(t, f.source.queries, 1)
	assert.Equal(t, "appBase", f.source.queries[0].BaseID)
	assert.Equal(t, "Phase 1, Table 1", f.source.queries[0].Table)
	assert.Equal(t, map[string]string{
		"SUPABASE_URL":              "https://db.example",
		"SUPABASE_SERVICE_ROLE_KEY": "service-key",
	}, f.sinks.values[0])
}

func TestSyncService_Sync_Idempotent(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1", "rec2", "rec3"))
	ctx := context.Background()

	first, err := f.svc.Sync(ctx, "applicants")
	require.NoError(t, err)
	snapshot := f.sink.Rows("phase_1_table_1")

	second, err := f.svc.Sync(ctx, "applicants")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, f.sink.Rows("phase_1_table_1"))
}

func TestSyncService_Sync_ConflictKeyOverwrites(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1"))
	ctx := context.Background()

	_, err := f.svc.Sync(ctx, "applicants")
	require.NoError(t, err)

	f.source.pages = []domain.Page{{Records: []domain.SourceRecord{{
		ID:     "rec1",
		Fields: map[string]any{"Full Name": "Renamed", "Status": "interview"},
	}}}}
	_, err = f.svc.Sync(ctx, "applicants")
	require.NoError(t, err)

	rows := f.sink.Rows("phase_1_table_1")
	require.Len(t, rows, 1)
	assert.Equal(t, "Renamed", rows[0]["full_name"])
	assert.Equal(t, "interview", rows[0]["status"])
	assert.Nil(t, rows[0]["role"])
}

func TestSyncService_Sync_EmptySource(t *testing.T) {
	f := newSyncFixture(t, domain.Page{})

	result, err := f.svc.Sync(context.Background(), "applicants")

	require.NoError(t, err)
	assert.Equal(t, &domain.SyncResult{Success: true, Synced: 0, Message: "No records to sync."}, result)
	assert.Empty(t, f.sinks.values, "no sink is built")
	assert.Equal(t, 0, f.sink.Requests())
}

func TestSyncService_Sync_FetchAbortsWithoutWrites(t *testing.T) {
	f := newSyncFixture(t,
		applicantPage("c1", "rec1"),
		applicantPage("c2", "rec2"),
		applicantPage("", "rec3"),
	)
	f.source.failAt = 2
	f.source.err = &domain.SourceFetchError{
		StatusCode: http.StatusUnprocessableEntity,
		Err:        errors.New("Airtable API error: 422 Unprocessable Entity - bad request"),
	}

	result, err := f.svc.Sync(context.Background(), "applicants")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrSourceFetch)
	assert.Contains(t, err.Error(), "bad request")
	assert.Equal(t, 0, f.sink.Requests())
	assert.Equal(t, 2, f.source.fetched)
}

func TestSyncService_Sync_MissingConfiguration(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1"))
	delete(f.secrets.values, "AIRTABLE_TOKEN")
	delete(f.secrets.values, "SUPABASE_URL")

	_, err := f.svc.Sync(context.Background(), "applicants")

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.ElementsMatch(t, []string{"AIRTABLE_TOKEN", "SUPABASE_URL"}, cfgErr.Missing)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, f.sources.tokens, "no source built before configuration resolves")
	assert.Empty(t, f.source.queries)
}

func TestSyncService_Sync_BaseIDKey(t *testing.T) {
	t.Run("resolved from configuration", func(t *testing.T) {
		f := newSyncFixture(t, applicantPage("", "rec1"))

		_, err := f.svc.Sync(context.Background(), "keyed")

		require.NoError(t, err)
		assert.Equal(t, "appFromEnv", f.source.queries[0].BaseID)
	})

	t.Run("missing without literal fallback", func(t *testing.T) {
		f := newSyncFixture(t, applicantPage("", "rec1"))
		delete(f.secrets.values, "AIRTABLE_BASE_ID")

		_, err := f.svc.Sync(context.Background(), "keyed")

		var cfgErr *domain.ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, []string{"AIRTABLE_BASE_ID"}, cfgErr.Missing)
	})
}

func TestSyncService_Sync_LookupFailure(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1"))
	f.secrets.err = errors.New("secrets manager unavailable")

	_, err := f.svc.Sync(context.Background(), "applicants")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "secrets manager unavailable")
	assert.Empty(t, f.sources.tokens)
}

func TestSyncService_Sync_SinkFailure(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1"))
	f.sink.FailWith(errors.New(`relation "phase_1_table_1" does not exist`))

	_, err := f.svc.Sync(context.Background(), "applicants")

	assert.ErrorIs(t, err, domain.ErrSinkWrite)
	assert.Equal(t, `Sink upsert error: relation "phase_1_table_1" does not exist`, err.Error())
}

func TestSyncService_Sync_SinkConnectFailure(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1"))
	f.sinks.newErr = errors.New("connection refused")

	_, err := f.svc.Sync(context.Background(), "applicants")

	assert.ErrorIs(t, err, domain.ErrSinkWrite)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSyncService_Sync_UnknownTable(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.svc.Sync(context.Background(), "phase-9")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	runs, _ := f.runs.List(context.Background(), "", 0)
	assert.Empty(t, runs, "unknown tables leave no history")
}

func TestSyncService_Sync_BatchSize(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1", "rec2", "rec3", "rec4", "rec5"))
	f.svc.batchSize = 2

	_, err := f.svc.Sync(context.Background(), "applicants")

	require.NoError(t, err)
	assert.Len(t, f.sinks.requests, 3)
	assert.Len(t, f.sink.Rows("phase_1_table_1"), 5)
}

func TestSyncService_RecordsHistory(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1", "rec2"))
	ctx := context.Background()

	_, err := f.svc.Sync(ctx, "applicants")
	require.NoError(t, err)

	f.sink.FailWith(errors.New("boom"))
	_, err = f.svc.Sync(ctx, "applicants")
	require.Error(t, err)

	runs, err := f.svc.History(ctx, "applicants", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.False(t, runs[0].Succeeded())
	assert.Equal(t, "Sink upsert error: boom", runs[0].Error)

	assert.Equal(t, "run-1", runs[1].ID)
	assert.True(t, runs[1].Succeeded())
	assert.Equal(t, 2, runs[1].Synced)
	assert.Equal(t, "applicants", runs[1].Table)
}

func TestSyncService_HistoryFailureDoesNotFailSync(t *testing.T) {
	f := newSyncFixture(t, applicantPage("", "rec1"))
	f.svc.runs = &failingRunStore{err: errors.New("disk full")}

	result, err := f.svc.Sync(context.Background(), "applicants")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)

	_, err = f.svc.History(context.Background(), "", 10)
	assert.ErrorContains(t, err, "disk full")
}

func TestSyncService_Tables(t *testing.T) {
	f := newSyncFixture(t)

	tables := f.svc.Tables()

	require.Len(t, tables, 2)
	assert.Equal(t, "applicants", tables[0].Name)
	assert.Equal(t, "keyed", tables[1].Name)
}

func TestSyncService_DefaultRunIDsAreUUIDs(t *testing.T) {
	f := newSyncFixture(t, domain.Page{})
	runs := memory.NewRunStore()
	svc := NewSyncService(memory.NewMappingStore(*applicantMapping()), f.secrets, f.sources, f.sinks, runs)

	_, err := svc.Sync(context.Background(), "applicants")
	require.NoError(t, err)

	list, err := runs.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, list[0].ID)
}
