package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

type capturedRequest struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	rows   []map[string]any
}

func newTestSink(t *testing.T, status int, body string) (driven.RecordSink, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		c := capturedRequest{method: r.Method, path: r.URL.EscapedPath(), query: r.URL.Query(), header: r.Header.Clone()}
		require.NoError(t, json.Unmarshal(raw, &c.rows))
		captured = append(captured, c)

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	sink, err := NewFactory(nil, 0).NewSink(context.Background(), map[string]string{
		KeyURL:         srv.URL + "/",
		KeyServiceRole: "service-key",
	})
	require.NoError(t, err)
	return sink, &captured
}

func request(ignore bool) driven.UpsertRequest {
	return driven.UpsertRequest{
		Table:            "phase_1_table_1",
		ConflictKey:      "airtable_record_id",
		Columns:          []string{"airtable_record_id", "status"},
		IgnoreDuplicates: ignore,
		Records: []domain.SinkRecord{
			{"airtable_record_id": "rec1", "status": "pending"},
			{"airtable_record_id": "rec2", "status": nil},
		},
	}
}

func TestSink_Upsert_RequestShape(t *testing.T) {
	sink, captured := newTestSink(t, http.StatusCreated, "")

	require.NoError(t, sink.Upsert(context.Background(), request(false)))
	require.NoError(t, sink.Close())

	require.Len(t, *captured, 1)
	c := (*captured)[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "/rest/v1/phase_1_table_1", c.path)
	assert.Equal(t, "airtable_record_id", c.query["on_conflict"][0])
	assert.Equal(t, `"airtable_record_id","status"`, c.query["columns"][0])
	assert.Equal(t, "Bearer service-key", c.header.Get("Authorization"))
	assert.Equal(t, "service-key", c.header.Get("apikey"))
	assert.Equal(t, "application/json", c.header.Get("Content-Type"))
	assert.Equal(t, "resolution=merge-duplicates,return=minimal", c.header.Get("Prefer"))
	assert.Equal(t, []map[string]any{
		{"airtable_record_id": "rec1", "status": "pending"},
		{"airtable_record_id": "rec2", "status": nil},
	}, c.rows)
}

func TestSink_Upsert_IgnoreDuplicates(t *testing.T) {
	sink, captured := newTestSink(t, http.StatusCreated, "")

	require.NoError(t, sink.Upsert(context.Background(), request(true)))

	assert.Equal(t, "resolution=ignore-duplicates,return=minimal", (*captured)[0].header.Get("Prefer"))
}

func TestSink_Upsert_ErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{
			name:    "postgrest error body",
			status:  http.StatusBadRequest,
			body:    `{"code":"PGRST204","details":null,"hint":null,"message":"Could not find the 'role' column of 'phase_1_table_1' in the schema cache"}`,
			message: "Could not find the 'role' column of 'phase_1_table_1' in the schema cache",
		},
		{
			name:    "plain text body",
			status:  http.StatusBadGateway,
			body:    "upstream unavailable\n",
			message: "upstream unavailable",
		},
		{
			name:    "empty body",
			status:  http.StatusUnauthorized,
			message: "Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, _ := newTestSink(t, tt.status, tt.body)

			err := sink.Upsert(context.Background(), request(false))

			assert.ErrorIs(t, err, domain.ErrSinkWrite)
			assert.Equal(t, "Sink upsert error: "+tt.message, err.Error())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestSink_Upsert_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	sink, err := NewFactory(nil, 0).NewSink(context.Background(), map[string]string{
		KeyURL:         srv.URL,
		KeyServiceRole: "k",
	})
	require.NoError(t, err)

	err = sink.Upsert(context.Background(), request(false))
	assert.ErrorIs(t, err, domain.ErrSinkWrite)
}

func TestFactory_NewSink_MissingValues(t *testing.T) {
	f := NewFactory(nil, 0)
	assert.Equal(t, DriverName, f.Driver())
	assert.ElementsMatch(t, []string{KeyURL, KeyServiceRole}, f.RequiredKeys())

	_, err := f.NewSink(context.Background(), map[string]string{KeyURL: "https://x.supabase.co"})

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{KeyServiceRole}, cfgErr.Missing)
}
