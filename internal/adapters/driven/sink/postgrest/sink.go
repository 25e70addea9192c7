package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

const (
	// DriverName is the sink driver name.
	DriverName = "postgrest"

	// KeyURL names the configuration value holding the project URL.
	KeyURL = "SUPABASE_URL"

	// KeyServiceRole names the configuration value holding the service-role key.
	KeyServiceRole = "SUPABASE_SERVICE_ROLE_KEY"

	// DefaultTimeout bounds one write request.
	DefaultTimeout = 60 * time.Second

	restPath     = "/rest/v1/"
	maxErrorBody = 1 << 20
)

// Factory builds one client per invocation.
type Factory struct {
	transport http.RoundTripper
	timeout   time.Duration
}

var _ driven.SinkFactory = (*Factory)(nil)

// NewFactory creates a factory. A nil transport uses http.DefaultTransport;
// a zero timeout uses DefaultTimeout.
func NewFactory(transport http.RoundTripper, timeout time.Duration) *Factory {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Factory{transport: transport, timeout: timeout}
}

// Driver returns the driver name.
func (f *Factory) Driver() string { return DriverName }

// RequiredKeys returns the project URL and service-role key names.
func (f *Factory) RequiredKeys() []string {
	return []string{KeyServiceRole, KeyURL}
}

// NewSink builds a client from the resolved values.
func (f *Factory) NewSink(_ context.Context, values map[string]string) (driven.RecordSink, error) {
	var missing []string
	for _, k := range f.RequiredKeys() {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.ConfigurationError{Missing: missing}
	}

	base, err := url.Parse(strings.TrimRight(values[KeyURL], "/"))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", KeyURL, err)
	}

	key := values[KeyServiceRole]
	return &Sink{
		baseURL: base.String(),
		http: &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: key, TokenType: "Bearer"}),
				Base:   &apiKeyTransport{key: key, base: f.transport},
			},
			Timeout: f.timeout,
		},
	}, nil
}

// apiKeyTransport adds the apikey header required by the API gateway.
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("apikey", t.key)
	return t.base.RoundTrip(r)
}

// Sink writes upsert requests to PostgREST.
type Sink struct {
	baseURL string
	http    *http.Client
}

var _ driven.RecordSink = (*Sink)(nil)

// Upsert posts the whole request as one JSON array.
func (s *Sink) Upsert(ctx context.Context, req driven.UpsertRequest) error {
	body, err := json.Marshal(req.Records)
	if err != nil {
		return domain.NewSinkWriteError(req.Table, fmt.Errorf("encode rows: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.upsertURL(req), bytes.NewReader(body))
	if err != nil {
		return domain.NewSinkWriteError(req.Table, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Prefer", preferHeader(req.IgnoreDuplicates))

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return domain.NewSinkWriteError(req.Table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := parseError(resp.StatusCode, raw)
	return &domain.SinkWriteError{Table: req.Table, Message: apiErr.Message, Err: apiErr}
}

// Close releases idle connections.
func (s *Sink) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

// upsertURL builds the table endpoint with on_conflict and columns.
func (s *Sink) upsertURL(req driven.UpsertRequest) string {
	q := url.Values{}
	q.Set("on_conflict", req.ConflictKey)
	if len(req.Columns) > 0 {
		quoted := make([]string, len(req.Columns))
		for i, c := range req.Columns {
			quoted[i] = `"` + c + `"`
		}
		q.Set("columns", strings.Join(quoted, ","))
	}
	return s.baseURL + restPath + url.PathEscape(req.Table) + "?" + q.Encode()
}

// preferHeader selects the conflict resolution.
func preferHeader(ignoreDuplicates bool) string {
	if ignoreDuplicates {
		return "resolution=ignore-duplicates,return=minimal"
	}
	return "resolution=merge-duplicates,return=minimal"
}
