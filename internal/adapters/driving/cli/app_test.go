package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tablesync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/secrets"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/sink/postgres"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/sink/postgrest"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// newAirtableServer serves one page of n records for any table.
func newAirtableServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"records":[`)
		for i := range n {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id":"rec%d","createdTime":"2024-01-01T00:00:00.000Z","fields":{"Name":"Applicant %d"}}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeAppConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNewApplication_SyncsEndToEnd(t *testing.T) {
	for _, driver := range []string{memory.DriverName, sqlite.DriverName} {
		t.Run(driver, func(t *testing.T) {
			dir := t.TempDir()
			srv := newAirtableServer(t, 3)
			path := writeAppConfig(t, dir, fmt.Sprintf(`
[source]
base_url = %q
requests_per_second = 0

[sink]
driver = %q
data_dir = %q
`, srv.URL, driver, dir))

			app, err := newApplication(context.Background(), appOptions{
				ConfigPath: path,
				EnvFile:    filepath.Join(dir, "missing.env"),
				Secrets:    secrets.Map{"AIRTABLE_TOKEN": "tok"},
			})
			require.NoError(t, err)
			defer app.Close()

			result, err := app.sync.Sync(context.Background(), "phase-1")
			require.NoError(t, err)
			assert.Equal(t, &domain.SyncResult{Success: true, Synced: 3}, result)

			runs, err := app.sync.History(context.Background(), "phase-1", 0)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, 3, runs[0].Synced)
		})
	}
}

func TestNewApplication_MissingToken(t *testing.T) {
	dir := t.TempDir()
	path := writeAppConfig(t, dir, fmt.Sprintf("[sink]\ndriver = \"memory\"\ndata_dir = %q\n", dir))

	app, err := newApplication(context.Background(), appOptions{
		ConfigPath: path,
		EnvFile:    filepath.Join(dir, "missing.env"),
		Secrets:    secrets.Map{},
	})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.sync.Sync(context.Background(), "phase-1")
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	present := app.probe.Probe(context.Background())
	assert.False(t, present["AIRTABLE_TOKEN"])
}

func TestNewApplication_RequiredEnvFileMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := newApplication(context.Background(), appOptions{
		ConfigPath:      filepath.Join(dir, "config.toml"),
		EnvFile:         filepath.Join(dir, "missing.env"),
		EnvFileRequired: true,
		Secrets:         secrets.Map{},
	})

	assert.Error(t, err)
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeAppConfig(t, dir, "[server\n")

	_, err := newApplication(context.Background(), appOptions{ConfigPath: path, Secrets: secrets.Map{}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestNewApplication_UnsupportedDriver(t *testing.T) {
	dir := t.TempDir()
	path := writeAppConfig(t, dir, fmt.Sprintf("[sink]\ndriver = \"mongo\"\ndata_dir = %q\n", dir))

	_, err := newApplication(context.Background(), appOptions{
		ConfigPath: path,
		EnvFile:    filepath.Join(dir, "missing.env"),
		Secrets:    secrets.Map{},
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestNewSinkFactory(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{driver: "", want: postgrest.DriverName},
		{driver: postgrest.DriverName, want: postgrest.DriverName},
		{driver: postgres.DriverName, want: postgres.DriverName},
		{driver: memory.DriverName, want: memory.DriverName},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f, err := newSinkFactory(file.SinkConfig{Driver: tt.driver}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Driver())
		})
	}

	t.Run("postgres dsn key", func(t *testing.T) {
		f, err := newSinkFactory(file.SinkConfig{Driver: postgres.DriverName, DSNKey: "PG_DSN"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"PG_DSN"}, f.RequiredKeys())
	})

	t.Run("sqlite without store", func(t *testing.T) {
		_, err := newSinkFactory(file.SinkConfig{Driver: sqlite.DriverName}, nil)
		assert.Error(t, err)
	})
}

func TestNewSecretLookup_EnvOnly(t *testing.T) {
	lookup, err := newSecretLookup(context.Background(), file.SecretsConfig{})
	require.NoError(t, err)
	assert.Equal(t, secrets.Env{}, lookup)
}
