package cli

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// mockSyncService implements driving.SyncService for testing.
type mockSyncService struct {
	result   *domain.SyncResult
	err      error
	mappings []domain.TableMapping
	runs     []domain.Run

	mu           sync.Mutex
	synced       []string
	deadline     time.Time
	historyTable string
	historyLimit int
}

func (m *mockSyncService) Sync(ctx context.Context, table string) (*domain.SyncResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.synced = append(m.synced, table)
	m.deadline, _ = ctx.Deadline()
	return m.result, m.err
}

func (m *mockSyncService) syncedTables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.synced)
}

func (m *mockSyncService) syncDeadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deadline
}

func (m *mockSyncService) Tables() []domain.TableMapping {
	return m.mappings
}

func (m *mockSyncService) History(_ context.Context, table string, limit int) ([]domain.Run, error) {
	m.historyTable = table
	m.historyLimit = limit
	return m.runs, m.err
}

// mockSecretsProbe implements driving.SecretsProbe for testing.
type mockSecretsProbe struct {
	present map[string]bool
}

func (m *mockSecretsProbe) Probe(_ context.Context) map[string]bool {
	return m.present
}

// setServices injects mocks and returns a cleanup restoring the previous services.
func setServices(svc *mockSyncService, probe *mockSecretsProbe) func() {
	oldSync, oldProbe := syncService, secretsProbe
	if svc != nil {
		syncService = svc
	}
	if probe != nil {
		secretsProbe = probe
	}
	return func() {
		syncService = oldSync
		secretsProbe = oldProbe
	}
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
