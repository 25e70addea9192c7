package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// mockSyncService is a mock implementation of driving.SyncService.
type mockSyncService struct {
	result   *domain.SyncResult
	mappings []domain.TableMapping
	runs     []domain.Run
	err      error

	synced       []string
	deadline     time.Time
	historyTable string
	historyLimit int
}

func (m *mockSyncService) Sync(ctx context.Context, table string) (*domain.SyncResult, error) {
	m.synced = append(m.synced, table)
	m.deadline, _ = ctx.Deadline()
	return m.result, m.err
}

func (m *mockSyncService) Tables() []domain.TableMapping {
	return m.mappings
}

func (m *mockSyncService) History(_ context.Context, table string, limit int) ([]domain.Run, error) {
	m.historyTable = table
	m.historyLimit = limit
	return m.runs, m.err
}

// mockSecretsProbe is a mock implementation of driving.SecretsProbe.
type mockSecretsProbe struct {
	present map[string]bool
}

func (m *mockSecretsProbe) Probe(_ context.Context) map[string]bool {
	return m.present
}
