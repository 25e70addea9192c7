package driving

import (
	"context"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// SyncService runs sync invocations.
type SyncService interface {
	// Sync runs one fetch, transform and upsert invocation for the named mapping.
	// On failure the returned error is one of the domain sync error types.
	Sync(ctx context.Context, table string) (*domain.SyncResult, error)

	// Tables lists the configured mappings.
	Tables() []domain.TableMapping

	// History returns recent runs, most recent first.
	History(ctx context.Context, table string, limit int) ([]domain.Run, error)
}

// SecretsProbe reports which named configuration values are present.
type SecretsProbe interface {
	// Probe maps each probed name to its presence. Values are never returned.
	Probe(ctx context.Context) map[string]bool
}
