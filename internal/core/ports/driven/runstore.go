package driven

import (
	"context"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// RunStore persists sync history.
type RunStore interface {
	// Save stores a finished run.
	Save(ctx context.Context, run domain.Run) error

	// List returns the most recent runs first, optionally filtered by table.
	// A limit of 0 returns every run.
	List(ctx context.Context, table string, limit int) ([]domain.Run, error)
}
