package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs []domain.Run
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// Save appends a finished run.
func (s *RunStore) Save(_ context.Context, run domain.Run) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// List returns runs most recent first, optionally filtered by table.
func (s *RunStore) List(_ context.Context, table string, limit int) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Run, 0, len(s.runs))
	for _, r := range slices.Backward(s.runs) {
		if table != "" && r.Table != table {
			continue
		}
		result = append(result, r)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
