package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

func TestRunStore_SaveAndList(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, table := range []string{"phase-1", "phase-2", "phase-1"} {
		require.NoError(t, store.Save(ctx, domain.Run{
			ID:        fmt.Sprintf("run-%d", i),
			Table:     table,
			StartedAt: start.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-2", all[0].ID, "most recent first")
	assert.Equal(t, "run-0", all[2].ID)

	phase1, err := store.List(ctx, "phase-1", 0)
	require.NoError(t, err)
	assert.Len(t, phase1, 2)

	limited, err := store.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-2", limited[0].ID)
}

func TestRunStore_Save_RequiresID(t *testing.T) {
	err := NewRunStore().Save(context.Background(), domain.Run{Table: "phase-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunStore_ConcurrentAccess(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Save(ctx, domain.Run{ID: fmt.Sprintf("run-%d", i), Table: "phase-1"})
			_, _ = store.List(ctx, "phase-1", 5)
		}(i)
	}
	wg.Wait()

	runs, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 50)
}
