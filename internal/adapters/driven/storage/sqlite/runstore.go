package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// Save records a finished run.
func (s *runStore) Save(ctx context.Context, run domain.Run) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, table_name, started_at, finished_at, synced, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			table_name = excluded.table_name,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			synced = excluded.synced,
			error = excluded.error
	`, run.ID, run.Table, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Synced, nullString(run.Error))

	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// List returns runs most recent first, optionally filtered by table.
func (s *runStore) List(ctx context.Context, table string, limit int) ([]domain.Run, error) {
	query := `
		SELECT id, table_name, started_at, finished_at, synced, error
		FROM sync_runs
		WHERE (? = '' OR table_name = ?)
		ORDER BY started_at DESC, rowid DESC`
	args := []any{table, table}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			run                   domain.Run
			startedAt, finishedAt string
			errMsg                sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Table, &startedAt, &finishedAt, &run.Synced, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = parseTime(startedAt)
		run.FinishedAt = parseTime(finishedAt)
		run.Error = errMsg.String
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime formats t in UTC with timeLayout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp.
// Returns zero time if the string is invalid.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
