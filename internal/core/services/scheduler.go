package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driving"
	"github.com/custodia-labs/tablesync/internal/logger"
)

// Scheduler re-runs table syncs on a fixed interval.
// It is a pure core service with no external control API.
type Scheduler struct {
	sync        driving.SyncService
	tables      []string
	interval    time.Duration
	syncTimeout time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// DefaultSyncTimeout bounds one scheduled sync when no timeout is given.
const DefaultSyncTimeout = 5 * time.Minute

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSyncTimeout bounds each scheduled sync. Non-positive uses DefaultSyncTimeout.
func WithSyncTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.syncTimeout = d
		}
	}
}

// NewScheduler creates a scheduler syncing tables every interval.
// Empty tables schedules every configured mapping.
func NewScheduler(syncSvc driving.SyncService, tables []string, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sync:        syncSvc,
		tables:      tables,
		interval:    interval,
		syncTimeout: DefaultSyncTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs one round immediately, then one per interval.
// It blocks until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("%w: schedule interval must be positive", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.runRound(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.mu.Lock()
			if s.stopCh == stopCh {
				s.running = false
			}
			s.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runRound(ctx)
		}
	}
}

// Stop ends the loop and waits for the current round.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// runRound syncs each scheduled table in turn. A round still in
// progress when the next tick fires delays that tick.
func (s *Scheduler) runRound(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	tables := s.tables
	if len(tables) == 0 {
		for _, m := range s.sync.Tables() {
			tables = append(tables, m.Name)
		}
	}

	logger.Info("Scheduled round: %d tables", len(tables))
	for _, table := range tables {
		if ctx.Err() != nil {
			return
		}
		s.syncOne(ctx, table)
	}
}

// syncOne runs one table under the per-sync deadline so a stuck
// source cannot hold up the rest of the round.
func (s *Scheduler) syncOne(ctx context.Context, table string) {
	ctx, cancel := context.WithTimeout(ctx, s.syncTimeout)
	defer cancel()

	if _, err := s.sync.Sync(ctx, table); err != nil {
		logger.Warn("Scheduled sync of %s failed: %v", table, err)
	}
}
