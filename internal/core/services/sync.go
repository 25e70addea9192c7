package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
	"github.com/custodia-labs/tablesync/internal/core/ports/driving"
	"github.com/custodia-labs/tablesync/internal/logger"
)

// DefaultSourceTokenKey names the configuration value holding the
// source bearer token.
const DefaultSourceTokenKey = "AIRTABLE_TOKEN"

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService runs fetch, transform and upsert invocations.
// Every invocation builds its own source and sink clients, so
// concurrent invocations share nothing but configuration and history.
type SyncService struct {
	mappings    driven.MappingStore
	secrets     driven.SecretLookup
	sources     driven.SourceFactory
	sinks       driven.SinkFactory
	runs        driven.RunStore
	transformer *RecordTransformer

	tokenKey  string
	batchSize int
	now       func() time.Time
	newRunID  func() string
}

// SyncOption configures a SyncService.
type SyncOption func(*SyncService)

// WithClock sets the clock used for run timestamps and timestamp columns.
func WithClock(now func() time.Time) SyncOption {
	return func(s *SyncService) {
		s.now = now
	}
}

// WithBatchSize caps rows per sink write request.
func WithBatchSize(n int) SyncOption {
	return func(s *SyncService) {
		s.batchSize = n
	}
}

// WithSourceTokenKey overrides the configuration name of the source token.
func WithSourceTokenKey(key string) SyncOption {
	return func(s *SyncService) {
		s.tokenKey = key
	}
}

// WithRunIDs overrides run id generation.
func WithRunIDs(next func() string) SyncOption {
	return func(s *SyncService) {
		s.newRunID = next
	}
}

// NewSyncService creates a sync service with injected dependencies.
func NewSyncService(
	mappings driven.MappingStore,
	secrets driven.SecretLookup,
	sources driven.SourceFactory,
	sinks driven.SinkFactory,
	runs driven.RunStore,
	opts ...SyncOption,
) *SyncService {
	s := &SyncService{
		mappings: mappings,
		secrets:  secrets,
		sources:  sources,
		sinks:    sinks,
		runs:     runs,
		tokenKey: DefaultSourceTokenKey,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.transformer = NewRecordTransformer(s.now)
	return s
}

// Sync runs one invocation for the named mapping.
func (s *SyncService) Sync(ctx context.Context, table string) (*domain.SyncResult, error) {
	mapping, err := s.mappings.Get(table)
	if err != nil {
		err = fmt.Errorf("get mapping: %w", err)
		logger.Error("Sync %s failed: %v", table, err)
		return nil, err
	}

	run := domain.Run{
		ID:        s.newRunID(),
		Table:     mapping.Name,
		StartedAt: s.now(),
	}
	logger.Info("Sync %s started (run %s)", mapping.Name, run.ID)

	result, err := s.run(ctx, mapping)

	run.FinishedAt = s.now()
	if err != nil {
		run.Error = err.Error()
		logger.Error("Sync %s failed (run %s): %v", mapping.Name, run.ID, err)
	} else {
		run.Synced = result.Synced
		logger.Info("Sync %s finished (run %s): %d records in %s",
			mapping.Name, run.ID, result.Synced, run.Duration().Round(time.Millisecond))
	}

	// A history write failure never fails the sync.
	if s.runs != nil {
		if saveErr := s.runs.Save(context.WithoutCancel(ctx), run); saveErr != nil {
			logger.Warn("save run %s: %v", run.ID, saveErr)
		}
	}

	return result, err
}

// run performs the fetch, transform and upsert steps.
func (s *SyncService) run(ctx context.Context, mapping *domain.TableMapping) (*domain.SyncResult, error) {
	// 1. Resolve configuration before any network call
	cfg, err := s.resolve(ctx, mapping)
	if err != nil {
		return nil, err
	}

	// 2. Fetch every page
	source, err := s.sources.NewSource(ctx, driven.SourceCredentials{Token: cfg.token})
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	records, err := source.FetchAll(ctx, driven.SourceQuery{
		BaseID:   cfg.baseID,
		Table:    mapping.SourceTable,
		View:     mapping.View,
		PageSize: mapping.PageSize,
	})
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return &domain.SyncResult{Success: true, Synced: 0, Message: domain.NoRecordsMessage}, nil
	}

	// 3. Transform
	rows := s.transformer.TransformAll(mapping, records)

	// 4. Upsert
	sink, err := s.sinks.NewSink(ctx, cfg.sink)
	if err != nil {
		return nil, domain.NewSinkWriteError(mapping.SinkTable, fmt.Errorf("connect: %w", err))
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			logger.Warn("close sink: %v", cerr)
		}
	}()

	err = NewUpserter(sink).Upsert(ctx, mapping.SinkTable, rows, UpsertOptions{
		ConflictKey:      mapping.ConflictKey,
		Columns:          mapping.ColumnNames(),
		IgnoreDuplicates: mapping.IgnoreDuplicates,
		BatchSize:        s.batchSize,
	})
	if err != nil {
		return nil, err
	}

	return &domain.SyncResult{Success: true, Synced: len(records)}, nil
}

// invocationConfig holds the values resolved for one invocation.
type invocationConfig struct {
	token  string
	baseID string
	sink   map[string]string
}

// resolve looks up every value the invocation needs and reports all
// missing names at once.
func (s *SyncService) resolve(ctx context.Context, mapping *domain.TableMapping) (*invocationConfig, error) {
	cfg := &invocationConfig{sink: make(map[string]string)}
	var missing []string

	lookup := func(name string) (string, bool, error) {
		v, ok, err := s.secrets.Lookup(ctx, name)
		if err != nil {
			return "", false, fmt.Errorf("lookup %s: %w", name, err)
		}
		return v, ok, nil
	}

	for _, key := range s.sinks.RequiredKeys() {
		v, ok, err := lookup(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, key)
			continue
		}
		cfg.sink[key] = v
	}

	token, ok, err := lookup(s.tokenKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		missing = append(missing, s.tokenKey)
	}
	cfg.token = token

	cfg.baseID = mapping.BaseID
	if mapping.BaseIDKey != "" {
		v, ok, err := lookup(mapping.BaseIDKey)
		if err != nil {
			return nil, err
		}
		switch {
		case ok:
			cfg.baseID = v
		case mapping.BaseID == "":
			missing = append(missing, mapping.BaseIDKey)
		}
	}

	if len(missing) > 0 {
		return nil, &domain.ConfigurationError{Missing: missing}
	}
	return cfg, nil
}

// Tables lists the configured mappings.
func (s *SyncService) Tables() []domain.TableMapping {
	return s.mappings.List()
}

// History returns recent runs, most recent first.
func (s *SyncService) History(ctx context.Context, table string, limit int) ([]domain.Run, error) {
	if s.runs == nil {
		return nil, nil
	}
	runs, err := s.runs.List(ctx, table, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
