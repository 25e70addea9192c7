package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/tablesync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/secrets"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/sink/postgres"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/sink/postgrest"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tablesync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tablesync/internal/connectors/airtable"
	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
	"github.com/custodia-labs/tablesync/internal/core/services"
	"github.com/custodia-labs/tablesync/internal/logger"
)

// appOptions are the inputs of the composition root.
type appOptions struct {
	ConfigPath      string
	EnvFile         string
	EnvFileRequired bool

	// Secrets replaces the environment and AWS lookup chain when set.
	Secrets driven.SecretLookup
}

// application holds the wired services of one process.
type application struct {
	config *file.ConfigStore
	sync   *services.SyncService
	probe  *services.SecretsProbe
	store  *sqlite.Store
}

// newApplication wires configuration, secrets, source, sink and history.
func newApplication(ctx context.Context, opts appOptions) (*application, error) {
	store, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := store.Config()
	logger.Debug("Config: %s (%d tables, sink %s)", store.Path(), len(cfg.Tables), cfg.Sink.Driver)

	envPath := opts.EnvFile
	if envPath == "" {
		envPath = cfg.Secrets.EnvFile
	}
	if err := secrets.LoadEnvFile(envPath, opts.EnvFileRequired); err != nil {
		return nil, err
	}

	lookup := opts.Secrets
	if lookup == nil {
		lookup, err = newSecretLookup(ctx, cfg.Secrets)
		if err != nil {
			return nil, err
		}
	}

	app := &application{config: store}

	// Run history lives next to the sqlite sink. History is best effort:
	// without a usable data dir runs are kept in memory for this process.
	var runs driven.RunStore
	db, err := sqlite.NewStore(cfg.Sink.DataDir)
	if err != nil {
		if cfg.Sink.Driver == sqlite.DriverName {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Warn("Run history unavailable, keeping it in memory: %v", err)
		runs = memory.NewRunStore()
	} else {
		app.store = db
		runs = db.RunStore()
	}

	sinks, err := newSinkFactory(cfg.Sink, app.store)
	if err != nil {
		app.Close() //nolint:errcheck
		return nil, err
	}

	syncOpts := []services.SyncOption{services.WithBatchSize(cfg.Sink.BatchSize)}
	if cfg.Source.TokenKey != "" {
		syncOpts = append(syncOpts, services.WithSourceTokenKey(cfg.Source.TokenKey))
	}

	app.sync = services.NewSyncService(store, lookup, newSourceFactory(cfg.Source), sinks, runs, syncOpts...)
	app.probe = services.NewSecretsProbe(lookup, cfg.Secrets.Probe)
	return app, nil
}

// Close releases the sqlite store.
func (a *application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// newSecretLookup consults the environment, then the AWS secret if configured.
func newSecretLookup(ctx context.Context, cfg file.SecretsConfig) (driven.SecretLookup, error) {
	if cfg.AWSSecretID == "" {
		return secrets.Env{}, nil
	}

	client, err := secrets.NewManagerClient(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	logger.Debug("Secrets: environment, then AWS secret %s", cfg.AWSSecretID)
	return secrets.Chain{
		secrets.Env{},
		secrets.NewAWSSecret(client, cfg.AWSSecretID, secrets.DefaultCacheTTL),
	}, nil
}

// newSourceFactory builds the Airtable client factory. All clients share
// one rate limiter.
func newSourceFactory(cfg file.SourceConfig) *airtable.Factory {
	opts := []airtable.Option{
		airtable.WithRateLimiter(airtable.NewRateLimiter(cfg.RequestsPerSecond, airtable.DefaultBurst)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, airtable.WithBaseURL(cfg.BaseURL))
	}
	if d := cfg.RequestTimeout.Std(); d > 0 {
		opts = append(opts, airtable.WithRequestTimeout(d))
	}
	if cfg.MaxPages > 0 {
		opts = append(opts, airtable.WithMaxPages(cfg.MaxPages))
	}
	return airtable.NewFactory(opts...)
}

// newSinkFactory selects the sink driver.
func newSinkFactory(cfg file.SinkConfig, store *sqlite.Store) (driven.SinkFactory, error) {
	switch cfg.Driver {
	case "", postgrest.DriverName:
		return postgrest.NewFactory(nil, 0), nil
	case postgres.DriverName:
		return postgres.NewFactory(cfg.DSNKey), nil
	case sqlite.DriverName:
		if store == nil {
			return nil, errors.New("sqlite sink requires a data dir")
		}
		return store.SinkFactory(), nil
	case memory.DriverName:
		return memory.NewSink(), nil
	default:
		return nil, fmt.Errorf("%w: sink driver %q", domain.ErrUnsupportedType, cfg.Driver)
	}
}
