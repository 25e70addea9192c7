package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

const (
	// DriverName is the sink driver name.
	DriverName = "postgres"

	// DefaultDSNKey names the configuration value holding the connection string.
	DefaultDSNKey = "DATABASE_URL"
)

// Conn is the subset of *pgx.Conn used by the sink.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
}

// ConnectFunc opens a connection from a connection string.
type ConnectFunc func(ctx context.Context, dsn string) (Conn, error)

// Factory opens one connection per invocation.
type Factory struct {
	dsnKey  string
	connect ConnectFunc
}

var _ driven.SinkFactory = (*Factory)(nil)

// NewFactory creates a factory reading the DSN from dsnKey.
// An empty dsnKey uses DefaultDSNKey.
func NewFactory(dsnKey string) *Factory {
	if dsnKey == "" {
		dsnKey = DefaultDSNKey
	}
	return &Factory{
		dsnKey: dsnKey,
		connect: func(ctx context.Context, dsn string) (Conn, error) {
			return pgx.Connect(ctx, dsn)
		},
	}
}

// Driver returns the driver name.
func (f *Factory) Driver() string { return DriverName }

// RequiredKeys returns the DSN key.
func (f *Factory) RequiredKeys() []string { return []string{f.dsnKey} }

// NewSink connects to the database.
func (f *Factory) NewSink(ctx context.Context, values map[string]string) (driven.RecordSink, error) {
	dsn := values[f.dsnKey]
	if dsn == "" {
		return nil, &domain.ConfigurationError{Missing: []string{f.dsnKey}}
	}
	conn, err := f.connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return NewSink(conn), nil
}

// Sink writes upsert requests over one connection.
type Sink struct {
	conn Conn
}

var _ driven.RecordSink = (*Sink)(nil)

// NewSink creates a sink over an open connection.
func NewSink(conn Conn) *Sink {
	return &Sink{conn: conn}
}

// Upsert sends every row of the request in one batch and transaction.
func (s *Sink) Upsert(ctx context.Context, req driven.UpsertRequest) error {
	if len(req.Columns) == 0 || req.ConflictKey == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return sinkError(req.Table, fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := upsertSQL(req)
	batch := &pgx.Batch{}
	for _, rec := range req.Records {
		args := make([]any, len(req.Columns))
		for i, col := range req.Columns {
			args[i] = pgValue(rec[col])
		}
		batch.Queue(query, args...)
	}

	results := tx.SendBatch(ctx, batch)
	for range req.Records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return sinkError(req.Table, err)
		}
	}
	if err := results.Close(); err != nil {
		return sinkError(req.Table, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return sinkError(req.Table, fmt.Errorf("committing: %w", err))
	}
	return nil
}

// Close closes the connection.
func (s *Sink) Close() error {
	return s.conn.Close(context.Background())
}

// sinkError wraps err, preferring the server's message for Postgres errors.
func sinkError(table string, err error) error {
	sinkErr := domain.NewSinkWriteError(table, err)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sinkErr.Message = pgErr.Message
	}
	return sinkErr
}

// upsertSQL builds the INSERT ... ON CONFLICT statement for a request.
func upsertSQL(req driven.UpsertRequest) string {
	cols := make([]string, len(req.Columns))
	params := make([]string, len(req.Columns))
	var sets []string
	for i, col := range req.Columns {
		cols[i] = pgx.Identifier{col}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
		if col != req.ConflictKey {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", cols[i], cols[i]))
		}
	}

	action := "DO NOTHING"
	if !req.IgnoreDuplicates && len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) %s",
		tableIdent(req.Table), strings.Join(cols, ", "), strings.Join(params, ", "),
		pgx.Identifier{req.ConflictKey}.Sanitize(), action)
}

// tableIdent quotes a table name, keeping an optional schema prefix.
func tableIdent(table string) string {
	return pgx.Identifier(strings.SplitN(table, ".", 2)).Sanitize()
}

// pgValue converts lists of strings to []string so they encode as text[].
func pgValue(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	strs := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return v
		}
		strs = append(strs, s)
	}
	return strs
}
