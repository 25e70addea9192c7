// Package sqlite provides the SQLite-backed implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file serves two roles:
//
//   - RunStore: sync history, one row per invocation
//   - SinkFactory: the "sqlite" sink driver, writing destination tables
//
// # Schema
//
// The history schema is managed through versioned migrations stored in the
// migrations/ directory. Destination tables are not migrated; they are created
// from the table mapping on first write, keyed by the conflict key column.
//
// # Data Location
//
// By default, the database is stored at ~/.tablesync/data/tablesync.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
