// Package postgres implements the "postgres" sink driver with jackc/pgx.
//
// Each upsert request becomes one pgx.Batch of
// INSERT ... ON CONFLICT statements sent inside a single transaction,
// so a rejected row rolls back the whole request.
package postgres
