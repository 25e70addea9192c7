// Package memory provides in-memory implementations of the driven ports.
//
// The stores are safe for concurrent use and are intended for tests,
// dry runs and the "memory" sink driver. Nothing survives the process.
package memory
