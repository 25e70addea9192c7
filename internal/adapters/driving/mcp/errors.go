// Package mcp provides an MCP (Model Context Protocol) server adapter for tablesync.
// It lets AI assistants trigger table syncs and inspect configuration and run history.
package mcp

import "errors"

// ErrMissingSyncService is returned when the sync service is not provided.
var ErrMissingSyncService = errors.New("mcp: sync service is required")
