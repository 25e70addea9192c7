package mcp

import (
	"time"

	"github.com/custodia-labs/tablesync/internal/core/ports/driving"
)

// DefaultSyncTimeout bounds a sync_table call when Ports.SyncTimeout is unset.
const DefaultSyncTimeout = 5 * time.Minute

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync runs sync invocations and exposes mappings and history.
	Sync driving.SyncService

	// Secrets reports configuration presence. Optional.
	Secrets driving.SecretsProbe

	// SyncTimeout bounds each sync_table call. Zero uses DefaultSyncTimeout.
	SyncTimeout time.Duration
}

func (p *Ports) syncTimeout() time.Duration {
	if p.SyncTimeout > 0 {
		return p.SyncTimeout
	}
	return DefaultSyncTimeout
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	return nil
}
