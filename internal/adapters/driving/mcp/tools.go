package mcp

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SyncTableInput is the input schema for the sync_table tool.
type SyncTableInput struct {
	Table string `json:"table" jsonschema:"name of the configured table mapping, e.g. phase-1"`
}

// SyncTableOutput is the output schema for the sync_table tool.
type SyncTableOutput struct {
	Success bool   `json:"success"`
	Synced  int    `json:"synced"`
	Message string `json:"message,omitempty"`
}

// CheckSecretsInput is the input schema for the check_secrets tool.
type CheckSecretsInput struct{}

// CheckSecretsOutput is the output schema for the check_secrets tool.
type CheckSecretsOutput struct {
	Secrets map[string]bool `json:"secrets"`
	Missing []string        `json:"missing,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_table",
		Description: "Fetch every record of a configured source table and upsert it into the sink",
	}, s.handleSyncTable)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_secrets",
		Description: "Report which required configuration values are present, without revealing them",
	}, s.handleCheckSecrets)
}

// handleSyncTable handles the sync_table tool invocation.
func (s *Server) handleSyncTable(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncTableInput,
) (*mcp.CallToolResult, SyncTableOutput, error) {
	table := strings.TrimSpace(input.Table)
	if table == "" {
		return nil, SyncTableOutput{}, errors.New("table is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.ports.syncTimeout())
	defer cancel()

	result, err := s.ports.Sync.Sync(ctx, table)
	if err != nil {
		return nil, SyncTableOutput{}, err
	}

	return nil, SyncTableOutput{
		Success: result.Success,
		Synced:  result.Synced,
		Message: result.Message,
	}, nil
}

// handleCheckSecrets handles the check_secrets tool invocation.
func (s *Server) handleCheckSecrets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CheckSecretsInput,
) (*mcp.CallToolResult, CheckSecretsOutput, error) {
	if s.ports.Secrets == nil {
		return nil, CheckSecretsOutput{}, errors.New("secrets probe not configured")
	}

	present := s.ports.Secrets.Probe(ctx)
	output := CheckSecretsOutput{Secrets: present}
	for name, ok := range present {
		if !ok {
			output.Missing = append(output.Missing, name)
		}
	}
	slices.Sort(output.Missing)

	return nil, output, nil
}
