package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for tablesync resources.
	uriScheme = "tablesync://"

	// historyLimit caps the runs returned by the history resource.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tables",
		Name:        "tables",
		Description: "Configured table mappings",
		MIMEType:    "application/json",
	}, s.handleTablesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tables/{table}/runs",
		Name:        "table-runs",
		Description: "Recent sync runs for a table mapping",
		MIMEType:    "application/json",
	}, s.handleRunsResource)
}

// handleTablesResource returns the configured mappings.
func (s *Server) handleTablesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type tableInfo struct {
		Name        string `json:"name"`
		SourceTable string `json:"source_table"`
		SinkTable   string `json:"sink_table"`
		ConflictKey string `json:"conflict_key"`
		Columns     int    `json:"columns"`
	}

	mappings := s.ports.Sync.Tables()
	infos := make([]tableInfo, len(mappings))
	for i := range mappings {
		infos[i] = tableInfo{
			Name:        mappings[i].Name,
			SourceTable: mappings[i].SourceTable,
			SinkTable:   mappings[i].SinkTable,
			ConflictKey: mappings[i].ConflictKey,
			Columns:     len(mappings[i].Columns),
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleRunsResource returns recent runs for one mapping.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	table := extractTable(req.Params.URI)
	if table == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runs, err := s.ports.Sync.History(ctx, table, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	return jsonResult(req.Params.URI, runs)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTable extracts the mapping name from a URI like tablesync://tables/{table}/runs.
func extractTable(uri string) string {
	const prefix = uriScheme + "tables/"
	const suffix = "/runs"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
