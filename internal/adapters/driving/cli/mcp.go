package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tablesync/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = withServices(&cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools:
  sync_table      sync one configured table mapping
  check_secrets   report which required secrets are set

Resources:
  tablesync://tables               configured table mappings
  tablesync://tables/{table}/runs  recent runs of a mapping

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve streamable HTTP instead.

Examples:
  # Stdio mode (default)
  tablesync mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  tablesync mcp serve --port 8081`,
	RunE: runMCPServe,
})

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Sync:        syncService,
		Secrets:     secretsProbe,
		SyncTimeout: resolveSyncTimeout(0),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
