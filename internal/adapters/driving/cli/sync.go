package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tablesync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tablesync/internal/core/domain"
)

var (
	syncJSON    bool
	syncTimeout time.Duration
)

var syncCmd = withServices(&cobra.Command{
	Use:   "sync [table]",
	Short: "Sync one table mapping",
	Long: `Fetches every record of the table mapping's source table and upserts
the transformed rows into the sink. Use "tablesync tables" to list the
configured mappings.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
})

func init() {
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "print the response envelope as JSON")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 0, "abort the sync after this long (0 = server.sync_timeout)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	table := args[0]
	if !syncJSON {
		cmd.Printf("Synchronising %s...\n", table)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), resolveSyncTimeout(syncTimeout))
	defer cancel()

	result, err := syncService.Sync(ctx, table)
	if err != nil {
		if syncJSON {
			writeJSON(cmd, domain.ErrorEnvelope{Error: err.Error()}) //nolint:errcheck
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	if syncJSON {
		return writeJSON(cmd, result)
	}
	if result.Message != "" {
		cmd.Println(result.Message)
		return nil
	}
	cmd.Printf("Synced %d records.\n", result.Synced)
	return nil
}

// resolveSyncTimeout picks the flag value, then server.sync_timeout,
// then the built-in default.
func resolveSyncTimeout(flag time.Duration) time.Duration {
	if flag > 0 {
		return flag
	}
	if d := currentConfig().Server.SyncTimeout.Std(); d > 0 {
		return d
	}
	return file.DefaultSyncTimeout
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
