package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tablesync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tablesync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/tablesync/internal/core/services"
	"github.com/custodia-labs/tablesync/internal/logger"
)

var (
	serveAddr     string
	serveWatch    bool
	serveSchedule time.Duration
)

var serveCmd = withServices(&cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP sync trigger",
	Long: `Starts the HTTP server:

  POST|GET /sync/{table}   run one sync of a table mapping
  GET      /test-secrets   report which required secrets are set
  GET      /healthz        liveness

With --watch the config file is reloaded when it changes, so table mappings
can be edited without a restart. With --schedule every table is synced on
that interval in the background.`,
	Args: cobra.NoArgs,
	RunE: runServe,
})

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the config file when it changes")
	serveCmd.Flags().DurationVar(&serveSchedule, "schedule", 0, "sync every table on this interval (0 = from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := currentConfig()
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		addr = file.DefaultAddr
	}

	if serveWatch && configStore != nil {
		go func() {
			err := configStore.Watch(ctx, func(c file.Config) {
				logger.Info("Serving %d table mappings", len(c.Tables))
			})
			if err != nil {
				logger.Error("config watcher stopped: %v", err)
			}
		}()
	}

	interval := serveSchedule
	if interval == 0 {
		interval = cfg.Server.Schedule.Std()
	}
	if interval > 0 {
		scheduler := services.NewScheduler(syncService, nil, interval,
			services.WithSyncTimeout(resolveSyncTimeout(0)))
		go func() {
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler stopped: %v", err)
			}
		}()
		defer scheduler.Stop() //nolint:errcheck
		logger.Info("Syncing every table every %s", interval)
	}

	server := httpapi.NewServer(syncService, secretsProbe, cfg.Server.SyncTimeout.Std())
	cmd.Printf("Listening on %s\n", addr)
	return server.ListenAndServe(ctx, addr)
}
