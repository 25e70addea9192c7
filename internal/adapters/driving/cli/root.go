// Package cli provides the tablesync command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tablesync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tablesync/internal/core/ports/driving"
	"github.com/custodia-labs/tablesync/internal/logger"
)

// version is set at build time by main.
var version = "dev"

// Global flags.
var (
	configPath string
	envFile    string
	verbose    bool
)

// Services used by the commands. They are built from configuration by
// the root command unless already set, which is how tests inject mocks.
var (
	syncService  driving.SyncService
	secretsProbe driving.SecretsProbe
	configStore  *file.ConfigStore
	appConfig    *file.Config
)

// current holds the application built for this run, if any.
var current *application

var rootCmd = &cobra.Command{
	Use:   "tablesync",
	Short: "Sync Airtable tables into a database",
	Long: `tablesync pulls every record of a configured Airtable table, maps its
fields onto destination columns and upserts the rows into a sink keyed by the
Airtable record id. Re-running a sync is idempotent.

Table mappings, the sink driver and server settings are read from a TOML
config file; credentials come from the environment, an optional .env file
and an optional AWS Secrets Manager secret.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default ~/.tablesync/config.toml)")
	flags.StringVar(&envFile, "env-file", "", "load environment variables from this file (default .env)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.ExecuteContext(ctx)
}

// setup configures logging and builds the services unless they were injected.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if !needsServices(cmd) || syncService != nil {
		return nil
	}

	app, err := newApplication(cmd.Context(), appOptions{
		ConfigPath:      configPath,
		EnvFile:         envFile,
		EnvFileRequired: cmd.Flags().Changed("env-file"),
	})
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}

	current = app
	syncService = app.sync
	secretsProbe = app.probe
	configStore = app.config
	cfg := app.config.Config()
	appConfig = &cfg
	return nil
}

// teardown releases resources held by a built application.
func teardown(_ *cobra.Command, _ []string) error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	syncService = nil
	secretsProbe = nil
	configStore = nil
	appConfig = nil
	return err
}

// servicesAnnotation marks commands that use the sync services.
const servicesAnnotation = "tablesync/services"

// withServices marks cmd as needing the sync services.
func withServices(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[servicesAnnotation] = "true"
	return cmd
}

// needsServices reports whether cmd uses the sync services.
func needsServices(cmd *cobra.Command) bool {
	return cmd.Annotations[servicesAnnotation] == "true"
}

// currentConfig returns the loaded configuration, or the defaults.
func currentConfig() *file.Config {
	if appConfig != nil {
		return appConfig
	}
	return file.DefaultConfig()
}
