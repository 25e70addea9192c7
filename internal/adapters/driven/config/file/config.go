package file

import (
	"fmt"
	"time"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// Config is the tablesync configuration file.
type Config struct {
	Server  ServerConfig          `toml:"server"`
	Source  SourceConfig          `toml:"source"`
	Sink    SinkConfig            `toml:"sink"`
	Secrets SecretsConfig         `toml:"secrets"`
	Tables  []domain.TableMapping `toml:"tables"`
}

// ServerConfig configures the HTTP trigger surface.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// SyncTimeout bounds one invocation started over HTTP.
	SyncTimeout Duration `toml:"sync_timeout"`

	// Schedule re-runs every table on this interval when non-zero.
	Schedule Duration `toml:"schedule"`
}

// SourceConfig configures the source API client.
type SourceConfig struct {
	BaseURL           string   `toml:"base_url"`
	TokenKey          string   `toml:"token_key"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	RequestTimeout    Duration `toml:"request_timeout"`
	MaxPages          int      `toml:"max_pages"`
}

// SinkConfig selects and configures the sink driver.
type SinkConfig struct {
	// Driver is one of postgrest, postgres, sqlite or memory.
	Driver string `toml:"driver"`

	// BatchSize caps rows per write request (0 = one request).
	BatchSize int `toml:"batch_size"`

	// DSNKey names the configuration value with the Postgres connection string.
	DSNKey string `toml:"dsn_key"`

	// DataDir holds the SQLite database for the sqlite driver and run history.
	DataDir string `toml:"data_dir"`
}

// SecretsConfig configures where named configuration values come from.
type SecretsConfig struct {
	// EnvFile is loaded into the process environment when present.
	EnvFile string `toml:"env_file"`

	// AWSSecretID names a Secrets Manager secret holding a JSON object
	// of values consulted after the environment.
	AWSSecretID string `toml:"aws_secret_id"`

	// AWSRegion overrides the region of the default AWS config chain.
	AWSRegion string `toml:"aws_region"`

	// Probe lists the names reported by the secrets probe.
	Probe []string `toml:"probe"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
