package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.MappingStore = (*ConfigStore)(nil)

// ConfigStore is a TOML file-backed configuration.
// Table mappings from the file are merged over the built-in ones by name.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	cfg      *Config
}

// NewConfigStore loads configuration from path.
// If path is empty, defaults to ~/.tablesync/config.toml.
// A missing file yields the defaults.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".tablesync", "config.toml")
	}

	s := &ConfigStore{filePath: path}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load re-reads the file. On error the previous configuration is kept.
func (s *ConfigStore) Load() error {
	cfg, err := readConfig(s.filePath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	return nil
}

// readConfig parses and validates a config file over the defaults.
func readConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file yet - that's fine, use defaults
			return cfg, nil
		}
		return nil, err
	}

	builtins := cfg.Tables
	cfg.Tables = nil

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrInvalidInput, path, strict.String())
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
	}

	cfg.Tables = mergeMappings(builtins, cfg.Tables)
	for i := range cfg.Tables {
		if err := cfg.Tables[i].Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// mergeMappings overlays file mappings on the built-ins by name.
func mergeMappings(builtins, fromFile []domain.TableMapping) []domain.TableMapping {
	merged := slices.Clone(builtins)
	for _, m := range fromFile {
		idx := slices.IndexFunc(merged, func(b domain.TableMapping) bool { return b.Name == m.Name })
		if idx >= 0 {
			merged[idx] = m
			continue
		}
		merged = append(merged, m)
	}
	slices.SortFunc(merged, func(a, b domain.TableMapping) int {
		return strings.Compare(a.Name, b.Name)
	})
	return merged
}

// Config returns a copy of the current configuration.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := *s.cfg
	cfg.Tables = slices.Clone(s.cfg.Tables)
	cfg.Secrets.Probe = slices.Clone(s.cfg.Secrets.Probe)
	return cfg
}

// Get returns a copy of the named mapping.
func (s *ConfigStore) Get(name string) (*domain.TableMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.cfg.Tables {
		if m.Name == name {
			m.Columns = slices.Clone(m.Columns)
			return &m, nil
		}
	}
	return nil, fmt.Errorf("%w: table %q", domain.ErrNotFound, name)
}

// List returns every mapping sorted by name.
func (s *ConfigStore) List() []domain.TableMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cfg.Tables)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
