package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// Ensure Env implements the interface.
var _ driven.SecretLookup = Env{}

// Env looks values up in the process environment.
type Env struct{}

// Lookup returns the environment value. Empty counts as unset.
func (Env) Lookup(_ context.Context, name string) (string, bool, error) {
	v, ok := os.LookupEnv(name)
	return v, ok && v != "", nil
}

// LoadEnvFile loads a .env file into the process environment without
// overriding variables that are already set. A missing file is only an
// error when required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Map looks values up in a fixed map.
type Map map[string]string

// Ensure Map implements the interface.
var _ driven.SecretLookup = Map(nil)

// Lookup returns the mapped value. Empty counts as unset.
func (m Map) Lookup(_ context.Context, name string) (string, bool, error) {
	v := m[name]
	return v, v != "", nil
}

// Chain consults each lookup in order and returns the first value found.
type Chain []driven.SecretLookup

// Ensure Chain implements the interface.
var _ driven.SecretLookup = Chain(nil)

// Lookup returns the first set value. A failing lookup stops the chain.
func (c Chain) Lookup(ctx context.Context, name string) (string, bool, error) {
	for _, l := range c {
		v, ok, err := l.Lookup(ctx, name)
		if err != nil {
			return "", false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return "", false, nil
}
