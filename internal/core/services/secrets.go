package services

import (
	"context"

	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
	"github.com/custodia-labs/tablesync/internal/core/ports/driving"
	"github.com/custodia-labs/tablesync/internal/logger"
)

// DefaultProbeNames are the configuration values checked by the probe.
var DefaultProbeNames = []string{
	"SUPABASE_SERVICE_ROLE_KEY",
	"SUPABASE_URL",
	"AIRTABLE_BASE_ID",
	"AIRTABLE_TOKEN",
}

// Ensure SecretsProbe implements the interface.
var _ driving.SecretsProbe = (*SecretsProbe)(nil)

// SecretsProbe reports which configuration values are present.
type SecretsProbe struct {
	lookup driven.SecretLookup
	names  []string
}

// NewSecretsProbe creates a probe over names. Empty names uses DefaultProbeNames.
func NewSecretsProbe(lookup driven.SecretLookup, names []string) *SecretsProbe {
	if len(names) == 0 {
		names = DefaultProbeNames
	}
	return &SecretsProbe{lookup: lookup, names: names}
}

// Probe maps each name to whether it is set. A failed lookup counts as absent.
func (p *SecretsProbe) Probe(ctx context.Context) map[string]bool {
	present := make(map[string]bool, len(p.names))
	for _, name := range p.names {
		_, ok, err := p.lookup.Lookup(ctx, name)
		if err != nil {
			logger.Warn("lookup %s: %v", name, err)
			ok = false
		}
		if !ok {
			logger.Error("Missing secret: %s", name)
		}
		present[name] = ok
	}
	return present
}
