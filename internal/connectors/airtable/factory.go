package airtable

import (
	"context"

	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.SourceFactory = (*Factory)(nil)

// Factory builds a Client per sync invocation.
// Options are applied to every client; a shared RateLimiter keeps
// concurrent invocations under the per-base limit.
type Factory struct {
	opts []Option
}

// NewFactory creates a client factory.
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts}
}

// NewSource returns a client bound to the supplied token.
func (f *Factory) NewSource(_ context.Context, creds driven.SourceCredentials) (driven.RecordSource, error) {
	if creds.Token == "" {
		return nil, ErrMissingToken
	}
	return NewClient(creds.Token, f.opts...), nil
}
