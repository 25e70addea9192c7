package driven

import "context"

// SecretLookup resolves named configuration values.
// Implementations never log values.
type SecretLookup interface {
	// Lookup returns the value for name and whether it is set.
	// An empty value counts as unset.
	Lookup(ctx context.Context, name string) (string, bool, error)
}
