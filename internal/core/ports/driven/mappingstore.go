package driven

import "github.com/custodia-labs/tablesync/internal/core/domain"

// MappingStore provides table mapping configuration.
type MappingStore interface {
	// Get returns the mapping with the given name.
	// Returns domain.ErrNotFound when no such mapping exists.
	Get(name string) (*domain.TableMapping, error)

	// List returns every configured mapping sorted by name.
	List() []domain.TableMapping
}
