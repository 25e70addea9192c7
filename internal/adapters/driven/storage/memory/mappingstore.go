package memory

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
)

// Ensure MappingStore implements the interface.
var _ driven.MappingStore = (*MappingStore)(nil)

// MappingStore is an in-memory implementation of driven.MappingStore.
type MappingStore struct {
	mu       sync.RWMutex
	mappings map[string]domain.TableMapping
}

// NewMappingStore creates a store holding the given mappings.
func NewMappingStore(mappings ...domain.TableMapping) *MappingStore {
	s := &MappingStore{mappings: make(map[string]domain.TableMapping, len(mappings))}
	for _, m := range mappings {
		s.mappings[m.Name] = m
	}
	return s
}

// Get returns a copy of the named mapping.
func (s *MappingStore) Get(name string) (*domain.TableMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mappings[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %q", domain.ErrNotFound, name)
	}
	m.Columns = slices.Clone(m.Columns)
	return &m, nil
}

// List returns every mapping sorted by name.
func (s *MappingStore) List() []domain.TableMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.TableMapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		result = append(result, m)
	}
	slices.SortFunc(result, func(a, b domain.TableMapping) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result
}

// Replace swaps the whole mapping set.
func (s *MappingStore) Replace(mappings []domain.TableMapping) {
	next := make(map[string]domain.TableMapping, len(mappings))
	for _, m := range mappings {
		next[m.Name] = m
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings = next
}
