package collection

import (
	"slices"
	"sync"
)

// Resolver looks up a collection by identifier.
type Resolver func(id string) (Collection, bool)

// Registry maps identifiers to collections. Applications create one and pass
// its Resolver to the controllers that reference collections by ID.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]Collection
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{collections: make(map[string]Collection)}
}

// Register adds or replaces a collection.
func (r *Registry) Register(id string, c Collection) {
	r.mu.Lock()
	r.collections[id] = c
	r.mu.Unlock()
}

// Lookup returns the collection registered under id.
func (r *Registry) Lookup(id string) (Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[id]
	return c, ok
}

// Resolver returns Lookup as a Resolver.
func (r *Registry) Resolver() Resolver {
	return r.Lookup
}

// IDs returns the registered identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.collections))
	for id := range r.collections {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
