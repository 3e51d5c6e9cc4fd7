package backend

import (
	"context"
	"maps"
	"sort"
	"strconv"
	"sync"

	"github.com/vango-dev/storable/pkg/record"
)

// Memory is an in-process Backend with sequential IDs.
type Memory struct {
	mu          sync.Mutex
	seq         int
	collections map[string]map[string]map[string]any
	order       map[string][]string
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
	}
}

func (m *Memory) bucket(collection string) map[string]map[string]any {
	b, ok := m.collections[collection]
	if !ok {
		b = make(map[string]map[string]any)
		m.collections[collection] = b
	}
	return b
}

// Read returns all records of a collection in creation order.
func (m *Memory) Read(_ context.Context, collection string) ([]record.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.collections[collection]
	out := make([]record.Payload, 0, len(b))
	for _, id := range m.order[collection] {
		if data, ok := b[id]; ok {
			out = append(out, record.Payload{ID: id, Data: maps.Clone(data)})
		}
	}
	return out, nil
}

// Create stores a new record and assigns it the next ID.
func (m *Memory) Create(_ context.Context, collection string, p record.Payload) (record.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := strconv.Itoa(m.seq)
	m.bucket(collection)[id] = maps.Clone(p.Data)
	m.order[collection] = append(m.order[collection], id)
	return record.Payload{ID: id, ClientID: p.ClientID, Data: maps.Clone(p.Data)}, nil
}

// Update replaces an existing record.
func (m *Memory) Update(_ context.Context, collection string, p record.Payload) (record.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bucket(collection)
	if _, ok := b[p.ID]; !ok {
		return record.Payload{}, ErrNotFound
	}
	b[p.ID] = maps.Clone(p.Data)
	return record.Payload{ID: p.ID, Data: maps.Clone(p.Data)}, nil
}

// Destroy deletes a record. Deleting a missing record is not an error.
func (m *Memory) Destroy(_ context.Context, collection string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bucket(collection), id)
	return nil
}

// Collections returns the names of collections that hold records.
func (m *Memory) Collections() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.collections))
	for name, b := range m.collections {
		if len(b) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
