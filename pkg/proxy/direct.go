package proxy

import (
	"context"
	"sync"

	"github.com/vango-dev/storable/pkg/backend"
	"github.com/vango-dev/storable/pkg/collection"
)

// Direct is a proxy that calls a backend in process.
type Direct struct {
	backend backend.Backend
	name    string

	mu       sync.Mutex
	failNext error
}

// NewDirect creates a proxy over b.
func NewDirect(name string, b backend.Backend) *Direct {
	return &Direct{backend: b, name: name}
}

// NewMemory creates a direct proxy over a fresh in-memory backend.
func NewMemory() *Direct {
	return NewDirect("memory", backend.NewMemory())
}

// Name implements collection.Proxy.
func (d *Direct) Name() string { return d.name }

// Backend returns the underlying backend.
func (d *Direct) Backend() backend.Backend { return d.backend }

// FailNext makes the next request fail with err.
func (d *Direct) FailNext(err error) {
	d.mu.Lock()
	d.failNext = err
	d.mu.Unlock()
}

// Do implements collection.Proxy.
func (d *Direct) Do(ctx context.Context, req collection.Request) (*collection.Response, error) {
	d.mu.Lock()
	err := d.failNext
	d.failNext = nil
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return backend.Apply(ctx, d.backend, req), nil
}
