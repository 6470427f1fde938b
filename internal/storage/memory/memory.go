// Package memory keeps the request journal in process memory.
package memory

import (
	"sync"

	"github.com/fibs-geotag/mapsync/pkg/core"
)

// Backend stores journal entries in a slice.
type Backend struct {
	mu       sync.RWMutex
	requests []core.RequestRecord
}

// New creates a new memory backend.
func New() *Backend {
	return &Backend{}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources.
func (b *Backend) Close() error {
	return nil
}

// RecordRequest appends a copy of r.
func (b *Backend) RecordRequest(r *core.RequestRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, *r)
	return nil
}

// RecentRequests returns up to limit requests, newest first. A limit of zero
// or less returns everything.
func (b *Backend) RecentRequests(limit int) ([]core.RequestRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := len(b.requests)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]core.RequestRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, b.requests[i])
	}
	return out, nil
}

// Len returns the number of journaled requests.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.requests)
}
