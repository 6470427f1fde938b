// Package storage journals the requests the map sends to the geotag server.
// The journal is an audit trail only; nothing in it is ever replayed.
package storage

import "github.com/fibs-geotag/mapsync/pkg/core"

// Backend is the interface all journal implementations must satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	RecordRequest(r *core.RequestRecord) error
	// RecentRequests returns up to limit requests, newest first.
	RecentRequests(limit int) ([]core.RequestRecord, error)
}
