// Package cache holds lookup tables shared between the sync core and the
// renderer event decoders.
package cache

import (
	"sync"

	"github.com/fibs-geotag/mapsync/pkg/core"
)

// OverlayRef names the image and role an overlay belongs to.
type OverlayRef struct {
	ImageID int
	Role    core.MarkerRole
}

// OverlayIndex maps renderer overlay IDs back to the image they draw.
type OverlayIndex struct {
	mu       sync.RWMutex
	overlays map[core.OverlayID]OverlayRef
}

// NewOverlayIndex creates an empty OverlayIndex.
func NewOverlayIndex() *OverlayIndex {
	return &OverlayIndex{
		overlays: make(map[core.OverlayID]OverlayRef),
	}
}

// Get retrieves the owner of an overlay.
func (c *OverlayIndex) Get(id core.OverlayID) (OverlayRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.overlays[id]
	return ref, ok
}

// Set records the owner of an overlay. Zero IDs are ignored.
func (c *OverlayIndex) Set(id core.OverlayID, ref OverlayRef) {
	if id == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlays[id] = ref
}

// Delete forgets an overlay.
func (c *OverlayIndex) Delete(id core.OverlayID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.overlays, id)
}

// Len returns the number of indexed overlays.
func (c *OverlayIndex) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.overlays)
}

// Reset clears the index.
func (c *OverlayIndex) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlays = make(map[core.OverlayID]OverlayRef)
}
