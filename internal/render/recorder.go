package render

import (
	"slices"
	"sync"

	"github.com/fibs-geotag/mapsync/pkg/core"
)

// OverlayKind distinguishes markers from lines.
type OverlayKind int

const (
	KindMarker OverlayKind = iota
	KindLine
)

// Overlay is one entry of the Recorder's overlay table.
type Overlay struct {
	ID     core.OverlayID
	Kind   OverlayKind
	Marker core.MarkerSpec
	Line   core.LineSpec
}

// Visible reports whether the overlay is currently shown.
func (o Overlay) Visible() bool {
	if o.Kind == KindLine {
		return o.Line.Visible
	}
	return o.Marker.Visible
}

// Recorder is an in-memory Renderer. It keeps the overlay table and the view
// state so it can serve headless runs, tests, and replay for remote renderers.
type Recorder struct {
	mu       sync.RWMutex
	nextID   core.OverlayID
	overlays map[core.OverlayID]*Overlay
	center   core.LatLng
	zoom     int
	title    string
	popups   int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		overlays: make(map[core.OverlayID]*Overlay),
	}
}

// RenderMarker stores a marker and returns its new ID.
func (r *Recorder) RenderMarker(spec core.MarkerSpec) core.OverlayID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.overlays[r.nextID] = &Overlay{ID: r.nextID, Kind: KindMarker, Marker: spec}
	return r.nextID
}

// MoveMarker updates the position of a marker. Unknown IDs and lines are ignored.
func (r *Recorder) MoveMarker(id core.OverlayID, pos core.LatLng) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.overlays[id]; ok && o.Kind == KindMarker {
		o.Marker.Position = pos
	}
}

// DrawLine stores a copy of the line and returns its new ID.
func (r *Recorder) DrawLine(spec core.LineSpec) core.OverlayID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	spec.Points = slices.Clone(spec.Points)
	r.overlays[r.nextID] = &Overlay{ID: r.nextID, Kind: KindLine, Line: spec}
	return r.nextID
}

// RemoveOverlay drops an overlay from the table.
func (r *Recorder) RemoveOverlay(id core.OverlayID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overlays, id)
}

// SetVisible shows or hides an overlay.
func (r *Recorder) SetVisible(id core.OverlayID, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.overlays[id]
	if !ok {
		return
	}
	if o.Kind == KindLine {
		o.Line.Visible = visible
	} else {
		o.Marker.Visible = visible
	}
}

// ClosePopup counts closed popups; the Recorder keeps no popup content.
func (r *Recorder) ClosePopup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popups++
}

// PanTo moves the view center.
func (r *Recorder) PanTo(pos core.LatLng) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.center = pos
}

// FitView sets the view center and zoom.
func (r *Recorder) FitView(center core.LatLng, zoom int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.center = center
	r.zoom = zoom
}

// SetTitle records the page title.
func (r *Recorder) SetTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title = title
}

// Overlay returns a copy of the overlay with the given ID.
func (r *Recorder) Overlay(id core.OverlayID) (Overlay, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.overlays[id]
	if !ok {
		return Overlay{}, false
	}
	return *o, true
}

// Overlays returns all overlays ordered by ID, which is creation order.
func (r *Recorder) Overlays() []Overlay {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Overlay, 0, len(r.overlays))
	for _, o := range r.overlays {
		out = append(out, *o)
	}
	slices.SortFunc(out, func(a, b Overlay) int { return int(a.ID) - int(b.ID) })
	return out
}

// Len returns the number of live overlays.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.overlays)
}

// Center returns the last panned-to position.
func (r *Recorder) Center() core.LatLng {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.center
}

// Zoom returns the last fitted zoom.
func (r *Recorder) Zoom() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.zoom
}

// Title returns the current page title.
func (r *Recorder) Title() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.title
}

// PopupsClosed counts ClosePopup calls.
func (r *Recorder) PopupsClosed() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.popups
}
