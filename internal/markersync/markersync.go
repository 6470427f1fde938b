// Package markersync keeps the map overlays of every image in step with the
// image store and turns drag gestures into geotag updates.
package markersync

import (
	"fmt"
	"log/slog"

	"github.com/fibs-geotag/mapsync/internal/cache"
	"github.com/fibs-geotag/mapsync/internal/geo"
	"github.com/fibs-geotag/mapsync/internal/render"
	"github.com/fibs-geotag/mapsync/internal/store"
	"github.com/fibs-geotag/mapsync/pkg/core"
)

// DefaultAppName prefixes the page title.
const DefaultAppName = "Geotag"

const (
	directionLineColor   = "#ff0000"
	directionLineWeight  = 5
	directionLineOpacity = 0.45
)

// UpdateSink receives geotag updates. SendUpdate must not block.
type UpdateSink interface {
	SendUpdate(update core.GeotagUpdate)
}

// ActiveSink owns the active image pointer.
type ActiveSink interface {
	SetActive(rec *store.ImageRecord)
}

// Config holds Syncer options.
type Config struct {
	ShowDirection bool
	AppName       string
}

// Syncer drives the per-image marker state machine. It is not safe for
// concurrent use; all calls are expected from the event loop.
type Syncer struct {
	store    *store.Store
	renderer render.Renderer
	updates  UpdateSink
	active   ActiveSink
	index    *cache.OverlayIndex
	cfg      Config
	logger   *slog.Logger

	// last known marker positions, the map page owns the real ones
	positions map[core.OverlayID]core.LatLng
	tracks    []core.OverlayID
	nearby    []core.OverlayID
}

// New creates a Syncer drawing through r.
func New(s *store.Store, r render.Renderer, updates UpdateSink, active ActiveSink, cfg Config, logger *slog.Logger) *Syncer {
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		store:     s,
		renderer:  r,
		updates:   updates,
		active:    active,
		index:     cache.NewOverlayIndex(),
		cfg:       cfg,
		logger:    logger,
		positions: make(map[core.OverlayID]core.LatLng),
	}
}

// Index exposes the overlay owner lookup for inbound event routing.
func (s *Syncer) Index() *cache.OverlayIndex {
	return s.index
}

// ShowDirection reports whether direction markers are displayed.
func (s *Syncer) ShowDirection() bool {
	return s.cfg.ShowDirection
}

// Title returns the page title for rec.
func (s *Syncer) Title(rec *store.ImageRecord) string {
	return fmt.Sprintf("%s %s %s", s.cfg.AppName, geo.FormatCoordinate(rec.Latitude), geo.FormatCoordinate(rec.Longitude))
}

// Activate makes rec the active image, pans to it and updates the title.
// An unpositioned record becomes active without moving the map.
func (s *Syncer) Activate(rec *store.ImageRecord) {
	s.active.SetActive(rec)
	if rec == nil || rec.State == store.Unpositioned {
		return
	}
	s.renderer.PanTo(rec.Location())
	s.renderer.SetTitle(s.Title(rec))
}

// Place draws the location marker, direction marker and direction line of
// rec. Overlays of an already positioned record are replaced.
func (s *Syncer) Place(rec *store.ImageRecord, vp geo.Viewport) {
	if rec.State != store.Unpositioned {
		s.removeOverlays(rec)
	}

	loc := rec.Location()
	dir := loc
	if rec.HasDirection() {
		dir = geo.DirectionPoint(vp, loc, rec.Direction)
	}

	icon := core.IconDefault
	if s.cfg.ShowDirection {
		icon = core.IconCamera
	}
	popup := InfoWindowHTML(rec)

	rec.LocationMarker = s.addMarker(rec.ID, core.RoleLocation, core.MarkerSpec{
		Position:  loc,
		Icon:      icon,
		Draggable: true,
		Visible:   true,
		PopupHTML: popup,
	})
	rec.DirectionMarker = s.addMarker(rec.ID, core.RoleDirection, core.MarkerSpec{
		Position:  dir,
		Icon:      core.IconDefault,
		Draggable: true,
		Visible:   s.cfg.ShowDirection,
		PopupHTML: popup,
	})
	rec.DirectionLine = s.addDirectionLine(rec.ID, loc, dir)
	rec.State = store.Positioned

	s.logger.Debug("image placed", "image", rec.ID, "lat", rec.Latitude, "lng", rec.Longitude, "direction", rec.Direction)
}

// DragStart is called when either marker of image id starts moving.
func (s *Syncer) DragStart(id int) {
	rec, ok := s.store.GetByID(id)
	if !ok || rec.State != store.Positioned {
		s.logger.Debug("ignoring drag start", "image", id)
		return
	}
	s.renderer.ClosePopup()
	if s.cfg.ShowDirection {
		s.removeOverlay(rec.DirectionLine)
		rec.DirectionLine = 0
	}
	rec.State = store.Dragging
}

// DragEnd is called when a marker of image id is dropped. location and
// direction are the current positions of both markers.
func (s *Syncer) DragEnd(id int, location, direction core.LatLng, vp geo.Viewport) {
	rec, ok := s.store.GetByID(id)
	if !ok || rec.State == store.Unpositioned {
		s.logger.Debug("ignoring drag end", "image", id)
		return
	}

	s.moveMarker(rec.LocationMarker, location)
	s.moveMarker(rec.DirectionMarker, direction)

	a, b := vp.Project(location), vp.Project(direction)
	bearing := geo.BearingFromDelta(b.X-a.X, b.Y-a.Y)

	rec.Latitude = geo.RoundCoordinate(location.Lat)
	rec.Longitude = geo.RoundCoordinate(location.Lng)

	update := core.GeotagUpdate{
		ImageID:   rec.ID,
		Latitude:  rec.Latitude,
		Longitude: rec.Longitude,
	}
	if s.cfg.ShowDirection {
		rec.Direction = bearing
		update.Direction = &bearing
	}

	s.removeOverlay(rec.DirectionLine)
	rec.DirectionLine = s.addDirectionLine(rec.ID, location, direction)

	s.updates.SendUpdate(update)
	rec.State = store.Positioned
	s.Activate(rec)

	s.logger.Debug("image moved", "image", rec.ID, "lat", rec.Latitude, "lng", rec.Longitude, "bearing", bearing)
}

// DragMarker resolves a dropped overlay to its image and completes the drag
// using the last known position of the other marker.
func (s *Syncer) DragMarker(overlay core.OverlayID, pos core.LatLng, vp geo.Viewport) bool {
	ref, ok := s.index.Get(overlay)
	if !ok {
		return false
	}
	rec, ok := s.store.GetByID(ref.ImageID)
	if !ok {
		return false
	}
	switch ref.Role {
	case core.RoleLocation:
		s.DragEnd(rec.ID, pos, s.positions[rec.DirectionMarker], vp)
	case core.RoleDirection:
		s.DragEnd(rec.ID, s.positions[rec.LocationMarker], pos, vp)
	default:
		return false
	}
	return true
}

// ImageForOverlay returns the image an overlay belongs to.
func (s *Syncer) ImageForOverlay(overlay core.OverlayID) (int, bool) {
	ref, ok := s.index.Get(overlay)
	if !ok || (ref.Role != core.RoleLocation && ref.Role != core.RoleDirection) {
		return 0, false
	}
	return ref.ImageID, true
}

// MarkerPosition returns the last known position of a marker.
func (s *Syncer) MarkerPosition(overlay core.OverlayID) (core.LatLng, bool) {
	pos, ok := s.positions[overlay]
	return pos, ok
}

// Remove tears down all overlays of image id and drops it from the store.
func (s *Syncer) Remove(id int) bool {
	rec, ok := s.store.Remove(id)
	if !ok {
		return false
	}
	s.removeOverlays(rec)
	rec.State = store.Unpositioned
	return true
}

// PositionedCount returns the number of images with overlays.
func (s *Syncer) PositionedCount() int {
	n := 0
	for _, rec := range s.store.All() {
		if rec.State != store.Unpositioned {
			n++
		}
	}
	return n
}

func (s *Syncer) addMarker(imageID int, role core.MarkerRole, spec core.MarkerSpec) core.OverlayID {
	id := s.renderer.RenderMarker(spec)
	s.index.Set(id, cache.OverlayRef{ImageID: imageID, Role: role})
	s.positions[id] = spec.Position
	return id
}

func (s *Syncer) addDirectionLine(imageID int, from, to core.LatLng) core.OverlayID {
	id := s.renderer.DrawLine(core.LineSpec{
		Points:  []core.LatLng{from, to},
		Color:   directionLineColor,
		Weight:  directionLineWeight,
		Opacity: directionLineOpacity,
		Visible: s.cfg.ShowDirection,
	})
	s.index.Set(id, cache.OverlayRef{ImageID: imageID, Role: core.RoleLine})
	return id
}

func (s *Syncer) moveMarker(id core.OverlayID, pos core.LatLng) {
	if id == 0 {
		return
	}
	s.renderer.MoveMarker(id, pos)
	s.positions[id] = pos
}

func (s *Syncer) removeOverlay(id core.OverlayID) {
	if id == 0 {
		return
	}
	s.renderer.RemoveOverlay(id)
	s.index.Delete(id)
	delete(s.positions, id)
}

func (s *Syncer) removeOverlays(rec *store.ImageRecord) {
	s.removeOverlay(rec.LocationMarker)
	s.removeOverlay(rec.DirectionMarker)
	s.removeOverlay(rec.DirectionLine)
	rec.LocationMarker, rec.DirectionMarker, rec.DirectionLine = 0, 0, 0
}
