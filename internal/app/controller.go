package app

import (
	"log/slog"
	"strconv"
	"unicode"

	"github.com/fibs-geotag/mapsync/internal/config"
	"github.com/fibs-geotag/mapsync/internal/geo"
	"github.com/fibs-geotag/mapsync/internal/markersync"
	"github.com/fibs-geotag/mapsync/internal/render"
	"github.com/fibs-geotag/mapsync/internal/store"
	"github.com/fibs-geotag/mapsync/internal/util"
	"github.com/fibs-geotag/mapsync/pkg/core"
)

// Menu item identifiers as used by the map page.
const (
	ItemMenu          = "menuButton"
	ItemWheelZoom     = "scrollZoomCheckBox"
	ItemShowTracks    = "showTracksCheckBox"
	ItemShowWikipedia = "showWikipediaCheckBox"
	ItemCurrentImage  = "currentImage"
	ItemNextImage     = "nextImage"
	ItemPreviousImage = "previousImage"
	ItemShowAll       = "showAll"
)

// SettingsSink persists UI preferences. SetSetting must not block.
type SettingsSink interface {
	SetSetting(s core.Setting)
}

// Loader starts background fetches. Results come back through the
// Apply* methods on the event loop.
type Loader interface {
	LoadImageInfos(ids []int)
	LoadTracks(b core.Bounds, size core.Size)
	LoadNearby(b core.Bounds, lang string)
}

// MenuItem describes one entry of the map menu.
type MenuItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Shortcut rune   `json:"shortcut,omitempty"`
	Checked  bool   `json:"checked,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
}

type shortcut struct {
	key  rune
	item string
}

// Controller turns user intents into store, overlay and settings changes.
// It is not safe for concurrent use.
type Controller struct {
	state    *State
	sync     *markersync.Syncer
	renderer render.Renderer
	settings SettingsSink
	loader   Loader
	labels   config.Labels
	logger   *slog.Logger

	// in precedence order
	shortcuts []shortcut
}

// NewController creates a controller over state. The syncer must share
// state.Store and use state as its active sink.
func NewController(state *State, sync *markersync.Syncer, r render.Renderer, settings SettingsSink, loader Loader, labels config.Labels, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		state:    state,
		sync:     sync,
		renderer: r,
		settings: settings,
		loader:   loader,
		labels:   labels,
		logger:   logger,
	}
	for _, l := range []struct {
		label string
		item  string
	}{
		{labels.ShowMenu, ItemMenu},
		{labels.MouseZoom, ItemWheelZoom},
		{labels.ShowTracks, ItemShowTracks},
		{labels.ShowWikipedia, ItemShowWikipedia},
		{labels.CurrentImage, ItemCurrentImage},
		{labels.NextImage, ItemNextImage},
		{labels.PreviousImage, ItemPreviousImage},
		{labels.ShowAll, ItemShowAll},
	} {
		if r, ok := util.FindShortcut(l.label); ok {
			c.shortcuts = append(c.shortcuts, shortcut{key: r, item: l.item})
		}
	}
	return c
}

// State returns the controlled state.
func (c *Controller) State() *State {
	return c.state
}

// Syncer returns the marker syncer.
func (c *Controller) Syncer() *markersync.Syncer {
	return c.sync
}

// Start shows the startup view, reports the menu state and requests the
// metadata of every image.
func (c *Controller) Start() {
	vp := c.state.Viewport
	c.renderer.FitView(vp.Center, vp.Zoom)
	c.renderer.SetTitle(c.labels.Title)
	c.setBool(core.SettingMenuOpen, c.state.MenuOpen)
	if ids := c.state.Store.IDs(); len(ids) > 0 {
		c.loader.LoadImageInfos(ids)
	}
	c.ViewChanged(vp)
}

// ApplyImageInfos merges fetched metadata into the store. Entries for
// unknown IDs are ignored. The first placed image becomes active when
// none is.
func (c *Controller) ApplyImageInfos(infos []core.ImageInfo, err error) {
	if err != nil {
		c.logger.Warn("Image metadata unavailable", "error", err)
		return
	}
	for _, info := range infos {
		rec, ok := c.state.Store.GetByID(info.ID)
		if !ok {
			c.logger.Debug("ignoring metadata for unknown image", "image", info.ID)
			continue
		}
		rec.Apply(info)
		if c.state.ShowDirection && !rec.HasDirection() && c.state.InitialDirection >= 0 {
			rec.Direction = c.state.InitialDirection
		}
		c.sync.Place(rec, c.state.Viewport)
		if c.state.Active == nil {
			c.sync.Activate(rec)
		}
	}
}

// ApplyTracks replaces the displayed tracks. The old set is cleared even
// when the fetch failed.
func (c *Controller) ApplyTracks(tracks []core.Track, err error) {
	c.sync.ClearTracks()
	if err != nil {
		c.logger.Debug("tracks unavailable", "error", err)
		return
	}
	c.sync.ReplaceTracks(tracks)
}

// ApplyNearby replaces the displayed points of interest. The old set is
// cleared even when the fetch failed.
func (c *Controller) ApplyNearby(entries []core.NearbyEntry, err error) {
	c.sync.ClearNearby()
	if err != nil {
		c.logger.Debug("nearby entries unavailable", "error", err)
		return
	}
	c.sync.ReplaceNearby(entries)
}

// ToggleMenu opens or closes the menu.
func (c *Controller) ToggleMenu() {
	c.state.MenuOpen = !c.state.MenuOpen
	c.setBool(core.SettingMenuOpen, c.state.MenuOpen)
}

// ToggleWheelZoom switches mouse wheel zooming.
func (c *Controller) ToggleWheelZoom() {
	c.state.WheelZoom = !c.state.WheelZoom
	c.setBool(core.SettingWheelZoom, c.state.WheelZoom)
}

// ToggleTracks switches the track display. Tracks are cleared in both
// directions and fetched again when switched on.
func (c *Controller) ToggleTracks() {
	c.state.ShowTracks = !c.state.ShowTracks
	c.sync.ClearTracks()
	if c.state.ShowTracks {
		vp := c.state.Viewport
		c.loader.LoadTracks(vp.Bounds(), vp.Size)
	}
	c.setBool(core.SettingShowTracks, c.state.ShowTracks)
}

// ToggleNearby switches the Wikipedia entry display.
func (c *Controller) ToggleNearby() {
	c.state.ShowNearby = !c.state.ShowNearby
	c.sync.ClearNearby()
	if c.state.ShowNearby {
		c.loader.LoadNearby(c.state.Viewport.Bounds(), c.state.Language)
	}
	c.setBool(core.SettingWikipedia, c.state.ShowNearby)
}

// GotoCurrent pans back to the active image.
func (c *Controller) GotoCurrent() {
	rec := c.state.Active
	if rec == nil || rec.State == store.Unpositioned {
		return
	}
	c.renderer.PanTo(rec.Location())
	c.state.Viewport.Center = rec.Location()
}

// GotoNext activates the image after the active one, wrapping around.
func (c *Controller) GotoNext() {
	next, err := c.state.Store.Next(c.state.Active)
	if err != nil {
		c.logger.Debug("no next image", "error", err)
		return
	}
	c.activate(next)
}

// GotoPrevious activates the image before the active one, wrapping around.
func (c *Controller) GotoPrevious() {
	prev, err := c.state.Store.Previous(c.state.Active)
	if err != nil {
		c.logger.Debug("no previous image", "error", err)
		return
	}
	c.activate(prev)
}

// ShowAll zooms and pans so that every positioned image is visible.
func (c *Controller) ShowAll() {
	var points []core.LatLng
	for _, rec := range c.state.Store.All() {
		if rec.State == store.Unpositioned {
			continue
		}
		pos, ok := c.sync.MarkerPosition(rec.LocationMarker)
		if !ok {
			pos = rec.Location()
		}
		points = append(points, pos)
	}
	b, err := geo.BoundingBoxOf(points)
	if err != nil {
		c.logger.Debug("nothing to show", "error", err)
		return
	}
	zoom := geo.ZoomLevelForBounds(b, c.state.Viewport.Size)
	c.renderer.FitView(b.Center(), zoom)
	c.state.Viewport.Center = b.Center()
	c.state.Viewport.Zoom = zoom
}

// HandleKey runs the menu action whose shortcut matches key. Letters are
// compared case-insensitively. It reports whether an action ran.
func (c *Controller) HandleKey(key rune) bool {
	key = unicode.ToUpper(key)
	for _, s := range c.shortcuts {
		if s.key == key {
			return c.MenuClicked(s.item)
		}
	}
	return false
}

// MenuClicked runs the action of a menu item. Hidden items do nothing.
func (c *Controller) MenuClicked(item string) bool {
	if c.hidden(item) {
		return false
	}
	switch item {
	case ItemMenu:
		c.ToggleMenu()
	case ItemWheelZoom:
		c.ToggleWheelZoom()
	case ItemShowTracks:
		c.ToggleTracks()
	case ItemShowWikipedia:
		c.ToggleNearby()
	case ItemCurrentImage:
		c.GotoCurrent()
	case ItemNextImage:
		c.GotoNext()
	case ItemPreviousImage:
		c.GotoPrevious()
	case ItemShowAll:
		c.ShowAll()
	default:
		c.logger.Debug("unknown menu item", "item", item)
		return false
	}
	return true
}

// MenuItems returns the menu as it should currently be shown.
func (c *Controller) MenuItems() []MenuItem {
	menuLabel := c.labels.ShowMenu
	if c.state.MenuOpen {
		menuLabel = c.labels.HideMenu
	}
	items := []MenuItem{
		{ID: ItemMenu, Label: menuLabel},
		{ID: ItemWheelZoom, Label: c.labels.MouseZoom, Checked: c.state.WheelZoom},
		{ID: ItemShowTracks, Label: c.labels.ShowTracks, Checked: c.state.ShowTracks},
		{ID: ItemShowWikipedia, Label: c.labels.ShowWikipedia, Checked: c.state.ShowNearby},
		{ID: ItemCurrentImage, Label: c.labels.CurrentImage},
		{ID: ItemNextImage, Label: c.labels.NextImage},
		{ID: ItemPreviousImage, Label: c.labels.PreviousImage},
		{ID: ItemShowAll, Label: c.labels.ShowAll},
	}
	for i := range items {
		items[i].Shortcut, _ = util.FindShortcut(items[i].Label)
		items[i].Hidden = c.hidden(items[i].ID)
		items[i].Label = util.StripTags(items[i].Label)
	}
	return items
}

// ViewChanged records the visible area and fetches tracks and nearby
// entries for it when they are shown.
func (c *Controller) ViewChanged(vp geo.Viewport) {
	if vp.Size.Width <= 0 || vp.Size.Height <= 0 {
		vp.Size = c.state.Viewport.Size
	}
	c.state.Viewport = vp
	if c.state.ShowTracks {
		c.loader.LoadTracks(vp.Bounds(), vp.Size)
	}
	if c.state.ShowNearby {
		c.loader.LoadNearby(vp.Bounds(), c.state.Language)
	}
}

// ZoomChanged records and persists a new zoom level.
func (c *Controller) ZoomChanged(zoom int) {
	c.state.Viewport.Zoom = zoom
	c.settings.SetSetting(core.Setting{Key: core.SettingZoom, Value: strconv.Itoa(zoom)})
}

// MapTypeChanged records and persists the base layer.
func (c *Controller) MapTypeChanged(name string) {
	c.state.MapType = core.ParseMapType(name)
	c.settings.SetSetting(core.Setting{Key: core.SettingMapType, Value: string(c.state.MapType)})
}

// Resize records the new viewport size and keeps the active image in view.
func (c *Controller) Resize(size core.Size) {
	if size.Width > 0 && size.Height > 0 {
		c.state.Viewport.Size = size
	}
	c.GotoCurrent()
}

// DragStart routes a drag start on overlay to its image.
func (c *Controller) DragStart(overlay core.OverlayID) {
	id, ok := c.sync.ImageForOverlay(overlay)
	if !ok {
		c.logger.Debug("drag start on unknown overlay", "overlay", overlay)
		return
	}
	c.sync.DragStart(id)
}

// DragEnd routes a drop of overlay at pos to its image.
func (c *Controller) DragEnd(overlay core.OverlayID, pos core.LatLng) {
	if !c.sync.DragMarker(overlay, pos, c.state.Viewport) {
		c.logger.Debug("drag end on unknown overlay", "overlay", overlay)
		return
	}
	// the syncer panned to the image location, whichever marker was dropped
	if id, ok := c.sync.ImageForOverlay(overlay); ok {
		if rec, ok := c.state.Store.GetByID(id); ok {
			c.state.Viewport.Center = rec.Location()
		}
	}
}

// Click activates the image owning the clicked marker.
func (c *Controller) Click(overlay core.OverlayID) {
	id, ok := c.sync.ImageForOverlay(overlay)
	if !ok {
		return
	}
	if rec, ok := c.state.Store.GetByID(id); ok {
		c.activate(rec)
	}
}

// RemoveImage drops an image and its overlays.
func (c *Controller) RemoveImage(id int) bool {
	if !c.sync.Remove(id) {
		return false
	}
	c.state.Forget(id)
	return true
}

func (c *Controller) activate(rec *store.ImageRecord) {
	c.sync.Activate(rec)
	if rec.State != store.Unpositioned {
		c.state.Viewport.Center = rec.Location()
	}
}

func (c *Controller) hidden(item string) bool {
	switch item {
	case ItemNextImage, ItemPreviousImage, ItemShowAll:
		return c.state.Store.Size() <= 1
	}
	return false
}

func (c *Controller) setBool(key string, v bool) {
	c.settings.SetSetting(core.Setting{Key: key, Value: strconv.FormatBool(v)})
}
