// Package app binds map intents to the image store and the marker syncer and
// runs everything on one event loop.
package app

import (
	"log/slog"
	"sync/atomic"

	"github.com/fibs-geotag/mapsync/internal/config"
	"github.com/fibs-geotag/mapsync/internal/geo"
	"github.com/fibs-geotag/mapsync/internal/store"
	"github.com/fibs-geotag/mapsync/pkg/core"
)

// DefaultSize is the viewport assumed until the page reports its size.
var DefaultSize = core.Size{Width: 800, Height: 600}

// State is the explicit application state. Only the event loop touches it;
// the atomic mirrors exist for log attributes read from other goroutines.
type State struct {
	Store  *store.Store
	Active *store.ImageRecord

	MenuOpen         bool
	WheelZoom        bool
	ShowTracks       bool
	ShowNearby       bool
	ShowDirection    bool
	InitialDirection float64
	Language         string
	MapType          core.MapType
	Viewport         geo.Viewport

	activeID   atomic.Int64
	imageCount atomic.Int64
}

// NewState builds the state for a page opened with st. The store holds one
// unpositioned record per requested image.
func NewState(st config.Startup, size core.Size) *State {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	s := &State{
		Store:            store.New(),
		MenuOpen:         st.MenuOpen,
		WheelZoom:        st.WheelZoom,
		ShowTracks:       st.ShowTracks,
		ShowNearby:       st.ShowWikipedia,
		ShowDirection:    st.ShowDirection,
		InitialDirection: st.InitialDirection,
		Language:         st.Language,
		MapType:          st.MapType,
		Viewport: geo.Viewport{
			Center: core.LatLng{Lat: st.Latitude, Lng: st.Longitude},
			Zoom:   st.Zoom,
			Size:   size,
		},
	}
	for _, id := range st.ImageIDs {
		// ParseStartup already dropped duplicates
		_ = s.Store.Add(store.NewRecord(id))
	}
	s.imageCount.Store(int64(s.Store.Size()))
	return s
}

// SetActive makes rec the active image. A record that is not in the store
// is ignored so that Active is always nil or a stored record.
func (s *State) SetActive(rec *store.ImageRecord) {
	if rec != nil {
		if stored, ok := s.Store.GetByID(rec.ID); !ok || stored != rec {
			return
		}
	}
	s.Active = rec
	if rec == nil {
		s.activeID.Store(0)
		return
	}
	s.activeID.Store(int64(rec.ID))
}

// Forget clears Active when it points at a record that left the store.
func (s *State) Forget(id int) {
	if s.Active != nil && s.Active.ID == id {
		s.SetActive(nil)
	}
	s.imageCount.Store(int64(s.Store.Size()))
}

// LogAttrs returns the attributes attached to every log record.
func (s *State) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int64("activeImage", s.activeID.Load()),
		slog.Int64("images", s.imageCount.Load()),
	}
}
