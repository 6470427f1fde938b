package markersync

import (
	"fmt"
	"html"
	"strings"

	"github.com/fibs-geotag/mapsync/internal/cache"
	"github.com/fibs-geotag/mapsync/internal/geo"
	"github.com/fibs-geotag/mapsync/internal/store"
	"github.com/fibs-geotag/mapsync/pkg/core"
)

const (
	trackColor   = "#0000FF"
	trackWeight  = 5
	trackOpacity = 0.5
)

// InfoWindowHTML is the popup shown for both markers of an image.
func InfoWindowHTML(rec *store.ImageRecord) string {
	var b strings.Builder
	b.WriteString("<center>")
	if rec.HasThumbnail {
		fmt.Fprintf(&b, `<img src="/images/%d.jpg" width="%d" height="%d"><br>`, rec.ID, rec.Width, rec.Height)
	}
	b.WriteString(html.EscapeString(rec.Filename))
	b.WriteString("</center>")
	return b.String()
}

// NearbyHTML is the popup shown for a point of interest.
func NearbyHTML(e core.NearbyEntry) string {
	return fmt.Sprintf(`<span class='infoWindowStyle'><center>Wikipedia<br><a href="%s">%s</a></center></span>`,
		html.EscapeString(e.URL), html.EscapeString(e.Title))
}

// ReplaceTracks removes all displayed tracks and draws the given ones.
// Tracks with fewer than two points are skipped.
func (s *Syncer) ReplaceTracks(tracks []core.Track) {
	s.ClearTracks()
	for i, t := range tracks {
		ls, err := geo.TrackLineString(t)
		if err != nil {
			s.logger.Debug("skipping track", "index", i, "error", err)
			continue
		}
		id := s.renderer.DrawLine(core.LineSpec{
			Points:  geo.LineStringPoints(ls),
			Color:   trackColor,
			Weight:  trackWeight,
			Opacity: trackOpacity,
			Visible: true,
		})
		s.index.Set(id, cache.OverlayRef{Role: core.RoleTrack})
		s.tracks = append(s.tracks, id)
	}
}

// ClearTracks removes all displayed tracks.
func (s *Syncer) ClearTracks() {
	for _, id := range s.tracks {
		s.removeOverlay(id)
	}
	s.tracks = nil
}

// TrackCount returns the number of displayed tracks.
func (s *Syncer) TrackCount() int {
	return len(s.tracks)
}

// ReplaceNearby removes all displayed points of interest and adds the given ones.
func (s *Syncer) ReplaceNearby(entries []core.NearbyEntry) {
	s.ClearNearby()
	for _, e := range entries {
		id := s.renderer.RenderMarker(core.MarkerSpec{
			Position:  e.Position(),
			Icon:      core.IconWikipedia,
			Draggable: false,
			Visible:   true,
			PopupHTML: NearbyHTML(e),
		})
		s.index.Set(id, cache.OverlayRef{Role: core.RoleNearby})
		s.nearby = append(s.nearby, id)
	}
}

// ClearNearby removes all displayed points of interest.
func (s *Syncer) ClearNearby() {
	for _, id := range s.nearby {
		s.removeOverlay(id)
	}
	s.nearby = nil
}

// NearbyCount returns the number of displayed points of interest.
func (s *Syncer) NearbyCount() int {
	return len(s.nearby)
}
