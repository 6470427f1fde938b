package geo

import (
	"fmt"

	"github.com/fibs-geotag/mapsync/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// TrackLineString builds a lng/lat line string from a recorded track.
// Tracks with fewer than 2 points cannot be drawn and are rejected.
func TrackLineString(t core.Track) (geom.LineString, error) {
	if len(t.Points) < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 points, got %d", len(t.Points))
	}

	flatCoords := make([]float64, 0, len(t.Points)*2)
	for _, p := range t.Points {
		flatCoords = append(flatCoords, p.Lng, p.Lat)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("invalid track: %w", err)
	}
	return ls, nil
}

// LineStringPoints turns a lng/lat line string back into map coordinates.
func LineStringPoints(ls geom.LineString) []core.LatLng {
	seq := ls.Coordinates()
	points := make([]core.LatLng, seq.Length())
	for i := range points {
		xy := seq.GetXY(i)
		points[i] = core.LatLng{Lat: xy.Y, Lng: xy.X}
	}
	return points
}
