package geo

import (
	"math"
	"testing"

	"github.com/fibs-geotag/mapsync/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackLineString(t *testing.T) {
	track := core.Track{Points: []core.LatLng{
		{Lat: 51.0, Lng: 0.5},
		{Lat: 51.1, Lng: 0.6},
		{Lat: 51.2, Lng: 0.7},
	}}

	ls, err := TrackLineString(track)
	require.NoError(t, err)
	assert.Equal(t, 3, ls.Coordinates().Length())

	xy := ls.Coordinates().GetXY(0)
	assert.Equal(t, 0.5, xy.X)
	assert.Equal(t, 51.0, xy.Y)

	assert.Equal(t, track.Points, LineStringPoints(ls))
}

func TestTrackLineString_TooShort(t *testing.T) {
	_, err := TrackLineString(core.Track{Points: []core.LatLng{{Lat: 1, Lng: 1}}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 points")

	_, err = TrackLineString(core.Track{})
	assert.Error(t, err)
}

func TestTrackLineString_Invalid(t *testing.T) {
	_, err := TrackLineString(core.Track{Points: []core.LatLng{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}}})
	assert.Error(t, err, "coincident points")

	_, err = TrackLineString(core.Track{Points: []core.LatLng{{Lat: 1, Lng: 1}, {Lat: math.NaN(), Lng: 2}}})
	assert.Error(t, err, "NaN coordinate")
}
