package geo

import (
	"math"
	"testing"

	"github.com/fibs-geotag/mapsync/pkg/core"
	"github.com/stretchr/testify/assert"
)

func testViewport() Viewport {
	return Viewport{
		Center: core.LatLng{Lat: 51.5, Lng: 0},
		Zoom:   10,
		Size:   core.Size{Width: 800, Height: 600},
	}
}

func TestViewport_ProjectCenter(t *testing.T) {
	vp := testViewport()
	p := vp.Project(vp.Center)
	assert.InDelta(t, 400, p.X, 1e-6)
	assert.InDelta(t, 300, p.Y, 1e-6)
}

func TestViewport_ProjectOrientation(t *testing.T) {
	vp := testViewport()
	north := vp.Project(core.LatLng{Lat: 51.6, Lng: 0})
	east := vp.Project(core.LatLng{Lat: 51.5, Lng: 0.1})
	assert.Less(t, north.Y, 300.0)
	assert.Greater(t, east.X, 400.0)
}

func TestViewport_UnprojectRoundTrip(t *testing.T) {
	vp := testViewport()
	ll := core.LatLng{Lat: 51.55, Lng: 0.12}
	back := vp.Unproject(vp.Project(ll))
	assert.InDelta(t, ll.Lat, back.Lat, 1e-7)
	assert.InDelta(t, ll.Lng, back.Lng, 1e-7)
}

func TestViewport_Bounds(t *testing.T) {
	vp := testViewport()
	b := vp.Bounds()
	assert.Less(t, b.South, 51.5)
	assert.Greater(t, b.North, 51.5)
	assert.Less(t, b.West, 0.0)
	assert.Greater(t, b.East, 0.0)
	assert.InDelta(t, 0, b.West+b.East, 1e-9)
}

func TestViewport_DirectionRadius(t *testing.T) {
	vp := testViewport()
	assert.Equal(t, 300.0-IconHeight, vp.DirectionRadius())
}

func TestDirectionPoint(t *testing.T) {
	vp := testViewport()
	from := vp.Center
	r := vp.DirectionRadius()

	tests := []struct {
		bearing float64
		dx, dy  float64
	}{
		{0, 0, -r},
		{90, r, 0},
		{180, 0, r},
		{270, -r, 0},
	}
	for _, tt := range tests {
		p := vp.Project(DirectionPoint(vp, from, tt.bearing))
		assert.InDelta(t, 400+tt.dx, p.X, 1e-6, "bearing %v", tt.bearing)
		assert.InDelta(t, 300+tt.dy, p.Y, 1e-6, "bearing %v", tt.bearing)
	}
}

func TestDirectionPoint_BearingRoundTrip(t *testing.T) {
	vp := testViewport()
	from := core.LatLng{Lat: 51.45, Lng: -0.05}
	for _, bearing := range []float64{12.5, 87, 145, 233.25, 301, 359} {
		to := DirectionPoint(vp, from, bearing)
		a, b := vp.Project(from), vp.Project(to)
		assert.InDelta(t, bearing, BearingFromDelta(b.X-a.X, b.Y-a.Y), 1e-6)
	}
}

func TestZoomLevelForBounds(t *testing.T) {
	size := core.Size{Width: 800, Height: 600}

	// a point fits at any zoom
	assert.Equal(t, MaxZoom, ZoomLevelForBounds(core.Bounds{South: 51.5, West: 0, North: 51.5, East: 0}, size))

	// the whole world only fits at the lowest zoom
	small := core.Size{Width: 400, Height: 300}
	assert.Equal(t, MinZoom, ZoomLevelForBounds(core.Bounds{South: -80, West: -180, North: 80, East: 180}, small))

	london := core.Bounds{South: 51.28, West: -0.51, North: 51.69, East: 0.33}
	z := ZoomLevelForBounds(london, size)
	assert.Equal(t, 10, z)

	// the chosen zoom fits, the next one up does not
	vp := Viewport{Center: london.Center(), Zoom: z, Size: size}
	sw, ne := vp.Project(london.SouthWest()), vp.Project(london.NorthEast())
	assert.LessOrEqual(t, ne.X-sw.X+2*FitPadding, float64(size.Width))
	vp.Zoom = z + 1
	sw, ne = vp.Project(london.SouthWest()), vp.Project(london.NorthEast())
	assert.Greater(t, ne.X-sw.X+2*FitPadding, float64(size.Width))
}

func TestZoomLevelForBounds_NaN(t *testing.T) {
	b := core.Bounds{South: math.NaN(), West: 0, North: 1, East: 1}
	assert.Equal(t, MinZoom, ZoomLevelForBounds(b, core.Size{Width: 100, Height: 100}))
}
