package geo

import (
	"math"

	"github.com/fibs-geotag/mapsync/pkg/core"
)

const (
	// TileSize is the edge length of one map tile in pixels.
	TileSize = 256
	MinZoom  = 0
	MaxZoom  = 19
	// FitPadding is kept free on every side when fitting bounds.
	FitPadding = 20
	// IconHeight is the height of the default marker icon.
	IconHeight = 34

	earthRadius = 6378137.0
	// beyond this Web-Mercator is undefined
	maxLatitude = 85.05112878
)

// worldPixel maps a coordinate to the global pixel plane at the given zoom.
func worldPixel(ll core.LatLng, zoom int) (float64, float64) {
	lat := math.Max(-maxLatitude, math.Min(maxLatitude, ll.Lat))
	pt, err := Coords3857From4326(ll.Lng, lat)
	if err != nil {
		return math.NaN(), math.NaN()
	}
	xy, _ := pt.XY()
	world := TileSize * math.Exp2(float64(zoom))
	half := math.Pi * earthRadius
	return (xy.X + half) / (2 * half) * world, (half - xy.Y) / (2 * half) * world
}

func fromWorldPixel(px, py float64, zoom int) core.LatLng {
	world := TileSize * math.Exp2(float64(zoom))
	half := math.Pi * earthRadius
	x := px/world*(2*half) - half
	y := half - py/world*(2*half)
	return Coords4326From3857(x, y)
}

// Viewport is the visible map area: its center, zoom and pixel size.
type Viewport struct {
	Center core.LatLng `json:"center"`
	Zoom   int         `json:"zoom"`
	Size   core.Size   `json:"size"`
}

// Project returns the pixel position of ll relative to the viewport's top-left corner.
func (v Viewport) Project(ll core.LatLng) core.Point {
	wx, wy := worldPixel(ll, v.Zoom)
	cx, cy := worldPixel(v.Center, v.Zoom)
	return core.Point{
		X: wx - cx + float64(v.Size.Width)/2,
		Y: wy - cy + float64(v.Size.Height)/2,
	}
}

// Unproject is the inverse of Project.
func (v Viewport) Unproject(p core.Point) core.LatLng {
	cx, cy := worldPixel(v.Center, v.Zoom)
	wx := p.X - float64(v.Size.Width)/2 + cx
	wy := p.Y - float64(v.Size.Height)/2 + cy
	return fromWorldPixel(wx, wy, v.Zoom)
}

// Bounds returns the coordinate rectangle covered by the viewport.
func (v Viewport) Bounds() core.Bounds {
	nw := v.Unproject(core.Point{})
	se := v.Unproject(core.Point{X: float64(v.Size.Width), Y: float64(v.Size.Height)})
	return core.Bounds{South: se.Lat, West: nw.Lng, North: nw.Lat, East: se.Lng}
}

// DirectionRadius is the pixel distance between a location marker and its
// direction marker.
func (v Viewport) DirectionRadius() float64 {
	return float64(min(v.Size.Width, v.Size.Height))/2 - IconHeight
}

// DirectionPoint returns the coordinate DirectionRadius pixels away from from,
// along the given compass bearing.
func DirectionPoint(vp Viewport, from core.LatLng, bearing float64) core.LatLng {
	c := vp.Project(from)
	r := vp.DirectionRadius()
	theta := (bearing - 90) * math.Pi / 180
	return vp.Unproject(core.Point{
		X: c.X + r*math.Cos(theta),
		Y: c.Y + r*math.Sin(theta),
	})
}

// ZoomLevelForBounds returns the largest zoom at which b, plus FitPadding on
// every side, fits into a viewport of the given size.
func ZoomLevelForBounds(b core.Bounds, size core.Size) int {
	for z := MaxZoom; z > MinZoom; z-- {
		x1, y1 := worldPixel(core.LatLng{Lat: b.North, Lng: b.West}, z)
		x2, y2 := worldPixel(core.LatLng{Lat: b.South, Lng: b.East}, z)
		w := x2 - x1 + 2*FitPadding
		h := y2 - y1 + 2*FitPadding
		if w <= float64(size.Width) && h <= float64(size.Height) {
			return z
		}
	}
	return MinZoom
}
