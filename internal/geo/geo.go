package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/fibs-geotag/mapsync/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// ErrInvalidCoordinates is returned for coordinates that are not finite.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// ErrEmptyPoints is returned when a bounding box is requested for no points.
var ErrEmptyPoints = errors.New("no points provided")

const (
	coordinateScale = 1e7
	// bearings this close to 360 are reported as 0
	wrapEpsilon = 1e-9
)

// BearingFromDelta converts a pixel vector into a compass bearing in [0,360).
// Pixel space has y growing downwards, so (0,-1) is north and (1,0) is east.
func BearingFromDelta(dx, dy float64) float64 {
	theta := math.Mod(math.Atan2(dy, dx)+2.5*math.Pi, 2*math.Pi)
	deg := theta * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360-wrapEpsilon {
		deg = 0
	}
	return deg
}

// RoundCoordinate rounds a degree value to 7 decimal digits.
func RoundCoordinate(v float64) float64 {
	return math.Round(v*coordinateScale) / coordinateScale
}

// FormatCoordinate renders a rounded coordinate in its shortest decimal form.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(RoundCoordinate(v), 'f', -1, 64)
}

// BoundingBoxOf returns the smallest rectangle enclosing all points.
func BoundingBoxOf(points []core.LatLng) (core.Bounds, error) {
	if len(points) == 0 {
		return core.Bounds{}, ErrEmptyPoints
	}
	var env geom.Envelope
	for _, p := range points {
		var err error
		env, err = env.ExtendToIncludeXY(geom.XY{X: p.Lng, Y: p.Lat})
		if err != nil {
			return core.Bounds{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
		}
	}
	lo, hi, ok := env.MinMaxXYs()
	if !ok {
		return core.Bounds{}, ErrEmptyPoints
	}
	return core.Bounds{South: lo.Y, West: lo.X, North: hi.Y, East: hi.X}, nil
}

// Coords3857From4326 converts a WGS84 longitude/latitude to a Web-Mercator point.
func Coords3857From4326(
	longitude float64,
	latitude float64,
) (
	point geom.Point,
	err error,
) {
	var x, y float64
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ = f(longitude, latitude, 0)
	if math.IsNaN(x) || math.IsNaN(y) {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	point, err = geom.NewPoint(
		geom.Coordinates{
			XY: geom.XY{X: x, Y: y},
		},
	)
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY), fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return point, nil
}

// Coords4326From3857 converts Web-Mercator meters back to WGS84 degrees.
func Coords4326From3857(x, y float64) core.LatLng {
	f := wgs84.EPSG().Transform(3857, 4326)
	lng, lat, _ := f(x, y, 0)
	return core.LatLng{Lat: lat, Lng: lng}
}
