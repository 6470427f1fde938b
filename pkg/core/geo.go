// Package core holds the plain value types shared between the sync core, the
// feed client and the renderer protocol.
package core

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a lat/lng rectangle.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.South + b.North) / 2,
		Lng: (b.West + b.East) / 2,
	}
}

// SouthWest returns the lower left corner.
func (b Bounds) SouthWest() LatLng { return LatLng{Lat: b.South, Lng: b.West} }

// NorthEast returns the upper right corner.
func (b Bounds) NorthEast() LatLng { return LatLng{Lat: b.North, Lng: b.East} }

// Size is a viewport size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a position in viewport pixel space. Y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
