package store

import (
	"math"

	"github.com/fibs-geotag/mapsync/pkg/core"
)

// State is the marker lifecycle of one image.
type State int

const (
	// Unpositioned records have no metadata yet and nothing on the map.
	Unpositioned State = iota
	Positioned
	Dragging
)

func (s State) String() string {
	switch s {
	case Unpositioned:
		return "unpositioned"
	case Positioned:
		return "positioned"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// NoDirection marks an image without a known bearing.
const NoDirection = -1.0

// ImageRecord is the client-side state of one image.
type ImageRecord struct {
	ID           int
	Filename     string
	Width        int
	Height       int
	HasThumbnail bool
	Latitude     float64
	Longitude    float64
	Direction    float64

	LocationMarker  core.OverlayID
	DirectionMarker core.OverlayID
	DirectionLine   core.OverlayID
	State           State
}

// NewRecord returns an unpositioned record for id.
func NewRecord(id int) *ImageRecord {
	return &ImageRecord{
		ID:        id,
		Latitude:  math.NaN(),
		Longitude: math.NaN(),
		Direction: NoDirection,
	}
}

// HasDirection reports whether the record carries a usable bearing.
func (r *ImageRecord) HasDirection() bool {
	return r.Direction >= 0
}

// Location returns the image coordinate.
func (r *ImageRecord) Location() core.LatLng {
	return core.LatLng{Lat: r.Latitude, Lng: r.Longitude}
}

// Apply copies server metadata onto the record.
func (r *ImageRecord) Apply(info core.ImageInfo) {
	r.Filename = info.Name
	r.Width = info.Width
	r.Height = info.Height
	r.HasThumbnail = info.Width != 0 && info.Height != 0
	r.Latitude = info.Latitude
	r.Longitude = info.Longitude
	r.Direction = info.Direction
}
