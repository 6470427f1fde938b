package core

// ImageInfo is one image entry as reported by the geotag server.
// Direction is -1 when the image has no known bearing.
type ImageInfo struct {
	ID        int
	Name      string
	Width     int
	Height    int
	Latitude  float64
	Longitude float64
	Direction float64
}

// GeotagUpdate is the new position of an image after a drag.
// Direction is nil when the bearing is not being edited.
type GeotagUpdate struct {
	ImageID   int      `json:"imageId"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Direction *float64 `json:"direction,omitempty"`
}

// Track is one recorded GPS track.
type Track struct {
	Points []LatLng `json:"points"`
}

// NearbyEntry is a point of interest returned by the geonames proxy.
type NearbyEntry struct {
	Title     string  `json:"title"`
	Summary   string  `json:"summary"`
	URL       string  `json:"url"`
	Thumbnail string  `json:"thumbnail"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Position returns the entry coordinate.
func (e NearbyEntry) Position() LatLng {
	return LatLng{Lat: e.Lat, Lng: e.Lng}
}
