package core

// OverlayID identifies a marker or line owned by a renderer. Zero means
// "not created".
type OverlayID uint64

// Icon names a marker image known to the map page.
type Icon string

const (
	IconDefault   Icon = "default"
	IconCamera    Icon = "camera"
	IconWikipedia Icon = "wikipedia"
)

// MarkerRole tells which part of an image an overlay represents.
type MarkerRole int

const (
	RoleNone MarkerRole = iota
	RoleLocation
	RoleDirection
	RoleLine
	RoleTrack
	RoleNearby
)

func (r MarkerRole) String() string {
	switch r {
	case RoleLocation:
		return "location"
	case RoleDirection:
		return "direction"
	case RoleLine:
		return "line"
	case RoleTrack:
		return "track"
	case RoleNearby:
		return "nearby"
	default:
		return "none"
	}
}

// MarkerSpec describes a marker to be rendered.
type MarkerSpec struct {
	Position  LatLng `json:"position"`
	Icon      Icon   `json:"icon"`
	Draggable bool   `json:"draggable"`
	Visible   bool   `json:"visible"`
	PopupHTML string `json:"popupHtml,omitempty"`
}

// LineSpec describes a polyline to be rendered.
type LineSpec struct {
	Points  []LatLng `json:"points"`
	Color   string   `json:"color"`
	Weight  int      `json:"weight"`
	Opacity float64  `json:"opacity"`
	Visible bool     `json:"visible"`
}
