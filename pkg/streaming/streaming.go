// Package streaming defines the JSON messages exchanged with the map page
// bridge over WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/fibs-geotag/mapsync/pkg/core"
)

// Outbound message types: overlay operations sent to the map page.
const (
	TypeHello         = "hello"
	TypeReset         = "reset"
	TypeAddMarker     = "add_marker"
	TypeMoveMarker    = "move_marker"
	TypeAddLine       = "add_line"
	TypeRemoveOverlay = "remove_overlay"
	TypeSetVisible    = "set_visible"
	TypeClosePopup    = "close_popup"
	TypePanTo         = "pan_to"
	TypeFitView       = "fit_view"
	TypeSetTitle      = "set_title"
)

// Inbound message types: UI events reported by the map page.
const (
	TypeDragStart      = "drag_start"
	TypeDragEnd        = "drag_end"
	TypeKey            = "key"
	TypeClick          = "click"
	TypeMenu           = "menu"
	TypeViewChanged    = "view_changed"
	TypeResize         = "resize"
	TypeZoomChanged    = "zoom_changed"
	TypeMapTypeChanged = "maptype_changed"
	TypeAck            = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AckMessage is the page's acknowledgement of the hello message.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`
}

// HelloPayload opens a session and is replayed after every reconnect.
type HelloPayload struct {
	AppName string `json:"appName"`
	MapType string `json:"mapType"`
}

// MarkerPayload creates a marker.
type MarkerPayload struct {
	ID     core.OverlayID  `json:"id"`
	Marker core.MarkerSpec `json:"marker"`
}

// MovePayload moves a marker.
type MovePayload struct {
	ID       core.OverlayID `json:"id"`
	Position core.LatLng    `json:"position"`
}

// LinePayload creates a polyline.
type LinePayload struct {
	ID   core.OverlayID `json:"id"`
	Line core.LineSpec  `json:"line"`
}

// OverlayPayload addresses one overlay.
type OverlayPayload struct {
	ID core.OverlayID `json:"id"`
}

// VisiblePayload shows or hides an overlay.
type VisiblePayload struct {
	ID      core.OverlayID `json:"id"`
	Visible bool           `json:"visible"`
}

// PositionPayload carries a single coordinate.
type PositionPayload struct {
	Position core.LatLng `json:"position"`
}

// FitViewPayload recenters and zooms the map.
type FitViewPayload struct {
	Center core.LatLng `json:"center"`
	Zoom   int         `json:"zoom"`
}

// TitlePayload sets the page title.
type TitlePayload struct {
	Title string `json:"title"`
}

// DragPayload reports a drag gesture on a marker. Position is only set on
// drag_end.
type DragPayload struct {
	ID       core.OverlayID `json:"id"`
	Position core.LatLng    `json:"position"`
}

// KeyPayload reports a key press.
type KeyPayload struct {
	Key string `json:"key"`
}

// MenuPayload reports a menu item click.
type MenuPayload struct {
	Item string `json:"item"`
}

// ViewPayload reports the visible map area after a move or load.
type ViewPayload struct {
	Center core.LatLng `json:"center"`
	Zoom   int         `json:"zoom"`
	Size   core.Size   `json:"size"`
}

// ResizePayload reports a new viewport size.
type ResizePayload struct {
	Size core.Size `json:"size"`
}

// ZoomPayload reports the zoom after a zoom gesture.
type ZoomPayload struct {
	Zoom int `json:"zoom"`
}

// MapTypePayload reports a base layer change.
type MapTypePayload struct {
	MapType string `json:"mapType"`
}
