// Package render defines the map capability the sync core draws through.
package render

import "github.com/fibs-geotag/mapsync/pkg/core"

// Renderer is the capability interface of an interactive map. Overlay IDs are
// allocated by the renderer and are never zero.
type Renderer interface {
	RenderMarker(spec core.MarkerSpec) core.OverlayID
	MoveMarker(id core.OverlayID, pos core.LatLng)
	DrawLine(spec core.LineSpec) core.OverlayID
	RemoveOverlay(id core.OverlayID)
	SetVisible(id core.OverlayID, visible bool)
	ClosePopup()
	PanTo(pos core.LatLng)
	FitView(center core.LatLng, zoom int)
	SetTitle(title string)
}
