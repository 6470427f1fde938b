// Package websocket is a Renderer that drives the map page over a WebSocket
// bridge. Overlay operations are streamed as JSON envelopes and the page's
// UI events come back on the same connection.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fibs-geotag/mapsync/internal/render"
	"github.com/fibs-geotag/mapsync/pkg/core"
	"github.com/fibs-geotag/mapsync/pkg/streaming"
)

// Config holds WebSocket renderer configuration.
type Config struct {
	URL     string
	Secret  string
	AppName string
	MapType core.MapType
	// ReconnectBackoff is the first reconnect delay. Zero means one second.
	ReconnectBackoff time.Duration
}

// EventSink receives decoded page events. It is called from the read
// goroutine and must not block for long.
type EventSink func(command string, payload any)

// Renderer streams overlay operations to the map page. The overlay table is
// mirrored in a render.Recorder so the page can be rebuilt after a reconnect.
type Renderer struct {
	conn   *connection
	cfg    Config
	table  *render.Recorder
	events EventSink
	logger *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New creates a WebSocket renderer. events may be nil.
func New(cfg Config, events EventSink, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		conn:   newConnection(logger),
		cfg:    cfg,
		table:  render.NewRecorder(),
		events: events,
		logger: logger,
	}
	if cfg.ReconnectBackoff > 0 {
		r.conn.backoff = cfg.ReconnectBackoff
	}
	r.conn.replay = r.replayMessages
	r.conn.inbound = r.handleInbound
	return r
}

// Init connects to the page bridge and waits for the hello ack.
func (r *Renderer) Init() error {
	if err := r.conn.dial(r.cfg.URL, r.cfg.Secret); err != nil {
		return err
	}
	data, err := marshalEnvelope(streaming.TypeHello, r.hello())
	if err != nil {
		return err
	}
	return r.conn.sendAndWait(data, streaming.TypeHello, ackTimeout)
}

// Close disconnects from the page bridge.
func (r *Renderer) Close() error {
	return r.conn.close()
}

// Len returns the number of live overlays.
func (r *Renderer) Len() int {
	return r.table.Len()
}

func (r *Renderer) hello() streaming.HelloPayload {
	return streaming.HelloPayload{AppName: r.cfg.AppName, MapType: string(r.cfg.MapType)}
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	env := streaming.Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (r *Renderer) sendEnvelope(msgType string, payload any) {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		r.logger.Error("Dropping map operation", "type", msgType, "error", err)
		return
	}
	r.conn.send(data)
}

// RenderMarker adds the marker to the local table and sends it to the page.
func (r *Renderer) RenderMarker(spec core.MarkerSpec) core.OverlayID {
	id := r.table.RenderMarker(spec)
	r.sendEnvelope(streaming.TypeAddMarker, streaming.MarkerPayload{ID: id, Marker: spec})
	return id
}

// MoveMarker moves a marker locally and on the page.
func (r *Renderer) MoveMarker(id core.OverlayID, pos core.LatLng) {
	r.table.MoveMarker(id, pos)
	r.sendEnvelope(streaming.TypeMoveMarker, streaming.MovePayload{ID: id, Position: pos})
}

// DrawLine adds the line to the local table and sends it to the page.
func (r *Renderer) DrawLine(spec core.LineSpec) core.OverlayID {
	id := r.table.DrawLine(spec)
	r.sendEnvelope(streaming.TypeAddLine, streaming.LinePayload{ID: id, Line: spec})
	return id
}

// RemoveOverlay removes an overlay locally and on the page.
func (r *Renderer) RemoveOverlay(id core.OverlayID) {
	r.table.RemoveOverlay(id)
	r.sendEnvelope(streaming.TypeRemoveOverlay, streaming.OverlayPayload{ID: id})
}

// SetVisible shows or hides an overlay on the page.
func (r *Renderer) SetVisible(id core.OverlayID, visible bool) {
	r.table.SetVisible(id, visible)
	r.sendEnvelope(streaming.TypeSetVisible, streaming.VisiblePayload{ID: id, Visible: visible})
}

// ClosePopup closes the open popup on the page.
func (r *Renderer) ClosePopup() {
	r.table.ClosePopup()
	r.sendEnvelope(streaming.TypeClosePopup, nil)
}

// PanTo pans the page map to pos.
func (r *Renderer) PanTo(pos core.LatLng) {
	r.table.PanTo(pos)
	r.sendEnvelope(streaming.TypePanTo, streaming.PositionPayload{Position: pos})
}

// FitView centers the page map and sets its zoom.
func (r *Renderer) FitView(center core.LatLng, zoom int) {
	r.table.FitView(center, zoom)
	r.sendEnvelope(streaming.TypeFitView, streaming.FitViewPayload{Center: center, Zoom: zoom})
}

// SetTitle sets the page title.
func (r *Renderer) SetTitle(title string) {
	r.table.SetTitle(title)
	r.sendEnvelope(streaming.TypeSetTitle, streaming.TitlePayload{Title: title})
}

// replayMessages rebuilds the page: hello, reset, every live overlay in
// creation order, then view and title.
func (r *Renderer) replayMessages() [][]byte {
	type op struct {
		msgType string
		payload any
	}
	ops := []op{
		{streaming.TypeHello, r.hello()},
		{streaming.TypeReset, nil},
	}
	for _, o := range r.table.Overlays() {
		switch o.Kind {
		case render.KindMarker:
			ops = append(ops, op{streaming.TypeAddMarker, streaming.MarkerPayload{ID: o.ID, Marker: o.Marker}})
		case render.KindLine:
			ops = append(ops, op{streaming.TypeAddLine, streaming.LinePayload{ID: o.ID, Line: o.Line}})
		}
	}
	ops = append(ops,
		op{streaming.TypeFitView, streaming.FitViewPayload{Center: r.table.Center(), Zoom: r.table.Zoom()}},
		op{streaming.TypeSetTitle, streaming.TitlePayload{Title: r.table.Title()}},
	)

	out := make([][]byte, 0, len(ops))
	for _, o := range ops {
		data, err := marshalEnvelope(o.msgType, o.payload)
		if err != nil {
			r.logger.Error("Skipping replay message", "type", o.msgType, "error", err)
			continue
		}
		out = append(out, data)
	}
	return out
}

func (r *Renderer) handleInbound(env streaming.Envelope) {
	payload, err := DecodeEvent(env)
	if err != nil {
		r.logger.Debug("Ignoring page message", "type", env.Type, "error", err)
		return
	}
	if r.events != nil {
		r.events(env.Type, payload)
	}
}

// DecodeEvent turns an inbound envelope into its typed payload.
func DecodeEvent(env streaming.Envelope) (any, error) {
	switch env.Type {
	case streaming.TypeDragStart, streaming.TypeDragEnd:
		return decode[streaming.DragPayload](env)
	case streaming.TypeKey:
		return decode[streaming.KeyPayload](env)
	case streaming.TypeClick:
		return decode[streaming.OverlayPayload](env)
	case streaming.TypeMenu:
		return decode[streaming.MenuPayload](env)
	case streaming.TypeViewChanged:
		return decode[streaming.ViewPayload](env)
	case streaming.TypeResize:
		return decode[streaming.ResizePayload](env)
	case streaming.TypeZoomChanged:
		return decode[streaming.ZoomPayload](env)
	case streaming.TypeMapTypeChanged:
		return decode[streaming.MapTypePayload](env)
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
}

func decode[T any](env streaming.Envelope) (T, error) {
	var p T
	if len(env.Payload) == 0 {
		return p, fmt.Errorf("%s without payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return p, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return p, nil
}
