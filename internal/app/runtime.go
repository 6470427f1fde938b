package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fibs-geotag/mapsync/internal/config"
	"github.com/fibs-geotag/mapsync/internal/dispatcher"
	"github.com/fibs-geotag/mapsync/internal/geo"
	"github.com/fibs-geotag/mapsync/internal/markersync"
	"github.com/fibs-geotag/mapsync/internal/monitor"
	"github.com/fibs-geotag/mapsync/internal/render"
	"github.com/fibs-geotag/mapsync/pkg/core"
	"github.com/fibs-geotag/mapsync/pkg/streaming"
)

// Loop commands that do not come from the map page.
const (
	CmdStart            = "start"
	CmdImageInfosLoaded = "image_infos_loaded"
	CmdTracksLoaded     = "tracks_loaded"
	CmdNearbyLoaded     = "nearby_loaded"
	CmdStatus           = "status"
	CmdRemoveImage      = "remove_image"
)

// DefaultFetchTimeout bounds a single metadata, track or nearby fetch.
const DefaultFetchTimeout = 30 * time.Second

// ErrPayload is returned by a handler that got the wrong payload type.
var ErrPayload = errors.New("unexpected payload")

// Fetcher reads data from the geotag server.
type Fetcher interface {
	FetchImageInfos(ctx context.Context, ids []int) ([]core.ImageInfo, error)
	FetchTracks(ctx context.Context, b core.Bounds, size core.Size) ([]core.Track, error)
	FetchNearby(ctx context.Context, b core.Bounds, lang string) ([]core.NearbyEntry, error)
}

// Dependencies holds everything the runtime wires together.
type Dependencies struct {
	Startup      config.Startup
	Size         core.Size
	Labels       config.Labels
	AppName      string
	Renderer     render.Renderer
	Fetcher      Fetcher
	Updates      markersync.UpdateSink
	Settings     SettingsSink
	Dispatcher   *dispatcher.Dispatcher
	Logger       *slog.Logger
	FetchTimeout time.Duration
	// Pending reports queued outbound requests for status snapshots.
	Pending func() int
	// OnStatus receives the snapshot built for a status event.
	OnStatus func(monitor.Status)
}

type imageInfosResult struct {
	infos []core.ImageInfo
	err   error
}

type tracksResult struct {
	tracks []core.Track
	err    error
}

type nearbyResult struct {
	entries []core.NearbyEntry
	err     error
}

// Runtime runs the controller on the dispatcher loop and performs fetches
// on their own goroutines. Fetch results are applied in the order they
// arrive; a slow response can overwrite a newer one.
type Runtime struct {
	deps       Dependencies
	state      *State
	controller *Controller
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	idle     *sync.Cond
	inflight int
}

// NewRuntime builds the state, syncer and controller and registers the
// loop handlers.
func NewRuntime(deps Dependencies) (*Runtime, error) {
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("runtime needs a dispatcher")
	}
	if deps.Renderer == nil || deps.Fetcher == nil || deps.Updates == nil || deps.Settings == nil {
		return nil, fmt.Errorf("runtime needs a renderer, fetcher, update sink and settings sink")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = DefaultFetchTimeout
	}

	state := NewState(deps.Startup, deps.Size)
	syncer := markersync.New(state.Store, deps.Renderer, deps.Updates, state, markersync.Config{
		ShowDirection: state.ShowDirection,
		AppName:       deps.AppName,
	}, deps.Logger)

	r := &Runtime{
		deps:       deps,
		state:      state,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
	r.idle = sync.NewCond(&r.mu)
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.controller = NewController(state, syncer, deps.Renderer, deps.Settings, r, deps.Labels, deps.Logger)
	r.registerHandlers()
	return r, nil
}

// State returns the application state. Only read it from loop handlers or
// after Sync.
func (r *Runtime) State() *State {
	return r.state
}

// Controller returns the controller.
func (r *Runtime) Controller() *Controller {
	return r.controller
}

// Start queues the start event.
func (r *Runtime) Start() {
	r.Post(CmdStart, nil)
}

// Post queues an event for the loop.
func (r *Runtime) Post(command string, payload any) {
	r.dispatcher.Post(command, payload)
}

// Sync blocks until no fetch is in flight and the loop has handled every
// queued event.
func (r *Runtime) Sync() error {
	for {
		r.waitIdle()
		if err := r.dispatcher.Wait(); err != nil {
			return err
		}
		r.mu.Lock()
		n := r.inflight
		r.mu.Unlock()
		if n == 0 {
			return nil
		}
	}
}

// Close cancels running fetches and waits for their goroutines.
func (r *Runtime) Close() {
	r.cancel()
	r.waitIdle()
}

// LoadImageInfos fetches metadata for ids in the background.
func (r *Runtime) LoadImageInfos(ids []int) {
	r.spawn(func(ctx context.Context) {
		infos, err := r.deps.Fetcher.FetchImageInfos(ctx, ids)
		r.Post(CmdImageInfosLoaded, imageInfosResult{infos: infos, err: err})
	})
}

// LoadTracks fetches the tracks inside b in the background.
func (r *Runtime) LoadTracks(b core.Bounds, size core.Size) {
	r.spawn(func(ctx context.Context) {
		tracks, err := r.deps.Fetcher.FetchTracks(ctx, b, size)
		r.Post(CmdTracksLoaded, tracksResult{tracks: tracks, err: err})
	})
}

// LoadNearby fetches the Wikipedia entries inside b in the background.
func (r *Runtime) LoadNearby(b core.Bounds, lang string) {
	r.spawn(func(ctx context.Context) {
		entries, err := r.deps.Fetcher.FetchNearby(ctx, b, lang)
		r.Post(CmdNearbyLoaded, nearbyResult{entries: entries, err: err})
	})
}

func (r *Runtime) spawn(fetch func(ctx context.Context)) {
	r.mu.Lock()
	r.inflight++
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			r.inflight--
			if r.inflight == 0 {
				r.idle.Broadcast()
			}
			r.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(r.ctx, r.deps.FetchTimeout)
		defer cancel()
		fetch(ctx)
	}()
}

func (r *Runtime) waitIdle() {
	r.mu.Lock()
	for r.inflight > 0 {
		r.idle.Wait()
	}
	r.mu.Unlock()
}

func (r *Runtime) registerHandlers() {
	d := r.dispatcher
	c := r.controller

	// completions must not be dropped
	d.Register(CmdStart, func(dispatcher.Event) (any, error) {
		c.Start()
		return nil, nil
	}, dispatcher.Serial(), dispatcher.Blocking())

	d.Register(CmdImageInfosLoaded, func(e dispatcher.Event) (any, error) {
		res, ok := e.Payload.(imageInfosResult)
		if !ok {
			return nil, payloadError(e)
		}
		c.ApplyImageInfos(res.infos, res.err)
		return nil, nil
	}, dispatcher.Serial(), dispatcher.Blocking())

	d.Register(CmdTracksLoaded, func(e dispatcher.Event) (any, error) {
		res, ok := e.Payload.(tracksResult)
		if !ok {
			return nil, payloadError(e)
		}
		c.ApplyTracks(res.tracks, res.err)
		return nil, nil
	}, dispatcher.Serial(), dispatcher.Blocking())

	d.Register(CmdNearbyLoaded, func(e dispatcher.Event) (any, error) {
		res, ok := e.Payload.(nearbyResult)
		if !ok {
			return nil, payloadError(e)
		}
		c.ApplyNearby(res.entries, res.err)
		return nil, nil
	}, dispatcher.Serial(), dispatcher.Blocking())

	d.Register(CmdStatus, func(dispatcher.Event) (any, error) {
		st := r.status()
		if r.deps.OnStatus != nil {
			r.deps.OnStatus(st)
		}
		return st, nil
	}, dispatcher.Serial())

	d.Register(CmdRemoveImage, func(e dispatcher.Event) (any, error) {
		id, ok := e.Payload.(int)
		if !ok {
			return nil, payloadError(e)
		}
		c.RemoveImage(id)
		return nil, nil
	}, dispatcher.Serial())

	r.registerPageHandlers()
}

// registerPageHandlers binds the events reported by the map page.
func (r *Runtime) registerPageHandlers() {
	d := r.dispatcher
	c := r.controller

	d.Register(streaming.TypeDragStart, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.DragPayload)
		if !ok {
			return nil, payloadError(e)
		}
		c.DragStart(p.ID)
		return nil, nil
	}, dispatcher.Serial(), dispatcher.Logged())

	d.Register(streaming.TypeDragEnd, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.DragPayload)
		if !ok {
			return nil, payloadError(e)
		}
		c.DragEnd(p.ID, p.Position)
		return nil, nil
	}, dispatcher.Serial(), dispatcher.Logged())

	d.Register(streaming.TypeKey, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.KeyPayload)
		if !ok {
			return nil, payloadError(e)
		}
		key, _ := utf8.DecodeRuneInString(p.Key)
		if key == utf8.RuneError {
			return nil, nil
		}
		c.HandleKey(key)
		return nil, nil
	}, dispatcher.Serial())

	d.Register(streaming.TypeClick, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.OverlayPayload)
		if !ok {
			return nil, payloadError(e)
		}
		c.Click(p.ID)
		return nil, nil
	}, dispatcher.Serial())

	d.Register(streaming.TypeMenu, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.MenuPayload)
		if !ok {
			return nil, payloadError(e)
		}
		c.MenuClicked(p.Item)
		return nil, nil
	}, dispatcher.Serial())

	d.Register(streaming.TypeViewChanged, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.ViewPayload)
		if !ok {
			return nil, payloadError(e)
		}
		c.ViewChanged(geo.Viewport{Center: p.Center, Zoom: p.Zoom, Size: p.Size})
		return nil, nil
	}, dispatcher.Serial())

	d.Register(streaming.TypeResize, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.ResizePayload)
		if !ok {
			return nil, payloadError(e)
		}
		c.Resize(p.Size)
		return nil, nil
	}, dispatcher.Serial())

	d.Register(streaming.TypeZoomChanged, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.ZoomPayload)
		if !ok {
			return nil, payloadError(e)
		}
		c.ZoomChanged(p.Zoom)
		return nil, nil
	}, dispatcher.Serial())

	d.Register(streaming.TypeMapTypeChanged, func(e dispatcher.Event) (any, error) {
		p, ok := e.Payload.(streaming.MapTypePayload)
		if !ok {
			return nil, payloadError(e)
		}
		c.MapTypeChanged(p.MapType)
		return nil, nil
	}, dispatcher.Serial())
}

func (r *Runtime) status() monitor.Status {
	syncer := r.controller.Syncer()
	st := monitor.Status{
		Time:       time.Now(),
		Images:     r.state.Store.Size(),
		Positioned: syncer.PositionedCount(),
		Tracks:     syncer.TrackCount(),
		Nearby:     syncer.NearbyCount(),
		Overlays:   syncer.Index().Len(),
	}
	if r.state.Active != nil {
		st.ActiveImage = r.state.Active.ID
	}
	if r.deps.Pending != nil {
		st.PendingRequests = r.deps.Pending()
	}
	return st
}

func payloadError(e dispatcher.Event) error {
	return fmt.Errorf("%w for %s: %T", ErrPayload, e.Command, e.Payload)
}
