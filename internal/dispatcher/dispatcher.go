// Package dispatcher routes UI and network events to handlers. Handlers
// registered with Serial share one loop goroutine, which is the only
// goroutine allowed to touch the map state.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LoopSize is the capacity of the serial loop queue.
const LoopSize = 256

// ErrClosed is returned by Dispatch and Wait after Close.
var ErrClosed = errors.New("dispatcher closed")

// Event is one input for a handler: a gesture from the map page, a key
// press, or the completion of a network request.
type Event struct {
	Command   string
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	blocking bool
	logged   bool
	serial   bool
}

// Serial runs the handler on the shared loop goroutine. Events of all serial
// handlers are processed one at a time in dispatch order.
func Serial() Option {
	return func(c *config) {
		c.serial = true
	}
}

// Blocking makes a serial handler block when the loop queue is full instead
// of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

type loopItem struct {
	run  func()
	done chan struct{}
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	// OTEL metrics
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter

	mu sync.RWMutex

	loop      chan loopItem
	quit      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// New creates a new Dispatcher with the given logger and starts its loop.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
		loop:     make(chan loopItem, LoopSize),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	// Get meter from global OTel provider (returns no-op if not configured)
	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of events in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(d.queueSize, int64(len(d.loop)),
				metric.WithAttributes(attribute.String("command", "loop")))
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	go d.runLoop()

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.serial {
		handler = d.withLoop(command, cfg.blocking, handler)
	}

	if cfg.logged {
		handler = d.withLogging(command, handler)
	}

	d.mu.Lock()
	d.handlers[command] = handler
	d.mu.Unlock()
}

// Dispatch routes an event to its registered handler. A zero Timestamp is
// set to now.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.mu.RLock()
	h, ok := d.handlers[e.Command]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(e)
}

// Post dispatches an event and drops the result. Failures are logged.
func (d *Dispatcher) Post(command string, payload any) {
	if _, err := d.Dispatch(Event{Command: command, Payload: payload}); err != nil {
		d.logger.Error("post failed", "command", command, "error", err)
	}
}

// Wait blocks until every serial event dispatched before the call has been
// handled.
func (d *Dispatcher) Wait() error {
	done := make(chan struct{})
	select {
	case d.loop <- loopItem{run: func() {}, done: done}:
	case <-d.quit:
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-d.loopDone:
		return ErrClosed
	}
}

// Close stops the loop after the events already queued have been handled.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.quit)
	})
	<-d.loopDone
}

func (d *Dispatcher) runLoop() {
	defer close(d.loopDone)
	for {
		select {
		case item := <-d.loop:
			d.runItem(item)
		case <-d.quit:
			for {
				select {
				case item := <-d.loop:
					d.runItem(item)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) runItem(item loopItem) {
	item.run()
	if item.done != nil {
		close(item.done)
	}
}

func (d *Dispatcher) withLoop(command string, blocking bool, h HandlerFunc) HandlerFunc {
	cmdAttr := attribute.String("command", command)

	return func(e Event) (any, error) {
		item := loopItem{run: func() {
			if _, err := h(e); err != nil {
				d.logger.Error("handler failed", "command", command, "error", err)
			}
			d.processed.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
		}}

		select {
		case <-d.quit:
			return nil, ErrClosed
		default:
		}

		if blocking {
			select {
			case d.loop <- item:
				return "queued", nil
			case <-d.quit:
				return nil, ErrClosed
			}
		}

		select {
		case d.loop <- item:
			return "queued", nil
		default:
			d.dropped.Add(context.Background(), 1, metric.WithAttributes(cmdAttr))
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "payload", fmt.Sprintf("%T", e.Payload))

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}
