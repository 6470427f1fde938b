package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fibs-geotag/mapsync/internal/queue"
	"github.com/fibs-geotag/mapsync/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Journal receives a copy of every request after it was sent.
type Journal interface {
	RecordRequest(r *core.RequestRecord) error
}

// Telemetry receives one measurement per request.
type Telemetry interface {
	WriteRequest(r *core.RequestRecord) error
}

// SinkOption configures an AsyncSink.
type SinkOption func(*AsyncSink)

// WithJournal records every sent request in j.
func WithJournal(j Journal) SinkOption {
	return func(s *AsyncSink) { s.journal = j }
}

// WithTelemetry reports every sent request to t.
func WithTelemetry(t Telemetry) SinkOption {
	return func(s *AsyncSink) { s.telemetry = t }
}

// WithLogger sets the sink logger.
func WithLogger(l *slog.Logger) SinkOption {
	return func(s *AsyncSink) { s.logger = l }
}

type request struct {
	kind    string
	imageID int
	path    string
	query   string
}

// AsyncSink sends update and settings requests from one background
// goroutine, in the order they were queued. Callers never wait and never see
// a failure; failures are logged and counted only.
type AsyncSink struct {
	client    *Client
	queue     *queue.Queue[request]
	logger    *slog.Logger
	journal   Journal
	telemetry Telemetry

	sent   metric.Int64Counter
	failed metric.Int64Counter

	stop     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewAsyncSink creates a sink around client. Start must be called before
// requests are delivered.
func NewAsyncSink(client *Client, opts ...SinkOption) (*AsyncSink, error) {
	s := &AsyncSink{
		client: client,
		queue:  queue.New[request](),
		logger: slog.Default(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	m := meter()
	var err error
	s.sent, err = m.Int64Counter(
		"feed.requests.sent",
		metric.WithDescription("Fire-and-forget requests answered with 2xx"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sent counter: %w", err)
	}
	s.failed, err = m.Int64Counter(
		"feed.requests.failed",
		metric.WithDescription("Fire-and-forget requests that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	_, err = m.Int64ObservableGauge(
		"feed.queue.size",
		metric.WithDescription("Requests waiting to be sent"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(s.queue.Len()))
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue gauge: %w", err)
	}

	return s, nil
}

// Start launches the sender goroutine.
func (s *AsyncSink) Start() {
	if s.started.CompareAndSwap(false, true) {
		go s.loop()
	}
}

// SendUpdate queues a geotag update.
func (s *AsyncSink) SendUpdate(u core.GeotagUpdate) {
	path, q := UpdateRequest(u)
	s.queue.Push(request{kind: core.RequestUpdate, imageID: u.ImageID, path: path, query: q})
}

// SetSetting queues a settings request.
func (s *AsyncSink) SetSetting(setting core.Setting) {
	path, q := SettingRequest(setting)
	s.queue.Push(request{kind: core.RequestSetting, path: path, query: q})
}

// Pending returns the number of queued requests.
func (s *AsyncSink) Pending() int {
	return s.queue.Len()
}

// Close sends whatever is still queued and stops the goroutine. It is a
// no-op on a sink that was never started.
func (s *AsyncSink) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	if s.started.Load() {
		<-s.done
	}
}

func (s *AsyncSink) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.queue.Ready():
			s.drain()
		case <-s.stop:
			s.drain()
			return
		}
	}
}

func (s *AsyncSink) drain() {
	for {
		r, ok := s.queue.Pop()
		if !ok {
			return
		}
		s.send(r)
	}
}

func (s *AsyncSink) send(r request) {
	start := time.Now()
	_, err := s.client.get(context.Background(), r.path, r.query)

	rec := &core.RequestRecord{
		Kind:     r.kind,
		ImageID:  r.imageID,
		Path:     r.path,
		Query:    r.query,
		OK:       err == nil,
		Duration: time.Since(start),
		SentAt:   start,
	}
	kindAttr := metric.WithAttributes(attribute.String("kind", r.kind))
	if err != nil {
		rec.Error = err.Error()
		s.failed.Add(context.Background(), 1, kindAttr)
		s.logger.Debug("Request failed", "kind", r.kind, "path", r.path, "query", r.query, "error", err)
	} else {
		s.sent.Add(context.Background(), 1, kindAttr)
	}

	if s.journal != nil {
		if jerr := s.journal.RecordRequest(rec); jerr != nil {
			s.logger.Warn("Failed to journal request", "kind", r.kind, "error", jerr)
		}
	}
	if s.telemetry != nil {
		if terr := s.telemetry.WriteRequest(rec); terr != nil {
			s.logger.Debug("Failed to write request telemetry", "kind", r.kind, "error", terr)
		}
	}
}
