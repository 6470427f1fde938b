package logging

import (
	"context"
	"errors"
	"log/slog"
)

// ContextProvider returns attributes describing the current map state. It is
// called once per record, from any goroutine.
type ContextProvider func() []slog.Attr

// stateGroup is the group the provider's attributes are logged under.
const stateGroup = "map"

// stateHandler appends the provider's attributes to every record, grouped
// under "map" so they never collide with call-site keys.
type stateHandler struct {
	next     slog.Handler
	provider ContextProvider
}

func (h *stateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *stateHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := h.provider(); len(attrs) > 0 {
		args := make([]any, len(attrs))
		for i, a := range attrs {
			args[i] = a
		}
		r.AddAttrs(slog.Group(stateGroup, args...))
	}
	return h.next.Handle(ctx, r)
}

func (h *stateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stateHandler{next: h.next.WithAttrs(attrs), provider: h.provider}
}

func (h *stateHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &stateHandler{next: h.next.WithGroup(name), provider: h.provider}
}

// fanout sends every record to all of its handlers. A failing handler does
// not keep the record from the others; the failures are joined.
type fanout []slog.Handler

func newFanout(handlers ...slog.Handler) fanout {
	out := make(fanout, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
