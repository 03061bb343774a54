package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler is a slog.Handler whose destination can be replaced at
// runtime. Handlers derived from it through WithAttrs and WithGroup share the
// same destination, so loggers built before a Swap, such as the per-batch
// loggers of an extraction, follow it afterwards.
type SwappableHandler struct {
	root *atomic.Pointer[slog.Handler]

	// ops replays the WithAttrs and WithGroup calls on top of the root.
	ops []func(slog.Handler) slog.Handler

	// cache holds ops applied to the root it was built from.
	cache atomic.Pointer[derivedHandler]
}

type derivedHandler struct {
	base    *slog.Handler
	handler slog.Handler
}

// NewSwappableHandler creates a handler that writes to initial until swapped.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	root := new(atomic.Pointer[slog.Handler])
	root.Store(&initial)
	return &SwappableHandler{root: root}
}

// Swap replaces the destination of this handler and of every handler
// derived from the same root.
func (sh *SwappableHandler) Swap(newHandler slog.Handler) {
	sh.root.Store(&newHandler)
}

func (sh *SwappableHandler) current() slog.Handler {
	base := sh.root.Load()
	if len(sh.ops) == 0 {
		return *base
	}

	if d := sh.cache.Load(); d != nil && d.base == base {
		return d.handler
	}

	h := *base
	for _, op := range sh.ops {
		h = op(h)
	}
	sh.cache.Store(&derivedHandler{base: base, handler: h})

	return h
}

// Enabled reports whether the handler handles records at the given level.
func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

// Handle handles the Record.
func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

// WithAttrs returns a handler with the given attributes that still follows
// swaps of sh.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return sh
	}
	return sh.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup returns a handler with the given group that still follows swaps
// of sh.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return sh
	}
	return sh.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) derive(op func(slog.Handler) slog.Handler) *SwappableHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(sh.ops), len(sh.ops)+1)
	copy(ops, sh.ops)
	return &SwappableHandler{root: sh.root, ops: append(ops, op)}
}
