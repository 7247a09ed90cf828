package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Closer allows flushing and stopping the async handler.
type Closer interface {
	Close()
}

// nopCloser is a no-op Closer for synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// asyncCore holds the queue state shared by an AsyncHandler and every
// handler derived from it via WithAttrs or WithGroup.
type asyncCore struct {
	queue   chan slog.Record
	workers sync.WaitGroup
	dropped atomic.Int64
}

// AsyncHandler decouples log emission from log writing with a bounded
// queue. When the queue is full the record is dropped rather than
// blocking the caller.
type AsyncHandler struct {
	inner slog.Handler
	core  *asyncCore
}

// NewAsyncHandler wraps inner with a queue of the given capacity
// drained by the given number of workers.
func NewAsyncHandler(inner slog.Handler, capacity, workers int) *AsyncHandler {
	core := &asyncCore{queue: make(chan slog.Record, capacity)}
	h := &AsyncHandler{inner: inner, core: core}

	core.workers.Add(workers)
	for range workers {
		go func() {
			defer core.workers.Done()
			for rec := range core.queue {
				_ = inner.Handle(context.Background(), rec)
			}
		}()
	}
	return h
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it if the queue is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.core.queue <- rec:
	default:
		h.core.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing this handler's queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), core: h.core}
}

// WithGroup returns a handler sharing this handler's queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), core: h.core}
}

// DroppedCount returns the number of records dropped due to a full queue.
func (h *AsyncHandler) DroppedCount() int64 {
	return h.core.dropped.Load()
}

// Close stops accepting records and blocks until the queue is drained.
func (h *AsyncHandler) Close() {
	close(h.core.queue)
	h.core.workers.Wait()
}
