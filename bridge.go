package slipstream

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrWriterNotRegistered is returned by Send when no writer handle has been
// registered. Sending before registration is a caller error and is never
// treated as a delivered send.
var ErrWriterNotRegistered = errors.New("no writer handle registered")

// ErrWriterClosed is returned by Send when the writer side of the client has
// shut down. A send that fails this way has already raised the stop signal —
// the caller must not assume the client survives it.
var ErrWriterClosed = errors.New("writer handle is closed")

// Bridge connects arbitrarily many sending goroutines to the client's single
// writer goroutine, and gives any of them a way to request shutdown. It holds
// exactly two handles: the writer handle, drained by the writer pump, and the
// stop handle, drained by the stop supervisor. Both are installed exactly once
// at startup and remain valid for the life of the client.
//
// The bridge is an explicit object rather than package state so that every
// caller reaches the same endpoints through injection instead of ambient
// globals. It holds no lock across an enqueue — concurrency safety during
// Send and Kill is the handle's own.
type Bridge struct {
	mu     sync.RWMutex
	writer *Handle
	stop   *StopHandle
	log    zerolog.Logger
}

// NewBridge creates a bridge with no handles registered. Pass zerolog.Nop()
// to silence it.
func NewBridge(log zerolog.Logger) *Bridge {
	return &Bridge{log: log}
}

// RegisterWriter installs the handle feeding the writer goroutine. It must be
// called exactly once, from the initializing goroutine, before any call to
// Send. Registering a second writer handle while sends may be in flight
// against the first is never safe, so re-registration panics.
func (b *Bridge) RegisterWriter(handle *Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writer != nil {
		panic("writer handle already registered")
	}
	b.writer = handle
	b.log.Debug().Str("module", "bridge").Msg("registered writer handle")
}

// RegisterStop installs the handle feeding the stop supervisor. It must be
// called exactly once, from the initializing goroutine, before any call to
// Send or Kill. Re-registration panics.
func (b *Bridge) RegisterStop(handle *StopHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		panic("stop handle already registered")
	}
	b.stop = handle
	b.log.Debug().Str("module", "bridge").Msg("registered stop handle")
}

// Send enqueues a frame for the writer goroutine and returns without waiting
// for transmission. Any number of goroutines may call Send concurrently;
// frames from a single goroutine reach the writer in call order.
//
// A send that finds the writer handle closed is fatal for the session: Send
// raises the stop signal exactly once for the failure and returns
// ErrWriterClosed. There is no retry tier between a failed send and shutdown.
func (b *Bridge) Send(frame *Frame) error {
	b.mu.RLock()
	writer, stop := b.writer, b.stop
	b.mu.RUnlock()

	if writer == nil {
		return ErrWriterNotRegistered
	}
	if err := writer.TryEnqueue(frame); err != nil {
		b.log.Warn().Str("module", "bridge").Msg("writer handle closed, raising stop signal")
		if stop != nil {
			_ = stop.Raise()
		}
		return ErrWriterClosed
	}
	return nil
}

// Kill unconditionally raises the stop signal. It returns immediately without
// waiting for shutdown to complete, and calling it repeatedly is harmless —
// each call forwards a signal and the supervisor treats the signal as a
// level. Once the supervisor itself has gone away the raise becomes a no-op;
// there is no lower-level fallback beyond the stop handle. Kill panics if no
// stop handle was registered.
func (b *Bridge) Kill() {
	b.mu.RLock()
	stop := b.stop
	b.mu.RUnlock()

	if stop == nil {
		panic("no stop handle registered")
	}
	_ = stop.Raise()
}
