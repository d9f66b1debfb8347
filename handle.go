package slipstream

import (
	"errors"
	"sync"
)

// ErrHandleClosed is returned by TryEnqueue and Raise when the consumer side of
// the handle has shut down. Once a handle is closed it never reopens.
var ErrHandleClosed = errors.New("handle is closed")

// Handle is one endpoint of a bounded frame queue connecting any number of
// producer goroutines to a single consumer. Producers submit frames with
// TryEnqueue; the consumer drains them from Receive and announces its departure
// with Close. Frames submitted by a single goroutine are received in
// submission order. No ordering is guaranteed between frames submitted by
// different goroutines.
type Handle struct {
	frames    chan *Frame
	done      chan struct{}
	closeOnce sync.Once
}

// NewHandle creates a handle with the given buffer capacity. Producers block
// while the buffer is full, so capacity is the only backpressure policy this
// queue has.
func NewHandle(capacity int) *Handle {
	return &Handle{
		frames: make(chan *Frame, capacity),
		done:   make(chan struct{}),
	}
}

// TryEnqueue submits a frame for the consumer. It blocks while the buffer is
// full and fails with ErrHandleClosed once the consumer has closed the handle.
// Safe to call from any number of goroutines.
func (h *Handle) TryEnqueue(frame *Frame) error {
	select {
	case <-h.done:
		return ErrHandleClosed
	default:
	}
	select {
	case h.frames <- frame:
		return nil
	case <-h.done:
		return ErrHandleClosed
	}
}

// Receive exposes the consumer side of the queue. Only one goroutine should
// read from it.
func (h *Handle) Receive() <-chan *Frame {
	return h.frames
}

// Done is closed when the consumer has closed the handle.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Close marks the consumer side as gone. Frames still buffered are discarded
// along with the consumer. Close may be called more than once.
func (h *Handle) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// StopHandle is the signal counterpart of Handle. Producers raise a unit
// signal; a single supervising consumer drains them. The signal is a level
// rather than an edge — raising it repeatedly is expected, and deduplication
// is the consumer's job, not the handle's.
type StopHandle struct {
	signals   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewStopHandle creates a stop handle with the given buffer capacity.
func NewStopHandle(capacity int) *StopHandle {
	return &StopHandle{
		signals: make(chan struct{}, capacity),
		done:    make(chan struct{}),
	}
}

// Raise submits a stop signal. It never blocks: if the buffer is full the
// signal is already pending and the extra raise is dropped. Fails with
// ErrHandleClosed once the consumer has closed the handle.
func (h *StopHandle) Raise() error {
	select {
	case <-h.done:
		return ErrHandleClosed
	default:
	}
	select {
	case h.signals <- struct{}{}:
		return nil
	case <-h.done:
		return ErrHandleClosed
	default:
		return nil
	}
}

// Signals exposes the consumer side of the handle. Only one goroutine should
// read from it.
func (h *StopHandle) Signals() <-chan struct{} {
	return h.signals
}

// Done is closed when the consumer has closed the handle.
func (h *StopHandle) Done() <-chan struct{} {
	return h.done
}

// Close marks the consumer side as gone. May be called more than once.
func (h *StopHandle) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}
