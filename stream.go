package cstream

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// Stream represents a pull-based, single-consumer pipeline of elements.
//
// A stream moves through three states: active, drained (upstream
// signalled EOF and the internal buffer is empty), and cancelled.
// Both drained and cancelled are terminal; Next returns [io.EOF] in
// either. Streams are fragile: elements are discarded as they are
// observed, and a stream cannot be rewound or consumed twice.
//
// Next must not be called concurrently with itself; doing so panics.
// Cancel may be called from any goroutine at any time.
type Stream[T any] struct {
	next func(ctx context.Context) (T, error)

	handle *CancelHandle

	busy atomic.Bool
	done atomic.Bool

	mu  sync.Mutex
	err error

	stats *mapStats // non-nil only for streams built by Map
}

// newStream builds a stream around a pull function. onCancel, if
// non-nil, runs once when the stream is cancelled, after the stream is
// marked done; it is where operators propagate cancellation upstream.
func newStream[T any](next func(ctx context.Context) (T, error), onCancel func()) *Stream[T] {
	s := &Stream[T]{next: next}
	s.handle = newCancelHandle(func() {
		s.done.Store(true)
		if onCancel != nil {
			onCancel()
		}
	})
	return s
}

// Next returns the next element in the stream. It returns [io.EOF] when
// the stream is drained or cancelled. Any other error is a stream
// failure: it is reported exactly once, the chain is cancelled, and
// subsequent calls return io.EOF.
//
// Observing ctx cancelled counts as cancellation, not failure: the
// stream is cancelled and Next returns io.EOF.
//
// Next panics if called concurrently with itself on the same stream.
func (s *Stream[T]) Next(ctx context.Context) (T, error) {
	if !s.busy.CompareAndSwap(false, true) {
		panic("cstream: concurrent Next on a single-consumer stream")
	}
	defer s.busy.Store(false)

	var zero T
	if s.done.Load() {
		return zero, io.EOF
	}
	if ctx.Err() != nil {
		s.handle.Cancel()
		return zero, io.EOF
	}

	v, err := s.next(ctx)
	if err == io.EOF {
		s.done.Store(true)
		return zero, io.EOF
	}
	if err != nil {
		s.setError(err)
		s.handle.Cancel()
		return zero, err
	}
	return v, nil
}

// Cancel requests cancellation of the stream and its upstream chain.
// It is idempotent, thread-safe, and returns without waiting for
// in-flight workers to quiesce.
func (s *Stream[T]) Cancel() {
	s.handle.Cancel()
}

// CancelHandle returns the stream's cancel handle. The handle outlives
// the stream, so it can be captured by a cancellation observer without
// holding the stream itself.
func (s *Stream[T]) CancelHandle() *CancelHandle {
	return s.handle
}

// Err returns the first failure recorded by the stream, or nil.
// Cancellation is not a failure and is never recorded here.
func (s *Stream[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream[T]) setError(err error) {
	if err == nil || err == io.EOF {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// InFlight returns the number of workers currently executing for a
// stream built by [Map], [CompactMap], or [FlatMap]. It returns 0 for
// lightweight streams.
func (s *Stream[T]) InFlight() int64 {
	if s.stats == nil {
		return 0
	}
	return s.stats.active.Load()
}

// TotalSpawned returns the total number of workers spawned by a stream
// built by [Map], [CompactMap], or [FlatMap], including completed ones.
// It returns 0 for lightweight streams.
func (s *Stream[T]) TotalSpawned() int64 {
	if s.stats == nil {
		return 0
	}
	return s.stats.spawned.Load()
}

// Filter returns a stream of the elements for which fn returns true.
func (s *Stream[T]) Filter(fn func(T) bool) *Stream[T] {
	if fn == nil {
		panic("cstream: Filter requires a non-nil predicate")
	}
	return newStream(func(ctx context.Context) (T, error) {
		for {
			v, err := s.Next(ctx)
			if err != nil {
				return v, err
			}
			if fn(v) {
				return v, nil
			}
		}
	}, s.Cancel)
}

// FilterErr is like [Stream.Filter] for predicates that can fail.
// A predicate failure is a stream failure: it surfaces at Next and
// cancels the chain.
func (s *Stream[T]) FilterErr(fn func(T) (bool, error)) *Stream[T] {
	if fn == nil {
		panic("cstream: FilterErr requires a non-nil predicate")
	}
	return newStream(func(ctx context.Context) (T, error) {
		var zero T
		for {
			v, err := s.Next(ctx)
			if err != nil {
				return zero, err
			}
			keep, err := fn(v)
			if err != nil {
				return zero, err
			}
			if keep {
				return v, nil
			}
		}
	}, s.Cancel)
}

// Take limits the stream to its first n elements. The upstream is
// cancelled once the limit is reached.
func (s *Stream[T]) Take(n int) *Stream[T] {
	var idx int
	return newStream(func(ctx context.Context) (T, error) {
		if idx >= n {
			s.Cancel()
			var zero T
			return zero, io.EOF
		}
		v, err := s.Next(ctx)
		if err != nil {
			return v, err
		}
		idx++
		return v, nil
	}, s.Cancel)
}

// Skip discards the first n elements of the stream.
func (s *Stream[T]) Skip(n int) *Stream[T] {
	var skipped int
	return newStream(func(ctx context.Context) (T, error) {
		for skipped < n {
			_, err := s.Next(ctx)
			if err != nil {
				var zero T
				return zero, err
			}
			skipped++
		}
		return s.Next(ctx)
	}, s.Cancel)
}

// Peek invokes fn on each element as it passes through, without
// consuming it.
func (s *Stream[T]) Peek(fn func(T)) *Stream[T] {
	return newStream(func(ctx context.Context) (T, error) {
		v, err := s.Next(ctx)
		if err == nil {
			fn(v)
		}
		return v, err
	}, s.Cancel)
}
