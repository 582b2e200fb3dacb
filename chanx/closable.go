package chanx

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by the send methods of [Closable] when the
// channel has been closed.
var ErrClosed = errors.New("chanx: send on closed channel")

// Closable wraps a channel with idempotent close and panic-safe send.
//
// Go channels panic on double close and on send-after-close. Closable
// converts these into errors, making it safe to tear a channel down
// while senders are still racing in.
//
// The underlying data channel is never closed; closure is signalled
// through a separate channel. Closing the data channel directly would
// let a select in a blocked sender pick the send case against a closed
// channel and panic. Values buffered at close time remain receivable
// via [Closable.Recv] until drained.
type Closable[T any] struct {
	ch     chan T
	once   sync.Once
	closed chan struct{}
}

// NewClosable creates a Closable channel with the given buffer capacity.
func NewClosable[T any](capacity int) *Closable[T] {
	return &Closable[T]{
		ch:     make(chan T, capacity),
		closed: make(chan struct{}),
	}
}

// Send sends v to the underlying channel, blocking while the buffer is
// full. It returns [ErrClosed] if the channel has been closed, either
// before or while blocked.
func (c *Closable[T]) Send(v T) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	select {
	case c.ch <- v:
		return nil
	case <-c.closed:
		return ErrClosed
	}
}

// SendContext is like [Closable.Send] but also unblocks when ctx is
// cancelled, returning the context error.
func (c *Closable[T]) SendContext(ctx context.Context, v T) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	select {
	case c.ch <- v:
		return nil
	case <-c.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv receives a value, unblocking on close or on ctx cancellation.
// ok is false once the channel is closed and its buffer drained; err is
// non-nil only for context cancellation. Buffered values are always
// delivered before ok turns false.
func (c *Closable[T]) Recv(ctx context.Context) (v T, ok bool, err error) {
	// Drain buffered values ahead of the close signal.
	select {
	case v = <-c.ch:
		return v, true, nil
	default:
	}
	select {
	case v = <-c.ch:
		return v, true, nil
	case <-c.closed:
		// A sender may have slipped a value in between the two selects.
		select {
		case v = <-c.ch:
			return v, true, nil
		default:
			var zero T
			return zero, false, nil
		}
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

// Close marks the channel closed. It is safe to call multiple times and
// from any goroutine; only the first call has an effect. Blocked
// senders unblock with [ErrClosed].
func (c *Closable[T]) Close() {
	c.once.Do(func() {
		close(c.closed)
	})
}

// Done returns a channel that is closed when [Closable.Close] is
// called, for use in select statements that need to detect closure.
func (c *Closable[T]) Done() <-chan struct{} {
	return c.closed
}

// Len returns the number of values currently buffered.
func (c *Closable[T]) Len() int { return len(c.ch) }

// Cap returns the buffer capacity.
func (c *Closable[T]) Cap() int { return cap(c.ch) }
