package cstream

import (
	"context"
	"io"

	"github.com/Vaida12345/concurrentstream/chanx"
)

// ToChan bridges the stream out to a channel pair, the closest Go has
// to an asynchronous iterator. The value channel carries the elements;
// the error channel receives exactly one value — the stream's final
// error, or nil — before both channels are closed.
//
// The bridge goroutine stops, cancelling the stream, when the stream
// ends, when ctx is cancelled, or when the receiver stops draining and
// ctx ends. Conversion loses the terminal-cancels-on-exit convenience,
// so keep [Stream.CancelHandle] (taken before calling ToChan) to stop
// the stream from the receiving side.
func (s *Stream[T]) ToChan(ctx context.Context) (<-chan T, <-chan error) {
	ch := make(chan T)
	errCh := make(chan error, 1)
	go func() {
		defer close(ch)
		defer close(errCh)
		defer s.Cancel()
		for {
			v, err := s.Next(ctx)
			if err == io.EOF {
				errCh <- s.Err()
				return
			}
			if err != nil {
				errCh <- err
				return
			}
			if chanx.Send(ctx, ch, v) != nil {
				errCh <- nil
				return
			}
		}
	}()
	return ch, errCh
}
