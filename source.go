package cstream

import (
	"context"
	"io"

	"github.com/Vaida12345/concurrentstream/chanx"
)

// NewStream creates a stream from an iterator function. The function
// should return [io.EOF] once the source is exhausted.
func NewStream[T any](next func(ctx context.Context) (T, error)) *Stream[T] {
	if next == nil {
		panic("cstream: NewStream requires a non-nil iterator")
	}
	return newStream(next, nil)
}

// FromFunc is an alias for [NewStream].
func FromFunc[T any](fn func(ctx context.Context) (T, error)) *Stream[T] {
	return NewStream(fn)
}

// FromSlice creates a stream producing the elements of items, in order.
// The resulting stream never fails.
func FromSlice[T any](items []T) *Stream[T] {
	var idx int
	return newStream(func(ctx context.Context) (T, error) {
		if idx >= len(items) {
			var zero T
			return zero, io.EOF
		}
		v := items[idx]
		idx++
		return v, nil
	}, nil)
}

// FromChan creates a stream producing the elements received from ch.
// The stream ends when ch is closed. A Next call blocked on an empty
// channel unblocks when its context is cancelled, ending the stream
// quietly.
func FromChan[T any](ch <-chan T) *Stream[T] {
	return newStream(func(ctx context.Context) (T, error) {
		v, ok, err := chanx.Recv(ctx, ch)
		if err != nil || !ok {
			var zero T
			return zero, io.EOF
		}
		return v, nil
	}, nil)
}

// FromChanErr creates a stream from a value channel paired with an
// error channel, the shape produced by [Stream.ToChan]. A value
// received from errCh fails the stream; closing either channel ends it.
// When both channels are ready the choice between them is undefined.
func FromChanErr[T any](ch <-chan T, errCh <-chan error) *Stream[T] {
	return newStream(func(ctx context.Context) (T, error) {
		var zero T
		select {
		case v, ok := <-ch:
			if !ok {
				return zero, io.EOF
			}
			return v, nil
		case err, ok := <-errCh:
			if !ok || err == nil {
				return zero, io.EOF
			}
			return zero, err
		case <-ctx.Done():
			return zero, io.EOF
		}
	}, nil)
}

// FromAny creates a stream of the elements of items that are of type T.
// Elements of any other dynamic type are skipped. The resulting stream
// never fails.
func FromAny[T any](items []any) *Stream[T] {
	var idx int
	return newStream(func(ctx context.Context) (T, error) {
		for idx < len(items) {
			v, ok := items[idx].(T)
			idx++
			if ok {
				return v, nil
			}
		}
		var zero T
		return zero, io.EOF
	}, nil)
}
