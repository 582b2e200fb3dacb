package cstream

import (
	"context"
	"io"
	"sync"
)

// Pair holds two values paired from two streams.
// It is used by [Zip].
type Pair[A, B any] struct {
	First  A
	Second B
}

// Compacted unwraps a stream of pointers, skipping nil elements.
// It is the second stage of [CompactMap].
func Compacted[T any](s *Stream[*T]) *Stream[T] {
	if s == nil {
		panic("cstream: Compacted requires a non-nil source stream")
	}
	return newStream(func(ctx context.Context) (T, error) {
		for {
			v, err := s.Next(ctx)
			if err != nil {
				var zero T
				return zero, err
			}
			if v == nil {
				continue
			}
			return *v, nil
		}
	}, s.Cancel)
}

// Flatten concatenates a stream of streams into a single stream,
// emitting each inner stream in full before moving to the next.
// A nil inner stream is skipped. An inner stream's failure surfaces as
// the outer stream's failure. Cancelling the result cancels the outer
// stream and the inner stream currently being drained.
func Flatten[T any](outer *Stream[*Stream[T]]) *Stream[T] {
	if outer == nil {
		panic("cstream: Flatten requires a non-nil source stream")
	}
	var (
		mu  sync.Mutex // cancel may race Next over cur
		cur *Stream[T]
	)
	setCur := func(s *Stream[T]) {
		mu.Lock()
		cur = s
		mu.Unlock()
	}
	return newStream(func(ctx context.Context) (T, error) {
		var zero T
		for {
			mu.Lock()
			inner := cur
			mu.Unlock()

			if inner == nil {
				c, err := outer.Next(ctx)
				if err != nil {
					return zero, err
				}
				if c == nil {
					continue
				}
				setCur(c)
				inner = c
			}

			v, err := inner.Next(ctx)
			if err == io.EOF {
				setCur(nil)
				continue
			}
			if err != nil {
				return zero, err
			}
			return v, nil
		}
	}, func() {
		mu.Lock()
		inner := cur
		mu.Unlock()
		if inner != nil {
			inner.Cancel()
		}
		outer.Cancel()
	})
}

// FlattenSlices concatenates a stream of slices into a stream of their
// elements.
func FlattenSlices[T any](s *Stream[[]T]) *Stream[T] {
	if s == nil {
		panic("cstream: FlattenSlices requires a non-nil source stream")
	}
	var buf []T
	return newStream(func(ctx context.Context) (T, error) {
		for {
			if len(buf) > 0 {
				v := buf[0]
				buf = buf[1:]
				return v, nil
			}
			sl, err := s.Next(ctx)
			if err != nil {
				var zero T
				return zero, err
			}
			buf = sl
		}
	}, s.Cancel)
}

// Unique returns a stream of the distinct elements of s, keeping the
// first occurrence of each value in input order. The seen-set persists
// for the stream's lifetime and is guarded against concurrent misuse.
func Unique[T comparable](s *Stream[T]) *Stream[T] {
	if s == nil {
		panic("cstream: Unique requires a non-nil source stream")
	}
	seen := make(map[T]struct{})
	var mu sync.Mutex
	return newStream(func(ctx context.Context) (T, error) {
		for {
			v, err := s.Next(ctx)
			if err != nil {
				var zero T
				return zero, err
			}
			mu.Lock()
			_, dup := seen[v]
			if !dup {
				seen[v] = struct{}{}
			}
			mu.Unlock()
			if dup {
				continue
			}
			return v, nil
		}
	}, s.Cancel)
}

// Concat produces the elements of each stream in turn, draining one
// completely before pulling from the next. Cancelling the result
// cancels every input stream.
func Concat[T any](streams ...*Stream[T]) *Stream[T] {
	for _, s := range streams {
		if s == nil {
			panic("cstream: Concat requires non-nil streams")
		}
	}
	var idx int
	return newStream(func(ctx context.Context) (T, error) {
		var zero T
		for idx < len(streams) {
			v, err := streams[idx].Next(ctx)
			if err == io.EOF {
				idx++
				continue
			}
			if err != nil {
				return zero, err
			}
			return v, nil
		}
		return zero, io.EOF
	}, func() {
		for _, s := range streams {
			s.Cancel()
		}
	})
}

// Batch groups elements into slices of size n. The final batch may be
// shorter.
func Batch[T any](s *Stream[T], n int) *Stream[[]T] {
	if s == nil {
		panic("cstream: Batch requires a non-nil source stream")
	}
	if n <= 0 {
		panic("cstream: Batch size must be positive")
	}
	return newStream(func(ctx context.Context) ([]T, error) {
		var batch []T
		for i := 0; i < n; i++ {
			v, err := s.Next(ctx)
			if err == io.EOF {
				if len(batch) > 0 {
					return batch, nil
				}
				return nil, io.EOF
			}
			if err != nil {
				return nil, err
			}
			batch = append(batch, v)
		}
		return batch, nil
	}, s.Cancel)
}

// Scan returns a stream that applies fn cumulatively to each element,
// emitting each intermediate accumulation. The first emitted value is
// fn(initial, firstElem).
//
// This is the streaming counterpart of [Reduce]: Reduce produces a
// single final value, while Scan produces a stream of running values.
func Scan[T, R any](s *Stream[T], initial R, fn func(R, T) R) *Stream[R] {
	if s == nil {
		panic("cstream: Scan requires a non-nil source stream")
	}
	if fn == nil {
		panic("cstream: Scan requires a non-nil accumulator")
	}
	acc := initial
	return newStream(func(ctx context.Context) (R, error) {
		v, err := s.Next(ctx)
		if err != nil {
			var zero R
			return zero, err
		}
		acc = fn(acc, v)
		return acc, nil
	}, s.Cancel)
}

// Zip pairs elements from two streams element-by-element. The resulting
// stream emits [Pair] values and ends as soon as either input is
// exhausted; the other input is cancelled at that point.
//
// Both streams are read sequentially (a first, then b) within each Next
// call, which is safe because streams are single-consumer.
func Zip[A, B any](a *Stream[A], b *Stream[B]) *Stream[Pair[A, B]] {
	if a == nil {
		panic("cstream: Zip requires a non-nil first stream")
	}
	if b == nil {
		panic("cstream: Zip requires a non-nil second stream")
	}
	return newStream(func(ctx context.Context) (Pair[A, B], error) {
		var zero Pair[A, B]
		va, err := a.Next(ctx)
		if err != nil {
			b.Cancel()
			return zero, err
		}
		vb, err := b.Next(ctx)
		if err != nil {
			a.Cancel()
			return zero, err
		}
		return Pair[A, B]{First: va, Second: vb}, nil
	}, func() {
		a.Cancel()
		b.Cancel()
	})
}
