package cstream

import (
	"context"
	"io"

	"golang.org/x/exp/constraints"
)

// Terminal operations. Every terminal consumes the stream and cancels
// it on exit, releasing the supervisor and upstream chain even when the
// consumer stops early. Terminals follow the io.Reader convention of
// returning partial results alongside any error.

// ToSlice collects all remaining elements into a slice.
func (s *Stream[T]) ToSlice(ctx context.Context) ([]T, error) {
	defer s.Cancel()
	var items []T
	for {
		v, err := s.Next(ctx)
		if err == io.EOF {
			return items, s.Err()
		}
		if err != nil {
			return items, err
		}
		items = append(items, v)
	}
}

// Collect is an alias for [Stream.ToSlice].
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	return s.ToSlice(ctx)
}

// ForEach applies fn to each element serially. It stops on the first
// error from fn or from the stream.
func (s *Stream[T]) ForEach(ctx context.Context, fn func(T) error) error {
	defer s.Cancel()
	for {
		v, err := s.Next(ctx)
		if err == io.EOF {
			return s.Err()
		}
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// Count counts the remaining elements.
func (s *Stream[T]) Count(ctx context.Context) (int, error) {
	defer s.Cancel()
	var count int
	for {
		_, err := s.Next(ctx)
		if err == io.EOF {
			return count, s.Err()
		}
		if err != nil {
			return count, err
		}
		count++
	}
}

// CountWhere counts the elements for which fn returns true.
func (s *Stream[T]) CountWhere(ctx context.Context, fn func(T) bool) (int, error) {
	defer s.Cancel()
	var count int
	for {
		v, err := s.Next(ctx)
		if err == io.EOF {
			return count, s.Err()
		}
		if err != nil {
			return count, err
		}
		if fn(v) {
			count++
		}
	}
}

// AllSatisfy reports whether fn returns true for every remaining
// element. It short-circuits on the first false, cancelling the stream.
// An empty stream satisfies vacuously.
func (s *Stream[T]) AllSatisfy(ctx context.Context, fn func(T) bool) (bool, error) {
	defer s.Cancel()
	for {
		v, err := s.Next(ctx)
		if err == io.EOF {
			return true, s.Err()
		}
		if err != nil {
			return false, err
		}
		if !fn(v) {
			return false, nil
		}
	}
}

// Reduce folds the stream into a single value, applying fn to the
// running accumulation and each element in order.
func Reduce[T, R any](ctx context.Context, s *Stream[T], initial R, fn func(R, T) R) (R, error) {
	defer s.Cancel()
	acc := initial
	for {
		v, err := s.Next(ctx)
		if err == io.EOF {
			return acc, s.Err()
		}
		if err != nil {
			return acc, err
		}
		acc = fn(acc, v)
	}
}

// ReduceInto folds the stream into *into, mutating the accumulator in
// place. Useful when the accumulator is expensive to copy.
func ReduceInto[T, R any](ctx context.Context, s *Stream[T], into *R, fn func(*R, T)) error {
	defer s.Cancel()
	for {
		v, err := s.Next(ctx)
		if err == io.EOF {
			return s.Err()
		}
		if err != nil {
			return err
		}
		fn(into, v)
	}
}

// Min returns the smallest remaining element. ok is false if the stream
// was empty.
func Min[T constraints.Ordered](ctx context.Context, s *Stream[T]) (min T, ok bool, err error) {
	defer s.Cancel()
	for {
		v, e := s.Next(ctx)
		if e == io.EOF {
			return min, ok, s.Err()
		}
		if e != nil {
			return min, ok, e
		}
		if !ok || v < min {
			min = v
		}
		ok = true
	}
}

// Max returns the largest remaining element. ok is false if the stream
// was empty.
func Max[T constraints.Ordered](ctx context.Context, s *Stream[T]) (max T, ok bool, err error) {
	defer s.Cancel()
	for {
		v, e := s.Next(ctx)
		if e == io.EOF {
			return max, ok, s.Err()
		}
		if e != nil {
			return max, ok, e
		}
		if !ok || v > max {
			max = v
		}
		ok = true
	}
}

// Contains reports whether target occurs among the remaining elements.
// It short-circuits on the first match, cancelling the stream.
func Contains[T comparable](ctx context.Context, s *Stream[T], target T) (bool, error) {
	defer s.Cancel()
	for {
		v, err := s.Next(ctx)
		if err == io.EOF {
			return false, s.Err()
		}
		if err != nil {
			return false, err
		}
		if v == target {
			return true, nil
		}
	}
}
