package cstream

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestCompacted(t *testing.T) {
	s := Compacted(FromSlice([]*int{ptr(1), nil, ptr(2), nil, nil, ptr(3)}))
	res, err := s.ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}

func TestCompacted_PassThrough(t *testing.T) {
	src := []*int{ptr(7), ptr(8), ptr(9)}
	res, err := Compacted(FromSlice(src)).ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	want := []int{7, 8, 9}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}

func TestFlatten(t *testing.T) {
	inner := []*Stream[int]{
		FromSlice([]int{1, 2}),
		FromSlice([]int(nil)),
		FromSlice([]int{3}),
	}
	res, err := Flatten(FromSlice(inner)).ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}

func TestFlatten_InnerFailurePropagates(t *testing.T) {
	boom := errors.New("inner failed")
	bad := FromFunc(func(ctx context.Context) (int, error) {
		return 0, boom
	})
	outer := FromSlice([]*Stream[int]{FromSlice([]int{1}), bad})

	s := Flatten(outer)
	ctx := context.Background()

	if v, err := s.Next(ctx); err != nil || v != 1 {
		t.Fatalf("got %v, %v; want 1, nil", v, err)
	}
	if _, err := s.Next(ctx); !errors.Is(err, boom) {
		t.Fatalf("got %v; want %v", err, boom)
	}
	if _, err := s.Next(ctx); err != io.EOF {
		t.Fatalf("got %v; want io.EOF after failure", err)
	}
}

func TestFlatten_CancelStopsInnerAndOuter(t *testing.T) {
	var innerCancelled, outerCancelled bool
	inner := newStream(func(ctx context.Context) (int, error) {
		return 1, nil // endless
	}, func() { innerCancelled = true })
	outer := newStream(func(ctx context.Context) (*Stream[int], error) {
		return inner, nil
	}, func() { outerCancelled = true })

	s := Flatten(outer)
	if _, err := s.Next(context.Background()); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	s.Cancel()

	if !innerCancelled || !outerCancelled {
		t.Errorf("cancelled inner=%v outer=%v; want both", innerCancelled, outerCancelled)
	}
}

func TestFlattenSlices(t *testing.T) {
	s := FlattenSlices(FromSlice([][]int{{1, 2}, nil, {3}, {}, {4, 5}}))
	res, err := s.ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	want := []int{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}

func TestUnique(t *testing.T) {
	res, err := Unique(FromSlice([]int{1, 2, 3, 1, 2, 4})).ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	// First occurrences retained in input order.
	want := []int{1, 2, 3, 4}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}

func TestUnique_AlreadyUniquePassThrough(t *testing.T) {
	items := []string{"a", "b", "c"}
	res, err := Unique(FromSlice(items)).ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	if !reflect.DeepEqual(res, items) {
		t.Errorf("got %v, want %v", res, items)
	}
}

func TestConcat(t *testing.T) {
	t.Run("TwoStreams", func(t *testing.T) {
		s := Concat(FromSlice([]int{1, 2}), FromSlice([]int{3, 4}))
		res, err := s.ToSlice(context.Background())
		if err != nil {
			t.Fatalf("ToSlice failed: %v", err)
		}
		want := []int{1, 2, 3, 4}
		if !reflect.DeepEqual(res, want) {
			t.Errorf("got %v, want %v", res, want)
		}
	})

	t.Run("EmptyThenStream", func(t *testing.T) {
		items := []int{9, 8, 7}
		s := Concat(FromSlice([]int(nil)), FromSlice(items))
		res, err := s.ToSlice(context.Background())
		if err != nil {
			t.Fatalf("ToSlice failed: %v", err)
		}
		if !reflect.DeepEqual(res, items) {
			t.Errorf("got %v, want %v", res, items)
		}
	})

	t.Run("TwoEmpties", func(t *testing.T) {
		s := Concat(FromSlice([]int(nil)), FromSlice([]int(nil)))
		if _, err := s.Next(context.Background()); err != io.EOF {
			t.Fatalf("got %v; want io.EOF immediately", err)
		}
	})

	t.Run("CancelCancelsAll", func(t *testing.T) {
		var aCancelled, bCancelled bool
		a := newStream(func(ctx context.Context) (int, error) { return 0, io.EOF }, func() { aCancelled = true })
		b := newStream(func(ctx context.Context) (int, error) { return 0, io.EOF }, func() { bCancelled = true })
		Concat(a, b).Cancel()
		if !aCancelled || !bCancelled {
			t.Errorf("cancelled a=%v b=%v; want both", aCancelled, bCancelled)
		}
	})
}

func TestBatch(t *testing.T) {
	res, err := Batch(FromSlice([]int{1, 2, 3, 4, 5}), 2).ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	want := [][]int{{1, 2}, {3, 4}, {5}}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}

func TestScan(t *testing.T) {
	res, err := Scan(FromSlice([]int{1, 2, 3, 4}), 0, func(acc, v int) int {
		return acc + v
	}).ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	want := []int{1, 3, 6, 10}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}

func TestZip(t *testing.T) {
	a := FromSlice([]int{1, 2, 3})
	b := FromSlice([]string{"a", "b"})

	res, err := Zip(a, b).ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	want := []Pair[int, string]{{1, "a"}, {2, "b"}}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}

	// The longer side is stopped once the shorter is exhausted.
	if _, err := a.Next(context.Background()); err != io.EOF {
		t.Errorf("got %v; want io.EOF from stopped side", err)
	}
}

func TestFluentChain(t *testing.T) {
	s := FromSlice([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}).
		Filter(func(v int) bool { return v%2 == 0 }).
		Take(3)

	res, err := s.ToSlice(context.Background())
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	want := []int{2, 4, 6}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("got %v, want %v", res, want)
	}
}
