package cstream

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestToChan(t *testing.T) {
	ch, errCh := FromSlice([]int{1, 2, 3}).ToChan(context.Background())

	var got []int
	for v := range ch {
		got = append(got, v)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("bridge reported %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v", got)
	}
}

func TestToChan_ErrorPropagates(t *testing.T) {
	boom := errors.New("source failed")
	var n int
	src := FromFunc(func(ctx context.Context) (int, error) {
		if n >= 2 {
			return 0, boom
		}
		n++
		return n, nil
	})

	ch, errCh := src.ToChan(context.Background())
	var got []int
	for v := range ch {
		got = append(got, v)
	}
	if err := <-errCh; !errors.Is(err, boom) {
		t.Fatalf("got %v; want %v", err, boom)
	}
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("got %v", got)
	}
}

func TestToChan_CancelHandleStopsBridge(t *testing.T) {
	s := FromFunc(func(ctx context.Context) (int, error) {
		return 1, nil // endless
	})
	handle := s.CancelHandle()

	ch, errCh := s.ToChan(context.Background())
	<-ch
	handle.Cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				if err := <-errCh; err != nil {
					t.Fatalf("bridge reported %v after cancel", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("bridge did not close after cancel")
		}
	}
}

func TestToChan_RoundTripThroughFromChanErr(t *testing.T) {
	items := []int{4, 5, 6}
	ch, errCh := FromSlice(items).ToChan(context.Background())

	res, err := FromChanErr(ch, errCh).ToSlice(context.Background())
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if !reflect.DeepEqual(res, items) {
		t.Errorf("got %v, want %v", res, items)
	}
}
