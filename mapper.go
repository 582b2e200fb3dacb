package cstream

import (
	"container/heap"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vaida12345/concurrentstream/chanx"
)

// errCancelled is the cause recorded on a supervisor context when its
// stream is cancelled. It never surfaces through Next.
var errCancelled = errors.New("cstream: stream cancelled")

// indexed is the word flowing from workers to the reorder buffer: a
// result or failure tagged with its submission index.
type indexed[T any] struct {
	idx int64
	val T
	err error
}

type indexedHeap[T any] []indexed[T]

func (h indexedHeap[T]) Len() int           { return len(h) }
func (h indexedHeap[T]) Less(i, j int) bool { return h[i].idx < h[j].idx }
func (h indexedHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexedHeap[T]) Push(x any)        { *h = append(*h, x.(indexed[T])) }
func (h *indexedHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type mapStats struct {
	spawned atomic.Int64
	active  atomic.Int64
}

// mapper is the ordered map engine behind [Map]: a detached supervisor
// draining the upstream and spawning one worker per element, a closable
// result channel, and a consumer-side reorder buffer.
type mapper[T, U any] struct {
	src     *Stream[T]
	fn      func(context.Context, T) (U, error)
	results *chanx.Closable[indexed[U]]
	ctx     context.Context
	cfg     config
	sem     *semaphore
	stats   *mapStats

	// failed is set by the first failing worker so the supervisor stops
	// drawing upstream input. Peers already in flight still deliver, so
	// every index below the failed one reaches the consumer.
	failed atomic.Bool

	wg sync.WaitGroup
}

// Map returns a stream of fn applied to every element of src, in
// upstream order. It is the only operator that introduces concurrency:
// construction immediately spawns a detached supervisor that drains src
// and launches one worker per element (see [WithMaxConcurrency] for
// admission control). Results are re-serialized by submission index on
// the consumer side, so Next delivers them in the exact order the
// inputs were drawn, regardless of worker completion order.
//
// ctx bounds the supervisor's lifetime. The supervisor also stops when
// the returned stream is cancelled or drained; abandoning the stream
// without either leaks the supervisor until ctx ends.
//
// A transform failure is wrapped in [*ElemError] and delivered at its
// element's position: every earlier element is still delivered, no
// later element ever is, and no further upstream input is drawn.
// Worker panics are captured as [*PanicError] failures rather than
// crashing the process.
func Map[T, U any](ctx context.Context, src *Stream[T], fn func(context.Context, T) (U, error), opts ...Option) *Stream[U] {
	if src == nil {
		panic("cstream: Map requires a non-nil source stream")
	}
	if fn == nil {
		panic("cstream: Map requires a non-nil transform")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	runCtx, cancelRun := context.WithCancelCause(ctx)
	m := &mapper[T, U]{
		src:     src,
		fn:      fn,
		results: chanx.NewClosable[indexed[U]](cfg.buffer),
		ctx:     runCtx,
		cfg:     cfg,
		stats:   &mapStats{},
	}
	if cfg.maxConcurrency > 0 {
		m.sem = newSemaphore(cfg.maxConcurrency)
	}

	out := &Stream[U]{stats: m.stats}
	out.handle = newCancelHandle(func() {
		out.done.Store(true)
		cancelRun(errCancelled)
		m.results.Close()
		src.Cancel()
	})
	out.next = m.makeNext(out)

	go m.supervise()

	return out
}

// supervise drains the upstream, tagging each element with a monotonic
// index and spawning a worker for it. It runs detached; the stream
// reaches it only through the cancel handle's context.
func (m *mapper[T, U]) supervise() {
	defer m.results.Close()

	var idx int64
	for {
		if m.ctx.Err() != nil || m.failed.Load() {
			break
		}

		v, err := m.src.Next(m.ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			// Upstream failure: deliver it at the current index so the
			// reorder buffer surfaces it after every drawn element.
			m.results.SendContext(m.ctx, indexed[U]{idx: idx, err: err})
			break
		}

		if m.sem != nil {
			if m.sem.acquire(m.ctx) != nil {
				break
			}
		}

		m.wg.Add(1)
		m.stats.spawned.Add(1)
		m.stats.active.Add(1)
		if m.cfg.onSpawn != nil {
			m.cfg.onSpawn(ElemInfo{Index: uint64(idx)})
		}
		go m.work(idx, v)
		idx++
	}

	m.wg.Wait()
}

func (m *mapper[T, U]) work(idx int64, v T) {
	start := time.Now()
	defer m.wg.Done()
	defer m.stats.active.Add(-1)
	if m.sem != nil {
		defer m.sem.release()
	}

	res := indexed[U]{idx: idx}
	func() {
		defer func() {
			if r := recover(); r != nil {
				res.err = newPanicError(r)
			}
		}()
		res.val, res.err = m.fn(m.ctx, v)
	}()

	if res.err != nil {
		res.err = &ElemError{Index: uint64(idx), Err: res.err}
		m.failed.Store(true)
	}
	if m.cfg.onDone != nil {
		m.cfg.onDone(ElemInfo{Index: uint64(idx)}, res.err, time.Since(start))
	}

	// A send after cancellation is dropped: the channel is closed (or the
	// run context ends), so a late worker's result never reaches the
	// consumer.
	m.results.SendContext(m.ctx, res)
}

// makeNext builds the consumer-side pull function: the reorder buffer.
// It holds an index min-heap and a cursor, delivering results strictly
// by submission index.
func (m *mapper[T, U]) makeNext(out *Stream[U]) func(context.Context) (U, error) {
	var nextIdx int64
	var h indexedHeap[U]

	return func(ctx context.Context) (U, error) {
		var zero U
		for {
			if len(h) > 0 && h[0].idx == nextIdx {
				res := heap.Pop(&h).(indexed[U])
				nextIdx++
				if res.err != nil {
					return zero, res.err
				}
				return res.val, nil
			}

			res, ok, err := m.results.Recv(ctx)
			if err != nil {
				// Consumer context cancelled while waiting: quiet end.
				out.Cancel()
				return zero, io.EOF
			}
			if !ok {
				// Channel finished. Whatever is parked in the heap is
				// deliverable in order, a failure, or a gap.
				if len(h) == 0 {
					return zero, io.EOF
				}
				if h[0].idx == nextIdx {
					continue
				}
				if out.done.Load() || m.ctx.Err() != nil {
					// Cancelled (the stream, or the construction ctx)
					// while results were in flight; dropped results are
					// not a gap.
					return zero, io.EOF
				}
				for len(h) > 0 {
					res := heap.Pop(&h).(indexed[U])
					if res.err != nil {
						return zero, res.err
					}
				}
				return zero, ErrStreamGap
			}
			heap.Push(&h, res)
		}
	}
}

// CompactMap is [Map] for transforms that may decline an element:
// fn returns nil to drop its input. Results keep upstream order.
// Equivalent to Compacted(Map(...)).
func CompactMap[T, U any](ctx context.Context, src *Stream[T], fn func(context.Context, T) (*U, error), opts ...Option) *Stream[U] {
	mapped := Map(ctx, src, fn, opts...)
	out := Compacted(mapped)
	out.stats = mapped.stats
	return out
}

// FlatMap maps every element of src to an inner stream concurrently,
// then emits each inner stream's elements in outer submission order.
// Inner streams are constructed as their outer elements are drawn, so
// any fan-out of their own starts early; emission is still serialized.
// Equivalent to Flatten(Map(...)).
func FlatMap[T, U any](ctx context.Context, src *Stream[T], fn func(context.Context, T) (*Stream[U], error), opts ...Option) *Stream[U] {
	mapped := Map(ctx, src, fn, opts...)
	out := Flatten(mapped)
	out.stats = mapped.stats
	return out
}
