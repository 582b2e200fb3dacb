package cstream

import (
	"context"
	"io"
	"sync"
)

// ForEachConcurrent drains the stream serially and dispatches each
// element to a worker running body. Results are discarded. body
// receives the element's observed emission order, starting at 0, and
// the element itself.
//
// The first body failure (or panic, surfaced as a [*PanicError])
// cancels the source stream and the remaining workers' context; the
// failure is returned wrapped in an [*ElemError]. ForEachConcurrent
// waits for all spawned workers before returning. Cancellation of ctx
// stops dispatching and returns the context error once workers have
// drained.
//
// Use [WithMaxConcurrency] to bound worker parallelism.
func ForEachConcurrent[T any](ctx context.Context, s *Stream[T], body func(ctx context.Context, idx int, v T) error, opts ...Option) error {
	if s == nil {
		panic("cstream: ForEachConcurrent requires a non-nil stream")
	}
	if body == nil {
		panic("cstream: ForEachConcurrent requires a non-nil body")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	runCtx, cancelRun := context.WithCancelCause(ctx)
	defer cancelRun(nil)
	defer s.Cancel()

	var sem *semaphore
	if cfg.maxConcurrency > 0 {
		sem = newSemaphore(cfg.maxConcurrency)
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancelRun(err)
			s.Cancel()
		})
	}

	var idx int
	for {
		if runCtx.Err() != nil {
			break
		}
		v, err := s.Next(runCtx)
		if err == io.EOF {
			break
		}
		if err != nil {
			fail(err)
			break
		}

		if sem != nil {
			if sem.acquire(runCtx) != nil {
				break
			}
		}

		wg.Add(1)
		go func(idx int, v T) {
			defer wg.Done()
			if sem != nil {
				defer sem.release()
			}
			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = newPanicError(r)
					}
				}()
				return body(runCtx, idx, v)
			}()
			if err != nil {
				fail(&ElemError{Index: uint64(idx), Err: err})
			}
		}(idx, v)
		idx++
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := s.Err(); err != nil {
		return err
	}
	return ctx.Err()
}
