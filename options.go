package cstream

import "time"

// ElemInfo provides metadata about an element being processed by a
// heavyweight operator. It is passed to observability hooks registered
// via [WithOnSpawn] and [WithOnDone].
type ElemInfo struct {
	// Index is the element's submission index, assigned in upstream order
	// starting at 0.
	Index uint64
}

type config struct {
	maxConcurrency int
	buffer         int
	onSpawn        func(ElemInfo)
	onDone         func(ElemInfo, error, time.Duration)
}

// Option configures a heavyweight operator ([Map], [CompactMap],
// [FlatMap]) or [ForEachConcurrent].
type Option func(*config)

func defaultConfig() config {
	return config{}
}

// WithMaxConcurrency caps the number of workers executing concurrently.
// Workers beyond the cap wait for a slot, respecting cancellation while
// waiting.
//
// A cap of zero (the default) means unbounded parallelism: one worker
// per upstream element, all potentially in flight at once.
// WithMaxConcurrency panics if n is negative.
func WithMaxConcurrency(n int) Option {
	return func(c *config) {
		if n < 0 {
			panic("cstream: concurrency cap must be non-negative")
		}
		c.maxConcurrency = n
	}
}

// WithBuffer sets the capacity of the internal result channel of a
// heavyweight operator. The default is zero: completed workers block
// until the consumer drains them, providing natural back-pressure when
// the consumer stops calling Next. A larger buffer trades memory for
// less worker stalling.
//
// WithBuffer panics if n is negative.
func WithBuffer(n int) Option {
	return func(c *config) {
		if n < 0 {
			panic("cstream: buffer size must be non-negative")
		}
		c.buffer = n
	}
}

// WithOnSpawn registers a hook invoked when a worker is spawned for an
// element. The hook runs on the supervisor goroutine and must not block.
func WithOnSpawn(fn func(ElemInfo)) Option {
	return func(c *config) {
		c.onSpawn = fn
	}
}

// WithOnDone registers a hook invoked when a worker finishes. The hook
// receives the element's error (nil on success) and wall-clock duration,
// and runs on the worker goroutine.
func WithOnDone(fn func(ElemInfo, error, time.Duration)) Option {
	return func(c *config) {
		c.onDone = fn
	}
}
