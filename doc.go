// Package cstream provides an ordered concurrent stream: a lazily-built,
// single-consumer pipeline that fans work out across concurrent workers
// while delivering results to the consumer in submission order.
//
// # Streams
//
// A [Stream] is pull-based: the consumer calls [Stream.Next] until it
// returns [io.EOF]. Streams are constructed from slices, channels, or
// arbitrary generator functions via [FromSlice], [FromChan],
// [FromChanErr], [FromFunc], and [FromAny]. Streams are fragile: an
// element observed via Next is gone, and streams cannot be restarted,
// cloned, or consumed twice. Concurrent Next calls on the same stream
// panic.
//
// # Operators
//
// Lightweight operators rewrap Next without spawning goroutines:
// [Stream.Filter], [Stream.FilterErr], [Stream.Take], [Stream.Skip],
// [Stream.Peek], [Compacted], [Flatten], [FlattenSlices], [Unique],
// [Concat], [Batch], [Scan], and [Zip].
//
// Heavyweight operators fan out: [Map] runs a transform concurrently
// over every upstream element and re-serializes results in upstream
// order through an index-keyed reorder buffer. [CompactMap] and
// [FlatMap] derive from Map. Worker parallelism is unbounded unless
// capped with [WithMaxConcurrency].
//
// # Cancellation
//
// Every stream carries an idempotent, thread-safe [CancelHandle],
// obtainable via [Stream.CancelHandle] so it can be invoked without
// holding the stream itself. Cancelling a stream cancels its upstream
// chain and stops its supervisor. Cancellation is cooperative and
// quiet: Next never reports cancellation as an error, it returns
// [io.EOF]. A Next call that observes its context cancelled cancels
// the stream and returns io.EOF.
//
// Go has no destructor to tie cancellation to, so every terminal
// ([Stream.ToSlice], [Stream.ForEach], [ForEachConcurrent], [Reduce],
// ...) cancels the stream on exit. Abandoning a heavyweight stream
// without calling a terminal or Cancel leaks its supervisor goroutine
// until the construction context ends.
//
// # Errors
//
// An upstream or transform failure surfaces at the consumer's next
// Next call, exactly once, and auto-cancels the whole chain;
// subsequent calls return io.EOF. Transform failures are wrapped in
// [*ElemError] carrying the element index; worker panics are captured
// as [*PanicError] values inside an ElemError. Terminal methods follow
// the io.Reader convention of returning partial results alongside the
// error.
//
// # Channel utilities
//
// The [github.com/Vaida12345/concurrentstream/chanx] subpackage
// provides the context-aware channel operations and the
// idempotent-close channel wrapper the engine is built on.
package cstream
