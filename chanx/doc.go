// Package chanx provides context-aware channel operations and an
// idempotent-close channel wrapper.
//
// [Send] and [Recv] are select helpers that unblock on context
// cancellation. [Closable] wraps a channel so that it can be closed
// from any goroutine, any number of times, while senders racing the
// close get an error instead of a panic. The ordered map engine uses a
// Closable as its result channel: cancelling a stream closes the
// channel, turning late workers' sends into no-ops.
package chanx
