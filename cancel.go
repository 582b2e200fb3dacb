package cstream

import "sync"

// CancelHandle requests cancellation of a stream and its upstream chain.
//
// A handle is detached from the stream that produced it: it may be
// copied into a cancellation observer, invoked from any goroutine, and
// invoked after the stream itself has been abandoned. Repeated calls
// are no-ops.
type CancelHandle struct {
	once sync.Once
	fn   func()
}

func newCancelHandle(fn func()) *CancelHandle {
	return &CancelHandle{fn: fn}
}

// Cancel runs the cancellation procedure exactly once.
// Calling Cancel on a nil handle is a no-op.
func (h *CancelHandle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(h.fn)
}
