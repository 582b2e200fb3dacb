package cstream

import "context"

// semaphore is the admission-control gate used by heavyweight operators
// when [WithMaxConcurrency] is set.
type semaphore struct {
	slots chan struct{}
}

func newSemaphore(n int) *semaphore {
	return &semaphore{slots: make(chan struct{}, n)}
}

// acquire blocks until a slot is available or ctx is cancelled.
func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.slots
}
