package osal

import "github.com/gpcc-project/gpcc/xtime"

// Semaphore is a counting semaphore. Wait and TryWait are cancellation
// points.
type Semaphore struct {
	mu    Mutex
	cond  *ConditionVariable
	count uint32
}

// NewSemaphore returns a Semaphore initialized to initialCount.
func NewSemaphore(initialCount uint32) *Semaphore {
	s := &Semaphore{count: initialCount}
	s.cond = NewConditionVariable(&s.mu)

	return s
}

// Post increments the semaphore's count and wakes one blocked waiter, if
// any.
func (s *Semaphore) Post() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.cond.signalLocked()
}

// Wait blocks until the count is non-zero, then decrements it.
// Cancellation point.
func (s *Semaphore) Wait(t *Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.count == 0 {
		s.cond.waitLocked(t)
	}

	s.count--
}

// TryWait blocks until the count is non-zero or deadline passes.
// Returns true iff it acquired the semaphore. Cancellation point.
func (s *Semaphore) TryWait(t *Thread, deadline xtime.TimePoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.count == 0 {
		if !s.cond.timeLimitedWaitLocked(t, deadline) {
			return false
		}
	}

	s.count--

	return true
}
