package tfc

import "github.com/gpcc-project/gpcc/xtime"

// Semaphore is the TFC counterpart of osal.Semaphore.
type Semaphore struct {
	mu    *Mutex
	cond  *ConditionVariable
	count uint32
}

// NewSemaphore returns a Semaphore initialized to initialCount, whose
// waits participate in sched's dead-lock detection.
func NewSemaphore(initialCount uint32, sched *Scheduler) *Semaphore {
	mu := NewMutex()

	return &Semaphore{
		mu:    mu,
		cond:  NewConditionVariable(mu, sched),
		count: initialCount,
	}
}

// Post increments the count and wakes one waiter, if any.
func (s *Semaphore) Post() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.cond.Signal()
}

// Wait blocks until the count is non-zero, then decrements it. This is
// an untimed wait and participates in dead-lock detection.
func (s *Semaphore) Wait(t *Thread) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.count == 0 {
		s.cond.Wait(t)
	}

	s.count--
}

// TryWait blocks until the count is non-zero or deadline (virtual time)
// passes. Returns true iff it acquired the semaphore.
func (s *Semaphore) TryWait(t *Thread, deadline xtime.TimePoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.count == 0 {
		if s.cond.TimeLimitedWait(t, deadline) {
			return false
		}
	}

	s.count--

	return true
}
