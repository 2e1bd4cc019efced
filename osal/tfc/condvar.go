package tfc

import (
	"sync"

	"github.com/gpcc-project/gpcc/xtime"
)

// ConditionVariable is the TFC counterpart of osal.ConditionVariable.
// Wait registers an untimed wait with the scheduler (it can therefore
// trigger dead-lock detection); TimeLimitedWait registers a timed wait
// against the virtual clock.
type ConditionVariable struct {
	mu    *Mutex
	sched *Scheduler

	waitersMu sync.Mutex
	waiters   []*waiter
}

// NewConditionVariable returns a ConditionVariable bound to mu and to
// the scheduler that owns the threads which will wait on it.
func NewConditionVariable(mu *Mutex, sched *Scheduler) *ConditionVariable {
	return &ConditionVariable{mu: mu, sched: sched}
}

// Wait releases mu, blocks until Signal/Broadcast wakes this waiter (or
// the scheduler determines this is a genuine dead-lock), then
// reacquires mu.
func (c *ConditionVariable) Wait(t *Thread) {
	w := c.sched.blockUntimed()
	c.registerLocalWaiter(w)

	c.mu.Unlock()

	if t != nil && t.cancelEnabled.Load() {
		select {
		case <-w.wake:
		case <-t.notify():
			c.sched.cancelWait(w)
			c.removeLocalWaiter(w)
			c.mu.Lock()
			panic(cancellationSignal{})
		}
	} else {
		<-w.wake
	}

	c.mu.Lock()
}

// TimeLimitedWait is Wait's timed counterpart. deadline is interpreted
// against the scheduler's virtual clock. Returns true iff the deadline
// fired before a notification.
func (c *ConditionVariable) TimeLimitedWait(t *Thread, deadline xtime.TimePoint) bool {
	w := c.sched.blockTimed(deadline)
	c.registerLocalWaiter(w)

	c.mu.Unlock()

	if t != nil && t.cancelEnabled.Load() {
		select {
		case <-w.wake:
		case <-t.notify():
			c.sched.cancelWait(w)
			c.removeLocalWaiter(w)
			c.mu.Lock()
			panic(cancellationSignal{})
		}
	} else {
		<-w.wake
	}

	c.removeLocalWaiter(w)
	c.mu.Lock()

	return w.timedOut
}

// Signal wakes at most one waiter.
func (c *ConditionVariable) Signal() {
	c.waitersMu.Lock()
	defer c.waitersMu.Unlock()

	if len(c.waiters) == 0 {
		return
	}

	w := c.waiters[0]
	c.waiters = c.waiters[1:]
	c.sched.wake(w)
}

// Broadcast wakes every current waiter.
func (c *ConditionVariable) Broadcast() {
	c.waitersMu.Lock()
	defer c.waitersMu.Unlock()

	for _, w := range c.waiters {
		c.sched.wake(w)
	}

	c.waiters = nil
}

func (c *ConditionVariable) registerLocalWaiter(w *waiter) {
	c.waitersMu.Lock()
	defer c.waitersMu.Unlock()

	c.waiters = append(c.waiters, w)
}

func (c *ConditionVariable) removeLocalWaiter(w *waiter) {
	c.waitersMu.Lock()
	defer c.waitersMu.Unlock()

	for i, cur := range c.waiters {
		if cur == w {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)

			return
		}
	}
}
