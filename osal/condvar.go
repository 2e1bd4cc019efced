package osal

import (
	"time"

	"github.com/gpcc-project/gpcc/xtime"
)

// ConditionVariable is always associated with exactly one Mutex for its
// entire lifetime; mixing mutexes across Wait calls on the same
// ConditionVariable is forbidden (spec.md §5 "Ordering").
//
// Wait and TimeLimitedWait must be called with the associated Mutex
// locked by the caller; both atomically release it while blocked and
// reacquire it before returning, including on the cancellation path.
// Spurious wakeups are permitted - callers must re-check their predicate
// in a loop, exactly as with a standard condition variable.
type ConditionVariable struct {
	mu      *Mutex
	waiters []chan struct{}
}

// NewConditionVariable returns a ConditionVariable bound to mu.
func NewConditionVariable(mu *Mutex) *ConditionVariable {
	return &ConditionVariable{mu: mu}
}

// Wait blocks until Signal or Broadcast wakes this waiter, or until
// cancellation becomes effective for t (t may be nil for an
// unmanaged/non-cancellable caller). The associated mutex must be held
// on entry and is held again on return, even when Wait panics with the
// cancellation signal.
func (c *ConditionVariable) Wait(t *Thread) {
	c.waitLocked(t)
}

// TimeLimitedWait blocks as Wait, but also wakes at deadline. Returns
// true iff the deadline fired before a notification arrived.
func (c *ConditionVariable) TimeLimitedWait(t *Thread, deadline xtime.TimePoint) bool {
	return !c.timeLimitedWaitLocked(t, deadline)
}

// Signal wakes at most one waiter. Must be called with the mutex held.
func (c *ConditionVariable) Signal() {
	c.signalLocked()
}

// Broadcast wakes every current waiter. Must be called with the mutex
// held.
func (c *ConditionVariable) Broadcast() {
	c.broadcastLocked()
}

func (c *ConditionVariable) addWaiter() chan struct{} {
	ch := make(chan struct{}, 1)
	c.waiters = append(c.waiters, ch)

	return ch
}

func (c *ConditionVariable) removeWaiter(target chan struct{}) {
	for i, w := range c.waiters {
		if w == target {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)

			return
		}
	}
}

func (c *ConditionVariable) signalLocked() {
	if len(c.waiters) == 0 {
		return
	}

	w := c.waiters[0]
	c.waiters = c.waiters[1:]

	select {
	case w <- struct{}{}:
	default:
	}
}

func (c *ConditionVariable) broadcastLocked() {
	for _, w := range c.waiters {
		select {
		case w <- struct{}{}:
		default:
		}
	}

	c.waiters = c.waiters[:0]
}

// waitLocked is ConditionVariable.Wait's implementation, reused by
// RWLock which embeds its own Mutex/ConditionVariable pair.
func (c *ConditionVariable) waitLocked(t *Thread) {
	ch := c.addWaiter()
	c.mu.Unlock()

	if t != nil && t.cancelEnabled.Load() {
		select {
		case <-ch:
			c.mu.Lock()
		case <-t.cancelNotify():
			c.mu.Lock()
			c.removeWaiter(ch)
			panic(cancellationSignal{})
		}

		return
	}

	<-ch
	c.mu.Lock()
}

// timeLimitedWaitLocked returns true if it was woken by a notification
// before deadline, false if the deadline fired first.
func (c *ConditionVariable) timeLimitedWaitLocked(t *Thread, deadline xtime.TimePoint) bool {
	ch := c.addWaiter()
	c.mu.Unlock()

	timer := time.NewTimer(durationUntilDeadline(deadline))
	defer timer.Stop()

	if t != nil && t.cancelEnabled.Load() {
		select {
		case <-ch:
			c.mu.Lock()

			return true
		case <-timer.C:
			c.mu.Lock()
			c.removeWaiter(ch)

			return false
		case <-t.cancelNotify():
			c.mu.Lock()
			c.removeWaiter(ch)
			panic(cancellationSignal{})
		}
	}

	select {
	case <-ch:
		c.mu.Lock()

		return true
	case <-timer.C:
		c.mu.Lock()
		c.removeWaiter(ch)

		return false
	}
}

func durationUntilDeadline(deadline xtime.TimePoint) time.Duration {
	nowPoint := xtime.Now(now)

	span, err := deadline.Sub(nowPoint)
	if err != nil || span.NS() <= 0 {
		return 0
	}

	return time.Duration(span.NS())
}
