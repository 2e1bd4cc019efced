// Package tfc is the Time Flow Control variant of the osal package: a
// drop-in replacement whose monotonic clock is a process-wide virtual
// counter instead of the wall clock (spec.md §4.3). Every primitive in
// this package mirrors the one in package osal; the notion of "now" and
// the scheduling of timed waits differ. Constructors take the Scheduler
// to use, Thread takes no name or scheduling policy, and Mutex does not
// check which goroutine holds it.
//
// The virtual clock advances only when every thread known to the
// scheduler is blocked on a wait. If all of them are blocked with a
// finite deadline, the clock jumps straight to the earliest deadline and
// every waiter whose deadline has been reached wakes at that same
// logical instant - no wall-clock time passes. If at least one blocked
// thread has no deadline at all, further progress is impossible and the
// scheduler treats it as a dead-lock.
package tfc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gpcc-project/gpcc/xtime"
)

// OnDeadlock is invoked by the scheduler when it detects that every
// live thread is blocked and at least one of them has no finite
// deadline. It defaults to panicking with the message the spec
// hard-codes ("Dead-Lock detected") so the condition is always fatal in
// production; tests that want to observe the condition without
// crashing the test binary may temporarily replace it.
var OnDeadlock = func(msg string) {
	panic(msg)
}

type waitKind int

const (
	waitTimed waitKind = iota
	waitUntimed
)

type waiter struct {
	kind     waitKind
	deadline xtime.TimePoint
	wake     chan struct{}
	timedOut bool
}

// Scheduler is the TFC virtual clock and dead-lock detector. Thread,
// ConditionVariable, RWLock and Semaphore are each bound to the
// Scheduler passed to their constructor; Default is a process-wide
// instance, and NewScheduler makes an isolated one.
type Scheduler struct {
	mu          sync.Mutex
	virtualNow  xtime.TimePoint
	liveThreads int
	waiters     map[*waiter]struct{}
}

// Default is the process-wide TFC scheduler. Sleep_ms and Sleep_ns use
// it when called with a nil Thread.
var Default = NewScheduler()

// NewScheduler returns a fresh Scheduler with its virtual clock at the
// Unix epoch.
func NewScheduler() *Scheduler {
	return &Scheduler{
		virtualNow: xtime.NewTimePoint(0, 0),
		waiters:    make(map[*waiter]struct{}),
	}
}

// Now returns the scheduler's current virtual time.
func (s *Scheduler) Now() xtime.TimePoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.virtualNow
}

// registerThread marks one more thread as live (participating in
// dead-lock detection).
func (s *Scheduler) registerThread() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.liveThreads++
}

// unregisterThread marks a thread as no longer live (terminated or
// never going to block again).
func (s *Scheduler) unregisterThread() {
	s.mu.Lock()
	s.liveThreads--
	s.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybeAdvanceLocked()
}

// blockUntimed registers the calling thread as blocked indefinitely and
// returns a channel that is closed when some other party wakes it via
// wake(). It never resolves on its own: a genuine dead-lock detection
// will call OnDeadlock, which by default panics.
func (s *Scheduler) blockUntimed() *waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &waiter{kind: waitUntimed, wake: make(chan struct{})}
	s.waiters[w] = struct{}{}
	s.maybeAdvanceLocked()

	return w
}

// blockTimed registers the calling thread as blocked until deadline (in
// virtual time) or until woken early.
func (s *Scheduler) blockTimed(deadline xtime.TimePoint) *waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &waiter{kind: waitTimed, deadline: deadline, wake: make(chan struct{})}
	s.waiters[w] = struct{}{}
	s.maybeAdvanceLocked()

	return w
}

// wake removes w from the waiter set and closes its channel, signalling
// early wakeup (e.g. a ConditionVariable.Signal/Broadcast or a
// Cancel()). Safe to call more than once.
func (s *Scheduler) wake(w *waiter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.waiters[w]; !ok {
		return
	}

	delete(s.waiters, w)
	close(w.wake)
}

// cancelWait removes w from the waiter set without closing its channel;
// used when the caller stops waiting for a reason other than being
// woken (e.g. it observed the channel closed already and is cleaning
// up). Safe to call after wake.
func (s *Scheduler) cancelWait(w *waiter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.waiters, w)
}

// maybeAdvanceLocked implements the heart of TFC: if every live thread
// is currently a registered waiter, either advance the virtual clock to
// the earliest deadline among them (waking every waiter whose deadline
// has now been reached) or, if any waiter has no deadline, declare a
// dead-lock. Must be called with s.mu held.
func (s *Scheduler) maybeAdvanceLocked() {
	if len(s.waiters) == 0 || len(s.waiters) < s.liveThreads {
		return
	}

	var (
		haveDeadline bool
		earliest     xtime.TimePoint
	)

	for w := range s.waiters {
		if w.kind != waitTimed {
			continue
		}

		if !haveDeadline || w.deadline.Before(earliest) {
			earliest = w.deadline
			haveDeadline = true
		}
	}

	if !haveDeadline {
		msg := fmt.Sprintf("Dead-Lock detected: %d thread(s) blocked with no finite deadline", len(s.waiters))
		s.mu.Unlock()
		OnDeadlock(msg)
		s.mu.Lock()

		return
	}

	s.virtualNow = earliest

	var toWake []*waiter

	for w := range s.waiters {
		if w.kind == waitTimed && !w.deadline.After(s.virtualNow) {
			toWake = append(toWake, w)
		}
	}

	sort.Slice(toWake, func(i, j int) bool { return toWake[i].deadline.Before(toWake[j].deadline) })

	for _, w := range toWake {
		delete(s.waiters, w)
		w.timedOut = true
		close(w.wake)
	}
}
