package tfc

import (
	"github.com/gpcc-project/gpcc/osal"
	"github.com/gpcc-project/gpcc/xtime"
)

// RWLock is the TFC counterpart of osal.RWLock: same writer-preference
// and invariants, but blocked waits participate in sched's dead-lock
// detection.
type RWLock struct {
	mu            *Mutex
	cond          *ConditionVariable
	readers       int
	writerActive  bool
	writersQueued int
}

// NewRWLock returns a ready-to-use, unlocked RWLock bound to sched.
func NewRWLock(sched *Scheduler) *RWLock {
	mu := NewMutex()

	return &RWLock{mu: mu, cond: NewConditionVariable(mu, sched)}
}

// ReadLock blocks until a read lock is acquired.
func (l *RWLock) ReadLock(t *Thread) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.writerActive || l.writersQueued > 0 {
		l.cond.Wait(t)
	}

	l.readers++
}

// ReadLockTimed blocks until a read lock is acquired or deadline (virtual
// time) passes.
func (l *RWLock) ReadLockTimed(t *Thread, deadline xtime.TimePoint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.writerActive || l.writersQueued > 0 {
		if l.cond.TimeLimitedWait(t, deadline) {
			return false
		}
	}

	l.readers++

	return true
}

// ReleaseRead releases one read lock. Panics if none is held.
func (l *RWLock) ReleaseRead() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.readers == 0 {
		osal.Panic("tfc.RWLock.ReleaseRead: no read lock is held")
	}

	l.readers--
	if l.readers == 0 {
		l.cond.Broadcast()
	}
}

// WriteLock blocks until the write lock is acquired.
func (l *RWLock) WriteLock(t *Thread) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writersQueued++
	defer func() { l.writersQueued-- }()

	for l.writerActive || l.readers > 0 {
		l.cond.Wait(t)
	}

	l.writerActive = true
}

// WriteLockTimed blocks until the write lock is acquired or deadline
// (virtual time) passes.
func (l *RWLock) WriteLockTimed(t *Thread, deadline xtime.TimePoint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writersQueued++
	defer func() { l.writersQueued-- }()

	for l.writerActive || l.readers > 0 {
		if l.cond.TimeLimitedWait(t, deadline) {
			return false
		}
	}

	l.writerActive = true

	return true
}

// ReleaseWrite releases the write lock. Panics if not held.
func (l *RWLock) ReleaseWrite() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.writerActive {
		osal.Panic("tfc.RWLock.ReleaseWrite: no write lock is held")
	}

	l.writerActive = false
	l.cond.Broadcast()
}

// Destroy asserts the lock is free. Panics otherwise.
func (l *RWLock) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writerActive || l.readers > 0 {
		osal.Panic("tfc.RWLock.Destroy: lock is still held")
	}
}
