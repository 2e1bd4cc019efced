package osal

import (
	"time"

	"github.com/gpcc-project/gpcc/xtime"
)

// RWLock is a writer-preference reader/writer lock: once a writer is
// waiting, no further readers may acquire the lock until that writer (and
// any writer queued ahead of it) has run. Invariants (spec.md §4.2):
//
//   - at most one writer at a time;
//   - readers and a writer never coexist;
//   - releasing a lock the caller does not hold panics;
//   - the lock must be free when it goes out of scope (see Destroy).
type RWLock struct {
	mu            Mutex
	cond          *ConditionVariable
	readers       int
	writerActive  bool
	writersQueued int
}

// NewRWLock returns a ready-to-use, unlocked RWLock.
func NewRWLock() *RWLock {
	l := &RWLock{}
	l.cond = NewConditionVariable(&l.mu)

	return l
}

// ReadLock blocks until a read lock is acquired. It is a cancellation
// point: if t is non-nil and cancellation becomes pending while
// blocked, ReadLock unwinds via the distinguished cancellation signal
// and the lock is not acquired.
func (l *RWLock) ReadLock(t *Thread) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.writerActive || l.writersQueued > 0 {
		l.cond.waitLocked(t)
	}

	l.readers++
}

// ReadLockTimed blocks until a read lock is acquired or deadline passes.
// Returns false (and does not acquire the lock) if the deadline is
// reached first.
func (l *RWLock) ReadLockTimed(t *Thread, deadline xtime.TimePoint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.writerActive || l.writersQueued > 0 {
		if !l.cond.timeLimitedWaitLocked(t, deadline) {
			return false
		}
	}

	l.readers++

	return true
}

// ReleaseRead releases one read lock. Panics if no read lock is held.
func (l *RWLock) ReleaseRead() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.readers == 0 {
		Panic("RWLock.ReleaseRead: no read lock is held")
	}

	l.readers--
	if l.readers == 0 {
		l.cond.broadcastLocked()
	}
}

// WriteLock blocks until the write lock is acquired. Cancellation point,
// as ReadLock.
func (l *RWLock) WriteLock(t *Thread) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writersQueued++
	defer func() { l.writersQueued-- }()

	for l.writerActive || l.readers > 0 {
		l.cond.waitLocked(t)
	}

	l.writerActive = true
}

// WriteLockTimed blocks until the write lock is acquired or deadline
// passes.
func (l *RWLock) WriteLockTimed(t *Thread, deadline xtime.TimePoint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.writersQueued++
	defer func() { l.writersQueued-- }()

	for l.writerActive || l.readers > 0 {
		if !l.cond.timeLimitedWaitLocked(t, deadline) {
			return false
		}
	}

	l.writerActive = true

	return true
}

// ReleaseWrite releases the write lock. Panics if the caller does not
// hold it.
func (l *RWLock) ReleaseWrite() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.writerActive {
		Panic("RWLock.ReleaseWrite: no write lock is held")
	}

	l.writerActive = false
	l.cond.broadcastLocked()
}

// Destroy asserts the lock is free. Panics otherwise - matching the C++
// destructor's invariant.
func (l *RWLock) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writerActive || l.readers > 0 {
		Panic("RWLock.Destroy: lock is still held")
	}
}

// now is overridable only for tests that need a deterministic deadline
// reference without depending on the TFC clock plumbing.
var now = func() time.Time { return time.Now() }
