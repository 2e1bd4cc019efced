package osal

import "sync"

// Mutex is a non-recursive, error-checking mutex. Releasing a Mutex that
// the calling goroutine does not hold panics, matching the spec's
// invariant-violation taxonomy (see spec.md §7: "a thread that releases
// a lock it does not hold panics").
//
// Unlike sync.Mutex, Mutex tracks its owner so Unlock can detect misuse;
// the extra bookkeeping mirrors the error-checking pthread mutex the
// original OSAL wraps on POSIX platforms.
type Mutex struct {
	mu      sync.Mutex
	locked  bool
	ownerID int64
}

// NewMutex returns a ready-to-use, unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Lock blocks until the mutex is acquired. Lock is a cancellation point
// only in the sense that it may block indefinitely; unlike
// ConditionVariable.Wait it has no documented cancellation semantics in
// the source design, so it is not wired to Thread cancellation.
func (m *Mutex) Lock() {
	m.mu.Lock()
	m.locked = true
	m.ownerID = goroutineID()
}

// TryLock attempts to acquire the mutex without blocking, returning
// false if it is already held.
func (m *Mutex) TryLock() bool {
	if !m.mu.TryLock() {
		return false
	}

	m.locked = true
	m.ownerID = goroutineID()

	return true
}

// Unlock releases the mutex. Panics if the calling goroutine does not
// hold it.
func (m *Mutex) Unlock() {
	if !m.locked || m.ownerID != goroutineID() {
		Panic("Mutex.Unlock: caller does not hold the lock")
	}

	m.locked = false
	m.ownerID = 0
	m.mu.Unlock()
}

// IsLockedByCaller reports whether the calling goroutine currently holds
// the lock. Introspection only - racy against concurrent Unlock by
// design, intended for assertions in single-threaded test setup.
func (m *Mutex) IsLockedByCaller() bool {
	return m.locked && m.ownerID == goroutineID()
}
