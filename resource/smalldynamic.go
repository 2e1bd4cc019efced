package resource

import (
	"sync"

	"github.com/gpcc-project/gpcc/osal"
)

type lockEntry struct {
	readers      int
	writerActive bool
}

func (e *lockEntry) locked() bool { return e.readers > 0 || e.writerActive }

// SmallDynamicNamedRWLock is a flat, name-keyed registry of read/write
// locks. Entries are created on first acquisition and auto-deleted the
// moment they transition back to unlocked, so the registry's footprint
// tracks only currently-contended names.
type SmallDynamicNamedRWLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewSmallDynamicNamedRWLock returns an empty registry.
func NewSmallDynamicNamedRWLock() *SmallDynamicNamedRWLock {
	return &SmallDynamicNamedRWLock{entries: make(map[string]*lockEntry)}
}

// TestRead reports whether GetRead(name) would currently succeed,
// without side effects.
func (l *SmallDynamicNamedRWLock) TestRead(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]

	return !ok || !e.writerActive
}

// TestWrite reports whether GetWrite(name) would currently succeed,
// without side effects.
func (l *SmallDynamicNamedRWLock) TestWrite(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]

	return !ok || !e.locked()
}

// GetRead acquires a read lock on name, or returns ErrLockConflict if
// a writer currently holds it.
func (l *SmallDynamicNamedRWLock) GetRead(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if ok && e.writerActive {
		return ErrLockConflict
	}

	if !ok {
		e = &lockEntry{}
		l.entries[name] = e
	}

	e.readers++

	return nil
}

// GetWrite acquires a write lock on name, or returns ErrLockConflict
// if it is already read- or write-locked.
func (l *SmallDynamicNamedRWLock) GetWrite(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if ok && e.locked() {
		return ErrLockConflict
	}

	if !ok {
		e = &lockEntry{}
		l.entries[name] = e
	}

	e.writerActive = true

	return nil
}

// ReleaseRead releases one read lock on name. It is a logic error
// (panic) to call this for a name with no active read lock.
func (l *SmallDynamicNamedRWLock) ReleaseRead(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if !ok || e.readers == 0 {
		osal.Panic("resource.SmallDynamicNamedRWLock.ReleaseRead: %q has no active read lock", name)
	}

	e.readers--

	if !e.locked() {
		delete(l.entries, name)
	}
}

// ReleaseWrite releases the write lock on name. It is a logic error
// (panic) to call this for a name with no active write lock.
func (l *SmallDynamicNamedRWLock) ReleaseWrite(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if !ok || !e.writerActive {
		osal.Panic("resource.SmallDynamicNamedRWLock.ReleaseWrite: %q has no active write lock", name)
	}

	e.writerActive = false

	if !e.locked() {
		delete(l.entries, name)
	}
}

// IsLocked reports whether name currently has any active lock.
func (l *SmallDynamicNamedRWLock) IsLocked(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.entries[name]

	return ok
}

// AnyLocks reports whether the registry currently holds any lock at
// all.
func (l *SmallDynamicNamedRWLock) AnyLocks() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries) > 0
}
