package resource

import (
	"strings"
	"sync"

	"github.com/gpcc-project/gpcc/osal"
)

// HierarchicNamedRWLock is a named RW-lock registry whose names are
// '/'-separated paths. Locking "A/B" counts upward as a descendant
// lock of "A" (and of the root). A write lock on any node conflicts
// with any ancestor or descendant lock of any kind; read locks at
// unrelated or ancestor/descendant positions are mutually compatible.
type HierarchicNamedRWLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewHierarchicNamedRWLock returns an empty registry.
func NewHierarchicNamedRWLock() *HierarchicNamedRWLock {
	return &HierarchicNamedRWLock{entries: make(map[string]*lockEntry)}
}

// isRelated reports whether a and b are the same path or one is an
// ancestor of the other (path-prefix up to a '/' boundary).
func isRelated(a, b string) bool {
	if a == b {
		return true
	}

	if strings.HasPrefix(b, a+"/") {
		return true
	}

	return strings.HasPrefix(a, b+"/")
}

// conflictsWithWrite reports whether acquiring a write lock on path
// would conflict with any currently locked entry (of any kind).
func (l *HierarchicNamedRWLock) conflictsWithWrite(path string) bool {
	for name, e := range l.entries {
		if e.locked() && isRelated(name, path) {
			return true
		}
	}

	return false
}

// conflictsWithRead reports whether acquiring a read lock on path
// would conflict with any currently write-locked entry.
func (l *HierarchicNamedRWLock) conflictsWithRead(path string) bool {
	for name, e := range l.entries {
		if e.writerActive && isRelated(name, path) {
			return true
		}
	}

	return false
}

// TestRead reports whether GetRead(path) would currently succeed.
func (l *HierarchicNamedRWLock) TestRead(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return !l.conflictsWithRead(path)
}

// TestWrite reports whether GetWrite(path) would currently succeed.
func (l *HierarchicNamedRWLock) TestWrite(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return !l.conflictsWithWrite(path)
}

// GetRead acquires a read lock on path.
func (l *HierarchicNamedRWLock) GetRead(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conflictsWithRead(path) {
		return ErrLockConflict
	}

	e, ok := l.entries[path]
	if !ok {
		e = &lockEntry{}
		l.entries[path] = e
	}

	e.readers++

	return nil
}

// GetWrite acquires a write lock on path.
func (l *HierarchicNamedRWLock) GetWrite(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conflictsWithWrite(path) {
		return ErrLockConflict
	}

	e, ok := l.entries[path]
	if !ok {
		e = &lockEntry{}
		l.entries[path] = e
	}

	e.writerActive = true

	return nil
}

// ReleaseRead releases one read lock on path. Logic error (panic) if
// path has no active read lock.
func (l *HierarchicNamedRWLock) ReleaseRead(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[path]
	if !ok || e.readers == 0 {
		osal.Panic("resource.HierarchicNamedRWLock.ReleaseRead: %q has no active read lock", path)
	}

	e.readers--

	if !e.locked() {
		delete(l.entries, path)
	}
}

// ReleaseWrite releases the write lock on path. Logic error (panic) if
// path has no active write lock.
func (l *HierarchicNamedRWLock) ReleaseWrite(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[path]
	if !ok || !e.writerActive {
		osal.Panic("resource.HierarchicNamedRWLock.ReleaseWrite: %q has no active write lock", path)
	}

	e.writerActive = false

	if !e.locked() {
		delete(l.entries, path)
	}
}

// IsLocked reports whether path currently has any active lock.
func (l *HierarchicNamedRWLock) IsLocked(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.entries[path]

	return ok
}

// AnyLocks reports whether the registry currently holds any lock at
// all.
func (l *HierarchicNamedRWLock) AnyLocks() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries) > 0
}

// Reset unconditionally clears every lock. Callers must be able to
// prove no one still holds one of them; it exists for subsystem-level
// recovery, not routine use.
func (l *HierarchicNamedRWLock) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = make(map[string]*lockEntry)
}

// Destroy panics if any lock is still held.
func (l *HierarchicNamedRWLock) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) != 0 {
		osal.Panic("resource.HierarchicNamedRWLock.Destroy: %d lock(s) still held", len(l.entries))
	}
}
