// Package xstring provides a reference-counted immutable string wrapper
// and a fluent byte/number-to-string composer.
package xstring

import "sync/atomic"

// Shared wraps an immutable string behind a small reference-counted
// container so that copies of a Shared value share one backing
// allocation instead of each holding a private copy.
//
// Go's garbage collector already reclaims unreferenced strings, so the
// refcount here is purely diagnostic/observability plumbing (exposed via
// RefCount for tests) rather than a memory-management necessity; the
// type exists to preserve the copy-on-write-from-a-fresh-source
// semantics the original container provides: assigning a new string
// value allocates a fresh container rather than mutating the shared one.
type Shared struct {
	c *container
}

type container struct {
	str    string
	refCnt atomic.Int64
}

// NewShared wraps s in a fresh, singly-referenced container.
func NewShared(s string) Shared {
	c := &container{str: s}
	c.refCnt.Store(1)

	return Shared{c: c}
}

// Str returns the wrapped string.
func (s Shared) Str() string {
	if s.c == nil {
		return ""
	}

	return s.c.str
}

// Clone returns a new Shared sharing the same backing container,
// incrementing its reference count.
func (s Shared) Clone() Shared {
	if s.c == nil {
		return Shared{}
	}

	s.c.refCnt.Add(1)

	return Shared{c: s.c}
}

// Release decrements the reference count of the backing container. It is
// safe, but not required, to call on a value obtained via Clone; Go's GC
// reclaims the container regardless once it becomes unreachable.
func (s Shared) Release() {
	if s.c == nil {
		return
	}

	s.c.refCnt.Add(-1)
}

// RefCount reports the current reference count, for diagnostics and
// tests only.
func (s Shared) RefCount() int64 {
	if s.c == nil {
		return 0
	}

	return s.c.refCnt.Load()
}

// Assign replaces s's contents with a fresh, independent container
// wrapping value - it never mutates the previously shared container, so
// other Shared values cloned from s are unaffected.
func (s *Shared) Assign(value string) {
	*s = NewShared(value)
}
