// Package resource implements the named RW-lock registries used to
// serialize concurrent access to resources identified by name rather
// than by a compiled-in handle: a flat registry (SmallDynamicNamedRWLock)
// and a path-hierarchic one (HierarchicNamedRWLock) whose write locks
// conflict with every ancestor and descendant of the locked path.
package resource

import "errors"

// ErrLockConflict is returned by GetRead/GetWrite when the requested
// lock cannot be granted immediately.
var ErrLockConflict = errors.New("resource: lock conflict")
