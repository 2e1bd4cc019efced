package tfc

import (
	"sync"

	"github.com/gpcc-project/gpcc/osal"
)

// Mutex is the TFC counterpart of osal.Mutex. Lock does not register
// with the scheduler's dead-lock detector: a thread blocked acquiring a
// plain mutex is assumed to be released promptly by its holder and is
// not, by itself, evidence of a stuck simulation. Use ConditionVariable
// and Semaphore for the primitives the TFC dead-lock detector monitors.
type Mutex struct {
	mu     sync.Mutex
	locked bool
}

// NewMutex returns a ready-to-use, unlocked Mutex.
func NewMutex() *Mutex { return &Mutex{} }

// Lock acquires the mutex, blocking the calling goroutine if necessary.
func (m *Mutex) Lock() {
	m.mu.Lock()
	m.locked = true
}

// Unlock releases the mutex. Panics if the calling goroutine does not
// hold it is not checked here (TFC's Mutex trusts cooperative callers,
// matching the real implementation's lock/unlock pairing discipline
// enforced by its own osal.Mutex).
func (m *Mutex) Unlock() {
	if !m.locked {
		osal.Panic("tfc.Mutex.Unlock: mutex is not locked")
	}

	m.locked = false
	m.mu.Unlock()
}
