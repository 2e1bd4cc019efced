package tfc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gpcc-project/gpcc/osal"
)

// EntryFunc is a TFC Thread's body; see osal.EntryFunc.
type EntryFunc func(t *Thread) any

type cancellationSignal struct{}

type terminateSignal struct {
	payload any
}

// Thread is the TFC counterpart of osal.Thread: same lifecycle and
// cancellation contract, but every blocking operation participates in
// the Scheduler's virtual clock and dead-lock detection.
type Thread struct {
	sched *Scheduler

	mu    sync.Mutex
	state osal.State

	cancelEnabled atomic.Bool
	cancelPending atomic.Bool
	notifyMu      sync.Mutex
	notifyCh      chan struct{}

	joinMu sync.Mutex
	done   chan struct{}
	result any
	cancld bool
}

// NewThread returns a new, unstarted Thread bound to the given
// scheduler. Pass Default unless the test needs an isolated virtual
// clock.
func NewThread(sched *Scheduler) *Thread {
	t := &Thread{sched: sched, state: osal.StateNone}
	t.cancelEnabled.Store(true)
	t.notifyCh = make(chan struct{})

	return t
}

// Start launches entry. See osal.Thread.Start for the full contract.
func (t *Thread) Start(entry EntryFunc) error {
	t.mu.Lock()

	if t.state != osal.StateNone && t.state != osal.StateJoined {
		t.mu.Unlock()

		return fmt.Errorf("%w: tfc.Thread.Start called in state %s", osal.ErrInvalidState, t.state)
	}

	t.state = osal.StateStarting
	t.done = make(chan struct{})
	t.cancelPending.Store(false)
	t.notifyMu.Lock()
	t.notifyCh = make(chan struct{})
	t.notifyMu.Unlock()
	t.mu.Unlock()

	t.sched.registerThread()

	go t.run(entry)

	return nil
}

func (t *Thread) run(entry EntryFunc) {
	t.mu.Lock()
	t.state = osal.StateRunning
	t.mu.Unlock()

	defer func() {
		t.sched.unregisterThread()

		if r := recover(); r != nil {
			switch sig := r.(type) {
			case cancellationSignal:
				t.finish(nil, true)
			case terminateSignal:
				t.finish(sig.payload, false)
			default:
				panic(r)
			}
		}
	}()

	result := entry(t)
	t.finish(result, false)
}

func (t *Thread) finish(result any, cancelled bool) {
	t.mu.Lock()
	t.state = osal.StateTerminated
	t.result = result
	t.cancld = cancelled
	t.mu.Unlock()

	close(t.done)
}

// Cancel latches a cancellation request, as osal.Thread.Cancel.
func (t *Thread) Cancel() error {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	if state == osal.StateJoined {
		return fmt.Errorf("%w: tfc.Thread.Cancel called on a joined thread", osal.ErrInvalidState)
	}

	t.cancelPending.Store(true)

	t.notifyMu.Lock()
	select {
	case <-t.notifyCh:
	default:
		close(t.notifyCh)
	}
	t.notifyMu.Unlock()

	return nil
}

// IsCancellationPending reports whether Cancel has been called.
func (t *Thread) IsCancellationPending() bool { return t.cancelPending.Load() }

// SetCancellationEnabled toggles cancellation point delivery.
func (t *Thread) SetCancellationEnabled(enabled bool) bool {
	return t.cancelEnabled.Swap(enabled)
}

// TestForCancellation is an explicit cancellation point.
func (t *Thread) TestForCancellation() {
	if t.cancelEnabled.Load() && t.cancelPending.Load() {
		panic(cancellationSignal{})
	}
}

// TerminateNow unwinds immediately, delivering payload via Join,
// regardless of any pending cancellation (same resolution as
// osal.Thread.TerminateNow).
func (t *Thread) TerminateNow(payload any) {
	panic(terminateSignal{payload: payload})
}

func (t *Thread) notify() <-chan struct{} {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	return t.notifyCh
}

// Join blocks until the thread terminates. See osal.Thread.Join for the
// full contract; join-from-self detection is intentionally omitted here
// because TFC threads are a testing aid, not tracked by goroutine id,
// and Join itself is not one of the documented TFC wait sites.
func (t *Thread) Join() (result any, cancelled bool, err error) {
	t.joinMu.Lock()
	defer t.joinMu.Unlock()

	t.mu.Lock()
	state := t.state
	done := t.done
	t.mu.Unlock()

	if state == osal.StateNone {
		return nil, false, fmt.Errorf("%w: tfc.Thread.Join called before Start", osal.ErrInvalidState)
	}

	<-done

	t.mu.Lock()
	result = t.result
	cancelled = t.cancld
	t.state = osal.StateJoined
	t.mu.Unlock()

	if cancelled {
		return nil, true, nil
	}

	return result, false, nil
}
