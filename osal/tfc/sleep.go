package tfc

import "github.com/gpcc-project/gpcc/xtime"

// Sleep_ms blocks the calling thread for ms milliseconds of *virtual*
// time: the scheduler advances its clock instantly once every live
// thread is blocked, so this never costs wall-clock time unless another
// thread is doing real work concurrently.
func Sleep_ms(t *Thread, ms int64) { //nolint:revive,stylecheck
	Sleep_ns(t, ms*1_000_000)
}

// Sleep_ns is Sleep_ms's nanosecond-resolution counterpart.
func Sleep_ns(t *Thread, ns int64) { //nolint:revive,stylecheck
	if t != nil {
		t.TestForCancellation()
	}

	if ns <= 0 {
		return
	}

	sched := Default
	if t != nil {
		sched = t.sched
	}

	span := xtime.TimeSpanFromNS(ns)

	deadline, err := sched.Now().Add(span)
	if err != nil {
		// Span does not fit from the current virtual instant; treat as
		// an immediately-expired sleep rather than silently blocking
		// forever.
		return
	}

	w := sched.blockTimed(deadline)

	if t != nil && t.cancelEnabled.Load() {
		select {
		case <-w.wake:
		case <-t.notify():
			sched.cancelWait(w)
			panic(cancellationSignal{})
		}

		return
	}

	<-w.wake
}
