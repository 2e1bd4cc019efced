package osal

import "time"

// Sleep_ms blocks the calling thread for the given number of
// milliseconds. Cancellation point.
func Sleep_ms(t *Thread, ms int64) { //nolint:revive,stylecheck // name matches the source design's Sleep_ms/Sleep_ns pair
	Sleep_ns(t, ms*1_000_000)
}

// Sleep_ns blocks the calling thread for the given number of
// nanoseconds. Cancellation point.
func Sleep_ns(t *Thread, ns int64) { //nolint:revive,stylecheck
	if t != nil {
		t.TestForCancellation()
	}

	if ns <= 0 {
		return
	}

	timer := time.NewTimer(time.Duration(ns))
	defer timer.Stop()

	if t != nil && t.cancelEnabled.Load() {
		select {
		case <-timer.C:
		case <-t.cancelNotify():
			panic(cancellationSignal{})
		}

		return
	}

	<-timer.C
}
