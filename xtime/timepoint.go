package xtime

import (
	"fmt"
	"time"
)

const nsPerSec = 1_000_000_000

// TimePoint is a normalized (seconds, nanoseconds) pair where
// 0 <= nsec < 1e9. Seconds may be negative (points before the epoch).
type TimePoint struct {
	sec  int64
	nsec int64
}

// Now returns the current TimePoint from the given clock source. Passing
// time.Now directly yields realtime; a function reading a monotonic
// clock yields a monotonic reading. The conversion itself never fails.
func Now(clock func() time.Time) TimePoint {
	t := clock()

	return TimePoint{sec: t.Unix(), nsec: int64(t.Nanosecond())}
}

// NewTimePoint constructs a normalized TimePoint from raw seconds and
// nanoseconds; nsec may be outside [0, 1e9) and will be normalized.
func NewTimePoint(sec, nsec int64) TimePoint {
	return normalize(sec, nsec)
}

func normalize(sec, nsec int64) TimePoint {
	if nsec >= 0 {
		sec += nsec / nsPerSec
		nsec %= nsPerSec
	} else {
		// Euclidean normalization for negative nsec.
		borrow := (-nsec + nsPerSec - 1) / nsPerSec
		sec -= borrow
		nsec += borrow * nsPerSec
	}

	return TimePoint{sec: sec, nsec: nsec}
}

// Seconds returns the whole-second component.
func (p TimePoint) Seconds() int64 { return p.sec }

// Nanoseconds returns the sub-second nanosecond component, in [0, 1e9).
func (p TimePoint) Nanoseconds() int64 { return p.nsec }

// Add returns p+span, failing on signed-64-bit overflow of the resulting
// second count. p is left unchanged on error.
func (p TimePoint) Add(span TimeSpan) (TimePoint, error) {
	deltaSec := span.NS() / nsPerSec
	deltaNsec := span.NS() % nsPerSec

	sec, ok := addOverflowsInt64(p.sec, deltaSec)
	if !ok {
		return TimePoint{}, fmt.Errorf("%w: adding time span to time point", ErrOverflow)
	}

	result := normalize(sec, p.nsec+deltaNsec)

	return result, nil
}

// Sub returns the TimeSpan p-other. Fails if the difference would
// overflow an int64 nanosecond count.
func (p TimePoint) Sub(other TimePoint) (TimeSpan, error) {
	secDiff, ok := addOverflowsInt64(p.sec, -other.sec)
	if !ok {
		return TimeSpan{}, fmt.Errorf("%w: time point difference in seconds", ErrOverflow)
	}

	nsecDiff := p.nsec - other.nsec

	nsTotal, ok := mulOverflowsInt64(secDiff, nsPerSec)
	if !ok {
		return TimeSpan{}, fmt.Errorf("%w: time point difference exceeds nanosecond range", ErrOverflow)
	}

	total, ok := addOverflowsInt64(nsTotal, nsecDiff)
	if !ok {
		return TimeSpan{}, fmt.Errorf("%w: time point difference exceeds nanosecond range", ErrOverflow)
	}

	return TimeSpan{ns: total}, nil
}

// Before reports whether p is strictly earlier than other.
func (p TimePoint) Before(other TimePoint) bool {
	return p.sec < other.sec || (p.sec == other.sec && p.nsec < other.nsec)
}

// After reports whether p is strictly later than other.
func (p TimePoint) After(other TimePoint) bool {
	return other.Before(p)
}

func (p TimePoint) String() string {
	return fmt.Sprintf("%d.%09ds", p.sec, p.nsec)
}
