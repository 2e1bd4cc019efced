// Package xtime provides overflow-checked monotonic time points and
// nanosecond time spans.
//
// TimePoint and TimeSpan are value types. Every constructor and every
// arithmetic operation that could overflow returns an error instead of
// wrapping silently; on error the receiver is left unchanged.
package xtime

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors returned by xtime operations.
var (
	ErrOverflow      = errors.New("xtime: overflow")
	ErrNegativeInput = errors.New("xtime: negative input not allowed")
)

// TimeSpan is a signed duration expressed in nanoseconds, matching the
// range of a signed 64-bit integer.
type TimeSpan struct {
	ns int64
}

// Zero is the zero-length TimeSpan.
var Zero = TimeSpan{}

// TimeSpanFromNS constructs a TimeSpan directly from a nanosecond count.
// This constructor cannot overflow.
func TimeSpanFromNS(ns int64) TimeSpan {
	return TimeSpan{ns: ns}
}

// TimeSpanFromUS constructs a TimeSpan from a microsecond count, failing
// if the equivalent nanosecond value would overflow an int64.
func TimeSpanFromUS(us int64) (TimeSpan, error) {
	return timeSpanFromScaled(us, 1_000, "microseconds")
}

// TimeSpanFromMS constructs a TimeSpan from a millisecond count, failing
// on overflow.
func TimeSpanFromMS(ms int64) (TimeSpan, error) {
	return timeSpanFromScaled(ms, 1_000_000, "milliseconds")
}

// TimeSpanFromSec constructs a TimeSpan from a second count, failing on
// overflow.
func TimeSpanFromSec(sec int64) (TimeSpan, error) {
	return timeSpanFromScaled(sec, 1_000_000_000, "seconds")
}

// TimeSpanFromMin constructs a TimeSpan from a minute count, failing on
// overflow.
func TimeSpanFromMin(min int64) (TimeSpan, error) {
	return timeSpanFromScaled(min, 60*1_000_000_000, "minutes")
}

// TimeSpanFromHours constructs a TimeSpan from an hour count, failing on
// overflow.
func TimeSpanFromHours(hr int64) (TimeSpan, error) {
	return timeSpanFromScaled(hr, 3600*1_000_000_000, "hours")
}

// TimeSpanFromDays constructs a TimeSpan from a day count, failing on
// overflow.
func TimeSpanFromDays(days int64) (TimeSpan, error) {
	return timeSpanFromScaled(days, 24*3600*1_000_000_000, "days")
}

func timeSpanFromScaled(units int64, nsPerUnit int64, unitName string) (TimeSpan, error) {
	ns, ok := mulOverflowsInt64(units, nsPerUnit)
	if !ok {
		return TimeSpan{}, fmt.Errorf("%w: %d %s does not fit in an int64 nanosecond span", ErrOverflow, units, unitName)
	}

	return TimeSpan{ns: ns}, nil
}

// mulOverflowsInt64 returns (a*b, true) if the product fits in an int64,
// or (0, false) if it would overflow.
func mulOverflowsInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}

	result := a * b
	if result/b != a {
		return 0, false
	}

	return result, true
}

// NS returns the span as a count of nanoseconds.
func (s TimeSpan) NS() int64 { return s.ns }

// Add returns s+other, failing if the sum would overflow an int64.
func (s TimeSpan) Add(other TimeSpan) (TimeSpan, error) {
	sum, ok := addOverflowsInt64(s.ns, other.ns)
	if !ok {
		return TimeSpan{}, fmt.Errorf("%w: adding time spans", ErrOverflow)
	}

	return TimeSpan{ns: sum}, nil
}

// Sub returns s-other, failing if the difference would overflow an int64.
func (s TimeSpan) Sub(other TimeSpan) (TimeSpan, error) {
	diff, ok := addOverflowsInt64(s.ns, -other.ns)
	if !ok && other.ns != math.MinInt64 {
		return TimeSpan{}, fmt.Errorf("%w: subtracting time spans", ErrOverflow)
	}

	if other.ns == math.MinInt64 {
		// -other.ns itself overflows; s-MinInt64 only succeeds for s<0.
		if s.ns < 0 {
			return TimeSpan{ns: s.ns - other.ns}, nil
		}

		return TimeSpan{}, fmt.Errorf("%w: subtracting time spans", ErrOverflow)
	}

	return TimeSpan{ns: diff}, nil
}

// Negate returns -s, failing only for the single unrepresentable value
// math.MinInt64.
func (s TimeSpan) Negate() (TimeSpan, error) {
	if s.ns == math.MinInt64 {
		return TimeSpan{}, fmt.Errorf("%w: negating minimum time span", ErrOverflow)
	}

	return TimeSpan{ns: -s.ns}, nil
}

// Compare returns -1, 0, or 1 as s is less than, equal to, or greater
// than other.
func (s TimeSpan) Compare(other TimeSpan) int {
	switch {
	case s.ns < other.ns:
		return -1
	case s.ns > other.ns:
		return 1
	default:
		return 0
	}
}

// addOverflowsInt64 returns (a+b, true) if the sum fits in an int64, or
// (0, false) on overflow.
func addOverflowsInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}

	return sum, true
}

func (s TimeSpan) String() string {
	return fmt.Sprintf("%dns", s.ns)
}
