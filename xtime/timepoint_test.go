package xtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpcc-project/gpcc/xtime"
)

func Test_NewTimePoint_Normalizes_Negative_Nanoseconds(t *testing.T) {
	t.Parallel()

	p := xtime.NewTimePoint(10, -1)

	assert.Equal(t, int64(9), p.Seconds())
	assert.Equal(t, int64(999_999_999), p.Nanoseconds())
}

func Test_NewTimePoint_Normalizes_Overflowing_Nanoseconds(t *testing.T) {
	t.Parallel()

	p := xtime.NewTimePoint(0, 1_500_000_000)

	assert.Equal(t, int64(1), p.Seconds())
	assert.Equal(t, int64(500_000_000), p.Nanoseconds())
}

func Test_TimePoint_Add_Then_Sub_RoundTrips(t *testing.T) {
	t.Parallel()

	p := xtime.NewTimePoint(1000, 500)
	span, err := xtime.TimeSpanFromMS(250)
	require.NoError(t, err)

	moved, err := p.Add(span)
	require.NoError(t, err)

	back, err := moved.Sub(p)
	require.NoError(t, err)

	assert.Equal(t, span.NS(), back.NS())
}

func Test_TimePoint_Before_And_After(t *testing.T) {
	t.Parallel()

	earlier := xtime.NewTimePoint(1, 0)
	later := xtime.NewTimePoint(1, 1)

	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.Before(earlier))
}
