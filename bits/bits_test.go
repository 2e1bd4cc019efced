package bits_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gpcc-project/gpcc/bits"
)

func Test_ReverseBits32_RoundTrips(t *testing.T) {
	t.Parallel()

	const input = 0x12345678

	reversed := bits.ReverseBits32(input)
	assert.Equal(t, uint32(0x1E6A2C48), reversed)

	assert.Equal(t, uint32(input), bits.ReverseBits32(reversed))
}

func Test_CountLeadingZeros_Of_Zero_Is_Full_Width(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 32, bits.CountLeadingZeros32(0))
	assert.Equal(t, 64, bits.CountLeadingZeros64(0))
}

func Test_CountTrailingZeros_Of_Zero_Is_Full_Width(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 32, bits.CountTrailingZeros32(0))
	assert.Equal(t, 64, bits.CountTrailingZeros64(0))
}

func Test_AddOverflows64_Detects_Overflow(t *testing.T) {
	t.Parallel()

	_, ok := bits.AddOverflows64(math.MaxInt64, 1)
	assert.False(t, ok)

	sum, ok := bits.AddOverflows64(1, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(3), sum)
}

func Test_SubOverflows32_Detects_Overflow(t *testing.T) {
	t.Parallel()

	_, ok := bits.SubOverflows32(math.MinInt32, 1)
	assert.False(t, ok)
}

func Test_ReverseBitsN_Masks_To_Requested_Width(t *testing.T) {
	t.Parallel()

	// 0b101 (5) reversed in 3 bits is 0b101 (5); in 4 bits it is 0b1010 (10).
	assert.Equal(t, uint32(5), bits.ReverseBitsN(0b101, 3))
	assert.Equal(t, uint32(10), bits.ReverseBitsN(0b0101, 4))
	assert.Equal(t, uint32(0), bits.ReverseBitsN(0xFFFFFFFF, 0))
}
