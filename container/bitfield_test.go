package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpcc-project/gpcc/container"
)

func Test_BitField_DefaultConstructor(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(0)
	require.Equal(t, uint64(0), bf.GetSize())
}

func Test_BitField_ConstructorClearsBits(t *testing.T) {
	t.Parallel()

	for _, size := range []uint64{0, 1, 7, 8, 9, 63, 64, 65, 200} {
		bf := container.NewBitField(size)
		require.Equal(t, size, bf.GetSize())

		for i := uint64(0); i < size; i++ {
			v, err := bf.GetBit(i)
			require.NoError(t, err)
			require.False(t, v)
		}
	}
}

// Property 2: for every BitField of length n and every i in [0, n):
// write(i, v); read(i) == v; for j != i, bit j is unchanged.
func Test_BitField_WriteReadIndependence(t *testing.T) {
	t.Parallel()

	const n = 128

	bf := container.NewBitField(n)

	for i := uint64(0); i < n; i++ {
		require.NoError(t, bf.SetBit(i))

		v, err := bf.GetBit(i)
		require.NoError(t, err)
		require.True(t, v)

		for j := uint64(0); j < n; j++ {
			if j == i {
				continue
			}

			vj, err := bf.GetBit(j)
			require.NoError(t, err)
			require.False(t, vj, "bit %d must be unaffected by writing bit %d", j, i)
		}

		require.NoError(t, bf.ClearBit(i))
	}
}

func Test_BitField_OutOfRange(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(16)

	require.ErrorIs(t, bf.SetBit(16), container.ErrBitIndexOutOfRange)
	require.ErrorIs(t, bf.ClearBit(16), container.ErrBitIndexOutOfRange)

	_, err := bf.GetBit(16)
	require.ErrorIs(t, err, container.ErrBitIndexOutOfRange)
}

// After resize(m > n), bits in [n, m) read as 0.
func Test_BitField_ResizeGrow_NewBitsAreZero(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(8)
	bf.SetAll()

	bf.Resize(20)
	require.Equal(t, uint64(20), bf.GetSize())

	for i := uint64(0); i < 8; i++ {
		v, err := bf.GetBit(i)
		require.NoError(t, err)
		require.True(t, v)
	}

	for i := uint64(8); i < 20; i++ {
		v, err := bf.GetBit(i)
		require.NoError(t, err)
		require.False(t, v)
	}
}

func Test_BitField_ResizeShrink_PreservesPrefix(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(20)
	require.NoError(t, bf.SetBit(3))
	require.NoError(t, bf.SetBit(15))

	bf.Resize(10)
	require.Equal(t, uint64(10), bf.GetSize())

	v, err := bf.GetBit(3)
	require.NoError(t, err)
	require.True(t, v)
}

func Test_BitField_SetAllClearAll(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(70)
	bf.SetAll()

	for i := uint64(0); i < 70; i++ {
		v, _ := bf.GetBit(i)
		require.True(t, v)
	}

	bf.ClearAll()

	for i := uint64(0); i < 70; i++ {
		v, _ := bf.GetBit(i)
		require.False(t, v)
	}
}

func Test_BitField_FindFirstSetBit(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(64)
	require.NoError(t, bf.SetBit(7))
	require.NoError(t, bf.SetBit(16))
	require.NoError(t, bf.SetBit(31))
	require.NoError(t, bf.SetBit(63))

	require.Equal(t, uint64(7), bf.FindFirstSetBit(0))
	require.Equal(t, uint64(16), bf.FindFirstSetBit(8))
	require.Equal(t, uint64(31), bf.FindFirstSetBit(17))
	require.Equal(t, uint64(63), bf.FindFirstSetBit(32))
	require.Equal(t, container.NoBit, bf.FindFirstSetBit(64))
}

func Test_BitField_FindFirstSetBit_UnusedTopBitsIgnored(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(50)
	require.NoError(t, bf.SetBit(49))

	// Bits 50..63 of the backing word do not logically exist.
	require.Equal(t, uint64(49), bf.FindFirstSetBit(10))
	require.Equal(t, container.NoBit, bf.FindFirstSetBit(50))
}

func Test_BitField_FindFirstClearedBit(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(16)
	bf.SetAll()
	require.NoError(t, bf.ClearBit(5))
	require.NoError(t, bf.ClearBit(15))

	require.Equal(t, uint64(5), bf.FindFirstClearedBit(0))
	require.Equal(t, uint64(15), bf.FindFirstClearedBit(6))
}

func Test_BitField_FindFirstClearedBit_UnusedTopBitsIgnored(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(50)
	bf.SetAll()

	require.Equal(t, container.NoBit, bf.FindFirstClearedBit(0))
}

func Test_BitField_FindFirstSetBitReverse(t *testing.T) {
	t.Parallel()

	bf := container.NewBitField(64)
	require.NoError(t, bf.SetBit(7))
	require.NoError(t, bf.SetBit(48))

	require.Equal(t, uint64(48), bf.FindFirstSetBitReverse(63))
	require.Equal(t, uint64(7), bf.FindFirstSetBitReverse(47))
	require.Equal(t, container.NoBit, bf.FindFirstSetBitReverse(6))
}

func Test_BitField_Equal(t *testing.T) {
	t.Parallel()

	a := container.NewBitField(8)
	b := container.NewBitField(8)
	require.True(t, a.Equal(b))

	require.NoError(t, a.SetBit(3))
	require.False(t, a.Equal(b))

	require.NoError(t, b.SetBit(3))
	require.True(t, a.Equal(b))

	c := container.NewBitField(9)
	require.False(t, a.Equal(c))
}

func Test_BitField_FromBytes(t *testing.T) {
	t.Parallel()

	bf, err := container.NewBitFieldFromBytes([]byte{0b00000010}, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(8), bf.GetSize())

	v0, _ := bf.GetBit(0)
	require.False(t, v0)

	v1, _ := bf.GetBit(1)
	require.True(t, v1)
}

func Test_BitField_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	a := container.NewBitField(8)
	require.NoError(t, a.SetBit(2))

	b := a.Clone()
	require.NoError(t, b.SetBit(3))

	v, _ := a.GetBit(3)
	require.False(t, v, "mutating the clone must not affect the original")
}
