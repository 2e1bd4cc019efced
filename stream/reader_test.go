package stream_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpcc-project/gpcc/stream"
)

func Test_Reader_MultiByteRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	require.NoError(t, w.Write_uint16(0xBEEF))
	require.NoError(t, w.Write_uint32(0xDEADBEEF))
	require.NoError(t, w.Write_int64(-1234567890123))

	r := stream.NewReader(&buf, stream.LittleEndian)

	v16, err := r.Read_uint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), v16)

	v32, err := r.Read_uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), v32)

	v64, err := r.Read_int64()
	require.NoError(t, err)
	require.Equal(t, int64(-1234567890123), v64)
}

func Test_Reader_BitsRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	require.NoError(t, w.WriteBits(0b101, 3))
	require.NoError(t, w.WriteBits(0b11001, 5))
	require.NoError(t, w.Close())

	r := stream.NewReader(&buf, stream.LittleEndian)

	v1, err := r.ReadBits(3)
	require.NoError(t, err)
	require.Equal(t, uint64(0b101), v1)

	v2, err := r.ReadBits(5)
	require.NoError(t, err)
	require.Equal(t, uint64(0b11001), v2)

	require.NoError(t, r.EnsureAllDataConsumed(stream.ExpectZeroBits))
}

func Test_Reader_EnsureAllDataConsumed_TrailingBitsRejected(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	require.NoError(t, w.WriteBits(0b1, 3))
	require.NoError(t, w.Close())

	r := stream.NewReader(&buf, stream.LittleEndian)

	_, err := r.ReadBits(1)
	require.NoError(t, err)

	err = r.EnsureAllDataConsumed(stream.ExpectZeroBits)
	require.ErrorIs(t, err, stream.ErrTrailingBits)

	err = r.EnsureAllDataConsumed(stream.ExpectSevenOrLessBits)
	require.NoError(t, err)
}

func Test_Reader_StringAndLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	require.NoError(t, w.Write_string("hello"))
	require.NoError(t, w.Write_line("world"))

	r := stream.NewReader(&buf, stream.LittleEndian)

	s, err := r.Read_string()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	line, err := r.Read_line()
	require.NoError(t, err)
	require.Equal(t, "world", line)
}

func Test_Reader_StickyErrorOnShortRead(t *testing.T) {
	t.Parallel()

	r := stream.NewReader(bytes.NewReader([]byte{0x01}), stream.LittleEndian)

	_, err := r.Read_uint32()
	require.Error(t, err)
	require.Equal(t, stream.StateError, r.State())

	_, err2 := r.Read_uint8()
	require.Equal(t, err, err2)
}

func Test_Reader_AlignToByteBoundary_DiscardsPartialByte(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	require.NoError(t, w.WriteBits(0b111, 3))
	_, err := w.AlignToByteBoundary(false)
	require.NoError(t, err)
	require.NoError(t, w.Write_uint8(0xAB))

	r := stream.NewReader(&buf, stream.LittleEndian)

	_, err = r.ReadBits(1)
	require.NoError(t, err)

	discarded := r.AlignToByteBoundary()
	require.Equal(t, 7, discarded)

	v, err := r.Read_uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xAB), v)
}
