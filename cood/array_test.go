package cood_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpcc-project/gpcc/cood"
	"github.com/gpcc-project/gpcc/osal"
	"github.com/gpcc-project/gpcc/stream"
)

func Test_NewArray_Rejects_String_Element_Type(t *testing.T) {
	t.Parallel()

	_, err := cood.NewArray("a", cood.VisibleString, 4, 0, make([]byte, 64), cood.AttrAccessRD, false, nil, nil)
	assert.Error(t, err)
}

func Test_Array_SI0_Reports_Current_Element_Count(t *testing.T) {
	t.Parallel()

	a, err := cood.NewArray("a", cood.Unsigned8, 4, 2, make([]byte, 4), cood.AttrAccessRD, false, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, uint16(3), a.GetNbOfSubIndices())
	assert.Equal(t, uint16(5), a.GetMaxNbOfSubindices())

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	code := a.Read(0, cood.AttrAccessRD, w)
	require.Equal(t, cood.OK, code)
	require.NoError(t, w.Close())

	assert.Equal(t, []byte{2}, buf.Bytes())
}

func Test_Array_Element_Write_Then_Read(t *testing.T) {
	t.Parallel()

	mu := osal.NewMutex()
	native := make([]byte, 4)

	a, err := cood.NewArray("a", cood.Unsigned8, 4, 4, native, cood.AttrAccessRW, false, mu, nil)
	require.NoError(t, err)

	unlock := a.Lock()

	reader := stream.NewReader(bytes.NewReader([]byte{0x42}), stream.LittleEndian)
	code := a.Write(2, cood.AttrAccessWR, reader)
	require.Equal(t, cood.OK, code)

	unlock()

	assert.Equal(t, byte(0x42), native[1])

	unlock = a.Lock()
	defer unlock()

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	code = a.Read(2, cood.AttrAccessRD, w)
	require.Equal(t, cood.OK, code)
	require.NoError(t, w.Close())

	assert.Equal(t, []byte{0x42}, buf.Bytes())
}

func Test_Array_CompleteWrite_With_SI0_Shrinks_Element_Count(t *testing.T) {
	t.Parallel()

	mu := osal.NewMutex()
	native := make([]byte, 4)

	a, err := cood.NewArray("a", cood.Unsigned8, 4, 4, native, cood.AttrAccessRW, true, mu, nil)
	require.NoError(t, err)

	unlock := a.Lock()
	defer unlock()

	reader := stream.NewReader(bytes.NewReader([]byte{2, 0x11, 0x22}), stream.LittleEndian)
	code := a.CompleteWrite(true, false, cood.AttrAccessWR, reader, stream.ExpectZeroBits)
	require.Equal(t, cood.OK, code)

	assert.Equal(t, uint16(3), a.GetNbOfSubIndices())
	assert.Equal(t, []byte{0x11, 0x22}, native[:2])
}

func Test_Array_Of_Booleans_CompleteRead_Bit_Packs_Every_Element(t *testing.T) {
	t.Parallel()

	mu := osal.NewMutex()
	native := []byte{1, 0, 1}

	a, err := cood.NewArray("flags", cood.Boolean, 3, 3, native, cood.AttrAccessRD, false, mu, nil)
	require.NoError(t, err)

	unlock := a.Lock()
	defer unlock()

	var buf bytes.Buffer

	w := stream.NewWriter(&buf, stream.LittleEndian)
	code := a.CompleteRead(false, false, cood.AttrAccessRD, w)
	require.Equal(t, cood.OK, code)
	require.NoError(t, w.Close())

	assert.Equal(t, []byte{0x05}, buf.Bytes())
}

func Test_Array_Of_Booleans_CompleteWrite_Unpacks_Every_Element(t *testing.T) {
	t.Parallel()

	mu := osal.NewMutex()
	native := make([]byte, 3)

	a, err := cood.NewArray("flags", cood.Boolean, 3, 3, native, cood.AttrAccessRW, false, mu, nil)
	require.NoError(t, err)

	unlock := a.Lock()
	defer unlock()

	reader := stream.NewReader(bytes.NewReader([]byte{0x05}), stream.LittleEndian)
	code := a.CompleteWrite(false, false, cood.AttrAccessWR, reader, stream.ExpectSevenOrLessBits)
	require.Equal(t, cood.OK, code)

	assert.Equal(t, []byte{1, 0, 1}, native)
}

func Test_Array_CompleteWrite_Rejects_Count_Above_MaxElem(t *testing.T) {
	t.Parallel()

	mu := osal.NewMutex()
	a, err := cood.NewArray("a", cood.Unsigned8, 2, 2, make([]byte, 2), cood.AttrAccessRW, true, mu, nil)
	require.NoError(t, err)

	unlock := a.Lock()
	defer unlock()

	reader := stream.NewReader(bytes.NewReader([]byte{5, 1, 2}), stream.LittleEndian)
	code := a.CompleteWrite(true, false, cood.AttrAccessWR, reader, stream.ExpectZeroBits)
	assert.Equal(t, cood.UnsupportedAccessToObject, code)
}
