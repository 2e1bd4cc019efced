package cood_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpcc-project/gpcc/cood"
	"github.com/gpcc-project/gpcc/osal"
)

func newTestVariable(t *testing.T, name string) cood.Object {
	t.Helper()

	v, err := cood.NewVariable(name, cood.Unsigned8, 1, make([]byte, 1), cood.AttrAccessRD, nil, nil)
	require.NoError(t, err)

	return v
}

func Test_ObjectDictionary_Add_Rejects_Duplicate_Index(t *testing.T) {
	t.Parallel()

	th := osal.NewThread("test")
	od := cood.NewObjectDictionary()

	require.NoError(t, od.Add(th, newTestVariable(t, "a"), 0x2000))
	assert.Error(t, od.Add(th, newTestVariable(t, "b"), 0x2000))
}

func Test_ObjectDictionary_Add_Rejects_Object_Already_Registered_Elsewhere(t *testing.T) {
	t.Parallel()

	th := osal.NewThread("test")
	od1 := cood.NewObjectDictionary()
	od2 := cood.NewObjectDictionary()

	v := newTestVariable(t, "shared")

	require.NoError(t, od1.Add(th, v, 0x2000))
	assert.Error(t, od2.Add(th, v, 0x3000))
}

func Test_ObjectDictionary_GetObject_Reports_Missing_Index(t *testing.T) {
	t.Parallel()

	th := osal.NewThread("test")
	od := cood.NewObjectDictionary()

	ptr, ok := od.GetObject(th, 0x1234)
	assert.False(t, ok)
	assert.False(t, ptr.Valid())
}

func Test_ObjectDictionary_Iterates_Objects_In_Ascending_Index_Order(t *testing.T) {
	t.Parallel()

	th := osal.NewThread("test")
	od := cood.NewObjectDictionary()

	require.NoError(t, od.Add(th, newTestVariable(t, "c"), 0x3000))
	require.NoError(t, od.Add(th, newTestVariable(t, "a"), 0x1000))
	require.NoError(t, od.Add(th, newTestVariable(t, "b"), 0x2000))

	var got []uint16

	ptr, ok := od.GetFirstObject(th)
	for ok {
		got = append(got, ptr.Index())
		ok = ptr.Next()
	}

	want := []uint16{0x1000, 0x2000, 0x3000}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("index order mismatch (-want +got):\n%s", diff)
	}
}

func Test_ObjectDictionary_Remove_Unregisters_Object(t *testing.T) {
	t.Parallel()

	th := osal.NewThread("test")
	od := cood.NewObjectDictionary()

	require.NoError(t, od.Add(th, newTestVariable(t, "a"), 0x2000))
	require.NoError(t, od.Remove(th, 0x2000))

	assert.Equal(t, 0, od.GetNumberOfObjects(th))

	_, ok := od.GetObject(th, 0x2000)
	assert.False(t, ok)
}

func Test_ObjectDictionary_Remove_Rejects_Missing_Index(t *testing.T) {
	t.Parallel()

	th := osal.NewThread("test")
	od := cood.NewObjectDictionary()

	assert.Error(t, od.Remove(th, 0x9999))
}

func Test_ObjectPtr_Clone_Is_Independent_Of_Original(t *testing.T) {
	t.Parallel()

	th := osal.NewThread("test")
	od := cood.NewObjectDictionary()

	require.NoError(t, od.Add(th, newTestVariable(t, "a"), 0x2000))

	ptr, ok := od.GetObject(th, 0x2000)
	require.True(t, ok)

	clone := ptr.Clone(th)
	require.True(t, clone.Valid())

	ptr.Release()

	assert.True(t, clone.Valid())
	assert.Equal(t, uint16(0x2000), clone.Index())

	clone.Release()
}
