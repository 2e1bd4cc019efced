package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpcc-project/gpcc/container"
)

type listItem struct {
	node  container.Node[*listItem]
	Value int
}

func (i *listItem) Link() *container.Node[*listItem] { return &i.node }

func Test_IntrusiveDList_EmptyByDefault(t *testing.T) {
	t.Parallel()

	l := container.NewIntrusiveDList[*listItem]()
	require.True(t, l.Empty())
	require.Equal(t, 0, l.Len())

	_, ok := l.Front()
	require.False(t, ok)
}

func Test_IntrusiveDList_PushBackOrder(t *testing.T) {
	t.Parallel()

	l := container.NewIntrusiveDList[*listItem]()

	a, b, c := &listItem{Value: 1}, &listItem{Value: 2}, &listItem{Value: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	require.Equal(t, 3, l.Len())

	items := l.Items()
	require.Len(t, items, 3)
	require.Equal(t, 1, items[0].Value)
	require.Equal(t, 2, items[1].Value)
	require.Equal(t, 3, items[2].Value)

	front, ok := l.Front()
	require.True(t, ok)
	require.Same(t, a, front)

	back, ok := l.Back()
	require.True(t, ok)
	require.Same(t, c, back)
}

func Test_IntrusiveDList_PushFrontOrder(t *testing.T) {
	t.Parallel()

	l := container.NewIntrusiveDList[*listItem]()

	a, b := &listItem{Value: 1}, &listItem{Value: 2}
	l.PushFront(a)
	l.PushFront(b)

	items := l.Items()
	require.Equal(t, 2, items[0].Value)
	require.Equal(t, 1, items[1].Value)
}

func Test_IntrusiveDList_RemoveMiddle(t *testing.T) {
	t.Parallel()

	l := container.NewIntrusiveDList[*listItem]()

	a, b, c := &listItem{Value: 1}, &listItem{Value: 2}, &listItem{Value: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	require.NoError(t, l.Remove(b))
	require.Equal(t, 2, l.Len())

	items := l.Items()
	require.Equal(t, 1, items[0].Value)
	require.Equal(t, 3, items[1].Value)

	// b's link cell must be reset: detaching nulls both pointers.
	require.False(t, b.node.IsLinked())
}

func Test_IntrusiveDList_RemoveNotLinked(t *testing.T) {
	t.Parallel()

	l := container.NewIntrusiveDList[*listItem]()
	a := &listItem{Value: 1}
	l.PushBack(a)

	stray := &listItem{Value: 99}
	err := l.Remove(stray)
	require.ErrorIs(t, err, container.ErrNotLinked)
}

func Test_IntrusiveDList_PopFrontPopBack(t *testing.T) {
	t.Parallel()

	l := container.NewIntrusiveDList[*listItem]()

	a, b, c := &listItem{Value: 1}, &listItem{Value: 2}, &listItem{Value: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	front, ok := l.PopFront()
	require.True(t, ok)
	require.Same(t, a, front)
	require.Equal(t, 2, l.Len())

	back, ok := l.PopBack()
	require.True(t, ok)
	require.Same(t, c, back)
	require.Equal(t, 1, l.Len())
}

func Test_IntrusiveDList_Clear(t *testing.T) {
	t.Parallel()

	l := container.NewIntrusiveDList[*listItem]()

	a, b := &listItem{Value: 1}, &listItem{Value: 2}
	l.PushBack(a)
	l.PushBack(b)

	l.Clear()
	require.True(t, l.Empty())
	require.False(t, a.node.IsLinked())
	require.False(t, b.node.IsLinked())
}

func Test_IntrusiveDList_SingleElementRemove(t *testing.T) {
	t.Parallel()

	l := container.NewIntrusiveDList[*listItem]()
	a := &listItem{Value: 1}
	l.PushBack(a)

	require.NoError(t, l.Remove(a))
	require.True(t, l.Empty())

	_, ok := l.Front()
	require.False(t, ok)
}
