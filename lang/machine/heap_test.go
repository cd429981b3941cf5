package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternStrDeduplicates(t *testing.T) {
	h := NewHeap()
	a := h.InternStr("hello")
	b := h.InternStr("hello")
	require.Equal(t, a, b)
	require.Equal(t, "hello", h.Str(a))
}

func TestInternStrDistinctValuesGetDistinctHandles(t *testing.T) {
	h := NewHeap()
	a := h.InternStr("foo")
	b := h.InternStr("bar")
	require.NotEqual(t, a, b)
}

func TestFreeRecyclesHandleViaTombstone(t *testing.T) {
	h := NewHeap()
	arr := h.AllocArray([]Object{IntVal(1)})
	h.Free(arr)
	next := h.AllocTuple([]Object{IntVal(2)})
	require.Equal(t, arr, next, "a freed slot should be reused by the next allocation")
}

func TestDictOperations(t *testing.T) {
	d := NewDict(0)
	require.Equal(t, 0, d.Len())

	d.Put(IntVal(1), StrVal(Handle(0)))
	d.Put(IntVal(2), StrVal(Handle(1)))
	require.Equal(t, 2, d.Len())

	v, ok := d.Get(IntVal(1))
	require.True(t, ok)
	require.Equal(t, StrVal(Handle(0)), v)

	require.True(t, d.Delete(IntVal(1)))
	require.Equal(t, 1, d.Len())

	_, ok = d.Get(IntVal(1))
	require.False(t, ok)
}

func TestDictEachVisitsEveryEntry(t *testing.T) {
	d := NewDict(0)
	d.Put(IntVal(1), IntVal(10))
	d.Put(IntVal(2), IntVal(20))
	d.Put(IntVal(3), IntVal(30))

	seen := map[int64]int64{}
	d.Each(func(k, v Object) bool {
		seen[k.I] = v.I
		return true
	})
	require.Equal(t, map[int64]int64{1: 10, 2: 20, 3: 30}, seen)
}
