package machine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestVM(stdout *bytes.Buffer) *VM {
	heap := NewHeap()
	return &VM{Heap: heap, Stdout: stdout, Stdin: bytes.NewReader(nil)}
}

func TestNativeIndexMatchesTableOrder(t *testing.T) {
	idx := NativeIndex()
	for i, n := range Natives {
		require.EqualValues(t, i, idx[n.Name])
	}
}

func TestNativePrintJoinsArgsWithSpace(t *testing.T) {
	var out bytes.Buffer
	vm := newTestVM(&out)
	_, err := nativePrint(false)(vm, []Object{IntVal(1), IntVal(2)})
	require.Nil(t, err)
	require.Equal(t, "1 2", out.String())
}

func TestNativePrintlnAddsNewline(t *testing.T) {
	var out bytes.Buffer
	vm := newTestVM(&out)
	_, err := nativePrint(true)(vm, []Object{StrVal(vm.Heap.InternStr("hi"))})
	require.Nil(t, err)
	require.Equal(t, "hi\n", out.String())
}

func TestNativeIDSameHandleForInternedString(t *testing.T) {
	var out bytes.Buffer
	vm := newTestVM(&out)
	h := vm.Heap.InternStr("shared")
	a, _ := nativeID(vm, []Object{StrVal(h)})
	b, _ := nativeID(vm, []Object{StrVal(h)})
	require.Equal(t, a, b)
}

func TestNativeTypeOfNames(t *testing.T) {
	var out bytes.Buffer
	vm := newTestVM(&out)
	cases := []struct {
		o    Object
		want string
	}{
		{NoneVal(), "None"},
		{BoolVal(true), "Bool"},
		{IntVal(1), "Int"},
		{FloatVal(1.5), "Float"},
	}
	for _, tc := range cases {
		res, err := nativeTypeOf(vm, []Object{tc.o})
		require.Nil(t, err)
		require.Equal(t, tc.want, vm.Heap.Str(res.H))
	}
}
