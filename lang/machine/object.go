// Package machine implements the stack virtual machine, its closed object
// model, the index-based heap, the bytecode chunk format the compiler
// emits into, and the fixed native function table. It corresponds to
// spec.md §3 (Object/Heap/Chunk), §4.2 (Bytecode), §4.4 (Virtual Machine),
// §4.5 (Heap/Object Model), and §6 (native functions).
package machine

import "fmt"

// Handle is a stable, opaque reference into the Heap.
type Handle int

// ObjKind tags the variant held by an Object. The set is closed and
// exhaustively matched at every operation site rather than represented as
// an open interface — see spec.md §9, "avoid open polymorphism here".
type ObjKind uint8

//nolint:revive
const (
	KNone ObjKind = iota
	KBool
	KInt
	KFloat
	KStr
	KFunc
	KArray
	KTuple
	KRange
	KDict
	KNativeFunc
)

// Object is the small, trivially-copyable tagged value used on the operand
// stack, in the constant pool, and as dict keys/values.
type Object struct {
	Kind ObjKind
	I    int64   // Int, NativeFunc index, Bool (0/1)
	F    float64 // Float
	H    Handle  // Str, Func, Array, Tuple, Range, Dict
}

func NoneVal() Object           { return Object{Kind: KNone} }
func BoolVal(b bool) Object     { if b { return Object{Kind: KBool, I: 1} }; return Object{Kind: KBool, I: 0} }
func IntVal(v int64) Object     { return Object{Kind: KInt, I: v} }
func FloatVal(v float64) Object { return Object{Kind: KFloat, F: v} }
func StrVal(h Handle) Object    { return Object{Kind: KStr, H: h} }
func FuncVal(h Handle) Object   { return Object{Kind: KFunc, H: h} }
func ArrayVal(h Handle) Object  { return Object{Kind: KArray, H: h} }
func TupleVal(h Handle) Object  { return Object{Kind: KTuple, H: h} }
func RangeVal(h Handle) Object  { return Object{Kind: KRange, H: h} }
func DictVal(h Handle) Object   { return Object{Kind: KDict, H: h} }
func NativeVal(i uint16) Object { return Object{Kind: KNativeFunc, I: int64(i)} }

func (o Object) IsBool() bool { return o.Kind == KBool }
func (o Object) Bool() bool   { return o.I != 0 }

// TypeName returns the spec.md §6 type-name string for type_of().
func (o Object) TypeName() string {
	switch o.Kind {
	case KNone:
		return "None"
	case KBool:
		return "Bool"
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KStr:
		return "Str"
	case KFunc:
		return "Func"
	case KArray:
		return "Array"
	case KTuple:
		return "Tuple"
	case KRange:
		return "Range"
	case KDict:
		return "Dict"
	case KNativeFunc:
		return "NativeFunc"
	default:
		return "Unknown"
	}
}

// Falsy reports whether o counts as "false" for conditional jumps: None,
// false, 0, 0.0, empty string, or an empty array/tuple/dict.
func (o Object) Falsy(h *Heap) bool {
	switch o.Kind {
	case KNone:
		return true
	case KBool:
		return o.I == 0
	case KInt:
		return o.I == 0
	case KFloat:
		return o.F == 0
	case KStr:
		return len(h.Str(o.H)) == 0
	case KArray:
		return len(h.Array(o.H).Elems) == 0
	case KTuple:
		return len(h.Tuple(o.H).Elems) == 0
	case KDict:
		return h.Dict(o.H).Len() == 0
	default:
		return false
	}
}

// FuncObj is the heap body of a user-defined function.
type FuncObj struct {
	Name       Handle // Str handle; may be zero-value for anonymous funcs
	MinArity   int
	MaxArity   int // -1 means unbounded
	Defaults   []Object
	Chunk      *Chunk
	NumUpvals  int
	UpvalDescs []UpvalDesc // mirrors resolver.Upvalue, copied in by the compiler

	// Upvalues holds the captured cells for one closure instantiation. The
	// FuncObj the compiler places in the constant pool is a shared,
	// immutable blueprint with this left nil; MakeClosure clones a fresh
	// FuncObj per execution and populates this slice from the blueprint's
	// UpvalDescs, so concurrent instantiations (e.g. a function-returning
	// function called twice) capture independent state.
	Upvalues []*Cell
}

// UpvalDesc mirrors resolver.Upvalue without importing the resolver
// package from machine (which would create an import cycle through
// compiler); the compiler translates resolver.Upvalue into this shape when
// it builds the FuncObj.
type UpvalDesc struct {
	Index   uint16
	IsLocal bool
}

// ArrayObj and TupleObj are heap-allocated, mutable (array) or immutable
// (tuple) object vectors.
type ArrayObj struct{ Elems []Object }
type TupleObj struct{ Elems []Object }

// RangeObj is a heap-allocated integer range.
type RangeObj struct {
	Min, Max int64
	Closed   bool
}

func (r RangeObj) String() string {
	if r.Closed {
		return fmt.Sprintf("(%d..=%d)", r.Min, r.Max)
	}
	return fmt.Sprintf("(%d..%d)", r.Min, r.Max)
}
