package machine

import (
	"math"
	"strconv"
)

// numeric reports whether o is Int, Float, or Bool (which participates as
// 0/1 in numeric contexts per spec.md §4.4).
func numeric(o Object) bool { return o.Kind == KInt || o.Kind == KFloat || o.Kind == KBool }

func asFloat(o Object) float64 {
	switch o.Kind {
	case KFloat:
		return o.F
	case KInt:
		return float64(o.I)
	case KBool:
		return float64(o.I)
	default:
		return 0
	}
}

func asInt(o Object) int64 {
	switch o.Kind {
	case KInt:
		return o.I
	case KBool:
		return o.I
	case KFloat:
		return int64(o.F)
	default:
		return 0
	}
}

func bothInty(a, b Object) bool {
	intLike := func(o Object) bool { return o.Kind == KInt || o.Kind == KBool }
	return intLike(a) && intLike(b)
}

// binaryArith implements Add/Subtract/Multiply/Divide/Modulus/Pow with
// Int/Float cross-promotion (spec.md §4.4): Int⊕Int→Int, any Float operand
// promotes the result to Float, Bool participates as 0/1, and '+' on two
// strings concatenates into a new interned string.
func (vm *VM) binaryArith(op OpCode, a, b Object) (Object, *RuntimeError) {
	if op == Add && a.Kind == KStr && b.Kind == KStr {
		s := vm.Heap.Str(a.H) + vm.Heap.Str(b.H)
		return StrVal(vm.Heap.InternStr(s)), nil
	}
	if !numeric(a) || !numeric(b) {
		return Object{}, vm.typeErr("unsupported operand types for '%s': '%s' and '%s'.", opSymbol(op), a.TypeName(), b.TypeName())
	}
	if bothInty(a, b) {
		x, y := asInt(a), asInt(b)
		switch op {
		case Add:
			return IntVal(x + y), nil
		case Subtract:
			return IntVal(x - y), nil
		case Multiply:
			return IntVal(x * y), nil
		case Divide:
			if y == 0 {
				return Object{}, vm.typeErr("division by zero.")
			}
			return IntVal(x / y), nil
		case Modulus:
			if y == 0 {
				return Object{}, vm.typeErr("modulus by zero.")
			}
			return IntVal(x % y), nil
		case Pow:
			return IntVal(int64(math.Pow(float64(x), float64(y)))), nil
		}
	}
	x, y := asFloat(a), asFloat(b)
	switch op {
	case Add:
		return FloatVal(x + y), nil
	case Subtract:
		return FloatVal(x - y), nil
	case Multiply:
		return FloatVal(x * y), nil
	case Divide:
		return FloatVal(x / y), nil
	case Modulus:
		return FloatVal(math.Mod(x, y)), nil
	case Pow:
		return FloatVal(math.Pow(x, y)), nil
	}
	return Object{}, vm.typeErr("unsupported operand types for '%s'.", opSymbol(op))
}

func (vm *VM) binaryBitwise(op OpCode, a, b Object) (Object, *RuntimeError) {
	if !bothInty(a, b) {
		return Object{}, vm.typeErr("bitwise operators require Int operands, got '%s' and '%s'.", a.TypeName(), b.TypeName())
	}
	x, y := asInt(a), asInt(b)
	switch op {
	case BitwiseAnd:
		return IntVal(x & y), nil
	case BitwiseOr:
		return IntVal(x | y), nil
	case BitwiseXor:
		return IntVal(x ^ y), nil
	case BitwiseShiftLeft:
		return IntVal(x << uint(y)), nil
	case BitwiseShiftRight:
		return IntVal(x >> uint(y)), nil
	}
	return Object{}, vm.typeErr("unsupported bitwise operator.")
}

// compare implements Equals/NotEq (structural, cross-numeric) and ordering
// (<,<=,>,>= ; numeric or lexicographic-on-strings) per spec.md §4.4.
func (vm *VM) compare(op OpCode, a, b Object) (Object, *RuntimeError) {
	if op == Equals || op == NotEq {
		eq := vm.equal(a, b)
		if op == NotEq {
			eq = !eq
		}
		return BoolVal(eq), nil
	}
	if numeric(a) && numeric(b) {
		x, y := asFloat(a), asFloat(b)
		switch op {
		case LessThan:
			return BoolVal(x < y), nil
		case LessThanEq:
			return BoolVal(x <= y), nil
		case GreaterThan:
			return BoolVal(x > y), nil
		case GreaterThanEq:
			return BoolVal(x >= y), nil
		}
	}
	if a.Kind == KStr && b.Kind == KStr {
		x, y := vm.Heap.Str(a.H), vm.Heap.Str(b.H)
		switch op {
		case LessThan:
			return BoolVal(x < y), nil
		case LessThanEq:
			return BoolVal(x <= y), nil
		case GreaterThan:
			return BoolVal(x > y), nil
		case GreaterThanEq:
			return BoolVal(x >= y), nil
		}
	}
	return Object{}, vm.typeErr("'%s' not supported between instances of '%s' and '%s'.", opSymbol(op), a.TypeName(), b.TypeName())
}

// equal implements structural equality: numeric types compare by value
// across Int/Float/Bool, collections compare element-wise, strings compare
// by content, None == None, and different variants are unequal.
func (vm *VM) equal(a, b Object) bool {
	if numeric(a) && numeric(b) {
		return asFloat(a) == asFloat(b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KNone:
		return true
	case KStr:
		return vm.Heap.Str(a.H) == vm.Heap.Str(b.H)
	case KArray:
		return vm.equalSeq(vm.Heap.Array(a.H).Elems, vm.Heap.Array(b.H).Elems)
	case KTuple:
		return vm.equalSeq(vm.Heap.Tuple(a.H).Elems, vm.Heap.Tuple(b.H).Elems)
	case KRange:
		ra, rb := vm.Heap.Range(a.H), vm.Heap.Range(b.H)
		return *ra == *rb
	case KFunc:
		return vm.Heap.Func(a.H).Name == vm.Heap.Func(b.H).Name
	case KNativeFunc:
		return a.I == b.I
	case KDict:
		da, db := vm.Heap.Dict(a.H), vm.Heap.Dict(b.H)
		if da.Len() != db.Len() {
			return false
		}
		eq := true
		da.Each(func(k, v Object) bool {
			v2, ok := db.Get(k)
			if !ok || !vm.equal(v, v2) {
				eq = false
				return false
			}
			return true
		})
		return eq
	default:
		return false
	}
}

func (vm *VM) equalSeq(a, b []Object) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !vm.equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (vm *VM) negate(o Object) (Object, *RuntimeError) {
	switch o.Kind {
	case KInt:
		return IntVal(-o.I), nil
	case KFloat:
		return FloatVal(-o.F), nil
	case KBool:
		return IntVal(-o.I), nil
	default:
		return Object{}, vm.typeErr("bad operand type for unary '-': '%s'.", o.TypeName())
	}
}

func (vm *VM) bitnot(o Object) (Object, *RuntimeError) {
	if o.Kind != KInt && o.Kind != KBool {
		return Object{}, vm.typeErr("bad operand type for unary '~': '%s'.", o.TypeName())
	}
	return IntVal(^asInt(o)), nil
}

func opSymbol(op OpCode) string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Modulus:
		return "%"
	case Pow:
		return "**"
	case BitwiseAnd:
		return "&"
	case BitwiseOr:
		return "|"
	case BitwiseXor:
		return "^"
	case BitwiseShiftLeft:
		return "<<"
	case BitwiseShiftRight:
		return ">>"
	case LessThan:
		return "<"
	case LessThanEq:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanEq:
		return ">="
	default:
		return strconv.Itoa(int(op))
	}
}
