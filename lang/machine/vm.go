package machine

import (
	"io"

	"github.com/hinton-lang/hinton/lang/token"
)

const defaultStackCap = 1 << 16 // matches the 16-bit bound on locals/globals named throughout spec.md §3

// Config collects the VM tunables the ambient config layer loads from the
// environment (internal/config.Runtime).
type Config struct {
	MaxFrames int
	MaxSteps  int
	Color     bool
}

// VM is the stack-based virtual machine: an operand stack, a call-frame
// stack, the program's globals vector, its shared constant pool, and the
// heap, per spec.md §4.4.
type VM struct {
	stack []Object
	sp    int

	Globals   []Object
	Frames    []*CallFrame
	Constants []Object
	Heap      *Heap

	openUpvals map[int]*Cell

	Toks *token.List

	Stdout io.Writer
	Stdin  io.Reader
	Color  bool

	MaxFrames int
	MaxSteps  int
	steps     int
}

// New constructs a VM ready to run entry. globalsLen pre-sizes Globals to
// the resolver's global count (DefineGlobal appends into it in order).
func New(constants []Object, heap *Heap, toks *token.List, globalsLen int, cfg Config, stdout io.Writer, stdin io.Reader) *VM {
	maxFrames := cfg.MaxFrames
	if maxFrames <= 0 {
		maxFrames = 1000
	}
	return &VM{
		stack:      make([]Object, defaultStackCap),
		Globals:    make([]Object, 0, globalsLen),
		Constants:  constants,
		Heap:       heap,
		Toks:       toks,
		openUpvals: make(map[int]*Cell),
		Stdout:     stdout,
		Stdin:      stdin,
		Color:      cfg.Color,
		MaxFrames:  maxFrames,
		MaxSteps:   cfg.MaxSteps,
	}
}

func (vm *VM) push(o Object) { vm.stack[vm.sp] = o; vm.sp++ }
func (vm *VM) pop() Object   { vm.sp--; return vm.stack[vm.sp] }
func (vm *VM) top() Object   { return vm.stack[vm.sp-1] }

func (vm *VM) frame() *CallFrame { return vm.Frames[len(vm.Frames)-1] }

func (vm *VM) curTok() token.Idx {
	f := vm.frame()
	chunk := vm.Heap.Func(f.FuncPtr).Chunk
	ip := f.IP - 1
	if ip < 0 {
		ip = 0
	}
	if ip >= len(chunk.Tokens) {
		ip = len(chunk.Tokens) - 1
	}
	return chunk.Tokens[ip]
}

func (vm *VM) typeErr(format string, args ...any) *RuntimeError {
	return newRuntimeErr(vm.Toks, vm.curTok(), TypeErr, format, args...)
}

func (vm *VM) argumentErr(format string, args ...any) *RuntimeError {
	return newRuntimeErr(vm.Toks, vm.curTok(), ArgumentErr, format, args...)
}

func (vm *VM) indexErr(format string, args ...any) *RuntimeError {
	return newRuntimeErr(vm.Toks, vm.curTok(), IndexErr, format, args...)
}

func (vm *VM) recursionErr(format string, args ...any) *RuntimeError {
	return newRuntimeErr(vm.Toks, vm.curTok(), RecursionErr, format, args...)
}

// Run pushes an initial call frame for entry (a zero-arg function) and
// drives the fetch/decode/dispatch loop until EndVirtualMachine or a
// RuntimeError. On error, the call stack is captured into the error's
// Frames before every frame is discarded (spec.md §5, "Cancellation").
func (vm *VM) Run(entry Handle) *RuntimeError {
	vm.push(FuncVal(entry)) // slot 0: the entry function itself (callee convention)
	vm.Frames = append(vm.Frames, &CallFrame{FuncPtr: entry, ReturnIdx: 0})

	err := vm.loop()
	if err != nil {
		err.Frames = vm.captureTrace()
		vm.Frames = nil
		vm.sp = 0
	}
	return err
}

func (vm *VM) captureTrace() []TraceFrame {
	frames := make([]TraceFrame, 0, len(vm.Frames))
	for i := len(vm.Frames) - 1; i >= 0; i-- {
		f := vm.Frames[i]
		fn := vm.Heap.Func(f.FuncPtr)
		name := "<module>"
		if fn.Name != 0 {
			if s := vm.Heap.Str(fn.Name); s != "" {
				name = s
			}
		}
		ip := f.IP - 1
		if ip < 0 {
			ip = 0
		}
		line := 0
		if ip < len(fn.Chunk.Tokens) {
			line = vm.Toks.Get(fn.Chunk.Tokens[ip]).Line
		}
		frames = append(frames, TraceFrame{FuncName: name, Line: line})
	}
	return frames
}

func (vm *VM) readByte() byte {
	f := vm.frame()
	b := vm.Heap.Func(f.FuncPtr).Chunk.Instructions[f.IP]
	f.IP++
	return b
}

func (vm *VM) readShort() uint16 {
	hi := vm.readByte()
	lo := vm.readByte()
	return uint16(hi)<<8 | uint16(lo)
}

// loop is the single fetch/decode/dispatch function (spec.md §9,
// "Instruction dispatch" — a handler-per-opcode match is acceptable and
// portable; mirrors the single giant switch in the teacher's VM).
func (vm *VM) loop() *RuntimeError {
	for {
		if vm.MaxSteps > 0 {
			vm.steps++
			if vm.steps > vm.MaxSteps {
				return vm.typeErr("step budget exceeded.")
			}
		}
		op := OpCode(vm.readByte())
		switch op {
		case EndVirtualMachine:
			return nil

		case LoadImm0I:
			vm.push(IntVal(0))
		case LoadImm1I:
			vm.push(IntVal(1))
		case LoadImm0F:
			vm.push(FloatVal(0))
		case LoadImm1F:
			vm.push(FloatVal(1))
		case LoadTrue:
			vm.push(BoolVal(true))
		case LoadFalse:
			vm.push(BoolVal(false))
		case LoadNone:
			vm.push(NoneVal())

		case LoadImmN:
			vm.push(IntVal(int64(vm.readByte())))
		case LoadImmNLong:
			vm.push(IntVal(int64(vm.readShort())))

		case LoadConstant:
			vm.push(vm.Constants[vm.readByte()])
		case LoadConstantLong:
			vm.push(vm.Constants[vm.readShort()])

		case LoadNative:
			vm.push(NativeVal(uint16(vm.readByte())))
		case LoadNativeLong:
			vm.push(NativeVal(vm.readShort()))

		case DefineGlobal:
			idx := int(vm.readByte())
			vm.setGlobal(idx, vm.pop())
		case DefineGlobalLong:
			idx := int(vm.readShort())
			vm.setGlobal(idx, vm.pop())

		case GetGlobal:
			vm.push(vm.Globals[vm.readByte()])
		case GetGlobalLong:
			vm.push(vm.Globals[vm.readShort()])
		case SetGlobal:
			idx := int(vm.readByte())
			vm.Globals[idx] = vm.top()
		case SetGlobalLong:
			idx := int(vm.readShort())
			vm.Globals[idx] = vm.top()

		case GetLocal:
			vm.push(vm.stack[vm.frame().ReturnIdx+1+int(vm.readByte())])
		case GetLocalLong:
			vm.push(vm.stack[vm.frame().ReturnIdx+1+int(vm.readShort())])
		case SetLocal:
			idx := vm.frame().ReturnIdx + 1 + int(vm.readByte())
			vm.stack[idx] = vm.top()
		case SetLocalLong:
			idx := vm.frame().ReturnIdx + 1 + int(vm.readShort())
			vm.stack[idx] = vm.top()

		case GetUpVal:
			vm.push(vm.frame().Upvalues[vm.readByte()].Get())
		case GetUpValLong:
			vm.push(vm.frame().Upvalues[vm.readShort()].Get())
		case SetUpVal:
			vm.frame().Upvalues[vm.readByte()].Set(vm.top())
		case SetUpValLong:
			vm.frame().Upvalues[vm.readShort()].Set(vm.top())
		case CloseUpVal:
			vm.closeUpvalsFrom(vm.frame().ReturnIdx + int(vm.readByte()))
		case CloseUpValLong:
			vm.closeUpvalsFrom(vm.frame().ReturnIdx + int(vm.readShort()))
		case PopCloseUpVal:
			vm.closeUpvalsFrom(vm.sp - 1)
			vm.pop()

		case Add, Subtract, Multiply, Divide, Modulus, Pow:
			b, a := vm.pop(), vm.pop()
			v, err := vm.binaryArith(op, a, b)
			if err != nil {
				return err
			}
			vm.push(v)
		case BitwiseAnd, BitwiseOr, BitwiseXor, BitwiseShiftLeft, BitwiseShiftRight:
			b, a := vm.pop(), vm.pop()
			v, err := vm.binaryBitwise(op, a, b)
			if err != nil {
				return err
			}
			vm.push(v)
		case Equals, NotEq, LessThan, LessThanEq, GreaterThan, GreaterThanEq:
			b, a := vm.pop(), vm.pop()
			v, err := vm.compare(op, a, b)
			if err != nil {
				return err
			}
			vm.push(v)
		case Nonish:
			b, a := vm.pop(), vm.pop()
			if a.Kind != KNone {
				vm.push(a)
			} else {
				vm.push(b)
			}

		case Negate:
			v, err := vm.negate(vm.pop())
			if err != nil {
				return err
			}
			vm.push(v)
		case BitwiseNot:
			v, err := vm.bitnot(vm.pop())
			if err != nil {
				return err
			}
			vm.push(v)
		case LogicNot:
			vm.push(BoolVal(vm.pop().Falsy(vm.Heap)))
		case TypeOf:
			v := vm.pop()
			vm.push(StrVal(vm.Heap.InternStr(v.TypeName())))

		case JumpForward:
			off := vm.readShort()
			vm.frame().IP += int(off)
		case LoopJump:
			off := int(vm.readByte())
			vm.frame().IP -= off
		case LoopJumpLong:
			off := int(vm.readShort())
			vm.frame().IP -= off
		case JumpIfFalseOrPop:
			off := vm.readShort()
			if vm.top().Falsy(vm.Heap) {
				vm.frame().IP += int(off)
			} else {
				vm.pop()
			}
		case JumpIfTrueOrPop:
			off := vm.readShort()
			if !vm.top().Falsy(vm.Heap) {
				vm.frame().IP += int(off)
			} else {
				vm.pop()
			}
		case JumpIfNotNoneOrPop:
			off := vm.readShort()
			if vm.top().Kind != KNone {
				vm.frame().IP += int(off)
			} else {
				vm.pop()
			}
		case PopJumpIfFalse:
			off := vm.readShort()
			if vm.pop().Falsy(vm.Heap) {
				vm.frame().IP += int(off)
			}
		case IfFalsePopJump:
			off := vm.readShort()
			if vm.top().Falsy(vm.Heap) {
				vm.pop()
				vm.frame().IP += int(off)
			}

		case PopStackTop:
			vm.pop()
		case PopStackTopN:
			vm.popN(int(vm.readByte()))
		case PopStackTopNLong:
			vm.popN(int(vm.readShort()))
		case RotateTopN:
			vm.rotateTopN(int(vm.readByte()))
		case RotateTopNLong:
			vm.rotateTopN(int(vm.readShort()))

		case BuildStr:
			n := int(vm.readByte())
			if err := vm.buildStr(n); err != nil {
				return err
			}
		case BuildStrLong:
			n := int(vm.readShort())
			if err := vm.buildStr(n); err != nil {
				return err
			}

		case MakeArray:
			vm.makeArray(int(vm.readByte()))
		case MakeArrayLong:
			vm.makeArray(int(vm.readShort()))
		case MakeTuple:
			vm.makeTuple(int(vm.readByte()))
		case MakeTupleLong:
			vm.makeTuple(int(vm.readShort()))
		case MakeDict:
			vm.makeDict(int(vm.readByte()))
		case MakeDictLong:
			vm.makeDict(int(vm.readShort()))
		case MakeRange:
			_ = vm.readByte()
			if err := vm.makeRange(false); err != nil {
				return err
			}
		case MakeRangeLong:
			_ = vm.readShort()
			if err := vm.makeRange(false); err != nil {
				return err
			}
		case MakeRangeEq:
			_ = vm.readByte()
			if err := vm.makeRange(true); err != nil {
				return err
			}
		case MakeRangeEqLong:
			_ = vm.readShort()
			if err := vm.makeRange(true); err != nil {
				return err
			}
		case MakeIter:
			if err := vm.makeIter(); err != nil {
				return err
			}
		case ForIterNextOrJump:
			off := vm.readShort()
			done, err := vm.forIterNext()
			if err != nil {
				return err
			}
			if done {
				vm.frame().IP += int(off)
			}

		case Subscript:
			idx, recv := vm.pop(), vm.pop()
			v, err := vm.subscript(recv, idx)
			if err != nil {
				return err
			}
			vm.push(v)
		case SubscriptAssign:
			val, idx, recv := vm.pop(), vm.pop(), vm.pop()
			if err := vm.subscriptAssign(recv, idx, val); err != nil {
				return err
			}
			vm.push(val)

		case FuncCall:
			if err := vm.call(int(vm.readByte())); err != nil {
				return err
			}
		case FuncCallLong:
			if err := vm.call(int(vm.readShort())); err != nil {
				return err
			}
		case BindDefaults:
			vm.bindDefaults(int(vm.readByte()))

		case Return:
			vm.doReturn()
			if len(vm.Frames) == 0 {
				return nil
			}

		case MakeClosure:
			vm.makeClosure(false, false)
		case MakeClosureLong:
			vm.makeClosure(true, false)
		case MakeClosureLarge:
			vm.makeClosure(false, true)
		case MakeClosureLongLarge:
			vm.makeClosure(true, true)

		case MakeClass, MakeInstanceOp, GetProp, SetProp, AppendClassField:
			return vm.typeErr("classes are not yet implemented.")

		default:
			return vm.typeErr("unimplemented opcode %s.", op)
		}
	}
}

func (vm *VM) setGlobal(idx int, v Object) {
	for len(vm.Globals) <= idx {
		vm.Globals = append(vm.Globals, NoneVal())
	}
	vm.Globals[idx] = v
}

func (vm *VM) popN(n int) {
	for i := 0; i < n; i++ {
		vm.pop()
	}
}

func (vm *VM) rotateTopN(n int) {
	top := vm.stack[vm.sp-n : vm.sp]
	for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
		top[i], top[j] = top[j], top[i]
	}
}

func (vm *VM) buildStr(n int) *RuntimeError {
	parts := make([]string, n)
	vals := vm.stack[vm.sp-n : vm.sp]
	for i, v := range vals {
		parts[i] = DisplayPlain(vm.Heap, v)
	}
	vm.popN(n)
	s := ""
	for _, p := range parts {
		s += p
	}
	vm.push(StrVal(vm.Heap.InternStr(s)))
	return nil
}

func (vm *VM) makeArray(n int) {
	elems := make([]Object, n)
	copy(elems, vm.stack[vm.sp-n:vm.sp])
	vm.popN(n)
	vm.push(ArrayVal(vm.Heap.AllocArray(elems)))
}

func (vm *VM) makeTuple(n int) {
	elems := make([]Object, n)
	copy(elems, vm.stack[vm.sp-n:vm.sp])
	vm.popN(n)
	vm.push(TupleVal(vm.Heap.AllocTuple(elems)))
}

func (vm *VM) makeDict(n int) {
	d := NewDict(n)
	pairs := vm.stack[vm.sp-2*n : vm.sp]
	for i := 0; i < n; i++ {
		d.Put(pairs[2*i], pairs[2*i+1])
	}
	vm.popN(2 * n)
	vm.push(DictVal(vm.Heap.AllocDict(d)))
}

func (vm *VM) makeRange(closed bool) *RuntimeError {
	b, a := vm.pop(), vm.pop()
	if a.Kind != KInt || b.Kind != KInt {
		return vm.typeErr("range bounds must be Int, got '%s' and '%s'.", a.TypeName(), b.TypeName())
	}
	vm.push(RangeVal(vm.Heap.AllocRange(a.I, b.I, closed)))
	return nil
}
