package machine

import "strconv"

// call dispatches a FuncCall[Long] instruction: the callee sits argCount
// slots below the operand stack top, with its arguments above it.
func (vm *VM) call(argCount int) *RuntimeError {
	callee := vm.stack[vm.sp-argCount-1]
	switch callee.Kind {
	case KNativeFunc:
		return vm.callNative(callee, argCount)
	case KFunc:
		return vm.callFunc(callee, argCount)
	default:
		return vm.typeErr("'%s' object is not callable.", callee.TypeName())
	}
}

func arityDesc(min, max int) string {
	if max < 0 {
		return "at least " + strconv.Itoa(min) + " argument(s)"
	}
	if min == max {
		return strconv.Itoa(min) + " argument(s)"
	}
	return strconv.Itoa(min) + " to " + strconv.Itoa(max) + " argument(s)"
}

func (vm *VM) callNative(callee Object, argCount int) *RuntimeError {
	nf := Natives[callee.I]
	if argCount < nf.MinArity || (nf.MaxArity >= 0 && argCount > nf.MaxArity) {
		return vm.argumentErr("'%s' expected %s, got %d.", nf.Name, arityDesc(nf.MinArity, nf.MaxArity), argCount)
	}
	args := make([]Object, argCount)
	copy(args, vm.stack[vm.sp-argCount:vm.sp])
	res, err := nf.Body(vm, args)
	if err != nil {
		return err
	}
	vm.popN(argCount + 1)
	vm.push(res)
	return nil
}

func (vm *VM) funcDisplayName(fn *FuncObj) string {
	if fn.Name == 0 {
		return "<anonymous>"
	}
	if s := vm.Heap.Str(fn.Name); s != "" {
		return s
	}
	return "<anonymous>"
}

func (vm *VM) callFunc(callee Object, argCount int) *RuntimeError {
	fn := vm.Heap.Func(callee.H)
	if argCount < fn.MinArity || (fn.MaxArity >= 0 && argCount > fn.MaxArity) {
		return vm.argumentErr("'%s' expected %s, got %d.", vm.funcDisplayName(fn), arityDesc(fn.MinArity, fn.MaxArity), argCount)
	}
	if len(vm.Frames) >= vm.MaxFrames {
		return vm.recursionErr("maximum recursion depth exceeded.")
	}
	base := vm.sp - argCount - 1
	vm.Frames = append(vm.Frames, &CallFrame{
		FuncPtr:   callee.H,
		ReturnIdx: base,
		ArgCount:  argCount,
		Upvalues:  fn.Upvalues,
	})
	return nil
}

// bindDefaults runs at the top of a function body (spec.md §4.3's
// BindDefaults contract): totalParams is the function's full formal
// parameter count (MaxArity), a compile-time constant, so the operand never
// needs to encode the caller-supplied argument count; that count is read
// back off the active CallFrame instead.
func (vm *VM) bindDefaults(totalParams int) {
	f := vm.frame()
	fn := vm.Heap.Func(f.FuncPtr)
	for i := f.ArgCount; i < totalParams; i++ {
		vm.push(fn.Defaults[i-fn.MinArity])
	}
}

// doReturn pops the return value, discards the callee's frame and every
// stack slot it owns (closing any open up-values first), and leaves the
// return value where the callee used to sit.
func (vm *VM) doReturn() {
	result := vm.pop()
	f := vm.frame()
	vm.closeUpvalsFrom(f.ReturnIdx)
	vm.sp = f.ReturnIdx
	vm.Frames = vm.Frames[:len(vm.Frames)-1]
	vm.push(result)
}

func (vm *VM) captureUpvalue(stackIdx int) *Cell {
	if c, ok := vm.openUpvals[stackIdx]; ok {
		return c
	}
	c := newOpenCell(&vm.stack[stackIdx])
	vm.openUpvals[stackIdx] = c
	return c
}

// closeUpvalsFrom snapshots every open up-value aliasing a stack slot at or
// above stackIdx, then drops it from the tracking table; called whenever a
// scope whose locals might have been captured is about to be discarded.
func (vm *VM) closeUpvalsFrom(stackIdx int) {
	for idx, c := range vm.openUpvals {
		if idx >= stackIdx {
			c.Close()
			delete(vm.openUpvals, idx)
		}
	}
}

// makeClosure implements the MakeClosure family: it reads a constant-pool
// index naming the function's compiled blueprint, clones a fresh FuncObj
// for this instantiation, and resolves each up-value record against either
// the enclosing frame's live stack slots (IsLocal) or its own already-bound
// up-values (forwarded capture).
func (vm *VM) makeClosure(long, large bool) {
	var idx int
	if long {
		idx = int(vm.readShort())
	} else {
		idx = int(vm.readByte())
	}
	blueprint := vm.Heap.Func(vm.Constants[idx].H)

	clone := &FuncObj{
		Name:       blueprint.Name,
		MinArity:   blueprint.MinArity,
		MaxArity:   blueprint.MaxArity,
		Defaults:   blueprint.Defaults,
		Chunk:      blueprint.Chunk,
		NumUpvals:  blueprint.NumUpvals,
		UpvalDescs: blueprint.UpvalDescs,
	}
	clone.Upvalues = make([]*Cell, blueprint.NumUpvals)
	for i := 0; i < blueprint.NumUpvals; i++ {
		flag := vm.readByte()
		isLocal := flag != 0
		var slot int
		if large {
			slot = int(vm.readShort())
		} else {
			slot = int(vm.readByte())
		}
		if isLocal {
			clone.Upvalues[i] = vm.captureUpvalue(vm.frame().ReturnIdx + 1 + slot)
		} else {
			clone.Upvalues[i] = vm.frame().Upvalues[slot]
		}
	}
	h := vm.Heap.AllocFunc(clone)
	vm.push(FuncVal(h))
}
