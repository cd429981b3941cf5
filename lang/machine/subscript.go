package machine

// subscript implements Array/Tuple/Str/Dict indexing (spec.md §4.4). Int
// indices into sequences accept negative values, counting from the end.
func (vm *VM) subscript(recv, idx Object) (Object, *RuntimeError) {
	switch recv.Kind {
	case KArray:
		arr := vm.Heap.Array(recv.H)
		i, err := vm.normalizeIndex(idx, len(arr.Elems))
		if err != nil {
			return Object{}, err
		}
		return arr.Elems[i], nil
	case KTuple:
		tup := vm.Heap.Tuple(recv.H)
		i, err := vm.normalizeIndex(idx, len(tup.Elems))
		if err != nil {
			return Object{}, err
		}
		return tup.Elems[i], nil
	case KStr:
		runes := []rune(vm.Heap.Str(recv.H))
		i, err := vm.normalizeIndex(idx, len(runes))
		if err != nil {
			return Object{}, err
		}
		return StrVal(vm.Heap.InternStr(string(runes[i]))), nil
	case KDict:
		d := vm.Heap.Dict(recv.H)
		v, ok := d.Get(idx)
		if !ok {
			return Object{}, vm.indexErr("key not found in dict.")
		}
		return v, nil
	default:
		return Object{}, vm.typeErr("'%s' object is not subscriptable.", recv.TypeName())
	}
}

func (vm *VM) normalizeIndex(idx Object, length int) (int, *RuntimeError) {
	if idx.Kind != KInt {
		return 0, vm.typeErr("index must be 'Int', got '%s'.", idx.TypeName())
	}
	i := idx.I
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, vm.indexErr("index %d out of range for length %d.", idx.I, length)
	}
	return int(i), nil
}

// subscriptAssign implements `recv[idx] = val`; arrays and dicts are
// mutable, tuples and everything else reject item assignment.
func (vm *VM) subscriptAssign(recv, idx, val Object) *RuntimeError {
	switch recv.Kind {
	case KArray:
		arr := vm.Heap.Array(recv.H)
		i, err := vm.normalizeIndex(idx, len(arr.Elems))
		if err != nil {
			return err
		}
		arr.Elems[i] = val
		return nil
	case KDict:
		vm.Heap.Dict(recv.H).Put(idx, val)
		return nil
	case KTuple:
		return vm.typeErr("'Tuple' object does not support item assignment.")
	default:
		return vm.typeErr("'%s' object does not support item assignment.", recv.TypeName())
	}
}

// iterState is the VM-side (off-stack) bookkeeping for one active for-in
// loop. It lives on the owning CallFrame rather than the operand stack so
// that the loop variable's resolver-assigned stack slot holds the current
// element value itself, never the iterator's internal cursor.
type iterState struct {
	obj  Object
	pos  int64
	keys []Object // snapshot of key order, only populated for KDict
}

// makeIter pops the iterable, pushes a tracking iterState onto the current
// frame, and reserves the loop variable's stack slot with a placeholder;
// ForIterNextOrJump overwrites that slot in place every iteration.
func (vm *VM) makeIter() *RuntimeError {
	v := vm.pop()
	switch v.Kind {
	case KRange, KArray, KTuple, KStr:
		vm.frame().Iters = append(vm.frame().Iters, &iterState{obj: v})
	case KDict:
		d := vm.Heap.Dict(v.H)
		keys := make([]Object, 0, d.Len())
		d.Each(func(k, _ Object) bool {
			keys = append(keys, k)
			return true
		})
		vm.frame().Iters = append(vm.frame().Iters, &iterState{obj: v, keys: keys})
	default:
		return vm.typeErr("'%s' object is not iterable.", v.TypeName())
	}
	vm.push(NoneVal())
	return nil
}

// forIterNext advances the innermost active iterator on the current frame.
// It reports done=true (without altering the loop variable slot) once
// exhausted, and at that point pops the iterState off the frame itself.
func (vm *VM) forIterNext() (bool, *RuntimeError) {
	f := vm.frame()
	it := f.Iters[len(f.Iters)-1]

	var next Object
	done := false

	switch it.obj.Kind {
	case KRange:
		r := vm.Heap.Range(it.obj.H)
		cur := r.Min + it.pos
		if r.Min <= r.Max {
			limit := r.Max
			if r.Closed {
				limit++
			}
			if cur >= limit {
				done = true
			}
		} else {
			limit := r.Max
			if r.Closed {
				limit--
			}
			cur = r.Min - it.pos
			if cur <= limit {
				done = true
			}
		}
		if !done {
			next = IntVal(cur)
			it.pos++
		}
	case KArray:
		elems := vm.Heap.Array(it.obj.H).Elems
		if it.pos >= int64(len(elems)) {
			done = true
		} else {
			next = elems[it.pos]
			it.pos++
		}
	case KTuple:
		elems := vm.Heap.Tuple(it.obj.H).Elems
		if it.pos >= int64(len(elems)) {
			done = true
		} else {
			next = elems[it.pos]
			it.pos++
		}
	case KStr:
		runes := []rune(vm.Heap.Str(it.obj.H))
		if it.pos >= int64(len(runes)) {
			done = true
		} else {
			next = StrVal(vm.Heap.InternStr(string(runes[it.pos])))
			it.pos++
		}
	case KDict:
		if it.pos >= int64(len(it.keys)) {
			done = true
		} else {
			next = it.keys[it.pos]
			it.pos++
		}
	}

	if done {
		f.Iters = f.Iters[:len(f.Iters)-1]
		return true, nil
	}
	vm.stack[vm.sp-1] = next
	return false, nil
}
