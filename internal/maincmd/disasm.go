package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/hinton-lang/hinton/lang/compiler"
	"github.com/hinton-lang/hinton/lang/machine"
)

// Disasm compiles the input and prints the disassembled bytecode of the
// module chunk followed by every nested function chunk found in the
// constant pool.
func (c *Cmd) Disasm(_ context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	fe, ok := runFrontEnd(stdio, args[0])
	if !ok {
		return ExitCompile
	}
	result, ok := compileFrontEnd(stdio, fe)
	if !ok {
		return ExitCompile
	}

	entry := result.Heap.Func(result.Entry)
	fmt.Fprint(stdio.Stdout, compiler.DisassembleFunc("<module>", entry.Chunk, result.Constants, result.Heap))

	for i, k := range result.Constants {
		if k.Kind != machine.KFunc {
			continue
		}
		fn := result.Heap.Func(k.H)
		name := result.Heap.Str(fn.Name)
		if name == "" {
			name = fmt.Sprintf("<anonymous %d>", i)
		}
		fmt.Fprintln(stdio.Stdout)
		fmt.Fprint(stdio.Stdout, compiler.DisassembleFunc(name, fn.Chunk, result.Constants, result.Heap))
	}
	return ExitSuccess
}
