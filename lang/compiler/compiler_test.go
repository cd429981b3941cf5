package compiler_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hinton-lang/hinton/lang/compiler"
	"github.com/hinton-lang/hinton/lang/lexer"
	"github.com/hinton-lang/hinton/lang/machine"
	"github.com/hinton-lang/hinton/lang/parser"
	"github.com/hinton-lang/hinton/lang/resolver"
	"github.com/hinton-lang/hinton/lang/token"
)

func compileSrc(t *testing.T, src string) (*compiler.Result, *token.List) {
	t.Helper()
	toks := lexer.Lex([]byte(src))
	a, perrs := parser.Parse(toks)
	require.Empty(t, perrs)
	r := resolver.New(a, toks, machine.NativeIndex())
	res := r.Resolve()
	require.Empty(t, r.Diagnostics)
	result, diags := compiler.Compile(a, toks, res)
	require.Empty(t, diags)
	return result, toks
}

func TestCompileSimpleProgramRuns(t *testing.T) {
	result, toks := compileSrc(t, "let x = 1 + 2;")
	var out bytes.Buffer
	vm := machine.New(result.Constants, result.Heap, toks, result.GlobalsLen, machine.Config{}, &out, nil)
	rerr := vm.Run(result.Entry)
	require.Nil(t, rerr)
	require.Len(t, vm.Globals, 1)
	require.Equal(t, "3", machine.DisplayPlain(result.Heap, vm.Globals[0]))
}

func TestDisassembleProducesReadableOutput(t *testing.T) {
	result, _ := compileSrc(t, "let x = 1 + 2;")
	entry := result.Heap.Func(result.Entry)
	out := compiler.DisassembleFunc("<module>", entry.Chunk, result.Constants, result.Heap)
	require.Contains(t, out, "== <module> ==")
	require.Contains(t, out, "DefineGlobal")
	require.Contains(t, out, "EndVirtualMachine")
}

func TestDisassembleClosureRecordsUpvalues(t *testing.T) {
	src := `
		func outer() {
			let x = 1;
			func inner() {
				return x;
			}
			return inner;
		}
	`
	result, _ := compileSrc(t, src)
	var outer *machine.FuncObj
	for _, k := range result.Constants {
		if k.Kind == machine.KFunc && result.Heap.Str(result.Heap.Func(k.H).Name) == "outer" {
			outer = result.Heap.Func(k.H)
		}
	}
	require.NotNil(t, outer)
	// inner's MakeClosure lives in outer's chunk and captures outer's first local x.
	out := compiler.DisassembleFunc("outer", outer.Chunk, result.Constants, result.Heap)
	require.Contains(t, out, "MakeClosure")
	require.Contains(t, out, "local=true slot=0")
}

func TestDisassembleClassDeclEmitsClassOpcodes(t *testing.T) {
	src := `
		class Point {
			func init(x, y) { return x; }
		}
	`
	result, _ := compileSrc(t, src)
	entry := result.Heap.Func(result.Entry)
	out := compiler.DisassembleFunc("<module>", entry.Chunk, result.Constants, result.Heap)
	require.Contains(t, out, "MakeClass")
	require.Contains(t, out, "AppendClassField")
	require.NotContains(t, out, "Unknown","class opcodes must decode their operand, not fall through to the zero-operand default")
}

func TestCompilePropertyAccessEmitsGetProp(t *testing.T) {
	result, _ := compileSrc(t, `let obj = 1; let v = obj.field;`)
	entry := result.Heap.Func(result.Entry)
	out := compiler.DisassembleFunc("<module>", entry.Chunk, result.Constants, result.Heap)
	require.Contains(t, out, "GetProp")
}

func TestCompileNewExprEmitsMakeInstanceOp(t *testing.T) {
	src := `
		class Point {
			func init(x, y) { return x; }
		}
		let p = new Point(1, 2);
	`
	result, _ := compileSrc(t, src)
	entry := result.Heap.Func(result.Entry)
	out := compiler.DisassembleFunc("<module>", entry.Chunk, result.Constants, result.Heap)
	require.Contains(t, out, "MakeInstanceOp")
}

func TestCompileMaxConstantPoolReusesEqualConstants(t *testing.T) {
	result, _ := compileSrc(t, `let a = "hi"; let b = "hi";`)
	strCount := 0
	for _, k := range result.Constants {
		if k.Kind == machine.KStr {
			strCount++
		}
	}
	require.Equal(t, 1, strCount, "identical string constants should be interned once")
}
