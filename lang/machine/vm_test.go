package machine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hinton-lang/hinton/lang/compiler"
	"github.com/hinton-lang/hinton/lang/lexer"
	"github.com/hinton-lang/hinton/lang/machine"
	"github.com/hinton-lang/hinton/lang/parser"
	"github.com/hinton-lang/hinton/lang/resolver"
)

// run compiles and executes src, returning its VM (for inspecting globals),
// stdout, and any runtime error. It fails the test immediately on a
// front-end (lex/parse/resolve/compile) error, since those are covered by
// their own package's tests.
func run(t *testing.T, src string) (*machine.VM, string, *machine.RuntimeError) {
	t.Helper()
	toks := lexer.Lex([]byte(src))
	a, perrs := parser.Parse(toks)
	require.Empty(t, perrs)

	r := resolver.New(a, toks, machine.NativeIndex())
	res := r.Resolve()
	require.Empty(t, r.Diagnostics)

	result, diags := compiler.Compile(a, toks, res)
	require.Empty(t, diags)

	var out bytes.Buffer
	vm := machine.New(result.Constants, result.Heap, toks, result.GlobalsLen, machine.Config{MaxFrames: 64}, &out, &strings.Reader{})
	rerr := vm.Run(result.Entry)
	return vm, out.String(), rerr
}

func global(vm *machine.VM, heap *machine.Heap, i int) string {
	return machine.DisplayPlain(heap, vm.Globals[i])
}

func TestArithmeticPrecedence(t *testing.T) {
	vm, _, rerr := run(t, "let x = 1 + 2 * 3 - 4 / 2;")
	require.Nil(t, rerr)
	require.Equal(t, "5", global(vm, vm.Heap, 0))
}

func TestStringConcatenation(t *testing.T) {
	vm, _, rerr := run(t, `let x = "foo" + "bar";`)
	require.Nil(t, rerr)
	require.Equal(t, "foobar", global(vm, vm.Heap, 0))
}

func TestGlobalReassignmentOfConstIsCompileError(t *testing.T) {
	toks := lexer.Lex([]byte("const x = 1; x = 2;"))
	a, perrs := parser.Parse(toks)
	require.Empty(t, perrs)
	r := resolver.New(a, toks, machine.NativeIndex())
	r.Resolve()
	require.NotEmpty(t, r.Diagnostics)
	require.Equal(t, resolver.Reassignment, r.Diagnostics[0].Kind)
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	src := `
		func counter() {
			let n = 0;
			func increment() {
				n = n + 1;
				return n;
			}
			return increment;
		}
		let inc = counter();
		let a = inc();
		let b = inc();
		let c = inc();
	`
	vm, _, rerr := run(t, src)
	require.Nil(t, rerr)
	require.Equal(t, "1", global(vm, vm.Heap, 2))
	require.Equal(t, "2", global(vm, vm.Heap, 3))
	require.Equal(t, "3", global(vm, vm.Heap, 4))
}

func TestBreakFromNestedLoopScope(t *testing.T) {
	src := `
		let total = 0;
		for i in 0..10 {
			if (i == 5) {
				break;
			}
			total = total + i;
		}
	`
	vm, _, rerr := run(t, src)
	require.Nil(t, rerr)
	require.Equal(t, "10", global(vm, vm.Heap, 0)) // 0+1+2+3+4
}

func TestContinueSkipsRestOfBody(t *testing.T) {
	src := `
		let total = 0;
		for i in 0..5 {
			if (i == 2) {
				continue;
			}
			total = total + i;
		}
	`
	vm, _, rerr := run(t, src)
	require.Nil(t, rerr)
	require.Equal(t, "8", global(vm, vm.Heap, 0)) // 0+1+3+4
}

func TestLogicalShortCircuit(t *testing.T) {
	vm, _, rerr := run(t, `
		func boom() { return 1 / 0; }
		let a = false && boom();
		let b = true || boom();
	`)
	require.Nil(t, rerr, "short-circuit must never evaluate boom()")
	require.Equal(t, "false", global(vm, vm.Heap, 1)) // global 0 is boom
	require.Equal(t, "true", global(vm, vm.Heap, 2))
}

func TestNonishOperator(t *testing.T) {
	vm, _, rerr := run(t, `
		let a = none ?? 5;
		let b = 3 ?? 5;
	`)
	require.Nil(t, rerr)
	require.Equal(t, "5", global(vm, vm.Heap, 0))
	require.Equal(t, "3", global(vm, vm.Heap, 1))
}

func TestNonishShortCircuitsRightOperand(t *testing.T) {
	vm, _, rerr := run(t, `
		func boom() { return 1 / 0; }
		let a = 3 ?? boom();
	`)
	require.Nil(t, rerr, "?? must not evaluate boom() once the left side is not none")
	require.Equal(t, "3", global(vm, vm.Heap, 1)) // global 0 is boom
}

func TestClassInstantiationReachesNotYetImplementedStub(t *testing.T) {
	src := `
		class Point {
			func init(x, y) { return x; }
		}
		let p = new Point(1, 2);
	`
	_, _, rerr := run(t, src)
	require.NotNil(t, rerr, "MakeClass/MakeInstanceOp must actually execute, not stay dead code")
	require.Contains(t, rerr.Message, "classes are not yet implemented")
}

func TestCallingNonFunctionIsTypeError(t *testing.T) {
	_, _, rerr := run(t, "let x = 1; x();")
	require.NotNil(t, rerr)
	require.Equal(t, machine.TypeErr, rerr.Kind)
}

func TestArityMismatchIsArgumentError(t *testing.T) {
	_, _, rerr := run(t, "func f(a, b) { return a + b; } f(1);")
	require.NotNil(t, rerr)
	require.Equal(t, machine.ArgumentErr, rerr.Kind)
}

func TestOutOfRangeIndexIsIndexError(t *testing.T) {
	_, _, rerr := run(t, "let arr = [1, 2, 3]; let x = arr[10];")
	require.NotNil(t, rerr)
	require.Equal(t, machine.IndexErr, rerr.Kind)
}

func TestNegativeIndexWrapsFromEnd(t *testing.T) {
	vm, _, rerr := run(t, "let arr = [1, 2, 3]; let x = arr[-1];")
	require.Nil(t, rerr)
	require.Equal(t, "3", global(vm, vm.Heap, 1))
}

func TestRecursionDepthLimitIsRecursionError(t *testing.T) {
	_, _, rerr := run(t, "func loop_forever() { return loop_forever(); } loop_forever();")
	require.NotNil(t, rerr)
	require.Equal(t, machine.RecursionErr, rerr.Kind)
}

func TestTracebackCollapsesRepeatedFrames(t *testing.T) {
	_, _, rerr := run(t, "func loop_forever() { return loop_forever(); } loop_forever();")
	require.NotNil(t, rerr)
	trace := machine.Traceback(rerr, false)
	require.Contains(t, trace, "Previous line repeated")
}

func TestDictAndForInIteration(t *testing.T) {
	src := `
		let d = {"a": 1, "b": 2};
		let total = 0;
		for k in d {
			total = total + 1;
		}
	`
	vm, _, rerr := run(t, src)
	require.Nil(t, rerr)
	require.Equal(t, "2", global(vm, vm.Heap, 1))
}

func TestNativePrintWritesToStdout(t *testing.T) {
	_, out, rerr := run(t, `print("hello");`)
	require.Nil(t, rerr)
	require.Contains(t, out, "hello")
}

func TestNativeTypeOf(t *testing.T) {
	vm, _, rerr := run(t, `let t = type_of(1);`)
	require.Nil(t, rerr)
	require.Equal(t, "Int", global(vm, vm.Heap, 0))
}

func TestDefaultParameterValue(t *testing.T) {
	vm, _, rerr := run(t, `
		func greet(name = "world") { return name; }
		let a = greet();
		let b = greet("hinton");
	`)
	require.Nil(t, rerr)
	require.Equal(t, "world", global(vm, vm.Heap, 1)) // global 0 is greet
	require.Equal(t, "hinton", global(vm, vm.Heap, 2))
}

func TestStringInterpolation(t *testing.T) {
	vm, _, rerr := run(t, `
		let name = "hinton";
		let msg = "hello ${name}!";
	`)
	require.Nil(t, rerr)
	require.Equal(t, "hello hinton!", global(vm, vm.Heap, 1))
}
