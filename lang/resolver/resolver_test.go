package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hinton-lang/hinton/lang/lexer"
	"github.com/hinton-lang/hinton/lang/machine"
	"github.com/hinton-lang/hinton/lang/parser"
	"github.com/hinton-lang/hinton/lang/resolver"
	"github.com/hinton-lang/hinton/lang/token"
)

func resolveSrc(t *testing.T, src string) (*resolver.Arena, *token.List) {
	t.Helper()
	toks := lexer.Lex([]byte(src))
	a, perrs := parser.Parse(toks)
	require.Empty(t, perrs)
	r := resolver.New(a, toks, machine.NativeIndex())
	return r.Resolve(), toks
}

func TestResolveGlobalLet(t *testing.T) {
	res, _ := resolveSrc(t, "let x = 1;")
	require.Equal(t, 1, res.GlobalsLen)
	module := res.Tables[0]
	require.Len(t, module.Symbols, 1)
	require.Equal(t, resolver.LocGlobal, module.Symbols[0].Loc.Kind)
	require.EqualValues(t, 0, module.Symbols[0].Loc.Index)
}

func TestResolveLocalInBlock(t *testing.T) {
	res, _ := resolveSrc(t, "func f() { let x = 1; return x; }")
	require.Equal(t, 1, res.GlobalsLen, "only 'f' is a global; a local declared inside a function body is not")

	require.Len(t, res.Tables, 2)
	fnTable := res.Tables[1]
	require.True(t, fnTable.IsFuncCtx)
	require.Len(t, fnTable.Symbols, 1)
	require.Equal(t, resolver.LocStack, fnTable.Symbols[0].Loc.Kind)
}

func TestResolveClosureCapturesUpvalue(t *testing.T) {
	src := `
		func outer() {
			let x = 1;
			func inner() {
				return x;
			}
			return inner;
		}
	`
	res, _ := resolveSrc(t, src)
	require.Len(t, res.Tables, 3)

	innerTable := res.Tables[2]
	require.Len(t, innerTable.Upvalues, 1)
	require.True(t, innerTable.Upvalues[0].IsLocal, "inner captures outer's stack slot directly")
}

func TestResolveNestedClosureForwardsUpvalue(t *testing.T) {
	// "innermost" doesn't reference outer's locals directly: it captures via
	// "middle"'s own up-value, not a fresh direct capture of outer's stack.
	src := `
		func outer() {
			let x = 1;
			func middle() {
				func innermost() {
					return x;
				}
				return innermost;
			}
			return middle;
		}
	`
	res, _ := resolveSrc(t, src)
	require.Len(t, res.Tables, 4)

	middleTable := res.Tables[2]
	require.Len(t, middleTable.Upvalues, 1)
	require.True(t, middleTable.Upvalues[0].IsLocal)

	innermostTable := res.Tables[3]
	require.Len(t, innermostTable.Upvalues, 1)
	require.False(t, innermostTable.Upvalues[0].IsLocal, "forwarded, not a direct stack capture")
}

func TestResolveDuplicateDeclarationErrors(t *testing.T) {
	toks := lexer.Lex([]byte("let x = 1; let x = 2;"))
	a, _ := parser.Parse(toks)
	r := resolver.New(a, toks, machine.NativeIndex())
	r.Resolve()
	require.NotEmpty(t, r.Diagnostics)
	require.Equal(t, resolver.Duplication, r.Diagnostics[0].Kind)
}

func TestResolveReassignConstErrors(t *testing.T) {
	toks := lexer.Lex([]byte("const x = 1; x = 2;"))
	a, _ := parser.Parse(toks)
	r := resolver.New(a, toks, machine.NativeIndex())
	r.Resolve()
	require.NotEmpty(t, r.Diagnostics)
	require.Equal(t, resolver.Reassignment, r.Diagnostics[0].Kind)
}

func TestResolveUndeclaredReferenceErrors(t *testing.T) {
	toks := lexer.Lex([]byte("let y = z;"))
	a, _ := parser.Parse(toks)
	r := resolver.New(a, toks, machine.NativeIndex())
	r.Resolve()
	require.NotEmpty(t, r.Diagnostics)
}

func TestResolveShadowingInNestedScope(t *testing.T) {
	src := `
		let x = 1;
		if (true) {
			let x = 2;
		}
	`
	res, _ := resolveSrc(t, src)
	require.Equal(t, 1, res.GlobalsLen, "the inner 'x' is a local of the module table, not a new global")
}

func TestResolveReassignCapturedConstErrors(t *testing.T) {
	toks := lexer.Lex([]byte("const x = 1; func f() { x = 2; } f();"))
	a, _ := parser.Parse(toks)
	r := resolver.New(a, toks, machine.NativeIndex())
	r.Resolve()
	require.NotEmpty(t, r.Diagnostics, "reassigning a const captured as an upvalue must still be flagged")
	require.Equal(t, resolver.Reassignment, r.Diagnostics[0].Kind)
}

func TestResolveNewExprResolvesClassNameAndArgs(t *testing.T) {
	src := `
		class Point {
			func init(x, y) { return x; }
		}
		let p = new Point(1, 2);
	`
	res, toks := resolveSrc(t, src)
	module := res.Tables[0]
	for tok, r := range module.ResolvedByTok {
		if toks.Lexeme(tok) == "Point" {
			require.Equal(t, resolver.ResGlobal, r.Kind)
			return
		}
	}
	t.Fatal("expected the 'new Point(...)' class-name reference to be resolved")
}

func TestResolveGetPropResolvesReceiver(t *testing.T) {
	src := `
		let obj = 1;
		let v = obj.field;
	`
	res, toks := resolveSrc(t, src)
	module := res.Tables[0]
	for tok, r := range module.ResolvedByTok {
		if toks.Lexeme(tok) == "obj" {
			require.Equal(t, resolver.ResGlobal, r.Kind)
			return
		}
	}
	t.Fatal("expected the 'obj' receiver of obj.field to be resolved")
}

func TestResolveNativeFunctionReference(t *testing.T) {
	res, toks := resolveSrc(t, "print(1);")
	module := res.Tables[0]
	for tok, r := range module.ResolvedByTok {
		if toks.Lexeme(tok) == "print" {
			require.Equal(t, resolver.ResNative, r.Kind)
			return
		}
	}
	t.Fatal("expected a resolution recorded for the 'print' reference")
}
