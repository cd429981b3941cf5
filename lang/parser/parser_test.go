package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hinton-lang/hinton/lang/ast"
	"github.com/hinton-lang/hinton/lang/lexer"
	"github.com/hinton-lang/hinton/lang/token"
)

func parseSrc(t *testing.T, src string) (*ast.Arena, *token.List) {
	t.Helper()
	toks := lexer.Lex([]byte(src))
	a, errs := Parse(toks)
	require.Empty(t, errs, "unexpected parse errors")
	return a, toks
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// "1 + 2 * 3" must parse as Binary(+, 1, Binary(*, 2, 3)): multiplication
	// binds tighter, so it is the right child of the outer addition.
	a, toks := parseSrc(t, "1 + 2 * 3;")
	root := a.Get(0)
	require.Len(t, root.List, 1)

	exprStmt := a.Get(root.List[0])
	require.Equal(t, ast.KExprStmt, exprStmt.Kind)

	plus := a.Get(exprStmt.A)
	require.Equal(t, ast.KBinary, plus.Kind)
	require.Equal(t, token.PLUS, toks.Get(plus.Tok).Kind)

	left := a.Get(plus.A)
	require.Equal(t, ast.KLiteralInt, left.Kind)
	require.EqualValues(t, 1, left.Int)

	right := a.Get(plus.B)
	require.Equal(t, ast.KBinary, right.Kind)
	require.Equal(t, token.STAR, toks.Get(right.Tok).Kind)
}

func TestParseLetDecl(t *testing.T) {
	a, toks := parseSrc(t, "let x = 42;")
	decl := a.Get(a.Get(0).List[0])
	require.Equal(t, ast.KLetDecl, decl.Kind)
	require.Equal(t, "x", toks.Lexeme(decl.Tok))

	init := a.Get(decl.A)
	require.Equal(t, ast.KLiteralInt, init.Kind)
	require.EqualValues(t, 42, init.Int)
}

func TestParseFuncDecl(t *testing.T) {
	a, toks := parseSrc(t, "func add(a, b) { return a + b; }")
	decl := a.Get(a.Get(0).List[0])
	require.Equal(t, ast.KFuncDecl, decl.Kind)
	require.Equal(t, "add", toks.Lexeme(decl.Tok))

	fn := a.Get(decl.A)
	require.Equal(t, ast.KFuncExpr, fn.Kind)
	require.Len(t, fn.Names, 2)
	require.Equal(t, "a", toks.Lexeme(fn.Names[0]))
	require.Equal(t, "b", toks.Lexeme(fn.Names[1]))
	require.EqualValues(t, 2, fn.Int) // both params required, no defaults
}

func TestParseIfElse(t *testing.T) {
	a, _ := parseSrc(t, "if (x) { y; } else { z; }")
	stmt := a.Get(a.Get(0).List[0])
	require.Equal(t, ast.KIfStmt, stmt.Kind)
	require.GreaterOrEqual(t, int(stmt.A), 0)
	require.GreaterOrEqual(t, int(stmt.B), 0)
	require.GreaterOrEqual(t, int(stmt.C), 0)
}

func TestParseForIn(t *testing.T) {
	a, toks := parseSrc(t, "for x in 0..10 { print(x); }")
	stmt := a.Get(a.Get(0).List[0])
	require.Equal(t, ast.KForInStmt, stmt.Kind)
	require.Equal(t, "x", toks.Lexeme(stmt.Tok))

	iter := a.Get(stmt.A)
	require.Equal(t, ast.KRangeLit, iter.Kind)
}

func TestParseCallAndIndexChain(t *testing.T) {
	a, _ := parseSrc(t, "a[0](1, 2);")
	exprStmt := a.Get(a.Get(0).List[0])
	call := a.Get(exprStmt.A)
	require.Equal(t, ast.KCall, call.Kind)
	require.Len(t, call.List, 2)

	callee := a.Get(call.A)
	require.Equal(t, ast.KIndex, callee.Kind)
}

func TestParseErrorRecoveryReportsDiagnostic(t *testing.T) {
	toks := lexer.Lex([]byte("let = ;"))
	_, errs := Parse(toks)
	require.NotEmpty(t, errs)
}

func TestParsePropertyAccess(t *testing.T) {
	a, toks := parseSrc(t, "a.b;")
	exprStmt := a.Get(a.Get(0).List[0])
	get := a.Get(exprStmt.A)
	require.Equal(t, ast.KGetProp, get.Kind)
	require.Equal(t, "b", toks.Lexeme(get.Tok))

	recv := a.Get(get.A)
	require.Equal(t, ast.KIdent, recv.Kind)
	require.Equal(t, "a", toks.Lexeme(recv.Tok))
}

func TestParseNewExpr(t *testing.T) {
	a, toks := parseSrc(t, "new Point(1, 2);")
	exprStmt := a.Get(a.Get(0).List[0])
	n := a.Get(exprStmt.A)
	require.Equal(t, ast.KNewExpr, n.Kind)
	require.Equal(t, "Point", toks.Lexeme(n.Tok))
	require.Len(t, n.List, 2)
}

func TestParseChainedNewPropertyCall(t *testing.T) {
	a, toks := parseSrc(t, "new Point(1, 2).x();")
	exprStmt := a.Get(a.Get(0).List[0])
	call := a.Get(exprStmt.A)
	require.Equal(t, ast.KCall, call.Kind)

	get := a.Get(call.A)
	require.Equal(t, ast.KGetProp, get.Kind)
	require.Equal(t, "x", toks.Lexeme(get.Tok))

	newExpr := a.Get(get.A)
	require.Equal(t, ast.KNewExpr, newExpr.Kind)
	require.Equal(t, "Point", toks.Lexeme(newExpr.Tok))
}
