package maincmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mna/mainer"

	"github.com/hinton-lang/hinton/lang/ast"
	"github.com/hinton-lang/hinton/lang/lexer"
	"github.com/hinton-lang/hinton/lang/parser"
	"github.com/hinton-lang/hinton/lang/token"
)

// Parse runs lexer+parser and prints the resulting syntax tree as an
// indented node dump.
func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	src, err := readSource(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s%s: %s\n", boldErrPrefix(), args[0], err)
		return ExitCompile
	}
	toks := lexer.Lex(src)
	a, errs := parser.Parse(toks)
	for _, e := range errs {
		printSyntaxError(stdio, toks, e)
	}
	printNode(stdio, a, toks, 0, 0)
	if len(errs) > 0 {
		printAborted(stdio, len(errs))
		return ExitCompile
	}
	return ExitSuccess
}

func printNode(stdio mainer.Stdio, a *ast.Arena, toks *token.List, idx ast.Idx, depth int) {
	// Unset A/B/C fields are 0, the module root's index; the root is only
	// ever printed at depth 0.
	if idx < 0 || (idx == 0 && depth > 0) {
		return
	}
	n := a.Get(idx)
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(stdio.Stdout, "%s%s", indent, nodeLabel(n, toks))
	fmt.Fprintln(stdio.Stdout)
	switch n.Kind {
	case ast.KLetDecl, ast.KConstDecl, ast.KFuncDecl:
		// The declared name is the node's token, not a child node.
		fmt.Fprintf(stdio.Stdout, "%s  Ident(%s)\n", indent, toks.Lexeme(n.Tok))
	}
	printNode(stdio, a, toks, n.A, depth+1)
	printNode(stdio, a, toks, n.B, depth+1)
	printNode(stdio, a, toks, n.C, depth+1)
	for _, c := range n.List {
		printNode(stdio, a, toks, c, depth+1)
	}
}

func nodeLabel(n *ast.Node, toks *token.List) string {
	switch n.Kind {
	case ast.KIdent:
		return fmt.Sprintf("Ident(%s)", toks.Lexeme(n.Tok))
	case ast.KLiteralInt:
		return fmt.Sprintf("Int(%d)", n.Int)
	case ast.KLiteralFloat:
		return fmt.Sprintf("Float(%g)", n.Float)
	case ast.KLiteralStr:
		return fmt.Sprintf("Str(%q)", n.Str)
	case ast.KLiteralBool:
		return fmt.Sprintf("Bool(%v)", n.Bool)
	case ast.KBinary, ast.KLogical, ast.KUnary:
		return fmt.Sprintf("%s(%s)", n.Kind, toks.Get(n.Tok).Kind)
	default:
		return n.Kind.String()
	}
}
