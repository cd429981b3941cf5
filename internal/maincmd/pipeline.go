package maincmd

import (
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/hinton-lang/hinton/internal/config"
	"github.com/hinton-lang/hinton/lang/ast"
	"github.com/hinton-lang/hinton/lang/compiler"
	"github.com/hinton-lang/hinton/lang/lexer"
	"github.com/hinton-lang/hinton/lang/machine"
	"github.com/hinton-lang/hinton/lang/parser"
	"github.com/hinton-lang/hinton/lang/resolver"
	"github.com/hinton-lang/hinton/lang/token"
)

// frontEnd is the shared lex -> parse -> resolve pipeline every subcommand
// needs at least a prefix of. Diagnostics are printed to stderr in the
// spec.md §7 format ("collect, never throw; run to completion").
type frontEnd struct {
	toks *token.List
	ast  *ast.Arena
	res  *resolver.Arena
}

func readSource(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func runFrontEnd(stdio mainer.Stdio, path string) (*frontEnd, bool) {
	src, err := readSource(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s%s: %s\n", boldErrPrefix(), path, err)
		return nil, false
	}

	toks := lexer.Lex(src)
	a, perrs := parser.Parse(toks)
	for _, e := range perrs {
		printSyntaxError(stdio, toks, e)
	}
	if len(perrs) > 0 {
		printAborted(stdio, len(perrs))
		return nil, false
	}

	natives := machine.NativeIndex()
	r := resolver.New(a, toks, natives)
	arena := r.Resolve()
	for _, d := range r.Diagnostics {
		printResolverError(stdio, toks, d)
	}
	if len(r.Diagnostics) > 0 {
		printAborted(stdio, len(r.Diagnostics))
		return nil, false
	}

	return &frontEnd{toks: toks, ast: a, res: arena}, true
}

func compileFrontEnd(stdio mainer.Stdio, fe *frontEnd) (*compiler.Result, bool) {
	res, diags := compiler.Compile(fe.ast, fe.toks, fe.res)
	for _, d := range diags {
		printCompileError(stdio, fe.toks, d)
	}
	if len(diags) > 0 {
		printAborted(stdio, len(diags))
		return nil, false
	}
	return res, true
}

func boldErrPrefix() string { return "\x1b[1mERROR:\x1b[0m " }

func printSyntaxError(stdio mainer.Stdio, toks *token.List, e parser.Error) {
	loc := toks.Loc(e.Tok)
	fmt.Fprintf(stdio.Stderr, "%s[%d:%d] Syntax: %s\n", boldErrPrefix(), loc.Line, loc.ColStart, e.Msg)
}

func printResolverError(stdio mainer.Stdio, toks *token.List, d resolver.Diagnostic) {
	loc := toks.Loc(d.Tok)
	fmt.Fprintf(stdio.Stderr, "%s[%d:%d] %s: %s\n", boldErrPrefix(), loc.Line, loc.ColStart, d.Kind, d.Msg)
	if d.Hint != "" {
		fmt.Fprintf(stdio.Stderr, "  hint: %s\n", d.Hint)
	}
}

func printCompileError(stdio mainer.Stdio, toks *token.List, d compiler.Diagnostic) {
	loc := toks.Loc(d.Tok)
	fmt.Fprintf(stdio.Stderr, "%s[%d:%d] %s: %s\n", boldErrPrefix(), loc.Line, loc.ColStart, d.Kind, d.Msg)
}

func printAborted(stdio mainer.Stdio, n int) {
	plural := "s"
	if n == 1 {
		plural = ""
	}
	fmt.Fprintf(stdio.Stderr, "Aborted execution due to %d previous error%s\n", n, plural)
}

func loadConfig(stdio mainer.Stdio) config.Runtime {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "warning: invalid environment configuration: %s\n", err)
	}
	return cfg
}
