package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/hinton-lang/hinton/lang/lexer"
	"github.com/hinton-lang/hinton/lang/token"
)

// Tokenize runs only the lexer and prints one line per token: its source
// location, kind, and lexeme.
func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	src, err := readSource(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s%s: %s\n", boldErrPrefix(), args[0], err)
		return ExitCompile
	}
	toks := lexer.Lex(src)
	for i := 0; i < toks.Len(); i++ {
		idx := token.Idx(i)
		loc := toks.Loc(idx)
		fmt.Fprintf(stdio.Stdout, "%d:%d  %-12s %q\n", loc.Line, loc.ColStart, toks.Get(idx).Kind, toks.Lexeme(idx))
	}
	return ExitSuccess
}
