package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Resolve runs lexer+parser+resolver and prints every symbol table's
// declarations, grouped by function, with each symbol's kind and resolved
// location.
func (c *Cmd) Resolve(_ context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	fe, ok := runFrontEnd(stdio, args[0])
	if !ok {
		return ExitCompile
	}
	for i, t := range fe.res.Tables {
		name := "<module>"
		if i != 0 {
			name = fmt.Sprintf("<function table %d>", i)
		}
		fmt.Fprintf(stdio.Stdout, "%s (parent=%d, stackLen=%d, upvalues=%d)\n", name, t.Parent, t.StackLen, len(t.Upvalues))
		for _, sym := range t.Symbols {
			lex := fe.toks.Lexeme(sym.TokenIdx)
			status := ""
			if sym.OutOfScope {
				status = " [out of scope]"
			}
			fmt.Fprintf(stdio.Stdout, "  %-20s %-10s %s%s\n", lex, sym.Kind, sym.Loc, status)
		}
	}
	return ExitSuccess
}
