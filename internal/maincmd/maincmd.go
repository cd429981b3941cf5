// Package maincmd is the CLI lifecycle for the hinton command: argument
// parsing, subcommand dispatch, and the exit-code contract of spec.md §6
// (0 success, 65 compile/parse error, 70 runtime error), wired the way the
// teacher's internal/maincmd wires mainer.Cmd/mainer.Parser.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "hinton"

// Exit codes, per spec.md §6.
const (
	ExitSuccess = mainer.ExitCode(0)
	ExitCompile = mainer.ExitCode(65)
	ExitRuntime = mainer.ExitCode(70)
)

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path>
       %[1]s -h|--help
       %[1]s -v|--version

Bytecode compiler and stack virtual machine for the hinton scripting
language core.

The <command> can be one of:
       run                       Compile and execute the given source file
                                 (the default command when only a path is
                                 given).
       tokenize                  Run the lexer and print the resulting
                                 tokens.
       parse                     Run lexer+parser and print the resulting
                                 syntax tree.
       resolve                   Run lexer+parser+resolver and print the
                                 symbol table of every function body.
       disasm                    Compile and print the disassembled
                                 bytecode of every function chunk.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Environment variables (see internal/config.Runtime):
       HINTON_MAX_FRAMES         Max call-frame depth (default 1000).
       HINTON_MAX_STEPS          Cooperative step budget, 0 = unlimited.
       HINTON_DISABLE_COLOR      Disable ANSI color in pretty output.
`, binName)
)

// Cmd is the CLI entry point, one instance per process invocation.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) mainer.ExitCode
}

func (c *Cmd) SetArgs(args []string)        { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool) {}

// Validate resolves the subcommand to dispatch to. A bare file path with no
// recognized subcommand name defaults to "run", matching spec.md §6 ("hinton
// <file> runs the given source").
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no source file or command specified")
	}

	commands := buildCmds(c)
	if fn, ok := commands[c.args[0]]; ok {
		c.cmdFn = fn
		c.args = c.args[1:]
	} else {
		c.cmdFn = commands["run"]
	}
	if len(c.args) == 0 {
		return fmt.Errorf("no source file provided")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: strings.ToUpper(binName) + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return ExitCompile
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return ExitSuccess
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return ExitSuccess
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	return c.cmdFn(ctx, stdio, c.args)
}

// buildCmds reflects over Cmd's exported methods to find the subcommand
// handlers, the same trick the teacher's buildCmds uses, adapted to return
// an exit code directly instead of an error (the core needs three exit
// codes, not just success/failure).
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) mainer.ExitCode {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) mainer.ExitCode)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Name() != "ExitCode" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) mainer.ExitCode)
	}
	return cmds
}
