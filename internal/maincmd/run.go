package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/hinton-lang/hinton/lang/machine"
)

// Run compiles and executes a single source file, per spec.md §6's default
// command. Exit codes follow spec.md §6: 0 success, 65 compile error, 70
// runtime error.
func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, args []string) mainer.ExitCode {
	fe, ok := runFrontEnd(stdio, args[0])
	if !ok {
		return ExitCompile
	}
	result, ok := compileFrontEnd(stdio, fe)
	if !ok {
		return ExitCompile
	}

	cfg := loadConfig(stdio)
	vmCfg := machine.Config{MaxFrames: cfg.MaxFrames, MaxSteps: cfg.MaxSteps, Color: !cfg.DisableColor}
	vm := machine.New(result.Constants, result.Heap, fe.toks, result.GlobalsLen, vmCfg, stdio.Stdout, stdio.Stdin)
	if rerr := vm.Run(result.Entry); rerr != nil {
		stdio.Stderr.Write([]byte(machine.Traceback(rerr, vmCfg.Color)))
		return ExitRuntime
	}
	return ExitSuccess
}
