package machine

import (
	"fmt"
	"strings"

	"github.com/hinton-lang/hinton/lang/token"
)

// RuntimeErrKind tags the runtime half of the error taxonomy in spec.md §7.
type RuntimeErrKind uint8

const (
	TypeErr RuntimeErrKind = iota
	ArgumentErr
	IndexErr
	RecursionErr
	IOErr
)

func (k RuntimeErrKind) String() string {
	switch k {
	case TypeErr:
		return "Type"
	case ArgumentErr:
		return "Argument"
	case IndexErr:
		return "Index"
	case RecursionErr:
		return "Recursion"
	case IOErr:
		return "IO"
	default:
		return "Runtime"
	}
}

// TraceFrame is one entry of a RuntimeError's unwound call stack.
type TraceFrame struct {
	FuncName string
	Line     int
}

// RuntimeError is returned by the VM when a handler aborts execution. The
// whole call stack is unwound and captured in Frames before propagation, so
// the caller can print a traceback without the VM state still being alive.
type RuntimeError struct {
	Kind    RuntimeErrKind
	Message string
	Line    int
	Col     int
	Frames  []TraceFrame
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[%d:%d] %s: %s", e.Line, e.Col, e.Kind, e.Message)
}

func newRuntimeErr(toks *token.List, tok token.Idx, kind RuntimeErrKind, format string, args ...any) *RuntimeError {
	loc := toks.Loc(tok)
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Line: loc.Line, Col: loc.ColStart}
}

// Traceback renders e in the source's user-visible form: an ANSI-bold
// "ERROR:" prefix, the message with its source location, each stack frame,
// and repeated-frame coalescing ("Previous line repeated N more times")
// once an identical frame has printed twice in a row (spec.md §7).
func Traceback(e *RuntimeError, color bool) string {
	var b strings.Builder
	prefix := "ERROR:"
	if color {
		prefix = ansiBold + "ERROR:" + ansiReset
	}
	fmt.Fprintf(&b, "%s [%d:%d] %s: %s\n", prefix, e.Line, e.Col, e.Kind, e.Message)

	var prev *TraceFrame
	repeat := 0
	flush := func() {
		if repeat > 2 {
			fmt.Fprintf(&b, "  ... Previous line repeated %d more times\n", repeat-2)
		}
	}
	for i := range e.Frames {
		f := e.Frames[i]
		if prev != nil && f == *prev {
			repeat++
			if repeat <= 2 {
				fmt.Fprintf(&b, "  at %s, line %d\n", f.FuncName, f.Line)
			}
			continue
		}
		flush()
		repeat = 0
		fmt.Fprintf(&b, "  at %s, line %d\n", f.FuncName, f.Line)
		fcopy := f
		prev = &fcopy
	}
	flush()
	fmt.Fprintf(&b, "Aborted execution due to 1 previous error\n")
	return b.String()
}
