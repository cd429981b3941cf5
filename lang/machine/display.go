package machine

import (
	"strconv"
	"strings"
)

// DisplayPlain renders o with no coloring: used by string interpolation,
// BuildStr, and input's prompt. Spec.md §4.5 calls this the "plain" form.
func DisplayPlain(h *Heap, o Object) string {
	switch o.Kind {
	case KNone:
		return "none"
	case KBool:
		if o.Bool() {
			return "true"
		}
		return "false"
	case KInt:
		return strconv.FormatInt(o.I, 10)
	case KFloat:
		return strconv.FormatFloat(o.F, 'g', -1, 64)
	case KStr:
		return h.Str(o.H)
	case KFunc:
		f := h.Func(o.H)
		name := "<anonymous>"
		if f.Name != 0 || (f.Name == 0 && h.Str(f.Name) != "") {
			if s := h.Str(f.Name); s != "" {
				name = s
			}
		}
		return "<func " + name + ">"
	case KNativeFunc:
		return "<native func>"
	case KArray:
		return displaySeq(h, h.Array(o.H).Elems, "[", "]")
	case KTuple:
		return displaySeq(h, h.Tuple(o.H).Elems, "(", ")")
	case KRange:
		return h.Range(o.H).String()
	case KDict:
		return displayDict(h, h.Dict(o.H))
	default:
		return "<unknown>"
	}
}

func displaySeq(h *Heap, elems []Object, open, close string) string {
	var b strings.Builder
	b.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(DisplayPlain(h, e))
	}
	b.WriteString(close)
	return b.String()
}

func displayDict(h *Heap, d *DictObj) string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	d.Each(func(k, v Object) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(DisplayPlain(h, k))
		b.WriteString(": ")
		b.WriteString(DisplayPlain(h, v))
		return true
	})
	b.WriteString("}")
	return b.String()
}

// ANSI styling for the "pretty" display form (spec.md §4.5); disabled
// wholesale by config.Runtime.DisableColor.
const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// DisplayPretty colorizes by kind when color is true; print/println use it
// for their output.
func DisplayPretty(h *Heap, o Object, color bool) string {
	plain := DisplayPlain(h, o)
	if !color {
		return plain
	}
	switch o.Kind {
	case KStr:
		return ansiGreen + plain + ansiReset
	case KInt, KFloat:
		return ansiCyan + plain + ansiReset
	case KBool, KNone:
		return ansiYellow + plain + ansiReset
	default:
		return plain
	}
}
