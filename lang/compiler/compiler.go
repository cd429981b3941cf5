// Package compiler walks a resolved ast.Arena and emits, per user-defined
// function, a machine.Chunk of bytecode plus a shared constant pool and
// heap, per spec.md §4.2 (Bytecode & Chunk) and §4.3 (Compiler). It
// consumes resolver.Arena's per-token resolutions rather than re-deriving
// scope information, mirroring the teacher's compiler/resolver split
// (lang/compiler consults lang/resolver's Bindings without recomputing
// them).
package compiler

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/hinton-lang/hinton/lang/ast"
	"github.com/hinton-lang/hinton/lang/machine"
	"github.com/hinton-lang/hinton/lang/resolver"
	"github.com/hinton-lang/hinton/lang/token"
)

const maxU16 = 65535

// ErrKind tags a compile-time diagnostic; distinct from resolver.ErrKind
// because the compiler surfaces its own MaxCapacity conditions (constant
// pool, jump distance) independent of the resolver's.
type ErrKind uint8

//nolint:revive
const (
	MaxCapacity ErrKind = iota
	InvalidTarget
	InvalidConst
)

func (k ErrKind) String() string {
	switch k {
	case MaxCapacity:
		return "MaxCapacity"
	case InvalidTarget:
		return "InvalidTarget"
	case InvalidConst:
		return "InvalidConst"
	default:
		return "Error"
	}
}

// Diagnostic is one compile-time error. Collected, never thrown, so that
// compilation runs to completion and reports every diagnostic (spec.md §7).
type Diagnostic struct {
	Kind ErrKind
	Tok  token.Idx
	Msg  string
}

func (d Diagnostic) Error() string { return d.Msg }

// Result is everything the VM needs to run the compiled program.
type Result struct {
	Entry      machine.Handle
	Constants  []machine.Object
	Heap       *machine.Heap
	GlobalsLen int
}

// Compile translates a (fully resolved, diagnostic-free) ast.Arena into
// bytecode. Callers must check resolver diagnostics are empty before
// calling this; behavior on an AST with unresolved references is
// undefined, matching the teacher's CompileFiles contract ("An AST that
// resulted in errors in the resolve phase should never be passed to the
// compiler").
func Compile(a *ast.Arena, toks *token.List, res *resolver.Arena) (*Result, []Diagnostic) {
	c := &Compiler{
		ast:        a,
		toks:       toks,
		res:        res,
		heap:       machine.NewHeap(),
		constIndex: make(map[machine.Object]int),
		declLoc:    make(map[token.Idx]resolver.Location),
	}
	for _, t := range res.Tables {
		for _, sym := range t.Symbols {
			c.declLoc[sym.TokenIdx] = sym.Loc
		}
	}

	module := &funcCtx{tblIdx: 0, chunk: &machine.Chunk{}, stackLen: 1}
	c.cur = module

	root := a.Get(0)
	for _, s := range root.List {
		c.stmt(s)
	}
	c.emitByte(module.chunk, machine.EndVirtualMachine, lastTok(a, root))

	entryFn := &machine.FuncObj{MinArity: 0, MaxArity: 0, Chunk: module.chunk}
	entry := c.heap.AllocFunc(entryFn)

	if len(c.diags) > 0 {
		slices.SortFunc(c.diags, func(a, b Diagnostic) int { return int(a.Tok) - int(b.Tok) })
		return nil, c.diags
	}
	return &Result{Entry: entry, Constants: c.constants, Heap: c.heap, GlobalsLen: res.GlobalsLen}, nil
}

func lastTok(a *ast.Arena, root *ast.Node) token.Idx {
	if len(root.List) == 0 {
		return 0
	}
	return a.Get(root.List[len(root.List)-1]).Tok
}

// Compiler is the top-level compilation state: the shared constant pool,
// heap, and diagnostic list live here; funcCtx holds the per-function
// state (current chunk, loop/break scopes, local count).
type Compiler struct {
	ast  *ast.Arena
	toks *token.List
	res  *resolver.Arena
	heap *machine.Heap

	constants  []machine.Object
	constIndex map[machine.Object]int
	declLoc    map[token.Idx]resolver.Location

	cur *funcCtx

	diags []Diagnostic
}

// funcCtx is the compiler state for one function body being emitted,
// mirroring spec.md §4.3's "current_fn / current_table" pair.
type funcCtx struct {
	parent *funcCtx
	tblIdx int
	chunk  *machine.Chunk
	// stackLen mirrors resolver.Table.StackLen: it is the frame slot the
	// NEXT local declaration would occupy, not a count of locals declared.
	// Slot 0 in every frame is the callee itself, so this starts at
	// 1+maxArity (see funcValue). resolver.declare numbers locals from the
	// slot after the callee, so a local's Stack index is its slot minus one.
	stackLen int
	loops    []*loopScope
}

// loopScope is spec.md §3's compiler-only "Loop scope" record: chunkLoc is
// where `continue` jumps back to, declsCount is the local count baseline
// that `break`/`continue` must unwind to before jumping, and breaks holds
// the chunk offsets of forward-jump placeholders patched once the loop's
// exit point is known.
type loopScope struct {
	chunkLoc   int
	declsCount int
	breaks     []int
}

func (c *Compiler) errf(kind ErrKind, tok token.Idx, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Kind: kind, Tok: tok, Msg: fmt.Sprintf(format, args...)})
}

func (c *Compiler) table() *resolver.Table { return c.res.Tables[c.cur.tblIdx] }

func (c *Compiler) chunk() *machine.Chunk { return c.cur.chunk }

func (c *Compiler) emitByte(ch *machine.Chunk, op machine.OpCode, tok token.Idx) int {
	return ch.PushByte(byte(op), tok)
}

// emitOperand emits op with operand v, picking the short (1-byte) or long
// (2-byte) form based on v's width, per spec.md §4.2's "short/long opcode"
// contract. An opcode with no long form reports MaxCapacity when v does not
// fit a byte.
func (c *Compiler) emitOperand(op machine.OpCode, v int, tok token.Idx) {
	ch := c.chunk()
	if v < 256 {
		c.emitByte(ch, op, tok)
		ch.PushByte(byte(v), tok)
	} else if long := machine.LongForm(op); long != op {
		c.emitByte(ch, long, tok)
		ch.PushShort(uint16(v), tok)
	} else {
		c.errf(MaxCapacity, tok, "operand %d too large for %s (limit 255).", v, op)
	}
}

// emitJump emits op (a 2-byte-operand jump) with a placeholder offset and
// returns the offset of the first placeholder byte, for later patchJump.
func (c *Compiler) emitJump(op machine.OpCode, tok token.Idx) int {
	ch := c.chunk()
	c.emitByte(ch, op, tok)
	pos := ch.PushShort(0, tok)
	return pos
}

// patchJump patches the forward jump at pos to land on the chunk's current
// end, per spec.md §4.2: "jump = chunk.len - offset_pos - 2".
func (c *Compiler) patchJump(pos int) {
	ch := c.chunk()
	dist := ch.Len() - pos - 2
	if dist > maxU16 {
		c.errf(MaxCapacity, 0, "Too much code to jump over.")
		return
	}
	ch.PatchShort(pos, uint16(dist))
}

// emitLoopJump emits an unconditional backward jump to loopStart. Loop
// jumps encode a backward offset relative to the position immediately
// after the instruction itself (spec.md §4.2), so the short-vs-long choice
// must account for the instruction's own size before the distance is
// known; short form is tried first since it is the common case.
func (c *Compiler) emitLoopJump(loopStart int, tok token.Idx) {
	ch := c.chunk()
	distShort := ch.Len() + 2 - loopStart
	if distShort >= 0 && distShort < 256 {
		c.emitByte(ch, machine.LoopJump, tok)
		ch.PushByte(byte(distShort), tok)
		return
	}
	distLong := ch.Len() + 3 - loopStart
	if distLong > maxU16 {
		c.errf(MaxCapacity, tok, "Loop body too large.")
		distLong = 0
	}
	c.emitByte(ch, machine.LoopJumpLong, tok)
	ch.PushShort(uint16(distLong), tok)
}
