package compiler

import (
	"github.com/hinton-lang/hinton/lang/ast"
	"github.com/hinton-lang/hinton/lang/machine"
	"github.com/hinton-lang/hinton/lang/token"
)

func (c *Compiler) funcDecl(n *ast.Node) {
	c.funcValue(n.A, n.Tok)
	c.finishDecl(n.Tok)
}

// funcValue compiles a KFuncExpr body into its own machine.Chunk, builds
// the resulting blueprint FuncObj, and emits a MakeClosure instruction
// binding it to the enclosing chunk's up-value records. nameTok is the
// declaring identifier for a `func name(...)` declaration, or -1 for an
// anonymous function expression (spec.md §4.3's "func value" form).
func (c *Compiler) funcValue(idx ast.Idx, nameTok token.Idx) {
	n := c.ast.Get(idx)
	tblIdx, ok := c.res.FuncTable[idx]
	if !ok {
		c.errf(InvalidConst, n.Tok, "internal error: function body has no symbol table.")
		return
	}
	table := c.res.Tables[tblIdx]

	minArity := int(n.Int)
	maxArity := len(n.Names)

	defaults := make([]machine.Object, 0, len(n.List))
	for _, d := range n.List {
		v, ok := c.foldConst(d)
		if !ok {
			c.errf(InvalidConst, c.ast.Get(d).Tok, "default parameter values must be constant expressions.")
			v = machine.NoneVal()
		}
		defaults = append(defaults, v)
	}

	upvalDescs := make([]machine.UpvalDesc, len(table.Upvalues))
	for i, u := range table.Upvalues {
		upvalDescs[i] = machine.UpvalDesc{Index: u.Index, IsLocal: u.IsLocal}
	}

	childChunk := &machine.Chunk{}
	prevCur := c.cur
	c.cur = &funcCtx{parent: prevCur, tblIdx: tblIdx, chunk: childChunk, stackLen: 1 + maxArity}

	if len(defaults) > 0 {
		if maxArity >= 256 {
			c.errf(MaxCapacity, n.Tok, "too many parameters (limit 255) on a function with default values.")
		} else {
			c.emitByte(childChunk, machine.BindDefaults, n.Tok)
			childChunk.PushByte(byte(maxArity), n.Tok)
		}
	}
	body := c.ast.Get(n.A)
	for _, s := range body.List {
		c.stmt(s)
	}
	endTok := lastTok(c.ast, body)
	c.emitByte(childChunk, machine.LoadNone, endTok)
	c.emitByte(childChunk, machine.Return, endTok)

	c.cur = prevCur

	var name machine.Handle
	if nameTok >= 0 {
		name = c.heap.InternStr(c.toks.Lexeme(nameTok))
	}

	blueprint := &machine.FuncObj{
		Name:       name,
		MinArity:   minArity,
		MaxArity:   maxArity,
		Defaults:   defaults,
		Chunk:      childChunk,
		NumUpvals:  len(upvalDescs),
		UpvalDescs: upvalDescs,
	}
	h := c.heap.AllocFunc(blueprint)
	constIdx := c.internConst(machine.FuncVal(h), n.Tok)

	c.emitClosure(constIdx, upvalDescs, n.Tok)
}

// foldConst evaluates idx as a compile-time constant. Default parameter
// values must fold this way (machine.FuncObj.Defaults stores plain Objects,
// not bytecode), matching the teacher's convention of keeping the fast path
// (no per-call expression evaluation for defaults) over generality.
func (c *Compiler) foldConst(idx ast.Idx) (machine.Object, bool) {
	n := c.ast.Get(idx)
	switch n.Kind {
	case ast.KLiteralInt:
		return machine.IntVal(n.Int), true
	case ast.KLiteralFloat:
		return machine.FloatVal(n.Float), true
	case ast.KLiteralStr:
		return machine.StrVal(c.heap.InternStr(n.Str)), true
	case ast.KLiteralBool:
		return machine.BoolVal(n.Bool), true
	case ast.KLiteralNone:
		return machine.NoneVal(), true
	case ast.KUnary:
		v, ok := c.foldConst(n.A)
		if !ok {
			return machine.Object{}, false
		}
		if c.toks.Get(n.Tok).Kind == token.MINUS {
			switch v.Kind {
			case machine.KInt:
				return machine.IntVal(-v.I), true
			case machine.KFloat:
				return machine.FloatVal(-v.F), true
			}
		}
		return machine.Object{}, false
	default:
		return machine.Object{}, false
	}
}

// emitClosure emits the variable-length MakeClosure instruction family:
// constIdx selects the short or long function-pool form, and large widens
// every up-value record to a 2-byte slot if any single record needs it
// (spec.md §4.2: a single flag governs the whole record list, not each
// record independently).
func (c *Compiler) emitClosure(constIdx int, descs []machine.UpvalDesc, tok token.Idx) {
	long := constIdx >= 256
	large := false
	for _, d := range descs {
		if d.Index >= 256 {
			large = true
		}
	}

	var op machine.OpCode
	switch {
	case !long && !large:
		op = machine.MakeClosure
	case long && !large:
		op = machine.MakeClosureLong
	case !long && large:
		op = machine.MakeClosureLarge
	default:
		op = machine.MakeClosureLongLarge
	}

	ch := c.chunk()
	c.emitByte(ch, op, tok)
	if long {
		ch.PushShort(uint16(constIdx), tok)
	} else {
		ch.PushByte(byte(constIdx), tok)
	}
	for _, d := range descs {
		var flag byte
		if d.IsLocal {
			flag = 1
		}
		ch.PushByte(flag, tok)
		if large {
			ch.PushShort(d.Index, tok)
		} else {
			ch.PushByte(byte(d.Index), tok)
		}
	}
}
