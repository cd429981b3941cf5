package compiler

import (
	"github.com/hinton-lang/hinton/lang/ast"
	"github.com/hinton-lang/hinton/lang/machine"
	"github.com/hinton-lang/hinton/lang/resolver"
	"github.com/hinton-lang/hinton/lang/token"
)

// expr compiles idx so that, on return, exactly one value has been pushed
// onto the operand stack.
func (c *Compiler) expr(idx ast.Idx) {
	n := c.ast.Get(idx)
	switch n.Kind {
	case ast.KLiteralInt:
		c.loadInt(n.Int, n.Tok)
	case ast.KLiteralFloat:
		c.loadFloat(n.Float, n.Tok)
	case ast.KLiteralStr:
		h := c.heap.InternStr(n.Str)
		c.loadConst(machine.StrVal(h), n.Tok)
	case ast.KLiteralBool:
		if n.Bool {
			c.emitByte(c.chunk(), machine.LoadTrue, n.Tok)
		} else {
			c.emitByte(c.chunk(), machine.LoadFalse, n.Tok)
		}
	case ast.KLiteralNone:
		c.emitByte(c.chunk(), machine.LoadNone, n.Tok)
	case ast.KIdent:
		c.loadIdent(n.Tok)
	case ast.KAssign:
		c.assign(n)
	case ast.KBinary:
		c.binary(n)
	case ast.KLogical:
		c.logical(n)
	case ast.KUnary:
		c.expr(n.A)
		c.unary(n)
	case ast.KCall:
		c.expr(n.A)
		for _, a := range n.List {
			c.expr(a)
		}
		c.emitOperand(machine.FuncCall, len(n.List), n.Tok)
	case ast.KIndex:
		c.expr(n.A)
		c.expr(n.B)
		c.emitByte(c.chunk(), machine.Subscript, n.Tok)
	case ast.KGetProp:
		c.expr(n.A)
		c.emitOperand(machine.GetProp, c.propNameConst(n.Tok), n.Tok)
	case ast.KNewExpr:
		c.loadIdent(n.Tok)
		for _, a := range n.List {
			c.expr(a)
		}
		c.emitOperand(machine.MakeInstanceOp, len(n.List), n.Tok)
	case ast.KArrayLit:
		for _, e := range n.List {
			c.expr(e)
		}
		c.emitOperand(machine.MakeArray, len(n.List), n.Tok)
	case ast.KTupleLit:
		for _, e := range n.List {
			c.expr(e)
		}
		c.emitOperand(machine.MakeTuple, len(n.List), n.Tok)
	case ast.KDictLit:
		vals := c.ast.Get(n.A)
		for i, k := range n.List {
			c.expr(k)
			c.expr(vals.List[i])
		}
		c.emitOperand(machine.MakeDict, len(n.List), n.Tok)
	case ast.KRangeLit:
		c.expr(n.A)
		c.expr(n.B)
		op := machine.MakeRange
		if n.Bool {
			op = machine.MakeRangeEq
		}
		c.emitByte(c.chunk(), op, n.Tok)
		c.chunk().PushByte(0, n.Tok)
	case ast.KInterpolatedStr:
		for _, part := range n.List {
			c.expr(part)
		}
		c.emitOperand(machine.BuildStr, len(n.List), n.Tok)
	case ast.KFuncExpr:
		c.funcValue(idx, -1)
	default:
		c.errf(InvalidConst, n.Tok, "cannot compile expression node kind %d.", n.Kind)
	}
}

// loadInt implements spec.md §4.3's numeric literal policy: 0 and 1 use
// their dedicated immediate opcodes, values under 65536 use LoadImmN[Long],
// anything larger goes through the constant pool.
func (c *Compiler) loadInt(v int64, tok token.Idx) {
	switch {
	case v == 0:
		c.emitByte(c.chunk(), machine.LoadImm0I, tok)
	case v == 1:
		c.emitByte(c.chunk(), machine.LoadImm1I, tok)
	case v >= 0 && v < 1<<16:
		c.emitOperand(machine.LoadImmN, int(v), tok)
	default:
		c.loadConst(machine.IntVal(v), tok)
	}
}

func (c *Compiler) loadFloat(v float64, tok token.Idx) {
	switch v {
	case 0:
		c.emitByte(c.chunk(), machine.LoadImm0F, tok)
	case 1:
		c.emitByte(c.chunk(), machine.LoadImm1F, tok)
	default:
		c.loadConst(machine.FloatVal(v), tok)
	}
}

// internConst interns v into the shared constant pool by structural
// equality (spec.md §3: "entries are interned by structural equality"),
// returning its index. Overflow of the 16-bit pool is a fatal compile
// error (spec.md §3 invariant).
func (c *Compiler) internConst(v machine.Object, tok token.Idx) int {
	if idx, ok := c.constIndex[v]; ok {
		return idx
	}
	if len(c.constants) >= 1<<16 {
		c.errf(MaxCapacity, tok, "Too many constants in one program (limit %d).", 1<<16)
		return 0
	}
	idx := len(c.constants)
	c.constants = append(c.constants, v)
	c.constIndex[v] = idx
	return idx
}

func (c *Compiler) loadConst(v machine.Object, tok token.Idx) {
	idx := c.internConst(v, tok)
	c.emitOperand(machine.LoadConstant, idx, tok)
}

// propNameConst interns a property/method name (from its identifier token)
// into the constant pool, for GetProp/SetProp/AppendClassField operands.
func (c *Compiler) propNameConst(tok token.Idx) int {
	h := c.heap.InternStr(c.toks.Lexeme(tok))
	return c.internConst(machine.StrVal(h), tok)
}

func (c *Compiler) loadIdent(tok token.Idx) {
	res, ok := c.table().ResolvedByTok[tok]
	if !ok || res.Kind == resolver.ResNone {
		// The resolver already reported this; emit LoadNone to keep the
		// chunk well-formed for any downstream tooling inspecting it.
		c.emitByte(c.chunk(), machine.LoadNone, tok)
		return
	}
	switch res.Kind {
	case resolver.ResGlobal:
		c.emitOperand(machine.GetGlobal, int(res.Index), tok)
	case resolver.ResStack:
		c.emitOperand(machine.GetLocal, int(res.Index), tok)
	case resolver.ResUpVal:
		c.emitOperand(machine.GetUpVal, int(res.Index), tok)
	case resolver.ResNative:
		c.emitOperand(machine.LoadNative, int(res.Index), tok)
	}
}

func (c *Compiler) storeIdent(tok token.Idx) {
	res, ok := c.table().ResolvedByTok[tok]
	if !ok {
		return
	}
	switch res.Kind {
	case resolver.ResGlobal:
		c.emitOperand(machine.SetGlobal, int(res.Index), tok)
	case resolver.ResStack:
		c.emitOperand(machine.SetLocal, int(res.Index), tok)
	case resolver.ResUpVal:
		c.emitOperand(machine.SetUpVal, int(res.Index), tok)
	default:
		// Reassignment to a native or undeclared name; already reported by
		// the resolver. Leave the value on the stack untouched.
	}
}

func (c *Compiler) assign(n *ast.Node) {
	target := c.ast.Get(n.A)
	switch target.Kind {
	case ast.KIdent:
		c.expr(n.B)
		c.storeIdent(target.Tok)
	case ast.KIndex:
		c.expr(target.A)
		c.expr(target.B)
		c.expr(n.B)
		c.emitByte(c.chunk(), machine.SubscriptAssign, n.Tok)
	case ast.KGetProp:
		c.expr(target.A)
		c.expr(n.B)
		c.emitOperand(machine.SetProp, c.propNameConst(target.Tok), n.Tok)
	default:
		c.errf(InvalidTarget, n.Tok, "invalid assignment target.")
	}
}

var binaryOps = map[token.Kind]machine.OpCode{
	token.PLUS:       machine.Add,
	token.MINUS:      machine.Subtract,
	token.STAR:       machine.Multiply,
	token.SLASH:      machine.Divide,
	token.SLASHSLASH: machine.Divide, // Divide already truncates toward zero for Int/Int operands
	token.PERCENT:    machine.Modulus,
	token.AMP:        machine.BitwiseAnd,
	token.PIPE:       machine.BitwiseOr,
	token.CARET:      machine.BitwiseXor,
	token.SHL:        machine.BitwiseShiftLeft,
	token.SHR:        machine.BitwiseShiftRight,
	token.LT:         machine.LessThan,
	token.LE:         machine.LessThanEq,
	token.GT:         machine.GreaterThan,
	token.GE:         machine.GreaterThanEq,
	token.EQEQ:       machine.Equals,
	token.NE:         machine.NotEq,
}

func (c *Compiler) binary(n *ast.Node) {
	c.expr(n.A)
	c.expr(n.B)
	opTok := c.toks.Get(n.Tok).Kind
	op, ok := binaryOps[opTok]
	if !ok {
		c.errf(InvalidConst, n.Tok, "unsupported binary operator '%s'.", opTok)
		return
	}
	c.emitByte(c.chunk(), op, n.Tok)
}

// logical compiles &&, ||, and ??, all three short-circuiting the right
// operand via a JumpIf*OrPop that only pops and falls through to evaluate
// the right side when the left side didn't already decide the result.
func (c *Compiler) logical(n *ast.Node) {
	switch c.toks.Get(n.Tok).Kind {
	case token.ANDAND:
		c.expr(n.A)
		end := c.emitJump(machine.JumpIfFalseOrPop, n.Tok)
		c.expr(n.B)
		c.patchJump(end)
	case token.OROR:
		c.expr(n.A)
		end := c.emitJump(machine.JumpIfTrueOrPop, n.Tok)
		c.expr(n.B)
		c.patchJump(end)
	case token.QUESTIONQUESTION:
		c.expr(n.A)
		end := c.emitJump(machine.JumpIfNotNoneOrPop, n.Tok)
		c.expr(n.B)
		c.patchJump(end)
	}
}

func (c *Compiler) unary(n *ast.Node) {
	switch c.toks.Get(n.Tok).Kind {
	case token.MINUS:
		c.emitByte(c.chunk(), machine.Negate, n.Tok)
	case token.BANG:
		c.emitByte(c.chunk(), machine.LogicNot, n.Tok)
	case token.TILDE:
		c.emitByte(c.chunk(), machine.BitwiseNot, n.Tok)
	}
}
