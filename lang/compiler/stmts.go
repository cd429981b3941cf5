package compiler

import (
	"github.com/hinton-lang/hinton/lang/ast"
	"github.com/hinton-lang/hinton/lang/machine"
	"github.com/hinton-lang/hinton/lang/resolver"
	"github.com/hinton-lang/hinton/lang/token"
)

// stmt compiles one statement node, leaving the operand stack exactly as it
// found it (statements never leave a residual value, unlike expr).
func (c *Compiler) stmt(idx ast.Idx) {
	if idx < 0 {
		return
	}
	n := c.ast.Get(idx)
	switch n.Kind {
	case ast.KLetDecl, ast.KConstDecl:
		c.expr(n.A)
		c.finishDecl(n.Tok)
	case ast.KFuncDecl:
		c.funcDecl(n)
	case ast.KClassDecl:
		c.classDecl(n)
	case ast.KBlock:
		c.block(n)
	case ast.KExprStmt:
		c.expr(n.A)
		c.emitByte(c.chunk(), machine.PopStackTop, n.Tok)
	case ast.KIfStmt:
		c.ifStmt(n)
	case ast.KWhileStmt:
		c.whileStmt(n)
	case ast.KLoopStmt:
		c.loopStmt(n)
	case ast.KForInStmt:
		c.forInStmt(n)
	case ast.KBreakStmt:
		c.breakStmt(n)
	case ast.KContinueStmt:
		c.continueStmt(n)
	case ast.KReturnStmt:
		c.returnStmt(n)
	default:
		c.errf(InvalidConst, n.Tok, "cannot compile statement node kind %d.", n.Kind)
	}
}

// finishDecl emits the store half of a let/const/func declaration: a global
// slot is written explicitly (DefineGlobal pops the initializer), a local
// slot is implicit — the initializer's value, already sitting on the
// operand stack, simply becomes that local.
func (c *Compiler) finishDecl(tok token.Idx) {
	loc, ok := c.declLoc[tok]
	if !ok {
		return
	}
	if loc.Kind == resolver.LocGlobal {
		c.emitOperand(machine.DefineGlobal, int(loc.Index), tok)
		return
	}
	c.cur.stackLen++
}

func (c *Compiler) block(n *ast.Node) {
	base := c.cur.stackLen
	for _, s := range n.List {
		c.stmt(s)
	}
	count := c.cur.stackLen - base
	if count > 0 {
		c.emitOperand(machine.CloseUpVal, base, n.Tok)
		c.emitOperand(machine.PopStackTopN, count, n.Tok)
		c.cur.stackLen = base
	}
}

func (c *Compiler) ifStmt(n *ast.Node) {
	c.expr(n.A)
	elseJump := c.emitJump(machine.PopJumpIfFalse, n.Tok)
	c.stmt(n.B)
	if n.C >= 0 {
		endJump := c.emitJump(machine.JumpForward, n.Tok)
		c.patchJump(elseJump)
		c.stmt(n.C)
		c.patchJump(endJump)
	} else {
		c.patchJump(elseJump)
	}
}

func (c *Compiler) whileStmt(n *ast.Node) {
	loopStart := c.chunk().Len()
	c.expr(n.A)
	exitJump := c.emitJump(machine.PopJumpIfFalse, n.Tok)

	ls := &loopScope{chunkLoc: loopStart, declsCount: c.cur.stackLen}
	c.cur.loops = append(c.cur.loops, ls)
	c.stmt(n.B)
	c.emitLoopJump(loopStart, n.Tok)
	c.patchJump(exitJump)
	c.patchBreaks(ls)
	c.cur.loops = c.cur.loops[:len(c.cur.loops)-1]
}

func (c *Compiler) loopStmt(n *ast.Node) {
	loopStart := c.chunk().Len()
	ls := &loopScope{chunkLoc: loopStart, declsCount: c.cur.stackLen}
	c.cur.loops = append(c.cur.loops, ls)
	c.stmt(n.A)
	c.emitLoopJump(loopStart, n.Tok)
	c.patchBreaks(ls)
	c.cur.loops = c.cur.loops[:len(c.cur.loops)-1]
}

// forInStmt compiles a for-in loop over the MakeIter/ForIterNextOrJump
// protocol (lang/machine/subscript.go): the iterable is consumed by
// MakeIter, which reserves the loop variable's resolver-assigned stack slot
// with a placeholder; ForIterNextOrJump overwrites that slot in place each
// iteration and signals exhaustion by leaving it untouched and requesting
// the exit jump.
func (c *Compiler) forInStmt(n *ast.Node) {
	c.expr(n.A)
	c.emitByte(c.chunk(), machine.MakeIter, n.Tok)
	varBase := c.cur.stackLen // index the loop variable now occupies
	c.cur.stackLen++

	loopStart := c.chunk().Len()
	exitJump := c.emitJump(machine.ForIterNextOrJump, n.Tok)

	ls := &loopScope{chunkLoc: loopStart, declsCount: c.cur.stackLen}
	c.cur.loops = append(c.cur.loops, ls)
	c.stmt(n.B)
	c.emitLoopJump(loopStart, n.Tok)

	c.patchJump(exitJump)
	c.patchBreaks(ls)
	c.cur.loops = c.cur.loops[:len(c.cur.loops)-1]

	c.emitOperand(machine.CloseUpVal, varBase, n.Tok)
	c.emitOperand(machine.PopStackTopN, 1, n.Tok)
	c.cur.stackLen = varBase
}

func (c *Compiler) patchBreaks(ls *loopScope) {
	for _, pos := range ls.breaks {
		c.patchJump(pos)
	}
}

func (c *Compiler) breakStmt(n *ast.Node) {
	if len(c.cur.loops) == 0 {
		c.errf(InvalidTarget, n.Tok, "'break' outside of a loop.")
		return
	}
	ls := c.cur.loops[len(c.cur.loops)-1]
	c.unwindToLoop(ls, n.Tok)
	pos := c.emitJump(machine.JumpForward, n.Tok)
	ls.breaks = append(ls.breaks, pos)
}

func (c *Compiler) continueStmt(n *ast.Node) {
	if len(c.cur.loops) == 0 {
		c.errf(InvalidTarget, n.Tok, "'continue' outside of a loop.")
		return
	}
	ls := c.cur.loops[len(c.cur.loops)-1]
	c.unwindToLoop(ls, n.Tok)
	c.emitLoopJump(ls.chunkLoc, n.Tok)
}

func (c *Compiler) unwindToLoop(ls *loopScope, tok token.Idx) {
	extra := c.cur.stackLen - ls.declsCount
	if extra > 0 {
		c.emitOperand(machine.CloseUpVal, ls.declsCount, tok)
		c.emitOperand(machine.PopStackTopN, extra, tok)
	}
}

func (c *Compiler) returnStmt(n *ast.Node) {
	if n.A >= 0 {
		c.expr(n.A)
	} else {
		c.emitByte(c.chunk(), machine.LoadNone, n.Tok)
	}
	c.emitByte(c.chunk(), machine.Return, n.Tok)
}

// classDecl emits MakeClass followed by one AppendClassField per method: the
// class value starts as an empty record named by n.Tok, and each method
// closure (compiled exactly like a function declaration's value) gets
// attached under its own name, leaving a single class value on the stack
// for finishDecl. spec.md §9 leaves the class/instance VM handlers
// themselves as explicit "not yet implemented" stubs (lang/machine/vm.go);
// this only ensures the compiler actually emits MakeClass/AppendClassField/
// MakeInstanceOp/GetProp/SetProp so those stubs are reachable rather than
// dead code.
func (c *Compiler) classDecl(n *ast.Node) {
	c.emitOperand(machine.MakeClass, c.propNameConst(n.Tok), n.Tok)
	for i, methodTok := range n.Names[1:] {
		c.funcValue(n.List[i], methodTok)
		c.emitOperand(machine.AppendClassField, c.propNameConst(methodTok), methodTok)
	}
	c.finishDecl(n.Tok)
}
