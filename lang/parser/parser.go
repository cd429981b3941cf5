// Package parser builds a flat ast.Arena from a token.List. Like lexer, it
// is an external collaborator per spec scope, built out fully here because
// nothing else in this module can otherwise produce an AST to resolve,
// compile, and run.
package parser

import (
	"fmt"

	"github.com/hinton-lang/hinton/lang/ast"
	"github.com/hinton-lang/hinton/lang/token"
)

// Error is a single syntax diagnostic.
type Error struct {
	Tok token.Idx
	Msg string
}

func (e Error) Error() string { return e.Msg }

// Parse consumes toks fully and returns the resulting arena. Parse errors
// are collected (not thrown) and returned alongside whatever AST could be
// recovered, mirroring the core's "collect, don't abort" diagnostic policy.
func Parse(toks *token.List) (*ast.Arena, []Error) {
	p := &parser{toks: toks, arena: ast.New()}
	var stmts []ast.Idx
	for !p.check(token.EOF) {
		s := p.declaration()
		if s >= 0 {
			stmts = append(stmts, s)
		}
	}
	p.arena.SetModule(stmts)
	return p.arena, p.errs
}

type parser struct {
	toks  *token.List
	pos   token.Idx
	arena *ast.Arena
	errs  []Error
}

func (p *parser) cur() token.Token  { return p.toks.Get(p.pos) }
func (p *parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *parser) advance() token.Idx {
	idx := p.pos
	if p.cur().Kind != token.EOF {
		p.pos++
	}
	return idx
}

func (p *parser) match(k token.Kind) (token.Idx, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return p.pos, false
}

func (p *parser) expect(k token.Kind, what string) token.Idx {
	if p.check(k) {
		return p.advance()
	}
	p.errorf("expected %s, found '%s'", what, p.toks.Lexeme(p.pos))
	return p.pos
}

func (p *parser) errorf(format string, args ...any) {
	p.errs = append(p.errs, Error{Tok: p.pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) synchronize() {
	for !p.check(token.EOF) {
		if p.cur().Kind == token.SEMI {
			p.advance()
			return
		}
		switch p.cur().Kind {
		case token.LET, token.CONST, token.FUNC, token.CLASS, token.IF, token.WHILE,
			token.LOOP, token.FOR, token.RETURN, token.BREAK, token.CONTINUE:
			return
		}
		p.advance()
	}
}

func (p *parser) add(n ast.Node) ast.Idx { return p.arena.Add(n) }

// ---- declarations / statements ----

func (p *parser) declaration() (idx ast.Idx) {
	defer func() {
		if idx < 0 {
			p.synchronize()
		}
	}()
	switch {
	case p.check(token.LET):
		return p.varDecl(token.LET)
	case p.check(token.CONST):
		return p.varDecl(token.CONST)
	case p.check(token.FUNC):
		return p.funcDecl()
	case p.check(token.CLASS):
		return p.classDecl()
	default:
		return p.statement()
	}
}

func (p *parser) varDecl(kw token.Kind) ast.Idx {
	p.advance()
	name := p.expect(token.IDENTIFIER, "identifier")
	p.expect(token.ASSIGN, "'='")
	init := p.expression()
	p.match(token.SEMI)
	kind := ast.KLetDecl
	if kw == token.CONST {
		kind = ast.KConstDecl
	}
	return p.add(ast.Node{Kind: kind, Tok: name, A: init})
}

func (p *parser) funcDecl() ast.Idx {
	p.advance() // 'func'
	name := p.expect(token.IDENTIFIER, "function name")
	fn := p.funcBody(name)
	return p.add(ast.Node{Kind: ast.KFuncDecl, Tok: name, A: fn})
}

// funcBody parses "(params) { block }" and returns a KFuncExpr node.
// Params may carry a default value ("= expr"); all params after the first
// default must also have one (reported here as a syntax error).
func (p *parser) funcBody(nameForErr token.Idx) ast.Idx {
	p.expect(token.LPAREN, "'('")
	var names []token.Idx
	var defaults []ast.Idx
	minArity := 0
	seenDefault := false
	for !p.check(token.RPAREN) && !p.check(token.EOF) {
		pname := p.expect(token.IDENTIFIER, "parameter name")
		names = append(names, pname)
		if _, ok := p.match(token.ASSIGN); ok {
			seenDefault = true
			defaults = append(defaults, p.expression())
		} else {
			if seenDefault {
				p.errorf("required parameter cannot follow a default parameter")
			}
			minArity++
		}
		if _, ok := p.match(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RPAREN, "')'")
	body := p.block()
	return p.add(ast.Node{Kind: ast.KFuncExpr, Tok: nameForErr, A: body, Names: names, List: defaults, Int: int64(minArity)})
}

func (p *parser) classDecl() ast.Idx {
	p.advance() // 'class'
	name := p.expect(token.IDENTIFIER, "class name")
	p.expect(token.LBRACE, "'{'")
	names := []token.Idx{name}
	var methods []ast.Idx
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		p.expect(token.FUNC, "'func'")
		mname := p.expect(token.IDENTIFIER, "method name")
		names = append(names, mname)
		methods = append(methods, p.funcBody(mname))
	}
	p.expect(token.RBRACE, "'}'")
	return p.add(ast.Node{Kind: ast.KClassDecl, Tok: name, Names: names, List: methods})
}

func (p *parser) statement() ast.Idx {
	switch {
	case p.check(token.LBRACE):
		return p.block()
	case p.check(token.IF):
		return p.ifStmt()
	case p.check(token.WHILE):
		return p.whileStmt()
	case p.check(token.LOOP):
		return p.loopStmt()
	case p.check(token.FOR):
		return p.forInStmt()
	case p.check(token.RETURN):
		return p.returnStmt()
	case p.check(token.BREAK):
		tok := p.advance()
		p.match(token.SEMI)
		return p.add(ast.Node{Kind: ast.KBreakStmt, Tok: tok})
	case p.check(token.CONTINUE):
		tok := p.advance()
		p.match(token.SEMI)
		return p.add(ast.Node{Kind: ast.KContinueStmt, Tok: tok})
	default:
		return p.exprStmt()
	}
}

func (p *parser) block() ast.Idx {
	brace := p.expect(token.LBRACE, "'{'")
	var stmts []ast.Idx
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		s := p.declaration()
		if s >= 0 {
			stmts = append(stmts, s)
		}
	}
	p.expect(token.RBRACE, "'}'")
	return p.add(ast.Node{Kind: ast.KBlock, Tok: brace, List: stmts})
}

func (p *parser) ifStmt() ast.Idx {
	tok := p.advance()
	cond := p.expression()
	then := p.block()
	var els ast.Idx = -1
	if _, ok := p.match(token.ELSE); ok {
		if p.check(token.IF) {
			els = p.ifStmt()
		} else {
			els = p.block()
		}
	}
	return p.add(ast.Node{Kind: ast.KIfStmt, Tok: tok, A: cond, B: then, C: els})
}

func (p *parser) whileStmt() ast.Idx {
	tok := p.advance()
	cond := p.expression()
	body := p.block()
	return p.add(ast.Node{Kind: ast.KWhileStmt, Tok: tok, A: cond, B: body})
}

func (p *parser) loopStmt() ast.Idx {
	tok := p.advance()
	body := p.block()
	return p.add(ast.Node{Kind: ast.KLoopStmt, Tok: tok, A: body})
}

func (p *parser) forInStmt() ast.Idx {
	p.advance()
	name := p.expect(token.IDENTIFIER, "loop variable")
	p.expect(token.IN, "'in'")
	iter := p.expression()
	body := p.block()
	return p.add(ast.Node{Kind: ast.KForInStmt, Tok: name, A: iter, B: body})
}

func (p *parser) returnStmt() ast.Idx {
	tok := p.advance()
	var val ast.Idx = -1
	if !p.check(token.SEMI) && !p.check(token.RBRACE) {
		val = p.expression()
	}
	p.match(token.SEMI)
	return p.add(ast.Node{Kind: ast.KReturnStmt, Tok: tok, A: val})
}

func (p *parser) exprStmt() ast.Idx {
	tok := p.pos
	e := p.expression()
	p.match(token.SEMI)
	return p.add(ast.Node{Kind: ast.KExprStmt, Tok: tok, A: e})
}

// ---- expressions (precedence climbing) ----

func (p *parser) expression() ast.Idx { return p.assignment() }

func (p *parser) assignment() ast.Idx {
	lhs := p.coalesce()
	if tok, ok := p.match(token.ASSIGN); ok {
		rhs := p.assignment()
		return p.add(ast.Node{Kind: ast.KAssign, Tok: tok, A: lhs, B: rhs})
	}
	return lhs
}

func (p *parser) coalesce() ast.Idx {
	left := p.or()
	for p.check(token.QUESTIONQUESTION) {
		tok := p.advance()
		right := p.or()
		left = p.add(ast.Node{Kind: ast.KLogical, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) or() ast.Idx {
	left := p.and()
	for p.check(token.OROR) {
		tok := p.advance()
		right := p.and()
		left = p.add(ast.Node{Kind: ast.KLogical, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) and() ast.Idx {
	left := p.equality()
	for p.check(token.ANDAND) {
		tok := p.advance()
		right := p.equality()
		left = p.add(ast.Node{Kind: ast.KLogical, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) equality() ast.Idx {
	left := p.comparison()
	for p.check(token.EQEQ) || p.check(token.NE) {
		tok := p.advance()
		right := p.comparison()
		left = p.add(ast.Node{Kind: ast.KBinary, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) comparison() ast.Idx {
	left := p.bitor()
	for p.check(token.LT) || p.check(token.LE) || p.check(token.GT) || p.check(token.GE) {
		tok := p.advance()
		right := p.bitor()
		left = p.add(ast.Node{Kind: ast.KBinary, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) bitor() ast.Idx {
	left := p.bitxor()
	for p.check(token.PIPE) {
		tok := p.advance()
		right := p.bitxor()
		left = p.add(ast.Node{Kind: ast.KBinary, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) bitxor() ast.Idx {
	left := p.bitand()
	for p.check(token.CARET) {
		tok := p.advance()
		right := p.bitand()
		left = p.add(ast.Node{Kind: ast.KBinary, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) bitand() ast.Idx {
	left := p.shift()
	for p.check(token.AMP) {
		tok := p.advance()
		right := p.shift()
		left = p.add(ast.Node{Kind: ast.KBinary, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) shift() ast.Idx {
	left := p.rangeExpr()
	for p.check(token.SHL) || p.check(token.SHR) {
		tok := p.advance()
		right := p.rangeExpr()
		left = p.add(ast.Node{Kind: ast.KBinary, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) rangeExpr() ast.Idx {
	left := p.term()
	if p.check(token.DOTDOT) || p.check(token.DOTDOTEQ) {
		tok := p.advance()
		closed := p.toks.Get(tok).Kind == token.DOTDOTEQ
		right := p.term()
		n := ast.Node{Kind: ast.KRangeLit, Tok: tok, A: left, B: right}
		if closed {
			n.Bool = true
		}
		return p.add(n)
	}
	return left
}

func (p *parser) term() ast.Idx {
	left := p.factor()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		tok := p.advance()
		right := p.factor()
		left = p.add(ast.Node{Kind: ast.KBinary, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) factor() ast.Idx {
	left := p.unary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.SLASHSLASH) || p.check(token.PERCENT) {
		tok := p.advance()
		right := p.unary()
		left = p.add(ast.Node{Kind: ast.KBinary, Tok: tok, A: left, B: right})
	}
	return left
}

func (p *parser) unary() ast.Idx {
	if p.check(token.MINUS) || p.check(token.BANG) || p.check(token.TILDE) {
		tok := p.advance()
		operand := p.unary()
		return p.add(ast.Node{Kind: ast.KUnary, Tok: tok, A: operand})
	}
	return p.callOrIndex()
}

func (p *parser) callOrIndex() ast.Idx {
	expr := p.primary()
	for {
		switch {
		case p.check(token.LPAREN):
			tok := p.advance()
			var args []ast.Idx
			for !p.check(token.RPAREN) && !p.check(token.EOF) {
				args = append(args, p.expression())
				if _, ok := p.match(token.COMMA); !ok {
					break
				}
			}
			p.expect(token.RPAREN, "')'")
			expr = p.add(ast.Node{Kind: ast.KCall, Tok: tok, A: expr, List: args})
		case p.check(token.LBRACKET):
			tok := p.advance()
			idx := p.expression()
			p.expect(token.RBRACKET, "']'")
			expr = p.add(ast.Node{Kind: ast.KIndex, Tok: tok, A: expr, B: idx})
		case p.check(token.DOT):
			p.advance()
			name := p.expect(token.IDENTIFIER, "property name")
			expr = p.add(ast.Node{Kind: ast.KGetProp, Tok: name, A: expr})
		default:
			return expr
		}
	}
}

func (p *parser) primary() ast.Idx {
	tok := p.cur()
	switch tok.Kind {
	case token.INT_LIT:
		idx := p.advance()
		v, _ := parseInt(p.toks.Lexeme(idx))
		return p.add(ast.Node{Kind: ast.KLiteralInt, Tok: idx, Int: v})
	case token.FLOAT_LIT:
		idx := p.advance()
		v, _ := parseFloat(p.toks.Lexeme(idx))
		return p.add(ast.Node{Kind: ast.KLiteralFloat, Tok: idx, Float: v})
	case token.STR_LIT:
		idx := p.advance()
		return p.add(ast.Node{Kind: ast.KLiteralStr, Tok: idx, Str: token.Unquote(p.toks.Lexeme(idx))})
	case token.TRUE_LIT:
		idx := p.advance()
		return p.add(ast.Node{Kind: ast.KLiteralBool, Tok: idx, Bool: true})
	case token.FALSE_LIT:
		idx := p.advance()
		return p.add(ast.Node{Kind: ast.KLiteralBool, Tok: idx, Bool: false})
	case token.NONE_LIT:
		idx := p.advance()
		return p.add(ast.Node{Kind: ast.KLiteralNone, Tok: idx})
	case token.IDENTIFIER:
		idx := p.advance()
		return p.add(ast.Node{Kind: ast.KIdent, Tok: idx})
	case token.START_INTERPOL_STR:
		return p.interpolatedStr()
	case token.FUNC:
		tok := p.advance()
		return p.funcBody(tok)
	case token.LPAREN:
		lparen := p.advance()
		e := p.expression()
		if p.check(token.COMMA) {
			elems := []ast.Idx{e}
			for {
				if _, ok := p.match(token.COMMA); !ok {
					break
				}
				if p.check(token.RPAREN) {
					break
				}
				elems = append(elems, p.expression())
			}
			p.expect(token.RPAREN, "')'")
			return p.add(ast.Node{Kind: ast.KTupleLit, Tok: lparen, List: elems})
		}
		p.expect(token.RPAREN, "')'")
		return e
	case token.LBRACKET:
		tok := p.advance()
		var elems []ast.Idx
		for !p.check(token.RBRACKET) && !p.check(token.EOF) {
			elems = append(elems, p.expression())
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
		p.expect(token.RBRACKET, "']'")
		return p.add(ast.Node{Kind: ast.KArrayLit, Tok: tok, List: elems})
	case token.LBRACE:
		return p.dictLit()
	case token.NEW:
		p.advance()
		name := p.expect(token.IDENTIFIER, "class name")
		p.expect(token.LPAREN, "'('")
		var args []ast.Idx
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			args = append(args, p.expression())
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
		p.expect(token.RPAREN, "')'")
		return p.add(ast.Node{Kind: ast.KNewExpr, Tok: name, List: args})
	default:
		idx := p.advance()
		p.errorf("unexpected token '%s'", p.toks.Lexeme(idx))
		return p.add(ast.Node{Kind: ast.KLiteralNone, Tok: idx})
	}
}

func (p *parser) dictLit() ast.Idx {
	tok := p.advance() // '{'
	var keys, vals []ast.Idx
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		k := p.expression()
		p.expect(token.COLON, "':'")
		v := p.expression()
		keys = append(keys, k)
		vals = append(vals, v)
		if _, ok := p.match(token.COMMA); !ok {
			break
		}
	}
	p.expect(token.RBRACE, "'}'")
	return p.add(ast.Node{Kind: ast.KDictLit, Tok: tok, List: keys, Names: nil, A: p.add(ast.Node{Kind: ast.KTupleLit, List: vals})})
}

// interpolatedStr parses the START_INTERPOL_STR ... END_INTERPOL_STR token
// run produced by the lexer into a KInterpolatedStr node whose List holds,
// in left-to-right order, KLiteralStr nodes for literal segments and
// arbitrary expression nodes for "${...}" segments.
func (p *parser) interpolatedStr() ast.Idx {
	tok := p.advance() // START_INTERPOL_STR
	var parts []ast.Idx
	for {
		switch p.cur().Kind {
		case token.STR_LIT:
			idx := p.advance()
			parts = append(parts, p.add(ast.Node{Kind: ast.KLiteralStr, Tok: idx, Str: token.Unquote(p.toks.Lexeme(idx))}))
		case token.START_INTERPOL_EXPR:
			p.advance()
			parts = append(parts, p.expression())
			p.expect(token.END_INTERPOL_EXPR, "end of interpolated expression")
		case token.END_INTERPOL_STR:
			p.advance()
			return p.add(ast.Node{Kind: ast.KInterpolatedStr, Tok: tok, List: parts})
		default:
			p.errorf("malformed interpolated string")
			return p.add(ast.Node{Kind: ast.KInterpolatedStr, Tok: tok, List: parts})
		}
	}
}
