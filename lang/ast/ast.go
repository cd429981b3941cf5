// Package ast defines the flat, arena-indexed syntax tree that the parser
// produces and that the resolver and compiler consume. Lexing and parsing
// are external collaborators to the core; this package only fixes the shape
// of what they hand off.
package ast

import "github.com/hinton-lang/hinton/lang/token"

// Idx addresses a Node in an Arena. Index 0 is always the module root.
type Idx int

// Kind tags the concrete variant stored at a Node.
type Kind uint8

//nolint:revive
const (
	KBadNode Kind = iota
	KModule

	// Expressions.
	KLiteralInt
	KLiteralFloat
	KLiteralStr
	KLiteralBool
	KLiteralNone
	KIdent
	KBinary
	KLogical
	KUnary
	KCall
	KArrayLit
	KTupleLit
	KDictLit
	KRangeLit
	KIndex
	KFuncExpr
	KInterpolatedStr
	KAssign
	KGetProp
	KNewExpr

	// Statements.
	KBlock
	KExprStmt
	KLetDecl
	KConstDecl
	KFuncDecl
	KClassDecl
	KReturnStmt
	KIfStmt
	KWhileStmt
	KLoopStmt
	KForInStmt
	KBreakStmt
	KContinueStmt
)

var kindNames = map[Kind]string{
	KBadNode: "BadNode", KModule: "Module",
	KLiteralInt: "LiteralInt", KLiteralFloat: "LiteralFloat", KLiteralStr: "LiteralStr",
	KLiteralBool: "LiteralBool", KLiteralNone: "LiteralNone", KIdent: "Ident",
	KBinary: "Binary", KLogical: "Logical", KUnary: "Unary", KCall: "Call",
	KArrayLit: "ArrayLit", KTupleLit: "TupleLit", KDictLit: "DictLit", KRangeLit: "RangeLit",
	KIndex: "Index", KFuncExpr: "FuncExpr", KInterpolatedStr: "InterpolatedStr", KAssign: "Assign",
	KGetProp: "GetProp", KNewExpr: "NewExpr",
	KBlock: "Block", KExprStmt: "ExprStmt", KLetDecl: "LetDecl", KConstDecl: "ConstDecl",
	KFuncDecl: "FuncDecl", KClassDecl: "ClassDecl", KReturnStmt: "ReturnStmt", KIfStmt: "IfStmt",
	KWhileStmt: "WhileStmt", KLoopStmt: "LoopStmt", KForInStmt: "ForInStmt",
	KBreakStmt: "BreakStmt", KContinueStmt: "ContinueStmt",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Node is a single arena slot. Only the fields relevant to Kind are
// populated; the rest are zero. This mirrors the "sum of structs" encoding
// idiomatic in Go when no generated algebraic data type is available.
type Node struct {
	Kind Kind
	Tok  token.Idx // the token most representative of this node (operator, keyword, identifier)

	// Literal payloads.
	Int   int64
	Float float64
	Str   string
	Bool  bool

	// Sub-node references. Meaning depends on Kind; see constructors below.
	A, B, C Idx
	List    []Idx
	Names   []token.Idx
	Strs    []string // not set by the parser: DictLit keys are expressions (List) and FuncExpr param names are tokens (Names)
}

// Module is the payload view for KModule: a flat list of top-level
// statements.
type Module struct {
	Stmts []Idx
}

// Arena owns every Node in a compiled unit. Node 0 is the module root.
type Arena struct {
	Nodes []Node
}

// New returns an Arena with the module root pre-allocated at index 0.
func New() *Arena {
	a := &Arena{Nodes: make([]Node, 1, 64)}
	a.Nodes[0] = Node{Kind: KModule}
	return a
}

// Add appends n and returns its Idx.
func (a *Arena) Add(n Node) Idx {
	a.Nodes = append(a.Nodes, n)
	return Idx(len(a.Nodes) - 1)
}

// Get returns the node at idx.
func (a *Arena) Get(idx Idx) *Node { return &a.Nodes[idx] }

// SetModule replaces the root module node's statement list.
func (a *Arena) SetModule(stmts []Idx) {
	a.Nodes[0] = Node{Kind: KModule, List: stmts}
}

// BinaryOp/UnaryOp/LogicalOp identify the operator of a KBinary/KUnary/
// KLogical node via the underlying token kind (token.PLUS, token.ANDAND, ...).
// The resolver and compiler both switch on Node.Tok's kind through the
// TokenList, so no separate operator enum is stored here.

// FuncExprPayload describes the layout used for KFuncExpr nodes:
//   Names — parameter name tokens, in declaration order.
//   A     — index of the block body (KBlock).
//   List  — default-value expression indices, one per optional trailing
//           parameter (len(List) == number of optional params).
//   Int   — minimum arity (required parameter count).
type FuncExprPayload struct{}

// ClassDeclPayload: Names holds the class name token (len 1) plus method
// name tokens; List holds one KFuncExpr per method, aligned with
// Names[1:]. A is unused.
type ClassDeclPayload struct{}

// GetPropPayload describes KGetProp: A is the receiver expression, Tok is
// the property name token. Used both as a read expression and, inside
// KAssign, as a write target.
type GetPropPayload struct{}

// NewExprPayload describes KNewExpr: Tok is the class name token (resolved
// like any other identifier reference), List holds the constructor argument
// expressions.
type NewExprPayload struct{}
