// Package ast defines the tagged abstract syntax tree produced by the
// parser and walked by the semantic analyzer and interpreter.
//
// Every node embeds the token(s) that produced it by value, so any
// node can report a source position for diagnostics without a pointer
// back into the lexer. The two mutable back-references named by the
// data model (ProcedureDecl.ResolvedSymbol and ProcedureCall.ResolvedSymbol) are
// written once by the semantic analyzer and read thereafter by the
// interpreter; spec §9 design note (b) models them as an Option-style
// field set once and read later.
package ast

import "github.com/cwbudde/pasc/token"

// Node is implemented by every AST node so a visitor can at least ask
// "where did this come from" uniformly.
type Node interface {
	Pos() token.Position
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is implemented by every declaration node.
type Decl interface {
	Node
	declNode()
}

// Program is the root of every AST: a named program with one Block.
type Program struct {
	NameToken token.Token
	Block     *Block
}

func (p *Program) Pos() token.Position { return p.NameToken.Pos }

// Block is declarations followed by a compound statement; the body of
// a Program or a ProcedureDecl.
type Block struct {
	Declarations []Decl
	Body         *Compound
}

func (b *Block) Pos() token.Position { return b.Body.Pos() }

// TypeKind is the closed set of scalar type names the language
// supports.
type TypeKind int

const (
	IntegerType TypeKind = iota
	RealType
)

func (k TypeKind) String() string {
	if k == RealType {
		return "REAL"
	}
	return "INTEGER"
}

// Type names a scalar type at a declaration site.
type Type struct {
	Kind        TypeKind
	SourceToken token.Token
}

func (t *Type) Pos() token.Position { return t.SourceToken.Pos }

// VarDecl declares one variable of a scalar Type.
type VarDecl struct {
	VarToken token.Token // the identifier token
	TypeRef  *Type
}

func (d *VarDecl) Pos() token.Position { return d.VarToken.Pos }
func (d *VarDecl) declNode()           {}

// Param is one formal parameter of a ProcedureDecl.
type Param struct {
	VarToken token.Token
	TypeRef  *Type
}

func (p *Param) Pos() token.Position { return p.VarToken.Pos }

// ProcedureDecl declares a nested procedure. ResolvedSymbol is written once by
// the semantic analyzer (the procedure's own ProcedureSymbol) and read
// by nothing at runtime — the interpreter reads the symbol off the
// call site instead; it is kept here so tooling (AST dumps, the
// --scope trace) can inspect a declaration's resolved symbol directly.
type ProcedureDecl struct {
	NameToken     token.Token
	FormalParams  []*Param
	Block         *Block
	ResolvedSymbol any // *symbols.ProcedureSymbol, set by the analyzer
}

func (d *ProcedureDecl) Pos() token.Position { return d.NameToken.Pos }
func (d *ProcedureDecl) declNode()           {}

// Compound is a BEGIN...END sequence of statements.
type Compound struct {
	BeginToken token.Token
	Children   []Stmt
}

func (c *Compound) Pos() token.Position { return c.BeginToken.Pos }
func (c *Compound) stmtNode()           {}

// Assign is `target := value`.
type Assign struct {
	Target    *Var
	SourceTok token.Token // the ASSIGN token
	Value     Expr
}

func (a *Assign) Pos() token.Position { return a.Target.Pos() }
func (a *Assign) stmtNode()           {}

// ProcedureCall is a procedure invocation used as a statement.
// ResolvedSymbol is written once by the semantic analyzer and must be non-nil by the
// time the interpreter visits this node (spec §8 universal invariant).
type ProcedureCall struct {
	NameToken     token.Token
	ActualParams  []Expr
	CallToken     token.Token
	ResolvedSymbol any // *symbols.ProcedureSymbol, set by the analyzer
}

func (c *ProcedureCall) Pos() token.Position { return c.CallToken.Pos }
func (c *ProcedureCall) stmtNode()           {}

// NoOp is an empty statement (spec grammar: `statement := ... | ε`).
type NoOp struct {
	EmptyToken token.Token
}

func (n *NoOp) Pos() token.Position { return n.EmptyToken.Pos }
func (n *NoOp) stmtNode()           {}

// BinOp is a binary arithmetic expression.
type BinOp struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (b *BinOp) Pos() token.Position { return b.Op.Pos }
func (b *BinOp) exprNode()           {}

// UnaryOp is a unary +/- expression.
type UnaryOp struct {
	Op      token.Token
	Operand Expr
}

func (u *UnaryOp) Pos() token.Position { return u.Op.Pos }
func (u *UnaryOp) exprNode()           {}

// Num is an integer or real literal.
type Num struct {
	Token token.Token
}

func (n *Num) Pos() token.Position { return n.Token.Pos }
func (n *Num) exprNode()           {}

// Var is a variable reference, used both as an expression (a read) and
// as an Assign target (a write).
type Var struct {
	Token token.Token
	Name  string
}

func (v *Var) Pos() token.Position { return v.Token.Pos }
func (v *Var) exprNode()           {}
