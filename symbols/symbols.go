// Package symbols implements the symbol table and lexically-nested
// scope chain the semantic analyzer builds and the interpreter's
// activation records are keyed against by name (not by scope — scopes
// exist only during analysis; see the lifetime note in the next
// paragraph).
//
// A Scope lives from the moment the analyzer enters a Program or
// ProcedureDecl until it exits it, except that a ProcedureSymbol keeps
// a reference to its declaring Block so the interpreter can re-execute
// the procedure's body long after the declaring scope is gone (spec §3
// "Lifecycles").
package symbols

import (
	"fmt"

	"github.com/cwbudde/pasc/ast"
)

// Symbol is implemented by every entry a Scope can hold. Every symbol
// carries the scope_level of the scope that owns it (spec §3); Insert
// stamps it on every symbol, not only procedures, matching
// ScopedSymbolTable.insert in the original interpreter.
type Symbol interface {
	symbolName() string
	setScopeLevel(level int)
}

// BuiltinType is one of the two built-in scalar types, INTEGER or
// REAL, seeded into the outermost scope.
type BuiltinType struct {
	Name       string
	ScopeLevel int
}

func (t *BuiltinType) symbolName() string      { return t.Name }
func (t *BuiltinType) setScopeLevel(level int) { t.ScopeLevel = level }

// VarSymbol is a declared variable or formal parameter.
type VarSymbol struct {
	Name       string
	Type       *BuiltinType
	ScopeLevel int
}

func (s *VarSymbol) symbolName() string      { return s.Name }
func (s *VarSymbol) setScopeLevel(level int) { s.ScopeLevel = level }

// ProcedureSymbol is a declared procedure: its formal parameters in
// declaration order, and a reference to its body Block so the
// interpreter can execute it on every call without re-parsing.
// ScopeLevel is the level of the scope the procedure is declared in
// (its owning scope), not the level of its own, deeper body scope.
type ProcedureSymbol struct {
	Name         string
	FormalParams []*VarSymbol
	Body         *ast.Block
	ScopeLevel   int
}

func (s *ProcedureSymbol) symbolName() string      { return s.Name }
func (s *ProcedureSymbol) setScopeLevel(level int) { s.ScopeLevel = level }

// Scope is a single lexically-nested symbol table. Scopes form a
// strictly-nested chain via Enclosing; the outermost "global" scope
// has ScopeLevel 1 and owns the two built-in types.
type Scope struct {
	Name       string
	ScopeLevel int
	Enclosing  *Scope
	members    map[string]Symbol
	order      []string // insertion order, diagnostics only
}

// NewScope creates a scope. Pass a nil enclosing scope only for the
// outermost, built-in scope.
func NewScope(name string, level int, enclosing *Scope) *Scope {
	return &Scope{
		Name:       name,
		ScopeLevel: level,
		Enclosing:  enclosing,
		members:    make(map[string]Symbol),
	}
}

// NewGlobalScope builds the level-1 "global" scope pre-populated with
// the INTEGER and REAL built-in types, per spec §4.E/F.
func NewGlobalScope() *Scope {
	s := NewScope("global", 1, nil)
	s.Insert(&BuiltinType{Name: "INTEGER"})
	s.Insert(&BuiltinType{Name: "REAL"})
	return s
}

// Insert adds sym to this scope under its own name, stamping its
// ScopeLevel to this scope's level (spec §3), and overwriting any
// existing entry. Callers that must reject redefinition (VarDecl) use
// Lookup(name, true) first and raise DUPLICATE_ID themselves.
func (s *Scope) Insert(sym Symbol) {
	sym.setScopeLevel(s.ScopeLevel)
	name := sym.symbolName()
	if _, exists := s.members[name]; !exists {
		s.order = append(s.order, name)
	}
	s.members[name] = sym
}

// Lookup searches this scope's members for name; if not found and
// currentOnly is false, it recurses into the enclosing scope chain.
// Returns (nil, false) if no scope in the chain defines name.
func (s *Scope) Lookup(name string, currentOnly bool) (Symbol, bool) {
	if sym, ok := s.members[name]; ok {
		return sym, true
	}
	if currentOnly || s.Enclosing == nil {
		return nil, false
	}
	return s.Enclosing.Lookup(name, false)
}

// String renders the scope's members in insertion order, useful for
// --scope trace output and tests.
func (s *Scope) String() string {
	out := fmt.Sprintf("Scope %q (level %d):", s.Name, s.ScopeLevel)
	for _, name := range s.order {
		out += fmt.Sprintf("\n  %s: %v", name, s.members[name])
	}
	return out
}
