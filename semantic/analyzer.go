// Package semantic walks the parsed AST, builds the chain of
// lexically-nested scopes described in spec §4.E/F, resolves every
// variable and procedure-call reference against it, and writes the
// resolved procedure symbol back onto each ProcedureCall node so the
// interpreter never needs to look a procedure up by name at runtime.
package semantic

import (
	"fmt"

	"github.com/cwbudde/pasc/ast"
	"github.com/cwbudde/pasc/config"
	"github.com/cwbudde/pasc/diag"
	"github.com/cwbudde/pasc/symbols"
	"go.uber.org/zap"
)

// Analyzer performs a single pass over a *ast.Program.
type Analyzer struct {
	cfg   *config.Config
	scope *symbols.Scope
}

// New creates an Analyzer. cfg must not be nil; use config.Default()
// for the zero-trace, type-checking-on default.
func New(cfg *config.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

func (a *Analyzer) trace(msg string, fields ...zap.Field) {
	if a.cfg.ScopeTrace {
		a.cfg.Logger.Debug(msg, fields...)
	}
}

// lookup wraps Scope.Lookup with a trace record, so every symbol
// lookup in the analyzer emits one zap.Debug record under --scope
// (SPEC_FULL.md §4.E/F), not only scope enter/exit and declaration.
func (a *Analyzer) lookup(name string, currentOnly bool) (symbols.Symbol, bool) {
	sym, ok := a.scope.Lookup(name, currentOnly)
	a.trace("lookup symbol", zap.String("name", name), zap.Bool("currentOnly", currentOnly),
		zap.Bool("found", ok), zap.String("scope", a.scope.Name))
	return sym, ok
}

// insert wraps Scope.Insert with a trace record, so every symbol
// insertion in the analyzer emits one zap.Debug record under --scope.
func (a *Analyzer) insert(sym symbols.Symbol, name string) {
	a.scope.Insert(sym)
	a.trace("insert symbol", zap.String("name", name), zap.String("scope", a.scope.Name),
		zap.Int("level", a.scope.ScopeLevel))
}

// Analyze runs the analyzer over prog, returning the first diagnostic
// encountered (analysis halts at the first error, per spec §4).
func (a *Analyzer) Analyze(prog *ast.Program) error {
	global := symbols.NewGlobalScope()
	a.scope = global
	a.trace("enter scope", zap.String("scope", "global"), zap.Int("level", 1))

	if err := a.visitBlock(prog.Block); err != nil {
		return err
	}

	a.trace("exit scope", zap.String("scope", "global"))
	return nil
}

func (a *Analyzer) visitBlock(block *ast.Block) error {
	for _, decl := range block.Declarations {
		if err := a.visitDecl(decl); err != nil {
			return err
		}
	}
	return a.visitCompound(block.Body)
}

func (a *Analyzer) visitDecl(decl ast.Decl) error {
	switch d := decl.(type) {
	case *ast.VarDecl:
		return a.visitVarDecl(d)
	case *ast.ProcedureDecl:
		return a.visitProcedureDecl(d)
	default:
		return fmt.Errorf("semantic: unhandled declaration %T", decl)
	}
}

// visitVarDecl resolves the declared type and inserts a VarSymbol into
// the current scope, failing with DUPLICATE_ID if the name already
// exists in this scope (current-scope-only lookup, spec §4.E/F).
func (a *Analyzer) visitVarDecl(d *ast.VarDecl) error {
	name := d.VarToken.Value.Str
	if _, exists := a.lookup(name, true); exists {
		return diag.New(diag.Semantic, diag.CodeDuplicateID, d.VarToken.Pos,
			d.VarToken.String(), "duplicate identifier '"+name+"'")
	}

	typeSym, ok := a.lookup(d.TypeRef.Kind.String(), false)
	if !ok {
		return diag.New(diag.Semantic, diag.CodeIDNotFound, d.TypeRef.Pos(),
			d.TypeRef.SourceToken.String(), "type '"+d.TypeRef.Kind.String()+"' not found")
	}
	builtin := typeSym.(*symbols.BuiltinType)

	a.insert(&symbols.VarSymbol{Name: name, Type: builtin}, name)
	return nil
}

// visitProcedureDecl inserts the procedure symbol into the enclosing
// scope before opening the procedure's own scope, so the name is
// visible recursively and to its siblings (spec §4.E/F).
func (a *Analyzer) visitProcedureDecl(d *ast.ProcedureDecl) error {
	name := d.NameToken.Value.Str
	enclosing := a.scope
	// ScopeLevel is stamped by Insert to the level of the scope that
	// owns the procedure (spec §3) — here, enclosing, not the
	// procedure's own (deeper) body scope.
	procSym := &symbols.ProcedureSymbol{Name: name}
	a.insert(procSym, name)
	d.ResolvedSymbol = procSym

	procScope := symbols.NewScope(name, enclosing.ScopeLevel+1, enclosing)
	a.scope = procScope
	a.trace("enter scope", zap.String("scope", name), zap.Int("level", procScope.ScopeLevel))

	for _, param := range d.FormalParams {
		pname := param.VarToken.Value.Str
		if _, exists := a.lookup(pname, true); exists {
			a.scope = enclosing
			return diag.New(diag.Semantic, diag.CodeDuplicateID, param.VarToken.Pos,
				param.VarToken.String(), "duplicate identifier '"+pname+"'")
		}
		typeSym, ok := a.lookup(param.TypeRef.Kind.String(), false)
		if !ok {
			a.scope = enclosing
			return diag.New(diag.Semantic, diag.CodeIDNotFound, param.TypeRef.Pos(),
				param.TypeRef.SourceToken.String(), "type '"+param.TypeRef.Kind.String()+"' not found")
		}
		vs := &symbols.VarSymbol{Name: pname, Type: typeSym.(*symbols.BuiltinType)}
		a.insert(vs, pname)
		procSym.FormalParams = append(procSym.FormalParams, vs)
	}

	if err := a.visitBlock(d.Block); err != nil {
		a.scope = enclosing
		return err
	}
	procSym.Body = d.Block

	a.trace("exit scope", zap.String("scope", name))
	a.scope = enclosing
	return nil
}

func (a *Analyzer) visitCompound(c *ast.Compound) error {
	for _, stmt := range c.Children {
		if err := a.visitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) visitStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Compound:
		return a.visitCompound(s)
	case *ast.Assign:
		return a.visitAssign(s)
	case *ast.ProcedureCall:
		return a.visitProcedureCall(s)
	case *ast.NoOp:
		return nil
	default:
		return fmt.Errorf("semantic: unhandled statement %T", stmt)
	}
}

// visitAssign visits the right-hand side then the left, per spec
// §4.E/F: "visits right then left. Visiting the left Var produces the
// same lookup check as any variable use."
func (a *Analyzer) visitAssign(s *ast.Assign) error {
	if err := a.visitExpr(s.Value); err != nil {
		return err
	}
	return a.visitExpr(s.Target)
}

// visitProcedureCall recurses into each actual parameter, then
// chain-looks-up the procedure name and stores the resolved symbol on
// the node (spec §4.E/F). Arity is checked only when the resolved
// name is indeed a procedure symbol and TypeCheckCalls is enabled
// (spec §9 decision 3).
func (a *Analyzer) visitProcedureCall(s *ast.ProcedureCall) error {
	for _, arg := range s.ActualParams {
		if err := a.visitExpr(arg); err != nil {
			return err
		}
	}

	name := s.NameToken.Value.Str
	sym, ok := a.lookup(name, false)
	if !ok {
		return diag.New(diag.Semantic, diag.CodeIDNotFound, s.NameToken.Pos,
			s.NameToken.String(), "identifier '"+name+"' not found")
	}
	s.ResolvedSymbol = sym

	if a.cfg.TypeCheckCalls {
		if procSym, isProc := sym.(*symbols.ProcedureSymbol); isProc {
			if len(s.ActualParams) != len(procSym.FormalParams) {
				return diag.New(diag.Semantic, diag.CodeArityMismatch, s.CallToken.Pos,
					s.NameToken.String(),
					fmt.Sprintf("procedure '%s' expects %d argument(s), got %d",
						name, len(procSym.FormalParams), len(s.ActualParams)))
			}
		}
	}
	return nil
}

func (a *Analyzer) visitExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.BinOp:
		if err := a.visitExpr(e.Left); err != nil {
			return err
		}
		return a.visitExpr(e.Right)
	case *ast.UnaryOp:
		return a.visitExpr(e.Operand)
	case *ast.Num:
		return nil
	case *ast.Var:
		return a.visitVar(e)
	default:
		return fmt.Errorf("semantic: unhandled expression %T", expr)
	}
}

// visitVar chain-looks-up the name, failing with ID_NOT_FOUND if none
// resolves (spec §4.E/F).
func (a *Analyzer) visitVar(v *ast.Var) error {
	if _, ok := a.lookup(v.Name, false); !ok {
		return diag.New(diag.Semantic, diag.CodeIDNotFound, v.Token.Pos,
			v.Token.String(), "identifier '"+v.Name+"' not found")
	}
	return nil
}
