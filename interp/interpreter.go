// Package interp implements the tree-walking interpreter: it executes
// an already-analyzed *ast.Program against a call stack of activation
// records, exactly as spec §4.G/H describes.
//
// Every Push is paired with a Pop on all exit paths, including error
// paths, via defer — spec §5's resource-discipline requirement — so
// the call stack is always empty again once Run returns, whether it
// returned an error or not.
package interp

import (
	"fmt"

	"github.com/cwbudde/pasc/ast"
	"github.com/cwbudde/pasc/config"
	"github.com/cwbudde/pasc/diag"
	"github.com/cwbudde/pasc/symbols"
	"github.com/cwbudde/pasc/token"
	"go.uber.org/zap"
)

// Interpreter walks an analyzed AST and mutates a CallStack.
type Interpreter struct {
	cfg   *config.Config
	Stack *CallStack
}

// New creates an Interpreter with its own, initially empty call stack.
func New(cfg *config.Config) *Interpreter {
	return &Interpreter{cfg: cfg, Stack: NewCallStack()}
}

func (in *Interpreter) trace(msg string, fields ...zap.Field) {
	if in.cfg.StackTrace {
		in.cfg.Logger.Debug(msg, fields...)
	}
}

// Run executes prog, pushing and popping the PROGRAM frame, and
// returns that frame so callers (tests, the CLI) can inspect the final
// global bindings. The stack is guaranteed empty on return.
func (in *Interpreter) Run(prog *ast.Program) (*ActivationRecord, error) {
	frame := NewActivationRecord(prog.NameToken.Value.Str, ProgramFrame, 1)
	in.Stack.Push(frame)
	in.trace("push frame", zap.String("name", frame.Name), zap.String("kind", frame.Kind.String()),
		zap.Int("level", frame.NestingLevel))
	defer func() {
		in.Stack.Pop()
		in.trace("pop frame", zap.String("name", frame.Name))
	}()

	if err := in.visitBlock(prog.Block); err != nil {
		return frame, err
	}
	return frame, nil
}

func (in *Interpreter) visitBlock(block *ast.Block) error {
	// Declarations allocate no runtime slots (spec §4.G/H); only the
	// compound body executes.
	return in.visitCompound(block.Body)
}

func (in *Interpreter) visitCompound(c *ast.Compound) error {
	for _, stmt := range c.Children {
		if err := in.visitStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) visitStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Compound:
		return in.visitCompound(s)
	case *ast.Assign:
		return in.visitAssign(s)
	case *ast.ProcedureCall:
		return in.visitProcedureCall(s)
	case *ast.NoOp:
		return nil
	default:
		return fmt.Errorf("interp: unhandled statement %T", stmt)
	}
}

func (in *Interpreter) visitAssign(s *ast.Assign) error {
	value, err := in.evalExpr(s.Value)
	if err != nil {
		return err
	}
	in.Stack.Peek().Set(s.Target.Name, value)
	return nil
}

// visitProcedureCall implements the four-step protocol of spec
// §4.G/H: resolve the attached symbol, build the callee's frame by
// evaluating each actual in the caller's frame, push, visit the body,
// pop.
func (in *Interpreter) visitProcedureCall(s *ast.ProcedureCall) error {
	procSym, ok := s.ResolvedSymbol.(*symbols.ProcedureSymbol)
	if !ok || procSym == nil {
		return fmt.Errorf("interp: call to %q has no resolved symbol", s.NameToken.Value.Str)
	}

	if len(s.ActualParams) != len(procSym.FormalParams) {
		return diag.New(diag.Runtime, diag.CodeArityMismatch, s.CallToken.Pos,
			s.NameToken.String(),
			fmt.Sprintf("procedure '%s' expects %d argument(s), got %d",
				procSym.Name, len(procSym.FormalParams), len(s.ActualParams)))
	}

	callerFrame := in.Stack.Peek()
	values := make([]Number, len(s.ActualParams))
	for i, actual := range s.ActualParams {
		v, err := in.evalExprIn(actual, callerFrame)
		if err != nil {
			return err
		}
		values[i] = v
	}

	frame := NewActivationRecord(procSym.Name, ProcedureFrame, procSym.ScopeLevel+1)
	for i, formal := range procSym.FormalParams {
		frame.Set(formal.Name, values[i])
	}

	in.Stack.Push(frame)
	in.trace("push frame", zap.String("name", frame.Name), zap.String("kind", frame.Kind.String()),
		zap.Int("level", frame.NestingLevel))
	defer func() {
		in.Stack.Pop()
		in.trace("pop frame", zap.String("name", frame.Name))
	}()

	return in.visitBlock(procSym.Body)
}

// evalExpr evaluates expr against the current top frame.
func (in *Interpreter) evalExpr(expr ast.Expr) (Number, error) {
	return in.evalExprIn(expr, in.Stack.Peek())
}

// evalExprIn evaluates expr against an explicit frame, used by
// visitProcedureCall to evaluate actual parameters in the caller's
// frame before the callee's frame exists (spec §4.G/H step 3).
func (in *Interpreter) evalExprIn(expr ast.Expr, frame *ActivationRecord) (Number, error) {
	switch e := expr.(type) {
	case *ast.Num:
		if e.Token.Type == token.REAL_CONST {
			return Real(e.Token.Value.Real), nil
		}
		return Int(e.Token.Value.Int), nil

	case *ast.Var:
		if v, ok := frame.Get(e.Name); ok {
			return v, nil
		}
		// Unassigned but declared: return the zero value (spec §9
		// decision 2).
		return Int(0), nil

	case *ast.UnaryOp:
		v, err := in.evalExprIn(e.Operand, frame)
		if err != nil {
			return Number{}, err
		}
		if e.Op.Type == token.MINUS {
			if v.IsReal() {
				return Real(-v.AsFloat()), nil
			}
			return Int(-v.AsInt()), nil
		}
		return v, nil // unary plus is identity

	case *ast.BinOp:
		return in.evalBinOp(e, frame)

	default:
		return Number{}, fmt.Errorf("interp: unhandled expression %T", expr)
	}
}

// evalBinOp implements the numeric semantics of spec §4.G/H: +, -, *
// produce INTEGER iff both operands are INTEGER, else REAL with
// integer operands promoted; DIV is truncating integer division
// (rejecting non-integer operands per spec §9 decision 1); / always
// produces REAL and raises on division by zero.
func (in *Interpreter) evalBinOp(e *ast.BinOp, frame *ActivationRecord) (Number, error) {
	left, err := in.evalExprIn(e.Left, frame)
	if err != nil {
		return Number{}, err
	}
	right, err := in.evalExprIn(e.Right, frame)
	if err != nil {
		return Number{}, err
	}

	switch e.Op.Type {
	case token.PLUS:
		return arith(left, right, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }), nil
	case token.MINUS:
		return arith(left, right, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }), nil
	case token.MUL:
		return arith(left, right, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }), nil

	case token.DIV:
		if left.IsReal() || right.IsReal() {
			return Number{}, diag.New(diag.Runtime, diag.CodeDivOperandNotInt, e.Pos(), e.Op.String(),
				"DIV requires integer operands")
		}
		if right.AsInt() == 0 {
			return Number{}, diag.New(diag.Runtime, diag.CodeDivisionByZero, e.Pos(), e.Op.String(),
				"division by zero")
		}
		return Int(floorDiv(left.AsInt(), right.AsInt())), nil

	case token.FLOAT_DIV:
		if right.AsFloat() == 0 {
			return Number{}, diag.New(diag.Runtime, diag.CodeDivisionByZero, e.Pos(), e.Op.String(),
				"division by zero")
		}
		return Real(left.AsFloat() / right.AsFloat()), nil

	default:
		return Number{}, fmt.Errorf("interp: unhandled operator %v", e.Op.Type)
	}
}

// arith applies intFn when both operands are INTEGER, else promotes
// both to REAL and applies floatFn.
func arith(left, right Number, intFn func(a, b int64) int64, floatFn func(a, b float64) float64) Number {
	if !left.IsReal() && !right.IsReal() {
		return Int(intFn(left.AsInt(), right.AsInt()))
	}
	return Real(floatFn(left.AsFloat(), right.AsFloat()))
}

// floorDiv truncates toward negative infinity, per spec §4.G/H ("DIV
// (integer division): truncated-toward-negative-infinity quotient").
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
