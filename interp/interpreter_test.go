package interp

import (
	"fmt"
	"testing"

	"github.com/cwbudde/pasc/config"
	"github.com/cwbudde/pasc/diag"
	"github.com/cwbudde/pasc/lexer"
	"github.com/cwbudde/pasc/parser"
	"github.com/cwbudde/pasc/semantic"
	"github.com/gkampitakis/go-snaps/snaps"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// run lexes, parses, analyzes, and interprets src, failing the test on
// any diagnostic from the first three stages (those are exercised
// directly by the lexer/parser/semantic packages' own tests).
func run(t *testing.T, src string) (*ActivationRecord, *Interpreter, error) {
	t.Helper()
	l := lexer.New(src)
	p, err := parser.New(l)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	if err := semantic.New(config.Default()).Analyze(prog); err != nil {
		t.Fatalf("semantic error: %v", err)
	}
	interp := New(config.Default())
	frame, err := interp.Run(prog)
	return frame, interp, err
}

// Scenario 1 (spec §8): a := 2 + 7 * 4 -> a = 30.
func TestScenario1_IntegerArithmetic(t *testing.T) {
	frame, _, err := run(t, "PROGRAM T; VAR a: INTEGER; BEGIN a := 2 + 7 * 4 END.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Int(30)
	got, _ := frame.Get("a")
	if got != want {
		t.Errorf("got a = %v, want %v", got, want)
	}
	snaps.MatchSnapshot(t, frame.String())
}

// Scenario 2 (spec §8): a := 7 - 8 DIV 4 -> a = 5.
func TestScenario2_IntegerDiv(t *testing.T) {
	frame, _, err := run(t, "PROGRAM T; VAR a: INTEGER; BEGIN a := 7 - 8 DIV 4 END.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Int(5)
	got, _ := frame.Get("a")
	if got != want {
		t.Errorf("got a = %v, want %v", got, want)
	}
	snaps.MatchSnapshot(t, frame.String())
}

// Scenario 3 (spec §8): a := 7.14 - 8 / 4 -> a ~= 5.14.
func TestScenario3_RealDivision(t *testing.T) {
	frame, _, err := run(t, "PROGRAM T; VAR a: REAL; BEGIN a := 7.14 - 8 / 4 END.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := frame.Get("a")
	if !got.IsReal() {
		t.Fatalf("got %v, want a REAL value", got)
	}
	const eps = 1e-9
	if diff := got.AsFloat() - 5.14; diff > eps || diff < -eps {
		t.Errorf("got a = %v, want ~5.14", got)
	}
	snaps.MatchSnapshot(t, frame.String())
}

// Scenario 4 (spec §8): `a := 10 * ; END.` is a parser error at the ';'.
func TestScenario4_DanglingOperatorIsParserError(t *testing.T) {
	l := lexer.New("PROGRAM T; BEGIN a := 10 * ; END.")
	p, err := parser.New(l)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	_, err = p.ParseProgram()
	if err == nil {
		t.Fatal("expected a parser error")
	}
	d := err.(*diag.Diagnostic)
	if d.Category != diag.Parser || d.Code != diag.CodeUnexpectedToken {
		t.Errorf("got %v/%v, want Parser/UNEXPECTED_TOKEN", d.Category, d.Code)
	}
	if d.Pos.Line != 1 {
		t.Errorf("got line %d, want 1", d.Pos.Line)
	}
}

// Scenario 5 (spec §8): redeclaring 'a' with a different type in one
// scope is DUPLICATE_ID on the second occurrence.
func TestScenario5_DuplicateDeclaration(t *testing.T) {
	l := lexer.New("PROGRAM T; VAR a: INTEGER; a: REAL; BEGIN END.")
	p, err := parser.New(l)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	err = semantic.New(config.Default()).Analyze(prog)
	if err == nil {
		t.Fatal("expected a semantic error")
	}
	d := err.(*diag.Diagnostic)
	if d.Category != diag.Semantic || d.Code != diag.CodeDuplicateID {
		t.Errorf("got %v/%v, want Semantic/DUPLICATE_ID", d.Category, d.Code)
	}
}

// Scenario 6 (spec §8): a procedure call binds formals to actuals in
// the new frame, evaluated in the caller's frame. Assignments write the
// top frame only and Alpha's frame is popped before Run returns, so the
// test captures that frame at entry through the --stack trace: a logger
// hook reads the top of the stack when the PROCEDURE frame's
// "push frame" record is written.
func TestScenario6_ProcedureCallBindsFormals(t *testing.T) {
	l := lexer.New(`PROGRAM T;
		PROCEDURE Alpha(a, b: INTEGER);
			VAR x: INTEGER;
			BEGIN x := (a+b)*2 END;
		BEGIN Alpha(3+5, 7) END.`)
	p, err := parser.New(l)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	cfg := config.Default()
	if err := semantic.New(cfg).Analyze(prog); err != nil {
		t.Fatalf("semantic error: %v", err)
	}

	var in *Interpreter
	var entry *ActivationRecord
	core, _ := observer.New(zapcore.DebugLevel)
	cfg.StackTrace = true
	cfg.Logger = zap.New(core, zap.Hooks(func(e zapcore.Entry) error {
		if e.Message == "push frame" && in.Stack.Peek().Kind == ProcedureFrame {
			entry = in.Stack.Peek()
		}
		return nil
	}))
	in = New(cfg)
	if _, err := in.Run(prog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil {
		t.Fatal("no PROCEDURE frame was pushed")
	}
	a, _ := entry.Get("a")
	b, _ := entry.Get("b")
	if a != Int(8) || b != Int(7) {
		t.Errorf("got a=%v b=%v, want a=8 b=7", a, b)
	}
}

func TestUnaryChain(t *testing.T) {
	frame, _, err := run(t, "PROGRAM T; VAR a: INTEGER; BEGIN a := 5 - - - + - 3 END.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := frame.Get("a")
	if got != Int(8) {
		t.Errorf("got a = %v, want 8", got)
	}
}

func TestEmptyProgram_EmptyGlobalFrame(t *testing.T) {
	frame, _, err := run(t, "PROGRAM T; BEGIN END.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := frame.Get("anything"); ok {
		t.Error("expected an empty frame")
	}
}

func TestCallStack_EmptyAfterSuccess(t *testing.T) {
	_, interp, err := run(t, "PROGRAM T; VAR a: INTEGER; BEGIN a := 1 END.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !interp.Stack.Empty() {
		t.Error("expected an empty call stack after a successful run")
	}
}

func TestCallStack_EmptyAfterRuntimeError(t *testing.T) {
	_, interp, err := run(t, "PROGRAM T; VAR a: INTEGER; BEGIN a := 1 DIV 0 END.")
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	if !interp.Stack.Empty() {
		t.Error("expected an empty call stack after a runtime error")
	}
}

func TestDivisionByZero_FloatDiv(t *testing.T) {
	_, _, err := run(t, "PROGRAM T; VAR a: REAL; BEGIN a := 1 / 0 END.")
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	d := err.(*diag.Diagnostic)
	if d.Category != diag.Runtime || d.Code != diag.CodeDivisionByZero {
		t.Errorf("got %v/%v, want Runtime/DIVISION_BY_ZERO", d.Category, d.Code)
	}
}

func TestDiv_RejectsRealOperands(t *testing.T) {
	_, _, err := run(t, "PROGRAM T; VAR a: REAL; BEGIN a := 1.5 DIV 2 END.")
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	d := err.(*diag.Diagnostic)
	if d.Category != diag.Runtime || d.Code != diag.CodeDivOperandNotInt {
		t.Errorf("got %v/%v, want Runtime/DIV_OPERAND_NOT_INTEGER", d.Category, d.Code)
	}
}

func TestFloorDiv_NegativeOperands(t *testing.T) {
	// -7 DIV 2 truncates toward negative infinity: -4, not -3.
	frame, _, err := run(t, "PROGRAM T; VAR a: INTEGER; BEGIN a := -7 DIV 2 END.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := frame.Get("a")
	if got != Int(-4) {
		t.Errorf("got a = %v, want -4", got)
	}
}

func TestFloorDiv_Direct(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
	}
	for _, c := range cases {
		got := floorDiv(c.a, c.b)
		if got != c.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestUnassignedVariableReadsZero(t *testing.T) {
	frame, _, err := run(t, "PROGRAM T; VAR a, b: INTEGER; BEGIN a := b END.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := frame.Get("a")
	if got != Int(0) {
		t.Errorf("got a = %v, want 0", got)
	}
}

// TestArityMismatch_RuntimeGuard disables the semantic analyzer's
// arity check (TypeCheckCalls: false) so a mismatched call reaches
// the interpreter unchecked, exercising its own defensive guard at
// interp/interpreter.go's visitProcedureCall.
func TestArityMismatch_RuntimeGuard(t *testing.T) {
	src := `PROGRAM T;
		PROCEDURE Alpha(a: INTEGER); BEGIN END;
		BEGIN Alpha(1, 2) END.`

	cfg := config.Default()
	cfg.TypeCheckCalls = false

	l := lexer.New(src)
	p, err := parser.New(l)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	prog, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("parser error: %v", err)
	}
	if err := semantic.New(cfg).Analyze(prog); err != nil {
		t.Fatalf("unexpected semantic error with TypeCheckCalls disabled: %v", err)
	}

	_, err = New(cfg).Run(prog)
	if err == nil {
		t.Fatal("expected a runtime arity-mismatch error")
	}
	d := err.(*diag.Diagnostic)
	if d.Category != diag.Runtime || d.Code != diag.CodeArityMismatch {
		t.Errorf("got %v/%v, want Runtime/ARITY_MISMATCH", d.Category, d.Code)
	}
}

func TestNumberFormatting(t *testing.T) {
	if fmt.Sprint(Int(5)) != "5" {
		t.Errorf("got %q, want 5", fmt.Sprint(Int(5)))
	}
	if fmt.Sprint(Real(5.5)) != "5.5" {
		t.Errorf("got %q, want 5.5", fmt.Sprint(Real(5.5)))
	}
}
