package debugger

import (
	"testing"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/vm"
)

func newEvaluator() *Evaluator {
	v := vm.New(0xC001)
	symbols := ast.NewSymbolTable()
	symbols.Declare("START", ast.Label(3))
	symbols.Declare("COUNT", ast.Constant(10))
	return &Evaluator{VM: v, Symbols: symbols}
}

func TestEvalNumberLiteral(t *testing.T) {
	e := newEvaluator()
	for _, tc := range []struct {
		input string
		want  uint16
	}{
		{"42", 42},
		{"0x2A", 42},
		{"0b101010", 42},
		{"0o52", 42},
	} {
		got, err := e.Eval(tc.input)
		if err != nil {
			t.Fatalf("Eval(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("Eval(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestEvalRegisterAndAlias(t *testing.T) {
	e := newEvaluator()
	e.VM.SetRegister(3, 99)
	if got, err := e.Eval("R3"); err != nil || got != 99 {
		t.Fatalf("Eval(R3) = %d, %v, want 99, nil", got, err)
	}
	e.VM.SetRegister(15, 0xC001)
	if got, err := e.Eval("SP"); err != nil || got != 0xC001 {
		t.Fatalf("Eval(SP) = 0x%04x, %v, want 0xc001, nil", got, err)
	}
}

func TestEvalSymbol(t *testing.T) {
	e := newEvaluator()
	if got, err := e.Eval("COUNT"); err != nil || got != 10 {
		t.Fatalf("Eval(COUNT) = %d, %v, want 10, nil", got, err)
	}
	if _, err := e.Eval("NOPE"); err == nil {
		t.Fatalf("expected error for undeclared symbol")
	}
}

func TestEvalDeref(t *testing.T) {
	e := newEvaluator()
	e.VM.Memory[0xC010] = 77
	if got, err := e.Eval("@0xC010"); err != nil || got != 77 {
		t.Fatalf("Eval(@0xC010) = %d, %v, want 77, nil", got, err)
	}
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	e := newEvaluator()
	got, err := e.Eval("2 + 3 * 4")
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if got != 14 {
		t.Fatalf("Eval(2 + 3 * 4) = %d, want 14", got)
	}
}

func TestEvalParens(t *testing.T) {
	e := newEvaluator()
	got, err := e.Eval("(2 + 3) * 4")
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if got != 20 {
		t.Fatalf("Eval((2 + 3) * 4) = %d, want 20", got)
	}
}

func TestEvalUnaryMinus(t *testing.T) {
	e := newEvaluator()
	got, err := e.Eval("-5")
	if err != nil {
		t.Fatalf("Eval(-5) error: %v", err)
	}
	if int16(got) != -5 {
		t.Fatalf("Eval(-5) = %d, want -5", int16(got))
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	e := newEvaluator()
	if _, err := e.Eval("4 / 0"); err == nil {
		t.Fatalf("expected division-by-zero error")
	}
}

func TestEvalOverflow(t *testing.T) {
	e := newEvaluator()
	if _, err := e.Eval("40000 * 40000"); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestEvalSequence(t *testing.T) {
	e := newEvaluator()
	e.VM.SetRegister(1, 5)
	vals, err := e.EvalSequence("R1, 2 + 2, COUNT")
	if err != nil {
		t.Fatalf("EvalSequence error: %v", err)
	}
	want := []uint16{5, 4, 10}
	if len(vals) != len(want) {
		t.Fatalf("got %d values, want %d", len(vals), len(want))
	}
	for i := range want {
		if vals[i] != want[i] {
			t.Fatalf("vals[%d] = %d, want %d", i, vals[i], want[i])
		}
	}
}

func TestEvalTrailingGarbageRejected(t *testing.T) {
	e := newEvaluator()
	if _, err := e.Eval("5 6"); err == nil {
		t.Fatalf("expected error for trailing input")
	}
}
