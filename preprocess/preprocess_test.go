package preprocess

import (
	"testing"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/diag"
	"github.com/haverford/hera/vm"
)

func newProgram(symbols *ast.SymbolTable, ops ...*ast.Op) *ast.Program {
	p := &ast.Program{Symbols: symbols}
	for _, op := range ops {
		p.Append(op)
	}
	return p
}

func op(mnemonic string, args ...ast.Arg) *ast.Op {
	return &ast.Op{Mnemonic: mnemonic, Args: args}
}

func TestRunExpandsSet(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(), op("SET", ast.RegArg(1), ast.IntArg(0x1234)))
	sink := diag.New()
	flat := Run(prog, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors)
	}
	if len(flat) != 2 {
		t.Fatalf("got %d ops, want 2", len(flat))
	}
	if flat[0].Mnemonic != "SETLO" || flat[0].Args[1].Int != 0x34 {
		t.Fatalf("SETLO arg = %+v, want 0x34", flat[0].Args[1])
	}
	if flat[1].Mnemonic != "SETHI" || flat[1].Args[1].Int != 0x12 {
		t.Fatalf("SETHI arg = %+v, want 0x12", flat[1].Args[1])
	}
	if flat[0].Address != 0 || flat[1].Address != 1 {
		t.Fatalf("addresses = %d, %d, want 0, 1", flat[0].Address, flat[1].Address)
	}
}

func TestRunExpandsMove(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(), op("MOVE", ast.RegArg(2), ast.RegArg(3)))
	sink := diag.New()
	flat := Run(prog, sink)
	if len(flat) != 1 || flat[0].Mnemonic != "OR" {
		t.Fatalf("MOVE expanded to %v, want a single OR", flat)
	}
	if flat[0].Args[2].Reg != 0 {
		t.Fatalf("MOVE's OR must add R0, got %+v", flat[0].Args[2])
	}
}

func TestRunExpandsCmp(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(), op("CMP", ast.RegArg(1), ast.RegArg(2)))
	sink := diag.New()
	flat := Run(prog, sink)
	if len(flat) != 2 || flat[0].Mnemonic != "FON" || flat[1].Mnemonic != "SUB" {
		t.Fatalf("CMP expanded to %v, want [FON SUB]", flat)
	}
}

func TestRunExpandsHaltAndNop(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(), op("HALT"), op("NOP"))
	sink := diag.New()
	flat := Run(prog, sink)
	if len(flat) != 2 || flat[0].Mnemonic != "BRR" || flat[1].Mnemonic != "BRR" {
		t.Fatalf("HALT/NOP expanded to %v, want two BRRs", flat)
	}
	if flat[0].Args[0].Int != 0 {
		t.Fatalf("HALT's BRR offset = %d, want 0", flat[0].Args[0].Int)
	}
	if flat[1].Args[0].Int != 1 {
		t.Fatalf("NOP's BRR offset = %d, want 1", flat[1].Args[0].Int)
	}
}

func TestRunExpandsLabelBranchAndResolves(t *testing.T) {
	symbols := ast.NewSymbolTable()
	symbols.Declare("LOOP", ast.Label(7))
	prog := newProgram(symbols, op("BZ", ast.SymArg("LOOP")))
	sink := diag.New()
	flat := Run(prog, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors)
	}
	if len(flat) != 3 {
		t.Fatalf("got %d ops, want 3 (SETLO, SETHI, BZ)", len(flat))
	}
	if flat[0].Mnemonic != "SETLO" || flat[0].Args[1].Int != (7&0xFF) {
		t.Fatalf("SETLO arg = %+v, want %d", flat[0].Args[1], 7&0xFF)
	}
	if flat[1].Mnemonic != "SETHI" || flat[1].Args[1].Int != (7>>8)&0xFF {
		t.Fatalf("SETHI arg = %+v, want %d", flat[1].Args[1], (7>>8)&0xFF)
	}
	if flat[2].Mnemonic != "BZ" || flat[2].Args[0].Kind != ast.ArgRegister {
		t.Fatalf("final branch = %+v, want register-form BZ", flat[2])
	}
}

func TestRunReportsUndefinedSymbol(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(), op("BZ", ast.SymArg("NOWHERE")))
	sink := diag.New()
	Run(prog, sink)
	if !sink.HasErrors() {
		t.Fatalf("expected an undefined-symbol error")
	}
}

// A real op with no pseudo-expansion passes through unchanged.
func TestRunPassesThroughRealOps(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(), op("ADD", ast.RegArg(1), ast.RegArg(2), ast.RegArg(3)))
	sink := diag.New()
	flat := Run(prog, sink)
	if len(flat) != 1 || flat[0].Mnemonic != "ADD" {
		t.Fatalf("got %v, want passthrough ADD", flat)
	}
}

// FLAGS must clear carry before the flag-setting ADD, so a stale carry
// from an earlier instruction doesn't corrupt the zero/sign it reports.
// Regression for FLAGS(R2) wrongly reporting zero=false for R2=0 when
// carry was already set (e.g. by a preceding no-borrow SUB).
func TestRunExpandsFlagsClearsCarryFirst(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(),
		op("SET", ast.RegArg(1), ast.IntArg(0xFFFF)),
		op("SUB", ast.RegArg(0), ast.RegArg(1), ast.RegArg(1)),
		op("FLAGS", ast.RegArg(2)),
	)
	sink := diag.New()
	flat := Run(prog, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors)
	}

	machine := vm.New(0xC001)
	machine.Run(flat)
	if !machine.Flags.Zero {
		t.Fatalf("FLAGS(R2) with R2=0 should report zero=true even with carry pre-set, got %+v", machine.Flags)
	}
	if machine.Flags.Carry {
		t.Fatalf("FLAGS must clear carry before recomputing flags, got carry=true")
	}
}

// SETRF reuses FLAGS's expansion after the SET, so it inherits the same
// carry-clearing fix.
func TestRunExpandsSetrfClearsCarryFirst(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(),
		op("SET", ast.RegArg(1), ast.IntArg(0xFFFF)),
		op("SUB", ast.RegArg(0), ast.RegArg(1), ast.RegArg(1)),
		op("SETRF", ast.RegArg(2), ast.IntArg(0)),
	)
	sink := diag.New()
	flat := Run(prog, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors)
	}

	machine := vm.New(0xC001)
	machine.Run(flat)
	if !machine.Flags.Zero {
		t.Fatalf("SETRF(R2,0) should report zero=true even with carry pre-set, got %+v", machine.Flags)
	}
}

// Data statements and LABEL never appear in the flat real-op list.
func TestRunDropsDataAndLabelOps(t *testing.T) {
	prog := newProgram(ast.NewSymbolTable(),
		op("DLABEL", ast.SymArg("X")),
		op("INTEGER", ast.IntArg(1)),
		op("LABEL", ast.SymArg("START")),
		op("ADD", ast.RegArg(1), ast.RegArg(2), ast.RegArg(3)),
	)
	sink := diag.New()
	flat := Run(prog, sink)
	if len(flat) != 1 || flat[0].Mnemonic != "ADD" {
		t.Fatalf("got %v, want only the ADD", flat)
	}
}
