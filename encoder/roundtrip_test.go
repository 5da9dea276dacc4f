package encoder_test

// Round-trip coverage for disassemble(assemble(op)) == op. One real op
// per instruction family, encoded and then decoded, checking mnemonic
// and every argument.

import (
	"testing"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/disassembler"
	"github.com/haverford/hera/encoder"
)

func reg(i int) ast.Arg { return ast.RegArg(i) }
func val(i int) ast.Arg { return ast.IntArg(i) }

func roundTrip(t *testing.T, op *ast.Op) *ast.Op {
	t.Helper()
	word, err := encoder.Encode(op)
	if err != nil {
		t.Fatalf("Encode(%s) error: %v", op.Mnemonic, err)
	}
	decoded, err := disassembler.Decode(word, 0)
	if err != nil {
		t.Fatalf("Decode(0x%04x) error: %v", word, err)
	}
	return decoded
}

func requireArgs(t *testing.T, got *ast.Op, want *ast.Op) {
	t.Helper()
	if got.Mnemonic != want.Mnemonic {
		t.Fatalf("mnemonic = %s, want %s", got.Mnemonic, want.Mnemonic)
	}
	if len(got.Args) != len(want.Args) {
		t.Fatalf("%s: got %d args, want %d", want.Mnemonic, len(got.Args), len(want.Args))
	}
	for i := range want.Args {
		if got.Args[i].Kind != want.Args[i].Kind {
			t.Fatalf("%s arg %d: kind = %v, want %v", want.Mnemonic, i, got.Args[i].Kind, want.Args[i].Kind)
		}
		switch want.Args[i].Kind {
		case ast.ArgRegister:
			if got.Args[i].Reg != want.Args[i].Reg {
				t.Fatalf("%s arg %d: reg = %d, want %d", want.Mnemonic, i, got.Args[i].Reg, want.Args[i].Reg)
			}
		case ast.ArgInt:
			if got.Args[i].Int != want.Args[i].Int {
				t.Fatalf("%s arg %d: int = %d, want %d", want.Mnemonic, i, got.Args[i].Int, want.Args[i].Int)
			}
		}
	}
}

func TestRoundTripArithmeticFamily(t *testing.T) {
	for _, mnemonic := range []string{"AND", "OR", "ADD", "SUB", "MUL", "XOR"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{reg(3), reg(1), reg(2)}}
		requireArgs(t, roundTrip(t, op), op)
	}
}

func TestRoundTripSetloSethi(t *testing.T) {
	for _, mnemonic := range []string{"SETLO", "SETHI"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{reg(5), val(0xAB)}}
		requireArgs(t, roundTrip(t, op), op)
	}
}

func TestRoundTripLoadStore(t *testing.T) {
	for _, mnemonic := range []string{"LOAD", "STORE"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{reg(2), val(7), reg(1)}}
		requireArgs(t, roundTrip(t, op), op)
	}
}

func TestRoundTripIncDec(t *testing.T) {
	inc := &ast.Op{Mnemonic: "INC", Args: []ast.Arg{reg(3), val(1)}}
	requireArgs(t, roundTrip(t, inc), inc)

	dec := &ast.Op{Mnemonic: "DEC", Args: []ast.Arg{reg(3), val(64)}}
	requireArgs(t, roundTrip(t, dec), dec)
}

func TestRoundTripShifts(t *testing.T) {
	for _, mnemonic := range []string{"LSL", "LSR", "LSL8", "LSR8", "ASL", "ASR"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{reg(2), reg(1)}}
		requireArgs(t, roundTrip(t, op), op)
	}
}

func TestRoundTripFlagFamily(t *testing.T) {
	for _, mnemonic := range []string{"FON", "FOFF", "FSET5"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{val(0x1F)}}
		requireArgs(t, roundTrip(t, op), op)
	}
	fset4 := &ast.Op{Mnemonic: "FSET4", Args: []ast.Arg{val(0xF)}}
	requireArgs(t, roundTrip(t, fset4), fset4)

	for _, mnemonic := range []string{"SAVEF", "RSTRF"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{reg(4)}}
		requireArgs(t, roundTrip(t, op), op)
	}
}

func TestRoundTripCallReturn(t *testing.T) {
	for _, mnemonic := range []string{"CALL", "RETURN"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{reg(12), reg(13)}}
		requireArgs(t, roundTrip(t, op), op)
	}
}

func TestRoundTripSWIRTI(t *testing.T) {
	swi := &ast.Op{Mnemonic: "SWI", Args: []ast.Arg{val(3)}}
	requireArgs(t, roundTrip(t, swi), swi)

	rti := &ast.Op{Mnemonic: "RTI"}
	requireArgs(t, roundTrip(t, rti), rti)
}

func TestRoundTripRegisterBranch(t *testing.T) {
	for _, mnemonic := range []string{"BR", "BZ", "BNZ", "BC", "BNC", "BS", "BNS", "BV", "BNV", "BL", "BGE", "BLE", "BG", "BULE", "BUG"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{reg(1)}}
		requireArgs(t, roundTrip(t, op), op)
	}
}

func TestRoundTripRelativeBranch(t *testing.T) {
	for _, mnemonic := range []string{"BRR", "BZR", "BNZR", "BLR"} {
		op := &ast.Op{Mnemonic: mnemonic, Args: []ast.Arg{val(-5)}}
		requireArgs(t, roundTrip(t, op), op)
	}
}

// A negative relative-branch offset must come back with its sign intact
// through the int8 byte2 round trip.
func TestRoundTripRelativeBranchNegativeOffset(t *testing.T) {
	op := &ast.Op{Mnemonic: "BRR", Args: []ast.Arg{val(-128)}}
	requireArgs(t, roundTrip(t, op), op)
}
