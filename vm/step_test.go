package vm

import (
	"testing"

	"github.com/haverford/hera/ast"
)

func reg(i int) ast.Arg { return ast.RegArg(i) }
func val(i int) ast.Arg { return ast.IntArg(i) }

func opWith(mnemonic string, args ...ast.Arg) *ast.Op {
	return &ast.Op{Mnemonic: mnemonic, Args: args}
}

// Addition: SET(R1,20); SET(R2,22); ADD(R3,R1,R2) should yield 42, no flags set.
func TestAdditionScenario(t *testing.T) {
	v := New(0xC001)
	v.SetRegister(1, 20)
	v.SetRegister(2, 22)
	ops := []*ast.Op{opWith("ADD", reg(3), reg(1), reg(2))}
	v.Step(ops)
	if v.Registers[3] != 42 {
		t.Fatalf("R3 = %d, want 42", v.Registers[3])
	}
	if v.Flags.Zero || v.Flags.Carry || v.Flags.Overflow {
		t.Fatalf("unexpected flags after 20+22: %+v", v.Flags)
	}
}

func TestSignedOverflow(t *testing.T) {
	v := New(0xC001)
	v.SetRegister(2, 32767)
	v.SetRegister(3, 1)
	ops := []*ast.Op{opWith("ADD", reg(1), reg(2), reg(3))}
	v.Step(ops)
	if v.Registers[1] != 0x8000 {
		t.Fatalf("R1 = 0x%04x, want 0x8000", v.Registers[1])
	}
	if !v.Flags.Sign || !v.Flags.Overflow || v.Flags.Carry {
		t.Fatalf("unexpected flags: %+v", v.Flags)
	}
}

// Subtraction with carry-block set: 12-12 with no borrow.
func TestSubtractionNoBorrow(t *testing.T) {
	v := New(0xC001)
	v.Flags.CarryBlock = true
	v.SetRegister(2, 12)
	v.SetRegister(3, 12)
	ops := []*ast.Op{opWith("SUB", reg(1), reg(2), reg(3))}
	v.Step(ops)
	if v.Registers[1] != 0 {
		t.Fatalf("R1 = %d, want 0", v.Registers[1])
	}
	if !v.Flags.Carry || !v.Flags.Zero {
		t.Fatalf("want carry=true zero=true, got %+v", v.Flags)
	}
}

// SETLO(R2, 255) sign-extends to 0xFFFF.
func TestSetloSignExtends(t *testing.T) {
	v := New(0xC001)
	v.SetRegister(2, 0x1234)
	ops := []*ast.Op{opWith("SETLO", reg(2), val(255))}
	v.Step(ops)
	if v.Registers[2] != 0xFFFF {
		t.Fatalf("R2 = 0x%04x, want 0xFFFF", v.Registers[2])
	}
}

func TestSethiPreservesLowByte(t *testing.T) {
	v := New(0xC001)
	v.SetRegister(3, 0x00AB)
	ops := []*ast.Op{opWith("SETHI", reg(3), val(42))}
	v.Step(ops)
	if v.Registers[3] != 0x2AAB {
		t.Fatalf("R3 = 0x%04x, want 0x2aab", v.Registers[3])
	}
}

// R0 is hardwired to zero: writes to it are silently discarded.
func TestR0Invariance(t *testing.T) {
	v := New(0xC001)
	v.SetRegister(0, 0xFFFF)
	if v.Registers[0] != 0 {
		t.Fatalf("R0 = 0x%04x, want 0", v.Registers[0])
	}
}

// Data layout: DLABEL(X); INTEGER(42); SET(R1,X); LOAD(R2,0,R1).
func TestDataLayout(t *testing.T) {
	const dataStart = 0xC001
	v := New(dataStart)
	v.LoadData([]uint16{42}, dataStart)
	v.SetRegister(1, uint16(dataStart))
	ops := []*ast.Op{opWith("LOAD", reg(2), val(0), reg(1))}
	v.Step(ops)
	if v.Registers[1] != uint16(dataStart) {
		t.Fatalf("R1 = 0x%04x, want 0x%04x", v.Registers[1], dataStart)
	}
	if v.Registers[2] != 42 {
		t.Fatalf("R2 = %d, want 42", v.Registers[2])
	}
	if v.Memory[dataStart] != 42 {
		t.Fatalf("memory[data_start] = %d, want 42", v.Memory[dataStart])
	}
}

// LOAD sets zero/sign from the loaded value.
func TestLoadSetsFlags(t *testing.T) {
	v := New(0xC001)
	v.Memory[0xC001] = 0
	v.SetRegister(1, 0xC001)
	ops := []*ast.Op{opWith("LOAD", reg(2), val(0), reg(1))}
	v.Step(ops)
	if !v.Flags.Zero {
		t.Fatalf("loading 0 should set zero flag")
	}
}

// STORE does not alter flags.
func TestStoreLeavesFlags(t *testing.T) {
	v := New(0xC001)
	v.Flags.Zero = true
	v.Flags.Sign = true
	v.SetRegister(1, 0xC001)
	v.SetRegister(2, 7)
	ops := []*ast.Op{opWith("STORE", reg(2), val(0), reg(1))}
	v.Step(ops)
	if !v.Flags.Zero || !v.Flags.Sign {
		t.Fatalf("STORE must not touch flags, got %+v", v.Flags)
	}
	if v.Memory[0xC001] != 7 {
		t.Fatalf("memory[0xC001] = %d, want 7", v.Memory[0xC001])
	}
}

// CALL and RETURN perform the identical register swap (see DESIGN.md).
func TestCallReturnSwap(t *testing.T) {
	v := New(0xC001)
	v.SetRegister(1, 0x0010) // call target
	v.PC = 5
	ops := make([]*ast.Op, 6)
	ops[5] = opWith("CALL", reg(12), reg(1))
	v.Step(ops)
	if v.PC != 0x0010 {
		t.Fatalf("PC = 0x%04x after CALL, want 0x0010", v.PC)
	}
	if v.Registers[1] != 6 {
		t.Fatalf("Ra should hold the return address, got %d", v.Registers[1])
	}
	if v.CallDepth != 1 {
		t.Fatalf("CallDepth = %d, want 1", v.CallDepth)
	}

	ops2 := make([]*ast.Op, int(v.PC)+1)
	ops2[v.PC] = opWith("RETURN", reg(12), reg(1))
	v.Step(ops2)
	if v.PC != 6 {
		t.Fatalf("PC = 0x%04x after RETURN, want 6", v.PC)
	}
	if v.CallDepth != 0 {
		t.Fatalf("CallDepth = %d, want 0", v.CallDepth)
	}
}

func TestUnbalancedReturnWarns(t *testing.T) {
	v := New(0xC001)
	v.SetRegister(1, 0x10)
	ops := []*ast.Op{opWith("RETURN", reg(12), reg(1))}
	v.Step(ops)
	if len(v.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", v.Warnings)
	}
}

// ASR sign-extends from the original sign bit regardless of carry-in.
func TestASRSignExtends(t *testing.T) {
	v := New(0xC001)
	v.Flags.Carry = true
	v.SetRegister(1, 0x8001)
	ops := []*ast.Op{opWith("ASR", reg(2), reg(1))}
	v.Step(ops)
	if v.Registers[2] != 0xC000 {
		t.Fatalf("R2 = 0x%04x, want 0xc000", v.Registers[2])
	}
}

func TestLSRInjectsCarry(t *testing.T) {
	v := New(0xC001)
	v.Flags.Carry = true
	v.SetRegister(1, 0x0002)
	ops := []*ast.Op{opWith("LSR", reg(2), reg(1))}
	v.Step(ops)
	if v.Registers[2] != 0x8001 {
		t.Fatalf("R2 = 0x%04x, want 0x8001", v.Registers[2])
	}
}
