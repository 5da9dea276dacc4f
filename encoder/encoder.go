// Package encoder turns a flat, fully-resolved real-op list (the output
// of package preprocess) into 16-bit instruction words. Each mnemonic
// gets its own small encode function dispatched by name, one per
// instruction family, picked by a big switch over mnemonic.
package encoder

import (
	"fmt"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/isa"
)

// Encode returns op's 16-bit instruction word. op must already be Real
// (register/immediate operands only, as produced by preprocess.Run); it
// returns an error for anything else, including every pseudo-op and data
// statement.
func Encode(op *ast.Op) (uint16, error) {
	if !isa.IsReal(op) {
		return 0, fmt.Errorf("encoder: %s is not a real op", op.Mnemonic)
	}
	switch op.Mnemonic {
	case "SETLO":
		return encodeRI(isa.Nibble1Setlo, op)
	case "SETHI":
		return encodeRI(isa.Nibble1Sethi, op)
	case "AND":
		return encodeRRR(isa.Nibble1And, op)
	case "OR":
		return encodeRRR(isa.Nibble1Or, op)
	case "ADD":
		return encodeRRR(isa.Nibble1Add, op)
	case "SUB":
		return encodeRRR(isa.Nibble1Sub, op)
	case "MUL":
		return encodeRRR(isa.Nibble1Mul, op)
	case "XOR":
		return encodeRRR(isa.Nibble1Xor, op)
	case "LOAD":
		return encodeLoadStore(isa.Nibble1Load, op)
	case "STORE":
		return encodeLoadStore(isa.Nibble1Store, op)
	case "INC":
		return encodeIncDec(isa.IncDecSelectorInc, op)
	case "DEC":
		return encodeIncDec(isa.IncDecSelectorDec, op)
	case "LSL":
		return encodeShift(isa.ShiftLSL, op)
	case "LSR":
		return encodeShift(isa.ShiftLSR, op)
	case "LSL8":
		return encodeShift(isa.ShiftLSL8, op)
	case "LSR8":
		return encodeShift(isa.ShiftLSR8, op)
	case "ASL":
		return encodeShift(isa.ShiftASL, op)
	case "ASR":
		return encodeShift(isa.ShiftASR, op)
	case "FON":
		return encodeFlagMask(isa.FlagFON, op)
	case "FOFF":
		return encodeFlagMask(isa.FlagFOFF, op)
	case "FSET5":
		return encodeFlagMask(isa.FlagFSET5, op)
	case "FSET4":
		return encodeFlagMask(isa.FlagFSET4, op)
	case "SAVEF":
		return encodeFlagReg(isa.FlagSAVEF, op)
	case "RSTRF":
		return encodeFlagReg(isa.FlagRSTRF, op)
	case "CALL":
		return encodeCallFamily(isa.CallSelectorCall, op)
	case "RETURN":
		return encodeCallFamily(isa.CallSelectorReturn, op)
	case "SWI":
		return encodeSWI(op)
	case "RTI":
		return encodeRTI(op)
	}

	if isa.IsRegisterBranch(op.Mnemonic) {
		return encodeRegisterBranch(op)
	}
	if isa.IsRelativeBranch(op.Mnemonic) {
		return encodeRelativeBranch(op)
	}
	return 0, fmt.Errorf("encoder: %s is not a real op", op.Mnemonic)
}

func reg(op *ast.Op, i int) int { return op.Args[i].Reg }
func imm(op *ast.Op, i int) int { return op.Args[i].Int }

// encodeRI packs SETLO/SETHI's {Rd, 8-bit value} into nibble1 dddd vvvvvvvv.
func encodeRI(nibble1 int, op *ast.Op) (uint16, error) {
	return isa.WithByte2(nibble1, reg(op, 0), imm(op, 1)&0xFF), nil
}

// encodeRRR packs a three-register arithmetic/logic op.
func encodeRRR(nibble1 int, op *ast.Op) (uint16, error) {
	return isa.FromNibbles(nibble1, reg(op, 0), reg(op, 1), reg(op, 2)), nil
}

// encodeLoadStore packs LOAD/STORE's {Rd, 4-bit offset, Ra}. The 4-bit
// offset (isa.U4) is a deliberate narrowing from a 5-bit off5 field,
// which does not fit this word layout; see DESIGN.md.
func encodeLoadStore(nibble1 int, op *ast.Op) (uint16, error) {
	return isa.FromNibbles(nibble1, imm(op, 1)&0xF, reg(op, 0), reg(op, 2)), nil
}

// encodeIncDec packs INC/DEC's {Rd, amount in [1,65)} under
// Nibble1IncDecFamily: Rd gets its own nibble, and byte2 holds the
// selector bit (bit 6) over the zero-based amount (bits 0-5).
func encodeIncDec(selector int, op *ast.Op) (uint16, error) {
	amount := imm(op, 1) - 1 // store as [0,64) to fit 6 bits
	byte2 := (selector&0x1)<<6 | (amount & 0x3F)
	return isa.WithByte2(isa.Nibble1IncDecFamily, reg(op, 0), byte2), nil
}

// encodeShift packs a shift op's {Rd, sub-opcode, Rs}.
func encodeShift(sub int, op *ast.Op) (uint16, error) {
	return isa.FromNibbles(isa.Nibble1ShiftFamily, reg(op, 0), sub, reg(op, 1)), nil
}

// encodeFlagMask packs FON/FOFF/FSET5/FSET4's {selector, 5-bit mask}
// under Nibble1FlagFamily: the selector gets its own nibble, the mask
// fits entirely in byte2.
func encodeFlagMask(selector int, op *ast.Op) (uint16, error) {
	return isa.WithByte2(isa.Nibble1FlagFamily, selector, imm(op, 0)), nil
}

// encodeFlagReg packs SAVEF/RSTRF's single register operand the same way,
// with byte2 holding the register index instead of a mask.
func encodeFlagReg(selector int, op *ast.Op) (uint16, error) {
	return isa.WithByte2(isa.Nibble1FlagFamily, selector, reg(op, 0)), nil
}

func encodeCallFamily(selector int, op *ast.Op) (uint16, error) {
	return isa.FromNibbles(isa.Nibble1CallFamily, selector, reg(op, 0), reg(op, 1)), nil
}

func encodeSWI(op *ast.Op) (uint16, error) {
	return isa.FromNibbles(isa.Nibble1CallFamily, isa.CallSelectorSWI, 0, imm(op, 0)&0xF), nil
}

func encodeRTI(op *ast.Op) (uint16, error) {
	return isa.FromNibbles(isa.Nibble1CallFamily, isa.CallSelectorRTI, 0, 0), nil
}

func encodeRegisterBranch(op *ast.Op) (uint16, error) {
	cond, ok := isa.ConditionByName(op.Mnemonic)
	if !ok {
		return 0, fmt.Errorf("encoder: %s is not a known branch condition", op.Mnemonic)
	}
	return isa.FromNibbles(isa.Nibble1RegisterBranch, cond.Nibble, 0, reg(op, 0)), nil
}

func encodeRelativeBranch(op *ast.Op) (uint16, error) {
	cond, ok := isa.ConditionByName(op.Mnemonic)
	if !ok {
		return 0, fmt.Errorf("encoder: %s is not a known branch condition", op.Mnemonic)
	}
	return isa.WithByte2(isa.Nibble1RelativeBranch, cond.Nibble, imm(op, 0)&0xFF), nil
}
