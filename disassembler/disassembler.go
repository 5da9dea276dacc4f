// Package disassembler is the literal inverse of package encoder: given a
// 16-bit instruction word it reconstructs the ast.Op that would encode to
// it (the round-trip property: disassemble(assemble(op)) == op), dispatching
// on the opcode's leading nibble into one decode function per instruction
// family.
package disassembler

import (
	"fmt"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/isa"
)

// Decode turns one 16-bit word into its Op. addr is used only to label
// the Op's address field; it plays no part in decoding.
func Decode(word uint16, addr int) (*ast.Op, error) {
	n := isa.Nibbles(word)
	n0 := n[0]

	switch n0 {
	case isa.Nibble1RelativeBranch:
		return decodeRelativeBranch(word, n, addr)
	case isa.Nibble1RegisterBranch:
		return decodeRegisterBranch(n, addr)
	case isa.Nibble1CallFamily:
		return decodeCallFamily(n, addr)
	case isa.Nibble1IncDecFamily:
		return decodeIncDec(word, n, addr)
	case isa.Nibble1Load:
		return decodeLoadStore("LOAD", n, addr), nil
	case isa.Nibble1Store:
		return decodeLoadStore("STORE", n, addr), nil
	case isa.Nibble1ShiftFamily:
		return decodeShift(n, addr)
	case isa.Nibble1FlagFamily:
		return decodeFlagFamily(word, n, addr)
	case isa.Nibble1And:
		return decodeRRR("AND", n, addr), nil
	case isa.Nibble1Or:
		return decodeRRR("OR", n, addr), nil
	case isa.Nibble1Add:
		return decodeRRR("ADD", n, addr), nil
	case isa.Nibble1Sub:
		return decodeRRR("SUB", n, addr), nil
	case isa.Nibble1Mul:
		return decodeRRR("MUL", n, addr), nil
	case isa.Nibble1Xor:
		return decodeRRR("XOR", n, addr), nil
	case isa.Nibble1Setlo:
		return decodeRI("SETLO", word, n, addr), nil
	case isa.Nibble1Sethi:
		return decodeRI("SETHI", word, n, addr), nil
	}
	return nil, fmt.Errorf("disassembler: unrecognized opcode 0x%04x", word)
}

func op(addr int, mnemonic string, args ...ast.Arg) *ast.Op {
	return &ast.Op{Mnemonic: mnemonic, Args: args, Address: addr}
}

func decodeRI(mnemonic string, word uint16, n [4]int, addr int) *ast.Op {
	return op(addr, mnemonic, ast.RegArg(n[1]), ast.IntArg(isa.Byte2(word)))
}

func decodeRRR(mnemonic string, n [4]int, addr int) *ast.Op {
	return op(addr, mnemonic, ast.RegArg(n[1]), ast.RegArg(n[2]), ast.RegArg(n[3]))
}

func decodeLoadStore(mnemonic string, n [4]int, addr int) *ast.Op {
	// encodeLoadStore packs {offset, Rd, Ra} into nibbles 1,2,3.
	return op(addr, mnemonic, ast.RegArg(n[2]), ast.IntArg(n[1]), ast.RegArg(n[3]))
}

func decodeIncDec(word uint16, n [4]int, addr int) (*ast.Op, error) {
	byte2 := isa.Byte2(word)
	selector := (byte2 >> 6) & 0x1
	amount := (byte2 & 0x3F) + 1
	mnemonic := "INC"
	if selector == isa.IncDecSelectorDec {
		mnemonic = "DEC"
	}
	return op(addr, mnemonic, ast.RegArg(n[1]), ast.IntArg(amount)), nil
}

func decodeShift(n [4]int, addr int) (*ast.Op, error) {
	names := map[int]string{
		isa.ShiftLSL:  "LSL",
		isa.ShiftLSR:  "LSR",
		isa.ShiftLSL8: "LSL8",
		isa.ShiftLSR8: "LSR8",
		isa.ShiftASL:  "ASL",
		isa.ShiftASR:  "ASR",
	}
	mnemonic, ok := names[n[2]]
	if !ok {
		return nil, fmt.Errorf("disassembler: unknown shift sub-opcode %d", n[2])
	}
	return op(addr, mnemonic, ast.RegArg(n[1]), ast.RegArg(n[3])), nil
}

func decodeFlagFamily(word uint16, n [4]int, addr int) (*ast.Op, error) {
	byte2 := isa.Byte2(word)
	switch n[1] {
	case isa.FlagFON:
		return op(addr, "FON", ast.IntArg(byte2)), nil
	case isa.FlagFOFF:
		return op(addr, "FOFF", ast.IntArg(byte2)), nil
	case isa.FlagFSET5:
		return op(addr, "FSET5", ast.IntArg(byte2)), nil
	case isa.FlagFSET4:
		return op(addr, "FSET4", ast.IntArg(byte2)), nil
	case isa.FlagSAVEF:
		return op(addr, "SAVEF", ast.RegArg(byte2&0xF)), nil
	case isa.FlagRSTRF:
		return op(addr, "RSTRF", ast.RegArg(byte2&0xF)), nil
	}
	return nil, fmt.Errorf("disassembler: unknown flag-family selector %d", n[1])
}

func decodeCallFamily(n [4]int, addr int) (*ast.Op, error) {
	switch n[1] {
	case isa.CallSelectorCall:
		return op(addr, "CALL", ast.RegArg(n[2]), ast.RegArg(n[3])), nil
	case isa.CallSelectorReturn:
		return op(addr, "RETURN", ast.RegArg(n[2]), ast.RegArg(n[3])), nil
	case isa.CallSelectorSWI:
		return op(addr, "SWI", ast.IntArg(n[3])), nil
	case isa.CallSelectorRTI:
		return op(addr, "RTI"), nil
	}
	return nil, fmt.Errorf("disassembler: unknown call-family selector %d", n[1])
}

func decodeRegisterBranch(n [4]int, addr int) (*ast.Op, error) {
	cond, ok := isa.ConditionByNibble(n[1])
	if !ok {
		return nil, fmt.Errorf("disassembler: unknown branch condition nibble %d", n[1])
	}
	return op(addr, cond.Name, ast.RegArg(n[3])), nil
}

func decodeRelativeBranch(word uint16, n [4]int, addr int) (*ast.Op, error) {
	cond, ok := isa.ConditionByNibble(n[1])
	if !ok {
		return nil, fmt.Errorf("disassembler: unknown branch condition nibble %d", n[1])
	}
	offset := int(int8(isa.Byte2(word)))
	return op(addr, cond.RelativeName(), ast.IntArg(offset)), nil
}

// DecodeProgram decodes a whole code image, one word per Op, addresses
// starting at 0 (matching preprocess.Run's addressing).
func DecodeProgram(words []uint16) ([]*ast.Op, error) {
	ops := make([]*ast.Op, 0, len(words))
	for i, w := range words {
		decoded, err := Decode(w, i)
		if err != nil {
			return nil, fmt.Errorf("at word %d: %w", i, err)
		}
		ops = append(ops, decoded)
	}
	return ops, nil
}
