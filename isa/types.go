// Package isa is the instruction model: the single source of truth mapping
// each HERA mnemonic to its arity, operand-type contract, binary encoding,
// pseudo-expansion, and length. It is realized as a table of per-mnemonic
// contracts (a sum type dispatched by mnemonic name) rather than one Go
// type per mnemonic, the way encoder/encoder.go dispatches by mnemonic
// string into per-family encode functions -- generalized here one level
// further into data, which check/ and preprocess/ drive off. encoder/ and
// disassembler/ keep their own switches and use only this package's
// encoding constants and condition helpers.
package isa

import "fmt"

// OperandKind is one of the operand-kind atoms of the assembly grammar.
type OperandKind int

const (
	Reg         OperandKind = iota // REGISTER
	RegOrLabel                     // REGISTER_OR_LABEL
	LabelName                      // LABEL (a symbol being declared, not referenced)
	StringLit                      // STRING
	SymbolName                     // SYMBOL (opaque name, e.g. #include target)
	U4                              // [0, 16)
	U5                              // [0, 32)
	U8                              // [0, 256)
	U16                             // [0, 65536)
	I8                              // [-128, 256)  (deliberately asymmetric)
	I16                             // [-32768, 65536)
	IncDecAmount                    // [1, 65)
)

// Range returns the inclusive-exclusive [lo, hi) bound for numeric operand
// kinds; it panics for non-numeric kinds.
func (k OperandKind) Range() (lo, hi int) {
	switch k {
	case U4:
		return 0, 16
	case U5:
		return 0, 32
	case U8:
		return 0, 256
	case U16:
		return 0, 65536
	case I8:
		return -128, 256
	case I16:
		return -32768, 65536
	case IncDecAmount:
		return 1, 65
	default:
		panic(fmt.Sprintf("isa: OperandKind(%d) is not numeric", k))
	}
}

func (k OperandKind) IsNumeric() bool {
	switch k {
	case U4, U5, U8, U16, I8, I16, IncDecAmount:
		return true
	default:
		return false
	}
}

func (k OperandKind) String() string {
	switch k {
	case Reg:
		return "REGISTER"
	case RegOrLabel:
		return "REGISTER_OR_LABEL"
	case LabelName:
		return "LABEL"
	case StringLit:
		return "STRING"
	case SymbolName:
		return "SYMBOL"
	case U4:
		return "U4"
	case U5:
		return "U5"
	case U8:
		return "U8"
	case U16:
		return "U16"
	case I8:
		return "I8"
	case I16:
		return "I16"
	case IncDecAmount:
		return "[1,65)"
	default:
		return "?"
	}
}
