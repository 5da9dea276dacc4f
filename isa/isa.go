package isa

import "github.com/haverford/hera/ast"

// Register aliases.
const (
	R0    = 0
	Rt    = 11
	FPAlt = 12
	PCRet = 13
	FP    = 14
	SP    = 15
)

// Flag bit positions used by SAVEF/RSTRF/FON/FOFF/FSET5/FSET4: sign=bit0,
// zero=bit1, overflow=bit2, carry=bit3, carry-block=bit4. CMP's expansion
// below sets carry-block via FlagCarryBlock's real value rather than a
// hand-written literal, to avoid any ambiguity about which named flag
// owns which bit. See DESIGN.md.
const (
	FlagSign       = 1 << 0
	FlagZero       = 1 << 1
	FlagOverflow   = 1 << 2
	FlagCarry      = 1 << 3
	FlagCarryBlock = 1 << 4
)

// Spec is the per-mnemonic contract: arity (len(Operands)), operand-type
// grammar, and whether it is Real (executed directly by the VM/encoded to
// a word) or a pseudo-op the preprocessor must expand first. Polymorphic
// mnemonics (Bxx and CALL) carry a RegOrLabel slot and are Real only when
// every argument actually resolves to a register.
type Spec struct {
	Name     string
	Operands []OperandKind
	Real     bool
	DataStmt bool
}

var table = map[string]*Spec{}

func reg(name string, ops ...OperandKind) {
	table[name] = &Spec{Name: name, Operands: ops, Real: true}
}

func pseudo(name string, ops ...OperandKind) {
	table[name] = &Spec{Name: name, Operands: ops, Real: false}
}

func data(name string, ops ...OperandKind) {
	table[name] = &Spec{Name: name, Operands: ops, DataStmt: true}
}

func init() {
	reg("SETLO", Reg, I8)
	reg("SETHI", Reg, I8)
	reg("AND", Reg, Reg, Reg)
	reg("OR", Reg, Reg, Reg)
	reg("ADD", Reg, Reg, Reg)
	reg("SUB", Reg, Reg, Reg)
	reg("MUL", Reg, Reg, Reg)
	reg("XOR", Reg, Reg, Reg)
	reg("LOAD", Reg, U4, Reg)
	reg("STORE", Reg, U4, Reg)
	reg("INC", Reg, IncDecAmount)
	reg("DEC", Reg, IncDecAmount)
	reg("LSL", Reg, Reg)
	reg("LSR", Reg, Reg)
	reg("LSL8", Reg, Reg)
	reg("LSR8", Reg, Reg)
	reg("ASL", Reg, Reg)
	reg("ASR", Reg, Reg)
	reg("FON", U5)
	reg("FOFF", U5)
	reg("FSET5", U5)
	reg("FSET4", U4)
	reg("SAVEF", Reg)
	reg("RSTRF", Reg)
	reg("RETURN", Reg, Reg)
	reg("SWI", U4)
	reg("RTI")

	// CALL and every Bxx/BxxR mnemonic are registered below, since their
	// Real-ness is arg-dependent rather than fixed (see IsReal).
	table["CALL"] = &Spec{Name: "CALL", Operands: []OperandKind{Reg, RegOrLabel}}
	for _, c := range Conditions {
		table[c.Name] = &Spec{Name: c.Name, Operands: []OperandKind{RegOrLabel}}
		table[c.RelativeName()] = &Spec{Name: c.RelativeName(), Operands: []OperandKind{I8}, Real: true}
	}

	pseudo("SET", Reg, I16)
	pseudo("SETRF", Reg, I16)
	pseudo("MOVE", Reg, Reg)
	pseudo("CMP", Reg, Reg)
	pseudo("CON")
	pseudo("COFF")
	pseudo("CBON")
	pseudo("CCBOFF")
	pseudo("FLAGS", Reg)
	pseudo("NEG", Reg, Reg)
	pseudo("NOT", Reg, Reg)
	pseudo("HALT")
	pseudo("NOP")

	// LABEL lives in the code section (it marks a pc position, like any
	// other code-counter op) even though it declares a symbol the way the
	// data statements below do; it is neither Real nor DataStmt.
	table["LABEL"] = &Spec{Name: "LABEL", Operands: []OperandKind{LabelName}}

	data("DLABEL", LabelName)
	data("CONSTANT", LabelName, I16)
	data("INTEGER", I16)
	data("LP_STRING", StringLit)
	data("TIGER_STRING", StringLit)
	data("DSKIP", U16)
}

// Lookup returns the contract for mnemonic, or false if it is unknown.
func Lookup(mnemonic string) (*Spec, bool) {
	s, ok := table[mnemonic]
	return s, ok
}

// IsReal reports whether op, as written (after symbol resolution to
// either a register or a value), is executed directly by the VM rather
// than needing preprocessor expansion. Bxx and CALL are Real exactly when
// their branch/call target argument is a register, not a symbol.
func IsReal(op *ast.Op) bool {
	spec, ok := table[op.Mnemonic]
	if !ok {
		return false
	}
	if spec.DataStmt {
		return false
	}
	switch op.Mnemonic {
	case "CALL":
		return len(op.Args) == 2 && op.Args[1].Kind == ast.ArgRegister
	default:
		if _, isCond := ConditionByName(op.Mnemonic); isCond && IsRegisterBranch(op.Mnemonic) {
			return len(op.Args) == 1 && op.Args[0].Kind == ast.ArgRegister
		}
		return spec.Real
	}
}

// Length returns the operation length used for PC/label arithmetic during
// the checker's address-assignment pass. It depends only on the mnemonic
// and (for Bxx/CALL) the syntactic kind of
// the target argument, never on a resolved numeric value -- SET is
// pinned at a fixed 2 regardless of whether the immediate's high byte is
// zero, which is why Expand always emits both SETLO and SETHI for SET
// (see expand.go and DESIGN.md).
func Length(op *ast.Op) int {
	switch op.Mnemonic {
	case "LABEL":
		return 0
	case "SET":
		return 2
	case "SETRF":
		return 4
	case "CMP", "FLAGS", "NEG":
		return 2
	case "NOT":
		return 3
	case "CALL":
		if len(op.Args) == 2 && op.Args[1].Kind == ast.ArgRegister {
			return 1
		}
		return 3
	}
	if IsRegisterBranch(op.Mnemonic) {
		if len(op.Args) == 1 && op.Args[0].Kind == ast.ArgRegister {
			return 1
		}
		return 3
	}
	if IsRelativeBranch(op.Mnemonic) {
		return 1
	}
	if spec, ok := table[op.Mnemonic]; ok {
		if spec.DataStmt {
			return 0
		}
		if spec.Real {
			return 1
		}
	}
	// Any other pseudo-op's length is simply how many real ops its fixed
	// expansion produces (CON/COFF/CBON/CCBOFF/HALT/NOP/MOVE all expand
	// to exactly one op; NOT to three, etc.) -- computed once here rather
	// than duplicated as a literal constant per mnemonic.
	expanded, err := Expand(op)
	if err != nil {
		return 1
	}
	return len(expanded)
}
