// Package check is the two-pass checker that builds the symbol table and
// type-checks every op: one redeclaration pass, then one combined
// address-assignment/type-check pass, since HERA's LABEL/DLABEL/CONSTANT
// declarations carry three different resolution rules (see symtab.go).
package check

import (
	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/diag"
	"github.com/haverford/hera/isa"
)

// isDecl reports whether op declares a symbol-table entry, and the name
// it declares.
func isDecl(op *ast.Op) (name string, ok bool) {
	switch op.Mnemonic {
	case "LABEL", "DLABEL", "CONSTANT":
		if len(op.Args) > 0 && op.Args[0].Kind == ast.ArgSymbol {
			return op.Args[0].Symbol, true
		}
	}
	return "", false
}

// DefaultDataOrigin and BigStackDataOrigin are dc's starting value (a
// configurable origin); the CLI's --big-stack flag selects the latter.
const (
	DefaultDataOrigin  = 0xC001
	BigStackDataOrigin = 0xC167
)

// Check runs both passes over prog, populating prog.Symbols and reporting
// every diagnostic to sink. It always finishes (diagnostics accumulate;
// nothing here aborts early), so the driver decides whether to proceed to
// preprocessing based on sink.HasErrors() afterward. dataOrigin is dc's
// starting value; pass check.DefaultDataOrigin unless --big-stack was
// given.
func Check(prog *ast.Program, sink *diag.Sink, dataOrigin int) {
	redeclarationPass(prog, sink)
	addressAndTypePass(prog, sink, dataOrigin)
}

func redeclarationPass(prog *ast.Program, sink *diag.Sink) {
	seen := map[string]bool{}
	for _, op := range prog.Ops {
		name, ok := isDecl(op)
		if !ok {
			continue
		}
		if seen[name] {
			sink.Errorf(op.Loc, diag.Semantic, "redeclared symbol %q", name)
			continue
		}
		seen[name] = true
	}
}

const maxAddress = 1 << 16

func addressAndTypePass(prog *ast.Program, sink *diag.Sink, dataOrigin int) {
	pc, dc := 0, dataOrigin
	dcOverflowed := false
	seenCode := false

	for _, op := range prog.Ops {
		spec, known := isa.Lookup(op.Mnemonic)
		if !known {
			sink.Errorf(op.Loc, diag.Semantic, "unknown mnemonic %q", op.Mnemonic)
			continue
		}

		if spec.DataStmt {
			if seenCode {
				sink.Errorf(op.Loc, diag.Semantic, "data statement %q must precede all code", op.Mnemonic)
			}
			op.Address = dc
			dc += checkDataStmt(op, spec, prog.Symbols, sink, dc, &dcOverflowed)
			continue
		}

		seenCode = true
		if op.Mnemonic == "LABEL" {
			checkArity(op, spec, sink)
			if len(op.Args) > 0 && op.Args[0].Kind == ast.ArgSymbol {
				declareLabel(op, prog.Symbols, pc, sink)
			}
			op.Address = pc
			continue
		}

		op.Address = pc
		checkArity(op, spec, sink)
		checkOperands(op, spec, prog.Symbols, sink)
		pc += isa.Length(op)
	}
}

func declareLabel(op *ast.Op, symbols *ast.SymbolTable, pc int, sink *diag.Sink) {
	name := op.Args[0].Symbol
	symbols.Declare(name, ast.Label(pc))
}

// checkDataStmt type-checks a data statement and returns how much it
// advances dc.
func checkDataStmt(op *ast.Op, spec *isa.Spec, symbols *ast.SymbolTable, sink *diag.Sink, dc int, dcOverflowed *bool) int {
	checkArity(op, spec, sink)
	if len(op.Args) < len(spec.Operands) {
		return 0
	}

	switch op.Mnemonic {
	case "DLABEL":
		name := op.Args[0].Symbol
		if *dcOverflowed {
			symbols.Declare(name, ast.DataLabel(0))
		} else {
			symbols.Declare(name, ast.DataLabel(dc))
		}
		return 0
	case "CONSTANT":
		name := op.Args[0].Symbol
		v, ok := checkOperandAt(op, 1, isa.I16, symbols, sink)
		if ok {
			symbols.Declare(name, ast.Constant(v))
		}
		return 0
	case "INTEGER":
		checkOperandAt(op, 0, isa.I16, symbols, sink)
		advanceAndCheckOverflow(dc+1, dcOverflowed)
		return 1
	case "LP_STRING", "TIGER_STRING":
		n := 0
		if len(op.Args) > 0 && op.Args[0].Kind == ast.ArgString {
			n = len(op.Args[0].Str)
		}
		advanceAndCheckOverflow(dc+n+1, dcOverflowed)
		return n + 1
	case "DSKIP":
		v, ok := checkOperandAt(op, 0, isa.U16, symbols, sink)
		if !ok {
			return 0
		}
		advanceAndCheckOverflow(dc+v, dcOverflowed)
		return v
	}
	return 0
}

func advanceAndCheckOverflow(newDC int, dcOverflowed *bool) {
	if newDC >= maxAddress {
		*dcOverflowed = true
	}
}

func checkArity(op *ast.Op, spec *isa.Spec, sink *diag.Sink) {
	if len(op.Args) != len(spec.Operands) {
		sink.Errorf(op.Loc, diag.Semantic, "%s expects %d operand(s), got %d", op.Mnemonic, len(spec.Operands), len(op.Args))
	}
}

// checkOperands type-checks every operand of a non-data op against its
// spec, resolving ArgSymbol operands of numeric kinds to already-declared
// constants; range membership is checked only after symbols are resolved
// to constants.
func checkOperands(op *ast.Op, spec *isa.Spec, symbols *ast.SymbolTable, sink *diag.Sink) {
	n := len(op.Args)
	if n > len(spec.Operands) {
		n = len(spec.Operands)
	}
	for i := 0; i < n; i++ {
		checkOperandAt(op, i, spec.Operands[i], symbols, sink)
	}
}

// checkOperandAt validates op.Args[i] against kind and, for numeric
// kinds, returns its resolved integer value.
func checkOperandAt(op *ast.Op, i int, kind isa.OperandKind, symbols *ast.SymbolTable, sink *diag.Sink) (int, bool) {
	arg := op.Args[i]

	switch kind {
	case isa.Reg:
		if arg.Kind != ast.ArgRegister {
			sink.Errorf(op.Loc, diag.Semantic, "%s: operand %d must be a register", op.Mnemonic, i+1)
			return 0, false
		}
		return arg.Reg, true

	case isa.RegOrLabel:
		if arg.Kind != ast.ArgRegister && arg.Kind != ast.ArgSymbol {
			sink.Errorf(op.Loc, diag.Semantic, "%s: operand %d must be a register or a label", op.Mnemonic, i+1)
			return 0, false
		}
		return 0, true

	case isa.LabelName, isa.SymbolName:
		if arg.Kind != ast.ArgSymbol {
			sink.Errorf(op.Loc, diag.Semantic, "%s: operand %d must be a symbol name", op.Mnemonic, i+1)
			return 0, false
		}
		return 0, true

	case isa.StringLit:
		if arg.Kind != ast.ArgString {
			sink.Errorf(op.Loc, diag.Semantic, "%s: operand %d must be a string literal", op.Mnemonic, i+1)
			return 0, false
		}
		return 0, true
	}

	// Relative branches reject a symbolic operand outright rather than
	// resolving it.
	if i == 0 && arg.Kind == ast.ArgSymbol && isa.IsRelativeBranch(op.Mnemonic) {
		sink.Errorf(op.Loc, diag.Semantic, "%s: relative branches cannot take a label operand, use the register form instead", op.Mnemonic)
		return 0, false
	}

	// SET/SETRF's value may also be a label or data label; it stays
	// symbolic for the preprocessor's SETLO/SETHI byte substitution.
	if i == 1 && arg.Kind == ast.ArgSymbol && (op.Mnemonic == "SET" || op.Mnemonic == "SETRF") {
		if sym, ok := symbols.Lookup(arg.Symbol); !ok || sym.Kind != ast.SymConstant {
			return 0, true
		}
	}

	return resolveNumeric(op, i, kind, arg, symbols, sink)
}

func resolveNumeric(op *ast.Op, i int, kind isa.OperandKind, arg ast.Arg, symbols *ast.SymbolTable, sink *diag.Sink) (int, bool) {
	var v int
	switch arg.Kind {
	case ast.ArgInt:
		v = arg.Int
	case ast.ArgSymbol:
		sym, ok := symbols.Lookup(arg.Symbol)
		if !ok {
			sink.Errorf(op.Loc, diag.Semantic, "undefined symbol %q", arg.Symbol)
			return 0, false
		}
		if sym.Kind != ast.SymConstant {
			sink.Errorf(op.Loc, diag.Semantic, "%s used as a constant, but it is a %s", arg.Symbol, sym.Kind)
			return 0, false
		}
		v = sym.Value
	default:
		sink.Errorf(op.Loc, diag.Semantic, "%s: operand %d must be an integer", op.Mnemonic, i+1)
		return 0, false
	}

	lo, hi := kind.Range()
	if v < lo || v >= hi {
		sink.Errorf(op.Loc, diag.Semantic, "%s: operand %d (%d) is out of range %s", op.Mnemonic, i+1, v, kind)
		return 0, false
	}
	// Bake the resolved constant back into the op so every later phase
	// (preprocessor expansion, encoding) sees a plain integer rather than
	// having to re-walk the symbol table itself.
	op.Args[i] = ast.IntArg(v)
	return v, true
}
