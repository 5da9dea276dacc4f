package isa

import (
	"fmt"

	"github.com/haverford/hera/ast"
)

func withOriginal(op *ast.Op, parent *ast.Op) *ast.Op {
	op.Loc = parent.Loc
	if parent.Original != nil {
		op.Original = parent.Original
	} else {
		op.Original = parent
	}
	return op
}

func mk(parent *ast.Op, mnemonic string, args ...ast.Arg) *ast.Op {
	return withOriginal(&ast.Op{Mnemonic: mnemonic, Args: args}, parent)
}

// Expand performs the preprocessor's structural pass: it turns one
// pseudo-op into the fixed sequence of real ops it stands for. It never
// touches the symbol table -- a SET/SETLO/SETHI/branch/CALL target that is
// still ArgSymbol here ends up as a SETLO/SETHI operand, which the later
// substitution pass in package preprocess replaces with the symbol's low
// or high byte.
//
// Expand returns op unchanged, wrapped in a one-element slice, when op is
// already Real.
func Expand(op *ast.Op) ([]*ast.Op, error) {
	if IsReal(op) {
		return []*ast.Op{op}, nil
	}

	switch op.Mnemonic {
	case "SET":
		return expandSet(op, op.Args[0], op.Args[1])
	case "SETRF":
		rd, v := op.Args[0], op.Args[1]
		set, err := expandSet(op, rd, v)
		if err != nil {
			return nil, err
		}
		flags, err := Expand(mk(op, "FLAGS", rd))
		if err != nil {
			return nil, err
		}
		return append(set, flags...), nil
	case "MOVE":
		return []*ast.Op{mk(op, "OR", op.Args[0], op.Args[1], ast.RegArg(R0))}, nil
	case "CMP":
		return []*ast.Op{
			mk(op, "FON", ast.IntArg(FlagCarryBlock)),
			mk(op, "SUB", ast.RegArg(R0), op.Args[0], op.Args[1]),
		}, nil
	case "CON":
		return []*ast.Op{mk(op, "FON", ast.IntArg(FlagCarry))}, nil
	case "COFF":
		return []*ast.Op{mk(op, "FOFF", ast.IntArg(FlagCarry))}, nil
	case "CBON":
		return []*ast.Op{mk(op, "FON", ast.IntArg(FlagCarryBlock))}, nil
	case "CCBOFF":
		return []*ast.Op{mk(op, "FOFF", ast.IntArg(FlagCarryBlock))}, nil
	case "FLAGS":
		rd := op.Args[0]
		return []*ast.Op{
			mk(op, "FOFF", ast.IntArg(FlagCarry)),
			mk(op, "ADD", ast.RegArg(R0), rd, ast.RegArg(R0)),
		}, nil
	case "NEG":
		rd, rs := op.Args[0], op.Args[1]
		return []*ast.Op{
			mk(op, "FON", ast.IntArg(FlagCarryBlock)),
			mk(op, "SUB", rd, ast.RegArg(R0), rs),
		}, nil
	case "NOT":
		rd, rs := op.Args[0], op.Args[1]
		return []*ast.Op{
			mk(op, "SETLO", ast.RegArg(Rt), ast.IntArg(0xFF)),
			mk(op, "SETHI", ast.RegArg(Rt), ast.IntArg(0xFF)),
			mk(op, "XOR", rd, ast.RegArg(Rt), rs),
		}, nil
	case "HALT":
		return []*ast.Op{mk(op, "BRR", ast.IntArg(0))}, nil
	case "NOP":
		return []*ast.Op{mk(op, "BRR", ast.IntArg(1))}, nil
	case "CALL":
		rd, target := op.Args[0], op.Args[1]
		return []*ast.Op{
			mk(op, "SETLO", ast.RegArg(PCRet), target),
			mk(op, "SETHI", ast.RegArg(PCRet), target),
			mk(op, "CALL", rd, ast.RegArg(PCRet)),
		}, nil
	}

	if IsRegisterBranch(op.Mnemonic) {
		target := op.Args[0]
		return []*ast.Op{
			mk(op, "SETLO", ast.RegArg(Rt), target),
			mk(op, "SETHI", ast.RegArg(Rt), target),
			mk(op, op.Mnemonic, ast.RegArg(Rt)),
		}, nil
	}

	return nil, fmt.Errorf("isa: %s has no known expansion", op.Mnemonic)
}

// expandSet implements SET(Rd, v): always two ops, SETLO then SETHI, even
// when v's high byte is zero. This is a deliberate departure from a
// length-minimizing expansion (see DESIGN.md): SET's declared length is a
// fixed 2 regardless of v, so the expansion must always produce exactly
// two ops for that invariant to hold for every v.
func expandSet(op *ast.Op, rd, v ast.Arg) ([]*ast.Op, error) {
	if v.Kind == ast.ArgSymbol {
		return []*ast.Op{
			mk(op, "SETLO", rd, v),
			mk(op, "SETHI", rd, v),
		}, nil
	}
	if v.Kind != ast.ArgInt {
		return nil, fmt.Errorf("isa: SET expects an integer or symbol operand, got %v", v)
	}
	u := uint16(v.Int)
	lo := int(u & 0xFF)
	hi := int((u >> 8) & 0xFF)
	return []*ast.Op{
		mk(op, "SETLO", rd, ast.IntArg(lo)),
		mk(op, "SETHI", rd, ast.IntArg(hi)),
	}, nil
}
