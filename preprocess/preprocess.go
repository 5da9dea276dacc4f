// Package preprocess rewrites a checked Program's op list into the flat,
// fully-resolved sequence of real ops the VM and encoder consume. It runs
// in two passes: structural expansion (isa.Expand, one pseudo-op in, 1-4
// real ops out) then label/constant substitution -- mirroring a
// two-stage MacroExpander-then-ResolveForwardReferences pipeline,
// generalized to HERA's pseudo-op expansion contract.
package preprocess

import (
	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/diag"
	"github.com/haverford/hera/isa"
)

// Run expands and resolves prog (already checked by package check) into
// the flat list of real ops the VM executes, in address order. It
// assumes Check has already run and reported any errors; Run reports
// only the additional errors that can only surface after expansion
// (undefined branch/call targets).
func Run(prog *ast.Program, sink *diag.Sink) []*ast.Op {
	var flat []*ast.Op
	for _, op := range prog.Ops {
		if spec, ok := isa.Lookup(op.Mnemonic); ok && (spec.DataStmt || op.Mnemonic == "LABEL") {
			continue
		}
		expanded, err := isa.Expand(op)
		if err != nil {
			sink.Errorf(op.Loc, diag.Semantic, "%s", err)
			continue
		}
		flat = append(flat, expanded...)
	}

	for i, op := range flat {
		op.Address = i
	}
	for _, op := range flat {
		substitute(op, prog.Symbols, sink)
	}
	return flat
}

// substitute resolves any remaining ArgSymbol operand against the symbol
// table: SETLO/SETHI carry the low/high byte of the symbol's value (the
// second pass, after structural expansion); a bare register-form branch
// or CALL never reaches here with a symbol operand, since isa.Expand
// always materializes those into SETLO+SETHI first.
func substitute(op *ast.Op, symbols *ast.SymbolTable, sink *diag.Sink) {
	if len(op.Args) < 2 || op.Args[1].Kind != ast.ArgSymbol {
		return
	}
	if op.Mnemonic != "SETLO" && op.Mnemonic != "SETHI" {
		return
	}

	name := op.Args[1].Symbol
	sym, ok := symbols.Lookup(name)
	if !ok {
		sink.Errorf(op.Loc, diag.Semantic, "undefined symbol %q", name)
		op.Args[1] = ast.IntArg(0)
		return
	}

	v := uint16(sym.Value)
	if op.Mnemonic == "SETLO" {
		op.Args[1] = ast.IntArg(int(v & 0xFF))
	} else {
		op.Args[1] = ast.IntArg(int((v >> 8) & 0xFF))
	}
}
