// Package ast holds the data model that survives from the parse phase
// through execution: the Op list, the Program wrapper, and the
// SymbolTable (symtab.go). Tokens live only inside the parse phase (see
// package lexer/parser); Ops live through checker -> preprocessor ->
// execution.
package ast

import (
	"fmt"

	"github.com/haverford/hera/diag"
)

// ArgKind distinguishes the shapes an Op argument can take before and
// after preprocessing.
type ArgKind int

const (
	ArgRegister ArgKind = iota
	ArgInt
	ArgSymbol
	ArgString
)

// Arg is one operand of an Op. Before preprocessing a branch/CALL target
// may be ArgSymbol; after preprocessing every remaining operand is either
// ArgRegister or ArgInt.
type Arg struct {
	Kind   ArgKind
	Reg    int
	Int    int
	Symbol string
	Str    string
}

func RegArg(r int) Arg       { return Arg{Kind: ArgRegister, Reg: r} }
func IntArg(v int) Arg       { return Arg{Kind: ArgInt, Int: v} }
func SymArg(name string) Arg { return Arg{Kind: ArgSymbol, Symbol: name} }
func StrArg(s string) Arg    { return Arg{Kind: ArgString, Str: s} }

func (a Arg) String() string {
	switch a.Kind {
	case ArgRegister:
		return fmt.Sprintf("R%d", a.Reg)
	case ArgInt:
		return fmt.Sprintf("%d", a.Int)
	case ArgSymbol:
		return a.Symbol
	case ArgString:
		return fmt.Sprintf("%q", a.Str)
	default:
		return "?"
	}
}

// Op is a tagged record {mnemonic, args, location, original}. Original
// optionally points at the pre-expansion op so the debugger can show the
// user-written form while stepping real ops; it points at that op in
// Program.Ops and is shared by every real op expanded from it.
type Op struct {
	Mnemonic string
	Args     []Arg
	Loc      diag.Location
	Original *Op

	// Address is this op's resolved position: a pc value for code ops
	// (LABEL included) and a dc value for data ops, assigned by the
	// checker's address-assignment pass.
	Address int
}

func (o *Op) String() string {
	s := o.Mnemonic + "("
	for i, a := range o.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// Program is the output of the parser: every op in source order (data and
// code statements interleaved exactly as written, across every included
// file), plus the symbol table the checker builds for them. Keeping a
// single ordered list rather than pre-split code/data slices is what lets
// the checker detect a data statement written after a code op ("data
// after code") -- splitting up front would throw that ordering away.
type Program struct {
	Ops     []*Op
	Symbols *SymbolTable
}

func NewProgram() *Program {
	return &Program{Symbols: NewSymbolTable()}
}

func (p *Program) Append(op *Op) { p.Ops = append(p.Ops, op) }
