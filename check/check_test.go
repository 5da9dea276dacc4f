package check

import (
	"testing"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgram(ops ...*ast.Op) *ast.Program {
	p := ast.NewProgram()
	for _, op := range ops {
		p.Append(op)
	}
	return p
}

func op(mnemonic string, args ...ast.Arg) *ast.Op {
	return &ast.Op{Mnemonic: mnemonic, Args: args}
}

func TestCheckAssignsCodeAddresses(t *testing.T) {
	prog := newProgram(
		op("SETLO", ast.RegArg(1), ast.IntArg(20)),
		op("LABEL", ast.SymArg("LOOP")),
		op("ADD", ast.RegArg(1), ast.RegArg(1), ast.RegArg(0)),
	)
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.Errors)
	assert.Equal(t, 0, prog.Ops[0].Address, "SETLO address")

	sym, ok := prog.Symbols.Lookup("LOOP")
	require.True(t, ok, "LOOP should be declared")
	assert.Equal(t, 1, sym.Value, "LOOP's pc")
}

func TestCheckDetectsRedeclaration(t *testing.T) {
	prog := newProgram(
		op("DLABEL", ast.SymArg("X")),
		op("INTEGER", ast.IntArg(1)),
		op("DLABEL", ast.SymArg("X")),
		op("INTEGER", ast.IntArg(2)),
	)
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	assert.True(t, sink.HasErrors(), "expected a redeclaration error")
}

func TestCheckDataAfterCodeIsError(t *testing.T) {
	prog := newProgram(
		op("SETLO", ast.RegArg(1), ast.IntArg(1)),
		op("DLABEL", ast.SymArg("X")),
		op("INTEGER", ast.IntArg(1)),
	)
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	assert.True(t, sink.HasErrors(), "expected a data-after-code error")
}

func TestCheckDataLabelAddressIsDataOrigin(t *testing.T) {
	prog := newProgram(
		op("DLABEL", ast.SymArg("X")),
		op("INTEGER", ast.IntArg(42)),
		op("DLABEL", ast.SymArg("Y")),
		op("INTEGER", ast.IntArg(43)),
	)
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	require.False(t, sink.HasErrors(), "unexpected errors: %v", sink.Errors)

	x, ok := prog.Symbols.Lookup("X")
	require.True(t, ok)
	y, ok := prog.Symbols.Lookup("Y")
	require.True(t, ok)
	assert.Equal(t, DefaultDataOrigin, x.Value)
	assert.Equal(t, DefaultDataOrigin+1, y.Value)
}

func TestCheckUndefinedSymbolIsError(t *testing.T) {
	prog := newProgram(
		op("CONSTANT", ast.SymArg("N"), ast.SymArg("MISSING")),
	)
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	assert.True(t, sink.HasErrors(), "expected an undefined-symbol error")
}

func TestCheckLabelUsedAsConstantIsError(t *testing.T) {
	prog := newProgram(
		op("LABEL", ast.SymArg("L")),
		op("CONSTANT", ast.SymArg("N"), ast.SymArg("L")),
	)
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	assert.True(t, sink.HasErrors(), "expected an error using a label where a constant is required")
}

func TestCheckArityMismatchIsError(t *testing.T) {
	prog := newProgram(op("ADD", ast.RegArg(1), ast.RegArg(2)))
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	assert.True(t, sink.HasErrors(), "expected an arity error")
}

func TestCheckOperandOutOfRangeIsError(t *testing.T) {
	prog := newProgram(op("SETLO", ast.RegArg(1), ast.IntArg(1000)))
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	assert.True(t, sink.HasErrors(), "expected an out-of-range error")
}

func TestCheckRelativeBranchRejectsLabelOperand(t *testing.T) {
	prog := newProgram(
		op("LABEL", ast.SymArg("L")),
		op("BZR", ast.SymArg("L")),
	)
	sink := diag.New()
	Check(prog, sink, DefaultDataOrigin)
	assert.True(t, sink.HasErrors(), "expected an error for BZR taking a label operand")
}

func TestCheckBigStackOrigin(t *testing.T) {
	prog := newProgram(op("DLABEL", ast.SymArg("X")), op("INTEGER", ast.IntArg(1)))
	sink := diag.New()
	Check(prog, sink, BigStackDataOrigin)
	x, ok := prog.Symbols.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, BigStackDataOrigin, x.Value)
}
