package disassembler

import (
	"fmt"
	"strings"

	"github.com/haverford/hera/ast"
)

var regAlias = map[int]string{11: "Rt", 12: "FP_alt", 13: "PC_ret", 14: "FP", 15: "SP"}

func regName(r int) string {
	if name, ok := regAlias[r]; ok {
		return name
	}
	return fmt.Sprintf("R%d", r)
}

func argText(a ast.Arg) string {
	if a.Kind == ast.ArgRegister {
		return regName(a.Reg)
	}
	return a.String()
}

// Format renders a decoded Op the way a human reads HERA assembly,
// e.g. "0000  ADD(R1, R2, R3)", with labels resolved via lookup when
// non-nil (typically xref.Table.Func()).
func Format(op *ast.Op, lookup func(addr int) (string, bool)) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04x  ", op.Address)
	if lookup != nil {
		if name, ok := lookup(op.Address); ok {
			fmt.Fprintf(&sb, "%s: ", name)
		}
	}
	sb.WriteString(op.Mnemonic)
	sb.WriteByte('(')
	for i, a := range op.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(argText(a))
	}
	sb.WriteByte(')')
	return sb.String()
}

// FormatProgram renders every op, one per line.
func FormatProgram(ops []*ast.Op, lookup func(addr int) (string, bool)) string {
	var sb strings.Builder
	for _, op := range ops {
		sb.WriteString(Format(op, lookup))
		sb.WriteByte('\n')
	}
	return sb.String()
}
