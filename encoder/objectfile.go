package encoder

import (
	"fmt"
	"strings"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/isa"
)

// BuildDataWords walks prog's data statements (in source order, DLABEL
// skipped since it declares a symbol rather than emitting a word) into
// the flat data-segment image, following the same dc-advancement rules
// the checker uses to assign data addresses.
func BuildDataWords(prog *ast.Program) []uint16 {
	var words []uint16
	for _, op := range prog.Ops {
		spec, ok := isa.Lookup(op.Mnemonic)
		if !ok || !spec.DataStmt || op.Mnemonic == "DLABEL" {
			continue
		}
		switch op.Mnemonic {
		case "INTEGER":
			if len(op.Args) > 0 {
				words = append(words, uint16(op.Args[0].Int))
			}
		case "LP_STRING", "TIGER_STRING":
			if len(op.Args) == 0 {
				continue
			}
			s := op.Args[0].Str
			words = append(words, uint16(len(s)))
			for i := 0; i < len(s); i++ {
				words = append(words, uint16(s[i]))
			}
		case "DSKIP":
			if len(op.Args) == 0 {
				continue
			}
			for i := 0; i < op.Args[0].Int; i++ {
				words = append(words, 0)
			}
		}
	}
	return words
}

// WriteCode renders the code segment in the `.lcode` format: one
// hex-encoded 16-bit word per line.
func WriteCode(words []uint16) string {
	var sb strings.Builder
	for _, w := range words {
		fmt.Fprintf(&sb, "%04x\n", w)
	}
	return sb.String()
}

// WriteData renders the data segment in the `.ldata` format:
// "N*0" (N = dataOrigin-1, the count of always-zero low cells), then the
// starting cell index in hex, then one hex word per line in
// data-segment order.
func WriteData(words []uint16, dataOrigin int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d*0\n", dataOrigin-1)
	fmt.Fprintf(&sb, "%x\n", dataOrigin)
	for _, w := range words {
		fmt.Fprintf(&sb, "%04x\n", w)
	}
	return sb.String()
}
