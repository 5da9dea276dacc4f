// Package xref builds the debugger's reverse PC/DC-to-label map and a
// human-readable cross-reference report, covering HERA's three symbol
// kinds (LABEL, DLABEL, CONSTANT). It indexes by resolved address rather
// than by source line, since the debugger looks symbols up by address.
package xref

import (
	"fmt"
	"sort"
	"strings"

	"github.com/haverford/hera/ast"
)

// Entry is one resolved symbol, ready for both the debugger's reverse
// lookup and the cross-reference report.
type Entry struct {
	Name    string
	Kind    ast.SymbolKind
	Address int
}

// Table is the symbol table reorganized by address instead of by name.
type Table struct {
	byAddress map[int][]Entry
	entries   []Entry
}

// Build walks prog.Symbols into a Table. Only LABEL and DLABEL entries
// carry a meaningful address (CONSTANT's Value is not an address); both
// appear in the reverse map so the debugger can annotate both code and
// data dumps.
func Build(symbols *ast.SymbolTable) *Table {
	t := &Table{byAddress: make(map[int][]Entry)}
	for _, name := range symbols.Names() {
		sym, ok := symbols.Lookup(name)
		if !ok {
			continue
		}
		e := Entry{Name: name, Kind: sym.Kind, Address: sym.Value}
		t.entries = append(t.entries, e)
		if sym.Kind == ast.SymLabel || sym.Kind == ast.SymDataLabel {
			t.byAddress[sym.Value] = append(t.byAddress[sym.Value], e)
		}
	}
	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].Name < t.entries[j].Name })
	return t
}

// ReverseLookup returns the first label known at addr, for annotating a
// disassembly listing or a debugger prompt.
func (t *Table) ReverseLookup(addr int) (string, bool) {
	entries := t.byAddress[addr]
	if len(entries) == 0 {
		return "", false
	}
	return entries[0].Name, true
}

// Func matching disassembler.Format's lookup parameter shape.
func (t *Table) Func() func(addr int) (string, bool) {
	return t.ReverseLookup
}

// Report renders a sorted, human-readable symbol listing: name, kind,
// and resolved value for each of HERA's three symbol kinds.
func (t *Table) Report() string {
	var sb strings.Builder
	sb.WriteString("Symbol table\n")
	sb.WriteString("============\n\n")
	for _, e := range t.entries {
		switch e.Kind {
		case ast.SymConstant:
			fmt.Fprintf(&sb, "%-24s constant  = %d\n", e.Name, e.Address)
		case ast.SymLabel:
			fmt.Fprintf(&sb, "%-24s label     @ 0x%04x\n", e.Name, e.Address)
		case ast.SymDataLabel:
			fmt.Fprintf(&sb, "%-24s data label @ 0x%04x\n", e.Name, e.Address)
		}
	}
	return sb.String()
}
