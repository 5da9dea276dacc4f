// Package stdlib holds the fixed-string assets consulted by angle-bracket
// `#include <name>` directives. The real Tiger-language standard library
// text is out of scope here -- only the resolver mechanism is -- so the
// bodies below are small representative stand-ins in the same shape as the
// real library, not a faithful port.
package stdlib

// Sources maps a bare include name (the text inside `<...>`) to its HERA
// source. "HERA.h" resolves to an empty body: including it is always
// redundant (the parser warns and drops it before ever consulting this
// table), kept here only so a direct lookup never panics.
var Sources = map[string]string{
	"HERA.h": "",
	"Tiger-stdlib.hera": `
LABEL(exit)
    HALT()

LABEL(tiger_print)
    RETURN(FP_alt, PC_ret)

LABEL(tiger_println)
    RETURN(FP_alt, PC_ret)
`,
}

// Lookup returns the source for a bare angle-bracket include name and
// whether it is known.
func Lookup(name string) (string, bool) {
	s, ok := Sources[name]
	return s, ok
}
