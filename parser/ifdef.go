package parser

import "strings"

// builtinDefines are the only preprocessor symbols #ifdef/#ifndef ever see
// as defined: the interpreter's own identity tag and "HERA_PY" are
// defined; "HERA_CPP" is explicitly not.
var builtinDefines = map[string]bool{
	"HERA":    true,
	"HERA_PY": true,
}

type condFrame struct {
	active     bool // is this frame's branch currently emitting lines
	parentOK   bool // was the enclosing frame active (false disables this whole frame)
	tookBranch bool // has any branch of this if/else chain already been taken
}

// stripConditionals evaluates #ifdef/#ifndef/#else/#endif blocks ahead of
// lexing and blanks out both the directive lines and any inactive block's
// body, preserving line numbers exactly so downstream diagnostics still
// point at the original source. Blocks nest.
func stripConditionals(text string) string {
	lines := strings.Split(text, "\n")
	var stack []condFrame
	active := func() bool {
		for _, f := range stack {
			if !f.active {
				return false
			}
		}
		return true
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#ifdef "):
			name := strings.TrimSpace(trimmed[len("#ifdef "):])
			parentOK := active()
			on := parentOK && builtinDefines[name]
			stack = append(stack, condFrame{active: on, parentOK: parentOK, tookBranch: on})
			lines[i] = ""
		case strings.HasPrefix(trimmed, "#ifndef "):
			name := strings.TrimSpace(trimmed[len("#ifndef "):])
			parentOK := active()
			on := parentOK && !builtinDefines[name]
			stack = append(stack, condFrame{active: on, parentOK: parentOK, tookBranch: on})
			lines[i] = ""
		case trimmed == "#else":
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.active = top.parentOK && !top.tookBranch
				top.tookBranch = top.tookBranch || top.active
			}
			lines[i] = ""
		case trimmed == "#endif":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			lines[i] = ""
		default:
			if !active() {
				lines[i] = ""
			}
		}
	}
	return strings.Join(lines, "\n")
}
