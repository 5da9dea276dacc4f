// Package tty provides the small terminal-capability surface the CLI and
// debugger need: whether stdout is a real terminal (so --no-color can be
// a no-op when output is redirected) and ANSI-wrapped text when it is.
// Terminal detection uses golang.org/x/term; no color library fits this
// job (fyne/tcell/tview are GUI/TUI frameworks, not color helpers), so
// the ANSI codes themselves are plain stdlib string formatting -- see
// DESIGN.md.
package tty

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f (typically os.Stdout) is attached to an
// interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
)

// Colorizer wraps text in ANSI escapes when enabled, and passes it
// through unchanged otherwise -- enabled is decided once at startup from
// IsTerminal and the --no-color flag.
type Colorizer struct {
	Enabled bool
}

func (c Colorizer) wrap(code, s string) string {
	if !c.Enabled {
		return s
	}
	return code + s + ansiReset
}

func (c Colorizer) Error(s string) string   { return c.wrap(ansiRed, s) }
func (c Colorizer) Success(s string) string { return c.wrap(ansiGreen, s) }
func (c Colorizer) Info(s string) string    { return c.wrap(ansiCyan, s) }

func (c Colorizer) Errorf(format string, args ...any) string {
	return c.Error(fmt.Sprintf(format, args...))
}
