// Package diag implements the accumulating diagnostic sink shared by the
// lexer, parser, checker, and preprocessor. It is the Go counterpart of the
// teacher's parser.ErrorList/parser.Error pair: a position-carrying error
// type collected into a list and rendered with a caret under the offending
// source line.
package diag

import (
	"fmt"
	"strings"
)

// Location identifies a point in a HERA source file. FileLines is kept so
// that error rendering can show the offending line without re-reading the
// file from disk.
type Location struct {
	Path      string
	Line      int
	Column    int
	FileLines []string
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}

// SourceLine returns the (1-indexed) source line the location points at, or
// "" if it is unavailable.
func (l Location) SourceLine() string {
	if l.Line < 1 || l.Line > len(l.FileLines) {
		return ""
	}
	return l.FileLines[l.Line-1]
}

// Kind categorizes a diagnostic for callers that want to filter by phase.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	Runtime
)

// Message is a single error or warning with an optional location.
type Message struct {
	Loc    Location
	Text   string
	Kind   Kind
	HasLoc bool
}

func (m Message) String() string {
	var sb strings.Builder
	if m.HasLoc {
		sb.WriteString(m.Loc.String())
		sb.WriteString(": ")
	}
	sb.WriteString(m.Text)
	if m.HasLoc {
		if line := m.Loc.SourceLine(); line != "" {
			sb.WriteString("\n    ")
			sb.WriteString(line)
			sb.WriteString("\n    ")
			for i := 1; i < m.Loc.Column; i++ {
				sb.WriteByte(' ')
			}
			sb.WriteByte('^')
		}
	}
	return sb.String()
}

// Sink accumulates errors and warnings across every compilation phase. Each
// phase tries to produce as many useful diagnostics as possible before
// stopping; the driver only gives up once a phase that requires success (the
// checker, before preprocessing runs) reports at least one error.
type Sink struct {
	Errors   []Message
	Warnings []Message
}

func New() *Sink { return &Sink{} }

func (s *Sink) Errorf(loc Location, kind Kind, format string, args ...any) {
	s.Errors = append(s.Errors, Message{Loc: loc, HasLoc: true, Kind: kind, Text: fmt.Sprintf(format, args...)})
}

// ErrorfNoLoc records an error with no associated source location.
func (s *Sink) ErrorfNoLoc(kind Kind, format string, args ...any) {
	s.Errors = append(s.Errors, Message{Kind: kind, Text: fmt.Sprintf(format, args...)})
}

func (s *Sink) Warnf(loc Location, format string, args ...any) {
	s.Warnings = append(s.Warnings, Message{Loc: loc, HasLoc: true, Text: fmt.Sprintf(format, args...)})
}

func (s *Sink) HasErrors() bool { return len(s.Errors) > 0 }

// Merge appends another sink's messages onto this one.
func (s *Sink) Merge(other *Sink) {
	s.Errors = append(s.Errors, other.Errors...)
	s.Warnings = append(s.Warnings, other.Warnings...)
}

// Render writes every accumulated error then every warning, one per line
// (plus caret context).
func (s *Sink) Render() string {
	var sb strings.Builder
	for _, e := range s.Errors {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	for _, w := range s.Warnings {
		sb.WriteString("warning: ")
		sb.WriteString(w.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
