package debugger

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatSpec is a parsed `:chars` format specifier: each character in the
// suffix selects a rendering of the evaluated value, and they stack (a
// value can be shown in more than one form on one line).
type FormatSpec struct {
	Decimal       bool
	Hex           bool
	Octal         bool
	Binary        bool
	Char          bool
	Signed        bool
	Location      bool
	ForceChar     bool // 'C' -- force char rendering even on a non-printable value
	ForceLocation bool // 'S' -- force location/label rendering even when unknown

	raw string
}

// ParseFormatSpec splits a leading ":chars" prefix off input and returns
// the remaining expression text alongside the parsed spec. A line with no
// leading colon gets the zero-value FormatSpec (meaning "default
// rendering", decided by the caller).
func ParseFormatSpec(input string) (FormatSpec, string) {
	trimmed := strings.TrimLeft(input, " \t")
	if !strings.HasPrefix(trimmed, ":") {
		return FormatSpec{}, input
	}
	rest := trimmed[1:]
	i := 0
	for i < len(rest) && isFormatChar(rest[i]) {
		i++
	}
	spec := FormatSpec{raw: rest[:i]}
	for _, c := range rest[:i] {
		switch c {
		case 'd':
			spec.Decimal = true
		case 'x':
			spec.Hex = true
		case 'o':
			spec.Octal = true
		case 'b':
			spec.Binary = true
		case 'c':
			spec.Char = true
		case 's':
			spec.Signed = true
		case 'l':
			spec.Location = true
		case 'C':
			spec.Char = true
			spec.ForceChar = true
		case 'S':
			spec.Location = true
			spec.ForceLocation = true
		}
	}
	return spec, rest[i:]
}

func isFormatChar(c byte) bool {
	switch c {
	case 'd', 'x', 'o', 'b', 'c', 's', 'l', 'C', 'S':
		return true
	}
	return false
}

// Render renders value under spec, looking up a source label via lookup
// when the 'l'/'S' chars are present. An empty spec renders plain decimal,
// the debugger's default when the user supplies no specifier.
func Render(value uint16, spec FormatSpec, lookup func(uint16) (string, bool)) string {
	if spec.raw == "" {
		return strconv.Itoa(int(value))
	}
	var parts []string
	if spec.Decimal {
		parts = append(parts, strconv.Itoa(int(value)))
	}
	if spec.Signed {
		parts = append(parts, strconv.Itoa(int(int16(value))))
	}
	if spec.Hex {
		parts = append(parts, fmt.Sprintf("0x%04x", value))
	}
	if spec.Octal {
		parts = append(parts, fmt.Sprintf("0o%o", value))
	}
	if spec.Binary {
		parts = append(parts, fmt.Sprintf("0b%016b", value))
	}
	if spec.Char {
		lo := byte(value & 0xFF)
		if spec.ForceChar || (lo >= 0x20 && lo < 0x7F) {
			parts = append(parts, fmt.Sprintf("'%c'", lo))
		}
	}
	if spec.Location {
		if lookup != nil {
			if name, ok := lookup(value); ok {
				parts = append(parts, name)
			} else if spec.ForceLocation {
				parts = append(parts, "<unknown>")
			}
		}
	}
	if len(parts) == 0 {
		return strconv.Itoa(int(value))
	}
	return strings.Join(parts, " ")
}
