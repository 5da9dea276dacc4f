package lexer

import (
	"fmt"

	"github.com/haverford/hera/diag"
)

// Kind is the type of a lexical token.
type Kind int

const (
	INT Kind = iota
	REGISTER
	SYMBOL
	STRING
	CHAR
	FMT
	LBRACKETED
	INCLUDE
	MINUS
	PLUS
	ASTERISK
	SLASH
	AT
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	COMMA
	SEMICOLON
	EOF
	UNKNOWN
)

var kindNames = map[Kind]string{
	INT:        "INT",
	REGISTER:   "REGISTER",
	SYMBOL:     "SYMBOL",
	STRING:     "STRING",
	CHAR:       "CHAR",
	FMT:        "FMT",
	LBRACKETED: "LBRACKETED",
	INCLUDE:    "INCLUDE",
	MINUS:      "MINUS",
	PLUS:       "PLUS",
	ASTERISK:   "ASTERISK",
	SLASH:      "SLASH",
	AT:         "AT",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	COMMA:      "COMMA",
	SEMICOLON:  "SEMICOLON",
	EOF:        "EOF",
	UNKNOWN:    "UNKNOWN",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IntBase records which literal base an INT token was spelled in, purely
// for diagnostics (e.g. suggesting the 0o form for a bare-zero octal).
type IntBase int

const (
	BaseDecimal IntBase = iota
	BaseHex
	BaseBinary
	BaseOctal
)

// Token is {kind, text, location}, with the two fields (RegIndex,
// IntValue/IntBase) that only apply to REGISTER and INT tokens resolved
// eagerly at lex time.
type Token struct {
	Kind     Kind
	Text     string
	Loc      diag.Location
	RegIndex int     // valid when Kind == REGISTER
	IntValue int     // valid when Kind == INT
	IntBase  IntBase // valid when Kind == INT
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Loc)
}
