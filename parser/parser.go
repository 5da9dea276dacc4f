// Package parser recognises the assembly source grammar:
//
//	program := (op | include | ifdef-block | cpp-boilerplate)*
//	op      := SYMBOL LPAREN arglist? RPAREN SEMICOLON?
//	arglist := value (COMMA value)*
//
// It is a hand-rolled current/peek recursive-descent reader driven directly
// off the lexer's token stream, accumulating diagnostics rather than
// stopping at the first error so a single run surfaces every problem in
// the file.
package parser

import (
	"path/filepath"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/diag"
	"github.com/haverford/hera/lexer"
)

type parser struct {
	sink     *diag.Sink
	inc      Includer
	included map[string]bool
}

// Parse reads a HERA source file (and, transitively, everything it
// includes) into a single Program. Diagnostics accumulate in sink;
// Parse always returns a Program, even when sink.HasErrors() afterward.
func Parse(text, path string, sink *diag.Sink, inc Includer) *ast.Program {
	p := &parser{sink: sink, inc: inc, included: map[string]bool{}}
	prog := ast.NewProgram()
	p.parseFile(stripConditionals(text), path, prog)
	return prog
}

type fileState struct {
	lx   *lexer.Lexer
	path string
	cur  lexer.Token
	peek lexer.Token
}

func (p *parser) parseFile(text, path string, prog *ast.Program) {
	fs := &fileState{lx: lexer.New(text, path, p.sink), path: path}
	fs.next()
	fs.next()

	for fs.cur.Kind != lexer.EOF {
		switch fs.cur.Kind {
		case lexer.INCLUDE:
			p.parseInclude(fs, prog)
		case lexer.LBRACE, lexer.RBRACE:
			// Tolerated `void HERA_main() { ... }` boilerplate punctuation.
			fs.next()
		case lexer.SYMBOL:
			if fs.cur.Text == "void" && fs.peek.Text == "HERA_main" {
				fs.next() // void
				fs.next() // HERA_main
				fs.expect(lexer.LPAREN, "expected '(' after HERA_main")
				fs.expect(lexer.RPAREN, "expected ')' after HERA_main(")
				continue
			}
			p.parseOp(fs, prog)
		default:
			p.sink.Errorf(fs.cur.Loc, diag.Syntactic, "unexpected token %s", fs.cur.Kind)
			fs.next()
		}
	}
}

func (s *fileState) next() {
	s.cur = s.peek
	s.peek = s.lx.NextToken()
}

func (s *fileState) expect(k lexer.Kind, msg string) bool {
	if s.cur.Kind != k {
		return false
	}
	s.next()
	_ = msg
	return true
}

func (p *parser) parseInclude(fs *fileState, prog *ast.Program) {
	loc := fs.cur.Loc
	fs.next() // consume INCLUDE

	switch fs.cur.Kind {
	case lexer.STRING:
		rel := fs.cur.Text
		fs.next()
		fromDir := filepath.Dir(fs.path)
		canonical, content, err := p.inc.ReadQuoted(fromDir, rel)
		if err != nil {
			p.sink.Errorf(loc, diag.Syntactic, "missing file: %s", rel)
			return
		}
		if p.included[canonical] {
			p.sink.Errorf(loc, diag.Syntactic, "recursive include of %s", rel)
			return
		}
		p.included[canonical] = true
		p.parseFile(stripConditionals(content), canonical, prog)
	case lexer.LBRACKETED:
		name := fs.cur.Text
		fs.next()
		if name == "HERA.h" {
			p.sink.Warnf(loc, "#include <HERA.h> is not necessary")
			return
		}
		key := "<lib:" + name + ">"
		if p.included[key] {
			p.sink.Errorf(loc, diag.Syntactic, "recursive include of %s", name)
			return
		}
		content, err := p.inc.ReadBracketed(name)
		if err != nil {
			p.sink.Errorf(loc, diag.Syntactic, "missing file: %s", name)
			return
		}
		p.included[key] = true
		p.parseFile(stripConditionals(content), key, prog)
	default:
		p.sink.Errorf(loc, diag.Syntactic, "expected an include path after #include")
	}
}

func (p *parser) parseOp(fs *fileState, prog *ast.Program) {
	loc := fs.cur.Loc
	name := fs.cur.Text
	fs.next()

	if fs.cur.Kind != lexer.LPAREN {
		p.sink.Errorf(fs.cur.Loc, diag.Syntactic, "expected '(' after %s", name)
		p.resync(fs)
		return
	}
	fs.next()

	var args []ast.Arg
	if fs.cur.Kind != lexer.RPAREN {
		for {
			arg, ok := p.parseValue(fs)
			if ok {
				args = append(args, arg)
			}
			if fs.cur.Kind == lexer.COMMA {
				fs.next()
				continue
			}
			break
		}
	}

	if fs.cur.Kind != lexer.RPAREN {
		p.sink.Errorf(fs.cur.Loc, diag.Syntactic, "expected ',' or ')'")
		p.resync(fs)
		return
	}
	fs.next()

	if fs.cur.Kind == lexer.SEMICOLON {
		fs.next()
	}

	op := &ast.Op{Mnemonic: name, Args: args, Loc: loc}
	prog.Append(op)
}

func (p *parser) parseValue(fs *fileState) (ast.Arg, bool) {
	loc := fs.cur.Loc
	switch fs.cur.Kind {
	case lexer.REGISTER:
		reg := fs.cur.RegIndex
		fs.next()
		return ast.RegArg(reg), true
	case lexer.MINUS:
		fs.next()
		if fs.cur.Kind != lexer.INT {
			p.sink.Errorf(fs.cur.Loc, diag.Syntactic, "expected integer after '-'")
			return ast.Arg{}, false
		}
		v := -fs.cur.IntValue
		fs.next()
		p.checkIntRange(loc, v)
		return ast.IntArg(v), true
	case lexer.INT:
		v := fs.cur.IntValue
		fs.next()
		p.checkIntRange(loc, v)
		return ast.IntArg(v), true
	case lexer.STRING:
		s := fs.cur.Text
		fs.next()
		return ast.StrArg(s), true
	case lexer.SYMBOL:
		name := fs.cur.Text
		fs.next()
		return ast.SymArg(name), true
	default:
		p.sink.Errorf(loc, diag.Syntactic, "unexpected token %s in argument list", fs.cur.Kind)
		fs.next()
		return ast.Arg{}, false
	}
}

func (p *parser) checkIntRange(loc diag.Location, v int) {
	if v < -32768 || v >= 65536 {
		p.sink.Errorf(loc, diag.Syntactic, "integer literal %d is out of range", v)
	}
}

// resync skips tokens up to the next ')' or ';' (or EOF) so one malformed
// op doesn't cascade errors into the rest of the file.
func (p *parser) resync(fs *fileState) {
	for fs.cur.Kind != lexer.RPAREN && fs.cur.Kind != lexer.SEMICOLON && fs.cur.Kind != lexer.EOF {
		fs.next()
	}
	if fs.cur.Kind != lexer.EOF {
		fs.next()
	}
}
