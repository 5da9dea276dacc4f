package debugger

import (
	"fmt"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/vm"
)

// Evaluator resolves an expression tree against a running VM's registers
// and memory plus the program's symbol table. All arithmetic is checked
// against 16-bit overflow and division by zero.
type Evaluator struct {
	VM      *vm.VM
	Symbols *ast.SymbolTable
}

// Eval parses and evaluates one expression string to a 16-bit value.
func (e *Evaluator) Eval(input string) (uint16, error) {
	p, err := newExprParser(input)
	if err != nil {
		return 0, err
	}
	node, err := p.ParseExpression()
	if err != nil {
		return 0, err
	}
	if p.cur.typ != tokEOF {
		return 0, fmt.Errorf("unexpected trailing input near %q", p.cur.lit)
	}
	return e.eval(node)
}

// EvalSequence parses and evaluates a comma-separated list, the form
// `print` accepts.
func (e *Evaluator) EvalSequence(input string) ([]uint16, error) {
	p, err := newExprParser(input)
	if err != nil {
		return nil, err
	}
	nodes, err := p.ParseSequence()
	if err != nil {
		return nil, err
	}
	vals := make([]uint16, len(nodes))
	for i, n := range nodes {
		v, err := e.eval(n)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (e *Evaluator) eval(n *exprNode) (uint16, error) {
	switch n.kind {
	case nodeNumber:
		return uint16(n.num), nil
	case nodeRegister:
		idx, ok := vm.RegisterName(n.reg)
		if !ok {
			return 0, fmt.Errorf("unknown register %q", n.reg)
		}
		return e.VM.Registers[idx], nil
	case nodeSymbol:
		sym, ok := e.Symbols.Lookup(n.sym)
		if !ok {
			return 0, fmt.Errorf("undefined symbol %q", n.sym)
		}
		return uint16(sym.Value), nil
	case nodeDeref:
		addr, err := e.eval(n.right)
		if err != nil {
			return 0, err
		}
		return e.VM.Memory[addr], nil
	case nodeUnaryMinus:
		v, err := e.eval(n.right)
		if err != nil {
			return 0, err
		}
		return negate16(v)
	case nodeBinary:
		left, err := e.eval(n.left)
		if err != nil {
			return 0, err
		}
		right, err := e.eval(n.right)
		if err != nil {
			return 0, err
		}
		return e.applyOp(n.op, left, right)
	default:
		return 0, fmt.Errorf("malformed expression node")
	}
}

func negate16(v uint16) (uint16, error) {
	result := -int32(v)
	if result < -0x8000 || result > 0x7FFF {
		return 0, fmt.Errorf("overflow negating %d", v)
	}
	return uint16(uint32(int32(result))), nil
}

func (e *Evaluator) applyOp(op byte, left, right uint16) (uint16, error) {
	a, b := int32(int16(left)), int32(int16(right))
	var result int32
	switch op {
	case '+':
		result = a + b
	case '-':
		result = a - b
	case '*':
		result = a * b
	case '/':
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		result = a / b
	default:
		return 0, fmt.Errorf("unknown operator %q", string(op))
	}
	if result < -0x8000 || result > 0xFFFF {
		return 0, fmt.Errorf("overflow in expression (%d %s %d)", a, string(op), b)
	}
	return uint16(uint32(result) & 0xFFFF), nil
}
