// Package debugger implements the interactive debugger's state: breakpoints,
// watchpoints, an undo stack, call-depth-aware stepping, and the expression
// mini-language used by `print`. Breakpoint and expression
// handling key off HERA's real-vs-original op model (ast.Op.Original) and
// its '@'-prefixed dereference syntax.
package debugger

import (
	"fmt"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/vm"
	"github.com/haverford/hera/xref"
)

// snapshot is a full copy of the VM's state, pushed onto the undo stack
// before every mutating command. HERA programs write their stack and data
// segment constantly, so a full copy (registers, flags, pc, and the whole
// memory array) is simpler than a copy-on-write diff and still correct, at
// the cost of one 128KB copy per undoable command.
type snapshot struct {
	vm vm.VM
}

// Debugger wraps a running VM with the interactive debugger's state model.
type Debugger struct {
	VM       *vm.VM
	Program  *ast.Program
	Ops      []*ast.Op // the flat real-op list the VM executes (preprocess.Run's output)
	Xref     *xref.Table
	Eval     *Evaluator
	Breaks   *BreakpointSet
	Watches  *WatchSet
	undo     []snapshot
	maxUndo  int
	lastStop string
}

func New(v *vm.VM, prog *ast.Program, ops []*ast.Op, historySize int) *Debugger {
	x := xref.Build(prog.Symbols)
	return &Debugger{
		VM:      v,
		Program: prog,
		Ops:     ops,
		Xref:    x,
		Eval:    &Evaluator{VM: v, Symbols: prog.Symbols},
		Breaks:  NewBreakpointSet(),
		Watches: NewWatchSet(),
		maxUndo: historySize,
	}
}

// pushUndo snapshots the VM before a mutating command. When the history
// limit is reached the oldest entry is dropped, a bounded ring rather
// than an unbounded undo log.
func (d *Debugger) pushUndo() {
	if d.maxUndo <= 0 {
		return
	}
	d.undo = append(d.undo, snapshot{vm: *d.VM})
	if len(d.undo) > d.maxUndo {
		d.undo = d.undo[1:]
	}
}

// Undo restores the most recent snapshot, or reports that there is nothing
// to undo.
func (d *Debugger) Undo() error {
	if len(d.undo) == 0 {
		return fmt.Errorf("nothing to undo")
	}
	last := d.undo[len(d.undo)-1]
	d.undo = d.undo[:len(d.undo)-1]
	*d.VM = last.vm
	return nil
}

// SetBreakpoint adds a breakpoint at addr, labeling it from the reverse
// symbol map when a label is known there.
func (d *Debugger) SetBreakpoint(addr int) *Breakpoint {
	label, _ := d.Xref.ReverseLookup(addr)
	return d.Breaks.Add(addr, label)
}

// runOne executes exactly one real op.
func (d *Debugger) runOne() {
	d.VM.Step(d.Ops)
}

// Next advances through every real op that shares the current op's
// Original pointer (i.e. one full pseudo-op expansion, or one ordinary op
// when it has no Original), then stops -- a single "next" steps over an
// entire original instruction, however many real ops it expanded to.
func (d *Debugger) Next() error {
	if d.atEnd() {
		return fmt.Errorf("program has finished")
	}
	d.pushUndo()
	original := d.currentOriginal()
	for {
		d.runOne()
		if d.atEnd() || d.VM.Halted {
			return nil
		}
		if d.currentOriginal() != original {
			return nil
		}
	}
}

// Step runs real ops until the call-depth counter returns to its value
// before the first of them ran, so a Step issued at a CALL runs the whole
// called routine and stops back in the caller.
func (d *Debugger) Step() error {
	if d.atEnd() {
		return fmt.Errorf("program has finished")
	}
	d.pushUndo()
	target := d.VM.CallDepth
	d.runOne()
	for !d.atEnd() && !d.VM.Halted && d.VM.CallDepth > target {
		d.runOne()
	}
	return nil
}

// Continue runs until a breakpoint is hit, the program halts, or pc leaves
// the op list. It steps the VM directly, so VM.Throttle does not apply.
func (d *Debugger) Continue() error {
	d.lastStop = ""
	if d.atEnd() {
		return fmt.Errorf("program has finished")
	}
	d.pushUndo()
	d.runOne()
	for !d.atEnd() && !d.VM.Halted {
		if bp, hit := d.Breaks.At(d.VM.PC); hit {
			d.lastStop = fmt.Sprintf("stopped at breakpoint %d (0x%04x)", bp.ID, bp.Address)
			return nil
		}
		d.runOne()
	}
	return nil
}

func (d *Debugger) atEnd() bool {
	return d.VM.PC < 0 || d.VM.PC >= len(d.Ops)
}

func (d *Debugger) currentOriginal() *ast.Op {
	if d.atEnd() {
		return nil
	}
	op := d.Ops[d.VM.PC]
	if op.Original != nil {
		return op.Original
	}
	return op
}

// LastStop is a human-readable description of why Continue returned, or
// empty if it ran off the end / halted normally.
func (d *Debugger) LastStop() string { return d.lastStop }
