// Package vm is the virtual machine: 16 registers, a program counter, the
// five status flags, and a 2^16-word memory, executing the flat real-op
// list produced by package preprocess. It uses a register-file-plus-flags
// shape, with the same plain-struct Flags rather than a packed status
// register.
package vm

import "fmt"

const (
	NumRegisters = 16
	MemorySize   = 1 << 16
)

// Flags holds the five status bits -- one bool field per named flag
// rather than a packed integer, so ordinary Go code reads naturally;
// SAVEF/RSTRF pack and unpack them through isa.Flag* (see flagMask and
// setFlagsFromMask in step.go).
type Flags struct {
	Sign       bool
	Zero       bool
	Overflow   bool
	Carry      bool
	CarryBlock bool
}

// VM is the machine state plus the bookkeeping needed for termination
// and diagnostics (throttle, one-shot SWI/RTI and stack warnings).
type VM struct {
	Registers [NumRegisters]uint16
	PC        int
	Flags     Flags
	Memory    [MemorySize]uint16

	Halted bool

	DataStart int // first address the code may not safely grow a stack into

	// Throttle bounds total executed real ops; 0 means unlimited.
	Throttle int
	steps    int

	// CallDepth tracks CALL/RETURN balance, incremented by CALL and
	// decremented by RETURN; the debugger uses it for step-over semantics
	// and the --no-ret-warn diagnostic watches for it going negative.
	CallDepth int

	warnedSWIRTI bool
	warnedStack  bool
	warnedRet    bool
	ThrottleHit  bool
	Warnings     []string
}

// New creates a VM with memory and registers zeroed, dataStart set for
// the stack-overflow warning, and SP initialized to dataStart (an empty
// stack grows down from the bottom of the data segment, as in hera-py).
func New(dataStart int) *VM {
	v := &VM{DataStart: dataStart}
	v.Registers[spIndex] = uint16(dataStart)
	return v
}

const (
	rtIndex = 11
	fpAlt   = 12
	pcRet   = 13
	fpIndex = 14
	spIndex = 15
)

// SetRegister writes v to register r, except that R0 is hardwired to
// zero: any write to it is silently discarded.
func (v *VM) SetRegister(r int, val uint16) {
	if r == 0 {
		return
	}
	v.Registers[r] = val
	if r == spIndex {
		v.checkStackOverflow()
	}
}

func (v *VM) checkStackOverflow() {
	if !v.warnedStack && int(v.Registers[spIndex]) >= v.DataStart {
		v.warnedStack = true
		v.Warnings = append(v.Warnings, fmt.Sprintf("stack pointer 0x%04x has overflowed into the data segment", v.Registers[spIndex]))
	}
}

// updateArithFlags sets zero/sign from a 16-bit result.
func (v *VM) updateArithFlags(result uint16) {
	v.Flags.Zero = result == 0
	v.Flags.Sign = result&0x8000 != 0
}
