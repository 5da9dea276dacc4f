package vm

import (
	"fmt"

	"github.com/haverford/hera/ast"
	"github.com/haverford/hera/isa"
)

// Run executes ops (the flat real-op list produced by preprocess.Run)
// starting at pc 0 until the VM halts, the throttle limit is hit, or pc
// runs off the end of ops.
func (v *VM) Run(ops []*ast.Op) {
	for !v.Halted {
		if v.PC < 0 || v.PC >= len(ops) {
			break
		}
		if v.Throttle > 0 && v.steps >= v.Throttle {
			v.ThrottleHit = true
			v.Warnings = append(v.Warnings, fmt.Sprintf("throttle of %d instructions exceeded", v.Throttle))
			v.Halted = true
			break
		}
		v.steps++
		v.Step(ops)
	}
}

// Step executes the single real op at ops[v.PC]. It assumes v.PC is in
// range; callers loop via Run rather than calling Step directly once past
// the end of ops.
func (v *VM) Step(ops []*ast.Op) {
	op := ops[v.PC]

	if cond, ok := isa.ConditionByName(op.Mnemonic); ok {
		if isa.IsRegisterBranch(op.Mnemonic) {
			v.execRegisterBranch(cond, op)
		} else {
			v.execRelativeBranch(cond, op)
		}
		return
	}

	switch op.Mnemonic {
	case "SETLO":
		v.execSetlo(op)
	case "SETHI":
		v.execSethi(op)
	case "AND":
		v.execLogic(op, func(a, b uint16) uint16 { return a & b })
	case "OR":
		v.execLogic(op, func(a, b uint16) uint16 { return a | b })
	case "XOR":
		v.execLogic(op, func(a, b uint16) uint16 { return a ^ b })
	case "ADD":
		v.execAdd(op)
	case "SUB":
		v.execSub(op)
	case "MUL":
		v.execMul(op)
	case "INC":
		v.execInc(op)
	case "DEC":
		v.execDec(op)
	case "LOAD":
		v.execLoad(op)
	case "STORE":
		v.execStore(op)
	case "LSL":
		v.execShiftLeft(op, false)
	case "ASL":
		v.execShiftLeft(op, true)
	case "LSR":
		v.execShiftRight(op, false)
	case "ASR":
		v.execShiftRight(op, true)
	case "LSL8":
		v.execShift8(op, true)
	case "LSR8":
		v.execShift8(op, false)
	case "FON":
		v.execFlagMask(op, true)
	case "FOFF":
		v.execFlagMask(op, false)
	case "FSET5":
		v.execFset(op, true)
	case "FSET4":
		v.execFset(op, false)
	case "SAVEF":
		v.execSavef(op)
	case "RSTRF":
		v.execRstrf(op)
	case "CALL":
		v.execCallReturn(op)
	case "RETURN":
		v.execCallReturn(op)
	case "SWI":
		v.execSWI(op)
	case "RTI":
		v.execRTI(op)
	default:
		panic(fmt.Sprintf("vm: %s has no executor (preprocess should have rejected it)", op.Mnemonic))
	}
}

func (v *VM) execSetlo(op *ast.Op) {
	rd := op.Args[0].Reg
	imm := uint16(op.Args[1].Int & 0xFF)
	// SETLO sign-extends its byte across the whole register, clobbering
	// any previous high byte (e.g. SETLO(R2,255) -> R2=0xFFFF).
	var extended uint16
	if imm&0x80 != 0 {
		extended = imm | 0xFF00
	} else {
		extended = imm
	}
	v.SetRegister(rd, extended)
	v.PC++
}

func (v *VM) execSethi(op *ast.Op) {
	rd := op.Args[0].Reg
	imm := uint16(op.Args[1].Int & 0xFF)
	v.SetRegister(rd, (v.Registers[rd]&0x00FF)|(imm<<8))
	v.PC++
}

func (v *VM) execLogic(op *ast.Op, f func(a, b uint16) uint16) {
	rd, ra, rb := op.Args[0].Reg, op.Args[1].Reg, op.Args[2].Reg
	result := f(v.Registers[ra], v.Registers[rb])
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.PC++
}

// cin is the incoming carry used by ADD/SUB, suppressed (read as 0)
// whenever carry-block is set; it is always consumed (cleared) after use.
func (v *VM) consumeCarryIn() uint32 {
	cin := uint32(0)
	if v.Flags.Carry && !v.Flags.CarryBlock {
		cin = 1
	}
	v.Flags.Carry = false
	return cin
}

func (v *VM) execAdd(op *ast.Op) {
	rd, ra, rb := op.Args[0].Reg, op.Args[1].Reg, op.Args[2].Reg
	a, b := uint32(v.Registers[ra]), uint32(v.Registers[rb])
	cin := v.consumeCarryIn()
	sum := a + b + cin
	result := uint16(sum & 0xFFFF)
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.Flags.Carry = addCarry(a, b, cin)
	v.Flags.Overflow = addOverflow(a, b, sum)
	v.PC++
}

func (v *VM) execSub(op *ast.Op) {
	rd, ra, rb := op.Args[0].Reg, op.Args[1].Reg, op.Args[2].Reg
	a, b := uint32(v.Registers[ra]), uint32(v.Registers[rb])
	bin := v.consumeCarryIn()
	diff := (a + 0x10000 - b - bin) & 0xFFFF
	result := uint16(diff)
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.Flags.Carry = subCarry(a, b, bin)
	v.Flags.Overflow = subOverflow(a, b, uint32(result))
	v.PC++
}

func (v *VM) execMul(op *ast.Op) {
	rd, ra, rb := op.Args[0].Reg, op.Args[1].Reg, op.Args[2].Reg
	a, b := v.Registers[ra], v.Registers[rb]

	highMode := v.Flags.Sign && !v.Flags.CarryBlock
	v.Flags.Sign = false

	var result uint16
	if highMode {
		sa, sb := int32(int16(a)), int32(int16(b))
		full := sa * sb
		result = uint16(uint32(full) >> 16)
		v.Flags.Overflow = full > 0x7FFF || full < -0x8000
		v.Flags.Carry = v.Flags.Overflow
	} else {
		full := uint32(a) * uint32(b)
		result = uint16(full & 0xFFFF)
		v.Flags.Carry = full > 0xFFFF
		sa, sb := int32(int16(a)), int32(int16(b))
		signedFull := sa * sb
		v.Flags.Overflow = signedFull > 0x7FFF || signedFull < -0x8000
	}
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.PC++
}

func (v *VM) execInc(op *ast.Op) {
	rd := op.Args[0].Reg
	amount := uint32(op.Args[1].Int)
	a := uint32(v.Registers[rd])
	sum := a + amount
	result := uint16(sum & 0xFFFF)
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.Flags.Carry = sum > 0xFFFF
	v.Flags.Overflow = addOverflow(a, amount, sum)
	v.PC++
}

func (v *VM) execDec(op *ast.Op) {
	rd := op.Args[0].Reg
	amount := uint32(op.Args[1].Int)
	a := uint32(v.Registers[rd])
	diff := (a - amount) & 0xFFFF
	result := uint16(diff)
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.Flags.Carry = a >= amount
	v.Flags.Overflow = subOverflow(a, amount, uint32(result))
	v.PC++
}

func (v *VM) execLoad(op *ast.Op) {
	rd, offset, ra := op.Args[0].Reg, op.Args[1].Int, op.Args[2].Reg
	addr := uint16(int(v.Registers[ra]) + offset)
	loaded := v.Memory[addr]
	v.SetRegister(rd, loaded)
	v.updateArithFlags(loaded)
	v.PC++
}

func (v *VM) execStore(op *ast.Op) {
	rd, offset, ra := op.Args[0].Reg, op.Args[1].Int, op.Args[2].Reg
	addr := uint16(int(v.Registers[ra]) + offset)
	v.Memory[addr] = v.Registers[rd]
	v.PC++
}

func (v *VM) shiftCarryIn() uint16 {
	if v.Flags.Carry && !v.Flags.CarryBlock {
		return 1
	}
	return 0
}

func (v *VM) execShiftLeft(op *ast.Op, arithmetic bool) {
	rd, rs := op.Args[0].Reg, op.Args[1].Reg
	val := v.Registers[rs]
	signBefore := val&0x8000 != 0
	carryOut := shiftCarryOutLeft(val)
	result := (val << 1) | v.shiftCarryIn()
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.Flags.Carry = carryOut
	if arithmetic {
		v.Flags.Overflow = signBefore != (result&0x8000 != 0)
	}
	v.PC++
}

// execShiftRight implements LSR (logical, carry injected into bit 15
// unless carry-block is set) and ASR (arithmetic: bit 15 always
// sign-extends from the value's own sign bit, which takes priority over
// carry-injection for bit 15's value; see DESIGN.md). Both set the new
// carry from the bit shifted out at position 0.
func (v *VM) execShiftRight(op *ast.Op, arithmetic bool) {
	rd, rs := op.Args[0].Reg, op.Args[1].Reg
	val := v.Registers[rs]
	carryOut := shiftCarryOutRight(val)
	var result uint16
	if arithmetic {
		result = val >> 1
		if val&0x8000 != 0 {
			result |= 0x8000
		}
	} else {
		result = (val >> 1) | (v.shiftCarryIn() << 15)
	}
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.Flags.Carry = carryOut
	v.PC++
}

func (v *VM) execShift8(op *ast.Op, left bool) {
	rd, rs := op.Args[0].Reg, op.Args[1].Reg
	val := v.Registers[rs]
	var result uint16
	if left {
		result = val << 8
	} else {
		result = val >> 8
	}
	v.SetRegister(rd, result)
	v.updateArithFlags(result)
	v.PC++
}

func (v *VM) flagMask() uint16 {
	var m uint16
	if v.Flags.Sign {
		m |= isa.FlagSign
	}
	if v.Flags.Zero {
		m |= isa.FlagZero
	}
	if v.Flags.Overflow {
		m |= isa.FlagOverflow
	}
	if v.Flags.Carry {
		m |= isa.FlagCarry
	}
	if v.Flags.CarryBlock {
		m |= isa.FlagCarryBlock
	}
	return m
}

func (v *VM) setFlagsFromMask(m uint16, includeCarryBlock bool) {
	v.Flags.Sign = m&isa.FlagSign != 0
	v.Flags.Zero = m&isa.FlagZero != 0
	v.Flags.Overflow = m&isa.FlagOverflow != 0
	v.Flags.Carry = m&isa.FlagCarry != 0
	if includeCarryBlock {
		v.Flags.CarryBlock = m&isa.FlagCarryBlock != 0
	}
}

func (v *VM) execFlagMask(op *ast.Op, on bool) {
	mask := uint16(op.Args[0].Int)
	cur := v.flagMask()
	var next uint16
	if on {
		next = cur | mask
	} else {
		next = cur &^ mask
	}
	v.setFlagsFromMask(next, true)
	v.PC++
}

func (v *VM) execFset(op *ast.Op, includeCarryBlock bool) {
	v.setFlagsFromMask(uint16(op.Args[0].Int), includeCarryBlock)
	v.PC++
}

func (v *VM) execSavef(op *ast.Op) {
	rd := op.Args[0].Reg
	v.SetRegister(rd, v.flagMask())
	v.PC++
}

func (v *VM) execRstrf(op *ast.Op) {
	rd := op.Args[0].Reg
	v.setFlagsFromMask(v.Registers[rd], true)
	v.PC++
}

// execCallReturn implements the CALL/RETURN swap: the two mnemonics
// execute identically (RETURN exists only so the checker and debugger
// can distinguish calls from returns for call-depth bookkeeping and the
// --no-ret-warn diagnostic); grounded on the stdlib.py calling convention
// of swapping a frame-pointer register with FP and a return-address
// register with PC.
func (v *VM) execCallReturn(op *ast.Op) {
	rb, ra := op.Args[0].Reg, op.Args[1].Reg

	oldFP := v.Registers[fpIndex]
	oldRb := v.Registers[rb]
	v.SetRegister(fpIndex, oldRb)
	v.SetRegister(rb, oldFP)

	target := v.Registers[ra]
	retAddr := uint16(v.PC + 1)
	v.SetRegister(ra, retAddr)

	if op.Mnemonic == "CALL" {
		v.CallDepth++
	} else {
		v.CallDepth--
		if v.CallDepth < 0 && !v.warnedRet {
			v.warnedRet = true
			v.Warnings = append(v.Warnings, "RETURN executed with no matching CALL")
		}
	}
	v.PC = int(target)
}

func (v *VM) execSWI(op *ast.Op) {
	v.warnOnce()
	v.PC++
}

func (v *VM) execRTI(op *ast.Op) {
	v.warnOnce()
	v.PC++
}

func (v *VM) warnOnce() {
	if v.warnedSWIRTI {
		return
	}
	v.warnedSWIRTI = true
	v.Warnings = append(v.Warnings, "SWI/RTI are not implemented; treating as a no-op")
}

// execRegisterBranch jumps to its register operand's value when cond
// holds.
func (v *VM) execRegisterBranch(cond isa.Condition, op *ast.Op) {
	rs := op.Args[0].Reg
	if cond.Holds(v.Flags.Sign, v.Flags.Zero, v.Flags.Overflow, v.Flags.Carry) {
		v.PC = int(v.Registers[rs])
		return
	}
	v.PC++
}

// execRelativeBranch adds its offset to pc when cond holds. HALT's
// expansion to BRR(0) (an unconditional relative branch to itself,
// offset 0) is how the preprocessor encodes "stop": a taken branch whose
// target is the current pc sets Halted rather than looping forever.
func (v *VM) execRelativeBranch(cond isa.Condition, op *ast.Op) {
	offset := op.Args[0].Int
	target := v.PC + offset
	if cond.Holds(v.Flags.Sign, v.Flags.Zero, v.Flags.Overflow, v.Flags.Carry) {
		if target == v.PC {
			v.Halted = true
			return
		}
		v.PC = target
		return
	}
	v.PC++
}
