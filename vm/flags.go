package vm

// Flag-calculation helpers for HERA's 16-bit ALU. ADD/SUB read the
// incoming carry only when carry-block is clear (INC/DEC never read it),
// but all four always write the outgoing carry regardless of carry-block
// -- carry-block suppresses *reading*, never *writing*.

const signBit16 = uint32(1) << 15

// addCarry reports whether a (unsigned) 17-bit add overflowed 16 bits.
func addCarry(a, b, cin uint32) bool {
	return a+b+cin > 0xFFFF
}

// addOverflow reports whether a signed 16-bit add overflowed, given the
// 17-bit unsigned sum.
func addOverflow(a, b, sum32 uint32) bool {
	aSign := a&signBit16 != 0
	bSign := b&signBit16 != 0
	rSign := sum32&signBit16 != 0
	return aSign == bSign && aSign != rSign
}

// subCarry reports whether a-b-bin (as unsigned 16-bit values with
// borrow-in bin) did NOT need to borrow, i.e. the HERA/ARM convention of
// carry meaning "no borrow occurred".
func subCarry(a, b, bin uint32) bool {
	return a >= b+bin
}

func subOverflow(a, b, diff32 uint32) bool {
	aSign := a&signBit16 != 0
	bSign := b&signBit16 != 0
	rSign := diff32&signBit16 != 0
	return aSign != bSign && aSign != rSign
}

// shiftCarryOut returns the bit shifted out by a single-bit shift, which
// for HERA's LSL/LSR/ASL/ASR (each shifting by exactly one place, with the
// incoming carry optionally fed into the vacated bit) is always the bit
// pushed off the far end.
func shiftCarryOutLeft(value uint16) bool  { return value&0x8000 != 0 }
func shiftCarryOutRight(value uint16) bool { return value&0x0001 != 0 }
