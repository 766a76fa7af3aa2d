// Package insts provides RV32I instruction definitions and decoding.
package insts

// OpcodeOf extracts bits [6:0].
func OpcodeOf(word uint32) Opcode {
	return Opcode(word & 0x7F)
}

// Rd extracts the destination register index, bits [11:7].
func Rd(word uint32) uint8 {
	return uint8((word >> 7) & 0x1F)
}

// Rs1 extracts the first source register index, bits [19:15].
func Rs1(word uint32) uint8 {
	return uint8((word >> 15) & 0x1F)
}

// Rs2 extracts the second source register index, bits [24:20].
func Rs2(word uint32) uint8 {
	return uint8((word >> 20) & 0x1F)
}

// Funct3 extracts bits [14:12].
func Funct3(word uint32) uint8 {
	return uint8((word >> 12) & 0x7)
}

// Funct7 extracts bits [31:25].
func Funct7(word uint32) uint8 {
	return uint8((word >> 25) & 0x7F)
}

// ImmI returns the raw 12-bit I-type immediate, bits [31:20].
func ImmI(word uint32) uint32 {
	return (word >> 20) & 0xFFF
}

// ImmS returns the raw 12-bit S-type immediate assembled from
// bits [31:25] and [11:7].
func ImmS(word uint32) uint32 {
	hi := (word >> 25) & 0x7F
	lo := (word >> 7) & 0x1F
	return hi<<5 | lo
}

// ImmB returns the raw 13-bit B-type immediate. Bit 0 is always zero.
//
//	imm[12]   <- word[31]
//	imm[11]   <- word[7]
//	imm[10:5] <- word[30:25]
//	imm[4:1]  <- word[11:8]
func ImmB(word uint32) uint32 {
	b12 := (word >> 31) & 0x1
	b11 := (word >> 7) & 0x1
	b10to5 := (word >> 25) & 0x3F
	b4to1 := (word >> 8) & 0xF
	return b12<<12 | b11<<11 | b10to5<<5 | b4to1<<1
}

// ImmU returns the raw 20-bit U-type immediate, bits [31:12], unshifted.
func ImmU(word uint32) uint32 {
	return (word >> 12) & 0xFFFFF
}

// ImmJ returns the raw 21-bit J-type immediate. Bit 0 is always zero.
//
//	imm[20]    <- word[31]
//	imm[19:12] <- word[19:12]
//	imm[11]    <- word[20]
//	imm[10:1]  <- word[30:21]
func ImmJ(word uint32) uint32 {
	b20 := (word >> 31) & 0x1
	b19to12 := (word >> 12) & 0xFF
	b11 := (word >> 20) & 0x1
	b10to1 := (word >> 21) & 0x3FF
	return b20<<20 | b19to12<<12 | b11<<11 | b10to1<<1
}

// SignExtend interprets the low bits of value as a two's complement field.
// When bit (bits-1) is set the result is value - 2^bits; otherwise value is
// returned unchanged. Bits above the field must already be clear.
func SignExtend(value uint32, bits uint) int32 {
	if bits == 0 || bits >= 32 {
		return int32(value)
	}
	if value&(1<<(bits-1)) != 0 {
		return int32(int64(value) - int64(1)<<bits)
	}
	return int32(value)
}
