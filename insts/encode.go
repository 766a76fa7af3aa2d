// Package insts provides RV32I instruction definitions and decoding.
package insts

import "encoding/binary"

// Instruction encoding helpers, used to build programs in tests and tools.
// Immediates are truncated to their field width.

// EncodeR encodes an R-type instruction.
func EncodeR(opcode Opcode, rd, funct3, rs1, rs2, funct7 uint8) uint32 {
	return uint32(funct7&0x7F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode)
}

// EncodeI encodes an I-type instruction with a 12-bit immediate.
func EncodeI(opcode Opcode, rd, funct3, rs1 uint8, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode)
}

// EncodeS encodes an S-type instruction with a 12-bit immediate.
func EncodeS(opcode Opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return (u>>5)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		(u&0x1F)<<7 |
		uint32(opcode)
}

// EncodeB encodes a B-type instruction with a 13-bit byte offset.
func EncodeB(opcode Opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm) & 0x1FFE
	return ((u>>12)&0x1)<<31 |
		((u>>5)&0x3F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		((u>>1)&0xF)<<8 |
		((u>>11)&0x1)<<7 |
		uint32(opcode)
}

// EncodeU encodes a U-type instruction from the raw 20-bit immediate.
func EncodeU(opcode Opcode, rd uint8, imm20 uint32) uint32 {
	return (imm20&0xFFFFF)<<12 | uint32(rd&0x1F)<<7 | uint32(opcode)
}

// EncodeJ encodes a J-type instruction with a 21-bit byte offset.
func EncodeJ(opcode Opcode, rd uint8, imm int32) uint32 {
	u := uint32(imm) & 0x1FFFFE
	return ((u>>20)&0x1)<<31 |
		((u>>1)&0x3FF)<<21 |
		((u>>11)&0x1)<<20 |
		((u>>12)&0xFF)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(opcode)
}

// ADDI encodes ADDI rd, rs1, imm.
func ADDI(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeOpImm, rd, 0b000, rs1, imm)
}

// ADD encodes ADD rd, rs1, rs2.
func ADD(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, rd, 0b000, rs1, rs2, funct7Base)
}

// SUB encodes SUB rd, rs1, rs2.
func SUB(rd, rs1, rs2 uint8) uint32 {
	return EncodeR(OpcodeOp, rd, 0b000, rs1, rs2, funct7Alt)
}

// LW encodes a word load: rd = mem[rs1+imm].
func LW(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeLoad, rd, 0b010, rs1, imm)
}

// SW encodes a word store: mem[rs1+imm] = rs2.
func SW(rs2, rs1 uint8, imm int32) uint32 {
	return EncodeS(OpcodeStore, 0b010, rs1, rs2, imm)
}

// BEQ encodes BEQ rs1, rs2, offset.
func BEQ(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(OpcodeBranch, 0b000, rs1, rs2, offset)
}

// JAL encodes JAL rd, offset.
func JAL(rd uint8, offset int32) uint32 {
	return EncodeJ(OpcodeJAL, rd, offset)
}

// JALR encodes JALR rd, imm(rs1).
func JALR(rd, rs1 uint8, imm int32) uint32 {
	return EncodeI(OpcodeJALR, rd, 0b000, rs1, imm)
}

// LUI encodes LUI rd, imm20.
func LUI(rd uint8, imm20 uint32) uint32 {
	return EncodeU(OpcodeLUI, rd, imm20)
}

// AUIPC encodes AUIPC rd, imm20.
func AUIPC(rd uint8, imm20 uint32) uint32 {
	return EncodeU(OpcodeAUIPC, rd, imm20)
}

// Assemble lays out words as a little-endian program image.
func Assemble(words ...uint32) []byte {
	image := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(image[4*i:], w)
	}
	return image
}
