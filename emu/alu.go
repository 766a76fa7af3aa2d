// Package emu provides functional RV32I emulation.
package emu

// ALU implements RV32I arithmetic and logic operations. Every operation
// writes rd and returns the computed value.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

func (a *ALU) write(rd uint8, value uint32) uint32 {
	a.regFile.WriteReg(rd, value)
	return value
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// ADDI performs rd = rs1 + imm.
func (a *ALU) ADDI(rd, rs1 uint8, imm uint32) uint32 {
	return a.write(rd, a.regFile.ReadReg(rs1)+imm)
}

// SLTI performs rd = (int32(rs1) < int32(imm)) ? 1 : 0.
func (a *ALU) SLTI(rd, rs1 uint8, imm uint32) uint32 {
	return a.write(rd, boolToWord(int32(a.regFile.ReadReg(rs1)) < int32(imm)))
}

// SLTIU performs rd = (rs1 < imm) ? 1 : 0, unsigned.
func (a *ALU) SLTIU(rd, rs1 uint8, imm uint32) uint32 {
	return a.write(rd, boolToWord(a.regFile.ReadReg(rs1) < imm))
}

// XORI performs rd = rs1 ^ imm.
func (a *ALU) XORI(rd, rs1 uint8, imm uint32) uint32 {
	return a.write(rd, a.regFile.ReadReg(rs1)^imm)
}

// ORI performs rd = rs1 | imm.
func (a *ALU) ORI(rd, rs1 uint8, imm uint32) uint32 {
	return a.write(rd, a.regFile.ReadReg(rs1)|imm)
}

// ANDI performs rd = rs1 & imm.
func (a *ALU) ANDI(rd, rs1 uint8, imm uint32) uint32 {
	return a.write(rd, a.regFile.ReadReg(rs1)&imm)
}

// SLLI performs rd = rs1 << shamt.
func (a *ALU) SLLI(rd, rs1 uint8, shamt uint32) uint32 {
	return a.write(rd, a.regFile.ReadReg(rs1)<<(shamt&0x1F))
}

// SRLI performs a logical right shift: rd = rs1 >> shamt.
func (a *ALU) SRLI(rd, rs1 uint8, shamt uint32) uint32 {
	return a.write(rd, a.regFile.ReadReg(rs1)>>(shamt&0x1F))
}

// SRAI performs an arithmetic right shift: rd = int32(rs1) >> shamt.
func (a *ALU) SRAI(rd, rs1 uint8, shamt uint32) uint32 {
	return a.write(rd, uint32(int32(a.regFile.ReadReg(rs1))>>(shamt&0x1F)))
}

// ADD performs rd = rs1 + rs2.
func (a *ALU) ADD(rd, rs1, rs2 uint8) uint32 {
	return a.ADDI(rd, rs1, a.regFile.ReadReg(rs2))
}

// SUB performs rd = rs1 - rs2.
func (a *ALU) SUB(rd, rs1, rs2 uint8) uint32 {
	return a.write(rd, a.regFile.ReadReg(rs1)-a.regFile.ReadReg(rs2))
}

// SLL performs rd = rs1 << (rs2 & 31).
func (a *ALU) SLL(rd, rs1, rs2 uint8) uint32 {
	return a.SLLI(rd, rs1, a.regFile.ReadReg(rs2))
}

// SLT performs a signed set-less-than.
func (a *ALU) SLT(rd, rs1, rs2 uint8) uint32 {
	return a.SLTI(rd, rs1, a.regFile.ReadReg(rs2))
}

// SLTU performs an unsigned set-less-than.
func (a *ALU) SLTU(rd, rs1, rs2 uint8) uint32 {
	return a.SLTIU(rd, rs1, a.regFile.ReadReg(rs2))
}

// XOR performs rd = rs1 ^ rs2.
func (a *ALU) XOR(rd, rs1, rs2 uint8) uint32 {
	return a.XORI(rd, rs1, a.regFile.ReadReg(rs2))
}

// SRL performs rd = rs1 >> (rs2 & 31), logical.
func (a *ALU) SRL(rd, rs1, rs2 uint8) uint32 {
	return a.SRLI(rd, rs1, a.regFile.ReadReg(rs2))
}

// SRA performs rd = int32(rs1) >> (rs2 & 31).
func (a *ALU) SRA(rd, rs1, rs2 uint8) uint32 {
	return a.SRAI(rd, rs1, a.regFile.ReadReg(rs2))
}

// OR performs rd = rs1 | rs2.
func (a *ALU) OR(rd, rs1, rs2 uint8) uint32 {
	return a.ORI(rd, rs1, a.regFile.ReadReg(rs2))
}

// AND performs rd = rs1 & rs2.
func (a *ALU) AND(rd, rs1, rs2 uint8) uint32 {
	return a.ANDI(rd, rs1, a.regFile.ReadReg(rs2))
}

// LUI performs rd = imm20 << 12.
func (a *ALU) LUI(rd uint8, imm20 uint32) uint32 {
	return a.write(rd, imm20<<12)
}

// AUIPC performs rd = pc + (imm20 << 12), where pc is the address of the
// AUIPC instruction.
func (a *ALU) AUIPC(rd uint8, imm20 uint32) uint32 {
	return a.write(rd, a.regFile.PC+imm20<<12)
}
