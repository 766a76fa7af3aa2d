// Package emu provides functional RV32I emulation.
package emu

// BranchUnit implements RV32I control transfers. Each operation updates PC
// and returns the value it records in the result trace.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// BEQ branches to PC + offset when rs1 == rs2, otherwise falls through to
// PC + 4. Returns the new PC.
func (b *BranchUnit) BEQ(rs1, rs2 uint8, offset int32) uint32 {
	if b.regFile.ReadReg(rs1) == b.regFile.ReadReg(rs2) {
		b.regFile.PC += uint32(offset)
	} else {
		b.regFile.PC += 4
	}
	return b.regFile.PC
}

// JAL saves PC + 4 to rd and jumps to PC + offset with bit 0 cleared.
// Returns the link address.
func (b *BranchUnit) JAL(rd uint8, offset int32) uint32 {
	link := b.regFile.PC + 4
	target := (b.regFile.PC + uint32(offset)) &^ 1

	b.regFile.WriteReg(rd, link)
	b.regFile.PC = target
	return link
}

// JALR saves PC + 4 to rd and jumps to rs1 + offset with bit 0 cleared.
// Returns the link address.
func (b *BranchUnit) JALR(rd, rs1 uint8, offset int32) uint32 {
	// Read the base first in case rd == rs1
	target := (b.regFile.ReadReg(rs1) + uint32(offset)) &^ 1
	link := b.regFile.PC + 4

	b.regFile.WriteReg(rd, link)
	b.regFile.PC = target
	return link
}
