// Package emu provides functional RV32I emulation.
package emu

// NumRegisters is the number of general-purpose registers.
const NumRegisters = 32

// ABI register indices used by the semihosting convention.
const (
	RegA0 uint8 = 10
	RegA1 uint8 = 11
)

// RegFile represents the RV32I register file.
// It contains 32 general-purpose registers (x0-x31) and the program
// counter (PC).
type RegFile struct {
	// X holds general-purpose registers x0-x31.
	// X[0] is hard-wired to zero: WriteReg discards writes to it and
	// ReadReg always returns 0 for it.
	X [NumRegisters]uint32

	// PC is the program counter, a byte address into memory.
	PC uint32
}

// ReadReg reads a register value. Register 0 returns 0.
// Registers >= 32 also return 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= NumRegisters {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a value to a register. Writes to register 0 (and to
// out-of-range indices) are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 || reg >= NumRegisters {
		return
	}
	r.X[reg] = value
}

// Snapshot returns a copy of the registers with x0 forced to zero.
func (r *RegFile) Snapshot() [NumRegisters]uint32 {
	regs := r.X
	regs[0] = 0
	return regs
}
