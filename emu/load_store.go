// Package emu provides functional RV32I emulation.
package emu

import "github.com/sarchlab/rv32sim/cache"

// LoadStoreUnit implements RV32I word loads and stores. Accesses to the
// console addresses are routed to the peripherals bridge when one is attached.
type LoadStoreUnit struct {
	regFile     *RegFile
	memory      *Memory
	peripherals *Peripherals
	dcache      *cache.Cache
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory. peripherals may be nil.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory, peripherals *Peripherals) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile:     regFile,
		memory:      memory,
		peripherals: peripherals,
	}
}

// SetDataCache attaches a cache model that records every memory access.
func (lsu *LoadStoreUnit) SetDataCache(c *cache.Cache) {
	lsu.dcache = c
}

// EffectiveAddress returns rs1 + offset with 32-bit wraparound.
func (lsu *LoadStoreUnit) EffectiveAddress(rs1 uint8, offset int32) uint32 {
	return lsu.regFile.ReadReg(rs1) + uint32(offset)
}

// LW performs a 32-bit load: rd = mem[rs1 + offset].
// rd is left untouched when the access faults.
func (lsu *LoadStoreUnit) LW(rd, rs1 uint8, offset int32) (uint32, error) {
	addr := lsu.EffectiveAddress(rs1, offset)

	if lsu.peripherals != nil {
		if b, ok := lsu.peripherals.HandleMemoryAccess(addr, 0, false); ok {
			lsu.regFile.WriteReg(rd, uint32(b))
			return uint32(b), nil
		}
	}

	value, err := lsu.memory.Read32(addr)
	if err != nil {
		return 0, err
	}
	if lsu.dcache != nil {
		lsu.dcache.Access(addr, false)
	}

	lsu.regFile.WriteReg(rd, value)
	return value, nil
}

// SW performs a 32-bit store: mem[rs1 + offset] = rs2.
func (lsu *LoadStoreUnit) SW(rs2, rs1 uint8, offset int32) error {
	addr := lsu.EffectiveAddress(rs1, offset)
	value := lsu.regFile.ReadReg(rs2)

	if lsu.peripherals != nil {
		if _, ok := lsu.peripherals.HandleMemoryAccess(addr, value, true); ok {
			return nil
		}
	}

	if err := lsu.memory.Write32(addr, value); err != nil {
		return err
	}
	if lsu.dcache != nil {
		lsu.dcache.Access(addr, true)
	}
	return nil
}
