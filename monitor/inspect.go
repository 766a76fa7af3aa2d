package monitor

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/rv32sim/emu"
)

const bytesPerLine = 16

// DumpMemory writes count bytes starting at addr as hex, 16 per line, each
// line prefixed by its address. Lines that fit in memory are written before
// an out-of-range line reports its fault.
func DumpMemory(w io.Writer, memory *emu.Memory, addr, count uint32) error {
	for offset := uint32(0); offset < count; offset += bytesPerLine {
		n := count - offset
		if n > bytesPerLine {
			n = bytesPerLine
		}

		data, err := memory.ReadBytes(addr+offset, int(n))
		if err != nil {
			return err
		}

		hex := make([]string, len(data))
		for i, b := range data {
			hex[i] = fmt.Sprintf("%02x", b)
		}
		fmt.Fprintf(w, "0x%08x: %s\n", addr+offset, strings.Join(hex, " "))
	}
	return nil
}

// DumpRegisters writes the register file four registers per line, then PC.
func DumpRegisters(w io.Writer, regFile *emu.RegFile) {
	for i := 0; i < emu.NumRegisters; i++ {
		sep := " "
		if i%4 == 3 {
			sep = "\n"
		}
		fmt.Fprintf(w, "x%-2d = 0x%08x%s", i, regFile.ReadReg(uint8(i)), sep)
	}
	fmt.Fprintf(w, "pc  = 0x%08x\n", regFile.PC)
}
