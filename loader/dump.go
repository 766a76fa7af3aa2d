package loader

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
)

// DumpRow is one aligned word of the inspection table.
type DumpRow struct {
	Offset uint32
	Value  uint32
	Opcode insts.Opcode
	Format insts.Format
}

// DumpRows classifies every word from start while a full word fits in
// memory.
func DumpRows(memory *emu.Memory, start uint32) []DumpRow {
	var rows []DumpRow
	for addr := uint64(start); addr+4 <= uint64(memory.Size()); addr += 4 {
		word, err := memory.Read32(uint32(addr))
		if err != nil {
			break
		}
		rows = append(rows, DumpRow{
			Offset: uint32(addr),
			Value:  word,
			Opcode: insts.OpcodeOf(word),
			Format: insts.ClassifyOpcode(word),
		})
	}
	return rows
}

// WriteCSV writes rows as offset,value,opcode,encoding with 8-digit hex
// numbers.
func WriteCSV(w io.Writer, rows []DumpRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"offset", "value", "opcode", "encoding"}); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			fmt.Sprintf("%08x", r.Offset),
			fmt.Sprintf("%08x", r.Value),
			fmt.Sprintf("%08x", uint32(r.Opcode)),
			r.Format.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
