package session

import (
	"fmt"
	"io"

	"github.com/sarchlab/rv32sim/cache"
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/monitor"
)

// Report is the outcome of one run.
type Report struct {
	RunID        string
	Trace        []emu.Result
	Registers    [emu.NumRegisters]uint32
	PC           uint32
	Instructions uint64

	// Mode is the controller state when the run ended.
	Mode monitor.Mode

	// Reordered is set when the reorder pass ran; Committed is the number
	// of reorder buffer entries drained afterwards.
	Reordered bool
	Committed int

	// Cache statistics, nil when the cache model was disabled.
	ICache *cache.Statistics
	DCache *cache.Statistics
}

// EndedOnBreakpoint reports whether the trace ends with the EBREAK marker.
func (r *Report) EndedOnBreakpoint() bool {
	n := len(r.Trace)
	return n > 0 && r.Trace[n-1].IsBreakpoint()
}

// WriteSummary writes a human-readable summary of the run.
func (r *Report) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	fmt.Fprintf(w, "Instructions executed: %d\n", r.Instructions)
	fmt.Fprintf(w, "Final PC: 0x%08x\n", r.PC)
	if r.EndedOnBreakpoint() {
		fmt.Fprintln(w, "Stopped on: EBREAK")
	} else {
		fmt.Fprintln(w, "Stopped on: exit")
	}

	fmt.Fprintf(w, "Result trace (%d entries):\n", len(r.Trace))
	for i, res := range r.Trace {
		fmt.Fprintf(w, "  %4d  %s\n", i, res)
	}

	fmt.Fprintln(w, "Registers:")
	for i, v := range r.Registers {
		if v != 0 {
			fmt.Fprintf(w, "  x%-2d = 0x%08x\n", i, v)
		}
	}

	if r.Reordered {
		fmt.Fprintf(w, "Reorder buffer: %d entries committed\n", r.Committed)
	}
	if r.ICache != nil {
		fmt.Fprintf(w, "I-cache: %s\n", r.ICache)
	}
	if r.DCache != nil {
		fmt.Fprintf(w, "D-cache: %s\n", r.DCache)
	}
}
