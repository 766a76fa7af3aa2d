package reorder

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/sarchlab/rv32sim/emu"
)

// Pass reorders the words of a memory region before a run and drains the
// reorder buffer after it.
type Pass struct {
	memory    *emu.Memory
	start     uint32
	end       uint32
	buffer    *Buffer
	logger    hclog.Logger
	committed int
}

// Option is a functional option for configuring a Pass.
type Option func(*Pass)

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(p *Pass) {
		p.logger = logger
	}
}

// NewPass creates a pass over the 4-byte words in [start, end) of memory.
func NewPass(memory *emu.Memory, start, end uint32, opts ...Option) *Pass {
	p := &Pass{
		memory: memory,
		start:  start,
		end:    end,
		buffer: NewBuffer(),
		logger: hclog.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Buffer returns the reorder buffer filled by Apply.
func (p *Pass) Buffer() *Buffer {
	return p.buffer
}

// Committed returns the number of entries drained by Restore.
func (p *Pass) Committed() int {
	return p.committed
}

// Apply schedules the region, writes the schedule back at sequential
// word offsets from start and mirrors it into the buffer.
func (p *Pass) Apply() error {
	var words []uint32
	for addr := p.start; uint64(addr)+4 <= uint64(p.end); addr += 4 {
		w, err := p.memory.Read32(addr)
		if err != nil {
			return fmt.Errorf("reorder: reading 0x%08x: %w", addr, err)
		}
		words = append(words, w)
	}

	scheduled := Schedule(words)

	moved := 0
	for i, w := range scheduled {
		if w != words[i] {
			moved++
		}
		addr := p.start + uint32(4*i)
		if err := p.memory.Write32(addr, w); err != nil {
			return fmt.Errorf("reorder: writing 0x%08x: %w", addr, err)
		}
		p.buffer.Add(w)
	}

	p.logger.Debug("reorder pass applied",
		"start", fmt.Sprintf("%#x", p.start),
		"words", len(scheduled),
		"moved", moved)

	return nil
}

// Restore drains the buffer in commit order and returns trace. Buffer slots
// carry no link to the trace entry they produced, so the trace is returned
// in the order it was collected.
func (p *Pass) Restore(trace []emu.Result) []emu.Result {
	p.committed = 0
	for !p.buffer.IsEmpty() {
		p.buffer.Commit()
		p.committed++
	}

	p.logger.Debug("reorder buffer drained",
		"committed", p.committed,
		"trace", len(trace))

	return trace
}
