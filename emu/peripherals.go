// Package emu provides functional RV32I emulation.
package emu

import (
	"errors"
	"fmt"
	"io"
)

// Peripheral addresses. These are not backed by Memory.
const (
	ConsoleInAddr  uint32 = 0x4000000
	ConsoleOutAddr uint32 = 0x4000004
	ConsoleErrAddr uint32 = 0x4000008
)

// ConsoleInPrompt is shown when the console-in peripheral blocks for input.
const ConsoleInPrompt = "input: "

// Peripherals bridges the three console addresses to host I/O.
type Peripherals struct {
	stdout io.Writer
	stderr io.Writer
	stdin  LineSource
}

// NewPeripherals creates a bridge writing to stdout/stderr and reading
// console input from stdin. stdin may be nil, in which case console-in
// reads return 0.
func NewPeripherals(stdout, stderr io.Writer, stdin LineSource) *Peripherals {
	return &Peripherals{
		stdout: stdout,
		stderr: stderr,
		stdin:  stdin,
	}
}

// IsPeripheralAddr reports whether addr is one of the three console addresses.
func IsPeripheralAddr(addr uint32) bool {
	return addr == ConsoleInAddr || addr == ConsoleOutAddr || addr == ConsoleErrAddr
}

// HandleMemoryAccess claims writes to console-out/console-err and reads from
// console-in. The byte is only meaningful for claimed reads. When claimed is
// false the caller must treat the access as ordinary memory.
func (p *Peripherals) HandleMemoryAccess(addr, value uint32, isWrite bool) (b byte, claimed bool) {
	switch {
	case addr == ConsoleOutAddr && isWrite:
		p.WriteStdout(byte(value))
		return 0, true
	case addr == ConsoleErrAddr && isWrite:
		p.WriteStderr(byte(value))
		return 0, true
	case addr == ConsoleInAddr && !isWrite:
		return p.ReadStdin(), true
	}
	return 0, false
}

// WriteStdout emits one byte on the console.
func (p *Peripherals) WriteStdout(b byte) {
	if p.stdout != nil {
		_, _ = p.stdout.Write([]byte{b})
	}
}

// WriteStderr emits one byte on the error console.
func (p *Peripherals) WriteStderr(b byte) {
	if p.stderr != nil {
		_, _ = p.stderr.Write([]byte{b})
	}
}

// ReadStdin blocks for one line of input and returns its first byte.
// An empty line reads as '\n'; exhausted input reads as 0.
func (p *Peripherals) ReadStdin() byte {
	if p.stdin == nil {
		return 0
	}

	line, err := p.stdin.ReadLine(ConsoleInPrompt)
	if err != nil {
		if !errors.Is(err, io.EOF) && p.stderr != nil {
			_, _ = fmt.Fprintf(p.stderr, "console input: %v\n", err)
		}
		return 0
	}
	if line == "" {
		return '\n'
	}
	return line[0]
}
