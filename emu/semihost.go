// Package emu provides functional RV32I emulation.
package emu

import (
	"fmt"
	"io"
)

// Semihosting request numbers, passed in a0 when EBREAK traps.
const (
	SemihostWriteC uint32 = 0x04 // write the byte in a1
	SemihostWrite0 uint32 = 0x06 // write the NUL-terminated string at a1
)

// SemihostHandler is the interface for handling semihosting requests.
type SemihostHandler interface {
	// Handle services the request indicated by the register file state.
	// Convention:
	//   - Request number in a0 (x10)
	//   - Argument in a1 (x11)
	Handle() error
}

// DefaultSemihostHandler implements the console requests WRITEC and WRITE0.
// Other request numbers are ignored.
type DefaultSemihostHandler struct {
	regFile *RegFile
	memory  *Memory
	stdout  io.Writer
}

// NewDefaultSemihostHandler creates a default semihosting handler.
func NewDefaultSemihostHandler(regFile *RegFile, memory *Memory, stdout io.Writer) *DefaultSemihostHandler {
	return &DefaultSemihostHandler{
		regFile: regFile,
		memory:  memory,
		stdout:  stdout,
	}
}

// Handle executes the request in a0.
func (h *DefaultSemihostHandler) Handle() error {
	switch h.regFile.ReadReg(RegA0) {
	case SemihostWriteC:
		return h.handleWriteC()
	case SemihostWrite0:
		return h.handleWrite0()
	default:
		return nil
	}
}

// handleWriteC emits a1 & 0xFF.
func (h *DefaultSemihostHandler) handleWriteC() error {
	c := byte(h.regFile.ReadReg(RegA1))
	_, err := h.stdout.Write([]byte{c})
	return err
}

// handleWrite0 emits bytes from memory starting at a1 up to, not
// including, the first zero byte. Bytes are read one at a time so a string
// running off the end of memory faults at the first missing byte; bytes
// already read are still emitted.
func (h *DefaultSemihostHandler) handleWrite0() error {
	addr := h.regFile.ReadReg(RegA1)

	var buf []byte
	for {
		c, err := h.memory.Read8(addr)
		if err != nil {
			_, _ = h.stdout.Write(buf)
			return fmt.Errorf("semihosting WRITE0: %w", err)
		}
		if c == 0 {
			break
		}
		buf = append(buf, c)
		addr++
	}

	_, err := h.stdout.Write(buf)
	return err
}
