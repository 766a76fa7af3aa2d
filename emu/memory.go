// Package emu provides functional RV32I emulation.
package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DefaultMemorySize is the default size of the emulated address space (512 KiB).
const DefaultMemorySize uint32 = 512 * 1024

// ErrInvalidSize is returned for accesses that are not 1, 2 or 4 bytes wide.
var ErrInvalidSize = errors.New("invalid access size")

// AddressFault reports an access whose span does not fit in memory.
type AddressFault struct {
	Addr     uint32
	Size     int
	Capacity uint32
}

func (f *AddressFault) Error() string {
	return fmt.Sprintf("address fault: %d-byte access at 0x%08x exceeds memory size 0x%x",
		f.Size, f.Addr, f.Capacity)
}

// Memory is a flat, zero-initialized, byte-addressable buffer.
// Multi-byte values are little-endian.
type Memory struct {
	data []byte
}

// NewMemory creates a memory of size bytes.
func NewMemory(size uint32) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the capacity in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// check validates that [addr, addr+size) lies inside the buffer.
// The sum is computed in 64 bits so it cannot wrap.
func (m *Memory) check(addr uint32, size int) error {
	if uint64(addr)+uint64(size) > uint64(len(m.data)) {
		return &AddressFault{Addr: addr, Size: size, Capacity: m.Size()}
	}
	return nil
}

// Read returns the little-endian unsigned value of size bytes at addr.
func (m *Memory) Read(addr uint32, size int) (uint32, error) {
	if size != 1 && size != 2 && size != 4 {
		return 0, fmt.Errorf("read of %d bytes: %w", size, ErrInvalidSize)
	}
	if err := m.check(addr, size); err != nil {
		return 0, err
	}

	switch size {
	case 1:
		return uint32(m.data[addr]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(m.data[addr:])), nil
	default:
		return binary.LittleEndian.Uint32(m.data[addr:]), nil
	}
}

// Write stores the low size bytes of value at addr, little-endian.
func (m *Memory) Write(addr uint32, value uint32, size int) error {
	if size != 1 && size != 2 && size != 4 {
		return fmt.Errorf("write of %d bytes: %w", size, ErrInvalidSize)
	}
	if err := m.check(addr, size); err != nil {
		return err
	}

	switch size {
	case 1:
		m.data[addr] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(m.data[addr:], uint16(value))
	default:
		binary.LittleEndian.PutUint32(m.data[addr:], value)
	}
	return nil
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) (uint8, error) {
	v, err := m.Read(addr, 1)
	return uint8(v), err
}

// Read16 reads a halfword.
func (m *Memory) Read16(addr uint32) (uint16, error) {
	v, err := m.Read(addr, 2)
	return uint16(v), err
}

// Read32 reads a word.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	return m.Read(addr, 4)
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) error {
	return m.Write(addr, uint32(value), 1)
}

// Write16 writes a halfword.
func (m *Memory) Write16(addr uint32, value uint16) error {
	return m.Write(addr, uint32(value), 2)
}

// Write32 writes a word.
func (m *Memory) Write32(addr uint32, value uint32) error {
	return m.Write(addr, value, 4)
}

// ReadBytes returns a copy of n bytes starting at addr.
func (m *Memory) ReadBytes(addr uint32, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read of %d bytes: %w", n, ErrInvalidSize)
	}
	if err := m.check(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.data[addr:])
	return out, nil
}

// LoadProgram copies image into memory starting at offset 0.
// Bytes beyond the capacity are dropped. It returns the number of bytes
// copied.
func (m *Memory) LoadProgram(image []byte) int {
	return copy(m.data, image)
}
