// Package loader provides program image loading for RV32I executables.
package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// MaxImageSize bounds the flattened image built from an ELF file.
const MaxImageSize = 64 * 1024 * 1024

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the address where this segment is placed in the image.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Image is a program ready to be copied into emulator memory at address 0.
type Image struct {
	// Data is the flat memory image.
	Data []byte
	// Entry is the ELF entry point. It is only meaningful when HasEntry is set.
	Entry uint32
	// HasEntry is true for images loaded from ELF files.
	HasEntry bool
	// Segments lists the PT_LOAD segments of an ELF image.
	Segments []Segment
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Load reads a program from path. ELF files are recognized by their magic
// number; anything else is taken as a raw binary image.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if bytes.HasPrefix(data, elfMagic) {
		return ParseELF(bytes.NewReader(data))
	}

	return &Image{Data: data}, nil
}

// ParseELF parses a 32-bit RISC-V ELF executable and flattens its PT_LOAD
// segments into an image addressed from 0. Bytes between and after
// segments, including BSS, are zero.
func ParseELF(r io.ReaderAt) (*Image, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("not a RISC-V ELF file (machine type: %v)", f.Machine)
	}

	img := &Image{
		Entry:    uint32(f.Entry),
		HasEntry: true,
	}

	var size uint64
	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		seg, err := readSegment(phdr)
		if err != nil {
			return nil, err
		}
		img.Segments = append(img.Segments, seg)

		end := uint64(seg.VirtAddr) + uint64(seg.MemSize)
		if end > MaxImageSize {
			return nil, fmt.Errorf("segment at 0x%x ends at 0x%x, beyond the %d-byte image limit",
				seg.VirtAddr, end, MaxImageSize)
		}
		if end > size {
			size = end
		}
	}

	img.Data = make([]byte, size)
	for _, seg := range img.Segments {
		copy(img.Data[seg.VirtAddr:], seg.Data)
	}

	return img, nil
}

func readSegment(phdr *elf.Prog) (Segment, error) {
	data := make([]byte, phdr.Filesz)
	if phdr.Filesz > 0 {
		n, err := phdr.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return Segment{}, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
		}
		if uint64(n) != phdr.Filesz {
			return Segment{}, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				phdr.Vaddr, n, phdr.Filesz)
		}
	}

	memSize := phdr.Memsz
	if memSize < phdr.Filesz {
		memSize = phdr.Filesz
	}

	var flags SegmentFlags
	if phdr.Flags&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if phdr.Flags&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if phdr.Flags&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}

	return Segment{
		VirtAddr: uint32(phdr.Vaddr),
		Data:     data,
		MemSize:  uint32(memSize),
		Flags:    flags,
	}, nil
}
