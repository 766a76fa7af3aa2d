package emu_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/cache"
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/insts"
)

// placeProgram writes words at addr and points PC at the first one.
func placeProgram(e *emu.Emulator, addr uint32, words ...uint32) {
	for i, w := range words {
		Expect(e.Memory().Write32(addr+uint32(4*i), w)).To(Succeed())
	}
	e.SetPC(addr)
}

var _ = Describe("Emulator", func() {
	var (
		e         *emu.Emulator
		stdoutBuf *bytes.Buffer
		stderrBuf *bytes.Buffer
	)

	BeforeEach(func() {
		stdoutBuf = &bytes.Buffer{}
		stderrBuf = &bytes.Buffer{}
		e = emu.NewEmulator(
			emu.WithMemorySize(0x4000),
			emu.WithStdout(stdoutBuf),
			emu.WithStderr(stderrBuf),
		)
	})

	Describe("NewEmulator", func() {
		It("should create an emulator with initialized components", func() {
			Expect(e).NotTo(BeNil())
			Expect(e.RegFile()).NotTo(BeNil())
			Expect(e.Memory().Size()).To(Equal(uint32(0x4000)))
			Expect(e.Peripherals()).NotTo(BeNil())
		})

		It("should default to 512 KiB of memory", func() {
			Expect(emu.NewEmulator().Memory().Size()).To(Equal(uint32(512 * 1024)))
		})
	})

	Describe("LoadProgram", func() {
		It("should load the image at address 0 and set PC to the entry", func() {
			n := e.LoadProgram(0x100, []byte{0xDE, 0xAD, 0xBE, 0xEF})

			Expect(n).To(Equal(4))
			Expect(e.PC()).To(Equal(uint32(0x100)))
			b, _ := e.Memory().Read8(0)
			Expect(b).To(Equal(uint8(0xDE)))
		})
	})

	Describe("OP_IMM", func() {
		It("should execute ADDI", func() {
			placeProgram(e, 0x100, insts.ADDI(1, 0, 5))

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Executed).To(BeTrue())
			Expect(result.Result).To(Equal(emu.ValueResult(5)))
			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(5)))
			Expect(e.PC()).To(Equal(uint32(0x104)))
		})

		It("should execute the immediate masked to its low 5 bits", func() {
			// -1 encodes as 0xFFF; only 0x1F takes effect
			placeProgram(e, 0x100, insts.ADDI(1, 0, -1), insts.ADDI(2, 0, 37))

			e.Step()
			e.Step()

			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(31)))
			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(5)))
		})

		DescribeTable("funct3/funct7 selection",
			func(word uint32, rs1Value, expected uint32) {
				e.RegFile().WriteReg(1, rs1Value)
				placeProgram(e, 0x100, word)

				result := e.Step()

				Expect(result.Err).NotTo(HaveOccurred())
				Expect(e.RegFile().ReadReg(2)).To(Equal(expected))
				Expect(result.Result.Value).To(Equal(expected))
				Expect(e.PC()).To(Equal(uint32(0x104)))
			},
			Entry("ADDI", insts.EncodeI(insts.OpcodeOpImm, 2, 0b000, 1, 7), uint32(10), uint32(17)),
			Entry("SLTI signed true", insts.EncodeI(insts.OpcodeOpImm, 2, 0b010, 1, 3), uint32(0xFFFFFFFF), uint32(1)),
			Entry("SLTI signed false", insts.EncodeI(insts.OpcodeOpImm, 2, 0b010, 1, 3), uint32(3), uint32(0)),
			Entry("SLTIU unsigned", insts.EncodeI(insts.OpcodeOpImm, 2, 0b011, 1, 3), uint32(0xFFFFFFFF), uint32(0)),
			Entry("SLTIU true", insts.EncodeI(insts.OpcodeOpImm, 2, 0b011, 1, 3), uint32(2), uint32(1)),
			Entry("XORI", insts.EncodeI(insts.OpcodeOpImm, 2, 0b100, 1, 0xF), uint32(0xF0), uint32(0xFF)),
			Entry("ORI", insts.EncodeI(insts.OpcodeOpImm, 2, 0b110, 1, 0x3), uint32(0x10), uint32(0x13)),
			Entry("ANDI", insts.EncodeI(insts.OpcodeOpImm, 2, 0b111, 1, 0x1C), uint32(0xFF), uint32(0x1C)),
			Entry("SLLI", insts.EncodeI(insts.OpcodeOpImm, 2, 0b001, 1, 4), uint32(1), uint32(16)),
			Entry("SRLI", insts.EncodeI(insts.OpcodeOpImm, 2, 0b101, 1, 4), uint32(0x80000000), uint32(0x08000000)),
			Entry("SRAI", insts.EncodeI(insts.OpcodeOpImm, 2, 0b101, 1, 0x400|4), uint32(0x80000000), uint32(0xF8000000)),
		)

		It("should treat an unknown shift-right funct7 as unrecognized", func() {
			e.RegFile().WriteReg(2, 99)
			placeProgram(e, 0x100, insts.EncodeI(insts.OpcodeOpImm, 2, 0b101, 1, 0x200|4))

			result := e.Step()

			var unrecognized *emu.UnrecognizedInstruction
			Expect(errors.As(result.Err, &unrecognized)).To(BeTrue())
			Expect(result.Executed).To(BeTrue())
			Expect(result.Result).To(Equal(emu.NoResult))
			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(99)))
			Expect(e.PC()).To(Equal(uint32(0x104)))
		})

		It("should discard writes to x0", func() {
			placeProgram(e, 0x100, insts.ADDI(0, 0, 5))

			result := e.Step()

			Expect(result.Result).To(Equal(emu.ValueResult(5)))
			Expect(e.RegFile().ReadReg(0)).To(BeZero())
		})
	})

	Describe("OP", func() {
		DescribeTable("funct3/funct7 selection",
			func(funct3, funct7 uint8, a, b, expected uint32) {
				e.RegFile().WriteReg(1, a)
				e.RegFile().WriteReg(2, b)
				placeProgram(e, 0x100, insts.EncodeR(insts.OpcodeOp, 3, funct3, 1, 2, funct7))

				result := e.Step()

				Expect(result.Err).NotTo(HaveOccurred())
				Expect(e.RegFile().ReadReg(3)).To(Equal(expected))
				Expect(result.Result).To(Equal(emu.ValueResult(expected)))
			},
			Entry("ADD", uint8(0b000), uint8(0b0000000), uint32(5), uint32(7), uint32(12)),
			Entry("ADD wraps", uint8(0b000), uint8(0b0000000), uint32(0xFFFFFFFF), uint32(2), uint32(1)),
			Entry("SUB", uint8(0b000), uint8(0b0100000), uint32(5), uint32(7), uint32(0xFFFFFFFE)),
			Entry("SLL uses rs2 & 31", uint8(0b001), uint8(0b0000000), uint32(1), uint32(33), uint32(2)),
			Entry("SLT", uint8(0b010), uint8(0b0000000), uint32(0xFFFFFFFF), uint32(1), uint32(1)),
			Entry("SLTU", uint8(0b011), uint8(0b0000000), uint32(0xFFFFFFFF), uint32(1), uint32(0)),
			Entry("XOR", uint8(0b100), uint8(0b0000000), uint32(0xFF00), uint32(0x0FF0), uint32(0xF0F0)),
			Entry("SRL", uint8(0b101), uint8(0b0000000), uint32(0x80000000), uint32(31), uint32(1)),
			Entry("SRA", uint8(0b101), uint8(0b0100000), uint32(0x80000000), uint32(31), uint32(0xFFFFFFFF)),
			Entry("OR", uint8(0b110), uint8(0b0000000), uint32(0xF0), uint32(0x0F), uint32(0xFF)),
			Entry("AND", uint8(0b111), uint8(0b0000000), uint32(0xF0), uint32(0x3C), uint32(0x30)),
			Entry("SLL ignores funct7", uint8(0b001), uint8(0b0000001), uint32(1), uint32(4), uint32(16)),
			Entry("SLT ignores funct7", uint8(0b010), uint8(0b0100000), uint32(0xFFFFFFFF), uint32(1), uint32(1)),
			Entry("SLTU ignores funct7", uint8(0b011), uint8(0b1111111), uint32(1), uint32(2), uint32(1)),
			Entry("XOR ignores funct7", uint8(0b100), uint8(0b0000001), uint32(0xFF00), uint32(0x0FF0), uint32(0xF0F0)),
			Entry("OR ignores funct7", uint8(0b110), uint8(0b0100000), uint32(0xF0), uint32(0x0F), uint32(0xFF)),
			Entry("AND ignores funct7", uint8(0b111), uint8(0b0000001), uint32(0xF0), uint32(0x3C), uint32(0x30)),
		)

		DescribeTable("should treat an unknown funct7 on ADD/SUB and SRL/SRA as unrecognized",
			func(funct3 uint8) {
				e.RegFile().WriteReg(3, 9)
				placeProgram(e, 0x100, insts.EncodeR(insts.OpcodeOp, 3, funct3, 1, 2, 0b0000001))

				result := e.Step()

				var unrecognized *emu.UnrecognizedInstruction
				Expect(errors.As(result.Err, &unrecognized)).To(BeTrue())
				Expect(e.RegFile().ReadReg(3)).To(Equal(uint32(9)))
				Expect(e.PC()).To(Equal(uint32(0x104)))
			},
			Entry("funct3 000", uint8(0b000)),
			Entry("funct3 101", uint8(0b101)),
		)

		It("should report the PC of an unrecognized OP word", func() {
			placeProgram(e, 0x100, insts.EncodeR(insts.OpcodeOp, 3, 0b000, 1, 2, 0b0000001))

			result := e.Step()

			var unrecognized *emu.UnrecognizedInstruction
			Expect(errors.As(result.Err, &unrecognized)).To(BeTrue())
			Expect(unrecognized.PC).To(Equal(uint32(0x100)))
			Expect(e.PC()).To(Equal(uint32(0x104)))
		})
	})

	Describe("LOAD and STORE", func() {
		It("should load a word from rs1 + offset", func() {
			Expect(e.Memory().Write32(0x200, 0xCAFEBABE)).To(Succeed())
			e.RegFile().WriteReg(1, 0x1F0)
			placeProgram(e, 0x100, insts.LW(2, 1, 16))

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(0xCAFEBABE)))
			Expect(result.Result).To(Equal(emu.ValueResult(0xCAFEBABE)))
			Expect(e.PC()).To(Equal(uint32(0x104)))
		})

		It("should read four bytes whatever the load width", func() {
			Expect(e.Memory().Write32(0x200, 0x80FF0102)).To(Succeed())
			e.RegFile().WriteReg(1, 0x204)
			lb := insts.EncodeI(insts.OpcodeLoad, 2, 0b000, 1, -4)
			placeProgram(e, 0x100, lb)

			e.Step()

			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(0x80FF0102)))
		})

		It("should store rs2 at rs1 + offset", func() {
			e.RegFile().WriteReg(1, 0x200)
			e.RegFile().WriteReg(2, 0x12345678)
			placeProgram(e, 0x100, insts.SW(2, 1, 8))

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Result).To(Equal(emu.NoResult))
			v, _ := e.Memory().Read32(0x208)
			Expect(v).To(Equal(uint32(0x12345678)))
		})

		It("should fault without changing state on an out-of-bounds load", func() {
			e.RegFile().WriteReg(1, e.Memory().Size()-1)
			e.RegFile().WriteReg(2, 77)
			placeProgram(e, 0x100, insts.LW(2, 1, 0))

			result := e.Step()

			var fault *emu.AddressFault
			Expect(errors.As(result.Err, &fault)).To(BeTrue())
			Expect(fault.Addr).To(Equal(uint32(0x3FFF)))
			Expect(fault.Size).To(Equal(4))
			Expect(result.Executed).To(BeFalse())
			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(77)))
			Expect(e.PC()).To(Equal(uint32(0x100)))
			Expect(e.InstructionCount()).To(BeZero())
		})

		It("should fault on an out-of-bounds store", func() {
			e.RegFile().WriteReg(1, 0x3FFE)
			placeProgram(e, 0x100, insts.SW(2, 1, 0))

			result := e.Step()

			var fault *emu.AddressFault
			Expect(errors.As(result.Err, &fault)).To(BeTrue())
			Expect(e.PC()).To(Equal(uint32(0x100)))
		})
	})

	Describe("BRANCH", func() {
		It("should take the branch when rs1 == rs2", func() {
			e.RegFile().WriteReg(1, 3)
			e.RegFile().WriteReg(2, 3)
			placeProgram(e, 0x100, insts.BEQ(1, 2, 16))

			result := e.Step()

			Expect(e.PC()).To(Equal(uint32(0x110)))
			Expect(result.Result).To(Equal(emu.ValueResult(0x110)))
		})

		It("should fall through by exactly 4 when rs1 != rs2", func() {
			e.RegFile().WriteReg(1, 3)
			e.RegFile().WriteReg(2, 4)
			placeProgram(e, 0x100, insts.BEQ(1, 2, 16))

			e.Step()

			Expect(e.PC()).To(Equal(uint32(0x104)))
		})

		It("should compare for equality whatever the funct3", func() {
			e.RegFile().WriteReg(1, 3)
			e.RegFile().WriteReg(2, 3)
			bne := insts.EncodeB(insts.OpcodeBranch, 0b001, 1, 2, 16)
			placeProgram(e, 0x100, bne)

			e.Step()

			Expect(e.PC()).To(Equal(uint32(0x110)))
		})

		It("should branch backwards", func() {
			placeProgram(e, 0x100, insts.BEQ(0, 0, -8))

			e.Step()

			Expect(e.PC()).To(Equal(uint32(0xF8)))
		})

		It("should take the sign from bit 11 of the assembled offset", func() {
			// Decoded as +2048, executed as -2048
			placeProgram(e, 0x1000, insts.BEQ(0, 0, 2048))
			e.Step()
			Expect(e.PC()).To(Equal(uint32(0x800)))

			// Decoded as -2050, executed as +2046
			placeProgram(e, 0x1000, insts.BEQ(0, 0, -2050))
			e.Step()
			Expect(e.PC()).To(Equal(uint32(0x17FE)))
		})
	})

	Describe("JAL and JALR", func() {
		It("should link PC + 4 and jump PC-relative", func() {
			placeProgram(e, 0x100, insts.JAL(1, 16))

			result := e.Step()

			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(0x104)))
			Expect(e.PC()).To(Equal(uint32(0x110)))
			Expect(result.Result).To(Equal(emu.ValueResult(0x104)))
		})

		It("should clear bit 0 of the JAL target", func() {
			placeProgram(e, 0x101, insts.JAL(1, 8))

			e.Step()

			Expect(e.PC()).To(Equal(uint32(0x108)))
			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(0x105)))
		})

		It("should jump to rs1 + offset with bit 0 cleared", func() {
			e.RegFile().WriteReg(2, 0x201)
			placeProgram(e, 0x100, insts.JALR(1, 2, 4))

			result := e.Step()

			Expect(e.PC()).To(Equal(uint32(0x204)))
			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(0x104)))
			Expect(result.Result).To(Equal(emu.ValueResult(0x104)))
		})

		It("should read rs1 before writing rd when they are the same register", func() {
			e.RegFile().WriteReg(1, 0x300)
			placeProgram(e, 0x100, insts.JALR(1, 1, 4))

			e.Step()

			Expect(e.PC()).To(Equal(uint32(0x304)))
			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(0x104)))
		})
	})

	Describe("LUI and AUIPC", func() {
		It("should execute LUI", func() {
			placeProgram(e, 0x100, insts.LUI(5, 0x12345))

			result := e.Step()

			Expect(e.RegFile().ReadReg(5)).To(Equal(uint32(0x12345000)))
			Expect(result.Result).To(Equal(emu.ValueResult(0x12345000)))
			Expect(e.PC()).To(Equal(uint32(0x104)))
		})

		It("should execute AUIPC relative to its own address", func() {
			placeProgram(e, 0x100, insts.AUIPC(5, 1))

			e.Step()

			Expect(e.RegFile().ReadReg(5)).To(Equal(uint32(0x1100)))
			Expect(e.PC()).To(Equal(uint32(0x104)))
		})
	})

	Describe("SYSTEM", func() {
		It("should treat ECALL as a no-op", func() {
			placeProgram(e, 0x100, insts.ECALLWord)

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Breakpoint).To(BeFalse())
			Expect(result.Result).To(Equal(emu.NoResult))
			Expect(e.PC()).To(Equal(uint32(0x104)))
		})

		It("should signal a breakpoint on EBREAK", func() {
			placeProgram(e, 0x100, insts.EBREAKWord)

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Breakpoint).To(BeTrue())
			Expect(result.Result.IsBreakpoint()).To(BeTrue())
			Expect(result.Result.String()).To(Equal("EBREAK"))
			Expect(e.PC()).To(Equal(uint32(0x104)))
		})

		It("should report other SYSTEM encodings as unrecognized", func() {
			placeProgram(e, 0x100, insts.EncodeI(insts.OpcodeSystem, 1, 0b010, 0, 0xC00))

			result := e.Step()

			var unrecognized *emu.UnrecognizedInstruction
			Expect(errors.As(result.Err, &unrecognized)).To(BeTrue())
		})
	})

	Describe("Unrecognized opcodes", func() {
		It("should advance PC and leave state unchanged", func() {
			e.RegFile().WriteReg(1, 5)
			placeProgram(e, 0x100, 0x0000007F)

			result := e.Step()

			var unrecognized *emu.UnrecognizedInstruction
			Expect(errors.As(result.Err, &unrecognized)).To(BeTrue())
			Expect(unrecognized.Word).To(Equal(uint32(0x7F)))
			Expect(result.Err.Error()).To(ContainSubstring("unrecognized instruction 0x0000007f"))
			Expect(e.PC()).To(Equal(uint32(0x104)))
			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(5)))
			Expect(e.InstructionCount()).To(Equal(uint64(1)))
		})
	})

	Describe("Fetch", func() {
		It("should fault when PC is past the end of memory", func() {
			e.SetPC(0x3FFD)

			result := e.Step()

			var fault *emu.AddressFault
			Expect(errors.As(result.Err, &fault)).To(BeTrue())
			Expect(result.Executed).To(BeFalse())
			Expect(e.PC()).To(Equal(uint32(0x3FFD)))
		})

		It("should expose the word at PC without executing it", func() {
			placeProgram(e, 0x100, insts.ADDI(1, 0, 5))

			word, err := e.CurrentWord()

			Expect(err).NotTo(HaveOccurred())
			Expect(word).To(Equal(insts.ADDI(1, 0, 5)))
			Expect(e.Disassemble(word)).To(Equal("ADDI x1, x0, 5"))
			Expect(e.PC()).To(Equal(uint32(0x100)))
		})
	})

	Describe("Instruction limit", func() {
		It("should stop once the limit is reached", func() {
			e = emu.NewEmulator(emu.WithMemorySize(0x1000), emu.WithMaxInstructions(2))
			placeProgram(e, 0x100, insts.ADDI(1, 1, 1), insts.ADDI(1, 1, 1), insts.ADDI(1, 1, 1))

			Expect(e.Step().Err).NotTo(HaveOccurred())
			Expect(e.Step().Err).NotTo(HaveOccurred())
			result := e.Step()

			Expect(errors.Is(result.Err, emu.ErrInstructionLimit)).To(BeTrue())
			Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(2)))
			Expect(e.PC()).To(Equal(uint32(0x108)))
		})
	})

	Describe("Semihosting", func() {
		It("should write the byte in a1 when a0 = 4", func() {
			e.RegFile().WriteReg(emu.RegA0, 4)
			e.RegFile().WriteReg(emu.RegA1, 0x141)
			placeProgram(e, 0x100, insts.EBREAKWord)

			result := e.Step()

			Expect(result.Breakpoint).To(BeTrue())
			Expect(stdoutBuf.String()).To(Equal("A"))
		})

		It("should write the string at a1 when a0 = 6", func() {
			for i, c := range []byte("hi there\x00ignored") {
				Expect(e.Memory().Write8(0x300+uint32(i), c)).To(Succeed())
			}
			e.RegFile().WriteReg(emu.RegA0, 6)
			e.RegFile().WriteReg(emu.RegA1, 0x300)
			placeProgram(e, 0x100, insts.EBREAKWord)

			e.Step()

			Expect(stdoutBuf.String()).To(Equal("hi there"))
		})

		It("should ignore other request numbers", func() {
			e.RegFile().WriteReg(emu.RegA0, 5)
			placeProgram(e, 0x100, insts.EBREAKWord)

			e.Step()

			Expect(stdoutBuf.Len()).To(BeZero())
		})

		It("should do nothing when disabled", func() {
			e = emu.NewEmulator(
				emu.WithMemorySize(0x1000),
				emu.WithStdout(stdoutBuf),
				emu.WithSemihosting(false),
			)
			e.RegFile().WriteReg(emu.RegA0, 4)
			e.RegFile().WriteReg(emu.RegA1, 'A')
			placeProgram(e, 0x100, insts.EBREAKWord)

			result := e.Step()

			Expect(result.Breakpoint).To(BeTrue())
			Expect(stdoutBuf.Len()).To(BeZero())
		})

		It("should report a string that runs off the end of memory", func() {
			Expect(e.Memory().Write8(0x3FFF, 'x')).To(Succeed())
			e.RegFile().WriteReg(emu.RegA0, 6)
			e.RegFile().WriteReg(emu.RegA1, 0x3FFF)
			placeProgram(e, 0x100, insts.EBREAKWord)

			result := e.Step()

			Expect(result.Breakpoint).To(BeTrue())
			Expect(stdoutBuf.String()).To(Equal("x"))
			Expect(stderrBuf.String()).To(ContainSubstring("address fault"))
		})
	})

	Describe("Peripherals", func() {
		// x1 = 0x4000000 + offset
		peripheralBase := func(offset int32) []uint32 {
			return []uint32{insts.LUI(1, 0x4000), insts.ADDI(1, 1, offset)}
		}

		It("should route stores to console-out", func() {
			e.RegFile().WriteReg(2, 'Z')
			placeProgram(e, 0x100, append(peripheralBase(4), insts.SW(2, 1, 0))...)

			e.Step()
			e.Step()
			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(stdoutBuf.String()).To(Equal("Z"))
		})

		It("should route stores to console-err", func() {
			e.RegFile().WriteReg(2, 'E')
			placeProgram(e, 0x100, append(peripheralBase(8), insts.SW(2, 1, 0))...)

			e.Step()
			e.Step()
			e.Step()

			Expect(stderrBuf.String()).To(Equal("E"))
		})

		It("should read the first byte of a console-in line", func() {
			e = emu.NewEmulator(
				emu.WithMemorySize(0x1000),
				emu.WithStdin(emu.NewReaderLineSource(strings.NewReader("hello\n"), stdoutBuf)),
				emu.WithStdout(stdoutBuf),
			)
			placeProgram(e, 0x100, append(peripheralBase(0), insts.LW(2, 1, 0))...)

			e.Step()
			e.Step()
			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32('h')))
			Expect(stdoutBuf.String()).To(Equal(emu.ConsoleInPrompt))
		})

		It("should fault on peripheral addresses when disabled", func() {
			e = emu.NewEmulator(emu.WithMemorySize(0x1000), emu.WithPeripherals(false))
			placeProgram(e, 0x100, append(peripheralBase(4), insts.SW(2, 1, 0))...)

			e.Step()
			e.Step()
			result := e.Step()

			var fault *emu.AddressFault
			Expect(errors.As(result.Err, &fault)).To(BeTrue())
		})

		It("should probe the post-dispatch PC with the instruction word", func() {
			// JALR x0, 0(x1) = 0x00008067; its low byte is 'g'
			placeProgram(e, 0x100, append(peripheralBase(4), insts.JALR(0, 1, 0))...)

			e.Step()
			e.Step()
			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(e.PC()).To(Equal(emu.ConsoleOutAddr))
			Expect(stdoutBuf.String()).To(Equal("g"))
		})

		It("should skip semihosting when the post-dispatch PC is a console address", func() {
			e = emu.NewEmulator(
				emu.WithMemorySize(emu.ConsoleErrAddr+8),
				emu.WithStdout(stdoutBuf),
				emu.WithStderr(stderrBuf),
			)
			e.RegFile().WriteReg(emu.RegA0, emu.SemihostWriteC)
			e.RegFile().WriteReg(emu.RegA1, 'A')
			// EBREAK just below console-out; its low byte is 's'
			placeProgram(e, emu.ConsoleInAddr, insts.EBREAKWord)

			result := e.Step()

			Expect(result.Breakpoint).To(BeTrue())
			Expect(e.PC()).To(Equal(emu.ConsoleOutAddr))
			Expect(stdoutBuf.String()).To(Equal("s"))
		})
	})

	Describe("Cache models", func() {
		It("should record fetches and data accesses", func() {
			icache := cache.New(cache.DefaultL1IConfig())
			dcache := cache.New(cache.DefaultL1DConfig())
			e = emu.NewEmulator(
				emu.WithMemorySize(0x1000),
				emu.WithInstructionCache(icache),
				emu.WithDataCache(dcache),
			)
			e.RegFile().WriteReg(1, 0x200)
			placeProgram(e, 0x100, insts.SW(1, 1, 0), insts.LW(2, 1, 0), insts.EBREAKWord)

			for !e.Step().Breakpoint {
			}

			Expect(icache.Stats().Reads).To(Equal(uint64(3)))
			Expect(icache.Stats().Misses).To(Equal(uint64(1)))
			Expect(dcache.Stats().Writes).To(Equal(uint64(1)))
			Expect(dcache.Stats().Reads).To(Equal(uint64(1)))
			Expect(dcache.Stats().Hits).To(Equal(uint64(1)))
		})
	})
})
