package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32sim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})

	It("should list exactly ten defined opcodes", func() {
		Expect(insts.Opcodes).To(HaveLen(10))
		for _, op := range insts.Opcodes {
			Expect(op.IsDefined()).To(BeTrue(), op.String())
		}
		Expect(insts.Opcode(0).IsDefined()).To(BeFalse())
		Expect(insts.Opcode(0x7F).String()).To(Equal("UNKNOWN"))
	})

	Describe("SignExtend", func() {
		It("should subtract 2^bits when the top bit is set", func() {
			Expect(insts.SignExtend(0xFFF, 12)).To(Equal(int32(-1)))
			Expect(insts.SignExtend(0x800, 12)).To(Equal(int32(-2048)))
			Expect(insts.SignExtend(0x1000, 13)).To(Equal(int32(-4096)))
			Expect(insts.SignExtend(0x100000, 21)).To(Equal(int32(-1048576)))
		})

		It("should leave values with a clear top bit unchanged", func() {
			Expect(insts.SignExtend(0x7FF, 12)).To(Equal(int32(2047)))
			Expect(insts.SignExtend(5, 12)).To(Equal(int32(5)))
			Expect(insts.SignExtend(0, 5)).To(Equal(int32(0)))
		})

		It("should hold for every 5-bit value", func() {
			for v := uint32(0); v < 32; v++ {
				expected := int32(v)
				if v >= 16 {
					expected = int32(v) - 32
				}
				Expect(insts.SignExtend(v, 5)).To(Equal(expected))
			}
		})
	})

	Describe("ClassifyOpcode", func() {
		DescribeTable("format per opcode",
			func(word uint32, format insts.Format, name string) {
				Expect(insts.ClassifyOpcode(word)).To(Equal(format))
				Expect(insts.ClassifyOpcode(word).String()).To(Equal(name))
			},
			Entry("LOAD", insts.LW(1, 2, 0), insts.FormatI, "I"),
			Entry("STORE", insts.SW(1, 2, 0), insts.FormatS, "S"),
			Entry("BRANCH", insts.BEQ(1, 2, 8), insts.FormatB, "B"),
			Entry("JALR", insts.JALR(1, 2, 0), insts.FormatI, "I"),
			Entry("JAL", insts.JAL(1, 8), insts.FormatJ, "J"),
			Entry("LUI", insts.LUI(1, 1), insts.FormatU, "U"),
			Entry("AUIPC", insts.AUIPC(1, 1), insts.FormatU, "U"),
			Entry("OP_IMM", insts.ADDI(1, 0, 1), insts.FormatI, "I"),
			Entry("OP", insts.ADD(1, 2, 3), insts.FormatR, "R"),
			Entry("SYSTEM", insts.EBREAKWord, insts.FormatI, "I"),
			Entry("zero word", uint32(0), insts.FormatUnknown, "Unknown"),
			Entry("undefined opcode", uint32(0x0000007F), insts.FormatUnknown, "Unknown"),
		)
	})

	Describe("Immediate fields", func() {
		It("should round-trip B-type offsets", func() {
			for _, off := range []int32{-4096, -8, -2, 0, 2, 8, 2046, 4094} {
				word := insts.BEQ(1, 2, off)
				Expect(insts.SignExtend(insts.ImmB(word), 13)).To(Equal(off))
			}
		})

		It("should round-trip J-type offsets", func() {
			for _, off := range []int32{-1048576, -4, 0, 4, 2048, 1048574} {
				word := insts.JAL(1, off)
				Expect(insts.SignExtend(insts.ImmJ(word), 21)).To(Equal(off))
			}
		})

		It("should round-trip S-type offsets", func() {
			for _, off := range []int32{-2048, -1, 0, 31, 32, 2047} {
				word := insts.SW(3, 4, off)
				Expect(insts.SignExtend(insts.ImmS(word), 12)).To(Equal(off))
			}
		})
	})

	Describe("Assemble", func() {
		It("should lay words out little-endian", func() {
			image := insts.Assemble(0x11223344, insts.EBREAKWord)
			Expect(image).To(Equal([]byte{
				0x44, 0x33, 0x22, 0x11,
				0x73, 0x00, 0x10, 0x00,
			}))
		})
	})
})
