// Package insts provides RV32I instruction definitions and decoding.
package insts

import "fmt"

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Opcode Opcode // Major opcode, bits [6:0]
	Op     Op     // Operation
	Format Format // Encoding format

	Rd     uint8 // Destination register
	Rs1    uint8 // First source register
	Rs2    uint8 // Second source register
	Funct3 uint8
	Funct7 uint8

	// Imm is the immediate as displayed: sign-extended over the full field
	// width of the format. U-type immediates are the raw 20-bit field.
	Imm int32
}

// funct3 and funct7 selectors for OP_IMM and OP.
const (
	funct7Base = 0b0000000
	funct7Alt  = 0b0100000
)

var opImmOps = map[uint8]Op{
	0b000: OpADDI,
	0b010: OpSLTI,
	0b011: OpSLTIU,
	0b100: OpXORI,
	0b110: OpORI,
	0b111: OpANDI,
	0b001: OpSLLI,
}

type funct3Funct7 struct {
	funct3 uint8
	funct7 uint8
}

var opOps = map[funct3Funct7]Op{
	{0b000, funct7Base}: OpADD,
	{0b000, funct7Alt}:  OpSUB,
	{0b001, funct7Base}: OpSLL,
	{0b010, funct7Base}: OpSLT,
	{0b011, funct7Base}: OpSLTU,
	{0b100, funct7Base}: OpXOR,
	{0b101, funct7Base}: OpSRL,
	{0b101, funct7Alt}:  OpSRA,
	{0b110, funct7Base}: OpOR,
	{0b111, funct7Base}: OpAND,
}

// Decoder decodes RV32I machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32I instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Word:   word,
		Opcode: OpcodeOf(word),
		Op:     OpUnknown,
		Format: ClassifyOpcode(word),
		Funct3: Funct3(word),
		Funct7: Funct7(word),
	}

	switch inst.Format {
	case FormatR:
		inst.Rd, inst.Rs1, inst.Rs2 = Rd(word), Rs1(word), Rs2(word)
	case FormatI:
		inst.Rd, inst.Rs1 = Rd(word), Rs1(word)
		inst.Imm = SignExtend(ImmI(word), 12)
	case FormatS:
		inst.Rs1, inst.Rs2 = Rs1(word), Rs2(word)
		inst.Imm = SignExtend(ImmS(word), 12)
	case FormatB:
		inst.Rs1, inst.Rs2 = Rs1(word), Rs2(word)
		inst.Imm = SignExtend(ImmB(word), 13)
	case FormatU:
		inst.Rd = Rd(word)
		inst.Imm = int32(ImmU(word))
	case FormatJ:
		inst.Rd = Rd(word)
		inst.Imm = SignExtend(ImmJ(word), 21)
	}

	inst.Op = d.selectOp(inst)

	return inst
}

// selectOp performs the funct3/funct7 sub-dispatch for an opcode class.
func (d *Decoder) selectOp(inst *Instruction) Op {
	switch inst.Opcode {
	case OpcodeLoad:
		return OpLOAD
	case OpcodeStore:
		return OpSTORE
	case OpcodeBranch:
		return OpBRANCH
	case OpcodeJALR:
		return OpJALR
	case OpcodeJAL:
		return OpJAL
	case OpcodeLUI:
		return OpLUI
	case OpcodeAUIPC:
		return OpAUIPC
	case OpcodeOpImm:
		if inst.Funct3 == 0b101 {
			switch inst.Funct7 {
			case funct7Base:
				return OpSRLI
			case funct7Alt:
				return OpSRAI
			}
			return OpUnknown
		}
		return opImmOps[inst.Funct3]
	case OpcodeOp:
		return opOps[funct3Funct7{inst.Funct3, inst.Funct7}]
	case OpcodeSystem:
		if inst.Funct3 != 0 {
			return OpUnknown
		}
		switch ImmI(inst.Word) {
		case 0:
			return OpECALL
		case 1:
			return OpEBREAK
		}
	}
	return OpUnknown
}

// Disassemble renders word as a human-readable instruction for tracing.
func (d *Decoder) Disassemble(word uint32) string {
	inst := d.Decode(word)

	switch inst.Opcode {
	case OpcodeLoad:
		return fmt.Sprintf("LOAD x%d, %d(x%d)", inst.Rd, inst.Imm, inst.Rs1)
	case OpcodeStore:
		return fmt.Sprintf("STORE x%d, %d(x%d)", inst.Rs2, inst.Imm, inst.Rs1)
	case OpcodeBranch:
		return fmt.Sprintf("BRANCH x%d, x%d, %d", inst.Rs1, inst.Rs2, inst.Imm)
	case OpcodeJALR:
		return fmt.Sprintf("JALR x%d, %d(x%d)", inst.Rd, inst.Imm, inst.Rs1)
	case OpcodeJAL:
		return fmt.Sprintf("JAL x%d, %d", inst.Rd, inst.Imm)
	case OpcodeLUI, OpcodeAUIPC:
		return fmt.Sprintf("%s x%d, %d", inst.Op, inst.Rd, inst.Imm)
	case OpcodeOpImm:
		return d.disassembleOpImm(inst)
	case OpcodeOp:
		if inst.Op == OpUnknown {
			return fmt.Sprintf("OP x%d, x%d, x%d", inst.Rd, inst.Rs1, inst.Rs2)
		}
		return fmt.Sprintf("%s x%d, x%d, x%d", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	case OpcodeSystem:
		if inst.Op == OpUnknown {
			return "SYSTEM"
		}
		return inst.Op.String()
	}

	return fmt.Sprintf("unknown instruction 0x%08x", word)
}

func (d *Decoder) disassembleOpImm(inst *Instruction) string {
	switch inst.Op {
	case OpSLLI, OpSRLI, OpSRAI:
		shamt := Rs2(inst.Word) // shamt occupies the rs2 field
		return fmt.Sprintf("%s x%d, x%d, %d", inst.Op, inst.Rd, inst.Rs1, shamt)
	case OpUnknown:
		return fmt.Sprintf("OP_IMM x%d, x%d, %d", inst.Rd, inst.Rs1, inst.Imm)
	}
	return fmt.Sprintf("%s x%d, x%d, %d", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
}
