// Package insts provides RV32I instruction definitions and decoding.
//
// This package implements decoding of RV32I machine code into structured
// instruction representations. It supports the ten base opcode classes:
//   - LOAD, STORE, BRANCH
//   - JAL, JALR
//   - LUI, AUIPC
//   - OP_IMM (ADDI, SLTI, SLTIU, XORI, ORI, ANDI, SLLI, SRLI, SRAI)
//   - OP (ADD, SUB, SLL, SLT, SLTU, XOR, SRL, SRA, OR, AND)
//   - SYSTEM (ECALL, EBREAK)
//
// Decoding is used for display and inspection only. The emulator extracts the
// fields it executes with the helpers in fields.go.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00500093) // ADDI x1, x0, 5
//	fmt.Println(decoder.Disassemble(0x00500093))
package insts

// Opcode is the 7-bit major opcode held in bits [6:0] of an instruction word.
type Opcode uint8

// RV32I major opcodes.
const (
	OpcodeLoad   Opcode = 0b0000011
	OpcodeStore  Opcode = 0b0100011
	OpcodeBranch Opcode = 0b1100011
	OpcodeJALR   Opcode = 0b1100111
	OpcodeJAL    Opcode = 0b1101111
	OpcodeLUI    Opcode = 0b0110111
	OpcodeAUIPC  Opcode = 0b0010111
	OpcodeOpImm  Opcode = 0b0010011
	OpcodeOp     Opcode = 0b0110011
	OpcodeSystem Opcode = 0b1110011
)

// Opcodes lists the ten defined opcode classes in table order.
var Opcodes = []Opcode{
	OpcodeLoad,
	OpcodeStore,
	OpcodeBranch,
	OpcodeJALR,
	OpcodeJAL,
	OpcodeLUI,
	OpcodeAUIPC,
	OpcodeOpImm,
	OpcodeOp,
	OpcodeSystem,
}

var opcodeNames = map[Opcode]string{
	OpcodeLoad:   "LOAD",
	OpcodeStore:  "STORE",
	OpcodeBranch: "BRANCH",
	OpcodeJALR:   "JALR",
	OpcodeJAL:    "JAL",
	OpcodeLUI:    "LUI",
	OpcodeAUIPC:  "AUIPC",
	OpcodeOpImm:  "OP_IMM",
	OpcodeOp:     "OP",
	OpcodeSystem: "SYSTEM",
}

// String returns the opcode class name, or "UNKNOWN".
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsDefined reports whether o is one of the ten RV32I opcode classes.
func (o Opcode) IsDefined() bool {
	_, ok := opcodeNames[o]
	return ok
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// String returns the single-letter format name used by the dump table.
func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "Unknown"
	}
}

var opcodeFormats = map[Opcode]Format{
	OpcodeLoad:   FormatI,
	OpcodeStore:  FormatS,
	OpcodeBranch: FormatB,
	OpcodeJALR:   FormatI,
	OpcodeJAL:    FormatJ,
	OpcodeLUI:    FormatU,
	OpcodeAUIPC:  FormatU,
	OpcodeOpImm:  FormatI,
	OpcodeOp:     FormatR,
	OpcodeSystem: FormatI,
}

// ClassifyOpcode maps the opcode of word to its encoding format.
// Words with an undefined opcode map to FormatUnknown.
func ClassifyOpcode(word uint32) Format {
	if f, ok := opcodeFormats[OpcodeOf(word)]; ok {
		return f
	}
	return FormatUnknown
}

// Op represents a specific RV32I operation.
type Op uint16

// RV32I operations. LOAD, STORE and BRANCH are kept at class level because
// the emulator executes a single variant of each.
const (
	OpUnknown Op = iota
	OpLOAD
	OpSTORE
	OpBRANCH
	OpJALR
	OpJAL
	OpLUI
	OpAUIPC
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpECALL
	OpEBREAK
)

var opNames = [...]string{
	OpUnknown: "UNKNOWN",
	OpLOAD:    "LOAD",
	OpSTORE:   "STORE",
	OpBRANCH:  "BRANCH",
	OpJALR:    "JALR",
	OpJAL:     "JAL",
	OpLUI:     "LUI",
	OpAUIPC:   "AUIPC",
	OpADDI:    "ADDI",
	OpSLTI:    "SLTI",
	OpSLTIU:   "SLTIU",
	OpXORI:    "XORI",
	OpORI:     "ORI",
	OpANDI:    "ANDI",
	OpSLLI:    "SLLI",
	OpSRLI:    "SRLI",
	OpSRAI:    "SRAI",
	OpADD:     "ADD",
	OpSUB:     "SUB",
	OpSLL:     "SLL",
	OpSLT:     "SLT",
	OpSLTU:    "SLTU",
	OpXOR:     "XOR",
	OpSRL:     "SRL",
	OpSRA:     "SRA",
	OpOR:      "OR",
	OpAND:     "AND",
	OpECALL:   "ECALL",
	OpEBREAK:  "EBREAK",
}

// String returns the upper-case mnemonic of the operation.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpUnknown]
}

// EBREAKWord is the exact encoding of EBREAK, also the semihosting trap.
const EBREAKWord uint32 = 0x00100073

// ECALLWord is the exact encoding of ECALL.
const ECALLWord uint32 = 0x00000073
