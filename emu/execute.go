// Package emu provides functional RV32I emulation.
package emu

import "github.com/sarchlab/rv32sim/insts"

// opcodeHandler executes one opcode class. It returns the trace entry and
// whether it wrote PC itself.
type opcodeHandler func(e *Emulator, word uint32) (result Result, redirected bool, err error)

// opcodeTable dispatches on the 7-bit opcode. Each handler performs its own
// funct3/funct7 sub-dispatch.
var opcodeTable = map[insts.Opcode]opcodeHandler{
	insts.OpcodeLoad:   (*Emulator).executeLoad,
	insts.OpcodeStore:  (*Emulator).executeStore,
	insts.OpcodeBranch: (*Emulator).executeBranch,
	insts.OpcodeJALR:   (*Emulator).executeJALR,
	insts.OpcodeJAL:    (*Emulator).executeJAL,
	insts.OpcodeLUI:    (*Emulator).executeLUI,
	insts.OpcodeAUIPC:  (*Emulator).executeAUIPC,
	insts.OpcodeOpImm:  (*Emulator).executeOpImm,
	insts.OpcodeOp:     (*Emulator).executeOp,
	insts.OpcodeSystem: (*Emulator).executeSystem,
}

type immOp func(a *ALU, rd, rs1 uint8, imm uint32) uint32

// opImmTable covers OP_IMM except funct3 101, which needs funct7.
var opImmTable = map[uint8]immOp{
	0b000: (*ALU).ADDI,
	0b010: (*ALU).SLTI,
	0b011: (*ALU).SLTIU,
	0b100: (*ALU).XORI,
	0b110: (*ALU).ORI,
	0b111: (*ALU).ANDI,
	0b001: (*ALU).SLLI,
}

// shiftRightImmTable selects SRLI/SRAI by funct7.
var shiftRightImmTable = map[uint8]immOp{
	0b0000000: (*ALU).SRLI,
	0b0100000: (*ALU).SRAI,
}

type regOp func(a *ALU, rd, rs1, rs2 uint8) uint32

// opTable covers OP by funct3 alone, except 000 and 101 which need funct7.
var opTable = map[uint8]regOp{
	0b001: (*ALU).SLL,
	0b010: (*ALU).SLT,
	0b011: (*ALU).SLTU,
	0b100: (*ALU).XOR,
	0b110: (*ALU).OR,
	0b111: (*ALU).AND,
}

// opFunct7Tables selects ADD/SUB and SRL/SRA by funct7.
var opFunct7Tables = map[uint8]map[uint8]regOp{
	0b000: {
		0b0000000: (*ALU).ADD,
		0b0100000: (*ALU).SUB,
	},
	0b101: {
		0b0000000: (*ALU).SRL,
		0b0100000: (*ALU).SRA,
	},
}

// execute dispatches and executes one instruction word.
func (e *Emulator) execute(word uint32) (Result, bool, error) {
	handler, ok := opcodeTable[insts.OpcodeOf(word)]
	if !ok {
		return NoResult, false, e.unrecognized(word)
	}
	return handler(e, word)
}

func (e *Emulator) unrecognized(word uint32) error {
	return &UnrecognizedInstruction{PC: e.regFile.PC, Word: word}
}

// loadStoreOffset is the 12-bit signed offset of loads, stores and JALR.
func loadStoreOffset(raw uint32) int32 {
	return insts.SignExtend(raw, 12)
}

// executeLoad always reads 4 bytes, whatever the funct3 width.
func (e *Emulator) executeLoad(word uint32) (Result, bool, error) {
	value, err := e.lsu.LW(insts.Rd(word), insts.Rs1(word), loadStoreOffset(insts.ImmI(word)))
	if err != nil {
		return NoResult, false, err
	}
	return ValueResult(value), false, nil
}

// executeStore always writes 4 bytes, whatever the funct3 width.
func (e *Emulator) executeStore(word uint32) (Result, bool, error) {
	err := e.lsu.SW(insts.Rs2(word), insts.Rs1(word), loadStoreOffset(insts.ImmS(word)))
	if err != nil {
		return NoResult, false, err
	}
	return NoResult, false, nil
}

// branchOffset masks the assembled B-type field to 12 bits and takes bit 11
// as the sign. This differs from the decoder's 13-bit display offset for
// offsets of 2048 bytes or more in either direction.
func branchOffset(word uint32) int32 {
	return insts.SignExtend(insts.ImmB(word)&0xFFF, 12)
}

// executeBranch compares for equality only; funct3 is not consulted.
func (e *Emulator) executeBranch(word uint32) (Result, bool, error) {
	pc := e.branchUnit.BEQ(insts.Rs1(word), insts.Rs2(word), branchOffset(word))
	return ValueResult(pc), true, nil
}

func (e *Emulator) executeJALR(word uint32) (Result, bool, error) {
	link := e.branchUnit.JALR(insts.Rd(word), insts.Rs1(word), loadStoreOffset(insts.ImmI(word)))
	return ValueResult(link), true, nil
}

func (e *Emulator) executeJAL(word uint32) (Result, bool, error) {
	link := e.branchUnit.JAL(insts.Rd(word), insts.SignExtend(insts.ImmJ(word), 21))
	return ValueResult(link), true, nil
}

func (e *Emulator) executeLUI(word uint32) (Result, bool, error) {
	return ValueResult(e.alu.LUI(insts.Rd(word), insts.ImmU(word))), false, nil
}

func (e *Emulator) executeAUIPC(word uint32) (Result, bool, error) {
	return ValueResult(e.alu.AUIPC(insts.Rd(word), insts.ImmU(word))), false, nil
}

// opImmImmediate is the OP_IMM immediate as executed: the low 5 bits of the
// I-type field, zero-extended, for every funct3.
func opImmImmediate(word uint32) uint32 {
	return insts.ImmI(word) & 0x1F
}

func (e *Emulator) executeOpImm(word uint32) (Result, bool, error) {
	funct3 := insts.Funct3(word)

	op, ok := opImmTable[funct3]
	if funct3 == 0b101 {
		op, ok = shiftRightImmTable[insts.Funct7(word)]
	}
	if !ok {
		return NoResult, false, e.unrecognized(word)
	}

	value := op(e.alu, insts.Rd(word), insts.Rs1(word), opImmImmediate(word))
	return ValueResult(value), false, nil
}

func (e *Emulator) executeOp(word uint32) (Result, bool, error) {
	funct3 := insts.Funct3(word)

	op, ok := opTable[funct3]
	if byFunct7, split := opFunct7Tables[funct3]; split {
		op, ok = byFunct7[insts.Funct7(word)]
	}
	if !ok {
		return NoResult, false, e.unrecognized(word)
	}

	value := op(e.alu, insts.Rd(word), insts.Rs1(word), insts.Rs2(word))
	return ValueResult(value), false, nil
}

func (e *Emulator) executeSystem(word uint32) (Result, bool, error) {
	if insts.Funct3(word) != 0 {
		return NoResult, false, e.unrecognized(word)
	}

	switch insts.ImmI(word) {
	case 0: // ECALL
		return NoResult, false, nil
	case 1: // EBREAK
		e.logger.Info("breakpoint", "pc", hexWord(e.regFile.PC))
		return BreakpointResult, false, nil
	}

	return NoResult, false, e.unrecognized(word)
}
