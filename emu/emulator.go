// Package emu provides functional RV32I emulation.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/sarchlab/rv32sim/cache"
	"github.com/sarchlab/rv32sim/insts"
)

// ErrInstructionLimit is returned by Step once the configured maximum number
// of instructions has been executed.
var ErrInstructionLimit = errors.New("max instructions reached")

// UnrecognizedInstruction reports a word whose opcode, funct3 or funct7 does
// not select a supported operation. It is not fatal: the instruction behaves
// as a no-op and PC advances by 4.
type UnrecognizedInstruction struct {
	PC   uint32
	Word uint32
}

func (u *UnrecognizedInstruction) Error() string {
	return fmt.Sprintf("unrecognized instruction 0x%08x at PC=0x%X", u.Word, u.PC)
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// PC is the address the instruction was fetched from.
	PC uint32

	// Word is the fetched instruction word.
	Word uint32

	// Result is the trace entry produced by the instruction. It is only
	// meaningful when Executed is true.
	Result Result

	// Executed is true when the instruction took effect. A step that
	// faults on fetch or data access leaves all state untouched.
	Executed bool

	// Breakpoint is true if the instruction was EBREAK.
	Breakpoint bool

	// Err is set if an error occurred during execution. *AddressFault and
	// ErrInstructionLimit mean the step did not execute;
	// *UnrecognizedInstruction means it executed as a no-op.
	Err error
}

// Emulator executes RV32I instructions functionally.
type Emulator struct {
	regFile     *RegFile
	memory      *Memory
	decoder     *insts.Decoder
	peripherals *Peripherals
	semihost    SemihostHandler

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// I/O
	stdout io.Writer
	stderr io.Writer
	stdin  LineSource

	logger hclog.Logger

	// Feature switches
	peripheralsEnabled bool
	semihostingEnabled bool
	traceEnabled       bool

	// Optional cache models
	icache *cache.Cache
	dcache *cache.Cache

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithStdin sets the line source used by the console-in peripheral.
func WithStdin(src LineSource) EmulatorOption {
	return func(e *Emulator) {
		e.stdin = src
	}
}

// WithMemorySize sets the size of the emulated address space in bytes.
func WithMemorySize(size uint32) EmulatorOption {
	return func(e *Emulator) {
		e.memory = NewMemory(size)
	}
}

// WithSemihostHandler sets a custom semihosting handler.
func WithSemihostHandler(handler SemihostHandler) EmulatorOption {
	return func(e *Emulator) {
		e.semihost = handler
	}
}

// WithPeripherals enables or disables the console peripherals.
func WithPeripherals(enabled bool) EmulatorOption {
	return func(e *Emulator) {
		e.peripheralsEnabled = enabled
	}
}

// WithSemihosting enables or disables the EBREAK semihosting trap.
func WithSemihosting(enabled bool) EmulatorOption {
	return func(e *Emulator) {
		e.semihostingEnabled = enabled
	}
}

// WithTrace logs the disassembly of every executed instruction at debug level.
func WithTrace(enabled bool) EmulatorOption {
	return func(e *Emulator) {
		e.traceEnabled = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithInstructionCache attaches a cache model that records instruction fetches.
func WithInstructionCache(c *cache.Cache) EmulatorOption {
	return func(e *Emulator) {
		e.icache = c
	}
}

// WithDataCache attaches a cache model that records loads and stores.
func WithDataCache(c *cache.Cache) EmulatorOption {
	return func(e *Emulator) {
		e.dcache = c
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new RV32I emulator. Peripherals and semihosting are
// enabled by default.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:            &RegFile{},
		memory:             nil,
		decoder:            insts.NewDecoder(),
		stdout:             os.Stdout,
		stderr:             os.Stderr,
		logger:             hclog.NewNullLogger(),
		peripheralsEnabled: true,
		semihostingEnabled: true,
	}

	// Apply options first (may set memory and I/O)
	for _, opt := range opts {
		opt(e)
	}

	if e.memory == nil {
		e.memory = NewMemory(DefaultMemorySize)
	}

	e.buildUnits()

	return e
}

// buildUnits creates the execution units over the current state.
func (e *Emulator) buildUnits() {
	e.peripherals = NewPeripherals(e.stdout, e.stderr, e.stdin)

	e.alu = NewALU(e.regFile)
	e.branchUnit = NewBranchUnit(e.regFile)

	var bridge *Peripherals
	if e.peripheralsEnabled {
		bridge = e.peripherals
	}
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory, bridge)
	e.lsu.SetDataCache(e.dcache)

	// If no semihosting handler was provided, create a default one
	if e.semihost == nil {
		e.semihost = NewDefaultSemihostHandler(e.regFile, e.memory, e.stdout)
	}
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Peripherals returns the console bridge.
func (e *Emulator) Peripherals() *Peripherals {
	return e.peripherals
}

// InstructionCache returns the attached instruction cache model, or nil.
func (e *Emulator) InstructionCache() *cache.Cache {
	return e.icache
}

// DataCache returns the attached data cache model, or nil.
func (e *Emulator) DataCache() *cache.Cache {
	return e.dcache
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Disassemble renders word for display.
func (e *Emulator) Disassemble(word uint32) string {
	return e.decoder.Disassemble(word)
}

// LoadProgram copies image into memory at address 0 and sets PC to entry.
// It returns the number of bytes that fit.
func (e *Emulator) LoadProgram(entry uint32, image []byte) int {
	n := e.memory.LoadProgram(image)
	if n < len(image) {
		e.logger.Warn("program image truncated",
			"image_bytes", len(image), "memory_bytes", e.memory.Size())
	}
	e.regFile.PC = entry
	return n
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint32) {
	e.regFile.PC = pc
}

// PC returns the program counter.
func (e *Emulator) PC() uint32 {
	return e.regFile.PC
}

// CurrentWord returns the instruction word at PC without executing it.
func (e *Emulator) CurrentWord() (uint32, error) {
	return e.memory.Read32(e.regFile.PC)
}

// Step executes a single instruction:
// fetch, execute, PC advance, peripheral probe, semihosting check.
func (e *Emulator) Step() StepResult {
	pc := e.regFile.PC

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{PC: pc, Err: ErrInstructionLimit}
	}

	// 1. Fetch: Read 4 bytes at PC
	word, err := e.memory.Read32(pc)
	if err != nil {
		e.logger.Warn("fetch fault", "pc", hexWord(pc), "error", err)
		return StepResult{PC: pc, Err: err}
	}
	if e.icache != nil {
		e.icache.Access(pc, false)
	}

	if e.traceEnabled {
		e.logger.Debug("execute", "pc", hexWord(pc), "word", hexWord(word),
			"inst", e.decoder.Disassemble(word))
	}

	// 2. Execute
	result, redirected, err := e.execute(word)

	var fault *AddressFault
	if errors.As(err, &fault) {
		e.logger.Warn("data fault", "pc", hexWord(pc), "error", err)
		return StepResult{PC: pc, Word: word, Err: err}
	}

	// 3. Advance PC unless the instruction redirected it
	if !redirected {
		e.regFile.PC += 4
	}

	// 4. Peripheral probe at the post-dispatch address. A claimed access
	// ends the step before the semihosting check.
	claimed := e.peripheralsEnabled && e.probePeripherals(word)

	// 5. Semihosting trap
	if !claimed && e.semihostingEnabled && word == insts.EBREAKWord {
		if herr := e.semihost.Handle(); herr != nil {
			e.logger.Warn("semihosting request failed", "pc", hexWord(pc), "error", herr)
			_, _ = fmt.Fprintf(e.stderr, "semihosting: %v\n", herr)
		}
	}

	e.instructionCount++

	if err != nil {
		e.logger.Warn("unrecognized instruction", "pc", hexWord(pc), "word", hexWord(word))
	}

	return StepResult{
		PC:         pc,
		Word:       word,
		Result:     result,
		Executed:   true,
		Breakpoint: result.IsBreakpoint(),
		Err:        err,
	}
}

// probePeripherals offers the current PC to the bridge as a write and then
// as a read, carrying the instruction word as the written value. It reports
// whether either access was claimed.
func (e *Emulator) probePeripherals(word uint32) bool {
	addr := e.regFile.PC
	if _, ok := e.peripherals.HandleMemoryAccess(addr, word, true); ok {
		return true
	}
	_, ok := e.peripherals.HandleMemoryAccess(addr, word, false)
	return ok
}

func hexWord(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}
