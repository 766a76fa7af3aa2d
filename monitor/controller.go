// Package monitor provides the step controller that drives an emulator
// either freely or one instruction at a time under operator control.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"

	"github.com/sarchlab/rv32sim/emu"
)

// CommandPrompt is shown before each operator command in stepping mode.
const CommandPrompt = "command (step/continue/exit): "

// Mode is the controller state.
type Mode int

const (
	// ModeRunning executes instructions without prompting.
	ModeRunning Mode = iota
	// ModeStepping shows the next instruction and waits for a command.
	ModeStepping
)

func (m Mode) String() string {
	switch m {
	case ModeRunning:
		return "running"
	case ModeStepping:
		return "stepping"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
)

// Controller drives an Emulator until EBREAK or an exit command, collecting
// the result trace.
type Controller struct {
	emulator  *emu.Emulator
	lines     emu.LineSource
	out       io.Writer
	logger    hclog.Logger
	resetAddr uint32
	mode      Mode
	trace     []emu.Result
}

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithOutput sets the writer for status lines, faults and inspector output.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) {
		c.out = w
	}
}

// WithResetAddress sets the address the reset command jumps to.
func WithResetAddress(addr uint32) Option {
	return func(c *Controller) {
		c.resetAddr = addr
	}
}

// WithStepping starts the controller in stepping mode.
func WithStepping(stepping bool) Option {
	return func(c *Controller) {
		if stepping {
			c.mode = ModeStepping
		} else {
			c.mode = ModeRunning
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a controller over e. Commands are read from lines.
// The controller starts in running mode unless WithStepping is given.
func NewController(e *emu.Emulator, lines emu.LineSource, opts ...Option) *Controller {
	c := &Controller{
		emulator:  e,
		lines:     lines,
		out:       os.Stdout,
		logger:    hclog.NewNullLogger(),
		resetAddr: e.PC(),
		mode:      ModeRunning,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Mode returns the current controller state.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Trace returns the results collected so far.
func (c *Controller) Trace() []emu.Result {
	return c.trace
}

// Run executes until EBREAK, an exit command, or the end of command input,
// and returns the ordered result trace. When it ends on EBREAK the last
// entry is the breakpoint marker.
func (c *Controller) Run() []emu.Result {
	for {
		if c.mode == ModeRunning {
			if c.step() {
				return c.trace
			}
			continue
		}

		c.showNext()

		line, err := c.lines.ReadLine(CommandPrompt)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Error("reading command", "error", err)
			}
			return c.trace
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			c.logger.Debug("ignoring command", "line", line, "error", err)
			fmt.Fprintf(c.out, "unknown command %q (type help)\n", line)
			continue
		}

		if done := c.execute(cmd); done {
			return c.trace
		}
	}
}

// execute applies an operator command. It returns true when the run is over.
func (c *Controller) execute(cmd Command) bool {
	switch cmd.Kind {
	case CommandStep:
		return c.step()
	case CommandContinue:
		c.setMode(ModeRunning)
	case CommandExit:
		c.logger.Info("exit requested", "pc", fmt.Sprintf("%#x", c.emulator.PC()))
		return true
	case CommandReset:
		c.emulator.SetPC(c.resetAddr)
	case CommandRegs:
		DumpRegisters(c.out, c.emulator.RegFile())
	case CommandHelp:
		fmt.Fprint(c.out, helpText)
	case CommandExamine:
		if err := DumpMemory(c.out, c.emulator.Memory(), cmd.Address, cmd.Count); err != nil {
			errorColor.Fprintf(c.out, "Error: %v\n", err)
		}
	}
	return false
}

// step executes one instruction and records its result. Faults and the
// instruction limit are reported and force stepping mode. It returns true
// on EBREAK.
func (c *Controller) step() bool {
	r := c.emulator.Step()

	var (
		fault        *emu.AddressFault
		unrecognized *emu.UnrecognizedInstruction
	)
	switch {
	case errors.As(r.Err, &fault), errors.Is(r.Err, emu.ErrInstructionLimit):
		errorColor.Fprintf(c.out, "Error: %v\n", r.Err)
		c.setMode(ModeStepping)
		return false
	case errors.As(r.Err, &unrecognized):
		warningColor.Fprintf(c.out, "Warning: %v\n", r.Err)
	case r.Err != nil:
		errorColor.Fprintf(c.out, "Error: %v\n", r.Err)
	}

	if r.Executed {
		c.trace = append(c.trace, r.Result)
	}
	return r.Breakpoint
}

// showNext prints the PC and the disassembly of the word there.
func (c *Controller) showNext() {
	pc := c.emulator.PC()
	word, err := c.emulator.CurrentWord()
	if err != nil {
		fmt.Fprintf(c.out, "PC: %#x, Instruction: <%v>\n", pc, err)
		return
	}
	fmt.Fprintf(c.out, "PC: %#x, Instruction: %s\n", pc, c.emulator.Disassemble(word))
}

func (c *Controller) setMode(m Mode) {
	if c.mode != m {
		c.logger.Debug("mode change", "from", c.mode, "to", m)
	}
	c.mode = m
}
