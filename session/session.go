// Package session wires a configuration and a program image into one
// emulation run and reports its outcome.
package session

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/sarchlab/rv32sim/cache"
	"github.com/sarchlab/rv32sim/config"
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/monitor"
	"github.com/sarchlab/rv32sim/reorder"
)

// Session runs programs under one configuration.
type Session struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	lines  emu.LineSource
	logger hclog.Logger
	runID  string
}

// Option is a functional option for configuring a Session.
type Option func(*Session)

// WithStdout sets where program output and controller messages go.
func WithStdout(w io.Writer) Option {
	return func(s *Session) {
		s.stdout = w
	}
}

// WithStderr sets where the console-err peripheral writes.
func WithStderr(w io.Writer) Option {
	return func(s *Session) {
		s.stderr = w
	}
}

// WithLineSource sets the source of operator commands and console input.
func WithLineSource(lines emu.LineSource) Option {
	return func(s *Session) {
		s.lines = lines
	}
}

// WithLogger sets the logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRunID sets the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(s *Session) {
		s.runID = id
	}
}

// New validates cfg and creates a session. Without WithLineSource, commands
// and console input are read from os.Stdin.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Session{
		cfg:    cfg.Clone(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: hclog.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.lines == nil {
		s.lines = emu.NewReaderLineSource(os.Stdin, s.stdout)
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	s.logger = s.logger.With("run", s.runID)

	return s, nil
}

// RunID returns the identifier attached to this session's logs and report.
func (s *Session) RunID() string {
	return s.runID
}

// NewEmulator builds an emulator from the session configuration with
// caches attached as configured.
func (s *Session) NewEmulator() *emu.Emulator {
	opts := []emu.EmulatorOption{
		emu.WithMemorySize(s.cfg.MemSize),
		emu.WithStdout(s.stdout),
		emu.WithStderr(s.stderr),
		emu.WithStdin(s.lines),
		emu.WithPeripherals(s.cfg.Peripherals),
		emu.WithSemihosting(s.cfg.Semihosting),
		emu.WithTrace(s.cfg.Trace),
		emu.WithMaxInstructions(s.cfg.MaxInstructions),
		emu.WithLogger(s.logger.Named("emu")),
	}
	if s.cfg.ICache.Enabled {
		opts = append(opts, emu.WithInstructionCache(cache.New(s.cfg.ICache.Config)))
	}
	if s.cfg.DCache.Enabled {
		opts = append(opts, emu.WithDataCache(cache.New(s.cfg.DCache.Config)))
	}
	return emu.NewEmulator(opts...)
}

// Run loads img at address 0, applies the reorder pass if configured,
// drives the controller from the reset address and returns the report.
func (s *Session) Run(img *loader.Image) (*Report, error) {
	e := s.NewEmulator()

	loaded := e.LoadProgram(s.cfg.ResetAddr, img.Data)
	s.logger.Info("program loaded",
		"bytes", loaded,
		"reset_addr", fmt.Sprintf("%#x", s.cfg.ResetAddr))
	if img.HasEntry && img.Entry != s.cfg.ResetAddr {
		s.logger.Warn("ELF entry differs from the reset address",
			"entry", fmt.Sprintf("%#x", img.Entry),
			"reset_addr", fmt.Sprintf("%#x", s.cfg.ResetAddr))
	}

	var pass *reorder.Pass
	if s.cfg.Reorder {
		pass = reorder.NewPass(e.Memory(), s.cfg.ResetAddr, programEnd(loaded),
			reorder.WithLogger(s.logger.Named("reorder")))
		if err := pass.Apply(); err != nil {
			return nil, err
		}
	}

	ctrl := monitor.NewController(e, s.lines,
		monitor.WithOutput(s.stdout),
		monitor.WithResetAddress(s.cfg.ResetAddr),
		monitor.WithStepping(s.cfg.Step),
		monitor.WithLogger(s.logger.Named("monitor")))

	trace := ctrl.Run()

	report := &Report{
		RunID:        s.runID,
		Trace:        trace,
		Registers:    e.RegFile().Snapshot(),
		PC:           e.PC(),
		Instructions: e.InstructionCount(),
		Mode:         ctrl.Mode(),
	}

	if pass != nil {
		report.Trace = pass.Restore(trace)
		report.Reordered = true
		report.Committed = pass.Committed()
	}
	if c := e.InstructionCache(); c != nil {
		stats := c.Stats()
		report.ICache = &stats
	}
	if c := e.DataCache(); c != nil {
		stats := c.Stats()
		report.DCache = &stats
	}

	s.logger.Info("run finished",
		"instructions", report.Instructions,
		"trace", len(report.Trace),
		"breakpoint", report.EndedOnBreakpoint())

	return report, nil
}

// programEnd rounds the loaded image length up to a whole word. The reorder
// pass covers [reset_addr, programEnd) so the zero padding below the reset
// address and the unused memory above the image stay in place.
func programEnd(loaded int) uint32 {
	return uint32((loaded + 3) &^ 3)
}
