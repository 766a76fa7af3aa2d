// Package monitor provides the step controller that drives an emulator
// either freely or one instruction at a time under operator control.
package monitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// CommandKind identifies an operator command.
type CommandKind int

// Operator commands.
const (
	CommandStep CommandKind = iota
	CommandContinue
	CommandExit
	CommandReset
	CommandRegs
	CommandHelp
	CommandExamine
)

var commandNames = map[CommandKind]string{
	CommandStep:     "step",
	CommandContinue: "continue",
	CommandExit:     "exit",
	CommandReset:    "reset",
	CommandRegs:     "regs",
	CommandHelp:     "help",
	CommandExamine:  "x",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is a parsed operator command. Count and Address are only set for
// CommandExamine.
type Command struct {
	Kind    CommandKind
	Count   uint32
	Address uint32
}

// commandLine is the grammar root: either an examine request or a keyword.
type commandLine struct {
	Examine *examineArgs `  @@`
	Keyword string       `| @("step" | "continue" | "exit" | "reset" | "regs" | "help")`
}

// examineArgs: x COUNT/ADDRESS
type examineArgs struct {
	Count   string `"x" @Number "/"`
	Address string `@(Number | Ident)`
}

var commandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Number", Pattern: `(0[xX])?[0-9a-fA-F]+`},
	{Name: "Punct", Pattern: `/`},
})

var commandParser = participle.MustBuild[commandLine](
	participle.Lexer(commandLexer),
	participle.Elide("Whitespace"),
)

var keywordKinds = map[string]CommandKind{
	"step":     CommandStep,
	"continue": CommandContinue,
	"exit":     CommandExit,
	"reset":    CommandReset,
	"regs":     CommandRegs,
	"help":     CommandHelp,
}

// ParseCommand parses one line of operator input. Commands are
// case-sensitive. In "x COUNT/ADDRESS" COUNT is decimal and ADDRESS is hex,
// with or without a 0x prefix.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, fmt.Errorf("empty command")
	}

	ast, err := commandParser.ParseString("", line)
	if err != nil {
		return Command{}, fmt.Errorf("parse %q: %w", line, err)
	}

	if ast.Examine != nil {
		return ast.Examine.command()
	}

	kind, ok := keywordKinds[ast.Keyword]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", line)
	}
	return Command{Kind: kind}, nil
}

func (a *examineArgs) command() (Command, error) {
	count, err := strconv.ParseUint(a.Count, 10, 32)
	if err != nil {
		return Command{}, fmt.Errorf("invalid count %q: %w", a.Count, err)
	}

	digits := strings.TrimPrefix(strings.ToLower(a.Address), "0x")
	addr, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Command{}, fmt.Errorf("invalid address %q: %w", a.Address, err)
	}

	return Command{
		Kind:    CommandExamine,
		Count:   uint32(count),
		Address: uint32(addr),
	}, nil
}

const helpText = `commands:
  step             execute one instruction
  continue         run until EBREAK or a fault
  exit             stop and return the result trace
  reset            set PC to the reset address
  regs             print the register file
  x COUNT/ADDRESS  dump COUNT bytes from hex ADDRESS
  help             print this list
`
