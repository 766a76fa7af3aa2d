package main

import (
	"io"
	"os"

	prompt "github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"

	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/monitor"
)

var commandSuggestions = []prompt.Suggest{
	{Text: "step", Description: "execute one instruction"},
	{Text: "continue", Description: "run until a breakpoint or fault"},
	{Text: "exit", Description: "stop the run"},
	{Text: "reset", Description: "move PC back to the reset address"},
	{Text: "regs", Description: "print the register file"},
	{Text: "x", Description: "x COUNT/ADDRESS: dump memory"},
	{Text: "help", Description: "list commands"},
}

// promptLineSource reads lines from an interactive terminal with history
// and command completion. Ctrl-D yields an empty line.
type promptLineSource struct {
	history []string
}

func (p *promptLineSource) ReadLine(prefix string) (string, error) {
	completer := completeNothing
	if prefix == monitor.CommandPrompt {
		completer = completeCommand
	}

	line := prompt.Input(prefix, completer,
		prompt.OptionHistory(p.history),
		prompt.OptionPrefixTextColor(prompt.Cyan))
	if line != "" {
		p.history = append(p.history, line)
	}

	return line, nil
}

func completeCommand(d prompt.Document) []prompt.Suggest {
	word := d.GetWordBeforeCursor()
	if word == "" {
		return nil
	}
	return prompt.FilterHasPrefix(commandSuggestions, word, true)
}

func completeNothing(prompt.Document) []prompt.Suggest {
	return nil
}

// newLineSource picks the interactive prompt when in is a terminal and a
// plain line reader otherwise.
func newLineSource(in io.Reader, out io.Writer) emu.LineSource {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return &promptLineSource{}
	}
	return emu.NewReaderLineSource(in, out)
}
