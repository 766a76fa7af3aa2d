// Package main provides the rv32sim command-line interface.
//
// Usage:
//
//	rv32sim run [flags] <program>
//	rv32sim dump [flags] <program>
//	rv32sim config [flags]
//
// Configuration is read from defaults, an optional file given with --config,
// RV32SIM_* environment variables and flags, in increasing precedence.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var errorColor = color.New(color.FgRed, color.Bold)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = errorColor.Fprintf(os.Stderr, "Error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
