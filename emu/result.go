// Package emu provides functional RV32I emulation.
package emu

import "fmt"

// ResultKind classifies the value an instruction contributes to the trace.
type ResultKind uint8

// Result kinds.
const (
	// ResultNone marks an instruction with no data result (stores, ECALL,
	// unrecognized instructions).
	ResultNone ResultKind = iota
	// ResultValue carries a loaded value, ALU result, branch target or
	// link address.
	ResultValue
	// ResultBreakpoint is the EBREAK marker that ends a run.
	ResultBreakpoint
)

// Result is the per-instruction entry of the result trace.
type Result struct {
	Kind  ResultKind
	Value uint32
}

// NoResult is the sentinel for instructions without a data result.
var NoResult = Result{Kind: ResultNone}

// BreakpointResult is the EBREAK marker.
var BreakpointResult = Result{Kind: ResultBreakpoint}

// ValueResult wraps a data result.
func ValueResult(v uint32) Result {
	return Result{Kind: ResultValue, Value: v}
}

// IsBreakpoint reports whether r is the EBREAK marker.
func (r Result) IsBreakpoint() bool {
	return r.Kind == ResultBreakpoint
}

func (r Result) String() string {
	switch r.Kind {
	case ResultValue:
		return fmt.Sprintf("0x%08x", r.Value)
	case ResultBreakpoint:
		return "EBREAK"
	default:
		return "-"
	}
}
