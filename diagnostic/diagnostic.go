// Package diagnostic models the fatal, programmer-error diagnostics this
// core can raise: a malformed DAG, an unrecognized instruction variant, an
// unterminated basic block, or a flag-universe mismatch during a tracker
// meet. There are no warnings and no recoverable errors here — every fault
// aborts compilation (spec §7: "Compilation either produces a well-formed
// Function or fails").
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Code identifies the class of fault. Ranges mirror the teacher's banded
// E0NNN scheme but live in a disjoint D0NNN band.
type Code string

const (
	// D0001: the instruction graph contains a cycle.
	CodeCyclicDependency Code = "D0001"
	// D0002: an instruction's depends_on (or then/else) set references an ID
	// absent from the instruction set.
	CodeDanglingReference Code = "D0002"
	// D0003: two instructions share the same ID.
	CodeDuplicateID Code = "D0003"
	// D0004: a value does not match any known instruction.Instruction variant.
	CodeUnrecognizedVariant Code = "D0004"
	// D0005: a basic block was left without a terminator after assembly.
	CodeUnterminatedBlock Code = "D0005"
	// D0006: a FlagTracker meet was attempted across trackers with different
	// flag universes.
	CodeFlagUniverseMismatch Code = "D0006"
)

var descriptions = map[Code]string{
	CodeCyclicDependency:     "instruction dependency graph contains a cycle",
	CodeDanglingReference:    "instruction references an unknown instruction ID",
	CodeDuplicateID:          "duplicate instruction ID",
	CodeUnrecognizedVariant:  "unrecognized instruction variant",
	CodeUnterminatedBlock:    "basic block has no terminator",
	CodeFlagUniverseMismatch: "flag tracker meet across mismatched flag universes",
}

// Describe returns a human-readable description of a fault code.
func Describe(c Code) string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return "unknown fault"
}

// Fault is a fatal, programmer-error diagnostic implementing error. Some
// functions return it directly (dagview.New); others panic with it through
// Abort, and cfg.Assemble recovers such panics and returns the Fault as its
// error, so callers of Assemble can decide how to surface it.
type Fault struct {
	Code    Code
	Message string
	// IDs names the offending instruction or block identifiers, per spec §7
	// ("surfaced as a fatal compile error to the caller with the offending
	// ID(s)").
	IDs []string
}

func New(code Code, message string, ids ...string) *Fault {
	return &Fault{Code: code, Message: message, IDs: ids}
}

func (f *Fault) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", f.Code, f.Message)
	if len(f.IDs) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(f.IDs, ", "))
	}
	return b.String()
}

// Abort panics with f. It is reserved for internal invariant violations that
// are programmer errors rather than malformed-input errors — an unrecognized
// instruction variant, an unterminated block, or a flag-universe mismatch
// reached despite the DAG having already passed validation. Callers at the
// top of the pipeline (cfg.Assemble) recover the panic and convert it back
// into a returned error; nothing below that boundary should recover it
// itself.
func Abort(f *Fault) {
	panic(f)
}

// Render formats the fault the way the teacher's ErrorReporter formats a
// CompilerError: a bold, colorized "error[CODE]: message" header followed by
// the offending IDs, one per line.
func (f *Fault) Render() string {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s\n", red("error"), f.Code, bold(f.Message))
	fmt.Fprintf(&b, "  = note: %s\n", Describe(f.Code))
	for _, id := range f.IDs {
		fmt.Fprintf(&b, "  --> instruction %q\n", id)
	}
	return b.String()
}
