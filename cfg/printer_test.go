package cfg

import (
	"strings"
	"testing"

	"dagcfg/instruction"
)

func TestPrintIncludesFunctionNameAndBlocks(t *testing.T) {
	fn := NewFunction("step")
	b := fn.NewBlock()
	b.AddAssignment("x", instruction.Const{Value: 1})
	b.AddReturn()
	fn.Entry = b

	out := Print(fn)

	if !strings.Contains(out, "FUNCTION step") {
		t.Errorf("Print output missing function header: %q", out)
	}
	if !strings.Contains(out, "bb0") {
		t.Errorf("Print output missing block label: %q", out)
	}
	if !strings.Contains(out, "return") {
		t.Errorf("Print output missing terminator: %q", out)
	}
}

func TestPrintRendersBranchTargets(t *testing.T) {
	fn := NewFunction("branching")
	then := fn.NewBlock()
	els := fn.NewBlock()
	start := fn.NewBlock()
	then.AddReturn()
	els.AddReturn()
	start.AddBranch(instruction.Const{Value: true}, then, els)
	fn.Entry = start

	out := Print(fn)
	if !strings.Contains(out, "branch") || !strings.Contains(out, "bb0") || !strings.Contains(out, "bb1") {
		t.Errorf("Print output missing branch targets: %q", out)
	}
}

func TestFunctionStringDelegatesToPrint(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	b.AddReturn()
	fn.Entry = b

	if fn.String() != Print(fn) {
		t.Error("Function.String() should delegate to Print")
	}
}
