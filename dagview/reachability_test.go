package dagview

import (
	"testing"

	"dagcfg/instruction"
)

func TestExtractReturnsNilOnEmptyRoots(t *testing.T) {
	insts := []instruction.Instruction{&instruction.Entry{ID: "entry"}}
	v, err := New(insts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := Extract(v, nil); got != nil {
		t.Errorf("Extract with empty roots = %v, expected nil", got)
	}
}

func TestExtractOnlyReachableInstructions(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.Entry{ID: "entry"},
		&instruction.AssignExpression{ID: "used", Deps: []instruction.ID{"entry"}, LHS: "x"},
		&instruction.AssignExpression{ID: "unused", Deps: []instruction.ID{"entry"}, LHS: "y"},
	}
	v, err := New(insts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reached := Extract(v, []instruction.ID{"used"})
	if len(reached) != 2 {
		t.Fatalf("len(reached) = %d, expected 2 (used + entry)", len(reached))
	}
	for _, inst := range reached {
		if inst.InstructionID() == "unused" {
			t.Error("Extract should not include an instruction unreachable from roots")
		}
	}
}

func TestExtractWalksConditionalEdgesToo(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.Entry{ID: "entry"},
		&instruction.AssignExpression{ID: "thenOnly", Deps: []instruction.ID{"entry"}, LHS: "x"},
		&instruction.If{
			ID:            "if1",
			Deps:          []instruction.ID{"entry"},
			ThenDependsOn: []instruction.ID{"thenOnly"},
		},
	}
	v, err := New(insts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reached := Extract(v, []instruction.ID{"if1"})
	found := false
	for _, inst := range reached {
		if inst.InstructionID() == "thenOnly" {
			found = true
		}
	}
	if !found {
		t.Error("Extract should walk conditional edges reachable from roots")
	}
}
