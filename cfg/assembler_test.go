package cfg

import (
	"testing"

	"dagcfg/instruction"
)

func neverState(string) bool { return false }

func countBlockKind(fn *Function, check func(Terminator) bool) int {
	n := 0
	for _, b := range fn.Blocks {
		if check(b.Terminator) {
			n++
		}
	}
	return n
}

func TestAssembleLinearChainProducesWellFormedFunction(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.AssignExpression{ID: "a1", LHS: "x", RHS: instruction.Const{Value: 1}},
		&instruction.AssignExpression{ID: "a2", Deps: []instruction.ID{"a1"}, LHS: "y", RHS: instruction.Const{Value: 2}},
	}

	fn, err := Assemble("step", insts, []instruction.ID{"a2"}, neverState)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !fn.AllTerminated() {
		t.Fatal("every emitted block must be terminated")
	}
	if fn.Entry == nil {
		t.Fatal("Function.Entry must be set")
	}
	if countBlockKind(fn, func(term Terminator) bool { _, ok := term.(Return); return ok }) == 0 {
		t.Error("a linear chain must reach a Return terminator")
	}
}

func TestAssembleDiamondBranchesAndJoins(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.AssignExpression{ID: "thenBranch", LHS: "a", RHS: instruction.Const{Value: 1}},
		&instruction.AssignExpression{ID: "elseBranch", LHS: "b", RHS: instruction.Const{Value: 2}},
		&instruction.If{
			ID:            "if1",
			Condition:     instruction.Const{Value: true},
			ThenDependsOn: []instruction.ID{"thenBranch"},
			ElseDependsOn: []instruction.ID{"elseBranch"},
		},
	}

	fn, err := Assemble("branching_step", insts, []instruction.ID{"if1"}, neverState)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !fn.AllTerminated() {
		t.Fatal("every emitted block must be terminated")
	}
	if countBlockKind(fn, func(term Terminator) bool { _, ok := term.(Branch); return ok }) == 0 {
		t.Error("an If instruction must emit at least one Branch terminator")
	}
}

func TestAssembleYieldStateDoesNotTerminateItsBlock(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.YieldState{
			ID:          "y1",
			Time:        instruction.Const{Value: 0.0},
			TimeID:      "t",
			ComponentID: "c0",
			Expression:  instruction.Const{Value: 1.0},
		},
	}

	fn, err := Assemble("observer", insts, []instruction.ID{"y1"}, neverState)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	foundYield := false
	for _, b := range fn.Blocks {
		for _, stmt := range b.Statements {
			if _, ok := stmt.(YieldStateStmt); ok {
				foundYield = true
				if !b.Terminated() {
					t.Error("block containing a yield must still end in a terminator")
				}
			}
		}
	}
	if !foundYield {
		t.Fatal("expected a YieldStateStmt somewhere in the assembled function")
	}
}

// FailStep and Raise only ever appear as the divergent arm of an If: the
// normal continuation (what Exit actually depends on through roots) takes
// the other arm, so the diverging arm terminates its own block early without
// needing to rejoin the main sequence.

func TestAssembleFailStepTerminatesItsBranchWithoutJoining(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.AssignExpression{ID: "ok", LHS: "x", RHS: instruction.Const{Value: 1}},
		&instruction.FailStep{ID: "f1"},
		&instruction.If{
			ID:            "if1",
			Condition:     instruction.Const{Value: true},
			ThenDependsOn: []instruction.ID{"ok"},
			ElseDependsOn: []instruction.ID{"f1"},
		},
	}

	fn, err := Assemble("retry_step", insts, []instruction.ID{"if1"}, neverState)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !fn.AllTerminated() {
		t.Fatal("every emitted block must be terminated")
	}
	if countBlockKind(fn, func(term Terminator) bool { _, ok := term.(FailStepTerm); return ok }) != 1 {
		t.Error("expected exactly one FailStepTerm terminator")
	}
}

func TestAssembleRaisePropagatesError(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.AssignExpression{ID: "ok", LHS: "x", RHS: instruction.Const{Value: 1}},
		&instruction.Raise{ID: "r1", Error: instruction.Const{Value: "boom"}},
		&instruction.If{
			ID:            "if1",
			Condition:     instruction.Const{Value: true},
			ThenDependsOn: []instruction.ID{"ok"},
			ElseDependsOn: []instruction.ID{"r1"},
		},
	}

	fn, err := Assemble("raising_step", insts, []instruction.ID{"if1"}, neverState)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !fn.AllTerminated() {
		t.Fatal("every emitted block must be terminated")
	}
	if countBlockKind(fn, func(term Terminator) bool { _, ok := term.(RaiseTerm); return ok }) != 1 {
		t.Error("expected exactly one RaiseTerm terminator")
	}
}

func TestAssembleRejectsCyclicInput(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.AssignExpression{ID: "a1", Deps: []instruction.ID{"a2"}, LHS: "x"},
		&instruction.AssignExpression{ID: "a2", Deps: []instruction.ID{"a1"}, LHS: "y"},
	}

	_, err := Assemble("cyclic", insts, []instruction.ID{"a2"}, neverState)
	if err == nil {
		t.Fatal("expected an error for a cyclic instruction graph, got nil")
	}
}

func TestAssembleRegistersGlobalsViaIsStateVariable(t *testing.T) {
	insts := []instruction.Instruction{
		&instruction.AssignExpression{ID: "a1", LHS: "balance", RHS: instruction.Const{Value: 10}},
	}
	isState := func(name string) bool { return name == "balance" }

	fn, err := Assemble("writer", insts, []instruction.ID{"a1"}, isState)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	sym, ok := fn.Symbols.Lookup("balance")
	if !ok {
		t.Fatal("expected 'balance' to be registered in the symbol table")
	}
	if !sym.IsGlobal {
		t.Error("'balance' should be registered as global per the supplied predicate")
	}
}

func TestAssembleDiamondMergeRunsSharedAncestorOnce(t *testing.T) {
	// "final" unconditionally depends on both "left" and "right", each of
	// which unconditionally depends on "base" — a genuine DAG merge (no
	// branching). The flag guard must stop "base" from being emitted twice
	// once the second arm reaches it.
	insts := []instruction.Instruction{
		&instruction.AssignExpression{ID: "base", LHS: "s", RHS: instruction.Const{Value: 0}},
		&instruction.AssignExpression{ID: "left", Deps: []instruction.ID{"base"}, LHS: "a", RHS: instruction.Const{Value: 1}},
		&instruction.AssignExpression{ID: "right", Deps: []instruction.ID{"base"}, LHS: "b", RHS: instruction.Const{Value: 2}},
		&instruction.AssignExpression{ID: "final", Deps: []instruction.ID{"left", "right"}, LHS: "c", RHS: instruction.Const{Value: 3}},
	}

	fn, err := Assemble("diamond_merge", insts, []instruction.ID{"final"}, neverState)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	sharedAssignments := 0
	for _, b := range fn.Blocks {
		for _, stmt := range b.Statements {
			if a, ok := stmt.(Assignment); ok && a.LHS == "s" {
				sharedAssignments++
			}
		}
	}
	if sharedAssignments != 1 {
		t.Errorf("shared ancestor assigned %d times, expected exactly once", sharedAssignments)
	}
}
