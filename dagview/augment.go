package dagview

import (
	"fmt"

	"dagcfg/diagnostic"
	"dagcfg/instruction"
)

// Augment returns a new, augmented instruction set that includes a fresh
// Entry and Exit instruction (C2). Every original instruction's DependsOn
// gains the Entry ID; Exit's DependsOn is [entry] ++ roots. The input slice
// is never mutated, and no original instruction is mutated in place — each
// is copied with an extended dependency list (spec §4.2 contract).
//
// Ported from InstructionDAGEntryExitAugmenter in the original Python
// implementation (dag2ir.py), generalized to Go's closed instruction sum
// type via a type switch per instruction kind.
func Augment(instructions []instruction.Instruction, roots []instruction.ID) ([]instruction.Instruction, instruction.ID, instruction.ID) {
	existing := make(map[instruction.ID]struct{}, len(instructions)+2)
	for _, inst := range instructions {
		existing[inst.InstructionID()] = struct{}{}
	}

	entryID := freshName("entry", existing)
	existing[entryID] = struct{}{}
	exitID := freshName("exit", existing)
	existing[exitID] = struct{}{}

	out := make([]instruction.Instruction, 0, len(instructions)+2)
	out = append(out, &instruction.Entry{ID: entryID})

	exitDeps := append([]instruction.ID{entryID}, roots...)
	out = append(out, &instruction.Exit{ID: exitID, Deps: exitDeps})

	for _, inst := range instructions {
		out = append(out, withEntryDependency(inst, entryID))
	}

	return out, entryID, exitID
}

// withEntryDependency returns a copy of inst with entryID prepended to its
// DependsOn set, deduplicated. The copy never aliases the original's slices.
func withEntryDependency(inst instruction.Instruction, entryID instruction.ID) instruction.Instruction {
	deps := prependUnique(entryID, inst.DependsOn())

	switch n := inst.(type) {
	case *instruction.Entry:
		return &instruction.Entry{ID: n.ID}
	case *instruction.Exit:
		return &instruction.Exit{ID: n.ID, Deps: deps}
	case *instruction.AssignExpression:
		return &instruction.AssignExpression{ID: n.ID, Deps: deps, LHS: n.LHS, RHS: n.RHS}
	case *instruction.AssignSolvedRHS:
		return &instruction.AssignSolvedRHS{ID: n.ID, Deps: deps, LHS: n.LHS, RHS: n.RHS}
	case *instruction.If:
		return &instruction.If{
			ID:            n.ID,
			Deps:          deps,
			Condition:     n.Condition,
			ThenDependsOn: append([]instruction.ID{}, n.ThenDependsOn...),
			ElseDependsOn: append([]instruction.ID{}, n.ElseDependsOn...),
		}
	case *instruction.YieldState:
		return &instruction.YieldState{
			ID: n.ID, Deps: deps, Time: n.Time, TimeID: n.TimeID,
			ComponentID: n.ComponentID, Expression: n.Expression,
		}
	case *instruction.Raise:
		return &instruction.Raise{ID: n.ID, Deps: deps, Error: n.Error}
	case *instruction.FailStep:
		return &instruction.FailStep{ID: n.ID, Deps: deps}
	default:
		diagnostic.Abort(diagnostic.New(diagnostic.CodeUnrecognizedVariant,
			fmt.Sprintf("unrecognized instruction variant %T", inst),
			string(inst.InstructionID())))
		panic("unreachable")
	}
}

func prependUnique(id instruction.ID, rest []instruction.ID) []instruction.ID {
	out := make([]instruction.ID, 0, len(rest)+1)
	out = append(out, id)
	for _, r := range rest {
		if r == id {
			continue
		}
		out = append(out, r)
	}
	return out
}

// freshName returns a name built from prefix that does not collide with any
// ID in existing, trying prefix, then prefix_2, prefix_3, ... (mirrors
// get_unique_name in the original Python implementation).
func freshName(prefix string, existing map[instruction.ID]struct{}) instruction.ID {
	candidate := instruction.ID(prefix)
	if _, taken := existing[candidate]; !taken {
		return candidate
	}
	for i := 2; ; i++ {
		candidate = instruction.ID(fmt.Sprintf("%s_%d", prefix, i))
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}
