package dagview

import "dagcfg/instruction"

// Extract returns the sub-DAG of instructions transitively reachable from
// roots (C3), walking both conditional and unconditional edges via an
// iterative DFS over the combined View.Successors relation — a
// conditionally-reachable instruction is still part of the sub-DAG that must
// survive into reduction. Returns an empty slice if roots is empty (spec
// §4.3: "fails silently... if dependencies list is empty").
//
// Ported from InstructionDAGExtractor in dag2ir.py.
func Extract(v *View, roots []instruction.ID) []instruction.Instruction {
	if len(roots) == 0 {
		return nil
	}

	stack := make([]int, 0, len(roots))
	for _, r := range roots {
		if n, ok := v.GetNumberForID(r); ok {
			stack = append(stack, n)
		}
	}

	reachable := make(map[int]struct{})
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reachable[top]; seen {
			continue
		}
		reachable[top] = struct{}{}
		stack = append(stack, v.Successors(top)...)
	}

	out := make([]instruction.Instruction, 0, len(reachable))
	for n := 0; n < v.NumVertices(); n++ {
		if _, ok := reachable[n]; ok {
			out = append(out, v.InstructionAt(n))
		}
	}
	return out
}
