// Package dagview wraps a flat instruction set in a numbered graph view (C1),
// and provides the two graph-prep passes that run before reduction: the
// Entry/Exit augmenter (C2) and the reachability extractor (C3).
package dagview

import (
	"fmt"
	"sort"

	"dagcfg/diagnostic"
	"dagcfg/instruction"
)

// View indexes an instruction set with a stable integer numbering and
// exposes, per vertex, the combined/unconditional/conditional successor
// sets spec §4.1 calls for.
//
// "successors(n)" returns the predecessors in the dependency sense (the
// instructions n depends on, conditionally or unconditionally) translated to
// numbers; the view exists precisely so that callers iterate by number, in
// an order a topological sort over this relation will respect, rather than
// walking raw string IDs (spec: "the view reverses the depends_on relation
// so that iteration proceeds in execution order").
type View struct {
	byNumber []instruction.Instruction
	numberOf map[instruction.ID]int

	uncond [][]int
	cond   [][]int
}

// New builds a View over instructions, numbering them by sorting IDs
// lexicographically (spec §5: "sorting IDs lexicographically" is an
// acceptable stable total order). It fails on duplicate IDs or dangling
// references, per spec §7's malformed-DAG taxonomy.
func New(instructions []instruction.Instruction) (*View, error) {
	ids := make([]string, 0, len(instructions))
	byID := make(map[instruction.ID]instruction.Instruction, len(instructions))
	for _, inst := range instructions {
		id := inst.InstructionID()
		if _, dup := byID[id]; dup {
			return nil, diagnostic.New(diagnostic.CodeDuplicateID,
				"duplicate instruction ID", string(id))
		}
		byID[id] = inst
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	v := &View{
		numberOf: make(map[instruction.ID]int, len(ids)),
	}
	for n, s := range ids {
		id := instruction.ID(s)
		v.byNumber = append(v.byNumber, byID[id])
		v.numberOf[id] = n
	}

	v.uncond = make([][]int, len(v.byNumber))
	v.cond = make([][]int, len(v.byNumber))
	for n, inst := range v.byNumber {
		uncondSet := make(map[int]struct{})
		for _, dep := range inst.DependsOn() {
			depN, ok := v.numberOf[dep]
			if !ok {
				return nil, diagnostic.New(diagnostic.CodeDanglingReference,
					"instruction depends on an unknown ID",
					string(inst.InstructionID()), string(dep))
			}
			if _, seen := uncondSet[depN]; !seen {
				uncondSet[depN] = struct{}{}
				v.uncond[n] = append(v.uncond[n], depN)
			}
		}

		condSet := make(map[int]struct{})
		if ifInst, ok := inst.(*instruction.If); ok {
			for _, dep := range append(append([]instruction.ID{}, ifInst.ThenDependsOn...), ifInst.ElseDependsOn...) {
				depN, ok := v.numberOf[dep]
				if !ok {
					return nil, diagnostic.New(diagnostic.CodeDanglingReference,
						"If instruction references an unknown ID",
						string(inst.InstructionID()), string(dep))
				}
				if _, isUncond := uncondSet[depN]; isUncond {
					continue
				}
				if _, seen := condSet[depN]; !seen {
					condSet[depN] = struct{}{}
					v.cond[n] = append(v.cond[n], depN)
				}
			}
		}
		sort.Ints(v.uncond[n])
		sort.Ints(v.cond[n])
	}

	if err := v.checkAcyclic(); err != nil {
		return nil, err
	}

	return v, nil
}

// NumVertices returns the number of instructions in the view.
func (v *View) NumVertices() int { return len(v.byNumber) }

// GetNumberForID returns the stable number assigned to id.
func (v *View) GetNumberForID(id instruction.ID) (int, bool) {
	n, ok := v.numberOf[id]
	return n, ok
}

// GetIDForNumber returns the instruction ID assigned to number n.
func (v *View) GetIDForNumber(n int) instruction.ID {
	return v.byNumber[n].InstructionID()
}

// InstructionAt returns the instruction assigned number n.
func (v *View) InstructionAt(n int) instruction.Instruction {
	return v.byNumber[n]
}

// Successors returns all of n's dependency-sense predecessors, conditional
// and unconditional, as numbers.
func (v *View) Successors(n int) []int {
	out := append([]int{}, v.uncond[n]...)
	out = append(out, v.cond[n]...)
	sort.Ints(out)
	return out
}

// UnconditionalEdges returns the subset of Successors(n) contributed by
// DependsOn alone.
func (v *View) UnconditionalEdges(n int) []int {
	return v.uncond[n]
}

// ConditionalEdges returns the subset of Successors(n) contributed by an
// If's ThenDependsOn/ElseDependsOn, excluding anything already unconditional.
func (v *View) ConditionalEdges(n int) []int {
	return v.cond[n]
}

// checkAcyclic verifies invariant I1 via iterative coloring DFS (white/gray/
// black), reporting the first instruction ID found to participate in a
// cycle.
func (v *View) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(v.byNumber))

	type frame struct {
		node    int
		edgeIdx int
	}

	for start := 0; start < len(v.byNumber); start++ {
		if color[start] != white {
			continue
		}
		stack := []frame{{node: start}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succs := v.Successors(top.node)
			if top.edgeIdx < len(succs) {
				next := succs[top.edgeIdx]
				top.edgeIdx++
				switch color[next] {
				case white:
					color[next] = gray
					stack = append(stack, frame{node: next})
				case gray:
					return diagnostic.New(diagnostic.CodeCyclicDependency,
						fmt.Sprintf("cycle involving instruction %q", v.GetIDForNumber(next)),
						string(v.GetIDForNumber(next)))
				case black:
					// already fully explored, no cycle through here
				}
				continue
			}
			color[top.node] = black
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}
