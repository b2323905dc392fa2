// Package partition implements the block partitioner (C5): it groups the
// reduced DAG's vertices into maximal straight-line blocks and builds the
// block-level dependency DAG that drives CFG emission.
package partition

import (
	"sort"

	"dagcfg/dagview"
	"dagcfg/instruction"
	"dagcfg/reduce"
)

// Block is an ordered, non-empty sequence of instruction numbers that will
// be emitted as a straight run of statements inside a single flag-guarded
// CFG region. Dependencies appear before dependents within the block.
type Block []int

// Head returns the block's first (least-dependent) instruction number.
func (b Block) Head() int { return b[0] }

// Partition groups v's reduced-DAG vertices into maximal chains and returns
// the block graph plus the instruction->block membership map.
//
// A chain v1 -> v2 -> ... -> vk is maximal when each vi has exactly one
// unconditional successor vi+1 in the reduced graph, and vi+1 has exactly
// one unconditional predecessor (vi). Two instructions land in the same
// block only when they are mutually the sole unconditional link between
// them, so every block boundary is a genuine branch point (spec §4.5).
//
// Block dependencies are computed against the *original*, unreduced view's
// unconditional edges of the block's head instruction, not the reduced
// graph's — the reduction may have elided edges that still constrain
// scheduling between distinct blocks via other paths (spec §4.5 note, §9
// Open Question).
func Partition(original *dagview.View, reduced *reduce.Graph) (blockGraph map[*Block][]*Block, instToBlock map[int]*Block) {
	n := reduced.NumVertices()

	predCount := make([]int, n)
	for u := 0; u < n; u++ {
		for _, s := range reduced.UnconditionalEdges(u) {
			predCount[s]++
		}
	}

	order := topologicalSort(n, reduced)

	visited := make([]bool, n)
	instToBlock = make(map[int]*Block, n)
	var blocks []*Block

	for i := len(order) - 1; i >= 0; i-- {
		start := order[i]
		if visited[start] {
			continue
		}
		members := []int{start}
		visited[start] = true
		cur := start
		for {
			succs := reduced.UnconditionalEdges(cur)
			if len(succs) != 1 {
				break
			}
			next := succs[0]
			if predCount[next] != 1 || visited[next] {
				break
			}
			visited[next] = true
			members = append(members, next)
			cur = next
		}
		for l, r := 0, len(members)-1; l < r; l, r = l+1, r-1 {
			members[l], members[r] = members[r], members[l]
		}
		block := Block(members)
		blocks = append(blocks, &block)
		for _, m := range members {
			instToBlock[m] = &block
		}
	}

	blockGraph = make(map[*Block][]*Block, len(blocks))
	for _, b := range blocks {
		head := b.Head()
		var deps []*Block
		seen := make(map[*Block]struct{})
		for _, p := range original.UnconditionalEdges(head) {
			depBlock := instToBlock[p]
			if _, dup := seen[depBlock]; dup {
				continue
			}
			seen[depBlock] = struct{}{}
			deps = append(deps, depBlock)
		}
		blockGraph[b] = deps
	}

	return blockGraph, instToBlock
}

// topologicalSort returns a topological order over the reduced graph's
// combined edges (deps before dependents), used to pick deterministic block
// heads: the spec's §9 open question on tie-breaking is resolved by scanning
// vertex numbers (themselves derived from sorted instruction IDs) in a fixed
// order rather than iterating a Go map.
func topologicalSort(n int, g *reduce.Graph) []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make([]int, n)
	order := make([]int, 0, n)

	type frame struct {
		node    int
		edgeIdx int
	}

	for start := 0; start < n; start++ {
		if state[start] != white {
			continue
		}
		stack := []frame{{node: start}}
		state[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succs := g.Successors(top.node)
			if top.edgeIdx < len(succs) {
				next := succs[top.edgeIdx]
				top.edgeIdx++
				if state[next] == white {
					state[next] = gray
					stack = append(stack, frame{node: next})
				}
				continue
			}
			state[top.node] = black
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

// InstructionIDs returns the instruction IDs of a block's members, in block
// order, for diagnostics and printing.
func InstructionIDs(v *dagview.View, b *Block) []instruction.ID {
	out := make([]instruction.ID, 0, len(*b))
	for _, n := range *b {
		out = append(out, v.GetIDForNumber(n))
	}
	return out
}

// SortedBlocks returns blocks sorted by head instruction number, useful when
// tests or printers need a reproducible iteration order over a block set.
func SortedBlocks(blocks map[*Block][]*Block) []*Block {
	out := make([]*Block, 0, len(blocks))
	for b := range blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Head() < out[j].Head() })
	return out
}
