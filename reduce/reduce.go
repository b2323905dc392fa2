// Package reduce implements the transitive reducer (C4): it removes every
// unconditional edge (u, v) for which a longer unconditional path from u to
// v already exists, while preserving every conditional edge verbatim.
package reduce

import "dagcfg/dagview"

// Graph is the reduced form of a dagview.View: per-vertex unconditional and
// conditional successor sets, both expressed as instruction numbers. Unlike
// the View it was reduced from, Graph's edges have already been pruned.
type Graph struct {
	n      int
	uncond [][]int
	cond   [][]int
}

// NumVertices returns the number of vertices in the graph.
func (g *Graph) NumVertices() int { return g.n }

// UnconditionalEdges returns vertex v's reduced unconditional successors.
func (g *Graph) UnconditionalEdges(v int) []int { return g.uncond[v] }

// ConditionalEdges returns vertex v's conditional successors, unchanged from
// the input view.
func (g *Graph) ConditionalEdges(v int) []int { return g.cond[v] }

// Successors returns the union of v's unconditional and conditional
// successors in the reduced graph.
func (g *Graph) Successors(v int) []int {
	out := append([]int{}, g.uncond[v]...)
	out = append(out, g.cond[v]...)
	return out
}

// Reduce computes the transitive reduction of v's unconditional edges,
// following spec §4.4 exactly:
//
//  1. Topologically sort the full DAG (both edge classes count for
//     ordering), reversed so every vertex precedes the vertices it depends
//     on (dependents first).
//  2. Compute longest_path[u,v] for all pairs via DP over the reversed topo
//     order.
//  3. Keep an unconditional edge (u,v) iff longest_path[u,v] == 1; keep
//     every conditional edge unchanged.
//
// This is O(V^2) space and O(V^2 * E_uncond) time, acceptable because V is
// the size of a single timestepper method (spec §4.4).
func Reduce(v *dagview.View) *Graph {
	n := v.NumVertices()
	order := topologicalSort(v)
	reverse(order)

	const noPath = -1
	longest := make([][]int, n)
	for i := range longest {
		longest[i] = make([]int, n)
		for j := range longest[i] {
			if i == j {
				longest[i][j] = 0
			} else {
				longest[i][j] = noPath
			}
		}
	}

	for i, u := range order {
		for _, w := range order[i:] {
			if longest[u][w] < 0 {
				continue
			}
			for _, s := range v.UnconditionalEdges(w) {
				candidate := 1 + longest[u][w]
				if candidate > longest[u][s] {
					longest[u][s] = candidate
				}
			}
		}
	}

	g := &Graph{n: n, uncond: make([][]int, n), cond: make([][]int, n)}
	for u := 0; u < n; u++ {
		for _, s := range v.UnconditionalEdges(u) {
			if longest[u][s] == 1 {
				g.uncond[u] = append(g.uncond[u], s)
			}
		}
		g.cond[u] = append(g.cond[u], v.ConditionalEdges(u)...)
	}
	return g
}

// topologicalSort returns a topological order of v's combined
// (conditional+unconditional) dependency relation via iterative post-order
// DFS: a vertex is appended only after every vertex it depends on has been
// appended, so dependencies precede dependents.
func topologicalSort(v *dagview.View) []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make([]int, v.NumVertices())
	order := make([]int, 0, v.NumVertices())

	type frame struct {
		node    int
		edgeIdx int
	}

	for start := 0; start < v.NumVertices(); start++ {
		if state[start] != white {
			continue
		}
		stack := []frame{{node: start}}
		state[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succs := v.Successors(top.node)
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

func reverse(xs []int) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
