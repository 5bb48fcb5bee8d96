package dag

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// StronglyConnected returns the strongly connected components of the graph.
// Members of each component are in insertion order; components are ordered
// by their lowest-ranked member.
func (g *Graph) StronglyConnected() [][]string {
	comps := topo.TarjanSCC(g.g)
	for _, c := range comps {
		byRank(c)
	}
	slices.SortFunc(comps, func(a, b []graph.Node) int {
		return cmp.Compare(a[0].ID(), b[0].ID())
	})
	out := make([][]string, len(comps))
	for i, c := range comps {
		out[i] = g.namesOf(c)
	}
	return out
}

// Order returns the strongly connected components in topological order: a
// component comes after every component it depends on. Where the graph
// leaves a choice, declaration order wins. Members of a cycle are in
// insertion order.
func (g *Graph) Order() [][]string {
	sorted, err := topo.SortStabilized(g.g, byRank)
	// cycles are the only error; each one is a nil in sorted
	cycles, _ := err.(topo.Unorderable)

	out := make([][]string, 0, len(sorted))
	next := 0
	for _, n := range sorted {
		if n == nil {
			out = append(out, g.namesOf(cycles[next]))
			next++
			continue
		}
		out = append(out, []string{g.names[n.ID()]})
	}
	return out
}

// BackEdges returns the edges inside one strongly connected component that
// point from a member to an earlier member in the given order. Cutting them
// leaves the component acyclic.
func (g *Graph) BackEdges(members []string) [][2]string {
	pos := make(map[string]int, len(members))
	for i, m := range members {
		pos[m] = i
	}
	var out [][2]string
	for i, m := range members {
		id, ok := g.ids[m]
		if !ok {
			continue
		}
		succ := graph.NodesOf(g.g.From(id))
		byRank(succ)
		for _, d := range succ {
			name := g.names[d.ID()]
			if j, in := pos[name]; in && j <= i {
				out = append(out, [2]string{m, name})
			}
		}
	}
	return out
}

func byRank(ns []graph.Node) {
	slices.SortFunc(ns, func(a, b graph.Node) int {
		return cmp.Compare(a.ID(), b.ID())
	})
}
