package dag

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is the dependency graph between the children of one group. An edge
// from a to b means b reads a value that a writes. A graph is built and
// queried during setup only and is not safe for concurrent use.
//
// Node IDs are insertion ranks, so gonum's ordering by ID is declaration
// order.
type Graph struct {
	g     *simple.DirectedGraph
	ids   map[string]int64
	names []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{g: simple.NewDirectedGraph(), ids: make(map[string]int64)}
}

// AddNode adds a node. Adding an existing ID keeps its original rank.
func (g *Graph) AddNode(id string) {
	if _, ok := g.ids[id]; ok {
		return
	}
	rank := int64(len(g.names))
	g.ids[id] = rank
	g.names = append(g.names, id)
	g.g.AddNode(simple.Node(rank))
}

// AddEdge records that `to` depends on `from`. Repeating an edge is a no-op.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", from, to)
	}
	src, ok := g.ids[from]
	if !ok {
		return fmt.Errorf("source node not found: %s", from)
	}
	dst, ok := g.ids[to]
	if !ok {
		return fmt.Errorf("destination node not found: %s", to)
	}
	g.g.SetEdge(simple.Edge{F: simple.Node(src), T: simple.Node(dst)})
	return nil
}

// Nodes returns every node ID in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.names...)
}

func (g *Graph) namesOf(ns []graph.Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = g.names[n.ID()]
	}
	return out
}
