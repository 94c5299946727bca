// Package graph builds the agent relationship graph and renders it.
package graph

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/HendryAvila/agentscan/internal/scanner"
)

// EdgeKind labels a directed edge.
type EdgeKind string

const (
	// KindDependency marks an edge drawn from a record's dependencies.
	KindDependency EdgeKind = "dependency"
	// KindConnection marks an edge drawn from a record's connections.
	KindConnection EdgeKind = "connection"
)

// Edge is a resolved reference between two known agents.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// node is a graph vertex carrying the agent name.
type node struct {
	id   int64
	name string
}

func (n node) ID() int64 { return n.id }

// Graph is the directed agent graph. Node IDs follow the order in which
// names first appear in the record list.
type Graph struct {
	g     *simple.DirectedGraph
	ids   map[string]int64
	names []string
	edges []Edge
}

// Build creates the graph for records. A reference becomes an edge only
// when its target is a known record name; self references and dangling
// names are dropped.
func Build(records []scanner.Record) *Graph {
	gr := &Graph{
		g:   simple.NewDirectedGraph(),
		ids: make(map[string]int64),
	}
	for _, r := range records {
		if r.Name == "" {
			continue
		}
		if _, ok := gr.ids[r.Name]; ok {
			continue
		}
		id := int64(len(gr.names))
		gr.ids[r.Name] = id
		gr.names = append(gr.names, r.Name)
		gr.g.AddNode(node{id: id, name: r.Name})
	}

	seen := make(map[Edge]bool)
	for _, r := range records {
		gr.addEdges(r.Name, r.Dependencies, KindDependency, seen)
		gr.addEdges(r.Name, r.Connections, KindConnection, seen)
	}

	slices.SortFunc(gr.edges, func(a, b Edge) int {
		return cmp.Or(
			cmp.Compare(gr.ids[a.From], gr.ids[b.From]),
			cmp.Compare(gr.ids[a.To], gr.ids[b.To]),
			cmp.Compare(a.Kind, b.Kind),
		)
	})
	return gr
}

func (gr *Graph) addEdges(from string, targets []string, kind EdgeKind, seen map[Edge]bool) {
	fid, ok := gr.ids[from]
	if !ok {
		return
	}
	for _, to := range targets {
		tid, ok := gr.ids[to]
		if !ok || tid == fid {
			continue
		}
		e := Edge{From: from, To: to, Kind: kind}
		if seen[e] {
			continue
		}
		seen[e] = true
		gr.edges = append(gr.edges, e)
		if !gr.g.HasEdgeFromTo(fid, tid) {
			gr.g.SetEdge(gr.g.NewEdge(gr.g.Node(fid), gr.g.Node(tid)))
		}
	}
}

// Len returns the number of nodes.
func (gr *Graph) Len() int { return len(gr.names) }

// Nodes returns the agent names in node ID order.
func (gr *Graph) Nodes() []string { return slices.Clone(gr.names) }

// Edges returns the labeled edges, sorted by source, target and kind.
func (gr *Graph) Edges() []Edge { return slices.Clone(gr.edges) }

// HasEdge reports whether any edge runs from one agent to another.
func (gr *Graph) HasEdge(from, to string) bool {
	fid, ok := gr.ids[from]
	if !ok {
		return false
	}
	tid, ok := gr.ids[to]
	if !ok {
		return false
	}
	return gr.g.HasEdgeFromTo(fid, tid)
}

// ordered wraps the gonum graph so node iteration follows ID order, which
// keeps seeded layouts reproducible.
type ordered struct {
	*simple.DirectedGraph
}

func (o ordered) Nodes() graph.Nodes {
	return sortedNodes(o.DirectedGraph.Nodes())
}

func (o ordered) From(id int64) graph.Nodes {
	return sortedNodes(o.DirectedGraph.From(id))
}

func sortedNodes(it graph.Nodes) graph.Nodes {
	nodes := graph.NodesOf(it)
	slices.SortFunc(nodes, func(a, b graph.Node) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return iterator.NewOrderedNodes(nodes)
}
