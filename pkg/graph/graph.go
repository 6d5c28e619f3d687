package graph

import (
	"slices"

	"github.com/matzehuels/pagegraph/pkg/kind"
)

// Graph is an immutable PageGraph recording.
//
// Nodes and edges keep the order in which they appeared in the document.
// Per-node adjacency lists are ordered by edge sequence, ties kept in
// document order. No method mutates a Graph, so it may be shared between
// goroutines without synchronization.
//
// The zero value is an empty graph.
type Graph struct {
	desc    *Descriptor
	nodes   []Node
	nodeIdx map[NodeID]int
	edges   []Edge
	edgeIdx map[EdgeID]int

	// node index -> edge indices, by sequence
	outgoing [][]int
	incoming [][]int
}

func newGraph(nodes, edges int) *Graph {
	return &Graph{
		nodes:   make([]Node, 0, nodes),
		nodeIdx: make(map[NodeID]int, nodes),
		edges:   make([]Edge, 0, edges),
		edgeIdx: make(map[EdgeID]int, edges),
	}
}

func (g *Graph) addNode(n Node) {
	g.nodeIdx[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

func (g *Graph) addEdge(e Edge) {
	g.edgeIdx[e.ID] = len(g.edges)
	g.edges = append(g.edges, e)
}

// index rebuilds the adjacency lists. Edges are visited in document order
// and each list is stably sorted, so equal sequences keep document order.
func (g *Graph) index() {
	g.outgoing = make([][]int, len(g.nodes))
	g.incoming = make([][]int, len(g.nodes))
	for i, e := range g.edges {
		src, dst := g.nodeIdx[e.Source], g.nodeIdx[e.Target]
		g.outgoing[src] = append(g.outgoing[src], i)
		g.incoming[dst] = append(g.incoming[dst], i)
	}
	bySeq := func(a, b int) int {
		sa, sb := g.edges[a].Sequence, g.edges[b].Sequence
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	}
	for i := range g.nodes {
		slices.SortStableFunc(g.outgoing[i], bySeq)
		slices.SortStableFunc(g.incoming[i], bySeq)
	}
}

// Descriptor returns the recording descriptor, if the document had one.
func (g *Graph) Descriptor() (Descriptor, bool) {
	if g.desc == nil {
		return Descriptor{}, false
	}
	return *g.desc, true
}

// IsRoot reports whether the graph was recorded for a top-level frame.
// Graphs without a descriptor are treated as root graphs.
func (g *Graph) IsRoot() bool {
	return g.desc == nil || g.desc.IsRoot
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	i, ok := g.edgeIdx[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Nodes returns all nodes in document order. The slice is a copy.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Edges returns all edges in document order. The slice is a copy.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Source returns the source node of e, which must belong to g.
func (g *Graph) Source(e Edge) Node { return g.nodes[g.nodeIdx[e.Source]] }

// Target returns the target node of e, which must belong to g.
func (g *Graph) Target(e Edge) Node { return g.nodes[g.nodeIdx[e.Target]] }

// CountNodesByKind returns how many nodes of each kind the graph holds.
func (g *Graph) CountNodesByKind() map[kind.NodeKind]int {
	out := make(map[kind.NodeKind]int)
	for _, n := range g.nodes {
		out[n.Kind()]++
	}
	return out
}

// CountEdgesByKind returns how many edges of each kind the graph holds.
func (g *Graph) CountEdgesByKind() map[kind.EdgeKind]int {
	out := make(map[kind.EdgeKind]int)
	for _, e := range g.edges {
		out[e.Kind()]++
	}
	return out
}
